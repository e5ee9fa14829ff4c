// Package tracker decides whether a file path is eligible for snapshotting.
//
// The decision is an ordered table of (predicate, outcome) rules evaluated
// in priority order: glob rules first, keyword rules second, terminating at
// the first match with a "not tracked" fallback. The rule set is injected
// from configuration, so the tracked patterns are data, not logic.
package tracker

import (
	"path/filepath"
	"strings"
)

// Rule is one entry in the classification table.
type Rule struct {
	// Name identifies the rule in logs ("glob:*.py", "keyword:signal").
	Name string

	// Match reports whether the slash-normalized path satisfies the rule.
	Match func(path string) bool
}

// Classifier evaluates rules in order against logical paths.
type Classifier struct {
	rules []Rule
}

// New builds a classifier from glob patterns and keyword substrings.
// Globs containing a '/' match against the whole slash path, otherwise
// against the base name. Keywords match case-insensitively anywhere in the
// path.
func New(globs, keywords []string) *Classifier {
	c := &Classifier{}
	for _, g := range globs {
		pattern := g
		c.rules = append(c.rules, Rule{
			Name:  "glob:" + pattern,
			Match: globMatcher(pattern),
		})
	}
	for _, k := range keywords {
		kw := strings.ToLower(k)
		c.rules = append(c.rules, Rule{
			Name: "keyword:" + kw,
			Match: func(path string) bool {
				return strings.Contains(strings.ToLower(path), kw)
			},
		})
	}
	return c
}

func globMatcher(pattern string) func(string) bool {
	if strings.Contains(pattern, "/") {
		return func(path string) bool {
			ok, err := filepath.Match(pattern, path)
			return err == nil && ok
		}
	}
	return func(path string) bool {
		ok, err := filepath.Match(pattern, filepath.Base(path))
		return err == nil && ok
	}
}

// Tracked reports whether path matches any rule, returning the name of the
// first matching rule for diagnostics. Paths are normalized to forward
// slashes before evaluation.
func (c *Classifier) Tracked(path string) (bool, string) {
	p := filepath.ToSlash(path)
	for _, r := range c.rules {
		if r.Match(p) {
			return true, r.Name
		}
	}
	return false, ""
}
