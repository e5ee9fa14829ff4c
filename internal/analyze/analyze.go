// Package analyze classifies an (old, new) text pair into a change tier.
//
// The signal is deliberately the line-count delta, not a diff-based edit
// distance: a large reorder with zero net line-count change classifies as
// patch even if every line moved. The source of truth for tiers is the
// ratio |new - old| / (old + 1); the +1 offset keeps file creation well
// defined.
package analyze

import "stratvault/internal/textutil"

// Tier is the change magnitude bucket driving the version bump.
type Tier string

const (
	TierMajor Tier = "major"
	TierMinor Tier = "minor"
	TierPatch Tier = "patch"
)

// Result carries the tier plus the raw line counts it was derived from.
type Result struct {
	Tier     Tier
	OldLines int
	NewLines int
}

// Classify buckets the change from oldText to newText.
//
// Thresholds are strict: ratio > 0.5 is major, ratio > 0.2 is minor,
// anything else is patch. An empty oldText means file creation; its ratio
// equals the new line count, so any file beyond one line is major by
// construction.
func Classify(oldText, newText string) Result {
	oldN := textutil.CountLines(oldText)
	newN := textutil.CountLines(newText)

	delta := newN - oldN
	if delta < 0 {
		delta = -delta
	}
	ratio := float64(delta) / float64(oldN+1)

	tier := TierPatch
	switch {
	case ratio > 0.5:
		tier = TierMajor
	case ratio > 0.2:
		tier = TierMinor
	}
	return Result{Tier: tier, OldLines: oldN, NewLines: newN}
}
