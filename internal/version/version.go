// Package version persists the per-file semantic version: a fast-path
// state token holding the current tuple, plus an append-only log of
// immutable version records. The record log is the source of truth; the
// token is a derivable cache of its tail.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"stratvault/internal/analyze"
)

// Version is the (major, minor, patch) tuple assigned per tracked file.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Initial is the version a file holds before its first recorded change.
var Initial = Version{Major: 1, Minor: 0, Patch: 0}

// String renders "M.m.p".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Bump returns the next version for a change tier. Higher-order components
// never decrease; a bump always resets the strictly-lower components to
// zero.
func (v Version) Bump(tier analyze.Tier) Version {
	switch tier {
	case analyze.TierMajor:
		return Version{Major: v.Major + 1}
	case analyze.TierMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

// Compare orders versions lexicographically by component. It returns a
// negative value when v < o, zero when equal, positive when v > o.
func (v Version) Compare(o Version) int {
	if v.Major != o.Major {
		return v.Major - o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor - o.Minor
	}
	return v.Patch - o.Patch
}

// Parse reads "M.m.p" back into a tuple.
func Parse(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("malformed version %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("malformed version %q", s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Record is one immutable entry in the per-file version log. Records are
// never mutated or deleted, even after the underlying snapshot is
// garbage-collected.
type Record struct {
	File       string `json:"file"`
	Version    string `json:"version"`
	ChangeType string `json:"change_type"`
	Timestamp  string `json:"timestamp"`
	DiffFile   string `json:"diff_file"`
	HashBefore string `json:"hash_before"`
	HashAfter  string `json:"hash_after"`
}
