// Package snapshot implements the content-addressed snapshot store: backup
// creation with write-time dedup, metadata sidecars, and enumeration.
//
// On-disk layout (all files flat in one vault directory):
//
//	<flattened>.<YYYYMMDD_HHMMSS>.<hash8>.bak   snapshot content
//	<flattened>.<YYYYMMDD_HHMMSS>.<hash8>.bak.meta  JSON sidecar
//
// The flattened path plus timestamp plus hash prefix form the snapshot
// identity, so concurrent writers touching different tracked files can
// never collide.
package snapshot

import (
	"fmt"
	"strings"
	"time"
)

const (
	// BakExt is the snapshot content file extension.
	BakExt = ".bak"
	// MetaExt is appended to the snapshot name for the sidecar.
	MetaExt = ".meta"
	// TimeLayout is the timestamp embedded in snapshot names. Lexicographic
	// order equals chronological order, which keeps sorting trivial.
	TimeLayout = "20060102_150405"
	// TriggerPreEdit is the modification tag recorded in sidecars.
	TriggerPreEdit = "pre-edit"
)

// Meta is the sidecar record written next to every snapshot.
type Meta struct {
	OriginalPath string `json:"original_path"`
	BackupTime   string `json:"backup_time"`
	FileSize     int64  `json:"file_size"`
	FileHash     string `json:"file_hash"`
	Modification string `json:"modification"`
}

// Snapshot describes one stored backup. Fields are parsed from the file
// name; Size comes from the content file; Meta is loaded on demand and may
// be nil when the sidecar is missing or unreadable.
type Snapshot struct {
	LogicalPath string // flattened join key
	Timestamp   string // TimeLayout-formatted creation time
	HashPrefix  string // first 8 hex chars of the content hash
	Name        string // content file base name
	Path        string // absolute content file path
	Size        int64
	Meta        *Meta
}

// ID returns the caller-facing snapshot identifier (the content file name).
func (s *Snapshot) ID() string { return s.Name }

// Created parses the embedded timestamp in local time.
func (s *Snapshot) Created() time.Time {
	t, err := time.ParseInLocation(TimeLayout, s.Timestamp, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FlattenPath collapses path separators into a flat key so every tracked
// file maps to sibling entries in one directory.
func FlattenPath(p string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	return r.Replace(p)
}

// snapshotName assembles the deterministic content file name.
func snapshotName(flat, ts, prefix string) string {
	return fmt.Sprintf("%s.%s.%s%s", flat, ts, prefix, BakExt)
}

// parseName splits a content file name back into its identity tuple.
// Flattened paths may contain dots, so parsing anchors on the two
// rightmost dot-separated tokens before the extension.
func parseName(name string) (flat, ts, prefix string, ok bool) {
	base, found := strings.CutSuffix(name, BakExt)
	if !found {
		return "", "", "", false
	}
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return "", "", "", false
	}
	prefix = base[i+1:]
	rest := base[:i]
	j := strings.LastIndexByte(rest, '.')
	if j < 0 {
		return "", "", "", false
	}
	ts = rest[j+1:]
	flat = rest[:j]
	if flat == "" || !validTimestamp(ts) || !validPrefix(prefix) {
		return "", "", "", false
	}
	return flat, ts, prefix, true
}

func validTimestamp(ts string) bool {
	_, err := time.ParseInLocation(TimeLayout, ts, time.Local)
	return err == nil
}

func validPrefix(p string) bool {
	if len(p) != 8 {
		return false
	}
	for i := 0; i < len(p); i++ {
		c := p[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
