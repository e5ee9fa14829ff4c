package manage

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stats aggregates the vault contents.
type Stats struct {
	TotalSnapshots int
	TotalSize      int64
	LastDay        int
	LastWeek       int
	PerFile        []FileCount // sorted by count desc, then path
}

// FileCount is the per-file snapshot tally.
type FileCount struct {
	Path  string
	Count int
}

// Stats scans all snapshots and aggregates counts, sizes, and recency.
func (s *Service) Stats() (*Stats, error) {
	snaps, err := s.List("")
	if err != nil {
		return nil, err
	}
	now := s.clock()
	st := &Stats{}
	perFile := map[string]int{}
	for _, snap := range snaps {
		st.TotalSnapshots++
		st.TotalSize += snap.Size
		perFile[OriginalPath(snap)]++
		created := snap.Created()
		if created.IsZero() {
			continue
		}
		age := now.Sub(created)
		if age <= 24*time.Hour {
			st.LastDay++
		}
		if age <= 7*24*time.Hour {
			st.LastWeek++
		}
	}
	for path, n := range perFile {
		st.PerFile = append(st.PerFile, FileCount{Path: path, Count: n})
	}
	sort.Slice(st.PerFile, func(i, j int) bool {
		if st.PerFile[i].Count != st.PerFile[j].Count {
			return st.PerFile[i].Count > st.PerFile[j].Count
		}
		return st.PerFile[i].Path < st.PerFile[j].Path
	})
	return st, nil
}

// Match is one snapshot whose content contains the search keyword.
type Match struct {
	Snapshot *SnapshotRef
	Lines    []MatchLine
}

// SnapshotRef is the subset of snapshot identity reported by Search.
type SnapshotRef struct {
	ID   string
	Path string
}

// MatchLine is one matching content line, 1-based.
type MatchLine struct {
	Number int
	Text   string
}

// Search runs a case-insensitive full-text scan over all snapshot
// contents. Unreadable snapshots are skipped with a warning rather than
// failing the whole scan.
func (s *Service) Search(keyword string) ([]Match, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("empty search keyword")
	}
	snaps, err := s.List("")
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(keyword)
	var out []Match
	for _, snap := range snaps {
		content, err := s.store.Read(snap)
		if err != nil {
			s.log.Warn("search skipped unreadable snapshot", "snapshot", snap.Name, "error", err)
			continue
		}
		var lines []MatchLine
		for i, ln := range strings.Split(string(content), "\n") {
			if strings.Contains(strings.ToLower(ln), needle) {
				lines = append(lines, MatchLine{Number: i + 1, Text: ln})
			}
		}
		if len(lines) > 0 {
			out = append(out, Match{
				Snapshot: &SnapshotRef{ID: snap.ID(), Path: OriginalPath(snap)},
				Lines:    lines,
			})
		}
	}
	return out, nil
}

// FormatSize renders a byte count for human output.
func FormatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
