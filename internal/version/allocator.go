package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stratvault/internal/analyze"
	"stratvault/internal/fsutil"
	"stratvault/internal/snapshot"
)

const (
	tokenExt  = ".current"
	recordExt = ".json"
	recordSep = ".v"
)

// Allocator owns the per-file version state inside one vault directory.
//
// On disk:
//
//	<flattened>.current          state token, "M.m.p\n"
//	<flattened>.v<M.m.p>.json    one immutable record per change event
type Allocator struct {
	dir string
	log *slog.Logger
}

// NewAllocator creates an allocator rooted at dir.
func NewAllocator(dir string, log *slog.Logger) *Allocator {
	if log == nil {
		log = slog.Default()
	}
	return &Allocator{dir: dir, log: log}
}

func (a *Allocator) tokenPath(flat string) string {
	return filepath.Join(a.dir, flat+tokenExt)
}

// Current returns the present version for originalPath. A missing or
// corrupt token falls back to the record log; with no records either, the
// file is at Initial.
func (a *Allocator) Current(originalPath string) (Version, error) {
	flat := snapshot.FlattenPath(originalPath)
	b, err := os.ReadFile(a.tokenPath(flat))
	if err == nil {
		if v, perr := Parse(string(b)); perr == nil {
			return v, nil
		}
		a.log.Warn("version token corrupt; recovering from record log", "path", originalPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return Version{}, fmt.Errorf("read version token for %s: %w", originalPath, err)
	}

	recs, err := a.Records(originalPath)
	if err != nil {
		return Version{}, err
	}
	if len(recs) == 0 {
		return Initial, nil
	}
	// Records() orders newest (highest) first.
	v, err := Parse(recs[0].Version)
	if err != nil {
		return Initial, nil
	}
	return v, nil
}

// Bump advances the stored version for originalPath according to tier and
// persists the new state token. It is the single point of truth for
// "current version"; last writer wins on the token, which is recoverable
// from the record log.
func (a *Allocator) Bump(originalPath string, tier analyze.Tier) (Version, error) {
	cur, err := a.Current(originalPath)
	if err != nil {
		return Version{}, err
	}
	next := cur.Bump(tier)
	flat := snapshot.FlattenPath(originalPath)
	if err := fsutil.WriteFileAtomic(a.tokenPath(flat), []byte(next.String()+"\n"), 0o644); err != nil {
		return Version{}, fmt.Errorf("persist version token for %s: %w", originalPath, err)
	}
	return next, nil
}

// Append writes one immutable record for originalPath. Records are keyed
// by version, so the log grows by exactly one file per change event.
func (a *Allocator) Append(originalPath string, rec Record) error {
	flat := snapshot.FlattenPath(originalPath)
	name := flat + recordSep + rec.Version + recordExt
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode version record for %s: %w", originalPath, err)
	}
	path := filepath.Join(a.dir, name)
	if err := fsutil.WriteFileAtomic(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write version record %s: %w", name, err)
	}
	return nil
}

// Records returns the full version history for originalPath, highest
// version first. A missing vault directory yields an empty history.
func (a *Allocator) Records(originalPath string) ([]Record, error) {
	flat := snapshot.FlattenPath(originalPath)
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list version records: %w", err)
	}

	prefix := flat + recordSep
	type parsed struct {
		rec Record
		v   Version
	}
	var out []parsed
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, recordExt) {
			continue
		}
		vs := strings.TrimSuffix(strings.TrimPrefix(name, prefix), recordExt)
		v, perr := Parse(vs)
		if perr != nil {
			continue
		}
		b, rerr := os.ReadFile(filepath.Join(a.dir, name))
		if rerr != nil {
			a.log.Warn("unreadable version record skipped", "record", name, "error", rerr)
			continue
		}
		var rec Record
		if jerr := json.Unmarshal(b, &rec); jerr != nil {
			a.log.Warn("malformed version record skipped", "record", name, "error", jerr)
			continue
		}
		out = append(out, parsed{rec: rec, v: v})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].v.Compare(out[j].v) > 0 })
	recs := make([]Record, len(out))
	for i, p := range out {
		recs[i] = p.rec
	}
	return recs, nil
}
