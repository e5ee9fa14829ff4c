package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"stratvault/internal/fsutil"
	"stratvault/internal/hashutil"
)

// ErrSkipped signals that the latest snapshot already holds this content.
// It is a distinct no-op signal, not a failure; callers suppress it from
// error reporting.
var ErrSkipped = errors.New("content unchanged since latest snapshot")

// Store is the content-addressed snapshot store rooted at one directory.
// Safe for concurrent use across different logical paths; same-path races
// are tolerated per the identity-tuple naming.
type Store struct {
	dir   string
	log   *slog.Logger
	clock func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source (tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.clock = fn }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates a store over dir. The directory is created lazily on the
// first write.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:   dir,
		log:   slog.Default(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the vault directory.
func (s *Store) Dir() string { return s.dir }

// Create stores a new snapshot of content for originalPath, unless the
// latest existing snapshot for the same logical path already carries the
// same hash prefix, in which case it returns ErrSkipped without writing.
//
// The content file is written first; a sidecar failure is logged as a
// warning and does not fail the call, since the content alone is
// restorable.
func (s *Store) Create(originalPath string, content []byte) (*Snapshot, error) {
	flat := FlattenPath(originalPath)
	full := hashutil.Sum(content)
	prefix := hashutil.Prefix(full)

	latest, err := s.Latest(originalPath)
	if err != nil {
		return nil, fmt.Errorf("consult latest snapshot for %s: %w", originalPath, err)
	}
	if latest != nil && latest.HashPrefix == prefix {
		return nil, ErrSkipped
	}

	now := s.clock()
	ts := now.Format(TimeLayout)
	name := snapshotName(flat, ts, prefix)
	path := filepath.Join(s.dir, name)

	if err := fsutil.WriteFileAtomic(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("write snapshot %s: %w", name, err)
	}

	meta := &Meta{
		OriginalPath: originalPath,
		BackupTime:   now.Format("2006-01-02 15:04:05"),
		FileSize:     int64(len(content)),
		FileHash:     full,
		Modification: TriggerPreEdit,
	}
	if err := s.writeMeta(path+MetaExt, meta); err != nil {
		s.log.Warn("snapshot sidecar write failed; content is still restorable",
			"path", originalPath, "snapshot", name, "error", err)
		meta = nil
	}

	return &Snapshot{
		LogicalPath: flat,
		Timestamp:   ts,
		HashPrefix:  prefix,
		Name:        name,
		Path:        path,
		Size:        int64(len(content)),
		Meta:        meta,
	}, nil
}

func (s *Store) writeMeta(path string, m *Meta) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, append(b, '\n'), 0o644)
}

// List enumerates snapshots, most recent first. An empty originalPath
// lists every tracked file; otherwise only snapshots of that path.
// A missing vault directory yields an empty listing.
func (s *Store) List(originalPath string) ([]*Snapshot, error) {
	var want string
	if originalPath != "" {
		want = FlattenPath(originalPath)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list vault %s: %w", s.dir, err)
	}

	var out []*Snapshot
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		flat, ts, prefix, ok := parseName(e.Name())
		if !ok {
			continue
		}
		if want != "" && flat != want {
			continue
		}
		snap := &Snapshot{
			LogicalPath: flat,
			Timestamp:   ts,
			HashPrefix:  prefix,
			Name:        e.Name(),
			Path:        filepath.Join(s.dir, e.Name()),
		}
		if info, err := e.Info(); err == nil {
			snap.Size = info.Size()
		}
		out = append(out, snap)
	}

	// TimeLayout sorts lexicographically; newest first, hash breaks ties.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].HashPrefix > out[j].HashPrefix
	})
	return out, nil
}

// Latest returns the most recent snapshot for originalPath, or (nil, nil)
// when none exists, so callers can branch without error checks.
func (s *Store) Latest(originalPath string) (*Snapshot, error) {
	snaps, err := s.List(originalPath)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[0], nil
}

// Resolve maps a snapshot ID (the content file name) to a parsed Snapshot.
// Returns (nil, nil) when no such snapshot exists.
func (s *Store) Resolve(id string) (*Snapshot, error) {
	flat, ts, prefix, ok := parseName(id)
	if !ok {
		return nil, nil
	}
	path := filepath.Join(s.dir, id)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat snapshot %s: %w", id, err)
	}
	return &Snapshot{
		LogicalPath: flat,
		Timestamp:   ts,
		HashPrefix:  prefix,
		Name:        id,
		Path:        path,
		Size:        info.Size(),
	}, nil
}

// Read returns the stored content of a snapshot.
func (s *Store) Read(snap *Snapshot) ([]byte, error) {
	b, err := os.ReadFile(snap.Path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", snap.Name, err)
	}
	return b, nil
}

// LoadMeta reads the sidecar for snap and caches it on the Snapshot.
// Returns (nil, nil) when the sidecar is absent.
func (s *Store) LoadMeta(snap *Snapshot) (*Meta, error) {
	if snap.Meta != nil {
		return snap.Meta, nil
	}
	b, err := os.ReadFile(snap.Path + MetaExt)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sidecar for %s: %w", snap.Name, err)
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse sidecar for %s: %w", snap.Name, err)
	}
	snap.Meta = &m
	return &m, nil
}

// Delete removes a snapshot's content file and sidecar. The sidecar
// removal is best-effort; only a content removal failure is an error.
func (s *Store) Delete(snap *Snapshot) error {
	if err := os.Remove(snap.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete snapshot %s: %w", snap.Name, err)
	}
	if err := os.Remove(snap.Path + MetaExt); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("sidecar removal failed", "snapshot", snap.Name, "error", err)
	}
	return nil
}
