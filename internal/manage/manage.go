// Package manage is the read/administrative layer consumed by the
// interactive tool: list, restore, diff, info, stats, search, export. It
// operates over the same on-disk structures the event hooks write, and is
// usable independently of them.
package manage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"stratvault/internal/diffrec"
	"stratvault/internal/fsutil"
	"stratvault/internal/snapshot"
	"stratvault/internal/version"
)

// ErrNotFound signals a snapshot ID that resolves to nothing on disk.
var ErrNotFound = errors.New("snapshot not found")

// ErrTargetUnknown signals a restore whose sidecar is missing, so the
// caller must supply the target path explicitly.
var ErrTargetUnknown = errors.New("restore target unknown; sidecar missing")

// ErrConfirmationRequired signals a destructive overwrite that was not
// confirmed. The core never overwrites an existing target without it.
var ErrConfirmationRequired = errors.New("target exists; confirmation required")

// Service bundles the stores the management operations run over.
type Service struct {
	store *snapshot.Store
	alloc *version.Allocator
	log   *slog.Logger
	clock func() time.Time
}

// NewService creates the management layer. A nil logger uses the default.
func NewService(store *snapshot.Store, alloc *version.Allocator, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, alloc: alloc, log: log, clock: time.Now}
}

// WithClock overrides the recency reference for Stats (tests).
func (s *Service) WithClock(fn func() time.Time) *Service {
	s.clock = fn
	return s
}

// List returns snapshot summaries, most recent first. filter narrows to
// one original path; empty lists everything. Sidecars are loaded
// best-effort so summaries can show the inferred original path.
func (s *Service) List(filter string) ([]*snapshot.Snapshot, error) {
	snaps, err := s.store.List(filter)
	if err != nil {
		return nil, err
	}
	for _, snap := range snaps {
		if _, err := s.store.LoadMeta(snap); err != nil {
			s.log.Warn("sidecar unreadable", "snapshot", snap.Name, "error", err)
		}
	}
	return snaps, nil
}

// OriginalPath infers where a snapshot came from: the sidecar when
// present, otherwise the flattened key (separators are not recoverable).
func OriginalPath(snap *snapshot.Snapshot) string {
	if snap.Meta != nil && snap.Meta.OriginalPath != "" {
		return snap.Meta.OriginalPath
	}
	return snap.LogicalPath
}

// Restore writes a snapshot's stored content back to its origin.
//
// The target comes from the sidecar; when the sidecar is missing and no
// explicit target is given, ErrTargetUnknown tells the caller to prompt.
// If the target currently exists, a safety copy of its present content is
// written first (<target>.pre-restore.<id>) so the restore is itself
// recoverable — and the overwrite requires confirm=true.
func (s *Service) Restore(id, explicitTarget string, confirm bool) (string, error) {
	snap, err := s.store.Resolve(id)
	if err != nil {
		return "", err
	}
	if snap == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	target := explicitTarget
	if target == "" {
		if _, err := s.store.LoadMeta(snap); err != nil {
			return "", err
		}
		if snap.Meta == nil || snap.Meta.OriginalPath == "" {
			return "", fmt.Errorf("%w: %s", ErrTargetUnknown, id)
		}
		target = snap.Meta.OriginalPath
	}

	content, err := s.store.Read(snap)
	if err != nil {
		return "", err
	}

	if current, err := os.ReadFile(target); err == nil {
		if !confirm {
			return "", fmt.Errorf("%w: %s", ErrConfirmationRequired, target)
		}
		safety := fmt.Sprintf("%s.pre-restore.%.8s", target, uuid.NewString())
		if err := fsutil.WriteFileAtomic(safety, current, 0o644); err != nil {
			return "", fmt.Errorf("write safety copy %s: %w", safety, err)
		}
		s.log.Info("safety copy written", "target", target, "copy", safety)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("inspect restore target %s: %w", target, err)
	}

	if err := fsutil.WriteFileAtomic(target, content, 0o644); err != nil {
		return "", fmt.Errorf("restore %s to %s: %w", id, target, err)
	}
	s.log.Info("snapshot restored", "snapshot", id, "target", target)
	return target, nil
}

// DiffBetween renders the unified diff from snapshot id1 to id2. Both IDs
// must resolve to existing snapshots.
func (s *Service) DiffBetween(id1, id2 string) (string, error) {
	a, err := s.store.Resolve(id1)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id1)
	}
	b, err := s.store.Resolve(id2)
	if err != nil {
		return "", err
	}
	if b == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id2)
	}

	oldContent, err := s.store.Read(a)
	if err != nil {
		return "", err
	}
	newContent, err := s.store.Read(b)
	if err != nil {
		return "", err
	}
	return diffrec.Unified(filepath.ToSlash(OriginalPath(a)), string(oldContent), string(newContent), 0)
}

// Info returns the recorded version history for a tracked file, highest
// version first. Records survive snapshot garbage collection.
func (s *Service) Info(originalPath string) ([]version.Record, error) {
	return s.alloc.Records(originalPath)
}
