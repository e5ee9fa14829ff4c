// Package retention enforces the snapshot garbage-collection policy:
// per-file count caps after every backup, and an operator-driven global
// age purge split into preview and execute calls so a caller can gate the
// destructive half behind confirmation.
package retention

import (
	"fmt"
	"log/slog"
	"time"

	"stratvault/internal/snapshot"
)

// ItemFailure records one snapshot that could not be deleted.
type ItemFailure struct {
	Snapshot string
	Err      error
}

// Result summarizes one trim or purge run. Deletion is best-effort per
// item: failures are collected and the remaining items still process.
type Result struct {
	Deleted  int
	Failures []ItemFailure
}

// Manager runs retention over one snapshot store.
type Manager struct {
	store *snapshot.Store
	log   *slog.Logger
	clock func() time.Time
}

// NewManager creates a retention manager. A nil logger uses the default.
func NewManager(store *snapshot.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{store: store, log: log, clock: time.Now}
}

// WithClock overrides the age reference time (tests).
func (m *Manager) WithClock(fn func() time.Time) *Manager {
	m.clock = fn
	return m
}

// Trim deletes every snapshot of originalPath beyond the maxSnapshots most
// recent. Immediately after Trim returns, the per-file count invariant
// holds for all snapshots it could delete.
func (m *Manager) Trim(originalPath string, maxSnapshots int) (Result, error) {
	var res Result
	if maxSnapshots < 1 {
		return res, fmt.Errorf("max snapshots must be >= 1, got %d", maxSnapshots)
	}
	snaps, err := m.store.List(originalPath)
	if err != nil {
		return res, err
	}
	if len(snaps) <= maxSnapshots {
		return res, nil
	}
	for _, snap := range snaps[maxSnapshots:] {
		if err := m.store.Delete(snap); err != nil {
			m.log.Warn("retention delete failed", "snapshot", snap.Name, "error", err)
			res.Failures = append(res.Failures, ItemFailure{Snapshot: snap.Name, Err: err})
			continue
		}
		res.Deleted++
	}
	return res, nil
}

// PreviewPurge lists snapshots across all tracked files older than the
// given number of days, without deleting anything. Callers show the count
// and gate Purge behind explicit confirmation.
func (m *Manager) PreviewPurge(days int) ([]*snapshot.Snapshot, error) {
	if days < 1 {
		return nil, fmt.Errorf("purge age must be >= 1 day, got %d", days)
	}
	snaps, err := m.store.List("")
	if err != nil {
		return nil, err
	}
	cutoff := m.clock().AddDate(0, 0, -days)
	var old []*snapshot.Snapshot
	for _, snap := range snaps {
		created := snap.Created()
		if !created.IsZero() && created.Before(cutoff) {
			old = append(old, snap)
		}
	}
	return old, nil
}

// Purge deletes the snapshots PreviewPurge would report, best-effort per
// item. The caller is responsible for having obtained confirmation.
func (m *Manager) Purge(days int) (Result, error) {
	var res Result
	old, err := m.PreviewPurge(days)
	if err != nil {
		return res, err
	}
	for _, snap := range old {
		if err := m.store.Delete(snap); err != nil {
			m.log.Warn("purge delete failed", "snapshot", snap.Name, "error", err)
			res.Failures = append(res.Failures, ItemFailure{Snapshot: snap.Name, Err: err})
			continue
		}
		res.Deleted++
	}
	return res, nil
}
