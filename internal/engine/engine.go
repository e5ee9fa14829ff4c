// Package engine orchestrates the two event hooks the host invokes around
// an edit: PreChange (snapshot the current disk content, then trim) and
// PostChange (classify the change, bump the version, record the diff,
// update the changelog).
//
// Error policy: only the primary artifact of each hook is fatal — the
// snapshot for PreChange, the version bump and record for PostChange.
// Auxiliary bookkeeping (retention trim, diff artifact, changelog entry)
// degrades to logged warnings so the primary contract is still honored.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"stratvault/internal/analyze"
	"stratvault/internal/changelog"
	"stratvault/internal/config"
	"stratvault/internal/diffrec"
	"stratvault/internal/hashutil"
	"stratvault/internal/retention"
	"stratvault/internal/snapshot"
	"stratvault/internal/tracker"
	"stratvault/internal/version"
)

// Engine wires the snapshot, versioning, and bookkeeping components over
// one vault.
type Engine struct {
	cfg     *config.Config
	classif *tracker.Classifier
	store   *snapshot.Store
	alloc   *version.Allocator
	rec     *diffrec.Recorder
	chlog   *changelog.Writer
	ret     *retention.Manager
	log     *slog.Logger
	clock   func() time.Time
}

// New builds an engine from configuration. A nil logger uses the default.
func New(cfg *config.Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	store := snapshot.NewStore(cfg.VaultDir, snapshot.WithLogger(log))
	return &Engine{
		cfg:     cfg,
		classif: tracker.New(cfg.Tracking.Globs, cfg.Tracking.Keywords),
		store:   store,
		alloc:   version.NewAllocator(cfg.VaultDir, log),
		rec:     diffrec.NewRecorder(cfg.VaultDir),
		chlog:   changelog.NewWriter(cfg.Changelog()),
		ret:     retention.NewManager(store, log),
		log:     log,
		clock:   time.Now,
	}
}

// Store exposes the underlying snapshot store for the management layer.
func (e *Engine) Store() *snapshot.Store { return e.store }

// Allocator exposes the version allocator for the management layer.
func (e *Engine) Allocator() *version.Allocator { return e.alloc }

// Retention exposes the retention manager for the clean command.
func (e *Engine) Retention() *retention.Manager { return e.ret }

// PreChangeResult reports what the pre-change hook did.
type PreChangeResult struct {
	Tracked  bool   // false: path matches no rule, nothing happened
	Rule     string // matching rule name when tracked
	Missing  bool   // file does not exist on disk yet, nothing to back up
	Skipped  bool   // content identical to latest snapshot, no write
	Snapshot *snapshot.Snapshot
}

// PreChange snapshots the current disk content of path before the host
// applies an edit. Untracked paths, absent files, and unchanged content
// are distinct no-ops, not errors. After a successful snapshot the
// per-file retention cap is enforced; a trim failure is a warning only.
func (e *Engine) PreChange(path string) (*PreChangeResult, error) {
	res := &PreChangeResult{}
	ok, rule := e.classif.Tracked(path)
	if !ok {
		e.log.Debug("path not tracked", "path", path)
		return res, nil
	}
	res.Tracked = true
	res.Rule = rule

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			res.Missing = true
			e.log.Debug("nothing to back up, file does not exist yet", "path", path)
			return res, nil
		}
		return nil, fmt.Errorf("read %s for backup: %w", path, err)
	}

	snap, err := e.store.Create(path, content)
	if err != nil {
		if errors.Is(err, snapshot.ErrSkipped) {
			res.Skipped = true
			e.log.Debug("content unchanged, snapshot skipped", "path", path)
			return res, nil
		}
		return nil, err
	}
	res.Snapshot = snap
	e.log.Info("snapshot created", "path", path, "snapshot", snap.Name, "size", snap.Size)

	if trim, err := e.ret.Trim(path, e.cfg.Retention.MaxSnapshotsPerFile); err != nil {
		e.log.Warn("retention trim failed after backup", "path", path, "error", err)
	} else if len(trim.Failures) > 0 {
		e.log.Warn("retention trim incomplete", "path", path, "failed", len(trim.Failures))
	}
	return res, nil
}

// PostChangeResult reports what the post-change hook recorded.
type PostChangeResult struct {
	Tracked  bool
	Tier     analyze.Tier
	Version  version.Version
	Artifact *diffrec.Artifact // nil when the diff write failed (warned)
	Warnings []string
}

// PostChange records a completed edit: the host supplies the old and new
// text it captured around the edit (they may diverge from what PreChange
// backed up). The version bump and its record are the primary artifact;
// diff and changelog failures degrade to warnings on the result.
func (e *Engine) PostChange(path, oldText, newText string) (*PostChangeResult, error) {
	res := &PostChangeResult{}
	ok, _ := e.classif.Tracked(path)
	if !ok {
		e.log.Debug("path not tracked", "path", path)
		return res, nil
	}
	res.Tracked = true

	cls := analyze.Classify(oldText, newText)
	res.Tier = cls.Tier
	now := e.clock()

	ver, err := e.alloc.Bump(path, cls.Tier)
	if err != nil {
		return nil, err
	}
	res.Version = ver
	e.log.Info("version bumped", "path", path, "tier", cls.Tier, "version", ver.String())

	diffName := ""
	if art, err := e.rec.Record(path, oldText, newText, ver.String(), now); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("diff artifact: %v", err))
		e.log.Warn("diff artifact write failed", "path", path, "error", err)
	} else {
		res.Artifact = art
		diffName = art.Name
	}

	rec := version.Record{
		File:       path,
		Version:    ver.String(),
		ChangeType: string(cls.Tier),
		Timestamp:  now.Format("2006-01-02 15:04:05"),
		DiffFile:   diffName,
		HashBefore: hashutil.SumOrNone([]byte(oldText), oldText != ""),
		HashAfter:  hashutil.Sum([]byte(newText)),
	}
	if err := e.alloc.Append(path, rec); err != nil {
		return nil, err
	}

	entry := changelog.Entry{Version: ver.String(), Time: now, Tier: cls.Tier, Path: path}
	if err := e.chlog.Append(entry); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("changelog: %v", err))
		e.log.Warn("changelog update failed", "path", path, "error", err)
	}
	return res, nil
}
