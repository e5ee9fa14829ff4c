package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratvault/internal/analyze"
	"stratvault/internal/config"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	work := t.TempDir()
	cfg := config.Default()
	cfg.VaultDir = filepath.Join(work, ".stratvault")
	return New(cfg, nil), work
}

func lines(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("line\n")
	}
	return b.String()
}

func TestPreChangeIgnoresUntrackedPaths(t *testing.T) {
	e, work := newTestEngine(t)
	path := filepath.Join(work, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	res, err := e.PreChange(path)
	require.NoError(t, err)
	assert.False(t, res.Tracked)
	assert.Nil(t, res.Snapshot)
}

func TestPreChangeBacksUpAndSkipsDuplicates(t *testing.T) {
	e, work := newTestEngine(t)
	path := filepath.Join(work, "trading_strategy.py")
	require.NoError(t, os.WriteFile(path, []byte("v1\n"), 0o644))

	res, err := e.PreChange(path)
	require.NoError(t, err)
	assert.True(t, res.Tracked)
	require.NotNil(t, res.Snapshot)

	// Same content again: distinct no-op signal, no second snapshot.
	res, err = e.PreChange(path)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	snaps, err := e.Store().List(path)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestPreChangeMissingFile(t *testing.T) {
	e, work := newTestEngine(t)
	res, err := e.PreChange(filepath.Join(work, "strategy_new.py"))
	require.NoError(t, err)
	assert.True(t, res.Tracked)
	assert.True(t, res.Missing)
}

func TestPostChangeEndToEndScenario(t *testing.T) {
	e, _ := newTestEngine(t)
	path := "strategy/trading_strategy.py"

	// 50 -> 80 lines: ratio 30/51 ≈ 0.588, major, 1.0.0 -> 2.0.0.
	res, err := e.PostChange(path, lines(50), lines(80))
	require.NoError(t, err)
	assert.True(t, res.Tracked)
	assert.Equal(t, analyze.TierMajor, res.Tier)
	assert.Equal(t, "2.0.0", res.Version.String())
	assert.Empty(t, res.Warnings)

	// Diff artifact referencing 2.0.0 exists on disk.
	require.NotNil(t, res.Artifact)
	assert.Contains(t, res.Artifact.Name, ".v2.0.0.")
	_, err = os.Stat(res.Artifact.Path)
	require.NoError(t, err)

	// Version record is queryable and references the artifact.
	recs, err := e.Allocator().Records(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2.0.0", recs[0].Version)
	assert.Equal(t, "major", recs[0].ChangeType)
	assert.Equal(t, res.Artifact.Name, recs[0].DiffFile)

	// Changelog carries the major entry at the top.
	b, err := os.ReadFile(e.chlog.Path())
	require.NoError(t, err)
	assert.Contains(t, string(b), "## v2.0.0")
	assert.Contains(t, string(b), "[major]")
}

func TestPostChangeSequenceBumpsMonotonically(t *testing.T) {
	e, _ := newTestEngine(t)
	path := "strategy/a.py"

	r1, err := e.PostChange(path, "", lines(10)) // creation: major
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", r1.Version.String())

	r2, err := e.PostChange(path, lines(10), lines(13)) // 3/11 ≈ 0.27: minor
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", r2.Version.String())

	r3, err := e.PostChange(path, lines(13), lines(14)) // 1/14: patch
	require.NoError(t, err)
	assert.Equal(t, "2.1.1", r3.Version.String())

	recs, err := e.Allocator().Records(path)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestPostChangeRecordsCreationHashSentinel(t *testing.T) {
	e, _ := newTestEngine(t)
	path := "strategy/new_module.py"

	_, err := e.PostChange(path, "", "x = 1\n")
	require.NoError(t, err)

	recs, err := e.Allocator().Records(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "none", recs[0].HashBefore)
	assert.NotEqual(t, "none", recs[0].HashAfter)
}

func TestPostChangeUntracked(t *testing.T) {
	e, _ := newTestEngine(t)
	res, err := e.PostChange("random/notes.txt", "a\n", "b\n")
	require.NoError(t, err)
	assert.False(t, res.Tracked)
}
