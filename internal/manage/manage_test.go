package manage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratvault/internal/snapshot"
	"stratvault/internal/version"
)

type fixture struct {
	svc   *Service
	store *snapshot.Store
	vault string
	work  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	vault := t.TempDir()
	n := 0
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)
	store := snapshot.NewStore(vault, snapshot.WithClock(func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}))
	alloc := version.NewAllocator(vault, nil)
	return &fixture{
		svc:   NewService(store, alloc, nil),
		store: store,
		vault: vault,
		work:  t.TempDir(),
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.work, "trading_strategy.py")
	content := []byte("def run():\n    return 42\n")

	snap, err := f.store.Create(target, content)
	require.NoError(t, err)

	// Target no longer exists: restore needs no confirmation.
	restored, err := f.svc.Restore(snap.ID(), "", false)
	require.NoError(t, err)
	assert.Equal(t, target, restored)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, content, got, "restored bytes must match the stored snapshot")
}

func TestRestoreOverwriteRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.work, "a.py")
	snap, err := f.store.Create(target, []byte("old\n"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(target, []byte("current\n"), 0o644))

	_, err = f.svc.Restore(snap.ID(), "", false)
	assert.True(t, errors.Is(err, ErrConfirmationRequired))

	// Unconfirmed restore must leave the target untouched.
	b, _ := os.ReadFile(target)
	assert.Equal(t, "current\n", string(b))

	_, err = f.svc.Restore(snap.ID(), "", true)
	require.NoError(t, err)
	b, _ = os.ReadFile(target)
	assert.Equal(t, "old\n", string(b))

	// A safety copy of the overwritten content must exist.
	entries, err := os.ReadDir(f.work)
	require.NoError(t, err)
	var safety string
	for _, e := range entries {
		if strings.Contains(e.Name(), ".pre-restore.") {
			safety = filepath.Join(f.work, e.Name())
		}
	}
	require.NotEmpty(t, safety, "safety copy missing")
	sb, _ := os.ReadFile(safety)
	assert.Equal(t, "current\n", string(sb))
}

func TestRestoreUnknownSnapshot(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Restore("ghost.20250101_000000.00000000.bak", "", true)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRestoreWithoutSidecarNeedsExplicitTarget(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.work, "a.py")
	snap, err := f.store.Create(target, []byte("content\n"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(snap.Path+snapshot.MetaExt))

	_, err = f.svc.Restore(snap.ID(), "", true)
	assert.True(t, errors.Is(err, ErrTargetUnknown))

	other := filepath.Join(f.work, "elsewhere.py")
	restored, err := f.svc.Restore(snap.ID(), other, true)
	require.NoError(t, err)
	assert.Equal(t, other, restored)
	b, _ := os.ReadFile(other)
	assert.Equal(t, "content\n", string(b))
}

func TestDiffBetween(t *testing.T) {
	f := newFixture(t)
	s1, err := f.store.Create("strategy/a.py", []byte("x = 1\n"))
	require.NoError(t, err)
	s2, err := f.store.Create("strategy/a.py", []byte("x = 2\n"))
	require.NoError(t, err)

	body, err := f.svc.DiffBetween(s1.ID(), s2.ID())
	require.NoError(t, err)
	assert.Contains(t, body, "-x = 1")
	assert.Contains(t, body, "+x = 2")

	_, err = f.svc.DiffBetween(s1.ID(), "missing.20250101_000000.00000000.bak")
	assert.True(t, errors.Is(err, ErrNotFound))
}
