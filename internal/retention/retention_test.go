package retention

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratvault/internal/snapshot"
)

func storeAt(t *testing.T, t0 time.Time) *snapshot.Store {
	t.Helper()
	n := 0
	return snapshot.NewStore(t.TempDir(), snapshot.WithClock(func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}))
}

func TestTrimKeepsMostRecent(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)
	store := storeAt(t, t0)
	for i := 0; i < 55; i++ {
		_, err := store.Create("strategy/a.py", []byte(fmt.Sprintf("rev %d\n", i)))
		require.NoError(t, err)
	}

	m := NewManager(store, nil)
	res, err := m.Trim("strategy/a.py", 50)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Deleted)
	assert.Empty(t, res.Failures)

	snaps, err := store.List("strategy/a.py")
	require.NoError(t, err)
	require.Len(t, snaps, 50)
	// Survivors are the 50 most recent: the oldest five timestamps are gone.
	oldest := snaps[len(snaps)-1].Created()
	assert.True(t, oldest.After(t0.Add(5*time.Second)), "oldest survivor %v", oldest)
}

func TestTrimUnderCapIsNoOp(t *testing.T) {
	store := storeAt(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local))
	for i := 0; i < 3; i++ {
		_, err := store.Create("strategy/a.py", []byte(fmt.Sprintf("rev %d\n", i)))
		require.NoError(t, err)
	}
	res, err := NewManager(store, nil).Trim("strategy/a.py", 50)
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)
}

func TestTrimRejectsZeroCap(t *testing.T) {
	store := storeAt(t, time.Now())
	_, err := NewManager(store, nil).Trim("strategy/a.py", 0)
	assert.Error(t, err)
}

func TestPurgePreviewAndExecute(t *testing.T) {
	// Snapshots created 40 days in the past.
	created := time.Now().AddDate(0, 0, -40)
	store := storeAt(t, created)
	for i := 0; i < 3; i++ {
		_, err := store.Create("strategy/old.py", []byte(fmt.Sprintf("rev %d\n", i)))
		require.NoError(t, err)
	}
	// And one fresh snapshot that must survive.
	fresh := snapshot.NewStore(store.Dir())
	_, err := fresh.Create("strategy/new.py", []byte("current\n"))
	require.NoError(t, err)

	m := NewManager(store, nil)

	old, err := m.PreviewPurge(30)
	require.NoError(t, err)
	assert.Len(t, old, 3, "preview must report only stale snapshots")

	// Preview alone deletes nothing.
	all, err := store.List("")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	res, err := m.Purge(30)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Deleted)

	all, err = store.List("")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "strategy_new.py", all[0].LogicalPath)
}
