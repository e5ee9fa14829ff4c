package manage

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratvault/internal/snapshot"
	"stratvault/internal/version"
	"stratvault/internal/ziputil"
)

func TestStatsAggregation(t *testing.T) {
	vault := t.TempDir()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

	// Two fresh snapshots and one ten days old.
	mkStore := func(at time.Time) *snapshot.Store {
		n := 0
		return snapshot.NewStore(vault, snapshot.WithClock(func() time.Time {
			n++
			return at.Add(time.Duration(n) * time.Second)
		}))
	}
	recent := mkStore(now.Add(-2 * time.Hour))
	_, err := recent.Create("strategy/a.py", []byte("a1\n"))
	require.NoError(t, err)
	_, err = recent.Create("strategy/a.py", []byte("a2\n"))
	require.NoError(t, err)
	stale := mkStore(now.AddDate(0, 0, -10))
	_, err = stale.Create("strategy/b.py", []byte("b\n"))
	require.NoError(t, err)

	svc := NewService(snapshot.NewStore(vault), version.NewAllocator(vault, nil), nil).
		WithClock(func() time.Time { return now })

	st, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalSnapshots)
	assert.Equal(t, int64(3+3+2), st.TotalSize)
	assert.Equal(t, 2, st.LastDay)
	assert.Equal(t, 2, st.LastWeek)
	require.Len(t, st.PerFile, 2)
	assert.Equal(t, FileCount{Path: "strategy/a.py", Count: 2}, st.PerFile[0])
}

func TestSearchFindsMatchingLines(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create("strategy/a.py", []byte("def fast_ma():\n    pass\n"))
	require.NoError(t, err)
	_, err = f.store.Create("strategy/b.py", []byte("slow = 26\n"))
	require.NoError(t, err)

	matches, err := f.svc.Search("FAST_MA")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "strategy/a.py", matches[0].Snapshot.Path)
	require.Len(t, matches[0].Lines, 1)
	assert.Equal(t, 1, matches[0].Lines[0].Number)

	_, err = f.svc.Search("   ")
	assert.Error(t, err)
}

func TestExportWritesManifestAndCopies(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create("strategy/a.py", []byte("alpha\n"))
	require.NoError(t, err)
	_, err = f.store.Create("config/p.yaml", []byte("beta\n"))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "export")
	m, err := f.svc.Export(dest)
	require.NoError(t, err)
	assert.Equal(t, 2, m.SnapshotCount)
	assert.Equal(t, 2, m.SidecarCount)
	assert.NotEmpty(t, m.ExportID)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	// 2 snapshots + 2 sidecars + manifest.
	assert.Len(t, entries, 5)

	// The export directory zips deterministically.
	out := filepath.Join(t.TempDir(), "export.zip")
	require.NoError(t, ziputil.WriteDirArchive(out, dest))
	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 5)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2<<20))
}
