package manage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"stratvault/internal/fsutil"
	"stratvault/internal/snapshot"
)

// ManifestName is the summary record written into every export directory.
const ManifestName = "export_manifest.json"

// Manifest summarizes one export run.
type Manifest struct {
	ExportID       string `json:"export_id"`
	ExportedAt     string `json:"exported_at"`
	SnapshotCount  int    `json:"snapshot_count"`
	SidecarCount   int    `json:"sidecar_count"`
	TotalSizeBytes int64  `json:"total_size_bytes"`
}

// Export bulk-copies every snapshot and sidecar into targetDir and writes
// a manifest alongside them. Any single copy failure aborts the export;
// partially-copied files remain for inspection.
func (s *Service) Export(targetDir string) (*Manifest, error) {
	snaps, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir %s: %w", targetDir, err)
	}

	m := &Manifest{
		ExportID:   uuid.NewString(),
		ExportedAt: s.clock().Format("2006-01-02 15:04:05"),
	}
	for _, snap := range snaps {
		n, err := copyFile(snap.Path, filepath.Join(targetDir, snap.Name))
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", snap.Name, err)
		}
		m.SnapshotCount++
		m.TotalSizeBytes += n
		sidecar := snap.Path + snapshot.MetaExt
		if _, err := os.Stat(sidecar); err == nil {
			n, err := copyFile(sidecar, filepath.Join(targetDir, snap.Name+snapshot.MetaExt))
			if err != nil {
				return nil, fmt.Errorf("export sidecar of %s: %w", snap.Name, err)
			}
			m.SidecarCount++
			m.TotalSizeBytes += n
		}
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export manifest: %w", err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(targetDir, ManifestName), append(b, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write export manifest: %w", err)
	}
	s.log.Info("vault exported", "dir", targetDir, "snapshots", m.SnapshotCount, "bytes", m.TotalSizeBytes)
	return m, nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return n, err
	}
	return n, out.Close()
}
