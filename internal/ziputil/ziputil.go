// Package ziputil writes the optional export archive: a deterministic zip
// of exported snapshot files, sorted entries, fixed timestamps, so two
// exports of the same vault state are byte-for-byte identical.
package ziputil

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FixedZipTime ensures byte-for-byte reproducible archives (1980-01-01 UTC).
var FixedZipTime = time.Unix(315532800, 0).UTC()

// SanitizePath normalizes zip entry paths (forward slashes, no drive, no
// leading '/'), and removes '.' and '..' segments without escaping the root.
func SanitizePath(p string) string {
	s := filepath.ToSlash(p)
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	s = strings.Join(stack, "/")
	if s == "" {
		return "entry"
	}
	return s
}

// writeEntry streams one file into the archive with the fixed timestamp.
func writeEntry(zw *zip.Writer, name string, r io.Reader) error {
	h := &zip.FileHeader{Name: SanitizePath(name), Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = FixedZipTime
	w, err := zw.CreateHeader(h)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// WriteDirArchive zips every regular file directly under dir into out,
// in sorted name order. Subdirectories are skipped; the export layout is
// flat by construction.
func WriteDirArchive(out, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read export dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", out, err)
	}
	zw := zip.NewWriter(f)
	for _, name := range names {
		src, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			_ = zw.Close()
			_ = f.Close()
			return fmt.Errorf("open %s: %w", name, err)
		}
		werr := writeEntry(zw, name, src)
		_ = src.Close()
		if werr != nil {
			_ = zw.Close()
			_ = f.Close()
			return werr
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize archive %s: %w", out, err)
	}
	return f.Close()
}
