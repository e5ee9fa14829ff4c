// Package diffrec produces and stores the unified-diff artifact for one
// version transition. Diffs are generated with go-difflib (classic
// ---/+++/@@ output) and summarized by parsing the result with
// sourcegraph/go-diff, so the added/removed counts always agree with the
// stored body.
//
// The artifact stores the full diff; any line cap is a presentation
// concern of consumers, never applied at write time.
package diffrec

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	difflib "github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"

	"stratvault/internal/fsutil"
	"stratvault/internal/snapshot"
	"stratvault/internal/textutil"
)

// DefaultContext is the number of context lines in unified hunks.
const DefaultContext = 3

// ArtifactExt is the diff artifact file extension.
const ArtifactExt = ".diff"

// Artifact is the persisted diff record for one version transition.
type Artifact struct {
	LogicalPath string
	Version     string
	Timestamp   string
	Added       int
	Removed     int
	DiffText    string
	Name        string // artifact file base name
	Path        string // absolute artifact path
}

// Recorder writes diff artifacts into the vault directory.
type Recorder struct {
	dir     string
	context int
}

// NewRecorder creates a recorder over dir using DefaultContext hunks.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir, context: DefaultContext}
}

// Unified produces a classic unified patch from oldText to newText with
// git-style a/ b/ path prefixes. Identical inputs yield an empty body.
func Unified(path, oldText, newText string, context int) (string, error) {
	if context <= 0 {
		context = DefaultContext
	}
	u := difflib.UnifiedDiff{
		A:        textutil.SplitLinesKeepNL(oldText),
		B:        textutil.SplitLinesKeepNL(newText),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  context,
	}
	body, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("generate unified diff for %s: %w", path, err)
	}
	return body, nil
}

// Stats counts lines introduced and removed in a unified diff body. The
// body is parsed with go-diff; a body it cannot parse (or an empty one)
// falls back to counting marker lines directly.
func Stats(unified string) (added, removed int) {
	if unified == "" {
		return 0, 0
	}
	if fd, err := sgdiff.ParseFileDiff([]byte(unified)); err == nil {
		st := fd.Stat()
		return int(st.Added + st.Changed), int(st.Deleted + st.Changed)
	}
	for _, ln := range strings.SplitAfter(unified, "\n") {
		switch {
		case strings.HasPrefix(ln, "+++"), strings.HasPrefix(ln, "---"):
		case strings.HasPrefix(ln, "+"):
			added++
		case strings.HasPrefix(ln, "-"):
			removed++
		}
	}
	return added, removed
}

var artifactTmpl = template.Must(template.New("artifact").Parse(`# Diff Report
# File: {{.File}}
# Version: {{.Version}}
# Timestamp: {{.Timestamp}}

## Change Summary
- Added lines: {{.Added}}
- Removed lines: {{.Removed}}
- Total changed: {{.Total}}

## Unified Diff
{{.Body}}`))

// Record generates the unified diff for a version transition and persists
// the artifact as <flattened>.v<version>.<timestamp>.diff. The returned
// Artifact carries the summary counts recorded in the file.
func (r *Recorder) Record(originalPath, oldText, newText, ver string, at time.Time) (*Artifact, error) {
	body, err := Unified(originalPath, oldText, newText, r.context)
	if err != nil {
		return nil, err
	}
	added, removed := Stats(body)

	flat := snapshot.FlattenPath(originalPath)
	ts := at.Format(snapshot.TimeLayout)
	name := fmt.Sprintf("%s.v%s.%s%s", flat, ver, ts, ArtifactExt)

	renderedBody := body
	if renderedBody == "" {
		renderedBody = "(no textual changes)\n"
	}
	var buf bytes.Buffer
	err = artifactTmpl.Execute(&buf, map[string]any{
		"File":      originalPath,
		"Version":   ver,
		"Timestamp": at.Format("2006-01-02 15:04:05"),
		"Added":     added,
		"Removed":   removed,
		"Total":     added + removed,
		"Body":      renderedBody,
	})
	if err != nil {
		return nil, fmt.Errorf("render diff artifact for %s: %w", originalPath, err)
	}

	path := filepath.Join(r.dir, name)
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write diff artifact %s: %w", name, err)
	}

	return &Artifact{
		LogicalPath: flat,
		Version:     ver,
		Timestamp:   ts,
		Added:       added,
		Removed:     removed,
		DiffText:    body,
		Name:        name,
		Path:        path,
	}, nil
}
