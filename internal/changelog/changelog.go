// Package changelog maintains the single reverse-chronological log of
// version events across all tracked files.
//
// The document has one fixed header block, created idempotently on first
// use, followed by entries newest-first. New entries are inserted
// immediately after the header by rebuilding the full document in memory
// and atomically replacing the file, so a crash or interleaved writer
// never truncates the log.
package changelog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"stratvault/internal/analyze"
	"stratvault/internal/fsutil"
)

// headerMarker separates the fixed header block from the entry sequence.
const headerMarker = "\n---\n"

const header = `# Strategy Change Log

Automatic version history for tracked strategy files, newest first.
Versions are derived from the line-count change ratio; pure reorders with
no net line change record as patch. Maintained by stratvault — entries are
machine-written, do not edit by hand.
` + headerMarker

// summaryRule maps a path keyword to a human-readable change sentence.
// Rules are evaluated in order; the first match wins. Extending this table
// does not change the append contract.
type summaryRule struct {
	keyword string
	text    string
}

var summaryRules = []summaryRule{
	{"indicator", "Updated technical indicator calculations"},
	{"signal", "Adjusted trade signal generation rules"},
	{"backtest", "Modified backtesting engine behavior"},
	{"config", "Changed strategy configuration parameters"},
	{"strategy", "Updated core trading strategy logic"},
}

const defaultSummary = "Updated tracked file"

// Summarize derives the entry sentence from the file path.
func Summarize(path string) string {
	p := strings.ToLower(path)
	for _, r := range summaryRules {
		if strings.Contains(p, r.keyword) {
			return r.text
		}
	}
	return defaultSummary
}

// Entry is one version event to record.
type Entry struct {
	Version string
	Time    time.Time
	Tier    analyze.Tier
	Path    string
}

// Writer appends entries to one changelog document.
type Writer struct {
	path string
}

// NewWriter targets the changelog at path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the changelog location.
func (w *Writer) Path() string { return w.path }

func formatEntry(e Entry) string {
	base := e.Path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	return fmt.Sprintf("## v%s — %s %s [%s]\n- File: %s (`%s`)\n- %s\n\n",
		e.Version,
		e.Time.Format("2006-01-02"),
		e.Time.Format("15:04:05"),
		e.Tier,
		base,
		e.Path,
		Summarize(e.Path),
	)
}

// Append inserts e directly after the header, before all earlier entries.
// A missing document gets the header exactly once; an existing document
// keeps its header and prior entries byte-identical.
func (w *Writer) Append(e Entry) error {
	existing, err := os.ReadFile(w.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read changelog %s: %w", w.path, err)
	}

	var doc strings.Builder
	entry := formatEntry(e)
	if idx := strings.Index(string(existing), headerMarker); idx >= 0 {
		cut := idx + len(headerMarker)
		doc.Write(existing[:cut])
		doc.WriteString("\n")
		doc.WriteString(entry)
		doc.WriteString(strings.TrimLeft(string(existing[cut:]), "\n"))
	} else {
		// No header yet (new or foreign file): establish the fixed block.
		doc.WriteString(header)
		doc.WriteString("\n")
		doc.WriteString(entry)
	}

	if err := fsutil.WriteFileAtomic(w.path, []byte(doc.String()), 0o644); err != nil {
		return fmt.Errorf("write changelog %s: %w", w.path, err)
	}
	return nil
}
