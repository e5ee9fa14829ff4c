// Package textutil contains the small text helpers shared by the change
// analyzer and the diff recorder: newline normalization, line counting, and
// newline-preserving line splitting.
package textutil

import (
	"bytes"
	"strings"
)

// NormalizeUTF8LF converts CRLF/CR to LF and ensures the output is valid
// UTF-8 by replacing invalid byte sequences with the Unicode replacement
// character.
func NormalizeUTF8LF(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("�"))
}

// CountLines returns the number of lines in s. A trailing newline does not
// open an extra empty line: "a\nb\n" and "a\nb" both count 2. The empty
// string counts 0.
func CountLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// SplitLinesKeepNL splits into lines and keeps newline characters, which
// produces better unified hunks. A file not ending in '\n' keeps its last
// chunk bare.
func SplitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
