// Package protocol decodes and encodes the delimited multi-file text stream
// used when one backend response carries several files:
//
//	=== FILE: path/to/file.ext ===
//	...verbatim content...
//	=== FILE END ===
//
// The end marker is optional. A start marker implicitly closes the file
// before it, and end of stream closes the last open file. Lines outside any
// file block are discarded. Decoding never fails: malformed streams yield a
// best-effort partial bundle.
package protocol

import (
	"strings"

	"github.com/dusk-indust/scaffold/internal/project"
)

const (
	startPrefix = "=== FILE:"
	startSuffix = "==="
	endMarker   = "=== FILE END ==="
)

// StartMarker returns the start marker line for path.
func StartMarker(path string) string {
	return startPrefix + " " + path + " " + startSuffix
}

// EndMarker returns the end marker line.
func EndMarker() string {
	return endMarker
}

// parseStart extracts the path from a start marker line. It returns false
// for ordinary lines and for markers with an empty path.
func parseStart(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, startPrefix) || !strings.HasSuffix(t, startSuffix) {
		return "", false
	}
	if len(t) < len(startPrefix)+len(startSuffix) {
		return "", false
	}
	path := strings.TrimSpace(t[len(startPrefix) : len(t)-len(startSuffix)])
	if path == "" {
		return "", false
	}
	return path, true
}

func isEnd(line string) bool {
	return strings.TrimSpace(line) == endMarker
}

// decoder holds the OUTSIDE / IN_FILE state. inFile is false while outside.
type decoder struct {
	out    *project.Bundle
	inFile bool
	path   string
	lines  []string
}

func (d *decoder) open(path string) {
	d.inFile = true
	d.path = path
	d.lines = d.lines[:0]
}

// emit writes the open file into the bundle and returns to OUTSIDE.
func (d *decoder) emit() {
	if !d.inFile {
		return
	}
	d.out.Set(d.path, joinTrimmed(d.lines))
	d.inFile = false
	d.path = ""
	d.lines = d.lines[:0]
}

func (d *decoder) line(l string) {
	if path, ok := parseStart(l); ok {
		d.emit()
		d.open(path)
		return
	}
	if !d.inFile {
		return
	}
	if isEnd(l) {
		d.emit()
		return
	}
	d.lines = append(d.lines, l)
}

// Parse decodes text into an ordered bundle. A path seen twice keeps its
// first position and takes the content of its last block.
func Parse(text string) *project.Bundle {
	d := &decoder{out: project.NewBundle()}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, l := range strings.Split(text, "\n") {
		d.line(l)
	}
	d.emit()
	return d.out
}

// joinTrimmed joins lines with "\n" after dropping leading and trailing
// whitespace-only lines. Interior blank lines are kept verbatim.
func joinTrimmed(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
