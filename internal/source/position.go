// Package source tracks file/line/column positions and renders diagnostics.
package source

import "sort"

// File records a single source file's byte content and its line-start
// offsets, so that any byte offset can be mapped back to a 1-based
// line/column pair without rescanning the text.
type File struct {
	Name        string
	Content     []byte
	lineStarts  []int // byte offset of the first byte of each line
}

// NewFile indexes content's newlines once, up front.
func NewFile(name string, content []byte) *File {
	f := &File{Name: name, Content: content, lineStarts: []int{0}}
	for i, b := range content {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// Position is a 1-based line/column pair plus the byte offset it came from.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Position maps a byte offset into this file to a line/column pair.
// Offsets past the end of the file clamp to the last byte.
func (f *File) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Content) {
		offset = len(f.Content)
	}
	// lineStarts is sorted; find the last line start <= offset.
	i := sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return Position{Offset: offset, Line: i + 1, Column: offset - f.lineStarts[i] + 1}
}

// Line returns the raw bytes of a 1-based line number, without the
// trailing newline, or nil if out of range.
func (f *File) Line(line int) []byte {
	if line < 1 || line > len(f.lineStarts) {
		return nil
	}
	start := f.lineStarts[line-1]
	end := len(f.Content)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	}
	if end < start {
		end = start
	}
	for end > start && (f.Content[end-1] == '\n' || f.Content[end-1] == '\r') {
		end--
	}
	return f.Content[start:end]
}
