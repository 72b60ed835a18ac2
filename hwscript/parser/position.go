package parser

import (
	"sort"
	"unicode/utf8"
)

// Position is a zero-based line and UTF-16 character offset, the unit
// editors speak over LSP.
type Position struct {
	Line      int
	Character int
}

// LineIndex converts between byte offsets and Positions for one text.
type LineIndex struct {
	text   string
	starts []int
}

func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

func (x *LineIndex) LineCount() int {
	return len(x.starts)
}

// LineStart returns the byte offset of the first byte of line.
func (x *LineIndex) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(x.starts) {
		return len(x.text)
	}
	return x.starts[line]
}

// Line returns the text of line without its terminator.
func (x *LineIndex) Line(line int) string {
	if line < 0 || line >= len(x.starts) {
		return ""
	}
	end := len(x.text)
	if line+1 < len(x.starts) {
		end = x.starts[line+1] - 1
	}
	s := x.text[x.starts[line]:end]
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}

// Position maps a byte offset to a Position. Offsets are clamped to the text.
func (x *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(x.text) {
		offset = len(x.text)
	}
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	char := 0
	for i := x.starts[line]; i < offset; {
		r, size := utf8.DecodeRuneInString(x.text[i:])
		if i+size > offset {
			break
		}
		char += utf16Len(r)
		i += size
	}
	return Position{Line: line, Character: char}
}

// Offset maps a Position back to a byte offset. Characters past the end
// of the line clamp to the line end; lines past the end clamp to the text end.
func (x *LineIndex) Offset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(x.starts) {
		return len(x.text)
	}
	i := x.starts[pos.Line]
	lineEnd := len(x.text)
	if pos.Line+1 < len(x.starts) {
		lineEnd = x.starts[pos.Line+1] - 1
	}
	char := 0
	for i < lineEnd && char < pos.Character {
		r, size := utf8.DecodeRuneInString(x.text[i:])
		char += utf16Len(r)
		i += size
	}
	return i
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
