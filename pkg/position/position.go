package position

import (
	"fmt"
	"sort"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/walteh/tmplex/pkg/token"
)

type Place struct {
	Line      int
	Character int
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

type Range struct {
	Start Place
	End   Place
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

func (p *RawPosition) Length() int {
	return len(p.Text)
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// NewTokenPosition is the span of t in src.
func NewTokenPosition(src string, t token.Token) RawPosition {
	return RawPosition{Text: src[t.Start:t.End], Offset: t.Start}
}

func (p RawPosition) HasRangeOverlapWith(other RawPosition) bool {
	start, end := other.Offset, other.Offset+other.Length()
	pStart, pEnd := p.Offset, p.Offset+p.Length()

	// zero length ranges overlap when they touch the other range
	if p.Length() == 0 {
		return pStart >= start && pStart <= end
	}
	if other.Length() == 0 {
		return start >= pStart && start <= pEnd
	}
	return start < pEnd && end > pStart
}

// GetLineAndColumn returns the zero based line and column of p. Columns count
// grapheme clusters, so a combining sequence or an emoji is one column.
func (p RawPosition) GetLineAndColumn(text string) (line, col int) {
	return NewIndex(text).LineAndColumn(p.Offset)
}

func (p RawPosition) GetRange(fileText string) Range {
	return NewIndex(fileText).Range(p.Offset, p.Offset+p.Length())
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

type RawPositionArray []RawPosition

func (me RawPositionArray) Texts() []string {
	texts := make([]string, 0, len(me))
	for _, pos := range me {
		texts = append(texts, pos.Text)
	}
	return texts
}

// Index maps byte offsets of one text to lines and columns. Build it once per
// document when converting many positions.
type Index struct {
	text  string
	lines []int
}

func NewIndex(text string) *Index {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &Index{text: text, lines: lines}
}

// LineCount is the number of lines, counting a trailing empty one.
func (x *Index) LineCount() int {
	return len(x.lines)
}

// LineStart returns the byte offset of line, clamped to the text.
func (x *Index) LineStart(line int) int {
	switch {
	case line < 0:
		return 0
	case line >= len(x.lines):
		return len(x.text)
	}
	return x.lines[line]
}

// Offset converts a zero based line and byte column.
func (x *Index) Offset(line, col int) int {
	off := x.LineStart(line) + col
	if off > len(x.text) {
		return len(x.text)
	}
	return off
}

func (x *Index) line(offset int) int {
	return sort.Search(len(x.lines), func(i int) bool { return x.lines[i] > offset }) - 1
}

// LineAndColumn returns the zero based line and grapheme column of offset.
func (x *Index) LineAndColumn(offset int) (line, col int) {
	if offset <= 0 {
		return 0, 0
	}
	if offset > len(x.text) {
		offset = len(x.text)
	}
	line = x.line(offset)
	return line, Columns(x.text[x.lines[line]:offset])
}

func (x *Index) Place(offset int) Place {
	line, col := x.LineAndColumn(offset)
	return Place{Line: line, Character: col}
}

func (x *Index) Range(start, end int) Range {
	return Range{Start: x.Place(start), End: x.Place(end)}
}

// Lines splits [start, end) at line breaks. Each piece keeps its newline.
func (x *Index) Lines(start, end int) []RawPosition {
	var out []RawPosition
	for start < end {
		next := end
		if i := strings.IndexByte(x.text[start:end], '\n'); i >= 0 {
			next = start + i + 1
		}
		out = append(out, RawPosition{Offset: start, Text: x.text[start:next]})
		start = next
	}
	return out
}

// Columns counts the grapheme clusters of s. Invalid UTF-8 counts one column
// per byte.
func Columns(s string) int {
	n, err := textseg.TokenCount([]byte(s), textseg.ScanGraphemeClusters)
	if err != nil {
		return len(s)
	}
	return n
}
