// Package hostlex is the streaming tokenizer for the HTML-like host grammar.
// It knows tags, attributes, text, comments and entities, and nothing about
// embedded dialects. Every call is a pure function of the text and a small
// State, so lexing can resume at any token boundary.
package hostlex

import (
	"strings"

	"github.com/walteh/tmplex/pkg/token"
)

// State is the host lexer position class. Packed in StateBits bits.
type State uint8

const (
	Data State = iota
	InTag
	AfterAttrName
	BeforeAttrValue
	AttrValueDouble
	AttrValueSingle
	InEndTag
	BlockHeader

	stateCount
)

// StateBits is the width of a packed State.
const StateBits = 4

// MaxState is the largest valid State.
const MaxState = stateCount - 1

var stateNames = [...]string{
	Data:            "data",
	InTag:           "in-tag",
	AfterAttrName:   "after-attribute-name",
	BeforeAttrValue: "before-attribute-value",
	AttrValueDouble: "attribute-value-double",
	AttrValueSingle: "attribute-value-single",
	InEndTag:        "in-end-tag",
	BlockHeader:     "block-header",
}

func (s State) String() string {
	if s > MaxState {
		return "invalid"
	}
	return stateNames[s]
}

// InsideTag reports whether s is between `<name` and the closing `>`.
func (s State) InsideTag() bool {
	switch s {
	case InTag, AfterAttrName, BeforeAttrValue, AttrValueDouble, AttrValueSingle, InEndTag:
		return true
	}
	return false
}

// InAttrValue reports whether s is inside a quoted attribute value.
func (s State) InAttrValue() bool {
	return s == AttrValueDouble || s == AttrValueSingle
}

// Quote returns the closing quote of a quoted attribute value state.
func (s State) Quote() byte {
	if s == AttrValueSingle {
		return '\''
	}
	return '"'
}

// Grammar tunes the host lexer.
type Grammar struct {
	// TextBreaks are strings at which text and attribute value runs stop.
	TextBreaks []string
	// Blocks enables `@name (...) {` block syntax in text.
	Blocks bool
}

// Advance lexes the token starting at from.
func Advance(text string, from int, st State, g *Grammar) (token.Token, State) {
	tok, next := advance(text, from, st, g)
	if tok.Kind != token.EOF && tok.End == len(text) && next.InsideTag() {
		tok.Flags |= token.Malformed
	}
	return tok, next
}

func advance(text string, p int, st State, g *Grammar) (token.Token, State) {
	if g == nil {
		g = &Grammar{}
	}
	for {
		if p >= len(text) {
			return token.Token{Kind: token.EOF, Start: p, End: p}, st
		}
		c := text[p]

		switch st {
		case Data:
			return lexData(text, p, g)

		case InTag:
			switch {
			case isSpace(c):
				return spaces(text, p), InTag
			case c == '>':
				return tok(token.TagEnd, p, p+1), Data
			case strings.HasPrefix(text[p:], "/>"):
				return tok(token.TagEnd, p, p+2), Data
			case c == '<':
				return resync(text, p, g)
			}
			end := p + 1
			for end < len(text) && !isSpace(text[end]) && text[end] != '=' && text[end] != '>' && text[end] != '<' && !strings.HasPrefix(text[end:], "/>") {
				end++
			}
			return tok(token.AttrName, p, end), AfterAttrName

		case AfterAttrName:
			switch {
			case isSpace(c):
				return spaces(text, p), AfterAttrName
			case c == '=':
				return tok(token.AttrEq, p, p+1), BeforeAttrValue
			}
			st = InTag

		case BeforeAttrValue:
			switch {
			case isSpace(c):
				return spaces(text, p), BeforeAttrValue
			case c == '"' || c == '\'':
				next := AttrValueDouble
				if c == '\'' {
					next = AttrValueSingle
				}
				t := tok(token.AttrQuote, p, p+1)
				if strings.IndexByte(text[p+1:], c) < 0 {
					t.Flags |= token.Malformed
				}
				return t, next
			case c == '<':
				return resync(text, p, g)
			case c == '>':
				st = InTag
				continue
			}
			end := p + 1
			for end < len(text) && !isSpace(text[end]) && text[end] != '>' && text[end] != '<' {
				end++
			}
			return tok(token.AttrValue, p, end), InTag

		case AttrValueDouble, AttrValueSingle:
			q := st.Quote()
			if c == q {
				return tok(token.AttrQuote, p, p+1), InTag
			}
			if strings.IndexByte(text[p:], q) < 0 {
				// never closed: give the rest of the tag back to InTag
				end := p
				for end < len(text) && text[end] != '>' && text[end] != '<' {
					end++
				}
				if end == p {
					st = InTag
					continue
				}
				t := tok(token.AttrValue, p, end)
				t.Flags |= token.Malformed
				return t, InTag
			}
			if c == '&' {
				if end := EntityEnd(text, p); end > 0 {
					return tok(token.EntityRef, p, end), st
				}
			}
			end := p + 1
			for end < len(text) && text[end] != q && text[end] != '&' && !breaksAt(text, end, g) {
				end++
			}
			return tok(token.AttrValue, p, end), st

		case InEndTag:
			switch {
			case isSpace(c):
				return spaces(text, p), InEndTag
			case c == '>':
				return tok(token.TagEnd, p, p+1), Data
			case c == '<':
				return resync(text, p, g)
			}
			end := p + 1
			for end < len(text) && !isSpace(text[end]) && text[end] != '>' && text[end] != '<' {
				end++
			}
			t := tok(token.Text, p, end)
			t.Flags |= token.Malformed
			return t, InEndTag

		case BlockHeader:
			switch {
			case isSpace(c):
				return spaces(text, p), BlockHeader
			case c == '(':
				end, ok := parenEnd(text, p)
				t := tok(token.BlockParameters, p, end)
				if !ok {
					t.Flags |= token.Malformed
				}
				return t, BlockHeader
			case c == '{':
				return tok(token.BlockOpen, p, p+1), Data
			}
			st = Data

		default:
			// not a state this package produces; treat as text
			st = Data
		}
	}
}

func lexData(text string, p int, g *Grammar) (token.Token, State) {
	c := text[p]
	rest := text[p:]

	switch {
	case c == '<':
		switch {
		case strings.HasPrefix(rest, "<!--"):
			return until(text, p, 4, "-->", token.Comment), Data
		case strings.HasPrefix(rest, "<![CDATA["):
			return until(text, p, 9, "]]>", token.CData), Data
		case strings.HasPrefix(rest, "<!"):
			return until(text, p, 2, ">", token.Doctype), Data
		case strings.HasPrefix(rest, "<?"):
			return until(text, p, 2, ">", token.Comment), Data
		case strings.HasPrefix(rest, "</") && p+2 < len(text) && IsNameStart(text[p+2]):
			return tok(token.TagClose, p, nameEnd(text, p+2)), InEndTag
		case p+1 < len(text) && IsNameStart(text[p+1]):
			return tok(token.TagOpen, p, nameEnd(text, p+1)), InTag
		}
	case c == '&':
		if end := EntityEnd(text, p); end > 0 {
			return tok(token.EntityRef, p, end), Data
		}
	case g.Blocks && c == '@' && p+1 < len(text) && isLetter(text[p+1]):
		return tok(token.BlockName, p, blockNameEnd(text, p+1)), BlockHeader
	case g.Blocks && c == '}':
		return tok(token.BlockClose, p, p+1), Data
	case isSpace(c):
		return spaces(text, p), Data
	}

	end := p + 1
	for end < len(text) {
		c := text[end]
		if c == '<' || c == '&' || isSpace(c) || (g.Blocks && (c == '@' || c == '}')) || breaksAt(text, end, g) {
			break
		}
		end++
	}
	return tok(token.Text, p, end), Data
}

// MarkupSpan is the number of bytes MarkupStart examines.
const MarkupSpan = 3

// MarkupStart reports whether the `<` at p opens markup rather than text.
func MarkupStart(text string, p int) bool {
	if p+1 >= len(text) || text[p] != '<' {
		return false
	}
	switch c := text[p+1]; {
	case c == '!', c == '?', IsNameStart(c):
		return true
	case c == '/':
		return p+2 < len(text) && IsNameStart(text[p+2])
	}
	return false
}

// NextMarkup returns the first offset at or after from where MarkupStart
// holds, or -1.
func NextMarkup(text string, from int) int {
	for i := from; i < len(text); {
		j := strings.IndexByte(text[i:], '<')
		if j < 0 {
			return -1
		}
		if MarkupStart(text, i+j) {
			return i + j
		}
		i += j + 1
	}
	return -1
}

// resync restarts lexing in Data at a `<` that interrupted a tag.
func resync(text string, p int, g *Grammar) (token.Token, State) {
	t, st := lexData(text, p, g)
	t.Flags |= token.Malformed
	return t, st
}

func until(text string, p, skip int, term string, kind token.Kind) token.Token {
	i := strings.Index(text[p+skip:], term)
	if i < 0 {
		t := tok(kind, p, len(text))
		t.Flags |= token.Unterminated
		return t
	}
	return tok(kind, p, p+skip+i+len(term))
}

func tok(kind token.Kind, start, end int) token.Token {
	return token.Token{Kind: kind, Start: start, End: end}
}

func spaces(text string, p int) token.Token {
	end := p + 1
	for end < len(text) && isSpace(text[end]) {
		end++
	}
	return tok(token.Whitespace, p, end)
}

func breaksAt(text string, i int, g *Grammar) bool {
	for _, b := range g.TextBreaks {
		if b != "" && strings.HasPrefix(text[i:], b) {
			return true
		}
	}
	return false
}

func nameEnd(text string, i int) int {
	for i < len(text) && !isSpace(text[i]) && text[i] != '/' && text[i] != '>' && text[i] != '<' {
		i++
	}
	return i
}

func blockNameEnd(text string, start int) int {
	i := start
	for i < len(text) && (isLetter(text[i]) || isDigit(text[i])) {
		i++
	}
	// `@else if` is one block name
	if text[start:i] == "else" {
		j := i
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j > i && strings.HasPrefix(text[j:], "if") && (j+2 == len(text) || !isLetter(text[j+2])) {
			return j + 2
		}
	}
	return i
}

// parenEnd finds the paren matching text[p], skipping quoted strings. When
// there is none it stops at the first `{` or newline and reports false. A
// string left open on its line also reports false: the search for its quote
// looked past the paren.
func parenEnd(text string, p int) (int, bool) {
	depth, closed := 0, true
	for i := p; i < len(text); i++ {
		switch c := text[i]; c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, closed
			}
		case '"', '\'', '`':
			if end := quotedEnd(text, i); end > 0 {
				i = end - 1
			} else {
				closed = false
			}
		}
	}
	for i := p + 1; i < len(text); i++ {
		if text[i] == '{' || text[i] == '\n' {
			return i, false
		}
	}
	return len(text), false
}

func quotedEnd(text string, p int) int {
	q := text[p]
	for i := p + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case q:
			return i + 1
		case '\n':
			return -1
		}
	}
	return -1
}

// EntityEnd returns the end of a character reference at text[p] (`&amp;`,
// `&#123;`, `&#x1f;`), or -1.
func EntityEnd(text string, p int) int {
	i := p + 1
	if i < len(text) && text[i] == '#' {
		i++
		hex := i < len(text) && (text[i] == 'x' || text[i] == 'X')
		if hex {
			i++
		}
		start := i
		for i < len(text) && (isDigit(text[i]) || (hex && isHex(text[i]))) {
			i++
		}
		if i == start {
			return -1
		}
	} else {
		start := i
		for i < len(text) && (isLetter(text[i]) || isDigit(text[i])) {
			i++
		}
		if i == start {
			return -1
		}
	}
	if i < len(text) && text[i] == ';' {
		return i + 1
	}
	return -1
}

// TagName returns the element name of a TagOpen or TagClose token.
func TagName(text string, t token.Token) string {
	s := text[t.Start:t.End]
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimPrefix(s, "/")
	return strings.TrimSpace(s)
}

func IsNameStart(c byte) bool {
	return isLetter(c)
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
