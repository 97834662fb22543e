package token

import (
	"fmt"

	"github.com/walteh/tmplex/pkg/delim"
)

// Kind is the class of a lexed span
type Kind uint8

const (
	// EOF is returned once the input is exhausted. It is zero width and never
	// part of the tiled stream.
	EOF Kind = iota

	// TagOpen is `<name` of a start tag
	TagOpen
	// TagClose is `</name` of an end tag
	TagClose
	// TagEnd is the `>` or `/>` closing a start or end tag
	TagEnd
	AttrName
	AttrEq
	// AttrQuote is the quote opening or closing an attribute value
	AttrQuote
	AttrValue
	Text
	// Whitespace is structural whitespace (inside tags)
	Whitespace
	// RealWhitespace is whitespace that is part of content
	RealWhitespace
	Comment
	EntityRef
	Doctype
	CData

	// BlockName is `@if`, `@for`, ... of a control-flow block
	BlockName
	// BlockParameters is the parenthesized header of a control-flow block
	BlockParameters
	BlockOpen
	BlockClose

	// EmbeddedContent is a span owned by a sub-lexer
	EmbeddedContent
	// InterpolationDelimiter is an interpolation open or close marker
	InterpolationDelimiter
)

var kindNames = map[Kind]string{
	EOF:                    "eof",
	TagOpen:                "tag-open",
	TagClose:               "tag-close",
	TagEnd:                 "tag-end",
	AttrName:               "attribute-name",
	AttrEq:                 "attribute-eq",
	AttrQuote:              "attribute-quote",
	AttrValue:              "attribute-value",
	Text:                   "text",
	Whitespace:             "whitespace",
	RealWhitespace:         "real-whitespace",
	Comment:                "comment",
	EntityRef:              "entity-ref",
	Doctype:                "doctype",
	CData:                  "cdata",
	BlockName:              "block-name",
	BlockParameters:        "block-parameters",
	BlockOpen:              "block-open",
	BlockClose:             "block-close",
	EmbeddedContent:        "embedded-content",
	InterpolationDelimiter: "interpolation-delimiter",
}

// String returns a human-readable representation of the token kind
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText makes kinds readable in json and yaml output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Flags carries recovery information for downstream diagnostics.
type Flags uint8

const (
	// Malformed marks a best-effort token produced from broken host syntax.
	Malformed Flags = 1 << iota
	// Unterminated marks the last token of a region that was never closed.
	Unterminated
)

func (f Flags) Has(o Flags) bool {
	return f&o == o
}

func (f Flags) String() string {
	switch f {
	case 0:
		return ""
	case Malformed:
		return "malformed"
	case Unterminated:
		return "unterminated"
	default:
		return "malformed|unterminated"
	}
}

// Token is one lexed span, [Start, End) in byte offsets.
type Token struct {
	Kind  Kind
	Start int
	End   int
	Flags Flags
	// Dialect is the active dialect for embedded content and interpolation
	// delimiters, delim.Host otherwise.
	Dialect delim.Dialect
}

func (t Token) Len() int {
	return t.End - t.Start
}

// Text returns the covered slice of src.
func (t Token) Text(src string) string {
	return src[t.Start:t.End]
}

func (t Token) String() string {
	s := fmt.Sprintf("%s[%d:%d]", t.Kind, t.Start, t.End)
	if t.Dialect != delim.Host {
		s += "@" + t.Dialect.String()
	}
	if t.Flags != 0 {
		s += "!" + t.Flags.String()
	}
	return s
}
