// Package highlight classifies the inside of embedded regions. The lexer
// only says "this span is TypeScript"; a Highlighter says which parts of it
// are keywords, strings, comments and so on.
package highlight

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/tmplex/pkg/delim"
)

// Category is the class of a highlighted span.
type Category uint8

const (
	Plain Category = iota
	Keyword
	Type
	Function
	Variable
	Property
	String
	Number
	Comment
	Operator
)

var categoryNames = [...]string{
	Plain:    "plain",
	Keyword:  "keyword",
	Type:     "type",
	Function: "function",
	Variable: "variable",
	Property: "property",
	String:   "string",
	Number:   "number",
	Comment:  "comment",
	Operator: "operator",
}

func (c Category) String() string {
	if int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Span is a classified byte range of the highlighted text. Builtin marks names
// the language predefines.
type Span struct {
	Start    int
	End      int
	Category Category
	Builtin  bool
}

// Highlighter classifies one chunk of a dialect. Spans are sorted, do not
// overlap, and only cover text that is not Plain.
type Highlighter interface {
	Highlight(text string) ([]Span, error)
}

// Registry holds one Highlighter per dialect.
type Registry struct {
	by map[delim.Dialect]Highlighter
}

var chromaNames = map[delim.Dialect]string{
	delim.JavaScript: "javascript",
	delim.TypeScript: "typescript",
	delim.JSX:        "react",
	delim.TSX:        "tsx",
	delim.CSS:        "css",
	delim.PostCSS:    "css",
	delim.SCSS:       "scss",
	delim.Sass:       "sass",
	delim.Less:       "less",
	delim.Stylus:     "stylus",
	delim.JSON:       "json",
	delim.Pug:        "pug",
}

// NewRegistry registers the built-in highlighters. Dialects chroma has no
// lexer for are left unhighlighted.
func NewRegistry(logger zerolog.Logger) *Registry {
	r := &Registry{by: map[delim.Dialect]Highlighter{
		delim.Expression: Expression{},
		delim.HCL:        HCL{},
	}}
	for d, name := range chromaNames {
		h, err := NewChroma(name)
		if err != nil {
			logger.Debug().Err(err).Stringer("dialect", d).Msg("no highlighter for dialect")
			continue
		}
		r.by[d] = h
	}
	return r
}

// Register replaces the highlighter of d.
func (r *Registry) Register(d delim.Dialect, h Highlighter) {
	r.by[d] = h
}

// For returns the highlighter of d, nil if there is none.
func (r *Registry) For(d delim.Dialect) Highlighter {
	return r.by[d]
}

// Dialects lists the dialects with a highlighter.
func (r *Registry) Dialects() []delim.Dialect {
	out := make([]delim.Dialect, 0, len(r.by))
	for d := range r.by {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// appendSpan adds a span, merging it into the previous one when they touch
// and agree.
func appendSpan(spans []Span, s Span) []Span {
	if s.Category == Plain || s.End <= s.Start {
		return spans
	}
	if n := len(spans); n > 0 {
		last := &spans[n-1]
		if last.End == s.Start && last.Category == s.Category && last.Builtin == s.Builtin {
			last.End = s.End
			return spans
		}
	}
	return append(spans, s)
}
