package sublex

import (
	"strings"

	"github.com/walteh/tmplex/pkg/token"
)

// Expr lexes interpolation and binding expressions into whitespace, quoted
// strings and everything-else runs. A quoted string that is closed before
// the end of the region is a single token, so a close delimiter inside it
// does not end the expression:
//
//	{{ "}}" }}   ->   ws, "}}", ws
//
// A quote that is never closed is just another character. Expr is stateless.
type Expr struct {
	base
	close string
}

func NewExpr(close string) SubLexer {
	return Expr{close: close}
}

func (e Expr) Advance(text string, from int, st State) (token.Token, State) {
	if from >= len(text) || e.atClose(text, from) {
		return eof(from), st
	}

	c := text[from]
	if isSpace(c) {
		i := from + 1
		for i < len(text) && isSpace(text[i]) && !e.atClose(text, i) {
			i++
		}
		return token.Token{Kind: token.Whitespace, Start: from, End: i}, st
	}

	if end := QuotedEnd(text, from); end > 0 {
		return token.Token{Kind: token.EmbeddedContent, Start: from, End: end}, st
	}

	i := from + 1
	for i < len(text) {
		c := text[i]
		if isSpace(c) || IsQuote(c) || e.atClose(text, i) {
			break
		}
		i++
	}
	return token.Token{Kind: token.EmbeddedContent, Start: from, End: i}, st
}

func (e Expr) atClose(text string, i int) bool {
	return e.close != "" && strings.HasPrefix(text[i:], e.close)
}

// IsQuote reports whether c opens a quoted string.
func IsQuote(c byte) bool {
	return c == '"' || c == '\'' || c == '`'
}

// QuotedEnd returns the offset just past the quoted string starting at from,
// or -1 when text[from] is not a quote or the string is never closed.
// Backslash escapes the next byte.
func QuotedEnd(text string, from int) int {
	if from >= len(text) || !IsQuote(text[from]) {
		return -1
	}
	q := text[from]
	for i := from + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case q:
			return i + 1
		}
	}
	return -1
}
