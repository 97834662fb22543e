// Package sublex defines the adapter every embedded-dialect lexer implements
// and the built-in sub-lexers (plain text, expressions, script/style blocks).
//
// A sub-lexer never sees host syntax: the caller truncates the text at the
// end of the region (end tag, interpolation delimiter, closing attribute
// quote) and the sub-lexer reports a zero width EOF token once it gets there.
package sublex

import (
	"github.com/walteh/tmplex/pkg/token"
)

// StateBits is the number of bits a sub-lexer state may occupy once packed.
const StateBits = 6

// MaxState is the largest packable sub-lexer state.
const MaxState = 1<<StateBits - 1

// State is the opaque resumable state of a sub-lexer.
type State uint8

// SubLexer tokenizes one embedded dialect.
type SubLexer interface {
	// Advance lexes one token of text starting at from. text ends where the
	// region ends.
	Advance(text string, from int, st State) (token.Token, State)
	// PackState encodes st in at most StateBits bits.
	PackState(st State) int
	// UnpackState is the inverse of PackState.
	UnpackState(v int) State
	// IsEndOfRegion reports whether tok means control goes back to the caller.
	IsEndOfRegion(tok token.Token) bool
}

// Factory builds a sub-lexer. close is the interpolation close delimiter of
// the document, for dialects that need to stop in front of it.
type Factory func(close string) SubLexer

func eof(at int) token.Token {
	return token.Token{Kind: token.EOF, Start: at, End: at}
}

// base carries the parts of the adapter every built-in shares.
type base struct{}

func (base) PackState(st State) int {
	return int(st) & MaxState
}

func (base) UnpackState(v int) State {
	return State(v & MaxState)
}

func (base) IsEndOfRegion(tok token.Token) bool {
	return tok.Kind == token.EOF
}

// lineEnd returns the offset just past the next newline at or after from,
// or len(text).
func lineEnd(text string, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] == '\n' {
			return i + 1
		}
	}
	return len(text)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
