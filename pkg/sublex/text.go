package sublex

import "github.com/walteh/tmplex/pkg/token"

// Text passes content through untouched, one token per line. It is the
// fallback for dialects nobody recognizes.
type Text struct {
	base
}

func NewText(string) SubLexer {
	return Text{}
}

func (Text) Advance(text string, from int, st State) (token.Token, State) {
	if from >= len(text) {
		return eof(from), st
	}
	return token.Token{Kind: token.EmbeddedContent, Start: from, End: lineEnd(text, from)}, st
}
