package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"gitlab.com/tozd/go/errors"
)

// Chroma highlights with one of chroma's regex lexers.
type Chroma struct {
	lexer chroma.Lexer
}

func NewChroma(name string) (*Chroma, error) {
	l := lexers.Get(name)
	if l == nil {
		return nil, errors.Errorf("chroma has no lexer named %q", name)
	}
	return &Chroma{lexer: chroma.Coalesce(l)}, nil
}

func (c *Chroma) Name() string {
	return c.lexer.Config().Name
}

func (c *Chroma) Highlight(text string) ([]Span, error) {
	// EnsureLF would rewrite \r\n and shift every offset after it
	it, err := c.lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, text)
	if err != nil {
		return nil, errors.Errorf("tokenising with %s: %w", c.Name(), err)
	}

	var spans []Span
	off := 0
	for t := it(); t != chroma.EOF; t = it() {
		end := off + len(t.Value)
		if end > len(text) {
			// lexers configured with EnsureNL append a newline
			end = len(text)
		}
		cat, builtin := chromaCategory(t.Type)
		spans = appendSpan(spans, Span{Start: off, End: end, Category: cat, Builtin: builtin})
		off = end
		if off >= len(text) {
			break
		}
	}
	return spans, nil
}

func chromaCategory(t chroma.TokenType) (Category, bool) {
	switch {
	case t.InCategory(chroma.Keyword):
		if t == chroma.KeywordType {
			return Type, false
		}
		return Keyword, false
	case t == chroma.NameBuiltin || t == chroma.NameBuiltinPseudo:
		return Variable, true
	case t == chroma.NameFunction || t == chroma.NameFunctionMagic:
		return Function, false
	case t == chroma.NameClass || t == chroma.NameTag:
		return Type, false
	case t == chroma.NameAttribute || t == chroma.NameProperty:
		return Property, false
	case t == chroma.NameVariable || t == chroma.NameOther:
		return Variable, false
	case t.InSubCategory(chroma.LiteralString):
		return String, false
	case t.InSubCategory(chroma.LiteralNumber):
		return Number, false
	case t.InCategory(chroma.Comment):
		return Comment, false
	case t.InCategory(chroma.Operator):
		return Operator, false
	}
	return Plain, false
}
