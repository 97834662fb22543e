/*
Package semtok provides semantic tokens for documents with embedded languages.

Core Functions:
-------------

	       Input
	         |
	         v
	  +------------+
	  | Document   |
	  | Text       |
	  +------------+
	         |
	  embedlex Session
	         |
	         v
	  +------------+      chunks of one dialect      +-------------+
	  |  Merged    | ------------------------------> |  highlight  |
	  |  Tokens    | <------------------------------ |  Registry   |
	  +------------+             spans               +-------------+
	         |
	 Split at line breaks
	         |
	         v
	  +------------+
	  | Semantic   |
	  | Tokens     |
	  +------------+
*/
package semtok

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/embedlex"
	"github.com/walteh/tmplex/pkg/highlight"
	"github.com/walteh/tmplex/pkg/position"
	"github.com/walteh/tmplex/pkg/token"
	"gitlab.com/tozd/go/errors"
)

// Provider turns lexer output into semantic tokens. It is safe for
// concurrent use.
type Provider struct {
	lexer    *embedlex.Lexer
	registry *highlight.Registry
}

func NewProvider(lexer *embedlex.Lexer, registry *highlight.Registry) *Provider {
	return &Provider{lexer: lexer, registry: registry}
}

// GetTokensForText returns semantic tokens for the given document text.
// This is the main entry point for semantic token generation.
//
//	Example:
//	   tokens, err := provider.GetTokensForText(ctx, []byte("<b>{{ name }}</b>"))
//	   if err != nil {
//	       return err
//	   }
//	   // Use tokens...
func (p *Provider) GetTokensForText(ctx context.Context, content []byte) ([]Token, error) {
	text := string(content)

	s, err := p.lexer.Start(text, 0, len(text), 0)
	if err != nil {
		return nil, errors.Errorf("starting lexer: %w", err)
	}

	var lexed []token.Token
	for s.Advance() {
		lexed = append(lexed, s.Token())
	}

	b := &builder{ctx: ctx, text: text, index: position.NewIndex(text), registry: p.registry}
	for i := 0; i < len(lexed); {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("generating semantic tokens: %w", err)
		}
		i = b.visit(lexed, i)
	}

	sort.SliceStable(b.tokens, func(i, j int) bool { return b.tokens[i].Range.Offset < b.tokens[j].Range.Offset })
	return b.tokens, nil
}

// GetTokensForRange returns semantic tokens that overlap ranged. The whole
// document is still lexed, since lexer state depends on everything before the
// range.
//
//	Example:
//	   tokens, err := provider.GetTokensForRange(ctx, content, &position.RawPosition{...})
//	   if err != nil {
//	       return err
//	   }
//	   // Use tokens...
func (p *Provider) GetTokensForRange(ctx context.Context, content []byte, ranged *position.RawPosition) ([]Token, error) {
	all, err := p.GetTokensForText(ctx, content)
	if err != nil {
		return nil, err
	}
	if ranged == nil {
		return all, nil
	}

	var out []Token
	for _, t := range all {
		if t.Range.HasRangeOverlapWith(*ranged) {
			out = append(out, t)
		}
	}
	return out, nil
}

type builder struct {
	ctx      context.Context
	text     string
	index    *position.Index
	registry *highlight.Registry
	tokens   []Token
}

// visit emits the semantic tokens for lexed[i] and returns the index of the
// next token still to visit.
func (b *builder) visit(lexed []token.Token, i int) int {
	tok := lexed[i]

	mod := ModifierNone
	if tok.Flags != 0 {
		mod |= ModifierDeprecated
	}

	switch tok.Kind {
	case token.TagOpen, token.TagClose:
		b.emit(TokenTag, mod, tok.Start, tok.End)
	case token.AttrName:
		b.emit(TokenProperty, mod, tok.Start, tok.End)
	case token.AttrValue, token.AttrQuote, token.CData:
		b.emit(TokenString, mod, tok.Start, tok.End)
	case token.Comment:
		b.emit(TokenComment, mod, tok.Start, tok.End)
	case token.Doctype, token.BlockName:
		b.emit(TokenKeyword, mod, tok.Start, tok.End)
	case token.EntityRef, token.InterpolationDelimiter:
		b.emit(TokenMacro, mod, tok.Start, tok.End)
	case token.BlockParameters:
		b.highlight(delim.Expression, tok.Start, tok.End, mod)
	case token.EmbeddedContent, token.RealWhitespace:
		if tok.Dialect == delim.Host {
			return i + 1
		}
		// one highlighter pass over the whole run of a dialect
		j := i + 1
		for j < len(lexed) && lexed[j].Dialect == tok.Dialect && lexed[j].Start == lexed[j-1].End &&
			(lexed[j].Kind == token.EmbeddedContent || lexed[j].Kind == token.RealWhitespace) {
			if lexed[j].Flags != 0 {
				mod |= ModifierDeprecated
			}
			j++
		}
		b.highlight(tok.Dialect, tok.Start, lexed[j-1].End, mod)
		return j
	}
	return i + 1
}

func (b *builder) highlight(d delim.Dialect, start, end int, mod TokenModifier) {
	h := b.registry.For(d)
	if h == nil {
		return
	}
	spans, err := h.Highlight(b.text[start:end])
	if err != nil {
		zerolog.Ctx(b.ctx).Debug().Err(err).Stringer("dialect", d).Int("offset", start).Msg("highlighting embedded region")
		return
	}
	for _, s := range spans {
		typ, ok := categoryTypes[s.Category]
		if !ok {
			continue
		}
		m := mod
		if s.Builtin {
			m |= ModifierDefaultLibrary
		}
		b.emit(typ, m, start+s.Start, start+s.End)
	}
}

func (b *builder) emit(typ TokenType, mod TokenModifier, start, end int) {
	for _, line := range b.index.Lines(start, end) {
		// a token never carries its line break
		for len(line.Text) > 0 && (line.Text[len(line.Text)-1] == '\n' || line.Text[len(line.Text)-1] == '\r') {
			line.Text = line.Text[:len(line.Text)-1]
		}
		if line.Text == "" {
			continue
		}
		b.tokens = append(b.tokens, Token{Type: typ, Modifier: mod, Range: line})
	}
}

// Encode packs tokens into the relative five integer form used by the
// language server protocol: line delta, start delta, length, type, modifiers.
// Lengths and starts are grapheme columns as position.Index counts them.
func Encode(text string, tokens []Token) []uint32 {
	index := position.NewIndex(text)
	out := make([]uint32, 0, len(tokens)*5)

	prevLine, prevCol := 0, 0
	for _, t := range tokens {
		line, col := index.LineAndColumn(t.Range.Offset)
		length := position.Columns(t.Range.Text)

		deltaCol := col
		if line == prevLine {
			deltaCol = col - prevCol
		}
		out = append(out, uint32(line-prevLine), uint32(deltaCol), uint32(length), uint32(t.Type)-1, uint32(t.Modifier))
		prevLine, prevCol = line, col
	}
	return out
}
