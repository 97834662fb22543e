package highlight

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// HCL highlights HCL bodies with the hclsyntax scanner. Scan errors are not
// reported; the scanner always returns a complete token list.
type HCL struct{}

var hclKeywords = map[string]bool{
	"true": true, "false": true, "null": true,
	"for": true, "in": true, "if": true, "endif": true, "endfor": true, "else": true,
}

func (HCL) Highlight(text string) ([]Span, error) {
	toks, _ := hclsyntax.LexConfig([]byte(text), "", hcl.InitialPos)

	var spans []Span
	for i, tok := range toks {
		s := Span{Start: tok.Range.Start.Byte, End: tok.Range.End.Byte}
		switch tok.Type {
		case hclsyntax.TokenComment:
			s.Category = Comment
		case hclsyntax.TokenQuotedLit, hclsyntax.TokenOQuote, hclsyntax.TokenCQuote,
			hclsyntax.TokenStringLit, hclsyntax.TokenOHeredoc, hclsyntax.TokenCHeredoc:
			s.Category = String
		case hclsyntax.TokenNumberLit:
			s.Category = Number
		case hclsyntax.TokenTemplateInterp, hclsyntax.TokenTemplateControl, hclsyntax.TokenTemplateSeqEnd:
			s.Category = Keyword
		case hclsyntax.TokenEqual, hclsyntax.TokenEqualOp, hclsyntax.TokenNotEqual,
			hclsyntax.TokenPlus, hclsyntax.TokenMinus, hclsyntax.TokenStar, hclsyntax.TokenSlash, hclsyntax.TokenPercent,
			hclsyntax.TokenAnd, hclsyntax.TokenOr, hclsyntax.TokenBang,
			hclsyntax.TokenLessThan, hclsyntax.TokenLessThanEq, hclsyntax.TokenGreaterThan, hclsyntax.TokenGreaterThanEq,
			hclsyntax.TokenQuestion, hclsyntax.TokenColon, hclsyntax.TokenFatArrow, hclsyntax.TokenEllipsis:
			s.Category = Operator
		case hclsyntax.TokenIdent:
			name := string(tok.Bytes)
			switch {
			case hclKeywords[name]:
				s.Category = Keyword
			case i+1 < len(toks) && toks[i+1].Type == hclsyntax.TokenOParen:
				s.Category = Function
			case i+1 < len(toks) && (toks[i+1].Type == hclsyntax.TokenEqual || toks[i+1].Type == hclsyntax.TokenOBrace || toks[i+1].Type == hclsyntax.TokenOQuote):
				// attribute or block name
				s.Category = Property
			default:
				s.Category = Variable
			}
		default:
			continue
		}
		spans = appendSpan(spans, s)
	}
	return spans, nil
}
