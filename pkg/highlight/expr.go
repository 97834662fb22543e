package highlight

import (
	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"
)

var (
	// ExpressionRules lex the JavaScript-like expressions found in
	// interpolations and binding attributes.
	ExpressionRules = lexer.Rules{
		"Root": {
			{Name: `whitespace`, Pattern: `\s+`, Action: nil},
			{Name: `Keyword`, Pattern: `\b(if|else|for|in|of|as|let|const|typeof|instanceof|new|void|delete|await)\b`, Action: nil},
			{Name: `Literal`, Pattern: `\b(true|false|null|undefined|this)\b`, Action: nil},
			{Name: `String`, Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'|` + "`(?:\\\\.|[^`\\\\])*`", Action: nil},
			{Name: `Number`, Pattern: `\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`, Action: nil},
			{Name: `Ident`, Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`, Action: nil},
			{Name: `Operator`, Pattern: `===|!==|==|!=|<=|>=|&&|\|\||\?\?|\?\.|=>|[-+*/%<>!=?:&]`, Action: nil},
			{Name: `Pipe`, Pattern: `\|`, Action: nil},
			{Name: `LeftParen`, Pattern: `\(`, Action: nil},
			{Name: `Punct`, Pattern: `[.,;)\[\]{}]`, Action: nil},
			{Name: `Char`, Pattern: `.|\n`, Action: nil},
		},
	}

	// ExpressionLexer is the stateful lexer for ExpressionRules
	ExpressionLexer = lexer.MustStateful(ExpressionRules)
)

// Expression highlights interpolation and binding expressions. An identifier
// followed by `(` or following a `|` pipe is a function.
type Expression struct{}

func (Expression) Highlight(text string) ([]Span, error) {
	lex, err := ExpressionLexer.LexString("", text)
	if err != nil {
		return nil, errors.Errorf("lexing expression: %w", err)
	}
	syms := ExpressionLexer.Symbols()

	var toks []lexer.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, errors.Errorf("lexing expression: %w", err)
		}
		if tok.EOF() {
			break
		}
		if tok.Type != syms["whitespace"] {
			toks = append(toks, tok)
		}
	}

	var spans []Span
	for i, tok := range toks {
		start := tok.Pos.Offset
		end := start + len(tok.Value)
		var s Span
		switch tok.Type {
		case syms["Keyword"]:
			s = Span{Category: Keyword}
		case syms["Literal"]:
			s = Span{Category: Variable, Builtin: true}
		case syms["String"]:
			s = Span{Category: String}
		case syms["Number"]:
			s = Span{Category: Number}
		case syms["Pipe"], syms["Operator"]:
			s = Span{Category: Operator}
		case syms["Ident"]:
			s = Span{Category: Variable}
			switch {
			case i+1 < len(toks) && toks[i+1].Type == syms["LeftParen"]:
				s.Category = Function
			case i > 0 && toks[i-1].Type == syms["Pipe"]:
				s.Category = Function
			case i > 0 && toks[i-1].Value == ".", i > 0 && toks[i-1].Value == "?.":
				s.Category = Property
			}
		default:
			continue
		}
		s.Start, s.End = start, end
		spans = appendSpan(spans, s)
	}
	return spans, nil
}
