package sublex

import (
	"strings"

	"github.com/walteh/tmplex/pkg/token"
)

const (
	inBlockComment State = 1 << iota
	inTemplateLiteral
)

// Syntax describes the comment and string forms a Block sub-lexer tracks
// across lines.
type Syntax struct {
	LineComments     []string
	BlockComments    bool
	TemplateLiterals bool
}

var (
	// ScriptSyntax covers the JavaScript family.
	ScriptSyntax = Syntax{LineComments: []string{"//"}, BlockComments: true, TemplateLiterals: true}
	// StyleSyntax covers CSS; the preprocessors add line comments.
	StyleSyntax = Syntax{BlockComments: true}
	// PreprocessedStyleSyntax covers SCSS, Less, Stylus.
	PreprocessedStyleSyntax = Syntax{LineComments: []string{"//"}, BlockComments: true}
	// HCLSyntax covers HCL.
	HCLSyntax = Syntax{LineComments: []string{"//", "#"}, BlockComments: true}
)

// Block lexes script and style bodies one line per token. Its state records
// whether the line boundary falls inside a block comment or a template
// literal, which is what makes a region unterminated even though its end tag
// is present.
type Block struct {
	base
	syntax Syntax
}

func NewBlock(syntax Syntax) Factory {
	return func(string) SubLexer {
		return Block{syntax: syntax}
	}
}

func (b Block) Advance(text string, from int, st State) (token.Token, State) {
	if from >= len(text) {
		return eof(from), st
	}
	end := lineEnd(text, from)
	return token.Token{Kind: token.EmbeddedContent, Start: from, End: end}, b.scan(text[from:end], st)
}

// Open reports whether st is inside a construct that needs closing.
func Open(st State) bool {
	return st&(inBlockComment|inTemplateLiteral) != 0
}

func (b Block) scan(line string, st State) State {
	for i := 0; i < len(line); i++ {
		switch {
		case st&inBlockComment != 0:
			j := strings.Index(line[i:], "*/")
			if j < 0 {
				return st
			}
			i += j + 1
			st &^= inBlockComment
		case st&inTemplateLiteral != 0:
			for ; i < len(line) && line[i] != '`'; i++ {
				if line[i] == '\\' {
					i++
				}
			}
			if i >= len(line) {
				return st
			}
			st &^= inTemplateLiteral
		case b.syntax.BlockComments && strings.HasPrefix(line[i:], "/*"):
			st |= inBlockComment
			i++
		case b.lineComment(line[i:]):
			return st
		case b.syntax.TemplateLiterals && line[i] == '`':
			st |= inTemplateLiteral
		case line[i] == '"' || line[i] == '\'':
			if end := QuotedEnd(strings.TrimRight(line, "\r\n"), i); end > 0 {
				i = end - 1
			}
		}
	}
	return st
}

func (b Block) lineComment(s string) bool {
	for _, p := range b.syntax.LineComments {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
