/*
Token Types and Modifiers:
------------------------
This file defines the core types used for semantic token generation.

Token Types are represented as follows:

	+-------------+     +-----------+
	| TokenType   | --> | Position  |
	+-------------+     +-----------+
	      |                  |
	      v                  v
	[Tag, Attribute,  [Offset, Text]
	 Variable,         Line:Char
	 Keyword, ...]     via position.Index

Each token carries both its type and position information. A token never
spans a line break.
*/
package semtok

import (
	"github.com/walteh/tmplex/pkg/highlight"
	"github.com/walteh/tmplex/pkg/position"
)

// TokenType represents the semantic meaning of a token. Values index Legend.
type TokenType uint32

const (
	// TokenVariable represents an expression variable (e.g., user)
	TokenVariable TokenType = iota + 1

	// TokenFunction represents a call or pipe target (e.g., format)
	TokenFunction

	// TokenKeyword represents a keyword (e.g., const, @if)
	TokenKeyword

	// TokenOperator represents an operator (e.g., |, ===)
	TokenOperator

	// TokenString represents a string literal or attribute value
	TokenString

	// TokenComment represents a comment in any dialect
	TokenComment

	// TokenNumber represents a numeric literal (e.g., 0, 1.5)
	TokenNumber

	// TokenTag represents a tag name or a type in an embedded dialect
	TokenTag

	// TokenProperty represents an attribute name or member access
	TokenProperty

	// TokenMacro represents interpolation delimiters and entity references
	TokenMacro
)

// Legend lists the token type names; TokenType t is Legend[t-1].
var Legend = []string{"variable", "function", "keyword", "operator", "string", "comment", "number", "type", "property", "macro"}

// ModifierLegend lists the modifier names, bit i being ModifierLegend[i].
var ModifierLegend = []string{"declaration", "readonly", "static", "defaultLibrary", "deprecated"}

// TokenModifier represents additional characteristics of a token
type TokenModifier uint32

const (
	// ModifierNone indicates no special characteristics
	ModifierNone TokenModifier = 0

	// ModifierDeclaration indicates first occurrence/declaration
	ModifierDeclaration TokenModifier = 1 << (iota - 1)

	// ModifierReadonly indicates the token is constant/readonly
	ModifierReadonly

	// ModifierStatic indicates the token is static/global
	ModifierStatic

	// ModifierDefaultLibrary marks names the embedded language predefines
	ModifierDefaultLibrary

	// ModifierDeprecated marks spans the lexer flagged as malformed or
	// unterminated
	ModifierDeprecated
)

// Token represents a semantic token with its type, modifiers, and position
type Token struct {
	// Type indicates the semantic meaning of the token
	Type TokenType

	// Modifier indicates any special characteristics
	Modifier TokenModifier

	// Range indicates the token's position in the source
	Range position.RawPosition
}

// String returns a human-readable representation of the token type
func (t TokenType) String() string {
	if t == 0 || int(t) > len(Legend) {
		return "unknown"
	}
	return Legend[t-1]
}

// String returns a human-readable representation of the token modifier
func (m TokenModifier) String() string {
	if m == ModifierNone {
		return "none"
	}
	out := ""
	for i, name := range ModifierLegend {
		if m&(1<<i) != 0 {
			if out != "" {
				out += "|"
			}
			out += name
		}
	}
	if out == "" {
		return "unknown"
	}
	return out
}

// MarshalText makes token types readable in json and yaml output.
func (t TokenType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (m TokenModifier) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

var categoryTypes = map[highlight.Category]TokenType{
	highlight.Keyword:  TokenKeyword,
	highlight.Type:     TokenTag,
	highlight.Function: TokenFunction,
	highlight.Variable: TokenVariable,
	highlight.Property: TokenProperty,
	highlight.String:   TokenString,
	highlight.Number:   TokenNumber,
	highlight.Comment:  TokenComment,
	highlight.Operator: TokenOperator,
}
