// Package delim holds the static tables the lexer is configured from:
// interpolation delimiter pairs and the markers that name embedded dialects.
// Nothing in here has behavior beyond lookups.
package delim

import "strings"

// Dialect identifies an embedded language. It is packed into lexer state in
// four bits, so there can never be more than 16 of them.
type Dialect uint8

const (
	// Host is the host markup itself, i.e. no embedded dialect.
	Host Dialect = iota
	PlainText
	Expression
	JavaScript
	TypeScript
	JSX
	TSX
	CSS
	SCSS
	Sass
	Less
	Stylus
	PostCSS
	HCL
	Pug
	JSON

	dialectCount
)

// MaxDialect is the largest valid Dialect value.
const MaxDialect = dialectCount - 1

var dialectNames = [...]string{
	Host:       "host",
	PlainText:  "text",
	Expression: "expression",
	JavaScript: "javascript",
	TypeScript: "typescript",
	JSX:        "jsx",
	TSX:        "tsx",
	CSS:        "css",
	SCSS:       "scss",
	Sass:       "sass",
	Less:       "less",
	Stylus:     "stylus",
	PostCSS:    "postcss",
	HCL:        "hcl",
	Pug:        "pug",
	JSON:       "json",
}

func (d Dialect) String() string {
	if d > MaxDialect {
		return "unknown"
	}
	return dialectNames[d]
}

func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// IsScript reports whether d is one of the script languages.
func (d Dialect) IsScript() bool {
	switch d {
	case JavaScript, TypeScript, JSX, TSX:
		return true
	}
	return false
}

// IsStyle reports whether d is one of the style languages.
func (d Dialect) IsStyle() bool {
	switch d {
	case CSS, SCSS, Sass, Less, Stylus, PostCSS:
		return true
	}
	return false
}

// Pair is an interpolation open/close delimiter pair.
type Pair struct {
	Open  string
	Close string
}

// Valid reports whether both delimiters are non-empty and not identical.
func (p Pair) Valid() bool {
	return p.Open != "" && p.Close != "" && p.Open != p.Close
}

func (p Pair) String() string {
	return p.Open + " " + p.Close
}

var (
	// Default is used whenever a document carries no delimiter configuration.
	Default = Pair{Open: "{{", Close: "}}"}

	// Brace is the single-brace pair used by JSX-like hosts (Astro).
	Brace = Pair{Open: "{", Close: "}"}
)

// langMarkers maps `lang="..."` values to dialects. Host means the body stays
// markup.
var langMarkers = map[string]Dialect{
	"html":       Host,
	"js":         JavaScript,
	"javascript": JavaScript,
	"mjs":        JavaScript,
	"ts":         TypeScript,
	"typescript": TypeScript,
	"jsx":        JSX,
	"tsx":        TSX,
	"css":        CSS,
	"scss":       SCSS,
	"sass":       Sass,
	"less":       Less,
	"styl":       Stylus,
	"stylus":     Stylus,
	"postcss":    PostCSS,
	"pcss":       PostCSS,
	"hcl":        HCL,
	"terraform":  HCL,
	"pug":        Pug,
	"jade":       Pug,
	"json":       JSON,
	"text":       PlainText,
	"txt":        PlainText,
}

// typeMarkers maps `type="..."` MIME-ish values to dialects.
var typeMarkers = map[string]Dialect{
	"module":                 JavaScript,
	"text/javascript":        JavaScript,
	"application/javascript": JavaScript,
	"application/ecmascript": JavaScript,
	"text/babel":             JSX,
	"text/typescript":        TypeScript,
	"application/typescript": TypeScript,
	"text/css":               CSS,
	"text/scss":              SCSS,
	"text/sass":              Sass,
	"text/less":              Less,
	"text/stylus":            Stylus,
	"text/postcss":           PostCSS,
	"application/json":       JSON,
	"application/ld+json":    JSON,
	"importmap":              JSON,
	"text/plain":             PlainText,
}

// LookupLang resolves the value of a `lang` attribute.
func LookupLang(value string) (Dialect, bool) {
	d, ok := langMarkers[normalize(value)]
	return d, ok
}

// LookupType resolves the value of a `type` attribute.
func LookupType(value string) (Dialect, bool) {
	d, ok := typeMarkers[normalize(value)]
	return d, ok
}

// ByName resolves a dialect by its canonical name (see Dialect.String).
func ByName(name string) (Dialect, bool) {
	name = normalize(name)
	for i, n := range dialectNames {
		if n == name {
			return Dialect(i), true
		}
	}
	return Host, false
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
