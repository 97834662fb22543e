package dialect

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/sublex"
	"gitlab.com/tozd/go/errors"
)

// AttrKind classifies an attribute for the dispatcher. Packed in two bits.
type AttrKind uint8

const (
	AttrOther AttrKind = iota
	AttrLang
	AttrType
	AttrBinding
)

// Descriptor is everything the dispatcher needs to enter a dialect.
type Descriptor struct {
	ID delim.Dialect
	// Delimiters is set for the interpolation expression dialect only.
	Delimiters *delim.Pair
	Factory    sublex.Factory

	lexer sublex.SubLexer
}

// Lexer returns the sub-lexer instance for this descriptor.
func (d *Descriptor) Lexer() sublex.SubLexer {
	return d.lexer
}

// HostContext is what the dispatcher knows about an element when its start
// tag closes.
type HostContext struct {
	Element Element
	// Hint is the dialect named by lang/type attributes, delim.Host if none.
	Hint delim.Dialect
}

var factories = map[delim.Dialect]sublex.Factory{
	delim.PlainText:  sublex.NewText,
	delim.Expression: sublex.NewExpr,
	delim.JavaScript: sublex.NewBlock(sublex.ScriptSyntax),
	delim.TypeScript: sublex.NewBlock(sublex.ScriptSyntax),
	delim.JSX:        sublex.NewBlock(sublex.ScriptSyntax),
	delim.TSX:        sublex.NewBlock(sublex.ScriptSyntax),
	delim.CSS:        sublex.NewBlock(sublex.StyleSyntax),
	delim.PostCSS:    sublex.NewBlock(sublex.StyleSyntax),
	delim.SCSS:       sublex.NewBlock(sublex.PreprocessedStyleSyntax),
	delim.Sass:       sublex.NewBlock(sublex.PreprocessedStyleSyntax),
	delim.Less:       sublex.NewBlock(sublex.PreprocessedStyleSyntax),
	delim.Stylus:     sublex.NewBlock(sublex.PreprocessedStyleSyntax),
	delim.HCL:        sublex.NewBlock(sublex.HCLSyntax),
	delim.Pug:        sublex.NewText,
	delim.JSON:       sublex.NewBlock(sublex.Syntax{}),
}

// Resolver decides which dialect a region is lexed with. It is built once
// per parse session and is read-only afterwards.
type Resolver struct {
	rev         *Revision
	delims      delim.Pair
	descriptors [delim.MaxDialect + 1]*Descriptor
	logger      zerolog.Logger
}

// NewResolver builds the descriptor table for rev. delims overrides the
// revision's interpolation pair when non-nil (document level configuration).
func NewResolver(rev *Revision, delims *delim.Pair, logger zerolog.Logger) (*Resolver, error) {
	if rev == nil {
		return nil, errors.New("nil revision")
	}

	r := &Resolver{rev: rev, delims: rev.Delimiters, logger: logger}
	if delims != nil {
		if !delims.Valid() {
			return nil, errors.Errorf("invalid interpolation delimiters %q", delims.String())
		}
		r.delims = *delims
	}

	for id, f := range factories {
		d := &Descriptor{ID: id, Factory: f}
		if id == delim.Expression {
			pair := r.delims
			d.Delimiters = &pair
		}
		d.lexer = f(r.delims.Close)
		r.descriptors[id] = d
	}

	return r, nil
}

func (r *Resolver) Revision() *Revision {
	return r.rev
}

// Delimiters returns the document's interpolation pair and whether
// interpolation is enabled at all.
func (r *Resolver) Delimiters() (delim.Pair, bool) {
	return r.delims, r.delims.Valid()
}

// Descriptor returns the descriptor of id, nil for delim.Host.
func (r *Resolver) Descriptor(id delim.Dialect) *Descriptor {
	if id > delim.MaxDialect {
		return r.descriptors[delim.PlainText]
	}
	return r.descriptors[id]
}

// Embeddable reports whether a start tag named name can open a region.
func (r *Resolver) Embeddable(name string) (Element, bool) {
	el, ok := ElementByName(name)
	if !ok {
		return NoElement, false
	}
	_, ok = r.rev.Embeddable[el]
	return el, ok
}

// AttributeKind classifies an attribute name seen inside a start tag.
// embeddable is true inside the start tag of an embeddable element.
func (r *Resolver) AttributeKind(name string, embeddable bool) AttrKind {
	if embeddable {
		switch strings.ToLower(name) {
		case "lang":
			return AttrLang
		case "type":
			return AttrType
		}
	}
	if r.rev.IsBinding(name) {
		return AttrBinding
	}
	return AttrOther
}

// LookupAttribute maps a lang or type attribute value to a dialect hint. An
// empty value is no hint at all; unknown values hint plain text, so that the
// region is passed through instead of being lexed as the wrong language.
func (r *Resolver) LookupAttribute(kind AttrKind, value string) (delim.Dialect, bool) {
	if strings.TrimSpace(value) == "" {
		return delim.Host, true
	}

	var (
		d  delim.Dialect
		ok bool
	)
	switch kind {
	case AttrLang:
		d, ok = delim.LookupLang(value)
	case AttrType:
		d, ok = delim.LookupType(value)
	default:
		return delim.Host, false
	}
	if !ok {
		r.logger.Debug().Str("value", value).Str("revision", r.rev.Name).Msg("unknown dialect, falling back to plain text")
		return delim.PlainText, false
	}
	return d, true
}

// Resolve picks the dialect of the region about to be entered. nil means the
// element body stays host markup.
func (r *Resolver) Resolve(ctx HostContext) *Descriptor {
	if ctx.Hint != delim.Host {
		return r.Descriptor(ctx.Hint)
	}
	def, ok := r.rev.Embeddable[ctx.Element]
	if !ok || def == delim.Host {
		return nil
	}
	return r.Descriptor(def)
}
