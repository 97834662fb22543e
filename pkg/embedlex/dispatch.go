package embedlex

import (
	"strings"

	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/dialect"
	"github.com/walteh/tmplex/pkg/hostlex"
	"github.com/walteh/tmplex/pkg/sublex"
	"github.com/walteh/tmplex/pkg/token"
)

// Dispatcher produces the raw (unmerged) token stream. It routes each position
// to the host lexer, the active body sub-lexer, or the expression sub-lexer,
// and owns every region transition. It holds no per-document state: the
// result of Advance depends only on the text from the given offset on and the
// given State.
type Dispatcher struct {
	resolver *dialect.Resolver
	grammar  hostlex.Grammar
	delims   delim.Pair
	interp   bool
	expr     sublex.SubLexer
	binding  sublex.SubLexer
}

func NewDispatcher(resolver *dialect.Resolver) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		binding:  sublex.NewExpr(""),
	}
	d.delims, d.interp = resolver.Delimiters()
	d.expr = resolver.Descriptor(delim.Expression).Lexer()
	d.grammar.Blocks = resolver.Revision().Blocks
	if d.interp {
		d.grammar.TextBreaks = []string{d.delims.Open}
	}
	return d
}

func (d *Dispatcher) Resolver() *dialect.Resolver {
	return d.resolver
}

// Advance lexes one raw token at from. The returned state is the state at
// tok.End. At the end of text it returns a zero width token.EOF.
func (d *Dispatcher) Advance(text string, from int, st State) (token.Token, State) {
	tok, next, _ := d.advance(text, from, st)
	return tok, next
}

// advance is Advance that also returns the reach of the token: the end of
// the bytes the token and its state were decided on, len(text)+1 when that
// includes the end of text. Only host text interpolations look further than
// the first state 0 boundary after the token, so every other token reports
// its own end.
func (d *Dispatcher) advance(text string, from int, st State) (token.Token, State, int) {
	for {
		if from >= len(text) {
			return token.Token{Kind: token.EOF, Start: len(text), End: len(text)}, st, len(text) + 1
		}

		if st.Interpolating {
			if st.Unterminated {
				st.Interpolating, st.Unterminated = false, false
				continue
			}
			if tok, next, reach, ok := d.interpolation(text, from, st); ok {
				return tok, next, reach
			}
			// the expression ended exactly at the region limit
			st.Interpolating = false
			continue
		}

		if st.Region == RegionEmbeddedBody {
			return d.body(text, from, st)
		}
		return d.host(text, from, st)
	}
}

func (d *Dispatcher) interpolation(text string, from int, st State) (token.Token, State, int, bool) {
	if strings.HasPrefix(text[from:], d.delims.Close) {
		st.Interpolating = false
		tok := d.delimiter(from, len(d.delims.Close))
		return tok, st, tok.End, true
	}

	limit, limitReach := d.interpolationLimit(text, from, st)
	tok, _ := d.expr.Advance(text[:limit], from, 0)
	if d.expr.IsEndOfRegion(tok) {
		return tok, st, tok.End, false
	}
	tok.Dialect = delim.Expression
	tok = d.terminate(text, tok, limit, st)

	reach := d.interpolationReach(text, tok, st)
	if sublex.IsQuote(text[tok.Start]) && sublex.QuotedEnd(text[:limit], tok.Start) < 0 {
		// the search for the closing quote ran to the limit
		reach = max(reach, limitReach)
	}
	return tok, st.withUnterminated(tok), reach, true
}

// interpolationReach is the reach of an interpolation token that only looked
// at the bytes just past its end.
func (d *Dispatcher) interpolationReach(text string, tok token.Token, st State) int {
	if !hostText(st) {
		return tok.End
	}
	return min(tok.End+max(hostlex.MarkupSpan, len(d.delims.Close)), len(text)+1)
}

// hostText reports whether st is inside document text rather than a body or
// an attribute value.
func hostText(st State) bool {
	return st.Region != RegionEmbeddedBody && !st.Host.InAttrValue()
}

// terminate flags the last token before the limit of an interpolation that
// has no close delimiter.
func (d *Dispatcher) terminate(text string, tok token.Token, limit int, st State) token.Token {
	if tok.End == limit && !strings.HasPrefix(text[limit:], d.delims.Close) {
		tok.Flags |= token.Unterminated
	}
	return tok
}

func (st State) withUnterminated(tok token.Token) State {
	st.Unterminated = tok.Flags.Has(token.Unterminated)
	return st
}

func (d *Dispatcher) delimiter(at, n int) token.Token {
	return token.Token{Kind: token.InterpolationDelimiter, Start: at, End: at + n, Dialect: delim.Expression}
}

func (d *Dispatcher) openInterpolation(text string, from int, st State) (token.Token, State, int) {
	tok := d.delimiter(from, len(d.delims.Open))
	st.Interpolating = true
	limit, _ := d.interpolationLimit(text, tok.End, st)
	tok = d.terminate(text, tok, limit, st)
	return tok, st.withUnterminated(tok), d.interpolationReach(text, tok, st)
}

// interpolationLimit is where an interpolation started in st has to end at
// the latest: the end tag of a body, the closing quote of an attribute value,
// or in document text the next tag, comment or end of the document. The
// second result is the reach of the search.
func (d *Dispatcher) interpolationLimit(text string, from int, st State) (int, int) {
	switch {
	case st.Region == RegionEmbeddedBody:
		if i := endTagIndex(text, from, len(text), st.Element); i >= 0 {
			return i, i
		}
	case st.Host.InAttrValue():
		if i := strings.IndexByte(text[from:], st.Host.Quote()); i >= 0 {
			return from + i, from + i + 1
		}
	default:
		if i := hostlex.NextMarkup(text, from); i >= 0 {
			return i, min(i+hostlex.MarkupSpan, len(text)+1)
		}
	}
	return len(text), len(text) + 1
}

// body lexes one token of an embedded body. The end tag and the interpolation
// open delimiter are searched on the current line only, which keeps lexing a
// body linear in its length.
func (d *Dispatcher) body(text string, from int, st State) (token.Token, State, int) {
	if end := endTagAt(text, from, st.Element); end > 0 {
		st.Region, st.Dialect, st.Element, st.Sub = RegionHost, delim.Host, dialect.NoElement, 0
		st.Host = hostlex.InEndTag
		return token.Token{Kind: token.TagClose, Start: from, End: end}, st, end
	}

	interp := d.interp && d.resolver.Revision().InterpolateRawText
	if interp && strings.HasPrefix(text[from:], d.delims.Open) {
		return d.openInterpolation(text, from, st)
	}

	limit, atEndTag := len(text), false
	if i := strings.IndexByte(text[from:], '\n'); i >= 0 {
		limit = from + i + 1
	}
	if i := endTagIndex(text, from, limit, st.Element); i >= 0 {
		limit, atEndTag = i, true
	} else if endTagAt(text, limit, st.Element) > 0 {
		atEndTag = true
	}
	if interp {
		if i := strings.Index(text[from:limit], d.delims.Open); i >= 0 {
			limit, atEndTag = from+i, false
		}
	}

	sub := d.resolver.Descriptor(st.Dialect).Lexer()
	tok, next := sub.Advance(text[:limit], from, sub.UnpackState(int(st.Sub)))
	if sub.IsEndOfRegion(tok) {
		// a sub-lexer that refuses to make progress gets the rest of the line
		tok = token.Token{Kind: token.EmbeddedContent, Start: from, End: limit}
	}
	tok.Dialect = st.Dialect
	st.Sub = sublex.State(sub.PackState(next))

	if tok.End == limit {
		switch {
		case limit == len(text):
			tok.Flags |= token.Unterminated
		case atEndTag && st.Sub != 0:
			tok.Flags |= token.Unterminated
		}
	}
	return tok, st, tok.End
}

func (d *Dispatcher) host(text string, from int, st State) (token.Token, State, int) {
	hs := st.Host

	if hs.InAttrValue() && text[from] != hs.Quote() {
		if st.Dialect == delim.Expression {
			tok, next := d.bindingValue(text, from, st)
			return tok, next, tok.End
		}
		if d.interp && d.resolver.Revision().InterpolateAttributes && strings.HasPrefix(text[from:], d.delims.Open) &&
			strings.IndexByte(text[from:], hs.Quote()) >= 0 {
			return d.openInterpolation(text, from, st)
		}
	}
	if hs == hostlex.Data && d.interp && strings.HasPrefix(text[from:], d.delims.Open) {
		return d.openInterpolation(text, from, st)
	}

	tok, next := hostlex.Advance(text, from, hs, &d.grammar)
	if tok.Kind == token.EOF {
		return tok, st, len(text) + 1
	}
	st.Host = next
	return tok, d.afterHost(text, tok, st), tok.End
}

func (d *Dispatcher) bindingValue(text string, from int, st State) (token.Token, State) {
	limit := len(text)
	if i := strings.IndexByte(text[from:], st.Host.Quote()); i >= 0 {
		limit = from + i
	}
	tok, _ := d.binding.Advance(text[:limit], from, 0)
	if d.binding.IsEndOfRegion(tok) {
		tok = token.Token{Kind: token.EmbeddedContent, Start: from, End: limit}
	}
	tok.Dialect = delim.Expression
	return tok, st
}

// afterHost applies the region transitions a host token triggers.
func (d *Dispatcher) afterHost(text string, tok token.Token, st State) State {
	if st.Region == RegionTagAttributes && tok.Kind != token.TagEnd &&
		(tok.Kind == token.TagOpen || tok.Kind == token.TagClose || !st.Host.InsideTag()) {
		// the embeddable start tag was abandoned
		st = st.leaveTag()
	}

	switch tok.Kind {
	case token.TagOpen:
		st.Attr = dialect.AttrOther
		if el, ok := d.resolver.Embeddable(hostlex.TagName(text, tok)); ok {
			st.Region, st.Element = RegionTagAttributes, el
		}

	case token.AttrName:
		st.Attr = d.resolver.AttributeKind(tok.Text(text), st.Region == RegionTagAttributes)

	case token.AttrQuote:
		if st.Host.InAttrValue() {
			if st.Attr == dialect.AttrBinding && strings.IndexByte(text[tok.End:], st.Host.Quote()) >= 0 {
				st.Dialect = delim.Expression
			}
		} else {
			st.Attr, st.Dialect = dialect.AttrOther, delim.Host
		}

	case token.AttrValue:
		if st.Region == RegionTagAttributes && (st.Attr == dialect.AttrLang || st.Attr == dialect.AttrType) &&
			!tok.Flags.Has(token.Malformed) && valueStart(text, tok, st) {
			st = d.hint(text, tok, st)
		}
		if !st.Host.InAttrValue() {
			st.Attr, st.Dialect = dialect.AttrOther, delim.Host
		}

	case token.TagEnd:
		st.Attr, st.Dialect = dialect.AttrOther, delim.Host
		if st.Region == RegionTagAttributes {
			st = d.enterBody(tok, st)
		}
	}

	if st.Host == hostlex.InTag && st.Attr != dialect.AttrOther && tok.Kind != token.AttrName {
		st.Attr = dialect.AttrOther
	}
	return st
}

func (d *Dispatcher) hint(text string, tok token.Token, st State) State {
	value := tok.Text(text)
	if st.Host.InAttrValue() {
		// the whole quoted value, entities and all
		if end := strings.IndexByte(text[tok.Start:], st.Host.Quote()); end >= 0 {
			value = text[tok.Start : tok.Start+end]
		}
	}
	hint, _ := d.resolver.LookupAttribute(st.Attr, value)
	switch {
	case st.Attr == dialect.AttrLang:
		st.Hint, st.HintFromLang = hint, true
	case !st.HintFromLang:
		st.Hint = hint
	}
	return st
}

// valueStart reports whether tok is the first token of an attribute value.
func valueStart(text string, tok token.Token, st State) bool {
	if !st.Host.InAttrValue() {
		return true
	}
	return tok.Start > 0 && text[tok.Start-1] == st.Host.Quote()
}

func (d *Dispatcher) enterBody(tok token.Token, st State) State {
	el, hint := st.Element, st.Hint
	st = st.leaveTag()
	if tok.Len() == 2 {
		// `/>`
		return st
	}
	desc := d.resolver.Resolve(dialect.HostContext{Element: el, Hint: hint})
	if desc == nil {
		return st
	}
	st.Region, st.Element, st.Dialect, st.Sub = RegionEmbeddedBody, el, desc.ID, 0
	return st
}

func (st State) leaveTag() State {
	st.Region, st.Element = RegionHost, dialect.NoElement
	st.Hint, st.HintFromLang = delim.Host, false
	return st
}

// endTagAt returns the end of `</name` at p when it closes el, or -1.
func endTagAt(text string, p int, el dialect.Element) int {
	if !strings.HasPrefix(text[p:], "</") {
		return -1
	}
	name := el.String()
	i := p + 2
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	if len(text)-i < len(name) || !strings.EqualFold(text[i:i+len(name)], name) {
		return -1
	}
	i += len(name)
	if i < len(text) && !isSpace(text[i]) && text[i] != '/' && text[i] != '>' {
		return -1
	}
	return i
}

// endTagIndex finds the first end tag closing el that starts in [from, to).
func endTagIndex(text string, from, to int, el dialect.Element) int {
	for i := from; i < to; {
		j := strings.IndexByte(text[i:to], '<')
		if j < 0 {
			return -1
		}
		if endTagAt(text, i+j, el) > 0 {
			return i + j
		}
		i += j + 1
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
