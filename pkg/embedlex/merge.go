package embedlex

import (
	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/hostlex"
	"github.com/walteh/tmplex/pkg/token"
)

// step is one raw token together with the states around it and its reach.
type step struct {
	tok   token.Token
	start State
	end   State
	reach int
}

// coalescible reports whether a raw token belongs to a plain attribute value
// run that the merging lexer folds into one token.
func (s step) coalescible() bool {
	switch s.tok.Kind {
	case token.AttrValue, token.EntityRef:
	default:
		return false
	}
	return s.start.Host.InAttrValue() && !s.start.Interpolating && s.start.Dialect != delim.Expression
}

// content reports whether whitespace starting in st is part of the document
// content rather than markup structure.
func content(st State) bool {
	switch {
	case st.Interpolating, st.Region == RegionEmbeddedBody:
		return true
	case st.Host.InAttrValue():
		return st.Dialect == delim.Expression
	}
	return st.Host == hostlex.Data
}

// merge applies the grouping rules to a run of raw steps. The first step is
// always consumed; next is called for look-ahead and must not consume. A
// step that was looked at without being consumed still counts toward the
// reach of the result.
func merge(first step, peek func() (step, bool), consume func()) step {
	out := first
	if out.tok.Kind == token.Whitespace && content(out.start) {
		out.tok.Kind = token.RealWhitespace
	}
	if !out.coalescible() {
		return out
	}
	for {
		nx, ok := peek()
		out.reach = max(out.reach, nx.reach)
		if !ok || !nx.coalescible() || nx.tok.Start != out.tok.End {
			break
		}
		consume()
		out.tok.Kind = token.AttrValue
		out.tok.End = nx.tok.End
		out.tok.Flags |= nx.tok.Flags
		out.end = nx.end
	}
	return out
}
