package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/tmplex/pkg/diff"
	"github.com/walteh/tmplex/pkg/token"
)

func TestTokens(t *testing.T) {
	src := "<a>b"
	want := []token.Token{
		{Kind: token.TagOpen, Start: 0, End: 2},
		{Kind: token.TagEnd, Start: 2, End: 3},
		{Kind: token.Text, Start: 3, End: 4},
	}

	assert.Empty(t, diff.Tokens(src, want, want))

	got := append([]token.Token(nil), want...)
	got[2].Kind = token.Comment
	d := diff.Tokens(src, want, got)
	assert.Contains(t, d, "comment")
	assert.Contains(t, d, `"b"`)
}

func TestStreams(t *testing.T) {
	before := "<a>"
	old := []token.Token{{Kind: token.TagOpen, Start: 0, End: 2}, {Kind: token.TagEnd, Start: 2, End: 3}}

	assert.Empty(t, diff.Streams(before, old, before, old))

	after := "<b>"
	d := diff.Streams(before, old, after, old)
	assert.Contains(t, d, `tag-open "<b"`)
	assert.Contains(t, d, `tag-open "<a"`)
}

func TestDiffExportedOnly(t *testing.T) {
	type pair struct {
		A int
		b int
	}
	assert.Empty(t, diff.DiffExportedOnly(pair{A: 1, b: 1}, pair{A: 1, b: 2}))
	assert.NotEmpty(t, diff.DiffExportedOnly(pair{A: 1}, pair{A: 2}))
}
