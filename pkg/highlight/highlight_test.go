package highlight_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/highlight"
)

type classified struct {
	Text     string
	Category highlight.Category
}

func classify(t *testing.T, h highlight.Highlighter, text string) []classified {
	t.Helper()
	spans, err := h.Highlight(text)
	require.NoError(t, err)

	out := make([]classified, 0, len(spans))
	prev := 0
	for _, s := range spans {
		require.GreaterOrEqual(t, s.Start, prev, "spans must be sorted and disjoint")
		require.LessOrEqual(t, s.End, len(text))
		out = append(out, classified{Text: text[s.Start:s.End], Category: s.Category})
		prev = s.End
	}
	return out
}

func TestExpression(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []classified
	}{
		{
			name:  "member_access",
			input: "user.name",
			expected: []classified{
				{"user", highlight.Variable},
				{"name", highlight.Property},
			},
		},
		{
			name:  "call_and_string",
			input: `format(a, "x")`,
			expected: []classified{
				{"format", highlight.Function},
				{"a", highlight.Variable},
				{`"x"`, highlight.String},
			},
		},
		{
			name:  "pipe",
			input: "price | currency",
			expected: []classified{
				{"price", highlight.Variable},
				{"|", highlight.Operator},
				{"currency", highlight.Function},
			},
		},
		{
			name:  "logical_or_is_not_a_pipe",
			input: "a || b",
			expected: []classified{
				{"a", highlight.Variable},
				{"||", highlight.Operator},
				{"b", highlight.Variable},
			},
		},
		{
			name:  "keywords_and_literals",
			input: "item of items; let i = 10",
			expected: []classified{
				{"item", highlight.Variable},
				{"of", highlight.Keyword},
				{"items", highlight.Variable},
				{"let", highlight.Keyword},
				{"i", highlight.Variable},
				{"=", highlight.Operator},
				{"10", highlight.Number},
			},
		},
		{
			name:  "index_is_not_in",
			input: "index",
			expected: []classified{
				{"index", highlight.Variable},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classify(t, highlight.Expression{}, tt.input))
		})
	}
}

func TestHCL(t *testing.T) {
	text := "name = upper(\"x\", 2) # note\n"
	cats := map[string]highlight.Category{}
	for _, c := range classify(t, highlight.HCL{}, text) {
		cats[c.Text] = c.Category
	}

	assert.Equal(t, highlight.Property, cats["name"])
	assert.Equal(t, highlight.Operator, cats["="])
	assert.Equal(t, highlight.Function, cats["upper"])
	assert.Equal(t, highlight.String, cats[`"x"`], "quotes and literal merge into one span")
	assert.Equal(t, highlight.Number, cats["2"])

	var comment bool
	for k, v := range cats {
		if v == highlight.Comment && len(k) >= len("# note") && k[:len("# note")] == "# note" {
			comment = true
		}
	}
	assert.True(t, comment, "comment span")
}

func TestChroma(t *testing.T) {
	h, err := highlight.NewChroma("javascript")
	require.NoError(t, err)

	text := "const a = \"s\"; // c\r\nreturn 1"
	spans, err := h.Highlight(text)
	require.NoError(t, err)
	require.NotEmpty(t, spans)

	cats := map[string]highlight.Category{}
	for _, s := range spans {
		require.LessOrEqual(t, s.End, len(text))
		cats[text[s.Start:s.End]] = s.Category
	}
	assert.Equal(t, highlight.Keyword, cats["const"])
	assert.Equal(t, highlight.String, cats[`"s"`])
	assert.Equal(t, highlight.Number, cats["1"])
	assert.Equal(t, highlight.Keyword, cats["return"], "offsets after a CRLF must still line up")
}

func TestUnknownChromaLexer(t *testing.T) {
	_, err := highlight.NewChroma("definitely-not-a-language")
	require.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := highlight.NewRegistry(zerolog.Nop())

	assert.IsType(t, highlight.Expression{}, r.For(delim.Expression))
	assert.IsType(t, highlight.HCL{}, r.For(delim.HCL))
	assert.NotNil(t, r.For(delim.TypeScript))
	assert.NotNil(t, r.For(delim.CSS))
	assert.Nil(t, r.For(delim.PlainText))

	r.Register(delim.PlainText, highlight.Expression{})
	assert.Contains(t, r.Dialects(), delim.PlainText)
}
