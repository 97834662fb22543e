package semtok_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tmplex/pkg/embedlex"
	"github.com/walteh/tmplex/pkg/highlight"
	"github.com/walteh/tmplex/pkg/position"
	"github.com/walteh/tmplex/pkg/semtok"
)

/*
Test Organization:
----------------
Each test group focuses on a specific token source:

    +----------------+
    |  Test Groups   |
    +----------------+
           |
    +------+-------+
    |              |
  Host          Embedded
  Markup        Regions
    |              |
  Tags        Interpolations
  Attributes  Script bodies
  Comments    Flags

We test host markup in isolation first, then embedded regions.
*/

func newProvider(t *testing.T) *semtok.Provider {
	t.Helper()
	lx, err := embedlex.New()
	require.NoError(t, err)
	return semtok.NewProvider(lx, highlight.NewRegistry(zerolog.Nop()))
}

func TestHostTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []semtok.Token
	}{
		{
			name:  "test_tags",
			input: "<b>x</b>",
			expected: []semtok.Token{
				{Type: semtok.TokenTag, Range: position.NewBasicPosition("<b", 0)},
				{Type: semtok.TokenTag, Range: position.NewBasicPosition("</b", 4)},
			},
		},
		{
			name:  "test_attribute",
			input: `<a href="x">`,
			expected: []semtok.Token{
				{Type: semtok.TokenTag, Range: position.NewBasicPosition("<a", 0)},
				{Type: semtok.TokenProperty, Range: position.NewBasicPosition("href", 3)},
				{Type: semtok.TokenString, Range: position.NewBasicPosition(`"`, 8)},
				{Type: semtok.TokenString, Range: position.NewBasicPosition("x", 9)},
				{Type: semtok.TokenString, Range: position.NewBasicPosition(`"`, 10)},
			},
		},
		{
			name:  "test_multiline_comment_is_split",
			input: "<!--a\r\nb-->",
			expected: []semtok.Token{
				{Type: semtok.TokenComment, Range: position.NewBasicPosition("<!--a", 0)},
				{Type: semtok.TokenComment, Range: position.NewBasicPosition("b-->", 7)},
			},
		},
		{
			name:  "test_entity",
			input: "a&amp;b",
			expected: []semtok.Token{
				{Type: semtok.TokenMacro, Range: position.NewBasicPosition("&amp;", 1)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newProvider(t).GetTokensForText(context.Background(), []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInterpolationTokens(t *testing.T) {
	got, err := newProvider(t).GetTokensForText(context.Background(), []byte("<b>{{ user.name | upper }}</b>"))
	require.NoError(t, err)

	assert.Equal(t, []semtok.Token{
		{Type: semtok.TokenTag, Range: position.NewBasicPosition("<b", 0)},
		{Type: semtok.TokenMacro, Range: position.NewBasicPosition("{{", 3)},
		{Type: semtok.TokenVariable, Range: position.NewBasicPosition("user", 6)},
		{Type: semtok.TokenProperty, Range: position.NewBasicPosition("name", 11)},
		{Type: semtok.TokenOperator, Range: position.NewBasicPosition("|", 16)},
		{Type: semtok.TokenFunction, Range: position.NewBasicPosition("upper", 18)},
		{Type: semtok.TokenMacro, Range: position.NewBasicPosition("}}", 24)},
		{Type: semtok.TokenTag, Range: position.NewBasicPosition("</b", 26)},
	}, got)
}

func TestFlaggedTokensAreDeprecated(t *testing.T) {
	got, err := newProvider(t).GetTokensForText(context.Background(), []byte("<script>a={{ b"))
	require.NoError(t, err)

	last := got[len(got)-1]
	assert.Equal(t, "b", last.Range.Text)
	assert.Equal(t, semtok.TokenVariable, last.Type)
	assert.Equal(t, semtok.ModifierDeprecated, last.Modifier&semtok.ModifierDeprecated)
}

func TestScriptBodyIsHighlighted(t *testing.T) {
	got, err := newProvider(t).GetTokensForText(context.Background(), []byte("<script>\nconst a = 1\n</script>"))
	require.NoError(t, err)

	types := map[string]semtok.TokenType{}
	for _, tok := range got {
		types[tok.Range.Text] = tok.Type
	}
	assert.Equal(t, semtok.TokenKeyword, types["const"])
	assert.Equal(t, semtok.TokenNumber, types["1"])
}

func TestGetTokensForRange(t *testing.T) {
	content := []byte("<a>\n<b>\n<c>")
	ranged := position.NewBasicPosition("<b>", 4)

	got, err := newProvider(t).GetTokensForRange(context.Background(), content, &ranged)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "<b", got[0].Range.Text)

	all, err := newProvider(t).GetTokensForRange(context.Background(), content, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newProvider(t).GetTokensForText(ctx, []byte("<a>"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestEncode(t *testing.T) {
	text := "<a>\n  <b>"
	tokens := []semtok.Token{
		{Type: semtok.TokenTag, Range: position.NewBasicPosition("<a", 0)},
		{Type: semtok.TokenTag, Modifier: semtok.ModifierDeprecated, Range: position.NewBasicPosition("<b", 6)},
	}

	assert.Equal(t, []uint32{
		0, 0, 2, uint32(semtok.TokenTag) - 1, 0,
		1, 2, 2, uint32(semtok.TokenTag) - 1, uint32(semtok.ModifierDeprecated),
	}, semtok.Encode(text, tokens))
}

func TestLegend(t *testing.T) {
	assert.Equal(t, "type", semtok.TokenTag.String())
	assert.Equal(t, "macro", semtok.TokenMacro.String())
	assert.Equal(t, "unknown", semtok.TokenType(0).String())
	assert.Equal(t, "readonly|defaultLibrary", (semtok.ModifierReadonly | semtok.ModifierDefaultLibrary).String())
}
