package dialect_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/dialect"
)

func newResolver(t *testing.T, revision string) *dialect.Resolver {
	t.Helper()
	rev, err := dialect.LookupRevision(revision)
	require.NoError(t, err)
	r, err := dialect.NewResolver(rev, nil, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestLookupRevision(t *testing.T) {
	rev, err := dialect.LookupRevision("Vue")
	require.NoError(t, err)
	assert.Equal(t, "vue", rev.Name)
	assert.Equal(t, delim.Default, rev.Delimiters)

	// every lookup hands out its own copy
	rev.Name = "changed"
	again, err := dialect.LookupRevision("vue")
	require.NoError(t, err)
	assert.Equal(t, "vue", again.Name)

	_, err = dialect.LookupRevision("svelte")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"svelte"`)
	assert.Contains(t, err.Error(), "angular17")
}

func TestRevisionNames(t *testing.T) {
	assert.Equal(t, []string{"angular", "angular17", "astro", "html", "vue"}, dialect.RevisionNames())
	assert.Contains(t, dialect.RevisionNames(), dialect.DefaultRevision)
}

func TestIsBinding(t *testing.T) {
	vue, err := dialect.LookupRevision("vue")
	require.NoError(t, err)
	assert.True(t, vue.IsBinding(":href"))
	assert.True(t, vue.IsBinding("v-if"))
	assert.False(t, vue.IsBinding(":"))
	assert.False(t, vue.IsBinding("href"))
}

func TestNewResolver(t *testing.T) {
	_, err := dialect.NewResolver(nil, nil, zerolog.Nop())
	require.Error(t, err)

	rev, err := dialect.LookupRevision("vue")
	require.NoError(t, err)
	_, err = dialect.NewResolver(rev, &delim.Pair{Open: "|", Close: "|"}, zerolog.Nop())
	require.Error(t, err)

	r, err := dialect.NewResolver(rev, &delim.Pair{Open: "{%", Close: "%}"}, zerolog.Nop())
	require.NoError(t, err)
	pair, ok := r.Delimiters()
	assert.True(t, ok)
	assert.Equal(t, "%}", pair.Close)
	require.NotNil(t, r.Descriptor(delim.Expression).Delimiters)
	assert.Equal(t, "{%", r.Descriptor(delim.Expression).Delimiters.Open)
	assert.Nil(t, r.Descriptor(delim.JavaScript).Delimiters)

	html := newResolver(t, "html")
	_, ok = html.Delimiters()
	assert.False(t, ok, "html has no interpolation")
}

func TestResolve(t *testing.T) {
	vue := newResolver(t, "vue")

	tests := []struct {
		name string
		ctx  dialect.HostContext
		want delim.Dialect
		none bool
	}{
		{name: "script_default", ctx: dialect.HostContext{Element: dialect.Script}, want: delim.JavaScript},
		{name: "style_default", ctx: dialect.HostContext{Element: dialect.Style}, want: delim.CSS},
		{name: "template_stays_markup", ctx: dialect.HostContext{Element: dialect.Template}, none: true},
		{name: "hint_wins", ctx: dialect.HostContext{Element: dialect.Script, Hint: delim.TypeScript}, want: delim.TypeScript},
		{name: "template_with_pug", ctx: dialect.HostContext{Element: dialect.Template, Hint: delim.Pug}, want: delim.Pug},
		{name: "unknown_hint_is_text", ctx: dialect.HostContext{Element: dialect.Style, Hint: delim.PlainText}, want: delim.PlainText},
		{name: "no_element", ctx: dialect.HostContext{}, none: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := vue.Resolve(tt.ctx)
			if tt.none {
				assert.Nil(t, desc)
				return
			}
			require.NotNil(t, desc)
			assert.Equal(t, tt.want, desc.ID)
			assert.NotNil(t, desc.Lexer())
		})
	}
}

func TestLookupAttribute(t *testing.T) {
	r := newResolver(t, "vue")

	tests := []struct {
		name  string
		kind  dialect.AttrKind
		value string
		want  delim.Dialect
		ok    bool
	}{
		{name: "lang", kind: dialect.AttrLang, value: "ts", want: delim.TypeScript, ok: true},
		{name: "lang_html_is_markup", kind: dialect.AttrLang, value: "html", want: delim.Host, ok: true},
		{name: "empty_is_no_hint", kind: dialect.AttrLang, value: "  ", want: delim.Host, ok: true},
		{name: "unknown_lang", kind: dialect.AttrLang, value: "klingon", want: delim.PlainText},
		{name: "type", kind: dialect.AttrType, value: "text/css", want: delim.CSS, ok: true},
		{name: "other_attribute", kind: dialect.AttrOther, value: "ts", want: delim.Host},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.LookupAttribute(tt.kind, tt.value)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestAttributeKind(t *testing.T) {
	vue := newResolver(t, "vue")
	assert.Equal(t, dialect.AttrLang, vue.AttributeKind("LANG", true))
	assert.Equal(t, dialect.AttrType, vue.AttributeKind("type", true))
	assert.Equal(t, dialect.AttrOther, vue.AttributeKind("lang", false))
	assert.Equal(t, dialect.AttrBinding, vue.AttributeKind(":lang", true))
	assert.Equal(t, dialect.AttrOther, vue.AttributeKind("title", false))
}

func TestEmbeddable(t *testing.T) {
	vue := newResolver(t, "vue")
	el, ok := vue.Embeddable("SCRIPT")
	assert.True(t, ok)
	assert.Equal(t, dialect.Script, el)

	_, ok = vue.Embeddable("div")
	assert.False(t, ok)

	_, ok = newResolver(t, "html").Embeddable("template")
	assert.False(t, ok)

	assert.Equal(t, "template", dialect.Template.String())
	assert.Equal(t, "unknown", dialect.Element(9).String())
}
