package get_diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tmplex/pkg/diagnostic"
	"github.com/walteh/tmplex/pkg/embedlex"
	"github.com/walteh/tmplex/pkg/project"
	"gitlab.com/tozd/go/errors"
)

func setup(t *testing.T, format string, files ...string) (*Handler, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/ok.vue", []byte("<b>{{ a }}</b>"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/p/bad.vue", []byte("<b>\n<!-- x"), 0o644))
	return &Handler{
		flags:     &project.Flags{Dir: "/p"},
		fs:        fs,
		format:    format,
		generator: diagnostic.NewDefaultGenerator(),
		files:     files,
	}, &bytes.Buffer{}
}

func TestText(t *testing.T) {
	me, out := setup(t, "text", "/p/ok.vue", "/p/bad.vue")

	err := me.Run(context.Background(), out)
	require.ErrorIs(t, err, ErrDiagnostics)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Equal(t, "/p/bad.vue:2:1: error: comment is never closed [unterminated-comment]\n", out.String())
}

func TestVSCode(t *testing.T) {
	me, out := setup(t, "vscode", "/p/bad.vue")
	require.Error(t, me.Run(context.Background(), out))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "tmplex", got[0]["source"])
}

func TestClean(t *testing.T) {
	me, out := setup(t, "text", "/p/ok.vue")
	require.NoError(t, me.Run(context.Background(), out))
	assert.Empty(t, out.String())
}

func TestUnreadableFile(t *testing.T) {
	me, out := setup(t, "text", "/p/nope.vue")
	err := me.Run(context.Background(), out)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDiagnostics))
}

func TestDirectory(t *testing.T) {
	me, out := setup(t, "text", "/p")

	err := me.Run(context.Background(), out)
	require.ErrorIs(t, err, ErrDiagnostics)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out.String(), "/p/bad.vue:2:1:")
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, lexer *embedlex.Lexer, text string) (*diagnostic.Diagnostics, error) {
	args := m.Called(ctx, lexer, text)
	diags, _ := args.Get(0).(*diagnostic.Diagnostics)
	return diags, args.Error(1)
}

func TestGeneratorErrors(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, "<b>{{ a }}</b>").Return(nil, errors.New("boom"))
	gen.On("Generate", mock.Anything, mock.Anything, "<b>\n<!-- x").Return(&diagnostic.Diagnostics{
		Hints: []diagnostic.Diagnostic{{Message: "h", Code: "c", Line: 1, Column: 1, EndLine: 1, EndCol: 2, Severity: diagnostic.Hint}},
	}, nil)

	me, out := setup(t, "text", "/p/ok.vue", "/p/bad.vue")
	me.generator = gen

	err := me.Run(context.Background(), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/p/ok.vue: boom")
	assert.False(t, errors.Is(err, ErrDiagnostics), "hints alone do not fail the run")
	assert.Equal(t, "/p/bad.vue:1:1: hint: h [c]\n", out.String())
	gen.AssertNumberOfCalls(t, "Generate", 2)
}
