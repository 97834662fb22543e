package get_tokens

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tmplex/pkg/project"
	"gopkg.in/yaml.v3"
)

func setup(t *testing.T, format string) (*Handler, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/a.vue", []byte(`<b :x="y">{{ z }}</b>`), 0o644))
	return &Handler{flags: &project.Flags{Dir: "/p"}, fs: fs, format: format}, &bytes.Buffer{}
}

func TestJSON(t *testing.T) {
	me, out := setup(t, "json")
	me.files = []string{"/p/a.vue"}
	require.NoError(t, me.Run(context.Background(), out))

	var files []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "vue", files[0]["revision"])

	toks := files[0]["tokens"].([]any)
	first := toks[0].(map[string]any)
	assert.Equal(t, "tag-open", first["kind"])
	assert.Equal(t, "1:1", first["place"])
	assert.Equal(t, "host", first["dialect"])

	var dialects []any
	for _, tok := range toks {
		dialects = append(dialects, tok.(map[string]any)["dialect"])
	}
	assert.Contains(t, dialects, "expression")
}

func TestYAMLWithStates(t *testing.T) {
	me, out := setup(t, "yaml")
	me.files = []string{"/p/a.vue"}
	me.states = true
	require.NoError(t, me.Run(context.Background(), out))

	var files []File
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &files))
	require.Len(t, files, 1)
	for _, r := range files[0].Tokens {
		assert.NotEmpty(t, r.State)
	}
}

func TestText(t *testing.T) {
	me, out := setup(t, "text")
	me.files = []string{"/p/a.vue"}
	require.NoError(t, me.Run(context.Background(), out))

	assert.Contains(t, out.String(), "# /p/a.vue (vue)\n")
	assert.Contains(t, out.String(), `"{{"`)
}

func TestMissingFilesAreCollected(t *testing.T) {
	me, out := setup(t, "text")
	me.files = []string{"/p/missing.vue", "/p/a.vue", "/p/gone.vue"}

	err := me.Run(context.Background(), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.vue")
	assert.Contains(t, err.Error(), "gone.vue")
	assert.Contains(t, out.String(), "# /p/a.vue")
}

func TestUnknownFormat(t *testing.T) {
	me, out := setup(t, "xml")
	me.files = []string{"/p/a.vue"}
	require.Error(t, me.Run(context.Background(), out))
}
