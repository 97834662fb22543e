package get_semantic_tokens

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tmplex/pkg/project"
)

func setup(t *testing.T, format string) (*Handler, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/a.vue", []byte("<b>{{ a }}</b>"), 0o644))
	return &Handler{flags: &project.Flags{Dir: "/p"}, fs: fs, format: format, file: "/p/a.vue"}, &bytes.Buffer{}
}

func TestText(t *testing.T) {
	me, out := setup(t, "text")
	require.NoError(t, me.Run(context.Background(), out))
	assert.Contains(t, out.String(), `"{{"`)
	assert.Contains(t, out.String(), "macro")
}

func TestLSP(t *testing.T) {
	me, out := setup(t, "lsp")
	require.NoError(t, me.Run(context.Background(), out))

	var got struct {
		Legend struct {
			TokenTypes []string `json:"tokenTypes"`
		} `json:"legend"`
		Data []uint32 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Contains(t, got.Legend.TokenTypes, "macro")
	assert.Zero(t, len(got.Data)%5)
	assert.NotEmpty(t, got.Data)
}

func TestJSON(t *testing.T) {
	me, out := setup(t, "json")
	require.NoError(t, me.Run(context.Background(), out))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "type", got[0]["type"])
	assert.Equal(t, "<b", got[0]["text"])
}
