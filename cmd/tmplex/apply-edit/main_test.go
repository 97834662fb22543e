package apply_edit

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tmplex/pkg/project"
)

func TestRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/a.html", []byte("<b>x</b><i>y</i><u>z</u>"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/p/.tmplex.yaml", []byte("revision: html\n"), 0o644))

	me := &Handler{flags: &project.Flags{Dir: "/p"}, fs: fs, offset: 11, insert: "w", file: "/p/a.html"}
	out := &bytes.Buffer{}
	require.NoError(t, me.Run(context.Background(), out))

	assert.Contains(t, out.String(), "resumed at offset 8 (token 5), relexed 3, reused 7 of 15 tokens\n")
	assert.Contains(t, out.String(), "wy")
}

func TestRunBadEdit(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/a.html", []byte("abc"), 0o644))

	me := &Handler{flags: &project.Flags{Dir: "/p"}, fs: fs, offset: 2, delete: 5, file: "/p/a.html"}
	require.Error(t, me.Run(context.Background(), &bytes.Buffer{}))
}
