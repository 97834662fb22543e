package finder

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFinder_FindDocuments(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/p/index.html":              "<b>x</b>",
		"/p/app.vue":                 "<template>{{ a }}</template>",
		"/p/sub/page.astro":          "<p>{a}</p>",
		"/p/main.go":                 "package main",
		"/p/node_modules/x/a.vue":    "<b></b>",
		"/p/sub/node_modules/b.html": "<b></b>",
		"/p/.git/c.html":             "<b></b>",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	tests := []struct {
		name       string
		dir        string
		extensions []string
		want       []string
		wantErr    bool
	}{
		{
			name: "default extensions",
			dir:  "/p",
			want: []string{"/p/app.vue", "/p/index.html", "/p/sub/page.astro"},
		},
		{
			name:       "only vue",
			dir:        "/p",
			extensions: []string{".vue"},
			want:       []string{"/p/app.vue"},
		},
		{
			name: "subdirectory",
			dir:  "/p/sub",
			want: []string{"/p/sub/page.astro"},
		},
		{
			name:    "missing directory",
			dir:     "/nope",
			wantErr: true,
		},
		{
			name:    "file instead of directory",
			dir:     "/p/app.vue",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDefaultFinder(fs).FindDocuments(context.Background(), tt.dir, tt.extensions)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidExclude(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p", 0o755))

	_, err := NewDefaultFinder(fs, "[a").FindDocuments(context.Background(), "/p", nil)
	require.Error(t, err)
}

func TestExpand(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/a/x.html", []byte(""), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/p/a/y.vue", []byte(""), 0o644))

	got, err := Expand(context.Background(), NewDefaultFinder(fs), fs, []string{"/p/one.txt", "/p/a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/one.txt", "/p/a/x.html", "/p/a/y.vue"}, got)
}
