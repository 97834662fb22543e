package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const editorconfigName = ".editorconfig"

// editorconfigFor collects the raw keys that apply to path from every
// .editorconfig between its directory and the nearest root = true file.
// Nearer files win.
func editorconfigFor(fs afero.Fs, path string) (map[string]string, error) {
	abs := filepath.Clean(path)
	if !filepath.IsAbs(abs) {
		abs = string(filepath.Separator) + abs
	}

	out := map[string]string{}
	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		ec, err := readEditorconfig(fs, filepath.Join(dir, editorconfigName))
		if err != nil {
			return nil, err
		}
		if ec != nil {
			rel, err := filepath.Rel(dir, abs)
			if err != nil {
				return nil, errors.Errorf("relative path of %s: %w", abs, err)
			}
			def, err := ec.GetDefinitionForFilename(filepath.ToSlash(rel))
			if err != nil {
				return nil, errors.Errorf("matching %s in %s: %w", rel, dir, err)
			}
			for k, v := range def.Raw {
				k = strings.ToLower(k)
				if _, ok := out[k]; !ok && strings.HasPrefix(k, "tmplex_") {
					out[k] = v
				}
			}
			if ec.Root {
				break
			}
		}
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}
	return out, nil
}

func readEditorconfig(fs afero.Fs, path string) (*editorconfig.Editorconfig, error) {
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ec, err := editorconfig.Parse(f)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}
	return ec, nil
}
