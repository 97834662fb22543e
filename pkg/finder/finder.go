// Package finder expands directory arguments into the documents under them.
package finder

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultExtensions are the document types found when none are given.
var DefaultExtensions = []string{".html", ".htm", ".vue", ".astro", ".svelte"}

// DefaultExcludes are skipped while walking.
var DefaultExcludes = []string{"**/node_modules", "**/.git", "**/dist"}

// DocumentFinder is responsible for finding documents in a directory
type DocumentFinder interface {
	// FindDocuments finds all files under dir that have one of the extensions
	FindDocuments(ctx context.Context, dir string, extensions []string) ([]string, error)
}

// DefaultFinder walks an afero filesystem.
type DefaultFinder struct {
	fs       afero.Fs
	excludes []string
}

// NewDefaultFinder creates a new DefaultFinder
func NewDefaultFinder(fs afero.Fs, excludes ...string) *DefaultFinder {
	if len(excludes) == 0 {
		excludes = DefaultExcludes
	}
	return &DefaultFinder{fs: fs, excludes: excludes}
}

// FindDocuments implements DocumentFinder
func (f *DefaultFinder) FindDocuments(ctx context.Context, dir string, extensions []string) ([]string, error) {
	for _, pattern := range f.excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	info, err := f.fs.Stat(dir)
	if err != nil {
		return nil, errors.Errorf("finding documents in %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("finding documents in %s: not a directory", dir)
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	var found []string
	err = afero.Walk(f.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && f.excluded(rel) {
			zerolog.Ctx(ctx).Trace().Str("path", path).Msg("excluded")
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if hasExtension(path, extensions) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", dir, err)
	}

	sort.Strings(found)
	return found, nil
}

func (f *DefaultFinder) excluded(rel string) bool {
	for _, pattern := range f.excludes {
		if doublestar.MatchUnvalidated(pattern, rel) {
			return true
		}
	}
	return false
}

func hasExtension(path string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Expand replaces each directory in paths with the documents found under it.
// Other paths are kept as given.
func Expand(ctx context.Context, f DocumentFinder, fs afero.Fs, paths []string, extensions []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := fs.Stat(path)
		if err != nil || !info.IsDir() {
			out = append(out, path)
			continue
		}
		found, err := f.FindDocuments(ctx, path, extensions)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}
