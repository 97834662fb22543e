// Package project ties configuration to files on disk: it reads documents
// and hands out the lexer configured for each of them.
package project

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/walteh/tmplex/pkg/config"
	"github.com/walteh/tmplex/pkg/embedlex"
	"gitlab.com/tozd/go/errors"
)

type Project struct {
	fs     afero.Fs
	config *config.Config

	mu     sync.Mutex
	lexers map[lexerKey]*embedlex.Lexer
	logger zerolog.Logger
}

type lexerKey struct {
	revision    string
	open, close string
}

// Open loads the configuration of the project in dir. configFile, when set,
// is read instead of dir/.tmplex.yaml.
func Open(ctx context.Context, fs afero.Fs, dir, configFile string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", dir, err)
	}
	cfg, err := config.Load(ctx, fs, abs, config.LoadOptions{File: configFile})
	if err != nil {
		return nil, err
	}
	return New(ctx, fs, cfg), nil
}

func New(ctx context.Context, fs afero.Fs, cfg *config.Config) *Project {
	return &Project{
		fs:     fs,
		config: cfg,
		lexers: map[lexerKey]*embedlex.Lexer{},
		logger: *zerolog.Ctx(ctx),
	}
}

func (p *Project) Config() *config.Config {
	return p.config
}

// Document is a file read from the project with the lexer that applies to it.
type Document struct {
	Path  string
	Text  string
	File  *config.File
	Lexer *embedlex.Lexer
}

// Read loads path and resolves its lexer.
func (p *Project) Read(ctx context.Context, path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", path, err)
	}

	data, err := afero.ReadFile(p.fs, abs)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	lx, file, err := p.Lexer(ctx, abs)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Text: string(data), File: file, Lexer: lx}, nil
}

// Lexer returns the lexer for path. Files with the same settings share one.
func (p *Project) Lexer(ctx context.Context, path string) (*embedlex.Lexer, *config.File, error) {
	file, err := p.config.ForFile(ctx, p.fs, path)
	if err != nil {
		return nil, nil, err
	}

	key := lexerKey{revision: file.Revision, open: file.Delimiters.Open, close: file.Delimiters.Close}

	p.mu.Lock()
	defer p.mu.Unlock()

	if lx, ok := p.lexers[key]; ok {
		return lx, file, nil
	}
	lx, err := file.Lexer(p.logger)
	if err != nil {
		return nil, nil, errors.Errorf("creating lexer for %s: %w", path, err)
	}
	p.lexers[key] = lx
	return lx, file, nil
}

// Flags are the project selection flags shared by every command.
type Flags struct {
	Dir        string
	ConfigFile string
}

func (f *Flags) Register(flags *pflag.FlagSet) {
	flags.StringVar(&f.Dir, "dir", ".", "the project directory")
	flags.StringVar(&f.ConfigFile, "config", "", "config file to read instead of <dir>/.tmplex.yaml")
}

func (f *Flags) Open(ctx context.Context, fs afero.Fs) (*Project, error) {
	return Open(ctx, fs, f.Dir, f.ConfigFile)
}
