// Package config loads project configuration for tmplex.
//
// Settings come from, in increasing precedence:
//
//	defaults
//	.tmplex.yaml in the project directory
//	TMPLEX_* environment variables
//	the first `files` rule whose glob matches the document
//	tmplex_* keys of the .editorconfig sections matching the document
package config

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/dialect"
	"github.com/walteh/tmplex/pkg/embedlex"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	FileName  = ".tmplex"
	EnvPrefix = "TMPLEX"
)

type Delimiters struct {
	Open  string `mapstructure:"open" yaml:"open,omitempty"`
	Close string `mapstructure:"close" yaml:"close,omitempty"`
}

func (d Delimiters) IsZero() bool {
	return d.Open == "" && d.Close == ""
}

// FileRule overrides settings for documents matching Glob, a doublestar
// pattern relative to the project directory.
type FileRule struct {
	Glob       string     `mapstructure:"glob" yaml:"glob"`
	Revision   string     `mapstructure:"revision" yaml:"revision,omitempty"`
	Delimiters Delimiters `mapstructure:"delimiters" yaml:"delimiters,omitempty"`
}

type Config struct {
	Revision   string     `mapstructure:"revision" yaml:"revision"`
	Delimiters Delimiters `mapstructure:"delimiters" yaml:"delimiters,omitempty"`
	Files      []FileRule `mapstructure:"files" yaml:"files,omitempty"`
	LogLevel   string     `mapstructure:"log_level" yaml:"log_level,omitempty"`

	// Dir is the project directory rules are relative to.
	Dir string `mapstructure:"-" yaml:"-"`
	// Used is the config file that was read, empty if none.
	Used string `mapstructure:"-" yaml:"-"`
}

func Default() *Config {
	return &Config{
		Revision: dialect.DefaultRevision,
		LogLevel: zerolog.InfoLevel.String(),
	}
}

type LoadOptions struct {
	// File is read instead of searching Dir for .tmplex.yaml.
	File string
}

// Load reads the configuration for the project in dir.
func Load(ctx context.Context, fs afero.Fs, dir string, opts LoadOptions) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("revision", def.Revision)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("delimiters.open", "")
	v.SetDefault("delimiters.close", "")

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, errors.Errorf("reading config: %w", err)
		}
		zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file, using defaults")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Errorf("decoding config: %w", err)
	}
	cfg.Dir = dir
	cfg.Used = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("file", cfg.Used).Str("revision", cfg.Revision).Int("rules", len(cfg.Files)).Msg("loaded config")
	return cfg, nil
}

// Validate reports every problem in c at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validateRevision(c.Revision); err != nil {
		result = multierror.Append(result, errors.Errorf("revision: %w", err))
	}
	if err := validateDelimiters(c.Delimiters); err != nil {
		result = multierror.Append(result, errors.Errorf("delimiters: %w", err))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, errors.Errorf("log_level: %w", err))
	}

	for i, r := range c.Files {
		if r.Glob == "" {
			result = multierror.Append(result, errors.Errorf("files[%d]: glob is required", i))
		} else if !doublestar.ValidatePattern(r.Glob) {
			result = multierror.Append(result, errors.Errorf("files[%d]: invalid glob %q", i, r.Glob))
		}
		if r.Revision != "" {
			if err := validateRevision(r.Revision); err != nil {
				result = multierror.Append(result, errors.Errorf("files[%d] revision: %w", i, err))
			}
		}
		if err := validateDelimiters(r.Delimiters); err != nil {
			result = multierror.Append(result, errors.Errorf("files[%d] delimiters: %w", i, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Errorf("invalid config: %w", err)
	}
	return nil
}

func validateRevision(name string) error {
	_, err := dialect.LookupRevision(name)
	return err
}

func validateDelimiters(d Delimiters) error {
	if d.IsZero() {
		return nil
	}
	p := delim.Pair{Open: d.Open, Close: d.Close}
	if !p.Valid() {
		return errors.Errorf("open %q and close %q must both be set and differ", d.Open, d.Close)
	}
	return nil
}

// Write saves c as yaml to path.
func (c *Config) Write(fs afero.Fs, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Errorf("encoding config: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return errors.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// File is the effective configuration of one document.
type File struct {
	Path       string
	Revision   string
	Delimiters Delimiters
	// Source names where the revision came from, for logs.
	Source string
}

// ForFile resolves the settings of the document at path.
func (c *Config) ForFile(ctx context.Context, fs afero.Fs, path string) (*File, error) {
	f := &File{Path: path, Revision: c.Revision, Delimiters: c.Delimiters, Source: "config"}

	rel := filepath.ToSlash(path)
	if c.Dir != "" {
		if r, err := filepath.Rel(c.Dir, path); err == nil {
			rel = filepath.ToSlash(r)
		}
	}

	for _, r := range c.Files {
		ok, err := doublestar.Match(r.Glob, rel)
		if err != nil {
			return nil, errors.Errorf("matching %q: %w", r.Glob, err)
		}
		if !ok {
			continue
		}
		if r.Revision != "" {
			f.Revision = r.Revision
		}
		if !r.Delimiters.IsZero() {
			f.Delimiters = r.Delimiters
		}
		f.Source = "files:" + r.Glob
		break
	}

	ec, err := editorconfigFor(fs, path)
	if err != nil {
		return nil, err
	}
	if v := ec["tmplex_revision"]; v != "" {
		f.Revision, f.Source = v, "editorconfig"
	}
	if o, e := ec["tmplex_interpolation_open"], ec["tmplex_interpolation_close"]; o != "" || e != "" {
		f.Delimiters = Delimiters{Open: o, Close: e}
	}

	if err := validateRevision(f.Revision); err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}
	if err := validateDelimiters(f.Delimiters); err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}

	zerolog.Ctx(ctx).Trace().Str("path", path).Str("revision", f.Revision).Str("source", f.Source).Msg("resolved file config")
	return f, nil
}

// Lexer builds the lexer for the document.
func (f *File) Lexer(logger zerolog.Logger) (*embedlex.Lexer, error) {
	rev, err := dialect.LookupRevision(f.Revision)
	if err != nil {
		return nil, err
	}
	opts := []embedlex.Option{embedlex.WithRevision(rev), embedlex.WithLogger(logger)}
	if !f.Delimiters.IsZero() {
		opts = append(opts, embedlex.WithDelimiters(f.Delimiters.Open, f.Delimiters.Close))
	}
	return embedlex.New(opts...)
}
