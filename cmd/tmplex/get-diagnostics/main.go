package get_diagnostics

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/tmplex/pkg/diagnostic"
	"github.com/walteh/tmplex/pkg/finder"
	"github.com/walteh/tmplex/pkg/project"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type Handler struct {
	flags     *project.Flags
	fs        afero.Fs
	format    string // vscode, text
	generator diagnostic.Generator
	files     []string
	ext       []string
}

func NewDiagnosticsCommand(flags *project.Flags) *cobra.Command {
	me := &Handler{flags: flags, fs: afero.NewOsFs(), generator: diagnostic.NewDefaultGenerator()}

	cmd := &cobra.Command{
		Use:   "diagnostics [files...]",
		Short: "report malformed and unterminated regions",
	}

	cmd.Flags().StringVar(&me.format, "format", "text", "the format of the diagnostics (text, vscode)")
	cmd.Flags().StringSliceVar(&me.ext, "ext", nil, "extensions searched for in directory arguments (default .html,.htm,.vue,.astro,.svelte)")
	cmd.Args = cobra.MinimumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.files = args
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

// ErrDiagnostics is returned when any file has error diagnostics.
var ErrDiagnostics = errors.Base("documents have errors")

type result struct {
	diags *diagnostic.Diagnostics
	err   error
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	p, err := me.flags.Open(ctx, me.fs)
	if err != nil {
		return err
	}

	paths, err := finder.Expand(ctx, finder.NewDefaultFinder(me.fs), me.fs, me.files, me.ext)
	if err != nil {
		return err
	}

	results := make([]result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			doc, err := p.Read(gctx, path)
			if err != nil {
				results[i].err = err
				return nil
			}
			diags, err := me.generator.Generate(gctx, doc.Lexer, doc.Text)
			if err != nil {
				results[i].err = errors.Errorf("%s: %w", path, err)
				return nil
			}
			zerolog.Ctx(gctx).Debug().Str("path", path).Int("count", diags.Len()).Msg("diagnostics")
			results[i].diags = diags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var errs error
	failed := 0
	for i, path := range paths {
		r := results[i]
		if r.err != nil {
			errs = multierr.Append(errs, r.err)
			continue
		}
		if len(r.diags.Errors) > 0 {
			failed++
		}

		formatter, err := me.formatter(path)
		if err != nil {
			return err
		}
		data, err := formatter.Format(r.diags)
		if err != nil {
			errs = multierr.Append(errs, errors.Errorf("%s: %w", path, err))
			continue
		}
		if me.format == "vscode" {
			fmt.Fprintf(out, "%s\n", data)
		} else {
			fmt.Fprint(out, string(data))
		}
	}

	if failed > 0 {
		errs = multierr.Append(errs, errors.Errorf("%d of %d: %w", failed, len(paths), ErrDiagnostics))
	}
	return errs
}

func (me *Handler) formatter(path string) (diagnostic.Formatter, error) {
	switch me.format {
	case "vscode":
		return diagnostic.NewVSCodeFormatter(), nil
	case "text":
		return &diagnostic.TextFormatter{Filename: path}, nil
	default:
		return nil, errors.Errorf("unknown format %q", me.format)
	}
}
