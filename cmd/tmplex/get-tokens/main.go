package get_tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/tmplex/pkg/debug"
	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/embedlex"
	"github.com/walteh/tmplex/pkg/finder"
	"github.com/walteh/tmplex/pkg/position"
	"github.com/walteh/tmplex/pkg/project"
	"github.com/walteh/tmplex/pkg/token"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

type Handler struct {
	flags  *project.Flags
	fs     afero.Fs
	format string // text, color, json, yaml
	states bool
	files  []string
	ext    []string
}

func NewTokensCommand(flags *project.Flags) *cobra.Command {
	me := &Handler{flags: flags, fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "tokens [files...]",
		Short: "print the merged token stream of each file",
	}

	cmd.Flags().StringVar(&me.format, "format", "text", "the output format (text, color, json, yaml)")
	cmd.Flags().BoolVar(&me.states, "states", false, "include the decoded lexer state after each token")
	cmd.Flags().StringSliceVar(&me.ext, "ext", nil, "extensions searched for in directory arguments (default .html,.htm,.vue,.astro,.svelte)")
	cmd.Args = cobra.MinimumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.files = args
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

// Record is one token as printed by the command.
type Record struct {
	Kind    token.Kind    `json:"kind" yaml:"kind"`
	Start   int           `json:"start" yaml:"start"`
	End     int           `json:"end" yaml:"end"`
	Place   string        `json:"place" yaml:"place"`
	Dialect delim.Dialect `json:"dialect" yaml:"dialect"`
	Flags   string        `json:"flags,omitempty" yaml:"flags,omitempty"`
	Text    string        `json:"text" yaml:"text"`
	State   string        `json:"state,omitempty" yaml:"state,omitempty"`
}

type File struct {
	Path     string   `json:"path" yaml:"path"`
	Revision string   `json:"revision" yaml:"revision"`
	Tokens   []Record `json:"tokens" yaml:"tokens"`
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	p, err := me.flags.Open(ctx, me.fs)
	if err != nil {
		return err
	}

	var files []File
	var errs error
	paths, err := finder.Expand(ctx, finder.NewDefaultFinder(me.fs), me.fs, me.files, me.ext)
	if err != nil {
		return err
	}

	for _, path := range paths {
		doc, err := p.Read(ctx, path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		steps := doc.Lexer.Tokenize(doc.Text)

		if me.format == "color" {
			toks := make([]token.Token, len(steps))
			for i, s := range steps {
				toks[i] = s.Token
			}
			fmt.Fprintln(out, debug.Colorize(doc.Text, toks))
			continue
		}
		files = append(files, me.file(doc, steps))
	}

	if err := me.write(out, files); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (me *Handler) file(doc *project.Document, steps []embedlex.Step) File {
	index := position.NewIndex(doc.Text)
	f := File{Path: doc.Path, Revision: doc.File.Revision, Tokens: make([]Record, 0, len(steps))}
	for _, s := range steps {
		r := Record{
			Kind:    s.Token.Kind,
			Start:   s.Token.Start,
			End:     s.Token.End,
			Place:   index.Place(s.Token.Start).String(),
			Dialect: s.Token.Dialect,
			Flags:   s.Token.Flags.String(),
			Text:    s.Token.Text(doc.Text),
		}
		if me.states {
			r.State = embedlex.Unpack(s.State).String()
		}
		f.Tokens = append(f.Tokens, r)
	}
	return f
}

func (me *Handler) write(out io.Writer, files []File) error {
	switch me.format {
	case "color":
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(files)
	case "text":
		for _, f := range files {
			fmt.Fprintf(out, "# %s (%s)\n", f.Path, f.Revision)
			for _, r := range f.Tokens {
				fmt.Fprintf(out, "%-8s %-24s %-12s %q", r.Place, r.Kind, r.Dialect, r.Text)
				if r.Flags != "" {
					fmt.Fprintf(out, " [%s]", r.Flags)
				}
				if r.State != "" {
					fmt.Fprintf(out, " %s", r.State)
				}
				fmt.Fprintln(out)
			}
		}
		return nil
	default:
		return errors.Errorf("unknown format %q", me.format)
	}
}
