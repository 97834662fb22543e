package get_semantic_tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/tmplex/pkg/highlight"
	"github.com/walteh/tmplex/pkg/position"
	"github.com/walteh/tmplex/pkg/project"
	"github.com/walteh/tmplex/pkg/semtok"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	flags  *project.Flags
	fs     afero.Fs
	format string // text, json, lsp
	file   string
}

func NewSemtokCommand(flags *project.Flags) *cobra.Command {
	me := &Handler{flags: flags, fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "semtok [file]",
		Short: "print the semantic tokens of a file",
	}

	cmd.Flags().StringVar(&me.format, "format", "text", "the output format (text, json, lsp)")
	cmd.Args = cobra.ExactArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file = args[0]
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

type record struct {
	Place    string               `json:"place"`
	Type     semtok.TokenType     `json:"type"`
	Modifier semtok.TokenModifier `json:"modifier"`
	Text     string               `json:"text"`
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	p, err := me.flags.Open(ctx, me.fs)
	if err != nil {
		return err
	}
	doc, err := p.Read(ctx, me.file)
	if err != nil {
		return err
	}

	provider := semtok.NewProvider(doc.Lexer, highlight.NewRegistry(*zerolog.Ctx(ctx)))
	toks, err := provider.GetTokensForText(ctx, []byte(doc.Text))
	if err != nil {
		return errors.Errorf("semantic tokens for %s: %w", me.file, err)
	}

	switch me.format {
	case "lsp":
		return json.NewEncoder(out).Encode(map[string]any{
			"legend": map[string][]string{"tokenTypes": semtok.Legend, "tokenModifiers": semtok.ModifierLegend},
			"data":   semtok.Encode(doc.Text, toks),
		})
	case "json", "text":
		index := position.NewIndex(doc.Text)
		records := make([]record, 0, len(toks))
		for _, t := range toks {
			records = append(records, record{
				Place:    index.Place(t.Range.Offset).String(),
				Type:     t.Type,
				Modifier: t.Modifier,
				Text:     t.Range.Text,
			})
		}
		if me.format == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		for _, r := range records {
			fmt.Fprintf(out, "%-8s %-10s %-16s %q\n", r.Place, r.Type, r.Modifier, r.Text)
		}
		return nil
	default:
		return errors.Errorf("unknown format %q", me.format)
	}
}
