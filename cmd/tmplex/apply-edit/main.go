package apply_edit

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/tmplex/pkg/diff"
	"github.com/walteh/tmplex/pkg/project"
	"github.com/walteh/tmplex/pkg/relex"
)

type Handler struct {
	flags  *project.Flags
	fs     afero.Fs
	offset int
	delete int
	insert string
	file   string
}

func NewRelexCommand(flags *project.Flags) *cobra.Command {
	me := &Handler{flags: flags, fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "relex [file]",
		Short: "apply an edit to a file in memory and show what the incremental lexer redid",
	}

	cmd.Flags().IntVar(&me.offset, "offset", 0, "byte offset of the edit")
	cmd.Flags().IntVar(&me.delete, "delete", 0, "number of bytes removed at the offset")
	cmd.Flags().StringVar(&me.insert, "insert", "", "text inserted at the offset")
	cmd.Args = cobra.ExactArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file = args[0]
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
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

	store := relex.NewStore(relex.DefaultExpiration, 0)
	d, err := store.Open(ctx, doc.Lexer, doc.Path, doc.Text)
	if err != nil {
		return err
	}
	before, old := d.Text(), d.Tokens()

	results, err := store.Update(ctx, doc.Path, 0, relex.Edit{Offset: me.offset, Length: me.delete, Text: me.insert})
	if err != nil {
		return err
	}
	r := results[0]

	fmt.Fprintf(out, "resumed at offset %d (token %d), relexed %d, reused %d of %d tokens\n",
		r.Resumed.Offset, r.Start, r.Relexed, r.Reused, len(d.Steps()))
	if s := diff.Streams(before, old, d.Text(), d.Tokens()); s != "" {
		fmt.Fprintln(out, s)
	}
	return nil
}
