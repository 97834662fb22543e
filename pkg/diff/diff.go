package diff

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
	"github.com/walteh/tmplex/pkg/token"
)

func DiffExportedOnly[T any](want T, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)
	return annotate(diff.Diff(printer.Sprint(got), printer.Sprint(want)))
}

// Tokens compares two token streams over the same source. Tokens are shown
// with the text they cover so a shifted span is readable at a glance.
func Tokens(src string, want, got []token.Token) string {
	show := cmp.Transformer("source", func(t token.Token) string {
		return fmt.Sprintf("%-24s %q", t.String(), slice(src, t))
	})
	return cmp.Diff(want, got, show)
}

// Streams renders the change between the token streams of two versions of a
// document, line per token, in the same add/remove notation as
// DiffExportedOnly.
func Streams(before string, old []token.Token, after string, updated []token.Token) string {
	return annotate(diff.Diff(lines(after, updated), lines(before, old)))
}

func lines(src string, toks []token.Token) string {
	var b strings.Builder
	for _, t := range toks {
		fmt.Fprintf(&b, "%s %q\n", t.Kind, slice(src, t))
	}
	return b.String()
}

func slice(src string, t token.Token) string {
	if t.Start < 0 || t.End > len(src) || t.Start > t.End {
		return "<out of range>"
	}
	return src[t.Start:t.End]
}

func annotate(abc string) string {
	if abc == "" {
		return ""
	}
	str := "\n\n"
	str += "to convert ACTUAL ⏩️ EXPECTED:\n\n"
	str += "add:    ➕\n"
	str += "remove: ➖\n"
	str += "\n"
	str += strings.ReplaceAll(strings.ReplaceAll(abc, "\n-", "\n➖"), "\n+", "\n➕")

	return str
}
