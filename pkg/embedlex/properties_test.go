package embedlex_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/dialect"
	"github.com/walteh/tmplex/pkg/embedlex"
	"github.com/walteh/tmplex/pkg/token"
	"pgregory.net/rapid"
)

var fragments = []string{
	"<", ">", "</", "/>", "=", `"`, "'", " ", "\n", "&amp;", "&", ";",
	"{{", "}}", "{%", "%}", "{", "}", "(", ")", "@if", "@else if", "@for",
	"<div", "</div>", "<script", "<script>", "</script>", "</SCRIPT >", "<style", "<style>", "</style>",
	"<template", "</template>", `lang="ts"`, "lang=scss", `type="text/less"`, `lang="nope"`,
	`:a="b"`, `[x]='y'`, "title=", "<!--", "-->", "<!doctype html>", "<![CDATA[", "]]>",
	"/*", "*/", "//", "`", "a", "b1", "msg", "x.y",
}

func document() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		parts := rapid.SliceOfN(rapid.SampledFrom(fragments), 0, 24).Draw(t, "parts")
		return strings.Join(parts, "")
	})
}

func revision() *rapid.Generator[*embedlex.Lexer] {
	return rapid.Custom(func(t *rapid.T) *embedlex.Lexer {
		name := rapid.SampledFrom(dialect.RevisionNames()).Draw(t, "revision")
		rev, err := dialect.LookupRevision(name)
		if err != nil {
			t.Fatalf("looking up revision: %v", err)
		}
		lx, err := embedlex.New(embedlex.WithRevision(rev))
		if err != nil {
			t.Fatalf("creating lexer: %v", err)
		}
		return lx
	})
}

func TestTiling(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lx := revision().Draw(t, "lexer")
		text := document().Draw(t, "text")

		end := 0
		for _, s := range lx.Tokenize(text) {
			if s.Token.Start != end {
				t.Fatalf("gap or overlap at %d: %s", end, s.Token)
			}
			if s.Token.End <= s.Token.Start {
				t.Fatalf("empty token %s", s.Token)
			}
			if s.Reach < s.Token.End || s.Reach > len(text)+1 {
				t.Fatalf("reach %d of %s outside [%d, %d]", s.Reach, s.Token, s.Token.End, len(text)+1)
			}
			end = s.Token.End
		}
		if end != len(text) {
			t.Fatalf("tokens cover [0, %d) of %d bytes", end, len(text))
		}
	})
}

func TestRawTiling(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lx := revision().Draw(t, "lexer")
		text := document().Draw(t, "text")

		d := lx.Dispatcher()
		pos, st := 0, embedlex.State{}
		for {
			tok, next := d.Advance(text, pos, st)
			if tok.Kind == token.EOF {
				break
			}
			if tok.Start != pos || tok.End <= tok.Start {
				t.Fatalf("bad raw token %s at %d", tok, pos)
			}
			if tok.Kind == token.EmbeddedContent && st.Active() == delim.Host {
				t.Fatalf("embedded content %s produced in host state %s", tok, st)
			}
			pos, st = tok.End, next
		}
		if pos != len(text) {
			t.Fatalf("raw tokens stop at %d of %d", pos, len(text))
		}
	})
}

func TestResumability(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lx := revision().Draw(t, "lexer")
		text := document().Draw(t, "text")

		full := lx.Tokenize(text)
		for i, s := range full {
			resumed, err := lx.TokenizeFrom(text, s.Token.End, s.State)
			if err != nil {
				t.Fatalf("resuming at %d: %v", s.Token.End, err)
			}
			want := full[i+1:]
			if len(resumed) != len(want) {
				t.Fatalf("resuming at %d: got %d tokens, want %d", s.Token.End, len(resumed), len(want))
			}
			for j := range want {
				if resumed[j] != want[j] {
					t.Fatalf("resuming at %d: token %d is %s/%d, want %s/%d",
						s.Token.End, j, resumed[j].Token, resumed[j].State, want[j].Token, want[j].State)
				}
			}
		}
	})
}

func TestReachableStatesRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lx := revision().Draw(t, "lexer")
		text := document().Draw(t, "text")

		for _, s := range lx.Tokenize(text) {
			if got := embedlex.Pack(embedlex.Unpack(s.State)); got != s.State {
				t.Fatalf("state %d packs back to %d", s.State, got)
			}
			if err := embedlex.ValidateInt(s.State); err != nil {
				t.Fatalf("reachable state %s rejected: %v", embedlex.Unpack(s.State), err)
			}
		}
	})
}

func TestCodecRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.IntRange(0, 1<<embedlex.StateBits-1).Draw(t, "state")
		require.Equal(t, v, embedlex.Pack(embedlex.Unpack(v)))
	})
}

func TestUnknownLangFallsBackToPlainText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lx := revision().Draw(t, "lexer")
		lang := rapid.StringMatching(`[a-z]{3,10}`).Draw(t, "lang")
		if _, known := delim.LookupLang(lang); known {
			t.Skip("known dialect")
		}
		el := rapid.SampledFrom([]string{"script", "style"}).Draw(t, "element")
		body := document().Draw(t, "body")
		body = strings.ReplaceAll(body, "/", "")

		text := "<" + el + ` lang="` + lang + `">` + body + "</" + el + ">"
		for _, s := range lx.Tokenize(text) {
			if s.Token.Kind != token.EmbeddedContent || s.Token.Dialect == delim.PlainText {
				continue
			}
			// interpolations inside the body keep their own dialect
			if s.Token.Dialect == delim.Expression && lx.Revision().InterpolateRawText {
				continue
			}
			t.Fatalf("embedded content %s in dialect %s", s.Token, s.Token.Dialect)
		}
	})
}
