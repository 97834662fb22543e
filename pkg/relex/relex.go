// Package relex keeps the merged token stream of an open document current
// across edits without lexing the whole document again.
//
// A Document remembers the packed state and the reach at the end of every
// token. An edit resumes lexing at the last token boundary before it where
// the state is the document start state and no earlier token reached the
// edit. Lexing stops as soon as a new boundary lands on an old boundary
// (shifted by the edit) with the same state; the old tail is reused from
// there.
package relex

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/tmplex/pkg/embedlex"
	"github.com/walteh/tmplex/pkg/token"
	"gitlab.com/tozd/go/errors"
)

// Edit replaces Length bytes at Offset with Text.
type Edit struct {
	Offset int
	Length int
	Text   string
}

// Insert is an Edit that only adds text.
func Insert(offset int, text string) Edit {
	return Edit{Offset: offset, Text: text}
}

// Delete is an Edit that only removes text.
func Delete(offset, length int) Edit {
	return Edit{Offset: offset, Length: length}
}

// Checkpoint is a token boundary and the packed lexer state there.
type Checkpoint struct {
	Offset int
	State  int
}

// Result describes the work one edit took.
type Result struct {
	// Resumed is where lexing restarted.
	Resumed Checkpoint
	// Start is the index of the first token that was lexed again.
	Start int
	// Relexed counts the tokens the lexer produced.
	Relexed int
	// Reused counts the old tokens spliced back after the edit.
	Reused int
}

// Document is one text and its merged token stream. It is not safe for
// concurrent use; Store serializes access per document.
type Document struct {
	ID      uuid.UUID
	URI     string
	Version int32

	lexer *embedlex.Lexer
	text  string
	steps []embedlex.Step
	// bytes a token may read past its end to decide where it ends
	peek int
}

// NewDocument lexes text in full.
func NewDocument(ctx context.Context, lexer *embedlex.Lexer, uri, text string) (*Document, error) {
	if lexer == nil {
		return nil, errors.Errorf("lexer is nil")
	}

	d := &Document{
		ID:    uuid.New(),
		URI:   uri,
		lexer: lexer,
		text:  text,
		peek:  1,
	}
	if pair, ok := lexer.Delimiters(); ok {
		d.peek = max(d.peek, len(pair.Open), len(pair.Close))
	}

	steps, err := lexer.TokenizeFrom(text, 0, 0)
	if err != nil {
		return nil, errors.Errorf("lexing %s: %w", uri, err)
	}
	d.steps = steps

	zerolog.Ctx(ctx).Debug().Stringer("document", d.ID).Str("uri", uri).Int("tokens", len(steps)).Msg("lexed document")
	return d, nil
}

func (d *Document) Text() string {
	return d.text
}

// Steps returns the current merged stream. The slice must not be modified.
func (d *Document) Steps() []embedlex.Step {
	return d.steps
}

func (d *Document) Tokens() []token.Token {
	out := make([]token.Token, len(d.steps))
	for i, s := range d.steps {
		out[i] = s.Token
	}
	return out
}

// Checkpoints returns every token boundary, the document start included.
func (d *Document) Checkpoints() []Checkpoint {
	out := make([]Checkpoint, 0, len(d.steps)+1)
	out = append(out, Checkpoint{})
	for _, s := range d.steps {
		out = append(out, Checkpoint{Offset: s.Token.End, State: s.State})
	}
	return out
}

// resume finds where an edit at offset can restart lexing. keep is the number
// of leading tokens that stay valid.
func (d *Document) resume(offset int) (keep int, at Checkpoint) {
	for i, s := range d.steps {
		// a flagged token looked for a terminator up to the end of the text;
		// any edit may change it
		if s.Token.Flags != 0 || max(s.Token.End+d.peek, s.Reach) > offset {
			break
		}
		if s.State == 0 {
			keep, at = i+1, Checkpoint{Offset: s.Token.End}
		}
	}
	return keep, at
}

// Apply performs edits in order and returns the result of each.
func (d *Document) Apply(ctx context.Context, edits ...Edit) ([]Result, error) {
	results := make([]Result, 0, len(edits))
	for _, e := range edits {
		r, err := d.apply(ctx, e)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	d.Version++
	return results, nil
}

func (d *Document) apply(ctx context.Context, e Edit) (Result, error) {
	if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > len(d.text) {
		return Result{}, errors.Errorf("edit [%d, %d) outside of text [0, %d]", e.Offset, e.Offset+e.Length, len(d.text))
	}

	text := d.text[:e.Offset] + e.Text + d.text[e.Offset+e.Length:]
	delta := len(e.Text) - e.Length
	editEnd := e.Offset + len(e.Text)

	keep, at := d.resume(e.Offset)
	s, err := d.lexer.Start(text, at.Offset, len(text), at.State)
	if err != nil {
		return Result{}, errors.Errorf("resuming at %d: %w", at.Offset, err)
	}

	res := Result{Resumed: at, Start: keep}
	out := make([]embedlex.Step, keep, len(d.steps)+8)
	copy(out, d.steps[:keep])

	old := keep
	for s.Advance() {
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Errorf("relexing %s: %w", d.URI, err)
		}
		out = append(out, embedlex.Step{Token: s.Token(), State: s.State(), Reach: s.Reach()})
		res.Relexed++

		// boundaries right after the edit can still see it one byte behind
		end := s.TokenEnd()
		if end <= editEnd {
			continue
		}
		for old < len(d.steps) && d.steps[old].Token.End < end-delta {
			old++
		}
		if old < len(d.steps) && d.steps[old].Token.End == end-delta && d.steps[old].State == s.State() {
			for _, st := range d.steps[old+1:] {
				st.Token.Start += delta
				st.Token.End += delta
				st.Reach += delta
				out = append(out, st)
			}
			res.Reused = len(d.steps) - old - 1
			break
		}
	}

	d.text, d.steps = text, out

	zerolog.Ctx(ctx).Trace().
		Stringer("document", d.ID).
		Int("offset", e.Offset).
		Int("resumed", at.Offset).
		Int("relexed", res.Relexed).
		Int("reused", res.Reused).
		Msg("applied edit")
	return res, nil
}
