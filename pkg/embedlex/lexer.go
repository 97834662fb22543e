package embedlex

import (
	"github.com/rs/zerolog"
	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/dialect"
	"github.com/walteh/tmplex/pkg/token"
	"gitlab.com/tozd/go/errors"
)

type options struct {
	revision *dialect.Revision
	delims   *delim.Pair
	logger   zerolog.Logger
}

type Option func(*options)

// WithRevision selects the host grammar revision. The default is
// dialect.DefaultRevision.
func WithRevision(rev *dialect.Revision) Option {
	return func(o *options) {
		o.revision = rev
	}
}

// WithDelimiters overrides the interpolation delimiters of the revision.
func WithDelimiters(open, close string) Option {
	return func(o *options) {
		o.delims = &delim.Pair{Open: open, Close: close}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Lexer is the merging lexer over one configuration. It is safe for
// concurrent use; every Start returns an independent Session.
type Lexer struct {
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

func New(opts ...Option) (*Lexer, error) {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	if o.revision == nil {
		rev, err := dialect.LookupRevision(dialect.DefaultRevision)
		if err != nil {
			return nil, errors.Errorf("looking up default revision: %w", err)
		}
		o.revision = rev
	}

	resolver, err := dialect.NewResolver(o.revision, o.delims, o.logger)
	if err != nil {
		return nil, errors.Errorf("creating dialect resolver: %w", err)
	}

	return &Lexer{
		dispatcher: NewDispatcher(resolver),
		logger:     o.logger,
	}, nil
}

func (l *Lexer) Dispatcher() *Dispatcher {
	return l.dispatcher
}

func (l *Lexer) Revision() *dialect.Revision {
	return l.dispatcher.resolver.Revision()
}

// Delimiters returns the interpolation pair in effect and whether
// interpolation is enabled.
func (l *Lexer) Delimiters() (delim.Pair, bool) {
	return l.dispatcher.resolver.Delimiters()
}

// Start begins lexing text[start:end] in initialState. initialState is 0 at
// the beginning of a document, or a value returned by Session.State at the
// token boundary start.
func (l *Lexer) Start(text string, start, end, initialState int) (*Session, error) {
	if end < 0 || end > len(text) {
		return nil, errors.Errorf("end offset %d outside of text [0, %d]", end, len(text))
	}
	if start < 0 || start > end {
		return nil, errors.Errorf("start offset %d outside of [0, %d]", start, end)
	}
	if err := ValidateInt(initialState); err != nil {
		return nil, errors.Errorf("invalid initial state: %w", err)
	}

	st := Unpack(initialState)
	l.logger.Trace().Int("start", start).Int("end", end).Stringer("state", st).Msg("starting lexer session")

	return &Session{
		d:     l.dispatcher,
		text:  text[:end],
		pos:   start,
		raw:   st,
		state: st,
		tok:   token.Token{Kind: token.EOF, Start: start, End: start},
	}, nil
}

// Session walks the merged token stream. The zero position is before the
// first token; call Advance to move onto it.
//
//	s, _ := lexer.Start(text, 0, len(text), 0)
//	for s.Advance() {
//		fmt.Println(s.TokenType(), s.TokenStart(), s.TokenEnd())
//	}
type Session struct {
	d    *Dispatcher
	text string

	// raw position and state after the last consumed raw token
	pos int
	raw State

	peeked *step

	tok        token.Token
	startState State
	state      State
	reach      int
}

func (s *Session) next() step {
	if s.peeked != nil {
		st := *s.peeked
		s.peeked = nil
		s.pos, s.raw = st.tok.End, st.end
		return st
	}
	tok, end, reach := s.d.advance(s.text, s.pos, s.raw)
	st := step{tok: tok, start: s.raw, end: end, reach: reach}
	s.pos, s.raw = tok.End, end
	return st
}

func (s *Session) peek() (step, bool) {
	if s.peeked == nil {
		tok, end, reach := s.d.advance(s.text, s.pos, s.raw)
		s.peeked = &step{tok: tok, start: s.raw, end: end, reach: reach}
	}
	return *s.peeked, s.peeked.tok.Kind != token.EOF
}

// Advance moves to the next merged token and reports whether there is one.
func (s *Session) Advance() bool {
	first := s.next()
	if first.tok.Kind == token.EOF {
		s.tok = first.tok
		s.startState, s.state, s.reach = first.start, first.end, first.reach
		return false
	}
	out := merge(first, s.peek, func() { s.next() })
	s.tok, s.startState, s.state, s.reach = out.tok, out.start, out.end, out.reach
	return true
}

func (s *Session) Token() token.Token {
	return s.tok
}

func (s *Session) TokenType() token.Kind {
	return s.tok.Kind
}

func (s *Session) TokenStart() int {
	return s.tok.Start
}

func (s *Session) TokenEnd() int {
	return s.tok.End
}

// TokenText returns the source of the current token.
func (s *Session) TokenText() string {
	return s.tok.Text(s.text)
}

// State returns the packed state at TokenEnd. Passing it to Start together
// with TokenEnd continues the stream with the next token.
func (s *Session) State() int {
	return Pack(s.state)
}

// StartState returns the packed state at TokenStart.
func (s *Session) StartState() int {
	return Pack(s.startState)
}

// Reach returns the end of the text the current token was decided on. It is
// at least TokenEnd, and len(text)+1 when the token looked for something up
// to the end of the text. Reach leaves out the few bytes past TokenEnd that
// any text run checks for an open delimiter.
func (s *Session) Reach() int {
	return max(s.reach, s.tok.End)
}

// Step is a merged token, the packed state at its end and its reach.
type Step struct {
	Token token.Token
	State int
	Reach int
}

// Tokenize lexes all of text from the document start.
func (l *Lexer) Tokenize(text string) []Step {
	steps, _ := l.TokenizeFrom(text, 0, 0)
	return steps
}

// TokenizeFrom lexes text[start:] in state.
func (l *Lexer) TokenizeFrom(text string, start, state int) ([]Step, error) {
	s, err := l.Start(text, start, len(text), state)
	if err != nil {
		return nil, err
	}
	var steps []Step
	for s.Advance() {
		steps = append(steps, Step{Token: s.Token(), State: s.State(), Reach: s.Reach()})
	}
	return steps, nil
}
