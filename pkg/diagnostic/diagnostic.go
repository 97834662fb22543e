package diagnostic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/dialect"
	"github.com/walteh/tmplex/pkg/embedlex"
	"github.com/walteh/tmplex/pkg/hostlex"
	"github.com/walteh/tmplex/pkg/position"
	"github.com/walteh/tmplex/pkg/token"
	"gitlab.com/tozd/go/errors"
)

// Generator is responsible for generating diagnostics from lexer output
type Generator interface {
	// Generate lexes text and reports its recovery flags
	Generate(ctx context.Context, lexer *embedlex.Lexer, text string) (*Diagnostics, error)
}

// Diagnostics represents diagnostic information that can be formatted in different ways
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Hints    []Diagnostic
}

// Len is the total number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Hints)
}

// All returns every diagnostic, errors first.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, d.Len())
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)
	return append(out, d.Hints...)
}

func (d *Diagnostics) add(diag Diagnostic) {
	switch diag.Severity {
	case Error:
		d.Errors = append(d.Errors, diag)
	case Warning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Hints = append(d.Hints, diag)
	}
}

// Diagnostic represents a single diagnostic message. Lines and columns are
// 1-based; columns count grapheme clusters.
type Diagnostic struct {
	Message  string             `json:"message"`
	Code     string             `json:"code"`
	Line     int                `json:"line"`
	Column   int                `json:"column"`
	EndLine  int                `json:"endLine"`
	EndCol   int                `json:"endColumn"`
	Severity DiagnosticSeverity `json:"severity"`
}

// DiagnosticSeverity represents the severity level of a diagnostic
type DiagnosticSeverity string

const (
	Error   DiagnosticSeverity = "error"
	Warning DiagnosticSeverity = "warning"
	Info    DiagnosticSeverity = "info"
	Hint    DiagnosticSeverity = "hint"
)

// diagnostic codes
const (
	CodeMalformedTag           = "malformed-tag"
	CodeMalformedAttribute     = "malformed-attribute"
	CodeMalformedBlock         = "malformed-block"
	CodeUnterminatedComment    = "unterminated-comment"
	CodeUnterminatedInterp     = "unterminated-interpolation"
	CodeUnterminatedRegion     = "unterminated-region"
	CodeUnknownDialect         = "unknown-dialect"
	CodeUnexpectedEndTagSuffix = "end-tag-content"
)

// DefaultGenerator is the default implementation of Generator
type DefaultGenerator struct{}

// NewDefaultGenerator creates a new DefaultGenerator
func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{}
}

// Generate implements Generator
func (g *DefaultGenerator) Generate(ctx context.Context, lexer *embedlex.Lexer, text string) (*Diagnostics, error) {
	if lexer == nil {
		return nil, errors.Errorf("lexer is nil")
	}

	s, err := lexer.Start(text, 0, len(text), 0)
	if err != nil {
		return nil, errors.Errorf("starting lexer: %w", err)
	}

	w := &walker{
		text:   text,
		index:  position.NewIndex(text),
		diags:  &Diagnostics{Errors: make([]Diagnostic, 0), Warnings: make([]Diagnostic, 0)},
		closer:   "",
		resolver: lexer.Dispatcher().Resolver(),
	}
	if pair, ok := lexer.Delimiters(); ok {
		w.closer = pair.Close
	}

	for s.Advance() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("generating diagnostics: %w", err)
		}
		w.visit(s.Token(), embedlex.Unpack(s.StartState()))
	}

	zerolog.Ctx(ctx).Debug().Int("errors", len(w.diags.Errors)).Int("warnings", len(w.diags.Warnings)).Msg("generated diagnostics")
	return w.diags, nil
}

type walker struct {
	text   string
	index  *position.Index
	diags  *Diagnostics
	closer string

	// the embeddable element whose start tag is being lexed, and the
	// dialect attribute just named in it
	resolver *dialect.Resolver
	element  dialect.Element
	attr     dialect.AttrKind

	unclosedQuote bool
}

func (w *walker) report(tok token.Token, sev DiagnosticSeverity, code, format string, args ...any) {
	start, end := w.index.Place(tok.Start), w.index.Place(tok.End)
	w.diags.add(Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
		Line:     start.Line + 1,
		Column:   start.Character + 1,
		EndLine:  end.Line + 1,
		EndCol:   end.Character + 1,
		Severity: sev,
	})
}

func (w *walker) visit(tok token.Token, st embedlex.State) {
	w.dialectAttribute(tok, st)

	switch {
	case tok.Flags.Has(token.Unterminated):
		w.unterminated(tok, st)
	case tok.Flags.Has(token.Malformed):
		w.malformed(tok, st)
	}
}

func (w *walker) unterminated(tok token.Token, st embedlex.State) {
	switch {
	case tok.Kind == token.Comment || tok.Kind == token.CData || tok.Kind == token.Doctype:
		w.report(tok, Error, CodeUnterminatedComment, "%s is never closed", tok.Kind)
	case tok.Dialect == delim.Expression && (tok.Kind == token.InterpolationDelimiter || st.Interpolating):
		w.report(tok, Error, CodeUnterminatedInterp, "interpolation is missing its closing %q", w.closer)
	case tok.End == len(w.text):
		w.report(tok, Error, CodeUnterminatedRegion, "<%s> body is never closed", st.Element)
	default:
		w.report(tok, Warning, CodeUnterminatedRegion, "%s comment or template literal is still open at </%s>", tok.Dialect, st.Element)
	}
}

func (w *walker) malformed(tok token.Token, st embedlex.State) {
	switch {
	case tok.Kind == token.AttrQuote:
		w.unclosedQuote = true
		w.report(tok, Error, CodeMalformedAttribute, "attribute value is never closed")
	case tok.Kind == token.AttrValue:
		// already reported at its opening quote
		if !w.unclosedQuote {
			w.report(tok, Error, CodeMalformedAttribute, "attribute value is never closed")
		}
	case tok.Kind == token.BlockParameters:
		w.report(tok, Error, CodeMalformedBlock, "block parameters have unbalanced parentheses or an unclosed string")
	case tok.Kind == token.Text && st.Host == hostlex.InEndTag:
		w.report(tok, Warning, CodeUnexpectedEndTagSuffix, "unexpected %q in end tag", tok.Text(w.text))
	case tok.End == len(w.text):
		w.report(tok, Error, CodeMalformedTag, "tag is not closed at end of document")
	default:
		w.report(tok, Error, CodeMalformedTag, "tag is not closed before %q", tok.Text(w.text))
	}
}

// dialectAttribute warns about lang and type values no dialect is known for.
func (w *walker) dialectAttribute(tok token.Token, st embedlex.State) {
	switch tok.Kind {
	case token.TagOpen:
		w.element, w.attr, w.unclosedQuote = dialect.NoElement, dialect.AttrOther, false
		if el, ok := w.resolver.Embeddable(hostlex.TagName(w.text, tok)); ok {
			w.element = el
		}
	case token.TagEnd:
		w.element, w.attr = dialect.NoElement, dialect.AttrOther
	case token.AttrName:
		w.attr = w.resolver.AttributeKind(tok.Text(w.text), w.element != dialect.NoElement)
	case token.AttrValue:
		if w.element == dialect.NoElement || st.Region != embedlex.RegionTagAttributes {
			return
		}
		if w.attr != dialect.AttrLang && w.attr != dialect.AttrType {
			return
		}
		value := tok.Text(w.text)
		if _, ok := w.resolver.LookupAttribute(w.attr, value); ok {
			return
		}
		sev, name := Warning, "lang"
		if w.attr == dialect.AttrType {
			sev, name = Hint, "type"
		}
		w.report(tok, sev, CodeUnknownDialect, "unknown %s %q, <%s> content is passed through as text", name, value, w.element)
	}
}

// Formatter formats diagnostics into different output formats
type Formatter interface {
	// Format formats diagnostics into a specific output format
	Format(diagnostics *Diagnostics) ([]byte, error)
}

// VSCodeFormatter formats diagnostics into VSCode-compatible format
type VSCodeFormatter struct{}

// NewVSCodeFormatter creates a new VSCodeFormatter
func NewVSCodeFormatter() *VSCodeFormatter {
	return &VSCodeFormatter{}
}

type vscodePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type vscodeRange struct {
	Start vscodePosition `json:"start"`
	End   vscodePosition `json:"end"`
}

type vscodeDiagnostic struct {
	Severity int         `json:"severity"`
	Message  string      `json:"message"`
	Code     string      `json:"code,omitempty"`
	Source   string      `json:"source"`
	Range    vscodeRange `json:"range"`
}

var vscodeSeverity = map[DiagnosticSeverity]int{Error: 1, Warning: 2, Info: 3, Hint: 4}

// Format implements Formatter
func (f *VSCodeFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	result := make([]vscodeDiagnostic, 0, diagnostics.Len())
	for _, d := range diagnostics.All() {
		result = append(result, vscodeDiagnostic{
			Severity: vscodeSeverity[d.Severity],
			Message:  d.Message,
			Code:     d.Code,
			Source:   "tmplex",
			// VSCode is 0-based
			Range: vscodeRange{
				Start: vscodePosition{Line: d.Line - 1, Character: d.Column - 1},
				End:   vscodePosition{Line: d.EndLine - 1, Character: d.EndCol - 1},
			},
		})
	}
	return json.Marshal(result)
}

// TextFormatter formats one `file:line:col: severity: message` line per
// diagnostic.
type TextFormatter struct {
	Filename string
}

func (f *TextFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}
	var b strings.Builder
	for _, d := range diagnostics.All() {
		fmt.Fprintf(&b, "%s:%d:%d: %s: %s [%s]\n", f.Filename, d.Line, d.Column, d.Severity, d.Message, d.Code)
	}
	return []byte(b.String()), nil
}
