package debug

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/tmplex/pkg/token"
)

func skipFrames(e *zerolog.Event) int {
	// zerolog keeps the caller skip count unexported
	field := reflect.ValueOf(e).Elem().FieldByName("skipFrame")
	if field.IsValid() {
		return int(field.Int())
	}
	return 0
}

type TimeHook struct {
	Format string
}

func (t TimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	format := t.Format
	if format == "" {
		// millisecond precision, no timezone
		format = "2006-01-02T15:04:05.0000Z"
	}
	e.Str("time", time.Now().Format(format))
}

type CallerHook struct {
	WithColor bool
}

func (c CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(skipFrames(e) + 3)
	if !ok {
		return
	}
	pkg, _ := SplitFuncName(runtime.FuncForPC(pc).Name())
	e.Str("caller", FormatCaller(pkg, file, line, c.WithColor))
}

// SplitFuncName splits a runtime function name into its package path and
// the (receiver qualified) function.
func SplitFuncName(name string) (pkg, function string) {
	lastSlash := strings.LastIndexByte(name, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}
	firstDot := strings.IndexByte(name[lastSlash:], '.') + lastSlash

	pkg, function = name[:firstDot], name[firstDot+1:]
	if before, after, ok := strings.Cut(pkg, ".("); ok {
		pkg, function = before, "("+after+"."+function
	}
	return pkg, function
}

func FormatCaller(pkg, path string, number int, colorize bool) string {
	p := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		p = path[i+1:]
	}
	if colorize {
		sep := color.New(color.Faint).Sprint(":")
		return pkg + sep + color.New(color.Bold).Sprint(p) + sep + color.New(color.FgHiRed, color.Bold).Sprintf("%d", number)
	}
	return fmt.Sprintf("%s:%s:%d", pkg, p, number)
}

var kindColors = map[token.Kind]*color.Color{
	token.TagOpen:                color.New(color.FgBlue, color.Bold),
	token.TagClose:               color.New(color.FgBlue, color.Bold),
	token.TagEnd:                 color.New(color.FgBlue),
	token.AttrName:               color.New(color.FgCyan),
	token.AttrValue:              color.New(color.FgGreen),
	token.AttrQuote:              color.New(color.FgGreen, color.Faint),
	token.Comment:                color.New(color.Faint),
	token.EntityRef:              color.New(color.FgMagenta),
	token.BlockName:              color.New(color.FgMagenta, color.Bold),
	token.EmbeddedContent:        color.New(color.FgYellow),
	token.InterpolationDelimiter: color.New(color.FgHiRed, color.Bold),
}

// Colorize renders src with each token colored by its kind. Flagged tokens
// are underlined.
func Colorize(src string, toks []token.Token) string {
	var b strings.Builder
	for _, t := range toks {
		text := src[t.Start:t.End]
		c, ok := kindColors[t.Kind]
		if !ok {
			c = color.New(color.Reset)
		}
		if t.Flags != 0 {
			c = color.New(color.Underline).Add(color.FgRed)
		}
		b.WriteString(c.Sprint(text))
	}
	return b.String()
}
