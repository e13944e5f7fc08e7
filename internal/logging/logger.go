// Package logging provides structured logging for the CLI and the API client.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const timeFormat = "15:04:05"

// Logger wraps zerolog with the console formatting used everywhere in the CLI.
type Logger struct {
	zlog    zerolog.Logger
	output  io.Writer
	noColor bool
	fields  []field
}

type field struct{ key, value string }

// NewLogger creates a logger writing human-readable lines to w.
// Stdout is reserved for command output, so the CLI passes stderr.
// Colour is used only when w is a terminal.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{output: w, noColor: !isTerminal(w)}
	l.build()
	return l
}

// NewDefaultCLILogger creates the default CLI logger on stderr.
func NewDefaultCLILogger() *Logger {
	return NewLogger(os.Stderr)
}

// Nop returns a logger that discards everything. Used by tests and by
// components constructed without a logger.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), output: io.Discard, noColor: true}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return l
}

func (l *Logger) build() {
	ctx := zerolog.New(zerolog.ConsoleWriter{
		Out:        l.output,
		TimeFormat: timeFormat,
		NoColor:    l.noColor,
	}).With().Timestamp()
	for _, f := range l.fields {
		ctx = ctx.Str(f.key, f.value)
	}
	l.zlog = ctx.Logger()
}

// SetColor turns coloured output off (display.color = false). It never
// turns colour on for a writer that is not a terminal.
func (l *Logger) SetColor(enabled bool) {
	if l.output == io.Discard {
		return
	}
	noColor := !enabled || !isTerminal(l.output)
	if noColor == l.noColor {
		return
	}
	l.noColor = noColor
	l.build()
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// Child returns a logger carrying an extra string field, e.g. the resource name.
func (l *Logger) Child(key, value string) *Logger {
	return &Logger{
		zlog:    l.zlog.With().Str(key, value).Logger(),
		output:  l.output,
		noColor: l.noColor,
		fields:  append(append([]field(nil), l.fields...), field{key, value}),
	}
}

// SetVerbose switches between info (default) and debug output.
func SetVerbose(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
