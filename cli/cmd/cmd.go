package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/Devenc042/MyZeDeDup/lang"
	"github.com/Devenc042/MyZeDeDup/log"
)

type (
	kongKey   struct{}
	engineKey struct{}
	stdioKey  struct{}
	loggerKey struct{}
)

// WithContext returns a copy of ctx carrying the parsed kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongKey{}).(*kong.Context)

	return ktx
}

// WithEngine returns a copy of ctx carrying the engine used by commands.
func WithEngine(ctx context.Context, eng *lang.Engine) context.Context {
	return context.WithValue(ctx, engineKey{}, eng)
}

func engineFrom(ctx context.Context) *lang.Engine {
	if eng, ok := ctx.Value(engineKey{}).(*lang.Engine); ok && eng != nil {
		return eng
	}

	return lang.New()
}

// WithLogger returns a copy of ctx carrying the command logger.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFrom(ctx context.Context) log.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(log.Logger); ok {
		return logger
	}

	return log.Default()
}

// Stdio are the standard streams used by commands.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// WithStdio returns a copy of ctx whose commands use s instead of the
// process streams. Nil fields fall back to the process streams.
func WithStdio(ctx context.Context, s Stdio) context.Context {
	return context.WithValue(ctx, stdioKey{}, s)
}

func stdioFrom(ctx context.Context) Stdio {
	s, _ := ctx.Value(stdioKey{}).(Stdio)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// stdinSource names standard input wherever a file path is expected.
const stdinSource = "-"

// compile reads and compiles the script at path, or standard input.
func compile(ctx context.Context, path string, params []string) (*lang.Script, error) {
	eng := engineFrom(ctx)

	if path == stdinSource || path == "" {
		return eng.CompileReader(ctx, stdioFrom(ctx).In, "stdin", params...)
	}

	return eng.CompileFile(ctx, path, params...)
}

// sink adapts w to the writer interface scripts print to.
func sink(w io.Writer) io.StringWriter {
	if sw, ok := w.(io.StringWriter); ok {
		return sw
	}

	return stringWriter{w}
}

type stringWriter struct{ io.Writer }

func (w stringWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}
