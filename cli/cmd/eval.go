package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Devenc042/MyZeDeDup/lang"
)

// Eval runs a script with bindings and positional arguments taken from the
// command line. The context variable out is bound to standard output.
type Eval struct {
	Source string   `default:"-" help:"Script file or '-' for stdin."                          short:"f"`
	Params []string `            help:"Declare a formal parameter; repeat in order."           short:"p" name:"param" sep:"none"`
	Set    []string `            help:"Bind NAME=VALUE in the context; repeatable."            short:"s" sep:"none"`
	Args   []string `arg:""      help:"Arguments bound to the declared parameters in order."   optional:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) error {
	script, err := compile(ctx, e.Source, e.Params)
	if err != nil {
		return err
	}

	stdio := stdioFrom(ctx)

	vars, err := bindings(e.Set)
	if err != nil {
		return err
	}

	vars.Set("out", sink(stdio.Out))

	args := make([]any, len(e.Args))
	for i, a := range e.Args {
		args[i] = ParseValue(a)
	}

	result, err := script.Execute(ctx, vars, args...)
	if err != nil {
		return err
	}

	loggerFrom(ctx).DebugContext(ctx, "evaluated script",
		slog.String("source", e.Source),
		slog.Int("args", len(args)),
	)

	return printResult(stdio.Out, engineFrom(ctx).Format(), result)
}

// bindings builds a context from NAME=VALUE pairs.
func bindings(pairs []string) (*lang.Context, error) {
	vars := lang.NewContext()

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)

		if !ok || name == "" {
			return nil, ErrInvalidBinding.With(slog.String("binding", pair))
		}

		vars.Set(name, ParseValue(value))
	}

	return vars, nil
}

// ParseValue converts a command-line word to the most specific script value
// it spells: an integer, a float, true or false, a date in
// [lang.DateLayout], or otherwise the string itself.
func ParseValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}

	if isDecimal(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	switch s {
	case "true":
		return true
	case "false":
		return false
	}

	if t, err := lang.ParseDate(s, ""); err == nil {
		return t
	}

	return s
}

// isDecimal reports whether s is spelled with only decimal digits, a point,
// signs and an exponent. NaN, Inf, hex and underscore forms are not.
func isDecimal(s string) bool {
	if s == "" || !strings.ContainsAny(s[:1], "+-.0123456789") {
		return false
	}

	return strings.Trim(s, "+-.eE0123456789") == ""
}

func printResult(w io.Writer, format lang.Format, result any) error {
	if result == nil || lang.IsUndefined(result) {
		return nil
	}

	_, err := fmt.Fprintln(w, format.String(result))

	return err
}
