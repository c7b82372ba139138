package cmd

import (
	"context"
	"fmt"
	"strings"
)

// Check compiles a script without running it. Syntax errors are reported
// with their line, column, and a source excerpt.
type Check struct {
	Source string   `default:"-" help:"Script file or '-' for stdin."                short:"f"`
	Params []string `            help:"Declare a formal parameter; repeat in order." short:"p" name:"param" sep:"none"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) error {
	script, err := compile(ctx, c.Source, c.Params)
	if err != nil {
		return err
	}

	params := ""
	if p := script.Params(); len(p) > 0 {
		params = " (" + strings.Join(p, ", ") + ")"
	}

	_, err = fmt.Fprintf(stdioFrom(ctx).Out, "%s: ok, %d statements%s\n",
		c.Source, len(script.Body().Stmts), params)

	return err
}

// Fmt prints a script in canonical form: one statement per line and only
// the parentheses that precedence requires.
type Fmt struct {
	Source string `default:"-" help:"Script file or '-' for stdin." short:"f"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) error {
	script, err := compile(ctx, f.Source, nil)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdioFrom(ctx).Out, script.String())

	return err
}
