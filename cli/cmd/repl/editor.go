package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/Devenc042/MyZeDeDup/lang"
	"github.com/Devenc042/MyZeDeDup/log"
)

const defaultEditor = "vi"

// editScriptCommand implements [tea.ExecCommand] for the edit-compile-retry
// loop. It writes the session's script buffer to a temp file, opens the
// user's editor, and compiles the result. On a syntax error the user is
// asked whether to edit again; declining keeps the previous buffer.
type editScriptCommand struct {
	engine  *lang.Engine
	source  string
	ctxFunc func() context.Context
	logger  log.Logger

	script *lang.Script // nil when the user saved an empty file
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *editScriptCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editScriptCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editScriptCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. It returns [ErrEditDeclined] if the user
// gives up after a syntax error.
func (c *editScriptCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp("", "zedup-repl-*.zd")
	if err != nil {
		return err
	}

	path := f.Name()
	f.Close()

	defer os.Remove(path)

	content := c.source

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		content = string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		script, compileErr := c.engine.Compile(ctx, content)

		c.logger.TraceContext(ctx, "editor compile attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", compileErr == nil),
		)

		if compileErr == nil {
			c.script = script

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", compileErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor opens $EDITOR, or vi, on path and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	args := append(strings.Fields(editor), path)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
