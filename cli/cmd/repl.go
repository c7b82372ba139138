package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/term"

	"github.com/Devenc042/MyZeDeDup/cli/cmd/repl"
	"github.com/Devenc042/MyZeDeDup/record"
)

// Repl starts an interactive session. Declarations made at the prompt stay
// bound for the rest of the session.
type Repl struct {
	Set     []string `help:"Bind NAME=VALUE in the context; repeatable." short:"s" sep:"none"`
	Records string   `help:"Bind masterPatient and newRecord from the first pair in this YAML file." placeholder:"FILE" short:"r" type:"existingfile"`
	Demo    bool     `help:"Bind masterPatient and newRecord to a demo record pair."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	stdio := stdioFrom(ctx)
	logger := loggerFrom(ctx)

	if f, ok := stdio.In.(*os.File); !ok || !term.IsTerminal(f.Fd()) {
		return ErrNoTerminal
	}

	vars, err := bindings(r.Set)
	if err != nil {
		return err
	}

	pair, ok, err := r.pair(ctx)
	if err != nil {
		return err
	}

	if ok {
		vars.Set("masterPatient", pair.Master).Set("newRecord", pair.Candidate)
	}

	var cacheDir string

	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o700); err != nil {
			logger.WarnContext(ctx, "history disabled",
				slog.String("cache_dir", cacheDir),
				slog.Any("error", err),
			)

			cacheDir = ""
		}
	}

	return repl.Run(ctx, repl.Config{
		Engine:   engineFrom(ctx),
		Vars:     vars,
		CacheDir: cacheDir,
		Logger:   logger,
		Input:    stdio.In,
		Output:   stdio.Out,
	})
}

func (r *Repl) pair(ctx context.Context) (record.Pair, bool, error) {
	switch {
	case r.Records != "":
		pairs, err := record.Load(ctx, r.Records)
		if err != nil || len(pairs) == 0 {
			return record.Pair{}, false, err
		}

		return pairs[0], true, nil

	case r.Demo:
		return record.Demo(), true, nil
	}

	return record.Pair{}, false, nil
}
