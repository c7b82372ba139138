package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"golang.org/x/sync/errgroup"

	"github.com/Devenc042/MyZeDeDup/lang"
	"github.com/Devenc042/MyZeDeDup/record"
)

// Merge runs a merge script over each master and candidate record pair read
// from YAML, and prints the surviving records as YAML.
//
// The script sees the pair as masterPatient and newRecord. If it evaluates
// to a patient, that patient survives; otherwise the (possibly modified)
// master does. Pairs rejected by --where pass their master through
// unchanged. Script output written to out goes to standard error so
// standard output stays valid YAML.
type Merge struct {
	Script  string `help:"Merge script."                                                   required:"" short:"f" type:"path"`
	Records string `help:"YAML file of record pairs or '-' for stdin."                      default:"-" short:"r"`
	Where   string `help:"Only merge pairs for which this expression over master and candidate is true." short:"w" placeholder:"EXPR"`
	Jobs    int    `help:"Number of pairs merged concurrently."                            default:"1" short:"j"`
}

// Run executes the merge command.
func (m *Merge) Run(ctx context.Context) error {
	logger := loggerFrom(ctx)
	stdio := stdioFrom(ctx)

	script, err := compile(ctx, m.Script, nil)
	if err != nil {
		return err
	}

	pairs, err := m.load(ctx)
	if err != nil {
		return err
	}

	where, err := m.predicate()
	if err != nil {
		return err
	}

	out := &lockedSink{w: sink(stdio.Err)}
	merged := make([]*record.Patient, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.Jobs, 1))

	for i, pair := range pairs {
		ok, err := selects(where, pair)
		if err != nil {
			_ = g.Wait()

			return ErrPredicate.With(slog.Int("pair", i)).Wrap(err)
		}

		if !ok {
			merged[i] = pair.Master

			logger.DebugContext(ctx, "skipped record pair",
				slog.Int("pair", i),
				slog.String("master", pair.Master.FullName()),
			)

			continue
		}

		g.Go(func() error {
			vars := lang.NewContext().
				Set("masterPatient", pair.Master).
				Set("newRecord", pair.Candidate).
				Set("out", out)

			result, err := script.Execute(gctx, vars)
			if err != nil {
				return ErrMerge.With(slog.Int("pair", i)).Wrap(err)
			}

			survivor, ok := result.(*record.Patient)
			if !ok {
				survivor = pair.Master
			}

			merged[i] = survivor

			logger.DebugContext(gctx, "merged record pair",
				slog.Int("pair", i),
				slog.String("survivor", survivor.FullName()),
			)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return record.Encode(ctx, stdio.Out, merged...)
}

func (m *Merge) load(ctx context.Context) ([]record.Pair, error) {
	if m.Records == stdinSource || m.Records == "" {
		return record.Decode(ctx, stdioFrom(ctx).In)
	}

	return record.Load(ctx, m.Records)
}

// predicate compiles the --where expression, or returns nil if there is
// none.
func (m *Merge) predicate() (*vm.Program, error) {
	if m.Where == "" {
		return nil, nil
	}

	program, err := expr.Compile(m.Where,
		expr.Env(predicateEnv(&record.Patient{}, &record.Patient{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, ErrPredicate.With(slog.String("where", m.Where)).Wrap(err)
	}

	return program, nil
}

func selects(where *vm.Program, pair record.Pair) (bool, error) {
	if where == nil {
		return true, nil
	}

	out, err := expr.Run(where, predicateEnv(pair.Master, pair.Candidate))
	if err != nil {
		return false, err
	}

	ok, isBool := out.(bool)
	if !isBool {
		return false, ErrNotBool.With(slog.String("type", fmt.Sprintf("%T", out)))
	}

	return ok, nil
}

func predicateEnv(master, candidate *record.Patient) map[string]any {
	return map[string]any{
		"master":    master.Map(),
		"candidate": candidate.Map(),
	}
}

// lockedSink serializes script output from concurrent merges.
type lockedSink struct {
	mu sync.Mutex
	w  io.StringWriter
}

func (s *lockedSink) WriteString(str string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.WriteString(str)
}
