package lang

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/Devenc042/MyZeDeDup/log"
)

// Script is a compiled, immutable unit of source text. A Script may be
// executed any number of times, concurrently, provided each execution
// receives its own [Context].
type Script struct {
	params []string
	body   *Block
	source string
	opts   options
	logger log.Logger
}

// Params returns a copy of the formal parameter names.
func (s *Script) Params() []string { return append([]string(nil), s.params...) }

// Body returns the parsed statements.
func (s *Script) Body() *Block { return s.body }

// Source returns the text the Script was compiled from.
func (s *Script) Source() string { return s.source }

// String formats the script as canonical source.
func (s *Script) String() string { return s.body.String() }

// Execute binds args to the formal parameters in vars and runs the script,
// returning the value of the last statement evaluated.
//
// A nil vars is replaced by an empty [Context]. Side effects on vars and on
// host objects made before a failure are not rolled back. The context ctx
// is checked before each statement; once it is done, Execute fails with
// [Canceled].
func (s *Script) Execute(ctx context.Context, vars *Context, args ...any) (any, error) {
	if vars == nil {
		vars = NewContext()
	}

	if s.opts.strictArity && len(args) != len(s.params) {
		return nil, newExecError(ArityMismatch, "execute", Position{},
			"script expects "+strconv.Itoa(len(s.params))+
				" argument(s), got "+strconv.Itoa(len(args)))
	}

	for i, name := range s.params {
		if i < len(args) {
			vars.Set(name, args[i])
		} else {
			vars.Set(name, Undefined)
		}
	}

	ev := &evaluator{
		ctx:      ctx,
		vars:     vars,
		format:   s.opts.format,
		maxSteps: s.opts.maxSteps,
	}

	result, err := ev.block(s.body)

	s.logger.TraceContext(ctx, "executed script",
		slog.Int64("steps", ev.steps),
		slog.Bool("failed", err != nil),
	)

	return result, err
}

// Expression is a compiled single expression.
type Expression struct {
	x      Expr
	source string
	opts   options
	logger log.Logger
}

// Source returns the text the Expression was compiled from.
func (x *Expression) Source() string { return x.source }

// String formats the expression as canonical source.
func (x *Expression) String() string { return x.x.String() }

// Evaluate evaluates the expression against vars. A nil vars is replaced
// by an empty [Context].
func (x *Expression) Evaluate(ctx context.Context, vars *Context) (any, error) {
	if vars == nil {
		vars = NewContext()
	}

	if err := ctx.Err(); err != nil {
		return nil, &ExecutionError{
			Kind:    Canceled,
			Op:      "evaluate",
			Message: "evaluation canceled",
			Err:     err,
		}
	}

	ev := &evaluator{
		ctx:      ctx,
		vars:     vars,
		format:   x.opts.format,
		maxSteps: x.opts.maxSteps,
	}

	v, err := ev.expr(x.x)

	x.logger.TraceContext(ctx, "evaluated expression",
		slog.Int64("steps", ev.steps),
		slog.Bool("failed", err != nil),
	)

	return v, err
}
