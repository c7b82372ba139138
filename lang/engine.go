package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/readahead"

	"github.com/Devenc042/MyZeDeDup/log"
)

// Engine compiles scripts and expressions. Its configuration is fixed at
// construction, and an Engine is safe for concurrent use.
type Engine struct {
	opts   options
	logger log.Logger
}

// options holds the configuration that influences compilation and
// execution.
type options struct {
	format      Format
	strictArity bool
	maxSteps    int64
	maxDepth    int
	cache       bool
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFormat sets the stringification policy used by interpolation, sink
// writes, and the string builtin.
func WithFormat(f Format) Option {
	return func(e *Engine) {
		e.opts.format = f
	}
}

// WithStrictArity makes [Script.Execute] fail with [ArityMismatch] when the
// number of positional arguments differs from the number of formal
// parameters. By default missing arguments bind [Undefined] and extra
// arguments are ignored.
func WithStrictArity(strict bool) Option {
	return func(e *Engine) {
		e.opts.strictArity = strict
	}
}

// WithMaxSteps bounds the number of evaluation steps a single execution may
// take. Zero or negative means unlimited.
func WithMaxSteps(steps int64) Option {
	return func(e *Engine) {
		e.opts.maxSteps = steps
	}
}

// WithMaxDepth sets the maximum expression nesting depth accepted by the
// parser.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.opts.maxDepth = depth
	}
}

// WithCache enables or disables the process-wide compile cache. It is
// enabled by default.
func WithCache(enabled bool) Option {
	return func(e *Engine) {
		e.opts.cache = enabled
	}
}

// New returns an Engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		opts: options{
			format:   DefaultFormat(),
			maxDepth: DefaultMaxDepth,
			cache:    true,
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.opts.maxDepth <= 0 {
		e.opts.maxDepth = DefaultMaxDepth
	}

	return e
}

// Format returns the engine's stringification policy.
func (e *Engine) Format() Format { return e.opts.format }

// Compile parses source into a reusable [Script] whose formal parameters
// are params, in order. It fails with a [*LexError] or [*ParseError] and
// never returns a partially usable Script.
func (e *Engine) Compile(
	ctx context.Context,
	source string,
	params ...string,
) (*Script, error) {
	if err := checkParams(params); err != nil {
		return nil, err
	}

	node, err := e.compile(ctx, kindScript, source)
	if err != nil {
		return nil, err
	}

	body, ok := node.(*Block)
	if !ok {
		return nil, &ParseError{Kind: Syntax, Message: "compiled node is not a script"}
	}

	e.logger.TraceContext(ctx, "compiled script",
		slog.Int("statements", len(body.Stmts)),
		slog.Any("params", params),
	)

	return &Script{
		params: append([]string(nil), params...),
		body:   body,
		source: source,
		opts:   e.opts,
		logger: e.logger,
	}, nil
}

// CompileReader reads all of r and compiles it. name describes the origin
// of r in errors. Read failures are reported as [*SourceUnavailableError].
func (e *Engine) CompileReader(
	ctx context.Context,
	r io.Reader,
	name string,
	params ...string,
) (*Script, error) {
	// Read-ahead lets the next chunk be fetched while the previous one is
	// appended.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, &SourceUnavailableError{Source: name, Err: err}
	}

	e.logger.TraceContext(ctx, "read source",
		slog.String("source", name),
		slog.Int("source_bytes", len(data)),
	)

	return e.Compile(ctx, string(data), params...)
}

// CompileFile reads the file at path and compiles it. A missing or
// unreadable file is reported as [*SourceUnavailableError].
func (e *Engine) CompileFile(
	ctx context.Context,
	path string,
	params ...string,
) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceUnavailableError{Source: path, Err: err}
	}
	defer f.Close()

	return e.CompileReader(ctx, f, path, params...)
}

// CreateExpression parses source as a single expression.
func (e *Engine) CreateExpression(
	ctx context.Context,
	source string,
) (*Expression, error) {
	node, err := e.compile(ctx, kindExpression, source)
	if err != nil {
		return nil, err
	}

	x, ok := node.(Expr)
	if !ok {
		return nil, &ParseError{Kind: Syntax, Message: "compiled node is not an expression"}
	}

	return &Expression{
		x:      x,
		source: source,
		opts:   e.opts,
		logger: e.logger,
	}, nil
}

// Evaluate compiles source as a single expression and evaluates it.
func (e *Engine) Evaluate(ctx context.Context, source string, vars *Context) (any, error) {
	x, err := e.CreateExpression(ctx, source)
	if err != nil {
		return nil, err
	}

	return x.Evaluate(ctx, vars)
}

// compile parses source, consulting the compile cache when enabled.
func (e *Engine) compile(ctx context.Context, kind compileKind, source string) (Node, error) {
	parse := func() (Node, error) {
		node, err := e.parse(kind, source)
		if err != nil {
			return nil, withSource(err, source)
		}

		return node, nil
	}

	if !e.opts.cache {
		e.logger.TraceContext(ctx, "cache bypass", slog.String("kind", kind.String()))

		return parse()
	}

	return cached(ctx, e.logger, cacheKey(kind, source, e.opts), parse)
}

func (e *Engine) parse(kind compileKind, source string) (Node, error) {
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}

	if kind == kindExpression {
		return parseExpression(toks, e.opts.maxDepth)
	}

	return parseProgram(toks, e.opts.maxDepth)
}

// withSource attaches source text to compile errors for snippet rendering.
// The returned error is a copy; cached errors are never mutated.
func withSource(err error, source string) error {
	var le *LexError
	if errors.As(err, &le) {
		c := *le
		c.Source = source

		return &c
	}

	var pe *ParseError
	if errors.As(err, &pe) {
		c := *pe
		c.Source = source

		return &c
	}

	return err
}

// checkParams rejects formal parameter names that are not identifiers.
func checkParams(params []string) error {
	seen := make(map[string]bool, len(params))

	for _, p := range params {
		if !isIdentifier(p) {
			return &ParseError{Kind: Syntax, Message: "invalid parameter name " + quote(p)}
		}

		if seen[p] {
			return &ParseError{Kind: Syntax, Message: "duplicate parameter name " + quote(p)}
		}

		seen[p] = true
	}

	return nil
}

// isIdentifier reports whether s is a valid, non-reserved identifier.
func isIdentifier(s string) bool {
	if s == "" || keywords[s] {
		return false
	}

	for i, r := range s {
		if i == 0 && !isIdentifierStart(r) || !isIdentifierContinue(r) {
			return false
		}
	}

	return true
}
