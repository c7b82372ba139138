package lang

import (
	"errors"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// builtin is a function resolved by name when no context binding shadows
// it. The evaluator supplies the formatting policy.
type builtin struct {
	arity int // -1 for 1 or 2 arguments
	fn    func(e *evaluator, at Position, args []any) (any, error)
}

// builtins lists the functions available to every script.
var builtins = map[string]builtin{
	"size":   {1, builtinSize},
	"empty":  {1, builtinEmpty},
	"string": {1, builtinString},
	"int":    {1, builtinInt},
	"float":  {1, builtinFloat},
	"date":   {-1, builtinDate},
}

// Builtins returns the sorted names of the builtin functions.
func Builtins() []string { return slices.Sorted(maps.Keys(builtins)) }

// call evaluates a call expression. The callee is resolved as a method when
// it is a member access, as a bound function or builtin when it is a bare
// identifier, and as a function value otherwise.
func (e *evaluator) call(n *Call) (any, error) {
	switch fun := n.Fun.(type) {
	case *Member:
		recv, err := e.expr(fun.X)
		if err != nil {
			return nil, err
		}

		args, err := e.args(n.Args)
		if err != nil {
			return nil, err
		}

		return e.method(recv, fun.Name, args, n.At)

	case *Ident:
		if _, bound := e.vars.Lookup(fun.Name); !bound {
			b, ok := builtins[fun.Name]
			if !ok {
				return nil, newExecError(UndefinedVariable, "call", fun.At,
					"undefined function "+fun.Name)
			}

			args, err := e.args(n.Args)
			if err != nil {
				return nil, err
			}

			if err := checkArity(fun.Name, b.arity, len(args), n.At); err != nil {
				return nil, err
			}

			return b.fn(e, n.At, args)
		}
	}

	callee, err := e.expr(n.Fun)
	if err != nil {
		return nil, err
	}

	args, err := e.args(n.Args)
	if err != nil {
		return nil, err
	}

	return e.invoke(callee, n.Fun.String(), args, n.At)
}

func (e *evaluator) args(xs []Expr) ([]any, error) {
	args := make([]any, len(xs))

	for i, x := range xs {
		v, err := e.expr(x)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return args, nil
}

// invoke calls a function value.
func (e *evaluator) invoke(callee any, name string, args []any, at Position) (any, error) {
	fn, ok := normalize(callee).(Func)
	if !ok {
		return nil, newExecError(NotCallable, "call", at,
			name+" is not callable ("+TypeName(callee)+")")
	}

	v, err := fn(e.ctx, args...)
	if err != nil {
		return nil, callError(err, name, at)
	}

	return normalize(v), nil
}

// method calls name on recv: sink output, string methods, host methods, or
// a function-valued property.
func (e *evaluator) method(recv any, name string, args []any, at Position) (any, error) {
	if w, ok := recv.(io.StringWriter); ok {
		switch name {
		case "print", "println", "write":
			return nil, e.write(w, name, args, at)
		}
	}

	if s, ok := recv.(string); ok {
		return stringMethod(s, name, args, at)
	}

	if inv, ok := recv.(Invoker); ok {
		v, err := inv.Invoke(e.ctx, name, args)
		if err == nil {
			return normalize(v), nil
		}

		if !errors.Is(err, ErrNoSuchProperty) {
			return nil, callError(err, name, at)
		}
	}

	switch recv.(type) {
	case map[string]any, Getter:
		prop, err := getProperty(recv, name, at)
		if err != nil {
			var xe *ExecutionError
			if errors.As(err, &xe) && xe.Kind == NoSuchProperty {
				return nil, newExecError(NotCallable, "call", at,
					"no method "+name+" on "+TypeName(recv))
			}

			return nil, err
		}

		return e.invoke(prop, name, args, at)
	}

	return nil, newExecError(NotCallable, "call", at,
		"no method "+name+" on "+TypeName(recv))
}

// write emits formatted arguments to a sink.
func (e *evaluator) write(w io.StringWriter, name string, args []any, at Position) error {
	if name == "write" {
		if err := checkArity(name, 1, len(args), at); err != nil {
			return err
		}
	}

	var sb strings.Builder

	for i, a := range args {
		if i > 0 && name != "write" {
			sb.WriteByte(' ')
		}

		sb.WriteString(e.format.String(a))
	}

	if name == "println" {
		sb.WriteByte('\n')
	}

	if _, err := w.WriteString(sb.String()); err != nil {
		return &ExecutionError{
			Kind:    HostFailure,
			Op:      name,
			Pos:     at,
			Message: "sink write failed",
			Err:     err,
		}
	}

	return nil
}

// callError classifies an error returned by a host function or method.
func callError(err error, name string, at Position) error {
	var xe *ExecutionError
	if errors.As(err, &xe) {
		return atPosition(xe, at)
	}

	return &ExecutionError{
		Kind:    HostFailure,
		Op:      "call",
		Pos:     at,
		Message: name + " failed",
		Err:     err,
	}
}

func checkArity(name string, want, got int, at Position) error {
	switch {
	case want < 0 && (got == 1 || got == 2):
		return nil
	case want == got:
		return nil
	}

	expect := strconv.Itoa(want)
	if want < 0 {
		expect = "1 or 2"
	}

	return newExecError(ArityMismatch, "call", at,
		name+" expects "+expect+" argument(s), got "+strconv.Itoa(got))
}

func stringMethod(s, name string, args []any, at Position) (any, error) {
	nullary := func(v any) (any, error) {
		if err := checkArity(name, 0, len(args), at); err != nil {
			return nil, err
		}

		return v, nil
	}

	unary := func(f func(string, string) bool) (any, error) {
		if err := checkArity(name, 1, len(args), at); err != nil {
			return nil, err
		}

		arg, ok := args[0].(string)
		if !ok {
			return nil, newExecError(TypeMismatch, name, at,
				"argument must be string, found "+TypeName(args[0]))
		}

		return f(s, arg), nil
	}

	switch name {
	case "length":
		return nullary(int64(utf8.RuneCountInString(s)))
	case "toUpperCase":
		return nullary(strings.ToUpper(s))
	case "toLowerCase":
		return nullary(strings.ToLower(s))
	case "trim":
		return nullary(strings.TrimSpace(s))
	case "contains":
		return unary(strings.Contains)
	case "startsWith":
		return unary(strings.HasPrefix)
	case "endsWith":
		return unary(strings.HasSuffix)
	}

	return nil, newExecError(NotCallable, "call", at, "no method "+name+" on string")
}

func builtinSize(_ *evaluator, at Position, args []any) (any, error) {
	switch v := args[0].(type) {
	case nil, undefined:
		return int64(0), nil
	case string:
		return int64(utf8.RuneCountInString(v)), nil
	case map[string]any:
		return int64(len(v)), nil
	}

	return nil, newExecError(TypeMismatch, "size", at,
		"size of "+TypeName(args[0])+" is undefined")
}

func builtinEmpty(_ *evaluator, _ Position, args []any) (any, error) {
	switch v := args[0].(type) {
	case nil, undefined:
		return true, nil
	case string:
		return v == "", nil
	case map[string]any:
		return len(v) == 0, nil
	}

	return false, nil
}

func builtinString(e *evaluator, _ Position, args []any) (any, error) {
	return e.format.String(args[0]), nil
}

func builtinInt(_ *evaluator, at Position, args []any) (any, error) {
	switch v := args[0].(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case bool:
		if v {
			return int64(1), nil
		}

		return int64(0), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, newExecError(TypeMismatch, "int", at,
				"cannot convert "+strconv.Quote(v)+" to int")
		}

		return n, nil
	}

	return nil, newExecError(TypeMismatch, "int", at,
		"cannot convert "+TypeName(args[0])+" to int")
}

func builtinFloat(_ *evaluator, at Position, args []any) (any, error) {
	switch v := args[0].(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, newExecError(TypeMismatch, "float", at,
				"cannot convert "+strconv.Quote(v)+" to float")
		}

		return f, nil
	}

	return nil, newExecError(TypeMismatch, "float", at,
		"cannot convert "+TypeName(args[0])+" to float")
}

// builtinDate parses date(text) with the day-month-year layout, or
// date(text, layout) with a Go reference layout.
func builtinDate(e *evaluator, at Position, args []any) (any, error) {
	if t, ok := args[0].(time.Time); ok && len(args) == 1 {
		return t, nil
	}

	text, ok := args[0].(string)
	if !ok {
		return nil, newExecError(TypeMismatch, "date", at,
			"date text must be string, found "+TypeName(args[0]))
	}

	layout := e.format.DateLayout

	if len(args) == 2 {
		if layout, ok = args[1].(string); !ok {
			return nil, newExecError(TypeMismatch, "date", at,
				"date layout must be string, found "+TypeName(args[1]))
		}
	}

	t, err := ParseDate(text, layout)
	if err != nil {
		return nil, &ExecutionError{
			Kind:    TypeMismatch,
			Op:      "date",
			Pos:     at,
			Message: "cannot parse date " + strconv.Quote(text),
			Err:     err,
		}
	}

	return t, nil
}

// atPosition returns xe positioned at pos unless it already has a position.
func atPosition(xe *ExecutionError, pos Position) *ExecutionError {
	if xe.Pos.IsValid() {
		return xe
	}

	c := *xe
	c.Pos = pos

	return &c
}
