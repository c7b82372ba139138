package lang

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"time"
)

// evaluator walks a parsed script against one [Context].
type evaluator struct {
	ctx      context.Context
	vars     *Context
	format   Format
	maxSteps int64
	steps    int64
}

// step charges one unit of work against the step budget.
func (e *evaluator) step(pos Position) error {
	e.steps++

	if e.maxSteps > 0 && e.steps > e.maxSteps {
		return newExecError(StepLimitExceeded, "step", pos,
			"execution exceeded the step limit")
	}

	return nil
}

// block runs each statement in order and returns the value of the last one
// evaluated, or the value of the first return statement reached.
func (e *evaluator) block(b *Block) (any, error) {
	var result any

	for _, s := range b.Stmts {
		if err := e.ctx.Err(); err != nil {
			return nil, &ExecutionError{
				Kind:    Canceled,
				Op:      "execute",
				Pos:     s.Pos(),
				Message: "execution canceled",
				Err:     err,
			}
		}

		v, done, err := e.stmt(s)
		if err != nil {
			return nil, err
		}

		result = v

		if done {
			break
		}
	}

	return result, nil
}

// stmt evaluates one statement. done is true for a return statement.
func (e *evaluator) stmt(s Stmt) (v any, done bool, err error) {
	if err := e.step(s.Pos()); err != nil {
		return nil, false, err
	}

	switch n := s.(type) {
	case *ExprStmt:
		v, err = e.expr(n.X)

		return v, false, err

	case *VarDecl:
		v = Undefined

		if n.Value != nil {
			if v, err = e.expr(n.Value); err != nil {
				return nil, false, err
			}
		}

		e.vars.Set(n.Name, v)

		return v, false, nil

	case *Return:
		if n.Value != nil {
			if v, err = e.expr(n.Value); err != nil {
				return nil, false, err
			}
		}

		return v, true, nil

	default:
		return nil, false, newExecError(TypeMismatch, "execute", s.Pos(),
			"unsupported statement")
	}
}

func (e *evaluator) expr(x Expr) (any, error) {
	if err := e.step(x.Pos()); err != nil {
		return nil, err
	}

	switch n := x.(type) {
	case *Literal:
		return n.Value, nil

	case *Ident:
		if v, ok := e.vars.Lookup(n.Name); ok {
			return v, nil
		}

		return nil, newExecError(UndefinedVariable, "get", n.At,
			"undefined variable "+n.Name)

	case *Unary:
		v, err := e.expr(n.X)
		if err != nil {
			return nil, err
		}

		return unary(n.Op, v, n.At)

	case *Binary:
		l, err := e.expr(n.X)
		if err != nil {
			return nil, err
		}

		r, err := e.expr(n.Y)
		if err != nil {
			return nil, err
		}

		return binary(n.Op, l, r, n.At)

	case *Logical:
		return e.logical(n)

	case *Conditional:
		c, err := e.expr(n.Cond)
		if err != nil {
			return nil, err
		}

		b, ok := c.(bool)
		if !ok {
			return nil, newExecError(TypeMismatch, "?:", n.At,
				"condition must be bool, found "+TypeName(c))
		}

		if b {
			return e.expr(n.Then)
		}

		return e.expr(n.Else)

	case *Member:
		obj, err := e.expr(n.X)
		if err != nil {
			return nil, err
		}

		return getProperty(obj, n.Name, n.At)

	case *Index:
		obj, key, err := e.indexOperands(n)
		if err != nil {
			return nil, err
		}

		return getIndex(obj, key, n.At)

	case *Assign:
		return e.assign(n)

	case *Template:
		var sb strings.Builder

		for _, part := range n.Parts {
			if part.X == nil {
				sb.WriteString(part.Text)

				continue
			}

			v, err := e.expr(part.X)
			if err != nil {
				return nil, err
			}

			sb.WriteString(e.format.String(v))
		}

		return sb.String(), nil

	case *Call:
		return e.call(n)

	default:
		return nil, newExecError(TypeMismatch, "eval", x.Pos(),
			"unsupported expression")
	}
}

func (e *evaluator) logical(n *Logical) (any, error) {
	l, err := e.expr(n.X)
	if err != nil {
		return nil, err
	}

	lb, ok := l.(bool)
	if !ok {
		return nil, newExecError(TypeMismatch, n.Op, n.At,
			"left operand must be bool, found "+TypeName(l))
	}

	if (n.Op == "&&" && !lb) || (n.Op == "||" && lb) {
		return lb, nil
	}

	r, err := e.expr(n.Y)
	if err != nil {
		return nil, err
	}

	rb, ok := r.(bool)
	if !ok {
		return nil, newExecError(TypeMismatch, n.Op, n.At,
			"right operand must be bool, found "+TypeName(r))
	}

	return rb, nil
}

func (e *evaluator) indexOperands(n *Index) (obj, key any, err error) {
	if obj, err = e.expr(n.X); err != nil {
		return nil, nil, err
	}

	if key, err = e.expr(n.Key); err != nil {
		return nil, nil, err
	}

	return obj, key, nil
}

// assign writes through a member or index target. Compound assignment reads
// the current value first and applies the arithmetic operator.
func (e *evaluator) assign(n *Assign) (any, error) {
	var (
		obj  any
		name string
		err  error
	)

	switch t := n.Target.(type) {
	case *Member:
		if obj, err = e.expr(t.X); err != nil {
			return nil, err
		}

		name = t.Name

	case *Index:
		var key any

		if obj, key, err = e.indexOperands(t); err != nil {
			return nil, err
		}

		s, ok := key.(string)
		if !ok {
			return nil, newExecError(TypeMismatch, "set", t.At,
				"property key must be string, found "+TypeName(key))
		}

		name = s

	default:
		return nil, newExecError(PropertyNotWritable, "set", n.At,
			"cannot assign to "+n.Target.String())
	}

	value, err := e.expr(n.Value)
	if err != nil {
		return nil, err
	}

	if n.Op != "=" {
		cur, err := getProperty(obj, name, n.At)
		if err != nil {
			return nil, err
		}

		if value, err = binary(strings.TrimSuffix(n.Op, "="), cur, value, n.At); err != nil {
			return nil, err
		}
	}

	if err := setProperty(obj, name, value, n.At); err != nil {
		return nil, err
	}

	return value, nil
}

// getProperty reads name from a host object.
func getProperty(obj any, name string, pos Position) (any, error) {
	switch h := obj.(type) {
	case map[string]any:
		v, ok := h[name]
		if !ok {
			return nil, newExecError(NoSuchProperty, "get", pos,
				"no property "+name)
		}

		return normalize(v), nil

	case Getter:
		v, err := h.GetProperty(name)
		if err != nil {
			return nil, hostError(err, "get", pos, name)
		}

		return normalize(v), nil

	case string:
		if name == "length" {
			return int64(len([]rune(h))), nil
		}

		return nil, newExecError(NoSuchProperty, "get", pos,
			"no property "+name+" on string")

	case Setter, io.StringWriter:
		return nil, newExecError(NoSuchProperty, "get", pos,
			"no readable property "+name)

	default:
		return nil, newExecError(TypeMismatch, "get", pos,
			"cannot read property "+name+" of "+TypeName(obj))
	}
}

// setProperty writes name on a host object.
func setProperty(obj any, name string, value any, pos Position) error {
	switch h := obj.(type) {
	case map[string]any:
		if h == nil {
			return newExecError(PropertyNotWritable, "set", pos,
				"cannot set property "+name+" of nil map")
		}

		h[name] = value

		return nil

	case Setter:
		if err := h.SetProperty(name, value); err != nil {
			return hostError(err, "set", pos, name)
		}

		return nil

	case Getter, io.StringWriter:
		return newExecError(PropertyNotWritable, "set", pos,
			"property "+name+" is not writable")

	default:
		return newExecError(TypeMismatch, "set", pos,
			"cannot set property "+name+" of "+TypeName(obj))
	}
}

// getIndex reads obj[key]: a property by name or a character by position.
func getIndex(obj, key any, pos Position) (any, error) {
	switch k := key.(type) {
	case string:
		return getProperty(obj, k, pos)

	case int64:
		s, ok := obj.(string)
		if !ok {
			break
		}

		r := []rune(s)
		if k < 0 || k >= int64(len(r)) {
			return nil, newExecError(TypeMismatch, "[]", pos,
				"string index out of range")
		}

		return string(r[k]), nil
	}

	return nil, newExecError(TypeMismatch, "[]", pos,
		"cannot index "+TypeName(obj)+" with "+TypeName(key))
}

// hostError classifies an error returned by a host object.
func hostError(err error, op string, pos Position, name string) error {
	var xe *ExecutionError
	if errors.As(err, &xe) {
		return atPosition(xe, pos)
	}

	e := &ExecutionError{Kind: HostFailure, Op: op, Pos: pos, Err: err}

	switch {
	case errors.Is(err, ErrNoSuchProperty):
		e.Kind, e.Message = NoSuchProperty, "no property "+name
	case errors.Is(err, ErrNotWritable):
		e.Kind, e.Message = PropertyNotWritable, "property "+name+" is not writable"
	default:
		e.Message = "host failed on " + name
	}

	return e
}

func unary(op string, v any, pos Position) (any, error) {
	switch op {
	case "-":
		switch x := v.(type) {
		case int64:
			return -x, nil
		case float64:
			return -x, nil
		}

	case "+":
		switch v.(type) {
		case int64, float64:
			return v, nil
		}

	case "!":
		if b, ok := v.(bool); ok {
			return !b, nil
		}
	}

	return nil, newExecError(TypeMismatch, op, pos,
		"invalid operand "+TypeName(v))
}

// binary applies an arithmetic, comparison, or equality operator.
func binary(op string, l, r any, pos Position) (any, error) {
	switch op {
	case "==":
		return equal(l, r), nil

	case "!=":
		return !equal(l, r), nil

	case "+":
		if ls, ok := l.(string); ok {
			if rs, ok := r.(string); ok {
				return ls + rs, nil
			}
		}

		return arithmetic(op, l, r, pos)

	case "-", "*", "/", "%":
		return arithmetic(op, l, r, pos)

	case "<", "<=", ">", ">=":
		c, err := compare(op, l, r, pos)
		if err != nil {
			return nil, err
		}

		switch op {
		case "<":
			return c < 0, nil
		case "<=":
			return c <= 0, nil
		case ">":
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	}

	return nil, newExecError(TypeMismatch, op, pos, "unsupported operator")
}

func mismatch(op string, l, r any, pos Position) error {
	return newExecError(TypeMismatch, op, pos,
		"invalid operands "+TypeName(l)+" and "+TypeName(r))
}

// arithmetic applies op to two numbers. Two integers produce an integer;
// any float operand widens both to float64.
func arithmetic(op string, l, r any, pos Position) (any, error) {
	li, lint := l.(int64)
	ri, rint := r.(int64)

	if lint && rint {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		}

		if ri == 0 {
			return nil, newExecError(DivisionByZero, op, pos, "integer division by zero")
		}

		if op == "/" {
			return li / ri, nil
		}

		return li % ri, nil
	}

	lf, lok := toFloat(l)
	rf, rok := toFloat(r)

	if !lok || !rok {
		return nil, mismatch(op, l, r, pos)
	}

	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		return lf / rf, nil
	default:
		return math.Mod(lf, rf), nil
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// compare orders two numbers, two strings, or two dates.
func compare(op string, l, r any, pos Position) (int, error) {
	switch lv := l.(type) {
	case string:
		if rv, ok := r.(string); ok {
			return strings.Compare(lv, rv), nil
		}

	case time.Time:
		if rv, ok := r.(time.Time); ok {
			return lv.Compare(rv), nil
		}

	case int64:
		if rv, ok := r.(int64); ok {
			switch {
			case lv < rv:
				return -1, nil
			case lv > rv:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}

	lf, lok := toFloat(l)
	rf, rok := toFloat(r)

	if !lok || !rok {
		return 0, mismatch(op, l, r, pos)
	}

	switch {
	case lf < rf:
		return -1, nil
	case lf > rf:
		return 1, nil
	case lf == rf:
		return 0, nil
	default:
		return 0, newExecError(TypeMismatch, op, pos, "cannot order NaN")
	}
}

// equal reports whether two values are equal. Numbers compare across int
// and float, dates by instant, and nil equals Undefined. Values of
// different kinds are unequal.
func equal(l, r any) bool {
	absent := func(v any) bool { return v == nil || IsUndefined(v) }

	if absent(l) || absent(r) {
		return absent(l) && absent(r)
	}

	if li, ok := l.(int64); ok {
		if ri, ok := r.(int64); ok {
			return li == ri
		}
	}

	if lf, ok := toFloat(l); ok {
		rf, ok := toFloat(r)

		return ok && lf == rf
	}

	if lt, ok := l.(time.Time); ok {
		rt, ok := r.(time.Time)

		return ok && lt.Equal(rt)
	}

	if !isComparable(l) || !isComparable(r) {
		return false
	}

	return l == r
}
