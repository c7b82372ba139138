package lang

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHost is a host object with a fixed set of properties, some of which
// may be read-only.
type testHost struct {
	props    map[string]any
	readOnly map[string]bool
}

func newTestHost(props map[string]any, readOnly ...string) *testHost {
	h := &testHost{props: props, readOnly: map[string]bool{}}
	for _, name := range readOnly {
		h.readOnly[name] = true
	}

	return h
}

func (h *testHost) GetProperty(name string) (any, error) {
	v, ok := h.props[name]
	if !ok {
		return nil, ErrNoSuchProperty
	}

	return v, nil
}

func (h *testHost) SetProperty(name string, value any) error {
	if _, ok := h.props[name]; !ok {
		return ErrNoSuchProperty
	}

	if h.readOnly[name] {
		return ErrNotWritable.Wrap(errors.New(name))
	}

	h.props[name] = value

	return nil
}

// readOnlyHost exposes a getter and no setter.
type readOnlyHost struct{ v any }

func (h readOnlyHost) GetProperty(string) (any, error) { return h.v, nil }

func run(t *testing.T, src string, vars *Context, args ...any) (any, error) {
	t.Helper()

	script, err := New().Compile(t.Context(), src)
	require.NoError(t, err)

	return script.Execute(t.Context(), vars, args...)
}

func requireExecKind(t *testing.T, err error, kind ExecKind) *ExecutionError {
	t.Helper()

	require.Error(t, err)
	require.ErrorIs(t, err, ErrExecution)

	var xe *ExecutionError
	require.ErrorAs(t, err, &xe)
	require.Equal(t, kind, xe.Kind, "error: %v", err)

	return xe
}

func TestExecute_LiteralRoundTrip(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{`"Zemo"`, "Zemo"},
		{`'single'`, "single"},
		{`42`, int64(42)},
		{`0`, int64(0)},
		{`true`, true},
		{`false`, false},
		{`2.5`, 2.5},
		{`null`, nil},
		{``, nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := run(t, tt.src, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecute_MemberAssignThenRead(t *testing.T) {
	obj := newTestHost(map[string]any{"x": int64(0)})

	got, err := run(t, `obj.x = 5; obj.x`, NewContext().Set("obj", obj))
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
	assert.Equal(t, int64(5), obj.props["x"])
}

func TestExecute_PositionalArguments(t *testing.T) {
	script, err := New().Compile(t.Context(), `x * 100 + y`, "x", "y")
	require.NoError(t, err)

	vars := NewContext()

	got, err := script.Execute(t.Context(), vars, 33, 29)
	require.NoError(t, err)
	assert.Equal(t, int64(3329), got)

	x, err := vars.Get("x")
	require.NoError(t, err)
	assert.Equal(t, int64(33), x)
}

func TestExecute_Arity(t *testing.T) {
	t.Run("lenient binds Undefined", func(t *testing.T) {
		script, err := New().Compile(t.Context(), "`${x}-${y}`", "x", "y")
		require.NoError(t, err)

		vars := NewContext()

		got, err := script.Execute(t.Context(), vars, "a")
		require.NoError(t, err)
		assert.Equal(t, "a-", got)

		y, err := vars.Get("y")
		require.NoError(t, err)
		assert.True(t, IsUndefined(y))
	})

	t.Run("lenient ignores extra arguments", func(t *testing.T) {
		script, err := New().Compile(t.Context(), `x`, "x")
		require.NoError(t, err)

		got, err := script.Execute(t.Context(), nil, 1, 2, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("strict rejects missing arguments", func(t *testing.T) {
		script, err := New(WithStrictArity(true)).Compile(t.Context(), `x + y`, "x", "y")
		require.NoError(t, err)

		_, err = script.Execute(t.Context(), nil, 1)
		requireExecKind(t, err, ArityMismatch)
	})

	t.Run("strict rejects extra arguments", func(t *testing.T) {
		script, err := New(WithStrictArity(true)).Compile(t.Context(), `1`)
		require.NoError(t, err)

		_, err = script.Execute(t.Context(), nil, 1)
		requireExecKind(t, err, ArityMismatch)
	})

	t.Run("strict accepts exact count", func(t *testing.T) {
		script, err := New(WithStrictArity(true)).Compile(t.Context(), `x + y`, "x", "y")
		require.NoError(t, err)

		got, err := script.Execute(t.Context(), nil, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), got)
	})
}

func TestExecute_Interpolation(t *testing.T) {
	got, err := run(t, "`${user}`", NewContext().Set("user", "Zemo"))
	require.NoError(t, err)
	assert.Equal(t, "Zemo", got)

	vars := NewContext().
		Set("n", 3).
		Set("f", 1.5).
		Set("ok", true).
		Set("none", nil).
		Set("when", time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC))

	got, err = run(t, "`${n}|${f}|${ok}|${none}|${when}|${n + 1}|${'x'}`", vars)
	require.NoError(t, err)
	assert.Equal(t, "3|1.5|true||09-03-2024|4|x", got)
}

func TestExecute_UndefinedVariable(t *testing.T) {
	_, err := run(t, `missing`, nil)
	xe := requireExecKind(t, err, UndefinedVariable)
	assert.Equal(t, Position{Offset: 0, Line: 1, Column: 1}, xe.Pos)

	_, err = NewContext().Get("missing")
	requireExecKind(t, err, UndefinedVariable)
}

func TestExecute_HostErrors(t *testing.T) {
	host := newTestHost(map[string]any{"id": int64(1), "name": "a"}, "id")

	tests := []struct {
		name string
		src  string
		vars *Context
		kind ExecKind
	}{
		{"missing property read", `h.nope`, NewContext().Set("h", host), NoSuchProperty},
		{"missing property write", `h.nope = 1`, NewContext().Set("h", host), NoSuchProperty},
		{"read-only property", `h.id = 2`, NewContext().Set("h", host), PropertyNotWritable},
		{"host without setter", `h.x = 2`, NewContext().Set("h", readOnlyHost{1}), PropertyNotWritable},
		{"property of number", `n.x`, NewContext().Set("n", 1), TypeMismatch},
		{"property of null", `n.x`, NewContext().Set("n", nil), TypeMismatch},
		{"missing map key", `m.x`, NewContext().Set("m", map[string]any{}), NoSuchProperty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.src, tt.vars)
			requireExecKind(t, err, tt.kind)
		})
	}
}

func TestExecute_PartialMutationIsKept(t *testing.T) {
	host := newTestHost(map[string]any{"a": int64(0)})

	_, err := run(t, `h.a = 1; h.b = 2; h.a = 3`, NewContext().Set("h", host))
	requireExecKind(t, err, NoSuchProperty)
	assert.Equal(t, int64(1), host.props["a"])
}

func TestExecute_Operators(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{`7 / 2`, int64(3)},
		{`7 % 3`, int64(1)},
		{`7.0 / 2`, 3.5},
		{`1 + 2.5`, 3.5},
		{`-(2 * 3)`, int64(-6)},
		{`+4`, int64(4)},
		{`"a" + "b"`, "ab"},
		{`1 == 1.0`, true},
		{`"a" == 1`, false},
		{`null == null`, true},
		{`"a" < "b"`, true},
		{`2 >= 2.5`, false},
		{`!true || 1 < 2`, true},
		{`false && missing`, false},
		{`true or missing`, true},
		{`1 < 2 ? "yes" : "no"`, "yes"},
		{`"héllo".length`, int64(5)},
		{`"abc"[1]`, "b"},
		{`date("01-02-2020") < date("02-02-2020")`, true},
		{`date("01-02-2020") == date("2020-02-01", "2006-01-02")`, true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := run(t, tt.src, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecute_OperatorErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind ExecKind
	}{
		{`"a" + 1`, TypeMismatch},
		{`1 - "a"`, TypeMismatch},
		{`true + 1`, TypeMismatch},
		{`1 < "a"`, TypeMismatch},
		{`-"a"`, TypeMismatch},
		{`!1`, TypeMismatch},
		{`1 && true`, TypeMismatch},
		{`true && 1`, TypeMismatch},
		{`1 ? 2 : 3`, TypeMismatch},
		{`1 / 0`, DivisionByZero},
		{`1 % 0`, DivisionByZero},
		{`"abc"[5]`, TypeMismatch},
		{`date("2020-01-01")`, TypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := run(t, tt.src, nil)
			requireExecKind(t, err, tt.kind)
		})
	}
}

func TestExecute_Calls(t *testing.T) {
	double := Func(func(_ context.Context, args ...any) (any, error) {
		n, _ := args[0].(int64)

		return n * 2, nil
	})

	fail := Func(func(context.Context, ...any) (any, error) {
		return nil, errors.New("boom")
	})

	vars := NewContext().
		Set("double", double).
		Set("fail", fail).
		Set("size", double). // context bindings shadow builtins
		Set("s", "  Mixed Case  ").
		Set("m", map[string]any{"f": double, "v": 1})

	tests := []struct {
		src  string
		want any
	}{
		{`double(21)`, int64(42)},
		{`size(2)`, int64(4)},
		{`empty("")`, true},
		{`empty(null)`, true},
		{`string(12) + "!"`, "12!"},
		{`int("12") + float("0.5")`, 12.5},
		{`s.trim().toUpperCase()`, "MIXED CASE"},
		{`s.toLowerCase().contains("mixed")`, true},
		{`s.trim().startsWith("Mixed") && s.trim().endsWith("Case")`, true},
		{`s.length()`, int64(14)},
		{`m.f(4)`, int64(8)},
		{`m["v"] + 1`, int64(2)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := run(t, tt.src, vars.Clone())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	errTests := []struct {
		src  string
		kind ExecKind
	}{
		{`fail()`, HostFailure},
		{`nope()`, UndefinedVariable},
		{`s()`, NotCallable},
		{`m.v()`, NotCallable},
		{`m.nope()`, NotCallable},
		{`s.reverse()`, NotCallable},
		{`s.contains()`, ArityMismatch},
		{`s.contains(1)`, TypeMismatch},
		{`empty()`, ArityMismatch},
		{`date()`, ArityMismatch},
	}

	for _, tt := range errTests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := run(t, tt.src, vars.Clone())
			requireExecKind(t, err, tt.kind)
		})
	}
}

func TestExecute_Sink(t *testing.T) {
	var out strings.Builder

	vars := NewContext().Set("out", &out).Set("user", "Zemo")

	got, err := run(t, "out.println(`hi ${user}`, 2); out.print(1.5); out.write(true); 7", vars)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
	assert.Equal(t, "hi Zemo 2\n1.5true", out.String())

	_, err = run(t, `out.write(1, 2)`, vars)
	requireExecKind(t, err, ArityMismatch)
}

func TestExecute_VarAndReturn(t *testing.T) {
	vars := NewContext()

	got, err := run(t, `var a = 2; var b; return a * 3; a * 100`, vars)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)

	b, err := vars.Get("b")
	require.NoError(t, err)
	assert.True(t, IsUndefined(b))
}

func TestExecute_CompoundAssignment(t *testing.T) {
	host := newTestHost(map[string]any{"n": int64(10), "s": "a"})

	got, err := run(t, `h.n += 5; h.n *= 2; h.n -= 1; h["s"] += "b"; h.n`,
		NewContext().Set("h", host))
	require.NoError(t, err)
	assert.Equal(t, int64(29), got)
	assert.Equal(t, "ab", host.props["s"])
}

func TestExecute_StepLimit(t *testing.T) {
	script, err := New(WithMaxSteps(10)).Compile(t.Context(),
		`1 + 1; 1 + 1; 1 + 1; 1 + 1; 1 + 1`)
	require.NoError(t, err)

	_, err = script.Execute(t.Context(), nil)
	requireExecKind(t, err, StepLimitExceeded)

	script, err = New(WithMaxSteps(100)).Compile(t.Context(), `1 + 1`)
	require.NoError(t, err)

	got, err := script.Execute(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestExecute_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	stop := Func(func(context.Context, ...any) (any, error) {
		cancel()

		return nil, nil
	})

	host := newTestHost(map[string]any{"x": int64(0)})
	vars := NewContext().Set("stop", stop).Set("h", host)

	script, err := New().Compile(ctx, `h.x = 1; stop(); h.x = 2`)
	require.NoError(t, err)

	_, err = script.Execute(ctx, vars)
	requireExecKind(t, err, Canceled)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(1), host.props["x"])
}

func TestExecute_Deterministic(t *testing.T) {
	script, err := New().Compile(t.Context(),
		"h.name = `${h.name}-${n}`; h.count += n; h")
	require.NoError(t, err)

	mk := func() (*testHost, *Context) {
		h := newTestHost(map[string]any{"name": "x", "count": int64(1)})

		return h, NewContext().Set("h", h).Set("n", 2)
	}

	h1, v1 := mk()
	h2, v2 := mk()

	r1, err := script.Execute(t.Context(), v1)
	require.NoError(t, err)

	r2, err := script.Execute(t.Context(), v2)
	require.NoError(t, err)

	assert.Same(t, h1, r1)
	assert.Same(t, h2, r2)
	assert.Equal(t, h1.props, h2.props)
	assert.Equal(t, "x-2", h1.props["name"])
}

func TestExecute_Concurrent(t *testing.T) {
	script, err := New().Compile(t.Context(), "h.v = `${h.v}:${i}`; h.v", "i")
	require.NoError(t, err)

	var wg sync.WaitGroup

	results := make([]any, 32)
	errs := make([]error, len(results))

	for i := range results {
		wg.Go(func() {
			h := newTestHost(map[string]any{"v": "n"})
			results[i], errs[i] = script.Execute(t.Context(), NewContext().Set("h", h), i)
		})
	}

	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "n:"+strconv.Itoa(i), results[i])
	}
}
