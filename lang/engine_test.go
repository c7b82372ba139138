package lang

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/expr-lang/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := New().CompileFile(t.Context(), filepath.Join(dir, "nope.zd"))
		require.ErrorIs(t, err, ErrSourceUnavailable)
		require.ErrorIs(t, err, os.ErrNotExist)
		assert.NotErrorIs(t, err, ErrParse)

		var su *SourceUnavailableError
		require.ErrorAs(t, err, &su)
		assert.Contains(t, su.Source, "nope.zd")
	})

	t.Run("malformed file is a parse error", func(t *testing.T) {
		path := filepath.Join(dir, "bad.zd")
		require.NoError(t, os.WriteFile(path, []byte("a +"), 0o600))

		_, err := New().CompileFile(t.Context(), path)
		require.ErrorIs(t, err, ErrParse)
		assert.NotErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "add.zd")
		require.NoError(t, os.WriteFile(path, []byte("// adds\nx + y\n"), 0o600))

		script, err := New().CompileFile(t.Context(), path, "x", "y")
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, script.Params())

		got, err := script.Execute(t.Context(), nil, 33, 29)
		require.NoError(t, err)
		assert.Equal(t, int64(62), got)
	})
}

func TestCompileReader_ReadFailure(t *testing.T) {
	boom := errors.New("disk on fire")

	_, err := New().CompileReader(t.Context(), iotest.ErrReader(boom), "stdin")
	require.ErrorIs(t, err, ErrSourceUnavailable)
	require.ErrorIs(t, err, boom)
}

func TestCompile_InvalidParams(t *testing.T) {
	for _, params := range [][]string{{""}, {"1x"}, {"var"}, {"a", "a"}, {"a-b"}} {
		_, err := New().Compile(t.Context(), `1`, params...)
		require.ErrorIs(t, err, ErrParse, "params %q", params)
	}
}

func TestCompile_Cache(t *testing.T) {
	ClearCache()

	src := `masterPatient.address = newRecord.address; masterPatient`

	a, err := New().Compile(t.Context(), src)
	require.NoError(t, err)

	b, err := New().Compile(t.Context(), src, "unused")
	require.NoError(t, err)

	assert.Same(t, a.Body(), b.Body(), "same source shares one parsed body")
	assert.Empty(t, a.Params())
	assert.Equal(t, []string{"unused"}, b.Params())

	c, err := New(WithMaxDepth(50)).Compile(t.Context(), src)
	require.NoError(t, err)
	assert.NotSame(t, a.Body(), c.Body(), "options are part of the key")

	d, err := New(WithCache(false)).Compile(t.Context(), src)
	require.NoError(t, err)
	assert.NotSame(t, a.Body(), d.Body())

	ClearCache()

	e, err := New().Compile(t.Context(), src)
	require.NoError(t, err)
	assert.NotSame(t, a.Body(), e.Body())

	// Errors are cached too and keep their source snippet.
	_, err1 := New().Compile(t.Context(), "x = 1")
	_, err2 := New().Compile(t.Context(), "x = 1")
	require.Error(t, err1)
	assert.Equal(t, err1.Error(), err2.Error())
	assert.Contains(t, err1.Error(), "| x = 1")
}

func TestExpression(t *testing.T) {
	eng := New()

	x, err := eng.CreateExpression(t.Context(), "`${user}`")
	require.NoError(t, err)

	got, err := x.Evaluate(t.Context(), NewContext().Set("user", "Zemo"))
	require.NoError(t, err)
	assert.Equal(t, "Zemo", got)

	got, err = eng.Evaluate(t.Context(), `a.b * 2`, NewContext().Set("a", map[string]any{"b": 21}))
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)

	_, err = eng.CreateExpression(t.Context(), `1; 2`)
	require.ErrorIs(t, err, ErrParse)

	_, err = eng.CreateExpression(t.Context(), `var x = 1`)
	require.ErrorIs(t, err, ErrParse)

	_, err = eng.Evaluate(t.Context(), `nobody`, nil)
	requireExecKind(t, err, UndefinedVariable)
}

func TestFormat(t *testing.T) {
	when := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		format Format
		value  any
		want   string
	}{
		{"plain int", DefaultFormat(), int64(1234567), "1234567"},
		{"plain float", DefaultFormat(), 1234.5, "1234.5"},
		{"plain date", DefaultFormat(), when, "09-03-2024"},
		{"undefined", DefaultFormat(), Undefined, ""},
		{"precision", Format{Precision: 2}, 1.0 / 3, "0.33"},
		{"zero format float", Format{}, 1.75, "1.75"},
		{"negative precision", Format{Precision: -1}, 1.75, "1.75"},
		{
			"german int",
			Format{Locale: language.German},
			int64(1234567),
			"1.234.567",
		},
		{
			"german float",
			Format{Locale: language.German},
			1234.5,
			"1.234,5",
		},
		{
			"english fixed precision",
			Format{Locale: language.AmericanEnglish, Precision: 2},
			1234.5,
			"1,234.50",
		},
		{
			"german date names",
			Format{Locale: language.German, DateLayout: "Monday, 2 January 2006"},
			when,
			"Samstag, 9 März 2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.String(tt.value))
		})
	}
}

func TestWithFormat_Interpolation(t *testing.T) {
	eng := New(WithFormat(Format{Locale: language.German}))

	got, err := eng.Evaluate(t.Context(), "`${n}`", NewContext().Set("n", 1234.5))
	require.NoError(t, err)
	assert.Equal(t, "1.234,5", got)
}

func TestWithFormat_PartialFormat(t *testing.T) {
	eng := New(WithFormat(Format{DateLayout: "2006-01-02"}))

	vars := NewContext().
		Set("n", 1.75).
		Set("d", time.Date(2017, time.July, 17, 0, 0, 0, 0, time.UTC))

	got, err := eng.Evaluate(t.Context(), "`${n} ${d}`", vars)
	require.NoError(t, err)
	assert.Equal(t, "1.75 2017-07-17", got)
}

// TestArithmetic_MatchesExpr checks numeric and logical operators against
// expr-lang for the subset of syntax both languages share.
func TestArithmetic_MatchesExpr(t *testing.T) {
	sources := []string{
		`1 + 2 * 3`,
		`(7 - 2) * 4`,
		`10 % 4`,
		`-3 + 10`,
		`1.5 * 2`,
		`2 + 3.5`,
		`3 > 2`,
		`2 <= 1.5`,
		`1 < 2 && 3 > 4`,
		`1 == 1.0`,
		`not (1 > 2) || false`,
		`1 < 2 ? 10 : 20`,
		`"a" + "b" == "ab"`,
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			want, err := expr.Eval(src, nil)
			require.NoError(t, err)

			if n, ok := want.(int); ok {
				want = int64(n)
			}

			got, err := New().Evaluate(t.Context(), src, nil)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func BenchmarkCompile(b *testing.B) {
	src := strings.Repeat("masterPatient.address = newRecord.address; ", 20) + "masterPatient"
	eng := New(WithCache(false))

	for b.Loop() {
		if _, err := eng.Compile(b.Context(), src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExecute(b *testing.B) {
	script, err := New().Compile(b.Context(),
		"h.name = `${h.name}`; h.count += 1; h.count * 2 > 10 ? h : null")
	if err != nil {
		b.Fatal(err)
	}

	vars := NewContext().Set("h", map[string]any{"name": "x", "count": int64(0)})

	for b.Loop() {
		if _, err := script.Execute(b.Context(), vars); err != nil {
			b.Fatal(err)
		}
	}
}
