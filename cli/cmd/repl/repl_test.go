package repl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sahilm/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devenc042/MyZeDeDup/lang"
)

func testModel(t *testing.T, vars *lang.Context) model {
	t.Helper()

	return newModel(t.Context(), Config{Engine: lang.New(), Vars: vars}, NewHistory(""))
}

func TestHelpMessage(t *testing.T) {
	help := helpMessage()

	assert.False(t, strings.HasSuffix(help, "\n"), "tea.Println appends its own newline")

	for _, cmd := range ctrlCommands {
		assert.Contains(t, help, "  "+cmd+" ")
	}
}

func TestModel_Evaluate(t *testing.T) {
	m := testModel(t, lang.NewContext().Set("name", "Deven"))

	out, err := m.evaluate(`var greeting = "Hi " + name`)
	require.NoError(t, err)
	assert.Contains(t, out, "Hi Deven")

	// Declarations persist across lines.
	out, err = m.evaluate(`greeting.length()`)
	require.NoError(t, err)
	assert.Contains(t, out, "8")

	out, err = m.evaluate(`out.println("printed"); 1 + 1`)
	require.NoError(t, err)
	assert.Contains(t, out, "printed")
	assert.Contains(t, out, "2")

	// Output does not leak into the next line.
	out, err = m.evaluate(`null`)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestModel_EvaluateErrors(t *testing.T) {
	m := testModel(t, nil)

	_, err := m.evaluate(`1 +`)

	var pe *lang.ParseError
	require.ErrorAs(t, err, &pe)

	out, err := m.evaluate(`out.print("partial"); missing`)

	var xe *lang.ExecutionError
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, lang.UndefinedVariable, xe.Kind)
	assert.Equal(t, "partial", out)
}

func TestModel_Reset(t *testing.T) {
	m := testModel(t, lang.NewContext().Set("seed", int64(1)))

	_, err := m.evaluate(`var x = 5`)
	require.NoError(t, err)
	assert.True(t, m.vars.Has("x"))

	m.reset()

	assert.False(t, m.vars.Has("x"))
	assert.True(t, m.vars.Has("seed"))
	assert.True(t, m.vars.Has("out"))
}

func TestModel_Candidates(t *testing.T) {
	m := testModel(t, lang.NewContext().
		Set("name", "Deven").
		Set("rec", map[string]any{"city": "Kanpur", "age": int64(3)}))

	top := m.topLevel()
	assert.Contains(t, top, "name")
	assert.Contains(t, top, "size")
	assert.Contains(t, top, "return")

	assert.Equal(t, stringMethods, m.members("name"))
	assert.Equal(t, []string{"age", "city"}, m.members("rec"))
	assert.Equal(t, sinkMethods, m.members("out"))
	assert.Empty(t, m.members("missing"))
}

func TestModel_ComputeMatches(t *testing.T) {
	m := testModel(t, lang.NewContext().Set("name", "Deven"))

	m.input.SetValue("name.toU")
	m.input.SetCursor(len("name.toU"))

	matches, _, start, end := m.computeMatches()
	require.NotEmpty(t, matches)
	assert.Equal(t, "toUpperCase", matches[0].Str)
	assert.Equal(t, 5, start)
	assert.Equal(t, 8, end)

	// After a dot every member is offered.
	m.input.SetValue("name.")
	m.input.SetCursor(len("name."))

	matches, _, _, _ = m.computeMatches()
	assert.Len(t, matches, len(stringMethods))

	// An empty top-level word offers nothing.
	m.input.SetValue("")

	matches, _, _, _ = m.computeMatches()
	assert.Empty(t, matches)
}

func TestModel_Cycle(t *testing.T) {
	m := testModel(t, nil)

	m.input.SetValue("s")
	m.input.SetCursor(1)
	m.wordStart, m.wordEnd = 0, 1
	m.matches = fuzzy.Matches{{Str: "size"}, {Str: "string"}}

	m = m.cycle(1)
	assert.Equal(t, "size", m.input.Value())
	assert.True(t, m.tabActive)

	m = m.cycle(1)
	assert.Equal(t, "string", m.input.Value())

	m = m.cycle(1)
	assert.Equal(t, "size", m.input.Value())

	m = m.cycle(-1)
	assert.Equal(t, "string", m.input.Value())
}

func TestModel_HistoryStep(t *testing.T) {
	h := NewHistory("")
	require.NoError(t, h.Add("1 + 1", modeEval))
	require.NoError(t, h.Add("vars", modeCtrl))
	require.NoError(t, h.Add("2 + 2", modeEval))

	m := newModel(context.Background(), Config{Engine: lang.New()}, h)

	m = m.historyStep(-1, false)
	assert.Equal(t, "2 + 2", m.input.Value())

	m = m.historyStep(-1, false)
	assert.Equal(t, "vars", m.input.Value())
	assert.Equal(t, modeCtrl, m.mode)

	m = m.switchToMode(modeEval)
	m.historyIdx = h.Len()

	m = m.historyStep(-1, true)
	m = m.historyStep(-1, true)
	assert.Equal(t, "1 + 1", m.input.Value())

	m = m.historyStep(1, true)
	m = m.historyStep(1, true)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, h.Len(), m.historyIdx)
}

func TestModel_ListVars(t *testing.T) {
	m := testModel(t, lang.NewContext().
		Set("n", int64(42)).
		Set("f", lang.Func(func(context.Context, ...any) (any, error) { return nil, nil })))

	list := m.listVars()
	assert.Contains(t, list, "n")
	assert.Contains(t, list, "42")
	assert.Contains(t, list, "func")
	assert.Contains(t, list, "sink")
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	require.NoError(t, h.Load())
	assert.Zero(t, h.Len())

	require.NoError(t, h.Add("a", modeEval))
	require.NoError(t, h.Add("help", modeCtrl))
	require.NoError(t, h.Add("a", modeEval))
	require.NoError(t, h.Add("a", modeEval))
	require.NoError(t, h.Add("   ", modeEval))

	want := []HistoryEntry{{"help", modeCtrl}, {"a", modeEval}}
	assert.Equal(t, want, h.Entries())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "C:help\nE:a\n", string(data))

	reloaded := NewHistory(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, want, reloaded.Entries())

	_, err = reloaded.Entry(5)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestHistory_UnprefixedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	require.NoError(t, os.WriteFile(path, []byte("1 + 1\nC:quit\n\n"), 0o600))

	h := NewHistory(path)
	require.NoError(t, h.Load())

	assert.Equal(t, []HistoryEntry{{"1 + 1", modeEval}, {"quit", modeCtrl}}, h.Entries())
}
