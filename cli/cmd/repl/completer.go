package repl

import (
	"io"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/Devenc042/MyZeDeDup/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "edit", "reset", "clear", "quit"}

// stringMethods and sinkMethods are the methods scripts may call on string
// and output sink values.
var (
	stringMethods = []string{
		"contains", "endsWith", "length", "startsWith",
		"toLowerCase", "toUpperCase", "trim",
	}
	sinkMethods = []string{"print", "println", "write"}
)

// lister is implemented by host objects that can name their properties and
// methods.
type lister interface {
	Members() []string
}

// isWordBoundary reports whether r delimits a word for completion purposes:
// whitespace, the member-access dot, or operator and punctuation characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'"', '\'', '`':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word that
// starts at wordStart. For "x + patient.name.le" with the word "le", the
// parent path is "patient.name". Top-level words have no parent.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// topLevel returns the names valid at the start of an expression: context
// bindings, builtins, and keywords.
func (m model) topLevel() []string {
	names := m.vars.Names()
	names = append(names, lang.Builtins()...)
	names = append(names, lang.Keywords()...)

	return names
}

// members returns the names valid after parent followed by a dot. The
// parent chain is resolved against the session context; anything that does
// not resolve has no members.
func (m model) members(parent string) []string {
	v, err := m.engine.Evaluate(m.ctxFunc(), parent, m.vars)
	if err != nil {
		return nil
	}

	return membersOf(v)
}

func membersOf(v any) []string {
	var names []string

	switch x := v.(type) {
	case string:
		names = append(names, stringMethods...)
	case map[string]any:
		names = slices.Sorted(maps.Keys(x))
	}

	if l, ok := v.(lister); ok {
		names = append(names, l.Members()...)
	}

	if _, ok := v.(io.StringWriter); ok {
		names = append(names, sinkMethods...)
	}

	return names
}

// computeMatches calculates the fuzzy matches for the word at the cursor,
// best first. An empty top-level word has no matches so the hint stays
// visible; an empty word after a dot lists every member.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		parent := parentPath(input, wordStart)
		if parent == "" {
			candidates = m.topLevel()
		} else {
			candidates = m.members(parent)
		}

		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width. Matched characters are highlighted, and the selected
// candidate uses the selected style while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Callables are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if _, ok := signatures[match.Str]; ok {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// preview returns a short rendering of a bound value for the vars listing.
func preview(format lang.Format, v any) string {
	const limit = 40

	var s string

	switch x := v.(type) {
	case lang.Func:
		s = "func"
	case map[string]any:
		s = "{ " + strings.Join(slices.Sorted(maps.Keys(x)), ", ") + " }"
	case io.StringWriter:
		s = "sink"
	default:
		s = format.String(v)
	}

	if utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit-3]) + "..."
	}

	return s
}
