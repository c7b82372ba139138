package lang

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
)

// Kind identifies the lexical category of a [Token].
type Kind int

const (
	// KindEOF marks the end of the token stream.
	KindEOF Kind = iota

	// KindIdent is a bare identifier such as a variable or property name.
	KindIdent

	// KindKeyword is a reserved word (true, false, null, var, return, and,
	// or, not).
	KindKeyword

	// KindInt is an integer literal.
	KindInt

	// KindFloat is a floating-point literal.
	KindFloat

	// KindString is a quoted string literal. The lexeme holds the decoded
	// text without quotes.
	KindString

	// KindTemplate is a backtick-delimited string literal that may contain
	// ${...} interpolation segments. The lexeme holds the raw text between
	// the backticks; the parser splits it.
	KindTemplate

	// KindOperator is an arithmetic, comparison, logical, or assignment
	// operator.
	KindOperator

	// KindPunct is a delimiter: parentheses, brackets, braces, dot, comma,
	// semicolon, colon, or question mark.
	KindPunct
)

// String returns a string representation of the token kind.
func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"

	case KindIdent:
		return "Identifier"

	case KindKeyword:
		return "Keyword"

	case KindInt:
		return "Integer"

	case KindFloat:
		return "Float"

	case KindString:
		return "String"

	case KindTemplate:
		return "Template"

	case KindOperator:
		return "Operator"

	case KindPunct:
		return "Punctuation"

	default:
		return "Unknown"
	}
}

// keywords lists the reserved identifiers.
var keywords = map[string]bool{
	"true":   true,
	"false":  true,
	"null":   true,
	"var":    true,
	"return": true,
	"and":    true,
	"or":     true,
	"not":    true,
}

// Keywords returns the reserved identifiers in sorted order.
func Keywords() []string { return slices.Sorted(maps.Keys(keywords)) }

// Position locates a token or node in source text.
// Line and Column are 1-based; Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether p refers to an actual source location.
func (p Position) IsValid() bool { return p.Line > 0 }

// LogValue implements slog.LogValuer.
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
		slog.Int("offset", p.Offset),
	)
}

// advance returns the position following p after consuming r.
func (p Position) advance(r rune, size int) Position {
	p.Offset += size
	if r == '\n' {
		p.Line++
		p.Column = 1
	} else {
		p.Column++
	}

	return p
}

// Token is an immutable lexical unit.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Position
}

// Is reports whether t is an operator, punctuation, or keyword token with
// the given lexeme.
func (t Token) Is(lexeme string) bool {
	switch t.Kind {
	case KindOperator, KindPunct, KindKeyword:
		return t.Lexeme == lexeme
	default:
		return false
	}
}

// String returns a short description suitable for error messages.
func (t Token) String() string {
	switch t.Kind {
	case KindEOF:
		return "end of input"

	case KindString:
		return strconv.Quote(t.Lexeme)

	case KindTemplate:
		return "`" + t.Lexeme + "`"

	default:
		return strconv.Quote(t.Lexeme)
	}
}
