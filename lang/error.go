package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every typed error returned by this package matches exactly one of the
// category sentinels below via [errors.Is]. Hosts return [ErrNoSuchProperty]
// or [ErrNotWritable] (optionally wrapped) from [Setter.SetProperty].
var (
	ErrLex               = NewError("lex error")
	ErrParse             = NewError("parse error")
	ErrSourceUnavailable = NewError("source unavailable")
	ErrExecution         = NewError("execution error")

	ErrNoSuchProperty = NewError("no such property")
	ErrNotWritable    = NewError("property not writable")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	base  *Error      // Sentinel this error was derived from (for errors.Is)
	msg   string      //
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e was derived from target via [Error.Wrap] or
// [Error.With].
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.base != nil && e.base == t)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		base:  e.root(),
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		base:  e.root(),
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// LexError reports malformed input found while tokenizing.
type LexError struct {
	Pos     Position
	Message string
	Source  string // Optional source text for snippet rendering
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return "lex error at " + e.Pos.String() + ": " + e.Message +
		snippet(e.Source, e.Pos)
}

// Is matches [ErrLex].
func (e *LexError) Is(target error) bool { return target == ErrLex }

// LogValue implements slog.LogValuer.
func (e *LexError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrLex.msg),
		slog.String("message", e.Message),
		slog.Any("position", e.Pos),
	)
}

// ParseErrorKind classifies a [ParseError].
type ParseErrorKind int

const (
	// Syntax is any grammar violation not covered by a more specific kind.
	Syntax ParseErrorKind = iota

	// InvalidAssignmentTarget is an assignment whose left side is not a
	// member-access or index chain.
	InvalidAssignmentTarget

	// UnknownOperator is an operator token the grammar does not define.
	UnknownOperator

	// MismatchedBracket is a missing or unbalanced (, [, or {.
	MismatchedBracket

	// TooDeep is nesting beyond the configured maximum depth.
	TooDeep
)

// String returns a string representation of the parse error kind.
func (k ParseErrorKind) String() string {
	switch k {
	case Syntax:
		return "Syntax"

	case InvalidAssignmentTarget:
		return "InvalidAssignmentTarget"

	case UnknownOperator:
		return "UnknownOperator"

	case MismatchedBracket:
		return "MismatchedBracket"

	case TooDeep:
		return "TooDeep"

	default:
		return "Unknown"
	}
}

// ParseError reports malformed grammar.
type ParseError struct {
	Kind    ParseErrorKind
	Pos     Position
	Message string
	Source  string // Optional source text for snippet rendering
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return "parse error at " + e.Pos.String() + ": " + e.Message +
		snippet(e.Source, e.Pos)
}

// Is matches [ErrParse].
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrParse.msg),
		slog.String("kind", e.Kind.String()),
		slog.String("message", e.Message),
		slog.Any("position", e.Pos),
	)
}

// SourceUnavailableError reports that script text could not be obtained.
// It is never produced for text that was read but failed to compile.
type SourceUnavailableError struct {
	Source string // File path or other description of the origin
	Err    error
}

// Error implements the error interface.
func (e *SourceUnavailableError) Error() string {
	msg := ErrSourceUnavailable.msg
	if e.Source != "" {
		msg += " (" + e.Source + ")"
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying I/O error.
func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Is matches [ErrSourceUnavailable].
func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// LogValue implements slog.LogValuer.
func (e *SourceUnavailableError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrSourceUnavailable.msg),
		slog.String("source", e.Source),
	}

	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

// ExecKind classifies an [ExecutionError].
type ExecKind int

const (
	// UndefinedVariable is a lookup of a name never bound in the context.
	UndefinedVariable ExecKind = iota

	// NoSuchProperty is a read or write of a property the host lacks.
	NoSuchProperty

	// PropertyNotWritable is a write to a host without a setter, or one
	// whose setter refuses the property.
	PropertyNotWritable

	// TypeMismatch is an operator or call applied to unsupported kinds.
	TypeMismatch

	// ArityMismatch is a wrong argument count under strict arity, or in a
	// call to a builtin or method.
	ArityMismatch

	// DivisionByZero is integer division or modulo by zero.
	DivisionByZero

	// NotCallable is a call whose callee is not a function or method.
	NotCallable

	// StepLimitExceeded is an execution that ran past the configured
	// step budget.
	StepLimitExceeded

	// Canceled is an execution whose context.Context was done.
	Canceled

	// HostFailure is any other error returned by a host object, function,
	// or sink.
	HostFailure
)

// String returns a string representation of the execution error kind.
func (k ExecKind) String() string {
	switch k {
	case UndefinedVariable:
		return "UndefinedVariable"

	case NoSuchProperty:
		return "NoSuchProperty"

	case PropertyNotWritable:
		return "PropertyNotWritable"

	case TypeMismatch:
		return "TypeMismatch"

	case ArityMismatch:
		return "ArityMismatch"

	case DivisionByZero:
		return "DivisionByZero"

	case NotCallable:
		return "NotCallable"

	case StepLimitExceeded:
		return "StepLimitExceeded"

	case Canceled:
		return "Canceled"

	case HostFailure:
		return "HostFailure"

	default:
		return "Unknown"
	}
}

// ExecutionError reports a failure while executing a script.
type ExecutionError struct {
	Kind    ExecKind
	Op      string   // Failing operation, e.g. "get", "set", "+", "call"
	Pos     Position // Zero when the failure is not tied to a node
	Message string
	Err     error // Optional underlying cause
}

func newExecError(kind ExecKind, op string, pos Position, msg string) *ExecutionError {
	return &ExecutionError{Kind: kind, Op: op, Pos: pos, Message: msg}
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Kind.String())
	sb.WriteString(": ")
	sb.WriteString(e.Message)

	if e.Op != "" || e.Pos.IsValid() {
		sb.WriteString(" (")

		if e.Op != "" {
			sb.WriteString(strconv.Quote(e.Op))
		}

		if e.Pos.IsValid() {
			if e.Op != "" {
				sb.WriteByte(' ')
			}

			sb.WriteString("at ")
			sb.WriteString(e.Pos.String())
		}

		sb.WriteByte(')')
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause, if any.
func (e *ExecutionError) Unwrap() error { return e.Err }

// Is matches [ErrExecution].
func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }

// LogValue implements slog.LogValuer.
func (e *ExecutionError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrExecution.msg),
		slog.String("kind", e.Kind.String()),
		slog.String("message", e.Message),
	}

	if e.Op != "" {
		attrs = append(attrs, slog.String("op", e.Op))
	}

	if e.Pos.IsValid() {
		attrs = append(attrs, slog.Any("position", e.Pos))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

// snippet renders the source line containing pos with a caret under the
// offending column. It returns "" when source is empty or pos is out of
// range.
func snippet(source string, pos Position) string {
	if source == "" || !pos.IsValid() {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	var buf strings.Builder

	buf.WriteString("\n  ")
	buf.WriteString(strconv.Itoa(pos.Line))
	buf.WriteString(" | ")
	buf.WriteString(lines[pos.Line-1])
	buf.WriteByte('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(pos.Line))+5)
	if pos.Column > 0 {
		padding += strings.Repeat(" ", pos.Column-1)
	}

	buf.WriteString(padding)
	buf.WriteByte('^')

	return buf.String()
}
