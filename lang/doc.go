// Package lang implements a small embeddable script engine for reading and
// rewriting fields of host records.
//
// Source text is tokenized, parsed into an immutable [Script], and executed
// against a mutable [Context] holding host objects, an output sink, and
// positional arguments. The engine never depends on a host's concrete type:
// it reads and writes properties only through [Getter] and [Setter].
//
// # Grammar
//
// Informal EBNF:
//
//	Script      → Stmt? (';' Stmt?)* EOF
//	Stmt        → 'var' Identifier ('=' Expr)? | 'return' Expr? | Expr
//	Expr        → Conditional (AssignOp Expr)?        # target: x.name or x[key]
//	AssignOp    → '=' | '+=' | '-=' | '*=' | '/='
//	Conditional → Or ('?' Conditional ':' Conditional)?
//	Or          → And (('||' | 'or') And)*
//	And         → Equality (('&&' | 'and') Equality)*
//	Equality    → Comparison (('==' | '!=') Comparison)*
//	Comparison  → Sum (('<' | '<=' | '>' | '>=') Sum)*
//	Sum         → Product (('+' | '-') Product)*
//	Product     → Unary (('*' | '/' | '%') Unary)*
//	Unary       → ('-' | '+' | '!' | 'not') Unary | Postfix
//	Postfix     → Primary ('.' Name | '[' Expr ']' | '(' Args? ')')*
//	Primary     → Int | Float | String | Template | 'true' | 'false' | 'null'
//	            | Identifier | '(' Expr ')'
//	Template    → '`' (Text | '${' Expr '}')* '`'
//
// Comments start with '#' or '//' and run to the end of the line, or are
// enclosed in '/*' and '*/'.
//
// # Example
//
//	masterPatient.address = newRecord.address;
//	out.println(`merged ${masterPatient.firstName} ${masterPatient.lastName}`);
//	masterPatient
//
// The value of a script is the value of the last statement evaluated.
//
// # Values
//
// Scripts operate on int64, float64, string, bool, time.Time, nil, and
// [Undefined], plus host objects, sinks ([io.StringWriter]), and host
// functions ([Func]). Two integers produce an integer; a float operand
// widens the other. The + operator also joins two strings, but never a
// string and a number. Interpolation stringifies values with the engine's
// [Format].
//
// # Errors
//
// Compilation fails with [*LexError] or [*ParseError]; reading a source fails
// with [*SourceUnavailableError]; execution fails with [*ExecutionError],
// whose [ExecKind] names the failure. Each matches one sentinel ([ErrLex],
// [ErrParse], [ErrSourceUnavailable], [ErrExecution]) via [errors.Is].
package lang
