package lang

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultMaxDepth is the default maximum nesting depth of expressions.
// Users may modify this before creating an [Engine] to change the default.
var DefaultMaxDepth = 200

// Parse builds a script body from a token slice produced by [Tokenize].
// It never panics on malformed input: every failure is reported as a
// [*ParseError] (or a [*LexError] from an interpolation segment).
func Parse(tokens []Token) (*Block, error) {
	return parseProgram(tokens, DefaultMaxDepth)
}

// ParseString tokenizes and parses source text.
func ParseString(source string) (*Block, error) {
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}

	return Parse(toks)
}

// parser holds the parser state.
type parser struct {
	toks     []Token
	i        int
	depth    int
	maxDepth int
}

func parseProgram(tokens []Token, maxDepth int) (block *Block, err error) {
	p, err := newParser(tokens, maxDepth)
	if err != nil {
		return nil, err
	}

	defer p.recover(&err)

	return p.parseBlock()
}

// parseExpression parses tokens that must contain exactly one expression.
func parseExpression(tokens []Token, maxDepth int) (x Expr, err error) {
	p, err := newParser(tokens, maxDepth)
	if err != nil {
		return nil, err
	}

	defer p.recover(&err)

	x, err = p.parseExpr()
	if err != nil {
		return nil, err
	}

	if !p.at(KindEOF) {
		return nil, p.unexpected(p.peek())
	}

	return x, nil
}

func newParser(tokens []Token, maxDepth int) (*parser, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != KindEOF {
		return nil, &ParseError{Kind: Syntax, Message: "token stream is not terminated"}
	}

	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &parser{toks: tokens, maxDepth: maxDepth}, nil
}

// recover converts an unexpected panic into a parse error so that malformed
// input can never crash the host.
func (p *parser) recover(err *error) {
	if r := recover(); r != nil {
		*err = &ParseError{
			Kind:    Syntax,
			Pos:     p.peek().Pos,
			Message: fmt.Sprintf("internal parser error: %v", r),
		}
	}
}

// parseBlock parses: Stmt? (';' Stmt?)* EOF.
func (p *parser) parseBlock() (*Block, error) {
	block := &Block{At: p.peek().Pos}

	for {
		for p.accept(";") {
		}

		if p.at(KindEOF) {
			return block, nil
		}

		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}

		block.Stmts = append(block.Stmts, stmt)

		if p.at(KindEOF) {
			return block, nil
		}

		if !p.accept(";") {
			return nil, p.unexpected(p.peek())
		}
	}
}

// parseStmt parses a declaration, a return, or an expression statement.
func (p *parser) parseStmt() (Stmt, error) {
	tok := p.peek()

	switch {
	case tok.Kind == KindKeyword && tok.Lexeme == "var":
		p.advance()

		name := p.peek()
		if name.Kind != KindIdent {
			return nil, p.errorf(Syntax, name.Pos, "expected identifier after var, found %s", name)
		}

		p.advance()

		decl := &VarDecl{At: tok.Pos, Name: name.Lexeme}

		if p.peek().Is("=") {
			p.advance()

			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			decl.Value = value
		}

		return decl, nil

	case tok.Kind == KindKeyword && tok.Lexeme == "return":
		p.advance()

		ret := &Return{At: tok.Pos}

		if !p.at(KindEOF) && !p.peek().Is(";") {
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			ret.Value = value
		}

		return ret, nil
	}

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ExprStmt{X: x}, nil
}

// parseExpr parses a full expression, including assignment.
func (p *parser) parseExpr() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	return p.parseAssign()
}

// parseAssign parses: Conditional (AssignOp Assign)?  (right-associative).
func (p *parser) parseAssign() (Expr, error) {
	target, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	op := p.peek()
	if op.Kind != KindOperator {
		return target, nil
	}

	switch op.Lexeme {
	case "=", "+=", "-=", "*=", "/=":
	default:
		return target, nil
	}

	switch target.(type) {
	case *Member, *Index:
	default:
		return nil, p.errorf(InvalidAssignmentTarget, op.Pos,
			"cannot assign to %s", target)
	}

	p.advance()

	value, err := p.parseAssign()
	if err != nil {
		return nil, err
	}

	return &Assign{At: op.Pos, Op: op.Lexeme, Target: target, Value: value}, nil
}

// parseConditional parses: Or ('?' Assign ':' Conditional)?.
func (p *parser) parseConditional() (Expr, error) {
	cond, err := p.parseBinary(precOr)
	if err != nil {
		return nil, err
	}

	q := p.peek()
	if !q.Is("?") {
		return cond, nil
	}

	p.advance()

	then, err := p.parseConditionalBranch()
	if err != nil {
		return nil, err
	}

	if !p.accept(":") {
		return nil, p.errorf(Syntax, p.peek().Pos, "expected ':' in conditional, found %s", p.peek())
	}

	els, err := p.parseConditionalBranch()
	if err != nil {
		return nil, err
	}

	return &Conditional{At: q.Pos, Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) parseConditionalBranch() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	return p.parseConditional()
}

// binaryOp returns the canonical operator and its precedence if tok is a
// binary operator.
func binaryOp(tok Token) (string, int, bool) {
	var op string

	switch tok.Kind {
	case KindOperator:
		op = tok.Lexeme
	case KindKeyword:
		switch tok.Lexeme {
		case "and":
			op = "&&"
		case "or":
			op = "||"
		}
	}

	prec, ok := binaryPrec[op]

	return op, prec, ok
}

// parseBinary parses left-associative binary operators with precedence at
// least min by precedence climbing.
func (p *parser) parseBinary(min int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		if isUnknownOperator(tok) {
			return nil, p.errorf(UnknownOperator, tok.Pos, "unknown operator %s", tok)
		}

		op, prec, ok := binaryOp(tok)
		if !ok || prec < min {
			return left, nil
		}

		p.advance()

		right, err := p.parseBinaryOperand(prec + 1)
		if err != nil {
			return nil, err
		}

		if op == "&&" || op == "||" {
			left = &Logical{At: tok.Pos, Op: op, X: left, Y: right}
		} else {
			left = &Binary{At: tok.Pos, Op: op, X: left, Y: right}
		}
	}
}

func (p *parser) parseBinaryOperand(min int) (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	return p.parseBinary(min)
}

// parseUnary parses: ('-' | '+' | '!' | 'not') Unary | Postfix.
func (p *parser) parseUnary() (Expr, error) {
	tok := p.peek()

	var op string

	switch {
	case tok.Is("-"), tok.Is("!"), tok.Is("+"):
		op = tok.Lexeme
	case tok.Kind == KindKeyword && tok.Lexeme == "not":
		op = "!"
	case isUnknownOperator(tok):
		return nil, p.errorf(UnknownOperator, tok.Pos, "unknown operator %s", tok)
	default:
		return p.parsePostfix()
	}

	p.advance()

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	// Unary plus is the identity on numbers; keep it as a node so that
	// "+x" still type-checks its operand.
	return &Unary{At: tok.Pos, Op: op, X: x}, nil
}

// parsePostfix parses: Primary ('.' Name | '[' Expr ']' | '(' Args ')')*.
func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		switch {
		case tok.Is("."):
			p.advance()

			name := p.peek()
			if name.Kind != KindIdent && name.Kind != KindKeyword {
				return nil, p.errorf(Syntax, name.Pos, "expected property name after '.', found %s", name)
			}

			p.advance()

			x = &Member{At: tok.Pos, X: x, Name: name.Lexeme}

		case tok.Is("["):
			p.advance()

			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if !p.accept("]") {
				return nil, p.errorf(MismatchedBracket, p.peek().Pos,
					"expected ']' to close '[' at %s, found %s", tok.Pos, p.peek())
			}

			x = &Index{At: tok.Pos, X: x, Key: key}

		case tok.Is("("):
			p.advance()

			args, err := p.parseArgs(tok)
			if err != nil {
				return nil, err
			}

			x = &Call{At: tok.Pos, Fun: x, Args: args}

		default:
			return x, nil
		}
	}
}

// parseArgs parses: (Expr (',' Expr)*)? ')'. The '(' is already consumed.
func (p *parser) parseArgs(open Token) ([]Expr, error) {
	var args []Expr

	if p.accept(")") {
		return args, nil
	}

	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if p.accept(")") {
			return args, nil
		}

		if !p.accept(",") {
			return nil, p.errorf(MismatchedBracket, p.peek().Pos,
				"expected ',' or ')' to close '(' at %s, found %s", open.Pos, p.peek())
		}
	}
}

// parsePrimary parses a literal, identifier, template, or parenthesized
// expression.
func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()

	switch tok.Kind {
	case KindInt:
		p.advance()

		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.errorf(Syntax, tok.Pos, "integer literal %s out of range", tok.Lexeme)
		}

		return &Literal{At: tok.Pos, Value: v}, nil

	case KindFloat:
		p.advance()

		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorf(Syntax, tok.Pos, "float literal %s out of range", tok.Lexeme)
		}

		return &Literal{At: tok.Pos, Value: v}, nil

	case KindString:
		p.advance()

		return &Literal{At: tok.Pos, Value: tok.Lexeme}, nil

	case KindTemplate:
		p.advance()

		return p.parseTemplate(tok)

	case KindIdent:
		p.advance()

		return &Ident{At: tok.Pos, Name: tok.Lexeme}, nil

	case KindKeyword:
		switch tok.Lexeme {
		case "true", "false":
			p.advance()

			return &Literal{At: tok.Pos, Value: tok.Lexeme == "true"}, nil

		case "null":
			p.advance()

			return &Literal{At: tok.Pos}, nil
		}

	case KindPunct:
		if tok.Lexeme == "(" {
			p.advance()

			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if !p.accept(")") {
				return nil, p.errorf(MismatchedBracket, p.peek().Pos,
					"expected ')' to close '(' at %s, found %s", tok.Pos, p.peek())
			}

			return x, nil
		}
	}

	return nil, p.unexpected(tok)
}

// parseTemplate splits a template token into literal text and embedded
// expressions, parsing each ${...} segment as an expression.
func (p *parser) parseTemplate(tok Token) (Expr, error) {
	segs, err := splitTemplate(tok.Lexeme, tok.Pos)
	if err != nil {
		return nil, err
	}

	tmpl := &Template{At: tok.Pos, Parts: make([]TemplatePart, 0, len(segs))}

	for _, seg := range segs {
		if !seg.expr {
			text, err := unescapeTemplate(seg.text, seg.pos)
			if err != nil {
				return nil, err
			}

			tmpl.Parts = append(tmpl.Parts, TemplatePart{Text: text})

			continue
		}

		if strings.TrimSpace(seg.text) == "" {
			return nil, p.errorf(Syntax, seg.pos, "empty interpolation")
		}

		toks, err := tokenizeAt(seg.text, seg.pos)
		if err != nil {
			return nil, err
		}

		sub := &parser{toks: toks, depth: p.depth + 1, maxDepth: p.maxDepth}

		x, err := sub.parseExpr()
		if err != nil {
			return nil, err
		}

		if !sub.at(KindEOF) {
			return nil, sub.unexpected(sub.peek())
		}

		tmpl.Parts = append(tmpl.Parts, TemplatePart{X: x})
	}

	return tmpl, nil
}

// Helper methods

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.i]
}

func (p *parser) advance() {
	if p.i < len(p.toks)-1 {
		p.i++
	}
}

func (p *parser) at(kind Kind) bool { return p.peek().Kind == kind }

// accept consumes the next token if it is punctuation or an operator with
// the given lexeme.
func (p *parser) accept(lexeme string) bool {
	if p.peek().Is(lexeme) {
		p.advance()

		return true
	}

	return false
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return p.errorf(TooDeep, p.peek().Pos,
			"expression nesting exceeds maximum depth %d", p.maxDepth)
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) errorf(
	kind ParseErrorKind,
	pos Position,
	format string,
	args ...any,
) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// unexpected reports tok where it cannot appear.
func (p *parser) unexpected(tok Token) *ParseError {
	switch {
	case tok.Kind == KindEOF:
		return p.errorf(Syntax, tok.Pos, "unexpected end of input")
	case tok.Is(")"), tok.Is("]"), tok.Is("}"):
		return p.errorf(MismatchedBracket, tok.Pos, "unmatched %s", tok)
	case isUnknownOperator(tok):
		return p.errorf(UnknownOperator, tok.Pos, "unknown operator %s", tok)
	default:
		return p.errorf(Syntax, tok.Pos, "unexpected %s", tok)
	}
}

// isUnknownOperator reports operator tokens the grammar does not define.
func isUnknownOperator(tok Token) bool {
	if tok.Kind != KindOperator {
		return false
	}

	switch tok.Lexeme {
	case "&", "|", "^", "~":
		return true
	default:
		return false
	}
}
