package lang

import (
	"strconv"
	"strings"
)

// Node is any element of a parsed script. Nodes are immutable after parsing
// and form a tree: every child is owned by exactly one parent.
type Node interface {
	Pos() Position
	String() string
}

// Expr is a node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a node that appears directly in a [Block].
type Stmt interface {
	Node
	stmtNode()
}

type (
	// Literal is a constant: int64, float64, string, bool, or nil.
	Literal struct {
		At    Position
		Value any
	}

	// Ident is a reference to a name bound in the evaluation context.
	Ident struct {
		At   Position
		Name string
	}

	// Unary is a prefix operator applied to one operand ("-" or "!").
	Unary struct {
		At Position
		Op string
		X  Expr
	}

	// Binary is an arithmetic, comparison, or equality operator.
	Binary struct {
		At   Position
		Op   string
		X, Y Expr
	}

	// Logical is a short-circuiting "&&" or "||".
	Logical struct {
		At   Position
		Op   string
		X, Y Expr
	}

	// Conditional is the ternary "cond ? then : else".
	Conditional struct {
		At               Position
		Cond, Then, Else Expr
	}

	// Member is a property access "x.name".
	Member struct {
		At   Position
		X    Expr
		Name string
	}

	// Index is a computed property access "x[key]".
	Index struct {
		At  Position
		X   Expr
		Key Expr
	}

	// Assign writes a value through a [Member] or [Index] target. Op is "="
	// or a compound form ("+=", "-=", "*=", "/=").
	Assign struct {
		At     Position
		Op     string
		Target Expr
		Value  Expr
	}

	// Template is an interpolated string literal.
	Template struct {
		At    Position
		Parts []TemplatePart
	}

	// Call is a function-call-like expression: "f(args)" or "x.m(args)".
	Call struct {
		At   Position
		Fun  Expr
		Args []Expr
	}
)

// TemplatePart is either literal text or an embedded expression.
type TemplatePart struct {
	Text string
	X    Expr // nil for literal text
}

type (
	// ExprStmt is an expression evaluated for its value or side effects.
	ExprStmt struct {
		X Expr
	}

	// VarDecl binds a name in the evaluation context: "var name = value".
	VarDecl struct {
		At    Position
		Name  string
		Value Expr // nil binds Undefined
	}

	// Return ends execution with a value: "return value".
	Return struct {
		At    Position
		Value Expr // nil returns nil
	}

	// Block is a sequence of statements. Its value is the value of the last
	// statement evaluated.
	Block struct {
		At    Position
		Stmts []Stmt
	}
)

func (n *Literal) Pos() Position     { return n.At }
func (n *Ident) Pos() Position       { return n.At }
func (n *Unary) Pos() Position       { return n.At }
func (n *Binary) Pos() Position      { return n.At }
func (n *Logical) Pos() Position     { return n.At }
func (n *Conditional) Pos() Position { return n.At }
func (n *Member) Pos() Position      { return n.At }
func (n *Index) Pos() Position       { return n.At }
func (n *Assign) Pos() Position      { return n.At }
func (n *Template) Pos() Position    { return n.At }
func (n *Call) Pos() Position        { return n.At }
func (n *ExprStmt) Pos() Position    { return n.X.Pos() }
func (n *VarDecl) Pos() Position     { return n.At }
func (n *Return) Pos() Position      { return n.At }
func (n *Block) Pos() Position       { return n.At }

func (*Literal) exprNode()     {}
func (*Ident) exprNode()       {}
func (*Unary) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Logical) exprNode()     {}
func (*Conditional) exprNode() {}
func (*Member) exprNode()      {}
func (*Index) exprNode()       {}
func (*Assign) exprNode()      {}
func (*Template) exprNode()    {}
func (*Call) exprNode()        {}

func (*ExprStmt) stmtNode() {}
func (*VarDecl) stmtNode()  {}
func (*Return) stmtNode()   {}

// Operator precedence, loosest first.
const (
	precLowest = iota
	precAssign
	precConditional
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPrefix
	precPostfix
	precPrimary
)

var binaryPrec = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"==": precEquality,
	"!=": precEquality,
	"<":  precComparison,
	"<=": precComparison,
	">":  precComparison,
	">=": precComparison,
	"+":  precSum,
	"-":  precSum,
	"*":  precProduct,
	"/":  precProduct,
	"%":  precProduct,
}

func precedence(x Expr) int {
	switch n := x.(type) {
	case *Assign:
		return precAssign
	case *Conditional:
		return precConditional
	case *Logical:
		return binaryPrec[n.Op]
	case *Binary:
		return binaryPrec[n.Op]
	case *Unary:
		return precPrefix
	case *Member, *Index, *Call:
		return precPostfix
	default:
		return precPrimary
	}
}

// wrap formats x, parenthesized when its precedence is below min.
func wrap(x Expr, min int) string {
	if precedence(x) < min {
		return "(" + x.String() + ")"
	}

	return x.String()
}

func (n *Literal) String() string {
	switch v := n.Value.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}

		return s
	case string:
		return quote(v)
	default:
		return "null"
	}
}

func (n *Ident) String() string { return n.Name }

func (n *Unary) String() string { return n.Op + wrap(n.X, precPrefix) }

func (n *Binary) String() string {
	p := binaryPrec[n.Op]

	return wrap(n.X, p) + " " + n.Op + " " + wrap(n.Y, p+1)
}

func (n *Logical) String() string {
	p := binaryPrec[n.Op]

	return wrap(n.X, p) + " " + n.Op + " " + wrap(n.Y, p+1)
}

func (n *Conditional) String() string {
	return wrap(n.Cond, precOr) + " ? " + wrap(n.Then, precConditional) +
		" : " + wrap(n.Else, precConditional)
}

func (n *Member) String() string { return wrap(n.X, precPostfix) + "." + n.Name }

func (n *Index) String() string {
	return wrap(n.X, precPostfix) + "[" + n.Key.String() + "]"
}

func (n *Assign) String() string {
	return n.Target.String() + " " + n.Op + " " + wrap(n.Value, precAssign)
}

func (n *Template) String() string {
	var sb strings.Builder

	sb.WriteByte('`')

	for _, part := range n.Parts {
		if part.X != nil {
			sb.WriteString("${")
			sb.WriteString(part.X.String())
			sb.WriteByte('}')

			continue
		}

		r := strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", `\${`)
		sb.WriteString(r.Replace(part.Text))
	}

	sb.WriteByte('`')

	return sb.String()
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}

	return wrap(n.Fun, precPostfix) + "(" + strings.Join(args, ", ") + ")"
}

func (n *ExprStmt) String() string { return n.X.String() }

func (n *VarDecl) String() string {
	if n.Value == nil {
		return "var " + n.Name
	}

	return "var " + n.Name + " = " + n.Value.String()
}

func (n *Return) String() string {
	if n.Value == nil {
		return "return"
	}

	return "return " + n.Value.String()
}

// String formats the block as canonical source, one statement per line.
func (n *Block) String() string {
	lines := make([]string, len(n.Stmts))
	for i, s := range n.Stmts {
		lines[i] = s.String() + ";"
	}

	return strings.Join(lines, "\n")
}

// quote renders s as a double-quoted literal using only the escapes the
// lexer understands.
func quote(s string) string {
	var sb strings.Builder

	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(`\u`)

				h := strconv.FormatInt(int64(r), 16)
				sb.WriteString(strings.Repeat("0", 4-len(h)) + h)

				continue
			}

			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}
