package lang

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize converts script text into a token slice terminated by a
// [KindEOF] token. It fails with a [*LexError] on an unrecognized
// character or an unterminated string, template, interpolation, or
// comment.
func Tokenize(text string) ([]Token, error) {
	return tokenizeAt(text, Position{Line: 1, Column: 1})
}

// tokenizeAt tokenizes text whose first byte is located at start. It is used
// for interpolation segments so that positions refer to the enclosing
// source.
func tokenizeAt(text string, start Position) ([]Token, error) {
	s := &scanner{src: text, pos: start}

	var toks []Token

	for {
		tok, err := s.token()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.Kind == KindEOF {
			return toks, nil
		}
	}
}

// scanner holds the lexer state over a single source string.
type scanner struct {
	src string
	off int      // byte offset of the next unread rune
	pos Position // position of the next unread rune
}

// segment is one piece of a template literal: either raw literal text or
// the raw source of an embedded ${...} expression.
type segment struct {
	text string
	expr bool
	pos  Position
}

func lexErr(pos Position, format string, args ...any) *LexError {
	return &LexError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// token scans the next token.
func (s *scanner) token() (Token, error) {
	err := s.skipWhitespaceAndComments()
	if err != nil {
		return Token{}, err
	}

	pos := s.pos

	if s.eof() {
		return Token{Kind: KindEOF, Pos: pos}, nil
	}

	ch := s.peek()

	switch {
	case isIdentifierStart(ch):
		start := s.off
		for !s.eof() && isIdentifierContinue(s.peek()) {
			s.next()
		}

		word := s.src[start:s.off]
		if keywords[word] {
			return Token{Kind: KindKeyword, Lexeme: word, Pos: pos}, nil
		}

		return Token{Kind: KindIdent, Lexeme: word, Pos: pos}, nil

	case isDigit(ch):
		return s.scanNumber()

	case ch == '"' || ch == '\'':
		text, err := s.scanQuoted(ch)
		if err != nil {
			return Token{}, err
		}

		return Token{Kind: KindString, Lexeme: text, Pos: pos}, nil

	case ch == '`':
		s.next()

		start := s.off

		_, err := s.scanTemplate(pos)
		if err != nil {
			return Token{}, err
		}

		// s.off is just past the closing backtick.
		return Token{
			Kind:   KindTemplate,
			Lexeme: s.src[start : s.off-1],
			Pos:    pos,
		}, nil
	}

	if op := s.matchOperator(); op != "" {
		return Token{Kind: KindOperator, Lexeme: op, Pos: pos}, nil
	}

	if strings.ContainsRune("()[]{}.,;:?", ch) {
		s.next()

		return Token{Kind: KindPunct, Lexeme: string(ch), Pos: pos}, nil
	}

	return Token{}, lexErr(pos, "unrecognized character %q", ch)
}

// operators lists operator lexemes, longest first so that the first match
// wins.
var operators = []string{
	"==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=",
	"=", "<", ">", "+", "-", "*", "/", "%", "!", "&", "|", "^", "~",
}

func (s *scanner) matchOperator() string {
	rest := s.src[s.off:]

	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			for range op {
				s.next()
			}

			return op
		}
	}

	return ""
}

// scanNumber scans an integer or float literal: digits, an optional
// fraction, and an optional exponent.
func (s *scanner) scanNumber() (Token, error) {
	pos := s.pos
	start := s.off
	kind := KindInt

	s.digits()

	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		kind = KindFloat

		s.next()
		s.digits()
	}

	if r := s.peek(); r == 'e' || r == 'E' {
		kind = KindFloat

		s.next()

		if r := s.peek(); r == '+' || r == '-' {
			s.next()
		}

		if !isDigit(s.peek()) {
			return Token{}, lexErr(pos, "malformed number %q", s.src[start:s.off])
		}

		s.digits()
	}

	if !s.eof() && isIdentifierContinue(s.peek()) {
		s.next()

		return Token{}, lexErr(pos, "malformed number %q", s.src[start:s.off])
	}

	return Token{Kind: kind, Lexeme: s.src[start:s.off], Pos: pos}, nil
}

func (s *scanner) digits() {
	for isDigit(s.peek()) {
		s.next()
	}
}

// scanQuoted scans a string delimited by quote and returns its decoded
// text. The scanner must be positioned on the opening quote.
func (s *scanner) scanQuoted(quote rune) (string, error) {
	open := s.pos

	s.next()

	var sb strings.Builder

	for !s.eof() {
		ch := s.next()

		switch ch {
		case quote:
			return sb.String(), nil

		case '\\':
			err := s.escape(&sb, open)
			if err != nil {
				return "", err
			}

		default:
			sb.WriteRune(ch)
		}
	}

	return "", lexErr(open, "unterminated string literal")
}

// escape decodes one escape sequence; the backslash is already consumed.
func (s *scanner) escape(sb *strings.Builder, open Position) error {
	if s.eof() {
		return lexErr(open, "unterminated string literal")
	}

	pos := s.pos
	ch := s.next()

	switch ch {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case '0':
		sb.WriteByte(0)
	case '\\', '"', '\'', '`', '$':
		sb.WriteRune(ch)
	case 'u':
		if s.off+4 > len(s.src) {
			return lexErr(pos, "truncated unicode escape")
		}

		code, err := strconv.ParseUint(s.src[s.off:s.off+4], 16, 32)
		if err != nil {
			return lexErr(pos, "invalid unicode escape %q", s.src[s.off:s.off+4])
		}

		for range 4 {
			s.next()
		}

		sb.WriteRune(rune(code))
	default:
		return lexErr(pos, "unknown escape sequence \\%c", ch)
	}

	return nil
}

// scanTemplate scans the body of a template literal up to and including the
// closing backtick. The opening backtick (at open) is already consumed.
// It returns the literal and expression segments in source order.
func (s *scanner) scanTemplate(open Position) ([]segment, error) {
	var segs []segment

	litStart, litPos := s.off, s.pos

	flush := func() {
		if s.off > litStart {
			segs = append(segs, segment{text: s.src[litStart:s.off], pos: litPos})
		}
	}

	for !s.eof() {
		ch := s.peek()

		switch {
		case ch == '\\':
			s.next()

			if !s.eof() {
				s.next()
			}

		case ch == '`':
			flush()
			s.next()

			return segs, nil

		case ch == '$' && s.peekAt(1) == '{':
			flush()

			dollar := s.pos

			s.next()
			s.next()

			exprStart, exprPos := s.off, s.pos

			err := s.skipBalanced(dollar)
			if err != nil {
				return nil, err
			}

			segs = append(segs, segment{
				text: s.src[exprStart:s.off],
				expr: true,
				pos:  exprPos,
			})

			s.next() // closing '}'

			litStart, litPos = s.off, s.pos

		default:
			s.next()
		}
	}

	return nil, lexErr(open, "unterminated template literal")
}

// skipBalanced advances to the '}' that closes an interpolation opened at
// open, skipping nested braces and string literals.
func (s *scanner) skipBalanced(open Position) error {
	depth := 0

	for !s.eof() {
		switch ch := s.peek(); ch {
		case '{':
			depth++

			s.next()

		case '}':
			if depth == 0 {
				return nil
			}

			depth--

			s.next()

		case '"', '\'':
			_, err := s.scanQuoted(ch)
			if err != nil {
				return err
			}

		case '`':
			p := s.pos

			s.next()

			_, err := s.scanTemplate(p)
			if err != nil {
				return err
			}

		default:
			s.next()
		}
	}

	return lexErr(open, "unterminated interpolation")
}

// splitTemplate splits the raw body of a template token (whose opening
// backtick is at open) into segments.
func splitTemplate(raw string, open Position) ([]segment, error) {
	s := &scanner{src: raw + "`", pos: open.advance('`', 1)}

	return s.scanTemplate(open)
}

// unescapeTemplate decodes escape sequences in a literal template segment.
func unescapeTemplate(text string, pos Position) (string, error) {
	if !strings.ContainsRune(text, '\\') {
		return text, nil
	}

	s := &scanner{src: text, pos: pos}

	var sb strings.Builder

	for !s.eof() {
		ch := s.next()
		if ch != '\\' {
			sb.WriteRune(ch)

			continue
		}

		err := s.escape(&sb, pos)
		if err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}

func (s *scanner) skipWhitespaceAndComments() error {
	for !s.eof() {
		ch := s.peek()

		switch {
		case unicode.IsSpace(ch):
			s.next()

		case ch == '#', ch == '/' && s.peekAt(1) == '/':
			for !s.eof() && s.peek() != '\n' {
				s.next()
			}

		case ch == '/' && s.peekAt(1) == '*':
			open := s.pos

			s.next()
			s.next()

			closed := false

			for !s.eof() {
				if s.peek() == '*' && s.peekAt(1) == '/' {
					s.next()
					s.next()

					closed = true

					break
				}

				s.next()
			}

			if !closed {
				return lexErr(open, "unterminated block comment")
			}

		default:
			return nil
		}
	}

	return nil
}

// Helper methods

func (s *scanner) eof() bool { return s.off >= len(s.src) }

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(s.src[s.off:])

	return r
}

// peekAt returns the rune n runes past the next unread rune.
func (s *scanner) peekAt(n int) rune {
	off := s.off

	for ; n > 0; n-- {
		if off >= len(s.src) {
			return 0
		}

		_, size := utf8.DecodeRuneInString(s.src[off:])
		off += size
	}

	if off >= len(s.src) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(s.src[off:])

	return r
}

func (s *scanner) next() rune {
	if s.eof() {
		return 0
	}

	r, size := utf8.DecodeRuneInString(s.src[s.off:])
	s.off += size
	s.pos = s.pos.advance(r, size)

	return r
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r)
}
