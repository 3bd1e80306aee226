package formula

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/midbel/mis/formula/op"
)

type Scanner struct {
	input []byte
	pos   int
	next  int
	char  rune

	Position

	buf bytes.Buffer
}

func Scan(str string) *Scanner {
	scan := Scanner{
		input: []byte(str),
	}
	scan.Position.Line = 1
	scan.read()
	return &scan
}

func (s *Scanner) Scan() Token {
	s.skipBlanks()

	var tok Token
	tok.Position = s.Position
	if s.done() {
		tok.Type = op.EOF
		return tok
	}
	defer s.reset()
	switch {
	case isDigit(s.char) || (s.char == dot && isDigit(s.peek())):
		s.scanNumber(&tok)
	case isOperator(s.char):
		s.scanOperator(&tok)
	case isDelimiter(s.char):
		s.scanDelimiter(&tok)
	case isQuote(s.char):
		s.scanLiteral(&tok)
	case isLetter(s.char):
		s.scanIdent(&tok)
	default:
		tok.Type = op.Invalid
		tok.Literal = string(s.char)
		s.read()
	}
	return tok
}

func (s *Scanner) scanIdent(tok *Token) {
	for !s.done() && isAlpha(s.char) {
		s.write()
		s.read()
	}
	tok.Type = op.Ident
	tok.Literal = s.literal()
}

func (s *Scanner) scanNumber(tok *Token) {
	tok.Type = op.Number
	for !s.done() && isDigit(s.char) {
		s.write()
		s.read()
	}
	if s.char == dot {
		s.write()
		s.read()
		for !s.done() && isDigit(s.char) {
			s.write()
			s.read()
		}
	}
	if s.char == 'e' || s.char == 'E' {
		s.write()
		s.read()
		if s.char == plus || s.char == minus {
			s.write()
			s.read()
		}
		if !isDigit(s.char) {
			tok.Type = op.Invalid
		}
		for !s.done() && isDigit(s.char) {
			s.write()
			s.read()
		}
	}
	tok.Literal = s.literal()
}

func (s *Scanner) scanLiteral(tok *Token) {
	quote := s.char
	s.read()
	for !s.done() && s.char != quote {
		s.write()
		s.read()
	}
	tok.Type = op.Literal
	tok.Literal = s.literal()
	if strings.ContainsRune(tok.Literal, utf8.RuneError) || strings.ContainsRune(tok.Literal, 0) {
		tok.Type = op.Invalid
	}
	if s.char == quote {
		s.read()
	} else {
		tok.Type = op.Invalid
	}
}

func (s *Scanner) scanOperator(tok *Token) {
	tok.Type = op.Invalid
	switch s.char {
	case dot:
		tok.Type = op.Dot
	case plus:
		tok.Type = op.Add
	case minus:
		tok.Type = op.Sub
	case star:
		tok.Type = op.Mul
	case slash:
		tok.Type = op.Div
	case langle:
		tok.Type = op.Lt
		if s.peek() == equal {
			s.read()
			tok.Type = op.Le
		} else if s.peek() == rangle {
			s.read()
			tok.Type = op.Ne
		}
	case rangle:
		tok.Type = op.Gt
		if s.peek() == equal {
			s.read()
			tok.Type = op.Ge
		}
	case equal:
		if s.peek() == equal {
			s.read()
			tok.Type = op.Eq
		}
	case bang:
		if s.peek() == equal {
			s.read()
			tok.Type = op.Ne
		}
	default:
	}
	if tok.Type == op.Invalid {
		tok.Literal = string(s.char)
	}
	s.read()
}

func (s *Scanner) scanDelimiter(tok *Token) {
	tok.Type = op.Invalid
	switch s.char {
	case comma:
		tok.Type = op.Comma
	case lparen:
		tok.Type = op.BegGrp
	case rparen:
		tok.Type = op.EndGrp
	case lsquare:
		tok.Type = op.BegList
	case rsquare:
		tok.Type = op.EndList
	default:
	}
	s.read()
}

func (s *Scanner) literal() string {
	return s.buf.String()
}

func (s *Scanner) write() {
	s.buf.WriteRune(s.char)
}

func (s *Scanner) reset() {
	s.buf.Reset()
}

func (s *Scanner) read() {
	if s.next >= len(s.input) {
		s.char = 0
		s.pos = len(s.input)
		return
	}
	r, n := utf8.DecodeRune(s.input[s.next:])
	s.char, s.pos, s.next = r, s.next, s.next+n

	if s.char == nl {
		s.Line += 1
		s.Column = 0
	}
	s.Column++
}

func (s *Scanner) peek() rune {
	if s.next >= len(s.input) {
		return 0
	}
	r, _ := utf8.DecodeRune(s.input[s.next:])
	return r
}

// done reports the end of the input. Invalid bytes and NUL runes are not the
// end: they are scanned as invalid tokens.
func (s *Scanner) done() bool {
	return s.pos >= len(s.input)
}

func (s *Scanner) skipBlanks() {
	for isBlank(s.char) {
		s.read()
	}
}

const (
	underscore = '_'
	bang       = '!'
	comma      = ','
	rparen     = ')'
	lparen     = '('
	squote     = '\''
	dquote     = '"'
	space      = ' '
	tab        = '\t'
	plus       = '+'
	minus      = '-'
	star       = '*'
	slash      = '/'
	equal      = '='
	langle     = '<'
	rangle     = '>'
	dot        = '.'
	nl         = '\n'
	cr         = '\r'
	lsquare    = '['
	rsquare    = ']'
)

func isQuote(c rune) bool {
	return c == squote || c == dquote
}

func isLower(c rune) bool {
	return c >= 'a' && c <= 'z'
}

func isUpper(c rune) bool {
	return c >= 'A' && c <= 'Z'
}

func isLetter(c rune) bool {
	return isLower(c) || isUpper(c) || c == underscore
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c rune) bool {
	return isLetter(c) || isDigit(c)
}

func isBlank(c rune) bool {
	return c == space || c == tab || c == nl || c == cr
}

func isDelimiter(c rune) bool {
	return c == lparen || c == rparen || c == comma ||
		c == lsquare || c == rsquare
}

func isOperator(c rune) bool {
	return c == plus || c == minus || c == slash || c == star ||
		c == langle || c == rangle || c == equal || c == bang ||
		c == dot
}
