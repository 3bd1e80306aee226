package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/midbel/mis/formula/op"
)

type Parser struct {
	scan *Scanner
	curr Token
	peek Token

	grammar *Grammar
}

// Parse parses a KPI expression with the default grammar.
func Parse(str string) (Expr, error) {
	return NewParser(ExprGrammar()).ParseString(str)
}

func NewParser(g *Grammar) *Parser {
	return &Parser{
		grammar: g,
	}
}

func (p *Parser) ParseString(str string) (Expr, error) {
	p.scan = Scan(str)
	p.next()
	p.next()
	if p.done() {
		return nil, p.makeError("empty expression")
	}
	expr, err := p.parse(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.makeError(fmt.Sprintf("unexpected %s after expression", p.curr))
	}
	return expr, nil
}

func (p *Parser) parse(pow int) (Expr, error) {
	fn, err := p.grammar.Prefix(p.curr)
	if err != nil {
		return nil, err
	}
	left, err := fn(p)
	if err != nil {
		return nil, err
	}
	for {
		fn, err := p.grammar.Postfix(p.curr)
		if err != nil {
			break
		}
		left, err = fn(p, left)
		if err != nil {
			return nil, err
		}
	}
	for !p.done() && pow < p.pow(p.curr.Type) {
		fn, err := p.grammar.Infix(p.curr)
		if err != nil {
			return nil, err
		}
		left, err = fn(p, left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) next() {
	p.curr = p.peek
	p.peek = p.scan.Scan()
}

func (p *Parser) done() bool {
	return p.is(op.EOF)
}

func (p *Parser) is(kind op.Op) bool {
	return p.curr.Type == kind
}

func (p *Parser) currentLiteral() string {
	return p.curr.Literal
}

func (p *Parser) pow(kind op.Op) int {
	return p.grammar.Pow(kind)
}

func (p *Parser) makeError(msg string) error {
	return fmt.Errorf("(%s) %s: %s", p.grammar.Context(), p.curr.Position, msg)
}

func (p *Parser) expectedIdent() error {
	return p.makeError("identifier expected")
}

func parseCall(p *Parser, expr Expr) (Expr, error) {
	id, ok := expr.(identifier)
	if !ok {
		return nil, p.makeError(fmt.Sprintf("%s is not callable", expr))
	}
	if _, ok := Builtins[id.name]; !ok {
		return nil, fmt.Errorf("%s: %w: unknown function", id.name, ErrForbidden)
	}
	p.next()
	args, err := parseSequence(p, op.EndGrp)
	if err != nil {
		return nil, err
	}
	return NewCall(id.name, args), nil
}

func parseList(p *Parser) (Expr, error) {
	p.next()
	items, err := parseSequence(p, op.EndList)
	if err != nil {
		return nil, err
	}
	return NewList(items), nil
}

func parseSequence(p *Parser, end op.Op) ([]Expr, error) {
	var list []Expr
	for !p.done() && !p.is(end) {
		arg, err := p.parse(powLowest)
		if err != nil {
			return nil, err
		}
		switch p.curr.Type {
		case op.Comma:
			p.next()
			if p.is(end) {
				return nil, p.makeError("unexpected end of sequence after ','")
			}
		case end:
		default:
			return nil, p.makeError(fmt.Sprintf("unexpected %s in sequence", p.curr))
		}
		list = append(list, arg)
	}
	if !p.is(end) {
		return nil, p.makeError("unterminated sequence")
	}
	p.next()
	return list, nil
}

func parseBinary(p *Parser, left Expr) (Expr, error) {
	oper := p.curr.Type
	p.next()
	right, err := p.parse(p.pow(oper))
	if err != nil {
		return nil, err
	}
	return NewBinary(left, right, oper), nil
}

func parseUnary(p *Parser) (Expr, error) {
	oper := p.curr.Type
	p.next()
	right, err := p.parse(powUnary)
	if err != nil {
		return nil, err
	}
	return NewUnary(right, oper), nil
}

func parseGroup(p *Parser) (Expr, error) {
	p.next()
	expr, err := p.parse(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.is(op.EndGrp) {
		return nil, p.makeError("missing ')' at end of expression")
	}
	p.next()
	return group{expr: expr}, nil
}

func parseNumber(p *Parser) (Expr, error) {
	defer p.next()

	x, err := strconv.ParseFloat(p.currentLiteral(), 64)
	if err != nil {
		return nil, p.makeError(fmt.Sprintf("invalid number %s", p.currentLiteral()))
	}
	return NewNumber(x), nil
}

func parseLiteral(p *Parser) (Expr, error) {
	lit := p.currentLiteral()
	p.next()
	return NewLiteral(lit), nil
}

func parseIdentifier(p *Parser) (Expr, error) {
	id := NewIdentifier(p.currentLiteral())
	p.next()
	return id, nil
}

func parseAccess(p *Parser, left Expr) (Expr, error) {
	p.next()
	if !p.is(op.Ident) {
		return nil, p.expectedIdent()
	}
	prop := p.currentLiteral()
	if strings.HasPrefix(prop, "_") {
		return nil, fmt.Errorf("%s: %w: private member", prop, ErrForbidden)
	}
	p.next()
	return NewAccess(left, prop), nil
}
