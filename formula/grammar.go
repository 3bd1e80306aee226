package formula

import (
	"errors"
	"fmt"

	"github.com/midbel/mis/formula/op"
)

const (
	powLowest = iota
	powEq
	powCmp
	powAdd
	powMul
	powUnary
	powProp
	powCall
)

var defaultBindings = map[op.Op]int{
	op.Add:    powAdd,
	op.Sub:    powAdd,
	op.Mul:    powMul,
	op.Div:    powMul,
	op.Eq:     powEq,
	op.Ne:     powEq,
	op.Lt:     powCmp,
	op.Le:     powCmp,
	op.Gt:     powCmp,
	op.Ge:     powCmp,
	op.BegGrp: powCall,
	op.Dot:    powProp,
}

type (
	PrefixFunc func(*Parser) (Expr, error)
	InfixFunc  func(*Parser, Expr) (Expr, error)
)

var ErrForbidden = errors.New("not allowed")

func forbiddenInfix(_ *Parser, _ Expr) (Expr, error) {
	return nil, fmt.Errorf("%w: infix operator", ErrForbidden)
}

func forbiddenPrefix(_ *Parser) (Expr, error) {
	return nil, fmt.Errorf("%w: prefix operator", ErrForbidden)
}

type Grammar struct {
	name string

	prefix   map[op.Op]PrefixFunc
	infix    map[op.Op]InfixFunc
	postfix  map[op.Op]InfixFunc
	bindings map[op.Op]int
}

func NewGrammar(name string) *Grammar {
	g := Grammar{
		name:     name,
		prefix:   make(map[op.Op]PrefixFunc),
		infix:    make(map[op.Op]InfixFunc),
		postfix:  make(map[op.Op]InfixFunc),
		bindings: make(map[op.Op]int),
	}
	for k, p := range defaultBindings {
		g.bindings[k] = p
	}
	return &g
}

// ExprGrammar accepts the arithmetic used by KPI expressions: numbers,
// strings, identifiers, member access, lists, comparisons and calls to
// registered builtins.
func ExprGrammar() *Grammar {
	g := NewGrammar("expr")

	g.RegisterPrefix(op.Number, parseNumber)
	g.RegisterPrefix(op.Literal, parseLiteral)
	g.RegisterPrefix(op.Ident, parseIdentifier)
	g.RegisterPrefix(op.Sub, parseUnary)
	g.RegisterPrefix(op.Add, parseUnary)
	g.RegisterPrefix(op.BegGrp, parseGroup)
	g.RegisterPrefix(op.BegList, parseList)

	g.RegisterPostfix(op.BegGrp, parseCall)
	g.RegisterPostfix(op.Dot, parseAccess)

	g.RegisterInfix(op.Add, parseBinary)
	g.RegisterInfix(op.Sub, parseBinary)
	g.RegisterInfix(op.Mul, parseBinary)
	g.RegisterInfix(op.Div, parseBinary)
	g.RegisterInfix(op.Eq, parseBinary)
	g.RegisterInfix(op.Ne, parseBinary)
	g.RegisterInfix(op.Lt, parseBinary)
	g.RegisterInfix(op.Le, parseBinary)
	g.RegisterInfix(op.Gt, parseBinary)
	g.RegisterInfix(op.Ge, parseBinary)

	return g
}

func (g *Grammar) Context() string {
	return g.name
}

func (g *Grammar) Pow(kind op.Op) int {
	pow, ok := g.bindings[kind]
	if !ok {
		pow = powLowest
	}
	return pow
}

func (g *Grammar) Prefix(tok Token) (PrefixFunc, error) {
	fn, ok := g.prefix[tok.Type]
	if !ok {
		return nil, fmt.Errorf("(%s) %s: unsupported prefix operator (%s)", tok.Position, g.name, tok)
	}
	return fn, nil
}

func (g *Grammar) Infix(tok Token) (InfixFunc, error) {
	fn, ok := g.infix[tok.Type]
	if !ok {
		return nil, fmt.Errorf("(%s) %s: unsupported infix operator (%s)", tok.Position, g.name, tok)
	}
	return fn, nil
}

func (g *Grammar) Postfix(tok Token) (InfixFunc, error) {
	fn, ok := g.postfix[tok.Type]
	if !ok {
		return nil, fmt.Errorf("(%s) %s: unsupported postfix operator (%s)", tok.Position, g.name, tok)
	}
	return fn, nil
}

func (g *Grammar) RegisterInfix(kd op.Op, fn InfixFunc) {
	g.infix[kd] = fn
}

func (g *Grammar) UnregisterInfix(kd op.Op) {
	g.infix[kd] = forbiddenInfix
}

func (g *Grammar) RegisterPostfix(kd op.Op, fn InfixFunc) {
	g.postfix[kd] = fn
}

func (g *Grammar) UnregisterPostfix(kd op.Op) {
	g.postfix[kd] = forbiddenInfix
}

func (g *Grammar) RegisterPrefix(kd op.Op, fn PrefixFunc) {
	g.prefix[kd] = fn
}

func (g *Grammar) UnregisterPrefix(kd op.Op) {
	g.prefix[kd] = forbiddenPrefix
}

func (g *Grammar) RegisterBinding(kd op.Op, pow int) {
	g.bindings[kd] = pow
}
