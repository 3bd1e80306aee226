package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/midbel/mis/formula/op"
)

type Expr interface {
	fmt.Stringer
}

type binary struct {
	left  Expr
	right Expr
	op    op.Op
}

func NewBinary(left, right Expr, oper op.Op) Expr {
	return binary{
		left:  left,
		right: right,
		op:    oper,
	}
}

func (b binary) String() string {
	return fmt.Sprintf("%s %s %s", b.left, op.Symbol(b.op), b.right)
}

type unary struct {
	expr Expr
	op   op.Op
}

func NewUnary(expr Expr, oper op.Op) Expr {
	return unary{
		expr: expr,
		op:   oper,
	}
}

func (u unary) String() string {
	return fmt.Sprintf("%s%s", op.Symbol(u.op), u.expr)
}

type group struct {
	expr Expr
}

func (g group) String() string {
	return fmt.Sprintf("(%s)", g.expr)
}

type number struct {
	value float64
}

func NewNumber(f float64) Expr {
	return number{
		value: f,
	}
}

func (n number) String() string {
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

type literal struct {
	value string
}

func NewLiteral(str string) Expr {
	return literal{
		value: str,
	}
}

func (i literal) String() string {
	return strconv.Quote(i.value)
}

type identifier struct {
	name string
}

func NewIdentifier(name string) Expr {
	return identifier{
		name: name,
	}
}

func (i identifier) String() string {
	return i.name
}

type access struct {
	expr Expr
	prop string
}

func NewAccess(expr Expr, prop string) Expr {
	return access{
		expr: expr,
		prop: prop,
	}
}

func (a access) String() string {
	return fmt.Sprintf("%s.%s", a.expr, a.prop)
}

type list struct {
	items []Expr
}

func NewList(items []Expr) Expr {
	return list{
		items: items,
	}
}

func (i list) String() string {
	return "[" + joinExprs(i.items) + "]"
}

type call struct {
	ident string
	args  []Expr
}

func NewCall(ident string, args []Expr) Expr {
	return call{
		ident: ident,
		args:  args,
	}
}

func (c call) String() string {
	return fmt.Sprintf("%s(%s)", c.ident, joinExprs(c.args))
}

func joinExprs(exprs []Expr) string {
	var str strings.Builder
	for i := range exprs {
		if i > 0 {
			str.WriteString(", ")
		}
		str.WriteString(exprs[i].String())
	}
	return str.String()
}
