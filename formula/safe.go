package formula

import (
	"errors"
	"slices"

	"github.com/midbel/mis/value"
)

// SafeEval parses and evaluates str. It never fails: every failure is
// turned into an error value that can be stored in a cell.
func SafeEval(str string, ctx Resolver) value.Value {
	expr, err := Parse(str)
	if err != nil {
		return value.Fail(err.Error())
	}
	return SafeEvalExpr(expr, ctx)
}

func SafeEvalExpr(expr Expr, ctx Resolver) value.Value {
	v, err := Eval(expr, ctx)
	if err == nil {
		return v
	}
	switch {
	case errors.Is(err, ErrUndefined):
		return value.Undefined(err.Error())
	case errors.Is(err, value.ErrDivZero):
		return value.DivZero(err.Error())
	default:
		return value.Fail(err.Error())
	}
}

// Names returns the identifiers referenced by expr in order of first
// appearance.
func Names(expr Expr) []string {
	var names []string
	walk(expr, func(e Expr) {
		id, ok := e.(identifier)
		if !ok || id.name == AccountingNone {
			return
		}
		if !slices.Contains(names, id.name) {
			names = append(names, id.name)
		}
	})
	return names
}

func walk(expr Expr, visit func(Expr)) {
	visit(expr)
	switch e := expr.(type) {
	case binary:
		walk(e.left, visit)
		walk(e.right, visit)
	case unary:
		walk(e.expr, visit)
	case group:
		walk(e.expr, visit)
	case access:
		walk(e.expr, visit)
	case list:
		for i := range e.items {
			walk(e.items[i], visit)
		}
	case call:
		for i := range e.args {
			walk(e.args[i], visit)
		}
	}
}
