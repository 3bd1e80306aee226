package formula

import (
	"errors"
	"fmt"

	"github.com/midbel/mis/formula/op"
	"github.com/midbel/mis/value"
)

var ErrEval = errors.New("expression can not be evaluated")

// AccountingNone is always bound to the null value.
const AccountingNone = "AccountingNone"

func Eval(expr Expr, ctx Resolver) (value.Value, error) {
	switch e := expr.(type) {
	case binary:
		return evalBinary(e, ctx)
	case unary:
		return evalUnary(e, ctx)
	case group:
		return Eval(e.expr, ctx)
	case literal:
		return value.Text(e.value), nil
	case number:
		return value.Float(e.value), nil
	case identifier:
		return evalIdentifier(e, ctx)
	case access:
		return evalAccess(e, ctx)
	case list:
		return evalList(e, ctx)
	case call:
		return evalCall(e, ctx)
	default:
		return nil, ErrEval
	}
}

func evalIdentifier(e identifier, ctx Resolver) (value.Value, error) {
	if e.name == AccountingNone {
		return value.None, nil
	}
	if ctx == nil {
		return nil, fmt.Errorf("%s: %w", e.name, ErrUndefined)
	}
	return ctx.Resolve(e.name)
}

func evalAccess(e access, ctx Resolver) (value.Value, error) {
	obj, err := Eval(e.expr, ctx)
	if err != nil {
		return nil, err
	}
	switch obj := obj.(type) {
	case value.Error:
		return obj, nil
	case value.Array:
		if !obj.Named() {
			return nil, fmt.Errorf("%s: %w: array has no named members", e, ErrEval)
		}
		v, ok := obj.Get(e.prop)
		if !ok {
			return nil, fmt.Errorf("%s: %w: no such member", e, ErrEval)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%s: %w: member access on %s", e, value.ErrType, kindOf(obj))
	}
}

func evalList(e list, ctx Resolver) (value.Value, error) {
	values, err := evalArgs(e.items, ctx)
	if err != nil {
		return nil, err
	}
	return value.NewArray(values...), nil
}

func evalCall(e call, ctx Resolver) (value.Value, error) {
	fn, ok := Builtins[e.ident]
	if !ok {
		return nil, fmt.Errorf("%s: %w: unknown function", e.ident, ErrForbidden)
	}
	if e.ident == "if" {
		return evalIf(e, ctx)
	}
	args, err := evalArgs(e.args, ctx)
	if err != nil {
		return nil, err
	}
	return fn(args)
}

// evalIf only evaluates the selected branch.
func evalIf(e call, ctx Resolver) (value.Value, error) {
	if len(e.args) < 2 || len(e.args) > 3 {
		return nil, fmt.Errorf("if: %w", ErrArity)
	}
	cdt, err := Eval(e.args[0], ctx)
	if err != nil {
		return nil, err
	}
	if value.IsError(cdt) {
		return cdt, nil
	}
	if value.Truth(cdt) {
		return Eval(e.args[1], ctx)
	}
	if len(e.args) == 3 {
		return Eval(e.args[2], ctx)
	}
	return value.None, nil
}

func evalArgs(exprs []Expr, ctx Resolver) ([]value.Value, error) {
	var values []value.Value
	for i := range exprs {
		v, err := Eval(exprs[i], ctx)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func evalUnary(e unary, ctx Resolver) (value.Value, error) {
	val, err := Eval(e.expr, ctx)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case op.Sub:
		return value.Neg(val)
	case op.Add:
		return value.Pos(val)
	default:
		return nil, fmt.Errorf("%w: unsupported unary operator", ErrEval)
	}
}

func evalBinary(e binary, ctx Resolver) (value.Value, error) {
	left, err := Eval(e.left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := Eval(e.right, ctx)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case op.Add:
		return value.Add(left, right)
	case op.Sub:
		return value.Sub(left, right)
	case op.Mul:
		return value.Mul(left, right)
	case op.Div:
		return value.Div(left, right)
	}
	if !op.IsComparison(e.op) {
		return nil, fmt.Errorf("%w: unsupported binary operator", ErrEval)
	}
	if value.IsError(left) {
		return left, nil
	}
	if value.IsError(right) {
		return right, nil
	}
	var ok bool
	switch e.op {
	case op.Eq:
		ok = value.Equal(left, right)
	case op.Ne:
		ok = !value.Equal(left, right)
	default:
		c, err := value.Compare(left, right)
		if err != nil {
			return nil, err
		}
		switch e.op {
		case op.Lt:
			ok = c < 0
		case op.Le:
			ok = c <= 0
		case op.Gt:
			ok = c > 0
		case op.Ge:
			ok = c >= 0
		}
	}
	if ok {
		return value.Float(1), nil
	}
	return value.Float(0), nil
}

func kindOf(v value.Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}
