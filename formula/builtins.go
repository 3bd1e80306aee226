package formula

import (
	"errors"
	"fmt"

	"github.com/midbel/mis/value"
)

var ErrArity = errors.New("invalid number of arguments")

type Builtin func([]value.Value) (value.Value, error)

// Builtins is the complete list of functions an expression can call.
var Builtins = map[string]Builtin{
	"sum":   callSum,
	"avg":   callAvg,
	"min":   callMin,
	"max":   callMax,
	"len":   callLen,
	"abs":   callAbs,
	"round": callRound,
	"if":    callIf,
}

func callSum(args []value.Value) (value.Value, error) {
	return value.Sum(flatten(args))
}

func callAvg(args []value.Value) (value.Value, error) {
	return value.Avg(flatten(args))
}

func callMin(args []value.Value) (value.Value, error) {
	return value.Min(flatten(args))
}

func callMax(args []value.Value) (value.Value, error) {
	return value.Max(flatten(args))
}

func callLen(args []value.Value) (value.Value, error) {
	return value.Float(len(flatten(args))), nil
}

func callAbs(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("abs: %w", ErrArity)
	}
	return value.Abs(args[0])
}

func callRound(args []value.Value) (value.Value, error) {
	var dp float64
	switch len(args) {
	case 1:
	case 2:
		f, ok := args[1].(value.Float)
		if !ok {
			return nil, fmt.Errorf("round: precision must be a number: %w", value.ErrType)
		}
		dp = float64(f)
		if !(dp >= -value.MaxPrecision && dp <= value.MaxPrecision) {
			return nil, fmt.Errorf("round: precision out of range: %w", value.ErrType)
		}
	default:
		return nil, fmt.Errorf("round: %w", ErrArity)
	}
	return value.Round(args[0], int(dp))
}

func callIf(args []value.Value) (value.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, fmt.Errorf("if: %w", ErrArity)
	}
	if value.Truth(args[0]) {
		return args[1], nil
	}
	if len(args) == 3 {
		return args[2], nil
	}
	return value.None, nil
}

// flatten spreads a single array argument so that sum(x) and sum(a, b)
// behave alike.
func flatten(args []value.Value) []value.Value {
	if len(args) != 1 {
		return args
	}
	if arr, ok := args[0].(value.Array); ok {
		return arr.Values()
	}
	return args
}
