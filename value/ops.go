package value

import (
	"cmp"
	"fmt"
	"math"
	"strings"
)

// Go nil stands for an absent value. It only combines with None; any other
// operation involving nil fails with ErrType.

func Add(left, right Value) (Value, error) {
	if isArray(left) || isArray(right) {
		return applyArray(left, right, Add)
	}
	if e, ok := firstError(left, right); ok {
		return e, nil
	}
	switch {
	case IsNone(left):
		if IsEmpty(right) {
			return None, nil
		}
		if IsNumber(right) || isText(right) {
			return right, nil
		}
	case IsNone(right):
		if left == nil {
			return None, nil
		}
		if IsNumber(left) || isText(left) {
			return left, nil
		}
	default:
		switch x := left.(type) {
		case Float:
			if y, ok := right.(Float); ok {
				return x + y, nil
			}
		case Text:
			if y, ok := right.(Text); ok {
				return x + y, nil
			}
		}
	}
	return nil, typeError("+", left, right)
}

func Sub(left, right Value) (Value, error) {
	if isArray(left) || isArray(right) {
		return applyArray(left, right, Sub)
	}
	if e, ok := firstError(left, right); ok {
		return e, nil
	}
	switch {
	case IsNone(left):
		if IsEmpty(right) {
			return None, nil
		}
		if f, ok := right.(Float); ok {
			return -f, nil
		}
	case IsNone(right):
		if left == nil {
			return None, nil
		}
		if IsNumber(left) {
			return left, nil
		}
	default:
		x, xok := left.(Float)
		y, yok := right.(Float)
		if xok && yok {
			return x - y, nil
		}
	}
	return nil, typeError("-", left, right)
}

func Mul(left, right Value) (Value, error) {
	if isArray(left) || isArray(right) {
		return applyArray(left, right, Mul)
	}
	if e, ok := firstError(left, right); ok {
		return e, nil
	}
	switch {
	case IsNone(left):
		if IsEmpty(right) {
			return None, nil
		}
		if IsNumber(right) {
			return Float(0), nil
		}
	case IsNone(right):
		if left == nil {
			return None, nil
		}
		if IsNumber(left) {
			return Float(0), nil
		}
	default:
		x, xok := left.(Float)
		y, yok := right.(Float)
		if xok && yok {
			return x * y, nil
		}
	}
	return nil, typeError("*", left, right)
}

func Div(left, right Value) (Value, error) {
	if isArray(left) || isArray(right) {
		return applyArray(left, right, Div)
	}
	if e, ok := firstError(left, right); ok {
		return e, nil
	}
	switch {
	case IsNone(left):
		if IsEmpty(right) {
			return None, nil
		}
		if IsNumber(right) {
			return Float(0), nil
		}
	case IsNone(right):
		if left == nil || IsNumber(left) {
			return nil, ErrDivZero
		}
	default:
		x, xok := left.(Float)
		y, yok := right.(Float)
		if xok && yok {
			if y == 0 {
				return nil, ErrDivZero
			}
			return x / y, nil
		}
	}
	return nil, typeError("/", left, right)
}

func Neg(v Value) (Value, error) {
	switch x := v.(type) {
	case Float:
		return -x, nil
	case Array:
		return x.apply(Neg), nil
	case Error:
		return x, nil
	default:
		if IsNone(v) {
			return None, nil
		}
		return nil, fmt.Errorf("unary -: %w", ErrType)
	}
}

func Pos(v Value) (Value, error) {
	switch x := v.(type) {
	case Float, Error:
		return x, nil
	case Array:
		return x.apply(Pos), nil
	default:
		if IsNone(v) {
			return None, nil
		}
		return nil, fmt.Errorf("unary +: %w", ErrType)
	}
}

func Abs(v Value) (Value, error) {
	switch x := v.(type) {
	case Float:
		return Float(math.Abs(float64(x))), nil
	case Array:
		return x.apply(Abs), nil
	case Error:
		return x, nil
	default:
		if IsNone(v) {
			return None, nil
		}
		return nil, fmt.Errorf("abs: %w", ErrType)
	}
}

// Compare orders two values. None compares like zero against numbers.
func Compare(left, right Value) (int, error) {
	if IsNone(left) {
		left = Float(0)
	}
	if IsNone(right) {
		right = Float(0)
	}
	switch x := left.(type) {
	case Float:
		if y, ok := right.(Float); ok {
			return cmp.Compare(x, y), nil
		}
	case Text:
		if y, ok := right.(Text); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	case Array:
		y, ok := right.(Array)
		if !ok {
			break
		}
		for i := 0; i < min(x.Len(), y.Len()); i++ {
			c, err := Compare(x.values[i], y.values[i])
			if err != nil || c != 0 {
				return c, err
			}
		}
		return cmp.Compare(x.Len(), y.Len()), nil
	}
	return 0, typeError("compare", left, right)
}

func Equal(left, right Value) bool {
	switch {
	case IsEmpty(left) && IsEmpty(right):
		return true
	case IsNone(left):
		f, ok := right.(Float)
		return ok && f == 0
	case IsNone(right):
		f, ok := left.(Float)
		return ok && f == 0
	}
	switch x := left.(type) {
	case Float:
		y, ok := right.(Float)
		return ok && x == y
	case Text:
		y, ok := right.(Text)
		return ok && x == y
	case Error:
		y, ok := right.(Error)
		return ok && x.Code == y.Code
	case Array:
		y, ok := right.(Array)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.values {
			if !Equal(x.values[i], y.values[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func Truth(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case Float:
		return x != 0
	case Text:
		return x != ""
	case Array:
		return x.Len() > 0
	case Error:
		return true
	default:
		return false
	}
}

// ToFloat returns the numeric value of v. None counts as zero.
func ToFloat(v Value) (float64, bool) {
	if IsNone(v) {
		return 0, true
	}
	f, ok := v.(Float)
	return float64(f), ok
}

func isArray(v Value) bool {
	_, ok := v.(Array)
	return ok
}

func firstError(left, right Value) (Error, bool) {
	if e, ok := left.(Error); ok {
		return e, true
	}
	e, ok := right.(Error)
	return e, ok
}

func typeError(op string, left, right Value) error {
	return fmt.Errorf("%s: %s and %s: %w", op, kindOf(left), kindOf(right), ErrType)
}

func kindOf(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}

// Round rounds numbers half away from zero to dp decimal places.
func Round(v Value, dp int) (Value, error) {
	switch x := v.(type) {
	case Float:
		return Float(RoundFloat(float64(x), dp)), nil
	case Array:
		return x.apply(func(v Value) (Value, error) {
			return Round(v, dp)
		}), nil
	case Error:
		return x, nil
	default:
		if IsNone(v) {
			return None, nil
		}
		return nil, fmt.Errorf("round: %w", ErrType)
	}
}

// MaxPrecision bounds the number of decimal places accepted when rounding.
const MaxPrecision = 15

func RoundFloat(f float64, dp int) float64 {
	dp = min(max(dp, -MaxPrecision), MaxPrecision)
	pow := math.Pow10(dp)
	return math.Round(f*pow) / pow
}

func isText(v Value) bool {
	_, ok := v.(Text)
	return ok
}
