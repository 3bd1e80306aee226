package value

import (
	"errors"
	"math"
	"testing"
)

type binaryFunc func(Value, Value) (Value, error)

func TestNoneArithmetic(t *testing.T) {
	tests := []struct {
		Name  string
		Op    binaryFunc
		Left  Value
		Right Value
		Want  Value
	}{
		{Name: "x+none", Op: Add, Left: Float(3), Right: None, Want: Float(3)},
		{Name: "none+x", Op: Add, Left: None, Right: Float(3), Want: Float(3)},
		{Name: "none+none", Op: Add, Left: None, Right: None, Want: None},
		{Name: "none+nil", Op: Add, Left: None, Right: nil, Want: None},
		{Name: "nil+none", Op: Add, Left: nil, Right: None, Want: None},
		{Name: "x-none", Op: Sub, Left: Float(3), Right: None, Want: Float(3)},
		{Name: "none-x", Op: Sub, Left: None, Right: Float(3), Want: Float(-3)},
		{Name: "none-none", Op: Sub, Left: None, Right: None, Want: None},
		{Name: "none*x", Op: Mul, Left: None, Right: Float(3), Want: Float(0)},
		{Name: "x*none", Op: Mul, Left: Float(3), Right: None, Want: Float(0)},
		{Name: "none*none", Op: Mul, Left: None, Right: None, Want: None},
		{Name: "none/x", Op: Div, Left: None, Right: Float(3), Want: Float(0)},
		{Name: "none/none", Op: Div, Left: None, Right: None, Want: None},
		{Name: "x/y", Op: Div, Left: Float(3), Right: Float(2), Want: Float(1.5)},
	}
	for _, c := range tests {
		got, err := c.Op(c.Left, c.Right)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Name, err)
			continue
		}
		if IsNone(c.Want) != IsNone(got) {
			t.Errorf("%s: none mismatched! want %#v, got %#v", c.Name, c.Want, got)
			continue
		}
		if !Equal(c.Want, got) {
			t.Errorf("%s: results mismatched! want %s, got %s", c.Name, c.Want, got)
		}
	}
}

func TestNoneForAnyNumber(t *testing.T) {
	for _, x := range []Float{-12.5, -1, 0, 0.1, 1, 42, 1e9} {
		if got, _ := Add(x, None); got != x {
			t.Errorf("%s + None: want %s, got %s", x, x, got)
		}
		if got, _ := Add(None, x); got != x {
			t.Errorf("None + %s: want %s, got %s", x, x, got)
		}
		if got, _ := Sub(x, None); got != x {
			t.Errorf("%s - None: want %s, got %s", x, x, got)
		}
		if got, _ := Sub(None, x); got != -x {
			t.Errorf("None - %s: want %s, got %s", x, -x, got)
		}
		if got, _ := Mul(None, x); got != Float(0) {
			t.Errorf("None * %s: want 0, got %s", x, got)
		}
	}
}

func TestDivisionByNone(t *testing.T) {
	_, err := Div(Float(1), None)
	if !errors.Is(err, ErrDivZero) {
		t.Errorf("x / None: expected division by zero, got %v", err)
	}
	_, err = Div(Float(1), Float(0))
	if !errors.Is(err, ErrDivZero) {
		t.Errorf("x / 0: expected division by zero, got %v", err)
	}
}

func TestNoneProperties(t *testing.T) {
	if Truth(None) {
		t.Errorf("None should be falsy")
	}
	if None.String() != "" {
		t.Errorf("None should render as empty string, got %q", None.String())
	}
	if !Equal(None, Float(0)) || !Equal(Float(0), None) {
		t.Errorf("None should be equal to 0")
	}
	if !Equal(None, nil) {
		t.Errorf("None should be equal to nil")
	}
	if Equal(None, Float(1)) {
		t.Errorf("None should not be equal to 1")
	}
	if v, _ := Neg(None); !IsNone(v) {
		t.Errorf("-None should be None, got %#v", v)
	}
}

func TestNoneComparison(t *testing.T) {
	tests := []struct {
		Left  Value
		Right Value
		Want  int
	}{
		{Left: None, Right: Float(1), Want: -1},
		{Left: None, Right: Float(0), Want: 0},
		{Left: Float(1), Right: None, Want: 1},
		{Left: Float(-1), Right: None, Want: -1},
		{Left: None, Right: None, Want: 0},
	}
	for _, c := range tests {
		got, err := Compare(c.Left, c.Right)
		if err != nil {
			t.Errorf("%#v <> %#v: unexpected error: %s", c.Left, c.Right, err)
			continue
		}
		if got != c.Want {
			t.Errorf("%#v <> %#v: want %d, got %d", c.Left, c.Right, c.Want, got)
		}
	}
	if c, _ := Compare(None, Float(0)); c > 0 {
		t.Errorf("None > 0 should be false")
	}
}

func TestTypeErrors(t *testing.T) {
	if _, err := Add(Float(1), nil); !errors.Is(err, ErrType) {
		t.Errorf("1 + nil: expected type error, got %v", err)
	}
	if _, err := Mul(Text("a"), Float(1)); !errors.Is(err, ErrType) {
		t.Errorf("'a' * 1: expected type error, got %v", err)
	}
}

func TestAddNoneToText(t *testing.T) {
	data := []struct {
		Left  Value
		Right Value
	}{
		{Left: None, Right: Text("a")},
		{Left: Text("a"), Right: None},
	}
	for _, d := range data {
		got, err := Add(d.Left, d.Right)
		if err != nil {
			t.Errorf("%#v + %#v: unexpected error: %s", d.Left, d.Right, err)
			continue
		}
		if got != Text("a") {
			t.Errorf("%#v + %#v: results mismatched! want %#v, got %#v", d.Left, d.Right, Text("a"), got)
		}
	}
}

func TestErrorPropagation(t *testing.T) {
	e := DivZero("boom")
	for _, op := range []binaryFunc{Add, Sub, Mul, Div} {
		got, err := op(e, Float(1))
		if err != nil {
			t.Errorf("unexpected error: %s", err)
			continue
		}
		if !Equal(got, e) {
			t.Errorf("error should propagate, got %s", got)
		}
	}
}

func TestRoundFloatPrecisionBounds(t *testing.T) {
	for _, dp := range []int{-400, 400} {
		got := RoundFloat(1.5, dp)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("round(1.5, %d): expected finite value, got %f", dp, got)
		}
	}
	if got := RoundFloat(1.25, 1); got != 1.3 {
		t.Errorf("round(1.25, 1): results mismatched! want 1.3, got %f", got)
	}
}
