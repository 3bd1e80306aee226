package value

import (
	"fmt"
	"slices"
	"strings"

	"github.com/midbel/mis/internal/slx"
)

// Array is an immutable fixed length tuple. Arithmetic on arrays works
// element by element and never mutates its operands.
type Array struct {
	values []Value
	names  []string
}

func NewArray(values ...Value) Array {
	return Array{
		values: slices.Clone(values),
	}
}

func NewNamedArray(names []string, values []Value) (Array, error) {
	if len(names) != len(values) {
		return Array{}, fmt.Errorf("%d names given for %d values: %w", len(names), len(values), ErrLength)
	}
	for i := range names {
		if slices.Index(names, names[i]) != i {
			return Array{}, fmt.Errorf("%s: duplicate name in array", names[i])
		}
	}
	a := Array{
		values: slices.Clone(values),
		names:  slices.Clone(names),
	}
	return a, nil
}

func Repeat(v Value, n int) Array {
	return Array{
		values: slx.Repeat(v, n),
	}
}

func (Array) Kind() ValueKind {
	return KindArray
}

func (a Array) String() string {
	var str strings.Builder
	str.WriteByte('(')
	for i, v := range a.values {
		if i > 0 {
			str.WriteString(", ")
		}
		if len(a.names) > 0 {
			str.WriteString(a.names[i])
			str.WriteByte('=')
		}
		if gs, ok := v.(fmt.GoStringer); ok {
			str.WriteString(gs.GoString())
		} else if v == nil {
			str.WriteString("nil")
		} else {
			str.WriteString(v.String())
		}
	}
	str.WriteByte(')')
	return str.String()
}

func (a Array) Len() int {
	return len(a.values)
}

func (a Array) At(i int) Value {
	if i < 0 || i >= len(a.values) {
		return nil
	}
	return a.values[i]
}

func (a Array) Get(name string) (Value, bool) {
	ix := slices.Index(a.names, name)
	if ix < 0 {
		return nil, false
	}
	return a.values[ix], true
}

func (a Array) Named() bool {
	return len(a.names) > 0
}

func (a Array) Names() []string {
	return slices.Clone(a.names)
}

func (a Array) Values() []Value {
	return slices.Clone(a.values)
}

func (a Array) with(values []Value) Array {
	return Array{
		values: values,
		names:  a.names,
	}
}

func (a Array) apply(do func(Value) (Value, error)) Array {
	values := make([]Value, len(a.values))
	for i := range a.values {
		v, err := do(a.values[i])
		if err != nil {
			v = FromError(err)
		}
		values[i] = v
	}
	return a.with(values)
}

// applyArray combines two arrays (or an array and a scalar broadcast to its
// length) element by element. Failures of a single element are stored in
// place as error values; only a length mismatch fails the whole operation.
func applyArray(left, right Value, do func(Value, Value) (Value, error)) (Value, error) {
	la, lok := left.(Array)
	ra, rok := right.(Array)
	switch {
	case lok && rok:
		if la.Len() != ra.Len() {
			return nil, fmt.Errorf("%d vs %d: %w", la.Len(), ra.Len(), ErrLength)
		}
	case lok:
		ra = Repeat(right, la.Len())
	case rok:
		la = Repeat(left, ra.Len())
	default:
		return nil, ErrType
	}
	values := make([]Value, la.Len())
	for i := range values {
		v, err := do(la.values[i], ra.values[i])
		if err != nil {
			v = FromError(err)
		}
		values[i] = v
	}
	names := la.names
	if len(names) == 0 {
		names = ra.names
	}
	res := Array{
		values: values,
		names:  names,
	}
	return res, nil
}
