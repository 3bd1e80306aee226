package value

import (
	"fmt"
	"strconv"
)

type ValueKind int8

const (
	KindNumber ValueKind = 1 << iota
	KindText
	KindNone
	KindError
	KindArray
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindNone:
		return "none"
	case KindError:
		return "error"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

type Value interface {
	Kind() ValueKind
	fmt.Stringer
}

type Float float64

func (Float) Kind() ValueKind {
	return KindNumber
}

func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

type Text string

func (Text) Kind() ValueKind {
	return KindText
}

func (t Text) String() string {
	return string(t)
}

type noneValue struct{}

// None is the "no data" sentinel. It behaves like zero in arithmetic and
// comparisons but renders as an empty string.
var None Value = noneValue{}

func (noneValue) Kind() ValueKind {
	return KindNone
}

func (noneValue) String() string {
	return ""
}

func (noneValue) GoString() string {
	return "AccountingNone"
}

func IsNone(v Value) bool {
	_, ok := v.(noneValue)
	return ok
}

// IsEmpty reports whether v carries no data: nil or None.
func IsEmpty(v Value) bool {
	return v == nil || IsNone(v)
}

func IsError(v Value) bool {
	_, ok := v.(Error)
	return ok
}

func IsNumber(v Value) bool {
	_, ok := v.(Float)
	return ok
}
