package value

import (
	"errors"
	"fmt"
)

const (
	CodeErr  = "#ERR"
	CodeDiv0 = "#DIV/0"
	CodeName = "#NAME"
)

var (
	ErrDivZero = errors.New("division by zero")
	ErrType    = errors.New("unsupported operand type")
	ErrLength  = errors.New("arrays must have the same length")
)

// Error is an in-band evaluation failure. It is stored in cells in place of
// a value and rendered as its code.
type Error struct {
	Code    string
	Message string
	name    bool
}

func Fail(msg string) Error {
	return Error{
		Code:    CodeErr,
		Message: msg,
	}
}

func DivZero(msg string) Error {
	return Error{
		Code:    CodeDiv0,
		Message: msg,
	}
}

func Undefined(msg string) Error {
	return Error{
		Code:    CodeName,
		Message: msg,
		name:    true,
	}
}

// FromError converts a Go error raised during arithmetic into an in-band
// error value.
func FromError(err error) Error {
	var e Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, ErrDivZero) {
		return DivZero(err.Error())
	}
	return Fail(err.Error())
}

func (Error) Kind() ValueKind {
	return KindError
}

func (e Error) IsName() bool {
	return e.name
}

func (e Error) String() string {
	return e.Code
}

func (e Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e Error) GoString() string {
	if e.name {
		return fmt.Sprintf("NameError(%q)", e.Code)
	}
	return fmt.Sprintf("Error(%q)", e.Code)
}

// HasNameError reports whether v is, or contains, a missing name error.
func HasNameError(v Value) bool {
	switch v := v.(type) {
	case Error:
		return v.IsName()
	case Array:
		for i := range v.values {
			if HasNameError(v.values[i]) {
				return true
			}
		}
	}
	return false
}
