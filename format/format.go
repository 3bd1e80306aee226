package format

import (
	"github.com/midbel/mis/value"
)

const (
	DefaultNumberPattern = "#,##0.00"
	DefaultDatePattern   = "0DD/0MM/YYYY"
)

type Formatter interface {
	Format(value.Value) (string, error)
}

type strFormatter struct{}

func FormatString() Formatter {
	return strFormatter{}
}

func (strFormatter) Format(v value.Value) (string, error) {
	if v == nil {
		return "", nil
	}
	return v.String(), nil
}
