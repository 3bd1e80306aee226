package format

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/midbel/mis/value"
)

type NumberFormatter struct {
	minInt int
	maxInt int
	minDec int
	maxDec int

	signAlways  bool
	hasGrouping bool

	decimalSep  string
	thousandSep string
	minus       string
}

func ParseNumberFormatter(pattern string) (*NumberFormatter, error) {
	if pattern == "" || pattern == "." || pattern == "-" || pattern == "+" {
		return nil, fmt.Errorf("invalid pattern given")
	}
	var (
		nf     = defaultNumber()
		left   string
		right  string
		zeroes = true
	)
	left, right, _ = strings.Cut(pattern, ".")

	if left == "" || left == "-" || left == "+" {
		return nil, fmt.Errorf("invalid pattern given")
	}

	for i := 0; i < len(right); i++ {
		if zeroes && right[i] == '0' {
			nf.minDec++
			nf.maxDec++
		} else if right[i] == '#' {
			zeroes = false
			nf.maxDec++
		} else {
			return nil, fmt.Errorf("unexpected character in fractional part pattern")
		}
	}

	if left[0] == '+' {
		nf.signAlways = true
		left = left[1:]
	}

	zeroes = true
	for i := len(left) - 1; i >= 0; i-- {
		if left[i] == ',' {
			nf.hasGrouping = true
			continue
		}
		if zeroes && left[i] == '0' {
			nf.minInt++
			nf.maxInt++
		} else if left[i] == '#' {
			zeroes = false
			nf.maxInt++
		} else {
			return nil, fmt.Errorf("unexpected character in integral part pattern")
		}
	}
	return nf, nil
}

// Fixed returns a grouped formatter writing exactly dp decimals.
func Fixed(dp int) *NumberFormatter {
	nf := defaultNumber()
	nf.minInt = 1
	nf.maxInt = 1
	nf.minDec = max(dp, 0)
	nf.maxDec = nf.minDec
	nf.hasGrouping = true
	return nf
}

func defaultNumber() *NumberFormatter {
	return &NumberFormatter{
		decimalSep:  ".",
		thousandSep: ",",
		minus:       "-",
	}
}

// Localize returns a copy of nf using the separators of loc.
func (nf NumberFormatter) Localize(loc Locale) *NumberFormatter {
	nf.decimalSep = loc.Decimal
	nf.thousandSep = loc.Thousands
	return &nf
}

// Signed returns a copy of nf that always writes the sign.
func (nf NumberFormatter) Signed() *NumberFormatter {
	nf.signAlways = true
	return &nf
}

// WithMinus returns a copy of nf writing negative numbers with the given
// minus sign.
func (nf NumberFormatter) WithMinus(minus string) *NumberFormatter {
	nf.minus = minus
	return &nf
}

func (nf NumberFormatter) Format(v value.Value) (string, error) {
	vf, ok := v.(value.Float)
	if !ok {
		return "", fmt.Errorf("value is not a number")
	}
	return nf.FormatFloat(float64(vf)), nil
}

// FormatFloat writes f according to the pattern. Non finite values can not be
// grouped and are written as the generic error code.
func (nf NumberFormatter) FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return value.CodeErr
	}
	var (
		rounded    = value.RoundFloat(f, nf.maxDec)
		integral   []byte
		fractional []byte
	)
	if rounded == 0 {
		// drop negative zero
		rounded = 0
	}
	var (
		str    = strconv.FormatFloat(rounded, 'f', nf.maxDec, 64)
		signed = math.Signbit(rounded)
	)
	left, right, _ := strings.Cut(str, ".")
	if nf.maxDec > 0 {
		fractional = make([]byte, nf.maxDec)
		for i := 0; i < nf.maxDec; i++ {
			fractional[i] = '0'
		}
		copy(fractional, right)
	}
	for len(fractional) > nf.minDec && fractional[len(fractional)-1] == '0' {
		fractional = fractional[:len(fractional)-1]
	}
	if signed {
		left = left[1:]
	}
	integral = []byte(left)
	if z := len(integral); z < nf.minInt {
		tmp := make([]byte, nf.minInt)
		for i := 0; i < nf.minInt; i++ {
			tmp[i] = '0'
		}
		copy(tmp[nf.minInt-z:], integral)
		integral = tmp
	}

	var out strings.Builder
	if signed {
		out.WriteString(nf.minus)
	} else if nf.signAlways {
		out.WriteByte('+')
	}
	if nf.hasGrouping {
		out.WriteString(group(integral, nf.thousandSep))
	} else {
		out.Write(integral)
	}
	if len(fractional) > 0 {
		out.WriteString(nf.decimalSep)
		out.Write(fractional)
	}
	return out.String()
}

func group(integral []byte, sep string) string {
	var parts []string
	for len(integral) > 3 {
		n := len(integral)
		parts = append(parts, string(integral[n-3:]))
		integral = integral[:n-3]
	}
	parts = append(parts, string(integral))
	slices.Reverse(parts)
	return strings.Join(parts, sep)
}
