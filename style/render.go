package style

import (
	"fmt"
	"math"
	"strings"

	"github.com/midbel/mis/format"
	"github.com/midbel/mis/value"
)

type Kind string

const (
	KindNum Kind = "num"
	KindPct Kind = "pct"
	KindStr Kind = "str"
)

func (k Kind) Valid() bool {
	return k == KindNum || k == KindPct || k == KindStr
}

type Compare string

const (
	CompareDiff Compare = "diff"
	ComparePct  Compare = "pct"
	CompareNone Compare = "none"
)

func (c Compare) Valid() bool {
	return c == CompareDiff || c == ComparePct || c == CompareNone
}

const (
	SignMinus = "-"
	SignPlus  = "+"
)

const (
	nbHyphen = "\u2011"
	nbSpace  = "\u00a0"
)

// Render formats v for display. Missing values render as an empty string
// and error values as their code.
func Render(loc format.Locale, props Props, kind Kind, v value.Value, sign string) string {
	if value.IsEmpty(v) {
		return ""
	}
	switch v := v.(type) {
	case value.Error:
		return v.Code
	case value.Float:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return value.CodeErr
		}
		switch kind {
		case KindPct:
			return RenderPct(loc, float64(v), props.DP, sign)
		case KindStr:
			return v.String()
		default:
			return RenderNum(loc, float64(v), props.divider(), props.DP, props.Prefix, props.Suffix, sign)
		}
	default:
		return v.String()
	}
}

func RenderNum(loc format.Locale, f, divider float64, dp int, prefix, suffix, sign string) string {
	if divider == 0 {
		divider = 1
	}
	nf := format.Fixed(dp).Localize(loc).WithMinus(nbHyphen)
	if sign == SignPlus {
		nf = nf.Signed()
	}
	var str strings.Builder
	if prefix != "" {
		str.WriteString(prefix)
		str.WriteString(nbSpace)
	}
	str.WriteString(nf.FormatFloat(f / divider))
	if suffix != "" {
		str.WriteString(nbSpace)
		str.WriteString(suffix)
	}
	return str.String()
}

func RenderPct(loc format.Locale, f float64, dp int, sign string) string {
	return RenderNum(loc, f, 0.01, dp, "", "%", sign)
}

// CompareAndRender computes the delta between v and base and renders it.
// Deltas too small to show at the requested precision are dropped.
func CompareAndRender(loc format.Locale, props Props, kind Kind, method Compare, v, base value.Value) (value.Value, string, Props, Kind) {
	var (
		delta      = value.None
		deltaProps = props
		deltaKind  = KindNum
	)
	if value.IsError(v) || value.IsError(base) {
		return delta, "", deltaProps, deltaKind
	}
	cur, ok1 := value.ToFloat(v)
	prev, ok2 := value.ToFloat(base)
	if !ok1 || !ok2 {
		return delta, "", deltaProps, deltaKind
	}
	switch kind {
	case KindPct:
		d := cur - prev
		if d != 0 && value.RoundFloat(d, props.DP+2) != 0 {
			delta = value.Float(d)
			deltaProps.Divider = 0.01
			deltaProps.Prefix = ""
			deltaProps.Suffix = "pp"
		}
	case KindNum:
		switch method {
		case CompareDiff:
			d := cur - prev
			if d != 0 && value.RoundFloat(d, props.DP) != 0 {
				delta = value.Float(d)
			}
		case ComparePct:
			if prev != 0 && value.RoundFloat(prev, props.DP) != 0 {
				d := (cur - prev) / math.Abs(prev)
				if d != 0 && value.RoundFloat(d, 3) != 0 {
					delta = value.Float(d)
					deltaProps.DP = 1
					deltaKind = KindPct
				}
			}
		}
	}
	if value.IsNone(delta) {
		return delta, "", deltaProps, deltaKind
	}
	return delta, Render(loc, deltaProps, deltaKind, delta, SignPlus), deltaProps, deltaKind
}

// CSS returns the css declarations of props, or an empty string when no
// property is set.
func CSS(props Props, noIndent bool) string {
	attrs := []struct {
		Name  string
		Value string
	}{
		{Name: "font-style", Value: props.FontStyle},
		{Name: "font-weight", Value: props.FontWeight},
		{Name: "font-size", Value: props.FontSize},
		{Name: "color", Value: props.Color},
		{Name: "background-color", Value: props.BackgroundColor},
	}
	var list []string
	for _, a := range attrs {
		if a.Value == "" {
			continue
		}
		list = append(list, fmt.Sprintf("%s: %s", a.Name, a.Value))
	}
	if props.IndentLevel > 0 && !noIndent {
		list = append(list, fmt.Sprintf("text-indent: %dem", props.IndentLevel))
	}
	return strings.Join(list, "; ")
}

type XLSX struct {
	Italic    bool
	Bold      bool
	Size      int
	Color     string
	Fill      string
	NumFormat string
	Indent    int
}

// SpreadsheetStyle translates props into the attributes of a spreadsheet
// cell. Numbers keep their raw value: the divider is applied by the writer
// and the format carries the precision and affixes.
func SpreadsheetStyle(kind Kind, props Props, noIndent bool) XLSX {
	x := XLSX{
		Italic: props.FontStyle == "italic",
		Bold:   props.FontWeight == "bold",
		Size:   11,
		Color:  Color(props),
		Fill:   Background(props),
	}
	if size, ok := fontSizes[props.FontSize]; ok {
		x.Size = size
	}
	switch kind {
	case KindNum:
		x.NumFormat = "#,##0"
		if props.DP > 0 {
			x.NumFormat += "." + strings.Repeat("0", props.DP)
		}
		if props.Prefix != "" {
			x.NumFormat = fmt.Sprintf("\"%s \"%s", props.Prefix, x.NumFormat)
		}
		if props.Suffix != "" {
			x.NumFormat = fmt.Sprintf("%s\" %s\"", x.NumFormat, props.Suffix)
		}
	case KindPct:
		x.NumFormat = "0"
		if props.DP > 0 {
			x.NumFormat += "." + strings.Repeat("0", props.DP)
		}
		x.NumFormat += "%"
	}
	if !noIndent {
		x.Indent = props.IndentLevel
	}
	return x
}

// Scale returns the number stored in a spreadsheet for f.
func Scale(props Props, kind Kind, f float64) float64 {
	if kind == KindNum {
		return f / props.divider()
	}
	return f
}

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"navy":    "#000080",
	"teal":    "#008080",
	"olive":   "#808000",
	"lime":    "#00ff00",
	"aqua":    "#00ffff",
	"fuchsia": "#ff00ff",
}

// Color returns the foreground color of props as #rrggbb, or an empty string
// when the color is unset or not recognized.
func Color(props Props) string {
	return hexColor(props.Color)
}

// Background is Color for the background color.
func Background(props Props) string {
	return hexColor(props.BackgroundColor)
}

func hexColor(str string) string {
	str = strings.ToLower(strings.TrimSpace(str))
	if c, ok := namedColors[str]; ok {
		return c
	}
	if !strings.HasPrefix(str, "#") {
		return ""
	}
	str = str[1:]
	for _, c := range str {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return ""
		}
	}
	switch len(str) {
	case 3:
		var b strings.Builder
		b.WriteByte('#')
		for i := range str {
			b.WriteByte(str[i])
			b.WriteByte(str[i])
		}
		return b.String()
	case 6:
		return "#" + str
	default:
		return ""
	}
}
