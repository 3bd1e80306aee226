package style

import (
	"math"
	"testing"

	"github.com/midbel/mis/format"
	"github.com/midbel/mis/value"
)

func ptr[T any](v T) *T {
	return &v
}

func TestMerge(t *testing.T) {
	var (
		base = Style{
			Color:      ptr("#000000"),
			FontWeight: ptr("normal"),
			DP:         ptr(2),
			Divider:    ptr(1.0),
		}
		kpi = Style{
			Color:      ptr("#FF0000"),
			FontWeight: ptr("bold"),
			DP:         ptr(0),
			Inherit:    []string{PropColor},
		}
		detail = Style{
			IndentLevel: ptr(1),
			HideEmpty:   ptr(true),
		}
	)
	got := Merge(base, kpi, detail)
	want := Props{
		Color:       "#000000",
		FontWeight:  "bold",
		DP:          0,
		Divider:     1,
		IndentLevel: 1,
		HideEmpty:   true,
	}
	if got != want {
		t.Errorf("merged props mismatched! want %+v, got %+v", want, got)
	}
	if got := Merge(); got != (Props{}) {
		t.Errorf("empty merge should give zero props, got %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		Name  string
		Style Style
		Valid bool
	}{
		{Name: "empty", Style: Style{}, Valid: true},
		{Name: "font", Style: Style{FontStyle: ptr("italic"), FontSize: ptr("small")}, Valid: true},
		{Name: "bad-style", Style: Style{FontStyle: ptr("oblique")}},
		{Name: "bad-weight", Style: Style{FontWeight: ptr("heavy")}},
		{Name: "bad-size", Style: Style{FontSize: ptr("huge")}},
		{Name: "bad-dp", Style: Style{DP: ptr(-1)}},
		{Name: "bad-divider", Style: Style{Divider: ptr(0.0)}},
		{Name: "bad-inherit", Style: Style{Inherit: []string{"margin"}}},
	}
	for _, c := range tests {
		err := c.Style.Validate()
		if c.Valid && err != nil {
			t.Errorf("%s: unexpected error: %s", c.Name, err)
		}
		if !c.Valid && err == nil {
			t.Errorf("%s: style should be rejected", c.Name)
		}
	}
}

func TestRender(t *testing.T) {
	var (
		en = format.LocaleFor("en_US")
		fr = format.LocaleFor("fr_FR")
	)
	tests := []struct {
		Name   string
		Locale format.Locale
		Props  Props
		Kind   Kind
		Value  value.Value
		Sign   string
		Want   string
	}{
		{Name: "none", Locale: en, Kind: KindNum, Value: value.None, Want: ""},
		{Name: "nil", Locale: en, Kind: KindNum, Value: nil, Want: ""},
		{Name: "error", Locale: en, Kind: KindNum, Value: value.DivZero(""), Want: "#DIV/0"},
		{Name: "num", Locale: en, Kind: KindNum, Value: value.Float(1234.567), Props: Props{DP: 2}, Want: "1,234.57"},
		{Name: "negative", Locale: en, Kind: KindNum, Value: value.Float(-12), Want: "‑12"},
		{Name: "divider", Locale: en, Kind: KindNum, Value: value.Float(12500), Props: Props{Divider: 1000, DP: 1, Suffix: "k€"}, Want: "12.5 k€"},
		{Name: "prefix", Locale: en, Kind: KindNum, Value: value.Float(5), Props: Props{Prefix: "$"}, Want: "$ 5"},
		{Name: "localized", Locale: fr, Kind: KindNum, Value: value.Float(1234.5), Props: Props{DP: 1}, Want: "1 234,5"},
		{Name: "signed", Locale: en, Kind: KindNum, Value: value.Float(3), Sign: SignPlus, Want: "+3"},
		{Name: "pct", Locale: en, Kind: KindPct, Value: value.Float(0.256), Props: Props{DP: 1}, Want: "25.6 %"},
		{Name: "str", Locale: en, Kind: KindStr, Value: value.Text("hello"), Want: "hello"},
		{Name: "negative-zero", Locale: en, Kind: KindNum, Value: value.Float(-0.001), Want: "0"},
		{Name: "infinite", Locale: en, Kind: KindNum, Value: value.Float(math.Inf(1)), Props: Props{Prefix: "$"}, Want: value.CodeErr},
		{Name: "nan", Locale: en, Kind: KindPct, Value: value.Float(math.NaN()), Want: value.CodeErr},
	}
	for _, c := range tests {
		sign := c.Sign
		if sign == "" {
			sign = SignMinus
		}
		got := Render(c.Locale, c.Props, c.Kind, c.Value, sign)
		if got != c.Want {
			t.Errorf("%s: results mismatched! want %q, got %q", c.Name, c.Want, got)
		}
	}
}

func TestCompareAndRender(t *testing.T) {
	en := format.LocaleFor("en")
	tests := []struct {
		Name     string
		Props    Props
		Kind     Kind
		Method   Compare
		Value    value.Value
		Base     value.Value
		Delta    value.Value
		Rendered string
		Result   Kind
	}{
		{
			Name:     "pct-increase",
			Kind:     KindNum,
			Method:   ComparePct,
			Value:    value.Float(100),
			Base:     value.Float(50),
			Delta:    value.Float(1),
			Rendered: "+100.0 %",
			Result:   KindPct,
		},
		{
			Name:     "diff",
			Kind:     KindNum,
			Method:   CompareDiff,
			Value:    value.Float(100),
			Base:     value.Float(130),
			Delta:    value.Float(-30),
			Rendered: "‑30",
			Result:   KindNum,
		},
		{
			Name:   "diff-below-precision",
			Kind:   KindNum,
			Method: CompareDiff,
			Value:  value.Float(100.2),
			Base:   value.Float(100),
			Delta:  value.None,
			Result: KindNum,
		},
		{
			Name:     "diff-with-none",
			Kind:     KindNum,
			Method:   CompareDiff,
			Value:    value.Float(10),
			Base:     value.None,
			Delta:    value.Float(10),
			Rendered: "+10",
			Result:   KindNum,
		},
		{
			Name:   "pct-base-rounds-to-zero",
			Props:  Props{DP: 0},
			Kind:   KindNum,
			Method: ComparePct,
			Value:  value.Float(10),
			Base:   value.Float(0.4),
			Delta:  value.None,
			Result: KindNum,
		},
		{
			Name:     "pct-base-kept-with-more-decimals",
			Props:    Props{DP: 1},
			Kind:     KindNum,
			Method:   ComparePct,
			Value:    value.Float(0.8),
			Base:     value.Float(0.4),
			Delta:    value.Float(1),
			Rendered: "+100.0 %",
			Result:   KindPct,
		},
		{
			Name:   "pct-delta-below-three-decimals",
			Kind:   KindNum,
			Method: ComparePct,
			Value:  value.Float(100000.01),
			Base:   value.Float(100000),
			Delta:  value.None,
			Result: KindNum,
		},
		{
			Name:     "percentage-points",
			Props:    Props{DP: 1},
			Kind:     KindPct,
			Method:   ComparePct,
			Value:    value.Float(0.30),
			Base:     value.Float(0.25),
			Delta:    value.Float(0.05),
			Rendered: "+5.0 pp",
			Result:   KindNum,
		},
		{
			Name:   "percentage-points-below-precision",
			Props:  Props{DP: 0},
			Kind:   KindPct,
			Value:  value.Float(0.25001),
			Base:   value.Float(0.25),
			Delta:  value.None,
			Result: KindNum,
		},
		{
			Name:   "error",
			Kind:   KindNum,
			Method: CompareDiff,
			Value:  value.Fail("boom"),
			Base:   value.Float(1),
			Delta:  value.None,
			Result: KindNum,
		},
	}
	for _, c := range tests {
		delta, rendered, _, kind := CompareAndRender(en, c.Props, c.Kind, c.Method, c.Value, c.Base)
		if value.IsNone(c.Delta) != value.IsNone(delta) {
			t.Errorf("%s: delta mismatched! want %#v, got %#v", c.Name, c.Delta, delta)
			continue
		}
		if !value.IsNone(c.Delta) {
			want, _ := value.ToFloat(c.Delta)
			got, _ := value.ToFloat(delta)
			if value.RoundFloat(want-got, 9) != 0 {
				t.Errorf("%s: delta mismatched! want %f, got %f", c.Name, want, got)
			}
		}
		if rendered != c.Rendered {
			t.Errorf("%s: rendered mismatched! want %q, got %q", c.Name, c.Rendered, rendered)
		}
		if kind != c.Result {
			t.Errorf("%s: kind mismatched! want %s, got %s", c.Name, c.Result, kind)
		}
	}
}

func TestCSS(t *testing.T) {
	props := Props{
		FontStyle:   "italic",
		FontWeight:  "bold",
		Color:       "#FF0000",
		IndentLevel: 2,
	}
	want := "font-style: italic; font-weight: bold; color: #FF0000; text-indent: 2em"
	if got := CSS(props, false); got != want {
		t.Errorf("css mismatched! want %q, got %q", want, got)
	}
	want = "font-style: italic; font-weight: bold; color: #FF0000"
	if got := CSS(props, true); got != want {
		t.Errorf("css mismatched! want %q, got %q", want, got)
	}
	if got := CSS(Props{}, false); got != "" {
		t.Errorf("empty props should give empty css, got %q", got)
	}
}

func TestSpreadsheetStyle(t *testing.T) {
	props := Props{
		FontWeight: "bold",
		FontSize:   "large",
		DP:         2,
		Prefix:     "$",
		Suffix:     "k",
	}
	x := SpreadsheetStyle(KindNum, props, false)
	if !x.Bold || x.Size != 13 {
		t.Errorf("font mismatched: %+v", x)
	}
	if want := `"$ "#,##0.00" k"`; x.NumFormat != want {
		t.Errorf("number format mismatched! want %s, got %s", want, x.NumFormat)
	}
	x = SpreadsheetStyle(KindPct, Props{DP: 1}, false)
	if x.NumFormat != "0.0%" {
		t.Errorf("pct format mismatched! want 0.0%%, got %s", x.NumFormat)
	}
}

func TestCascadeInherit(t *testing.T) {
	var (
		black = Style{Color: ptr("black"), Inherit: []string{PropColor}}
		red   = Style{Color: ptr("red")}
		blue  = Style{Color: ptr("blue"), Inherit: []string{PropColor}}
	)
	if got := Merge(black, red); got.Color != "red" {
		t.Errorf("override: want red, got %q", got.Color)
	}
	if got := Merge(red, blue); got.Color != "red" {
		t.Errorf("inherit: want red, got %q", got.Color)
	}
	if got := Merge(red, Style{}); got.Color != "red" {
		t.Errorf("unset: want red, got %q", got.Color)
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		Input string
		Want  string
	}{
		{Input: "red", Want: "#ff0000"},
		{Input: " Navy ", Want: "#000080"},
		{Input: "#ABC", Want: "#aabbcc"},
		{Input: "#00ff7f", Want: "#00ff7f"},
		{Input: "#00ff7", Want: ""},
		{Input: "#xyzxyz", Want: ""},
		{Input: "papayawhip", Want: ""},
		{Input: "", Want: ""},
	}
	for _, c := range tests {
		got := Color(Props{Color: c.Input})
		if got != c.Want {
			t.Errorf("%s: results mismatched! want %q, got %q", c.Input, c.Want, got)
		}
	}
	if got := Background(Props{BackgroundColor: "white"}); got != "#ffffff" {
		t.Errorf("background: want #ffffff, got %q", got)
	}
}
