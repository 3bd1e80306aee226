package style

import (
	"errors"
	"fmt"
	"slices"
)

var ErrStyle = errors.New("invalid style")

const (
	PropColor           = "color"
	PropBackgroundColor = "background_color"
	PropFontStyle       = "font_style"
	PropFontWeight      = "font_weight"
	PropFontSize        = "font_size"
	PropIndentLevel     = "indent_level"
	PropPrefix          = "prefix"
	PropSuffix          = "suffix"
	PropDP              = "dp"
	PropDivider         = "divider"
	PropHideEmpty       = "hide_empty"
	PropHideAlways      = "hide_always"
)

var fontSizes = map[string]int{
	"medium":   11,
	"xx-small": 5,
	"x-small":  7,
	"small":    9,
	"large":    13,
	"x-large":  15,
	"xx-large": 17,
}

// Style is one layer of the cascade. Only the properties that are set and
// not listed in Inherit override the layers below it.
type Style struct {
	Color           *string  `yaml:"color,omitempty" json:"color,omitempty"`
	BackgroundColor *string  `yaml:"background_color,omitempty" json:"background_color,omitempty"`
	FontStyle       *string  `yaml:"font_style,omitempty" json:"font_style,omitempty"`
	FontWeight      *string  `yaml:"font_weight,omitempty" json:"font_weight,omitempty"`
	FontSize        *string  `yaml:"font_size,omitempty" json:"font_size,omitempty"`
	IndentLevel     *int     `yaml:"indent_level,omitempty" json:"indent_level,omitempty"`
	Prefix          *string  `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix          *string  `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	DP              *int     `yaml:"dp,omitempty" json:"dp,omitempty"`
	Divider         *float64 `yaml:"divider,omitempty" json:"divider,omitempty"`
	HideEmpty       *bool    `yaml:"hide_empty,omitempty" json:"hide_empty,omitempty"`
	HideAlways      *bool    `yaml:"hide_always,omitempty" json:"hide_always,omitempty"`

	Inherit []string `yaml:"inherit,omitempty" json:"inherit,omitempty"`
}

func (s Style) Validate() error {
	if s.FontStyle != nil && !slices.Contains([]string{"", "normal", "italic"}, *s.FontStyle) {
		return fmt.Errorf("%s: %w: unknown font style", *s.FontStyle, ErrStyle)
	}
	if s.FontWeight != nil && !slices.Contains([]string{"", "normal", "bold"}, *s.FontWeight) {
		return fmt.Errorf("%s: %w: unknown font weight", *s.FontWeight, ErrStyle)
	}
	if s.FontSize != nil && *s.FontSize != "" {
		if _, ok := fontSizes[*s.FontSize]; !ok {
			return fmt.Errorf("%s: %w: unknown font size", *s.FontSize, ErrStyle)
		}
	}
	if s.IndentLevel != nil && *s.IndentLevel < 0 {
		return fmt.Errorf("%w: indent level must be positive", ErrStyle)
	}
	if s.DP != nil && *s.DP < 0 {
		return fmt.Errorf("%w: dp must be positive", ErrStyle)
	}
	if s.Divider != nil && *s.Divider <= 0 {
		return fmt.Errorf("%w: divider must be strictly positive", ErrStyle)
	}
	for _, p := range s.Inherit {
		if !isProp(p) {
			return fmt.Errorf("%s: %w: unknown property", p, ErrStyle)
		}
	}
	return nil
}

func (s Style) inherits(prop string) bool {
	return slices.Contains(s.Inherit, prop)
}

// Props are the resolved properties of a cell. Zero values mean unset:
// a zero divider renders as one.
type Props struct {
	Color           string  `json:"color,omitempty"`
	BackgroundColor string  `json:"background_color,omitempty"`
	FontStyle       string  `json:"font_style,omitempty"`
	FontWeight      string  `json:"font_weight,omitempty"`
	FontSize        string  `json:"font_size,omitempty"`
	IndentLevel     int     `json:"indent_level,omitempty"`
	Prefix          string  `json:"prefix,omitempty"`
	Suffix          string  `json:"suffix,omitempty"`
	DP              int     `json:"dp,omitempty"`
	Divider         float64 `json:"divider,omitempty"`
	HideEmpty       bool    `json:"hide_empty,omitempty"`
	HideAlways      bool    `json:"hide_always,omitempty"`
}

// Merge folds the layers from first to last.
func Merge(layers ...Style) Props {
	var p Props
	for _, s := range layers {
		p = p.Apply(s)
	}
	return p
}

// Apply returns p updated with the properties set by s.
func (p Props) Apply(s Style) Props {
	setString(&p.Color, s.Color, s.inherits(PropColor))
	setString(&p.BackgroundColor, s.BackgroundColor, s.inherits(PropBackgroundColor))
	setString(&p.FontStyle, s.FontStyle, s.inherits(PropFontStyle))
	setString(&p.FontWeight, s.FontWeight, s.inherits(PropFontWeight))
	setString(&p.FontSize, s.FontSize, s.inherits(PropFontSize))
	setString(&p.Prefix, s.Prefix, s.inherits(PropPrefix))
	setString(&p.Suffix, s.Suffix, s.inherits(PropSuffix))
	if s.IndentLevel != nil && !s.inherits(PropIndentLevel) {
		p.IndentLevel = *s.IndentLevel
	}
	if s.DP != nil && !s.inherits(PropDP) {
		p.DP = *s.DP
	}
	if s.Divider != nil && !s.inherits(PropDivider) {
		p.Divider = *s.Divider
	}
	if s.HideEmpty != nil && !s.inherits(PropHideEmpty) {
		p.HideEmpty = *s.HideEmpty
	}
	if s.HideAlways != nil && !s.inherits(PropHideAlways) {
		p.HideAlways = *s.HideAlways
	}
	return p
}

func (p Props) divider() float64 {
	if p.Divider == 0 {
		return 1
	}
	return p.Divider
}

func setString(dst *string, src *string, inherit bool) {
	if src == nil || inherit {
		return
	}
	*dst = *src
}

func isProp(name string) bool {
	switch name {
	case PropColor, PropBackgroundColor, PropFontStyle, PropFontWeight,
		PropFontSize, PropIndentLevel, PropPrefix, PropSuffix, PropDP,
		PropDivider, PropHideEmpty, PropHideAlways:
		return true
	default:
		return false
	}
}
