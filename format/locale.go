package format

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	narrowSpace = "\u202f"
	noBreak     = "\u00a0"
)

// Locale holds the conventions used to render numbers and dates of a
// report.
type Locale struct {
	Tag         language.Tag
	Decimal     string
	Thousands   string
	DatePattern string
}

var locales = []Locale{
	{
		Tag:         language.AmericanEnglish,
		Decimal:     ".",
		Thousands:   ",",
		DatePattern: "0MM/0DD/YYYY",
	},
	{
		Tag:         language.BritishEnglish,
		Decimal:     ".",
		Thousands:   ",",
		DatePattern: "0DD/0MM/YYYY",
	},
	{
		Tag:         language.French,
		Decimal:     ",",
		Thousands:   narrowSpace,
		DatePattern: "0DD/0MM/YYYY",
	},
	{
		Tag:         language.German,
		Decimal:     ",",
		Thousands:   ".",
		DatePattern: "0DD.0MM.YYYY",
	},
	{
		Tag:         language.Dutch,
		Decimal:     ",",
		Thousands:   ".",
		DatePattern: "0DD-0MM-YYYY",
	},
	{
		Tag:         language.Spanish,
		Decimal:     ",",
		Thousands:   ".",
		DatePattern: "0DD/0MM/YYYY",
	},
	{
		Tag:         language.Italian,
		Decimal:     ",",
		Thousands:   ".",
		DatePattern: "0DD/0MM/YYYY",
	},
	{
		Tag:         language.Portuguese,
		Decimal:     ",",
		Thousands:   ".",
		DatePattern: "0DD/0MM/YYYY",
	},
	{
		Tag:         language.MustParse("de-CH"),
		Decimal:     ".",
		Thousands:   "'",
		DatePattern: "0DD.0MM.YYYY",
	},
	{
		Tag:         language.MustParse("fr-CH"),
		Decimal:     ".",
		Thousands:   noBreak,
		DatePattern: "0DD.0MM.YYYY",
	},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(locales))
	for i := range locales {
		tags[i] = locales[i].Tag
	}
	return language.NewMatcher(tags)
}()

// DefaultLocale is used when a report does not name its language.
func DefaultLocale() Locale {
	return locales[0]
}

// LocaleFor returns the closest known locale for name, a BCP 47 tag
// ("fr", "de-CH") or a posix like code ("fr_BE"). Unknown names fall back
// to american english.
func LocaleFor(name string) Locale {
	if name == "" {
		return DefaultLocale()
	}
	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return DefaultLocale()
	}
	_, ix, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLocale()
	}
	return locales[ix]
}

func (loc Locale) String() string {
	return loc.Tag.String()
}
