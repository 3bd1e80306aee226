package format

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"
)

func init() {
	slices.SortStableFunc(dateFieldsWriter, func(a, b dateFieldPattern) int {
		return cmp.Compare(len(b.Pattern), len(a.Pattern))
	})
}

type dateFieldPattern struct {
	Pattern string
	Func    dateWriter
}

type dateWriter func(*strings.Builder, time.Time)

var dateFieldsWriter = []dateFieldPattern{
	{
		Pattern: "YYYY",
		Func:    writeYearLong,
	},
	{
		Pattern: "YY",
		Func:    writeYearShort,
	},
	{
		Pattern: "MM",
		Func:    writeMonth,
	},
	{
		Pattern: "0MM",
		Func:    writeMonthPadded,
	},
	{
		Pattern: "MMM",
		Func:    writeMonthNameShort,
	},
	{
		Pattern: "MMMM",
		Func:    writeMonthNameLong,
	},
	{
		Pattern: "DD",
		Func:    writeDay,
	},
	{
		Pattern: "0DD",
		Func:    writeDayPadded,
	},
	{
		Pattern: "DDD",
		Func:    writeDayNameShort,
	},
	{
		Pattern: "DDDD",
		Func:    writeDayNameLong,
	},
	{
		Pattern: "JJJ",
		Func:    writeYearDay,
	},
	{
		Pattern: "0JJJ",
		Func:    writeYearDayPadded,
	},
}

type DateFormatter struct {
	writers []dateWriter
}

func ParseDateFormatter(pattern string) *DateFormatter {
	var df DateFormatter
	for i := 0; i < len(pattern); {
		var matched bool
		for _, k := range dateFieldsWriter {
			matched = strings.HasPrefix(pattern[i:], k.Pattern)
			if matched {
				df.writers = append(df.writers, k.Func)
				i += len(k.Pattern)
				break
			}
		}
		if !matched {
			df.writers = append(df.writers, writeLiteralDate(pattern[i]))
			i++
		}
	}
	return &df
}

func (f *DateFormatter) Format(t time.Time) string {
	if len(f.writers) == 0 {
		return t.Format(time.DateOnly)
	}
	var str strings.Builder
	for i := range f.writers {
		f.writers[i](&str, t)
	}
	return str.String()
}

func writeLiteralDate(char byte) dateWriter {
	return func(w *strings.Builder, _ time.Time) {
		w.WriteByte(char)
	}
}

func writeYearLong(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(t.Year()))
}

func writeYearShort(w *strings.Builder, t time.Time) {
	writePadded(w, t.Year()%100, 2)
}

func writeMonth(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(int(t.Month())))
}

func writeMonthPadded(w *strings.Builder, t time.Time) {
	writePadded(w, int(t.Month()), 2)
}

func writeMonthNameShort(w *strings.Builder, t time.Time) {
	w.WriteString(t.Month().String()[:3])
}

func writeMonthNameLong(w *strings.Builder, t time.Time) {
	w.WriteString(t.Month().String())
}

func writeDay(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(t.Day()))
}

func writeDayPadded(w *strings.Builder, t time.Time) {
	writePadded(w, t.Day(), 2)
}

func writeDayNameShort(w *strings.Builder, t time.Time) {
	w.WriteString(t.Weekday().String()[:3])
}

func writeDayNameLong(w *strings.Builder, t time.Time) {
	w.WriteString(t.Weekday().String())
}

func writeYearDay(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(t.YearDay()))
}

func writeYearDayPadded(w *strings.Builder, t time.Time) {
	writePadded(w, t.YearDay(), 3)
}

func writePadded(w *strings.Builder, n, size int) {
	str := strconv.Itoa(n)
	for i := len(str); i < size; i++ {
		w.WriteByte('0')
	}
	w.WriteString(str)
}
