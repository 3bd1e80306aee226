package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hjson/hjson-go/v4"
	"github.com/midbel/mis/format"
	"github.com/midbel/mis/internal/slx"
	"github.com/midbel/mis/ledger"
	"github.com/midbel/mis/style"
	"gopkg.in/yaml.v2"
)

var (
	ErrInvalid = errors.New("invalid report")
	ErrFormat  = errors.New("unsupported format")
)

const (
	FormatYAML  = "yaml"
	FormatHJSON = "hjson"
)

const (
	SourceActuals = "actuals"
	SourceSum     = "sumcol"
	SourceCompare = "cmpcol"
)

type Report struct {
	Name    string                 `yaml:"name" json:"name"`
	Notes   string                 `yaml:"notes" json:"notes"`
	Locale  string                 `yaml:"locale" json:"locale"`
	Style   string                 `yaml:"style" json:"style"`
	Styles  map[string]style.Style `yaml:"styles" json:"styles"`
	SubKPIs []SubKPI               `yaml:"subkpis" json:"subkpis"`
	KPIs    []KPI                  `yaml:"kpis" json:"kpis"`
	Periods []Period               `yaml:"periods" json:"periods"`
}

type SubKPI struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

type KPI struct {
	Name            string            `yaml:"name" json:"name"`
	Description     string            `yaml:"description" json:"description"`
	Expression      string            `yaml:"expression" json:"expression"`
	Expressions     map[string]string `yaml:"expressions" json:"expressions"`
	Type            string            `yaml:"type" json:"type"`
	Compare         string            `yaml:"compare" json:"compare"`
	Accumulation    string            `yaml:"accumulation" json:"accumulation"`
	Style           string            `yaml:"style" json:"style"`
	AutoExpand      bool              `yaml:"auto_expand" json:"auto_expand"`
	AutoExpandStyle string            `yaml:"auto_expand_style" json:"auto_expand_style"`
}

func (k KPI) Multi() bool {
	return len(k.Expressions) > 0
}

// Exprs returns the expressions of the kpi, in the order of subkpis for a
// multi kpi. A missing expression evaluates to AccountingNone.
func (k KPI) Exprs(subkpis []SubKPI) []string {
	if !k.Multi() || len(subkpis) == 0 {
		return slx.One(k.Expression)
	}
	var list []string
	for _, s := range subkpis {
		expr, ok := k.Expressions[s.Name]
		if !ok || strings.TrimSpace(expr) == "" {
			expr = "AccountingNone"
		}
		list = append(list, expr)
	}
	return list
}

type Period struct {
	Key         string     `yaml:"key" json:"key"`
	Label       string     `yaml:"label" json:"label"`
	Description string     `yaml:"description" json:"description"`
	Source      string     `yaml:"source" json:"source"`
	From        string     `yaml:"from" json:"from"`
	To          string     `yaml:"to" json:"to"`
	SubKPIs     []string   `yaml:"subkpis" json:"subkpis"`
	Sum         []SumTerm  `yaml:"sum" json:"sum"`
	SumDetail   bool       `yaml:"sum_detail" json:"sum_detail"`
	Compare     *CompareTo `yaml:"compare" json:"compare"`
}

func (p Period) source() string {
	if p.Source == "" {
		return SourceActuals
	}
	return p.Source
}

func (p Period) Dates() (time.Time, time.Time, error) {
	from, err := time.Parse(ledger.DateLayout, p.From)
	if err != nil {
		return from, from, fmt.Errorf("%s: invalid start date %q", p.Key, p.From)
	}
	to, err := time.Parse(ledger.DateLayout, p.To)
	if err != nil {
		return from, to, fmt.Errorf("%s: invalid end date %q", p.Key, p.To)
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("%s: end date before start date", p.Key)
	}
	return from, to, nil
}

type SumTerm struct {
	Sign   string `yaml:"sign" json:"sign"`
	Period string `yaml:"period" json:"period"`
}

type CompareTo struct {
	Column string `yaml:"column" json:"column"`
	Base   string `yaml:"base" json:"base"`
}

func Load(file string) (*Report, error) {
	var kind string
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		kind = FormatYAML
	case ".hjson", ".json":
		kind = FormatHJSON
	default:
		return nil, fmt.Errorf("%s: %w", file, ErrFormat)
	}
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Decode(r, kind)
}

func Decode(r io.Reader, kind string) (*Report, error) {
	var (
		rpt Report
		err error
	)
	switch kind {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&rpt)
	case FormatHJSON:
		var buf []byte
		if buf, err = io.ReadAll(r); err == nil {
			err = hjson.Unmarshal(buf, &rpt)
		}
	default:
		return nil, fmt.Errorf("%s: %w", kind, ErrFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	return &rpt, nil
}

func (r *Report) KPI(name string) (KPI, bool) {
	for _, k := range r.KPIs {
		if k.Name == name {
			return k, true
		}
	}
	return KPI{}, false
}

// ColumnSubKPIs returns the sub-kpis of period, all the sub-kpis of the
// report when the period does not select any.
func (r *Report) ColumnSubKPIs(p Period) []SubKPI {
	if len(p.SubKPIs) == 0 {
		return r.SubKPIs
	}
	var list []SubKPI
	for _, s := range r.SubKPIs {
		for _, n := range p.SubKPIs {
			if s.Name == n {
				list = append(list, s)
				break
			}
		}
	}
	return list
}

// KPIStyles returns the resolved style of the rows of kpi and of its detail
// rows.
func (r *Report) KPIStyles(k KPI) (style.Props, style.Props) {
	var layers []style.Style
	for _, n := range []string{r.Style, k.Style} {
		if s, ok := r.Styles[n]; ok && n != "" {
			layers = append(layers, s)
		}
	}
	row := style.Merge(layers...)
	if s, ok := r.Styles[k.AutoExpandStyle]; ok && k.AutoExpandStyle != "" {
		return row, row.Apply(s)
	}
	return row, row
}

// Describe returns the description of period. Actuals periods without one
// get their date range, formatted for the locale of the report.
func (r *Report) Describe(p Period) string {
	if p.Description != "" || p.source() != SourceActuals {
		return p.Description
	}
	from, to, err := p.Dates()
	if err != nil {
		return ""
	}
	df := format.ParseDateFormatter(format.LocaleFor(r.Locale).DatePattern)
	return fmt.Sprintf("from %s to %s", df.Format(from), df.Format(to))
}
