package report

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/midbel/mis/aep"
	"github.com/midbel/mis/formula"
	"github.com/midbel/mis/matrix"
	"github.com/midbel/mis/style"
)

var nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func validName(name string) bool {
	if !nameRe.MatchString(name) || name == formula.AccountingNone {
		return false
	}
	_, ok := formula.Builtins[name]
	return !ok
}

// Validate reports every configuration error of the report.
func (r *Report) Validate() error {
	var errs []error
	fail := func(msg string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(msg, args...)))
	}
	for name, s := range r.Styles {
		if err := s.Validate(); err != nil {
			fail("style %s: %s", name, err)
		}
	}
	if r.Style != "" {
		if _, ok := r.Styles[r.Style]; !ok {
			fail("unknown base style %s", r.Style)
		}
	}
	subkpis := make(map[string]struct{})
	for _, s := range r.SubKPIs {
		if !validName(s.Name) {
			fail("invalid sub kpi name %q", s.Name)
		}
		if _, ok := subkpis[s.Name]; ok {
			fail("duplicate sub kpi %s", s.Name)
		}
		subkpis[s.Name] = struct{}{}
	}
	kpis := make(map[string]struct{})
	for _, k := range r.KPIs {
		if !validName(k.Name) {
			fail("invalid kpi name %q", k.Name)
		}
		if _, ok := kpis[k.Name]; ok {
			fail("duplicate kpi %s", k.Name)
		}
		kpis[k.Name] = struct{}{}
	}
	for _, k := range r.KPIs {
		for _, err := range r.validateKPI(k, kpis, subkpis) {
			fail("kpi %s: %s", k.Name, err)
		}
	}
	periods := make(map[string]string)
	for _, p := range r.Periods {
		if !validName(p.Key) {
			fail("invalid period key %q", p.Key)
		}
		if _, ok := periods[p.Key]; ok {
			fail("duplicate period %s", p.Key)
		}
		for _, err := range r.validatePeriod(p, periods, subkpis) {
			fail("period %s: %s", p.Key, err)
		}
		periods[p.Key] = p.source()
	}
	return errors.Join(errs...)
}

func (r *Report) validateKPI(k KPI, kpis, subkpis map[string]struct{}) []error {
	var errs []error
	if k.Type != "" && !style.Kind(k.Type).Valid() {
		errs = append(errs, fmt.Errorf("invalid type %q", k.Type))
	}
	if k.Compare != "" && !style.Compare(k.Compare).Valid() {
		errs = append(errs, fmt.Errorf("invalid compare method %q", k.Compare))
	}
	if k.Accumulation != "" && !matrix.Accumulation(k.Accumulation).Valid() {
		errs = append(errs, fmt.Errorf("invalid accumulation method %q", k.Accumulation))
	}
	for _, s := range []string{k.Style, k.AutoExpandStyle} {
		if _, ok := r.Styles[s]; s != "" && !ok {
			errs = append(errs, fmt.Errorf("unknown style %s", s))
		}
	}
	exprs := []string{k.Expression}
	if k.Multi() {
		if k.Expression != "" {
			errs = append(errs, fmt.Errorf("expression and expressions are exclusive"))
		}
		exprs = exprs[:0]
		for _, s := range slices.Sorted(maps.Keys(k.Expressions)) {
			if _, ok := subkpis[s]; !ok {
				errs = append(errs, fmt.Errorf("unknown sub kpi %s", s))
			}
			exprs = append(exprs, k.Expressions[s])
		}
	}
	for _, str := range exprs {
		if strings.TrimSpace(str) == "" {
			if !k.Multi() {
				errs = append(errs, fmt.Errorf("missing expression"))
			}
			continue
		}
		replaced, _ := aep.NewProcessor().Bind(str)
		expr, err := formula.Parse(replaced)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", str, err))
			continue
		}
		for _, n := range formula.Names(expr) {
			if strings.HasPrefix(n, "_aep") {
				continue
			}
			if _, ok := kpis[n]; !ok {
				errs = append(errs, fmt.Errorf("%s: unknown name %s", str, n))
			}
		}
	}
	return errs
}

func (r *Report) validatePeriod(p Period, periods map[string]string, subkpis map[string]struct{}) []error {
	var errs []error
	for _, s := range p.SubKPIs {
		if _, ok := subkpis[s]; !ok {
			errs = append(errs, fmt.Errorf("unknown sub kpi %s", s))
		}
	}
	known := func(key string) {
		if _, ok := periods[key]; !ok {
			errs = append(errs, fmt.Errorf("%s: unknown or forward period reference", key))
		}
	}
	switch p.source() {
	case SourceActuals:
		if _, _, err := p.Dates(); err != nil {
			errs = append(errs, err)
		}
	case SourceSum:
		if len(p.Sum) == 0 {
			errs = append(errs, fmt.Errorf("missing sum terms"))
		}
		for _, t := range p.Sum {
			if t.Sign != "+" && t.Sign != "-" {
				errs = append(errs, fmt.Errorf("invalid sign %q", t.Sign))
			}
			known(t.Period)
		}
	case SourceCompare:
		if p.Compare == nil {
			errs = append(errs, fmt.Errorf("missing compare definition"))
			break
		}
		for _, key := range []string{p.Compare.Column, p.Compare.Base} {
			known(key)
			if periods[key] == SourceSum {
				errs = append(errs, fmt.Errorf("%s: sum columns can not be compared", key))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("invalid source %q", p.Source))
	}
	return errs
}
