package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/midbel/mis/aep"
	"github.com/midbel/mis/format"
	"github.com/midbel/mis/formula"
	"github.com/midbel/mis/internal/slx"
	"github.com/midbel/mis/ledger"
	"github.com/midbel/mis/matrix"
	"github.com/midbel/mis/style"
	"github.com/midbel/mis/value"
	"go.uber.org/zap"
)

var ErrNoSource = errors.New("no ledger source")

// Engine computes reports. Source may be nil for reports without
// accounting expressions.
type Engine struct {
	Source ledger.Source
	Logger *zap.Logger
}

func (e Engine) Compute(ctx context.Context, r *Report) (*matrix.Matrix, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run", uuid.NewString()), zap.String("report", r.Name))
	logger.Info("compute report", zap.Int("kpis", len(r.KPIs)), zap.Int("periods", len(r.Periods)))

	var (
		mx   = matrix.New(matrix.WithLocale(format.LocaleFor(r.Locale)))
		proc = aep.NewProcessor()
	)
	if err := r.declare(mx, proc); err != nil {
		return nil, err
	}
	if len(proc.Tokens()) > 0 && e.Source == nil {
		return nil, ErrNoSource
	}
	for _, p := range r.Periods {
		if p.source() != SourceActuals {
			continue
		}
		from, to, _ := p.Dates()
		if len(proc.Tokens()) > 0 {
			if err := proc.Compute(ctx, e.Source, from, to); err != nil {
				logger.Error("ledger query failed", zap.String("period", p.Key), zap.Error(err))
				return nil, fmt.Errorf("period %s: %w", p.Key, err)
			}
		}
		run := evaluator{
			report: r,
			matrix: mx,
			proc:   proc,
			period: p,
			logger: logger,
		}
		if err := run.Evaluate(); err != nil {
			return nil, err
		}
	}
	if err := mx.ComputeComparisons(); err != nil {
		return nil, err
	}
	if err := mx.ComputeSums(); err != nil {
		return nil, err
	}
	logger.Info("report computed")
	return mx, nil
}

func (r *Report) declare(mx *matrix.Matrix, proc *aep.Processor) error {
	for _, k := range r.KPIs {
		row, detail := r.KPIStyles(k)
		kpi := matrix.KPI{
			Name:         k.Name,
			Description:  k.Description,
			Expression:   k.Expression,
			Expressions:  k.Expressions,
			Kind:         style.Kind(k.Type),
			Compare:      style.Compare(k.Compare),
			Accumulation: matrix.Accumulation(k.Accumulation),
			Style:        row,
			DetailStyle:  detail,
		}
		if kpi.Accumulation == "" {
			kpi.Accumulation = matrix.AccSum
			if kpi.Kind == style.KindStr {
				kpi.Accumulation = matrix.AccNone
			}
		}
		if kpi.Compare == "" {
			kpi.Compare = style.CompareDiff
		}
		if err := mx.DeclareKPI(kpi); err != nil {
			return err
		}
		for _, expr := range k.Exprs(r.SubKPIs) {
			if err := proc.Parse(expr); err != nil {
				return err
			}
		}
	}
	for _, p := range r.Periods {
		var (
			label = p.Label
			desc  = r.Describe(p)
			err   error
		)
		if label == "" {
			label = p.Key
		}
		switch p.source() {
		case SourceActuals:
			_, err = mx.DeclareColumn(p.Key, label, desc, r.subKPIs(p))
		case SourceCompare:
			err = mx.DeclareComparison(p.Key, p.Compare.Column, p.Compare.Base, label, desc)
		case SourceSum:
			var terms []matrix.SumTerm
			for _, t := range p.Sum {
				terms = append(terms, matrix.SumTerm{Sign: t.Sign, Column: t.Period})
			}
			err = mx.DeclareSum(p.Key, label, desc, terms, p.SumDetail)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) subKPIs(p Period) []matrix.SubKPI {
	var list []matrix.SubKPI
	for _, s := range r.ColumnSubKPIs(p) {
		list = append(list, matrix.SubKPI{Name: s.Name, Description: s.Description})
	}
	return list
}

// evaluator computes the kpis of one actuals period. Kpis referencing names
// not yet bound are computed again until all are resolved or a round makes
// no progress.
type evaluator struct {
	report *Report
	matrix *matrix.Matrix
	proc   *aep.Processor
	period Period
	logger *zap.Logger
}

func (e evaluator) Evaluate() error {
	var (
		locals  = formula.Empty()
		subkpis = e.report.ColumnSubKPIs(e.period)
		queue   = e.report.KPIs
		rounds  int
	)
	for len(queue) > 0 {
		rounds++
		var deferred []KPI
		for _, k := range queue {
			vals, drills, failed := e.evalKPI(k, subkpis, locals)
			if failed {
				deferred = append(deferred, k)
			} else {
				locals.Define(k.Name, bindValue(k, subkpis, vals))
			}
			if err := e.store(k, subkpis, vals, drills); err != nil {
				return err
			}
			if failed || !k.AutoExpand {
				continue
			}
			if err := e.expand(k, subkpis, locals); err != nil {
				return err
			}
		}
		if len(deferred) == len(queue) {
			names := make([]string, 0, len(deferred))
			for _, k := range deferred {
				names = append(names, k.Name)
			}
			e.logger.Warn("unresolved names",
				zap.String("period", e.period.Key),
				zap.String("kpis", strings.Join(names, ",")),
			)
			break
		}
		queue = deferred
	}
	e.logger.Debug("period computed", zap.String("period", e.period.Key), zap.Int("rounds", rounds))
	return nil
}

func (e evaluator) evalKPI(k KPI, subkpis []SubKPI, locals formula.Resolver) ([]value.Value, []*matrix.Drilldown, bool) {
	var (
		vals   []value.Value
		drills []*matrix.Drilldown
		failed bool
	)
	for _, expr := range k.Exprs(subkpis) {
		replaced, env := e.proc.Bind(expr)
		scope := formula.Enclosed(locals)
		scope.Merge(env)

		v := formula.SafeEval(replaced, scope)
		vals = append(vals, v)
		failed = failed || value.HasNameError(v)

		var dd *matrix.Drilldown
		if replaced != expr {
			dd = &matrix.Drilldown{
				Column: e.period.Key,
				KPI:    k.Name,
				Expr:   expr,
			}
		}
		drills = append(drills, dd)
	}
	return vals, drills, failed
}

func (e evaluator) expand(k KPI, subkpis []SubKPI, locals formula.Resolver) error {
	exprs := k.Exprs(subkpis)
	for _, acc := range e.proc.Accounts(strings.Join(exprs, " ")) {
		var (
			vals   []value.Value
			drills []*matrix.Drilldown
		)
		for _, expr := range exprs {
			replaced, env := e.proc.BindAccount(expr, acc)
			scope := formula.Enclosed(locals)
			scope.Merge(env)
			vals = append(vals, formula.SafeEval(replaced, scope))

			var dd *matrix.Drilldown
			if replaced != expr {
				dd = &matrix.Drilldown{
					Column:  e.period.Key,
					KPI:     k.Name,
					Expr:    expr,
					Account: acc,
				}
			}
			drills = append(drills, dd)
		}
		label := acc
		if name := e.proc.Name(acc); name != "" {
			label = fmt.Sprintf("%s %s", acc, name)
		}
		e.matrix.SetEntityLabel(acc, label)
		vals, drills = spread(k, subkpis, vals, drills)
		if err := e.matrix.SetDetailValues(k.Name, e.period.Key, acc, vals, drills); err != nil {
			return err
		}
	}
	return nil
}

func (e evaluator) store(k KPI, subkpis []SubKPI, vals []value.Value, drills []*matrix.Drilldown) error {
	vals, drills = spread(k, subkpis, vals, drills)
	return e.matrix.SetValues(k.Name, e.period.Key, vals, drills)
}

// spread distributes the array computed by a single expression kpi over the
// sub-kpis of the column. An error is repeated in every sub-kpi.
func spread(k KPI, subkpis []SubKPI, vals []value.Value, drills []*matrix.Drilldown) ([]value.Value, []*matrix.Drilldown) {
	if k.Multi() || len(subkpis) == 0 || len(vals) != 1 {
		return vals, drills
	}
	switch v := vals[0].(type) {
	case value.Array:
		return v.Values(), make([]*matrix.Drilldown, v.Len())
	case value.Error:
		return slx.Repeat(vals[0], len(subkpis)), make([]*matrix.Drilldown, len(subkpis))
	default:
		return vals, drills
	}
}

func bindValue(k KPI, subkpis []SubKPI, vals []value.Value) value.Value {
	if !k.Multi() || len(subkpis) == 0 {
		return vals[0]
	}
	names := make([]string, 0, len(subkpis))
	for _, s := range subkpis {
		names = append(names, s.Name)
	}
	arr, err := value.NewNamedArray(names, vals)
	if err != nil {
		return value.NewArray(vals...)
	}
	return arr
}
