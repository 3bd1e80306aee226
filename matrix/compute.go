package matrix

import (
	"fmt"
	"slices"

	"github.com/midbel/mis/style"
	"github.com/midbel/mis/value"
)

// ComputeComparisons fills the columns declared with DeclareComparison, in
// declaration order.
func (m *Matrix) ComputeComparisons() error {
	for _, key := range m.keys {
		def, ok := m.comparisons[key]
		if !ok {
			continue
		}
		if err := m.compare(key, def); err != nil {
			return err
		}
	}
	return nil
}

func (m *Matrix) compare(key string, def comparisonDef) error {
	col, base := m.columns[def.Column], m.columns[def.Base]
	if col == nil {
		return fmt.Errorf("comparison %s: %s: %w", key, def.Column, ErrUnknownColumn)
	}
	if base == nil {
		return fmt.Errorf("comparison %s: %s: %w", key, def.Base, ErrUnknownColumn)
	}
	common := commonSubKPIs(col, base)
	if (len(col.subkpis) > 0 || len(base.subkpis) > 0) && len(common) == 0 {
		return fmt.Errorf("columns %s and %s: %w", col.Label, base.Label, ErrNotComparable)
	}
	res := newColumn(key, def.Label, def.Description, common)
	for row := range m.Rows() {
		_, ok1 := col.cells[row]
		_, ok2 := base.cells[row]
		if !ok1 && !ok2 {
			continue
		}
		var (
			values = col.values(row, common)
			bases  = base.values(row, common)
			cells  = make([]Cell, len(values))
		)
		for i := range values {
			delta, rendered, props, kind := style.CompareAndRender(m.locale, row.Props(), row.KPI.kind(), row.KPI.Compare, values[i], bases[i])
			cells[i] = Cell{
				Value:    delta,
				Rendered: rendered,
				Props:    props,
				Kind:     kind,
			}
		}
		res.cells[row] = cells
	}
	m.columns[key] = res
	return nil
}

// ComputeSums fills the columns declared with DeclareSum. Only kpis
// accumulated by sum are summed; the cells of other kpis stay empty. Detail
// rows are summed only when the sum was declared with detail.
func (m *Matrix) ComputeSums() error {
	for _, key := range m.keys {
		def, ok := m.sums[key]
		if !ok {
			continue
		}
		if err := m.sum(key, def); err != nil {
			return err
		}
	}
	return nil
}

func (m *Matrix) sum(key string, def sumDef) error {
	var cols []*Column
	for _, t := range def.Terms {
		c := m.columns[t.Column]
		if c == nil {
			return fmt.Errorf("sum %s: %s: %w", key, t.Column, ErrUnknownColumn)
		}
		cols = append(cols, c)
	}
	common := commonSubKPIs(cols...)
	hasSub := slices.ContainsFunc(cols, func(c *Column) bool {
		return len(c.subkpis) > 0
	})
	if hasSub && len(common) == 0 {
		return fmt.Errorf("sum %s: %w: no common sub kpis", key, ErrNotComparable)
	}
	res := newColumn(key, def.Label, def.Description, common)
	m.columns[key] = res

	size := max(len(common), 1)
	for row := range m.Rows() {
		var acc value.Value = value.Repeat(value.None, size)
		if row.KPI.Accumulation == AccSum && (row.Entity == "" || def.Detail) {
			for i, t := range def.Terms {
				vs := value.NewArray(cols[i].values(row, common)...)
				acc = accumulate(acc, vs, t.Sign)
			}
		}
		m.setCells(row, res, flatten(acc, size), nil, false)
	}
	return nil
}

func accumulate(acc, vs value.Value, sign string) value.Value {
	op := value.Add
	if sign == "-" {
		op = value.Sub
	}
	res, err := op(acc, vs)
	if err != nil {
		return value.Repeat(value.FromError(err), vs.(value.Array).Len())
	}
	return res
}

func flatten(v value.Value, size int) []value.Value {
	if arr, ok := v.(value.Array); ok {
		return arr.Values()
	}
	vs := make([]value.Value, size)
	for i := range vs {
		vs[i] = v
	}
	return vs
}

// commonSubKPIs returns the sub-kpis shared by all columns, in the order of
// the first one. A column without sub-kpis makes the result empty.
func commonSubKPIs(cols ...*Column) []SubKPI {
	if len(cols) == 0 {
		return nil
	}
	common := slices.Clone(cols[0].subkpis)
	for _, c := range cols[1:] {
		common = slices.DeleteFunc(common, func(s SubKPI) bool {
			return !slices.ContainsFunc(c.subkpis, func(other SubKPI) bool {
				return other.Name == s.Name
			})
		})
	}
	return common
}
