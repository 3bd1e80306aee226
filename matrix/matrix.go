package matrix

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/midbel/mis/format"
	"github.com/midbel/mis/internal/slx"
	"github.com/midbel/mis/style"
	"github.com/midbel/mis/value"
)

var (
	ErrNotComparable = errors.New("columns are not comparable")
	ErrTupleLength   = errors.New("invalid number of values")
	ErrUnknownColumn = errors.New("unknown column")
	ErrUnknownKPI    = errors.New("unknown kpi")
	ErrDuplicate     = errors.New("duplicate key")
)

type Accumulation string

const (
	AccSum  Accumulation = "sum"
	AccAvg  Accumulation = "avg"
	AccNone Accumulation = "none"
)

func (a Accumulation) Valid() bool {
	return a == AccSum || a == AccAvg || a == AccNone
}

type KPI struct {
	Name         string
	Description  string
	Expression   string
	Expressions  map[string]string
	Kind         style.Kind
	Compare      style.Compare
	Accumulation Accumulation

	// resolved styles of the kpi row and of its detail rows
	Style       style.Props
	DetailStyle style.Props
}

// Multi reports whether the kpi has one expression per sub-kpi.
func (k *KPI) Multi() bool {
	return len(k.Expressions) > 0
}

func (k *KPI) kind() style.Kind {
	if k.Kind == "" {
		return style.KindNum
	}
	return k.Kind
}

type SubKPI struct {
	Name        string
	Description string
}

type SumTerm struct {
	Sign   string
	Column string
}

type Drilldown struct {
	Column  string `json:"column"`
	KPI     string `json:"kpi"`
	Expr    string `json:"expr"`
	Account string `json:"account,omitempty"`
}

type Row struct {
	KPI    *KPI
	Entity string

	parent *Row
	matrix *Matrix
}

func (r *Row) ID() string {
	if r.Entity == "" {
		return r.KPI.Name
	}
	return fmt.Sprintf("%s:%s", r.KPI.Name, r.Entity)
}

func (r *Row) Parent() *Row {
	return r.parent
}

func (r *Row) Label() string {
	if r.Entity != "" {
		if label, ok := r.matrix.labels[r.Entity]; ok {
			return label
		}
		return r.Entity
	}
	return cmp.Or(r.KPI.Description, r.KPI.Name)
}

func (r *Row) Props() style.Props {
	if r.Entity != "" {
		return r.KPI.DetailStyle
	}
	return r.KPI.Style
}

func (r *Row) empty() bool {
	for _, col := range r.matrix.columnList() {
		for _, c := range col.cells[r] {
			if !value.IsEmpty(c.Value) {
				return false
			}
		}
	}
	return true
}

type Cell struct {
	Value     value.Value
	Rendered  string
	Comment   string
	Props     style.Props
	Kind      style.Kind
	Drilldown *Drilldown
}

type SubColumn struct {
	Label       string
	Description string
	SubKPI      string
}

type Column struct {
	Key         string
	Label       string
	Description string

	subkpis []SubKPI
	subcols []SubColumn
	cells   map[*Row][]Cell
}

func newColumn(key, label, description string, subkpis []SubKPI) *Column {
	col := Column{
		Key:         key,
		Label:       label,
		Description: description,
		subkpis:     slices.Clone(subkpis),
		cells:       make(map[*Row][]Cell),
	}
	if len(subkpis) == 0 {
		col.subcols = append(col.subcols, SubColumn{})
	}
	for _, s := range subkpis {
		sc := SubColumn{
			Label:       cmp.Or(s.Description, s.Name),
			Description: s.Description,
			SubKPI:      s.Name,
		}
		col.subcols = append(col.subcols, sc)
	}
	return &col
}

func (c *Column) Colspan() int {
	return len(c.subcols)
}

func (c *Column) SubColumns() []SubColumn {
	return slices.Clone(c.subcols)
}

func (c *Column) SubKPIs() []SubKPI {
	return slices.Clone(c.subkpis)
}

func (c *Column) Cells(r *Row) ([]Cell, bool) {
	cs, ok := c.cells[r]
	return cs, ok
}

// values returns the values of row restricted to the given sub-kpis.
func (c *Column) values(r *Row, common []SubKPI) []value.Value {
	size := max(len(common), 1)
	cells, ok := c.cells[r]
	if !ok {
		return noneValues(size)
	}
	if len(common) == 0 {
		return []value.Value{cells[0].Value}
	}
	vs := make([]value.Value, 0, size)
	for _, s := range common {
		ix := slices.IndexFunc(c.subkpis, func(other SubKPI) bool {
			return other.Name == s.Name
		})
		vs = append(vs, cells[ix].Value)
	}
	return vs
}

type comparisonDef struct {
	Column      string
	Base        string
	Label       string
	Description string
}

type sumDef struct {
	Terms       []SumTerm
	Label       string
	Description string
	Detail      bool
}

type Option func(*Matrix)

func WithLocale(loc format.Locale) Option {
	return func(m *Matrix) {
		m.locale = loc
	}
}

func WithoutComments() Option {
	return func(m *Matrix) {
		m.comments = false
	}
}

// Matrix holds the values of a report: one row per kpi, optionally followed
// by detail rows, and one column per period or derived column.
type Matrix struct {
	locale   format.Locale
	comments bool

	kpis    []*KPI
	rows    map[string]*Row
	details map[string]map[string]*Row
	labels  map[string]string

	keys    []string
	columns map[string]*Column

	comparisons map[string]comparisonDef
	sums        map[string]sumDef
}

func New(options ...Option) *Matrix {
	m := Matrix{
		locale:      format.DefaultLocale(),
		comments:    true,
		rows:        make(map[string]*Row),
		details:     make(map[string]map[string]*Row),
		labels:      make(map[string]string),
		columns:     make(map[string]*Column),
		comparisons: make(map[string]comparisonDef),
		sums:        make(map[string]sumDef),
	}
	for _, o := range options {
		o(&m)
	}
	return &m
}

func (m *Matrix) Locale() format.Locale {
	return m.locale
}

func (m *Matrix) DeclareKPI(kpi KPI) error {
	if _, ok := m.rows[kpi.Name]; ok {
		return fmt.Errorf("kpi %s: %w", kpi.Name, ErrDuplicate)
	}
	k := &kpi
	m.kpis = append(m.kpis, k)
	m.rows[k.Name] = &Row{
		KPI:    k,
		matrix: m,
	}
	m.details[k.Name] = make(map[string]*Row)
	return nil
}

func (m *Matrix) DeclareColumn(key, label, description string, subkpis []SubKPI) (*Column, error) {
	if err := m.reserve(key); err != nil {
		return nil, err
	}
	col := newColumn(key, label, description, subkpis)
	m.columns[key] = col
	return col, nil
}

// DeclareComparison reserves a column computed by ComputeComparisons.
func (m *Matrix) DeclareComparison(key, column, base, label, description string) error {
	if err := m.reserve(key); err != nil {
		return err
	}
	m.comparisons[key] = comparisonDef{
		Column:      column,
		Base:        base,
		Label:       label,
		Description: description,
	}
	return nil
}

// DeclareSum reserves a column computed by ComputeSums.
func (m *Matrix) DeclareSum(key, label, description string, terms []SumTerm, detail bool) error {
	for _, t := range terms {
		if t.Sign != "+" && t.Sign != "-" {
			return fmt.Errorf("sum %s: invalid sign %q for column %s", key, t.Sign, t.Column)
		}
	}
	if err := m.reserve(key); err != nil {
		return err
	}
	m.sums[key] = sumDef{
		Terms:       slices.Clone(terms),
		Label:       label,
		Description: description,
		Detail:      detail,
	}
	return nil
}

func (m *Matrix) reserve(key string) error {
	if slices.Contains(m.keys, key) {
		return fmt.Errorf("column %s: %w", key, ErrDuplicate)
	}
	m.keys = append(m.keys, key)
	m.columns[key] = nil
	return nil
}

func (m *Matrix) SetEntityLabel(entity, label string) {
	m.labels[entity] = label
}

func (m *Matrix) SetValues(kpi, column string, values []value.Value, drilldowns []*Drilldown) error {
	return m.SetDetailValues(kpi, column, "", values, drilldowns)
}

// SetDetailValues sets the cells of the detail row of kpi for entity. The
// row is created on first use. An empty entity targets the kpi row.
func (m *Matrix) SetDetailValues(kpi, column, entity string, values []value.Value, drilldowns []*Drilldown) error {
	row, err := m.row(kpi, entity)
	if err != nil {
		return err
	}
	col := m.columns[column]
	if col == nil {
		return fmt.Errorf("%s: %w", column, ErrUnknownColumn)
	}
	if len(values) != col.Colspan() {
		return fmt.Errorf("%s/%s: %w: got %d, want %d", kpi, column, ErrTupleLength, len(values), col.Colspan())
	}
	if drilldowns != nil && len(drilldowns) != col.Colspan() {
		return fmt.Errorf("%s/%s: %w: drilldowns", kpi, column, ErrTupleLength)
	}
	m.setCells(row, col, values, drilldowns, m.comments)
	return nil
}

func (m *Matrix) row(kpi, entity string) (*Row, error) {
	parent, ok := m.rows[kpi]
	if !ok {
		return nil, fmt.Errorf("%s: %w", kpi, ErrUnknownKPI)
	}
	if entity == "" {
		return parent, nil
	}
	row, ok := m.details[kpi][entity]
	if !ok {
		row = &Row{
			KPI:    parent.KPI,
			Entity: entity,
			parent: parent,
			matrix: m,
		}
		m.details[kpi][entity] = row
	}
	return row, nil
}

func (m *Matrix) setCells(row *Row, col *Column, values []value.Value, drilldowns []*Drilldown, comments bool) {
	var (
		props = row.Props()
		kind  = row.KPI.kind()
		cells = make([]Cell, len(values))
	)
	for i, v := range values {
		c := Cell{
			Value:    v,
			Props:    props,
			Kind:     kind,
			Rendered: style.Render(m.locale, props, kind, v, style.SignMinus),
		}
		if drilldowns != nil {
			c.Drilldown = drilldowns[i]
		}
		if comments {
			c.Comment = comment(row.KPI, col.subcols[i], v)
		}
		cells[i] = c
	}
	col.cells[row] = cells
}

func comment(kpi *KPI, sub SubColumn, v value.Value) string {
	if e, ok := v.(value.Error); ok {
		return e.Message
	}
	if kpi.Multi() && sub.SubKPI != "" {
		return fmt.Sprintf("%s.%s = %s", kpi.Name, sub.SubKPI, kpi.Expressions[sub.SubKPI])
	}
	return fmt.Sprintf("%s = %s", kpi.Name, kpi.Expression)
}

// Rows yields each kpi row followed by its detail rows sorted by label.
func (m *Matrix) Rows() iter.Seq[*Row] {
	it := func(yield func(*Row) bool) {
		for _, k := range m.kpis {
			if !yield(m.rows[k.Name]) {
				return
			}
			for _, r := range m.detailRows(k.Name) {
				if !yield(r) {
					return
				}
			}
		}
	}
	return it
}

func (m *Matrix) detailRows(kpi string) []*Row {
	var rows []*Row
	for _, r := range m.details[kpi] {
		rows = append(rows, r)
	}
	slices.SortFunc(rows, func(a, b *Row) int {
		return cmp.Or(cmp.Compare(a.Label(), b.Label()), cmp.Compare(a.Entity, b.Entity))
	})
	return rows
}

// Columns yields the columns in declaration order. Derived columns are only
// yielded once computed.
func (m *Matrix) Columns() iter.Seq[*Column] {
	it := func(yield func(*Column) bool) {
		for _, c := range m.columnList() {
			if !yield(c) {
				return
			}
		}
	}
	return it
}

func (m *Matrix) Column(key string) (*Column, bool) {
	c := m.columns[key]
	return c, c != nil
}

func (m *Matrix) Row(kpi string) (*Row, bool) {
	r, ok := m.rows[kpi]
	return r, ok
}

func (m *Matrix) columnList() []*Column {
	var list []*Column
	for _, k := range m.keys {
		if c := m.columns[k]; c != nil {
			list = append(list, c)
		}
	}
	return list
}

func noneValues(n int) []value.Value {
	return slx.Repeat(value.None, n)
}
