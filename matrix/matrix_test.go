package matrix

import (
	"errors"
	"slices"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/midbel/mis/style"
	"github.com/midbel/mis/value"
)

func sample(t *testing.T) *Matrix {
	t.Helper()
	m := New()
	kpis := []KPI{
		{
			Name:         "sales",
			Description:  "Sales",
			Expression:   "balp[70%]",
			Kind:         style.KindNum,
			Compare:      style.ComparePct,
			Accumulation: AccSum,
			Style:        style.Props{DP: 0},
			DetailStyle:  style.Props{IndentLevel: 1},
		},
		{
			Name:         "margin",
			Description:  "Margin",
			Expression:   "sales / 2",
			Kind:         style.KindNum,
			Compare:      style.CompareDiff,
			Accumulation: AccAvg,
		},
	}
	for _, k := range kpis {
		if err := m.DeclareKPI(k); err != nil {
			t.Fatalf("fail to declare kpi %s: %s", k.Name, err)
		}
	}
	for _, key := range []string{"cur", "prev"} {
		if _, err := m.DeclareColumn(key, key, "", nil); err != nil {
			t.Fatalf("fail to declare column %s: %s", key, err)
		}
	}
	return m
}

func set(t *testing.T, m *Matrix, kpi, col, entity string, values ...value.Value) {
	t.Helper()
	if err := m.SetDetailValues(kpi, col, entity, values, nil); err != nil {
		t.Fatalf("fail to set values %s/%s: %s", kpi, col, err)
	}
}

func TestComparison(t *testing.T) {
	m := sample(t)
	set(t, m, "sales", "cur", "", value.Float(100))
	set(t, m, "sales", "prev", "", value.Float(50))
	set(t, m, "margin", "cur", "", value.Float(10))

	if err := m.DeclareComparison("cmp", "cur", "prev", "Cur vs Prev", ""); err != nil {
		t.Fatalf("fail to declare comparison: %s", err)
	}
	if err := m.ComputeComparisons(); err != nil {
		t.Fatalf("fail to compute comparisons: %s", err)
	}
	col, ok := m.Column("cmp")
	if !ok {
		t.Fatalf("comparison column not computed")
	}
	row, _ := m.Row("sales")
	cells, ok := col.Cells(row)
	if !ok || len(cells) != 1 {
		t.Fatalf("sales: expected one comparison cell, got %s", spew.Sdump(cells))
	}
	if !value.Equal(cells[0].Value, value.Float(1)) {
		t.Errorf("sales: delta mismatched! want 1, got %s", cells[0].Value)
	}
	if want := "+100.0\u00a0%"; cells[0].Rendered != want {
		t.Errorf("sales: rendered mismatched! want %q, got %q", want, cells[0].Rendered)
	}
	if cells[0].Kind != style.KindPct || cells[0].Comment != "" {
		t.Errorf("sales: unexpected comparison cell %s", spew.Sdump(cells[0]))
	}

	row, _ = m.Row("margin")
	cells, ok = col.Cells(row)
	if !ok {
		t.Fatalf("margin: comparison with missing base should be computed")
	}
	if !value.Equal(cells[0].Value, value.Float(10)) {
		t.Errorf("margin: delta mismatched! want 10, got %s", cells[0].Value)
	}
}

func TestComparisonSkipMissingRows(t *testing.T) {
	m := sample(t)
	set(t, m, "sales", "cur", "", value.Float(1))
	if err := m.DeclareComparison("cmp", "cur", "prev", "", ""); err != nil {
		t.Fatalf("fail to declare comparison: %s", err)
	}
	if err := m.ComputeComparisons(); err != nil {
		t.Fatalf("fail to compute comparisons: %s", err)
	}
	col, _ := m.Column("cmp")
	row, _ := m.Row("margin")
	if _, ok := col.Cells(row); ok {
		t.Errorf("margin: row without values should be skipped")
	}
}

func TestNotComparable(t *testing.T) {
	m := New()
	m.DeclareKPI(KPI{Name: "k", Expression: "1"})
	m.DeclareColumn("a", "A", "", []SubKPI{{Name: "x"}, {Name: "y"}})
	m.DeclareColumn("b", "B", "", []SubKPI{{Name: "z"}})
	m.DeclareColumn("c", "C", "", nil)

	m.DeclareComparison("ab", "a", "b", "", "")
	if err := m.ComputeComparisons(); !errors.Is(err, ErrNotComparable) {
		t.Errorf("columns without common sub kpis should not be comparable, got %v", err)
	}

	m = New()
	m.DeclareKPI(KPI{Name: "k", Expression: "1"})
	m.DeclareColumn("a", "A", "", []SubKPI{{Name: "x"}})
	m.DeclareColumn("c", "C", "", nil)
	m.DeclareSum("s", "S", "", []SumTerm{{Sign: "+", Column: "a"}, {Sign: "+", Column: "c"}}, false)
	if err := m.ComputeSums(); !errors.Is(err, ErrNotComparable) {
		t.Errorf("sum of columns without common sub kpis should fail, got %v", err)
	}
}

func TestCommonSubKPIs(t *testing.T) {
	m := New()
	m.DeclareKPI(KPI{Name: "k", Compare: style.CompareDiff, Expressions: map[string]string{"x": "1", "y": "2", "z": "3"}})
	m.DeclareColumn("a", "A", "", []SubKPI{{Name: "x"}, {Name: "y"}, {Name: "z"}})
	m.DeclareColumn("b", "B", "", []SubKPI{{Name: "z"}, {Name: "x"}})
	set(t, m, "k", "a", "", value.Float(1), value.Float(2), value.Float(3))
	set(t, m, "k", "b", "", value.Float(1), value.Float(1))

	m.DeclareComparison("cmp", "a", "b", "", "")
	if err := m.ComputeComparisons(); err != nil {
		t.Fatalf("fail to compute comparison: %s", err)
	}
	col, _ := m.Column("cmp")
	var names []string
	for _, s := range col.SubColumns() {
		names = append(names, s.SubKPI)
	}
	if want := []string{"x", "z"}; !slices.Equal(names, want) {
		t.Errorf("sub columns mismatched! want %v, got %v", want, names)
	}
	row, _ := m.Row("k")
	cells, _ := col.Cells(row)
	if len(cells) != 2 || !value.IsNone(cells[0].Value) || !value.Equal(cells[1].Value, value.Float(2)) {
		t.Errorf("comparison cells mismatched: %s", spew.Sdump(cells))
	}
}

func TestSums(t *testing.T) {
	m := sample(t)
	set(t, m, "sales", "cur", "", value.Float(100))
	set(t, m, "sales", "prev", "", value.Float(30))
	set(t, m, "sales", "cur", "acc1", value.Float(60))
	set(t, m, "sales", "prev", "acc1", value.Float(10))
	set(t, m, "margin", "cur", "", value.Float(8))
	set(t, m, "margin", "prev", "", value.Float(2))

	terms := []SumTerm{
		{Sign: "+", Column: "cur"},
		{Sign: "-", Column: "prev"},
	}
	if err := m.DeclareSum("diff", "Diff", "", terms, false); err != nil {
		t.Fatalf("fail to declare sum: %s", err)
	}
	if err := m.DeclareSum("diffd", "Diff", "", terms, true); err != nil {
		t.Fatalf("fail to declare sum: %s", err)
	}
	if err := m.ComputeSums(); err != nil {
		t.Fatalf("fail to compute sums: %s", err)
	}
	tests := []struct {
		Column string
		KPI    string
		Entity string
		Want   value.Value
	}{
		{Column: "diff", KPI: "sales", Want: value.Float(70)},
		{Column: "diff", KPI: "sales", Entity: "acc1", Want: value.None},
		{Column: "diffd", KPI: "sales", Entity: "acc1", Want: value.Float(50)},
		{Column: "diff", KPI: "margin", Want: value.None},
	}
	for _, c := range tests {
		col, _ := m.Column(c.Column)
		row, err := m.row(c.KPI, c.Entity)
		if err != nil {
			t.Errorf("%s: %s", c.KPI, err)
			continue
		}
		cells, ok := col.Cells(row)
		if !ok {
			t.Errorf("%s/%s: sum should be set on every row", c.Column, row.ID())
			continue
		}
		if !value.Equal(cells[0].Value, c.Want) {
			t.Errorf("%s/%s: results mismatched! want %s, got %s", c.Column, row.ID(), c.Want, cells[0].Value)
		}
		if cells[0].Comment != "" {
			t.Errorf("%s/%s: sum cells should not have comment", c.Column, row.ID())
		}
	}
}

func TestSumsOverText(t *testing.T) {
	m := New()
	label := KPI{
		Name:         "label",
		Expression:   "'a'",
		Kind:         style.KindStr,
		Compare:      style.CompareNone,
		Accumulation: AccSum,
	}
	if err := m.DeclareKPI(label); err != nil {
		t.Fatalf("fail to declare kpi: %s", err)
	}
	for _, key := range []string{"cur", "prev"} {
		if _, err := m.DeclareColumn(key, key, "", nil); err != nil {
			t.Fatalf("fail to declare column %s: %s", key, err)
		}
	}
	set(t, m, "label", "cur", "", value.Text("a"))
	set(t, m, "label", "prev", "", value.None)

	terms := []SumTerm{
		{Sign: "+", Column: "cur"},
		{Sign: "+", Column: "prev"},
	}
	if err := m.DeclareSum("total", "Total", "", terms, false); err != nil {
		t.Fatalf("fail to declare sum: %s", err)
	}
	if err := m.ComputeSums(); err != nil {
		t.Fatalf("fail to compute sums: %s", err)
	}
	col, _ := m.Column("total")
	row, err := m.row("label", "")
	if err != nil {
		t.Fatalf("label: %s", err)
	}
	cells, _ := col.Cells(row)
	if len(cells) != 1 || !value.Equal(cells[0].Value, value.Text("a")) {
		t.Errorf("total/label: results mismatched! want a, got %s", spew.Sdump(cells))
	}
}

func TestSetValuesErrors(t *testing.T) {
	m := sample(t)
	if err := m.SetValues("sales", "cur", []value.Value{value.Float(1), value.Float(2)}, nil); !errors.Is(err, ErrTupleLength) {
		t.Errorf("expected tuple length error, got %v", err)
	}
	if err := m.SetValues("unknown", "cur", []value.Value{value.Float(1)}, nil); !errors.Is(err, ErrUnknownKPI) {
		t.Errorf("expected unknown kpi error, got %v", err)
	}
	if err := m.SetValues("sales", "none", []value.Value{value.Float(1)}, nil); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected unknown column error, got %v", err)
	}
	if _, err := m.DeclareColumn("cur", "", "", nil); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestComments(t *testing.T) {
	m := New()
	m.DeclareKPI(KPI{Name: "k", Expression: "a + b"})
	m.DeclareKPI(KPI{Name: "multi", Expressions: map[string]string{"x": "a", "y": "b / 0"}})
	m.DeclareColumn("c", "", "", []SubKPI{{Name: "x"}, {Name: "y"}})

	set(t, m, "k", "c", "", value.Float(1), value.Float(2))
	set(t, m, "multi", "c", "", value.Float(1), value.DivZero("division by zero"))

	tbl := m.Table()
	want := [][]string{
		{"k = a + b", "k = a + b"},
		{"multi.x = a", "division by zero"},
	}
	for i, row := range tbl.Body {
		for j, c := range row.Cells {
			if c.Comment != want[i][j] {
				t.Errorf("%s[%d]: comment mismatched! want %q, got %q", row.ID, j, want[i][j], c.Comment)
			}
		}
	}
	if got := tbl.Body[1].Cells[1].Rendered; got != value.CodeDiv0 {
		t.Errorf("error cell should render its code, got %q", got)
	}

	m = New(WithoutComments())
	m.DeclareKPI(KPI{Name: "k", Expression: "1"})
	m.DeclareColumn("c", "", "", nil)
	set(t, m, "k", "c", "", value.Float(1))
	if c := m.Table().Body[0].Cells[0]; c.Comment != "" {
		t.Errorf("comments should be disabled, got %q", c.Comment)
	}
}

func TestRows(t *testing.T) {
	m := sample(t)
	set(t, m, "sales", "cur", "700", value.Float(1))
	set(t, m, "sales", "cur", "600", value.Float(1))
	set(t, m, "sales", "cur", "650", value.Float(1))
	m.SetEntityLabel("600", "zz sales")

	var ids []string
	for r := range m.Rows() {
		ids = append(ids, r.ID())
	}
	want := []string{"sales", "sales:650", "sales:700", "sales:600", "margin"}
	if !slices.Equal(ids, want) {
		t.Errorf("rows mismatched! want %v, got %v", want, ids)
	}
}

func TestTable(t *testing.T) {
	m := New()
	kpis := []KPI{
		{Name: "visible", Description: "Visible", Expression: "1", Style: style.Props{FontWeight: "bold", IndentLevel: 1}},
		{Name: "empty", Expression: "x", Style: style.Props{HideEmpty: true}},
		{Name: "zero", Expression: "0", Style: style.Props{HideEmpty: true}},
		{Name: "failed", Expression: "1/0", Style: style.Props{HideEmpty: true}},
		{Name: "hidden", Expression: "1", Style: style.Props{HideAlways: true}},
	}
	for _, k := range kpis {
		m.DeclareKPI(k)
	}
	m.DeclareColumn("c1", "Col 1", "2026", nil)
	m.DeclareColumn("c2", "Col 2", "", nil)

	set(t, m, "visible", "c1", "", value.Float(1))
	set(t, m, "visible", "c1", "acc", value.Float(1))
	set(t, m, "empty", "c1", "", value.None)
	set(t, m, "zero", "c1", "", value.Float(0))
	set(t, m, "failed", "c1", "", value.DivZero(""))
	set(t, m, "hidden", "c1", "", value.Float(5))

	tbl := m.Table()
	if len(tbl.Header) != 1 || len(tbl.Header[0].Cells) != 2 {
		t.Fatalf("header mismatched: %s", spew.Sdump(tbl.Header))
	}
	var ids []string
	for _, r := range tbl.Body {
		ids = append(ids, r.ID)
	}
	want := []string{"visible", "visible:acc", "zero", "failed"}
	if !slices.Equal(ids, want) {
		t.Fatalf("body rows mismatched! want %v, got %v", want, ids)
	}
	row := tbl.Body[0]
	if row.Label != "Visible" || row.Style != "font-weight: bold; text-indent: 1em" {
		t.Errorf("visible row mismatched: %s", spew.Sdump(row))
	}
	if c := row.Cells[0]; c.Style != "font-weight: bold" || c.Empty {
		t.Errorf("cell style should not be indented: %s", spew.Sdump(c))
	}
	if c := row.Cells[1]; !c.Empty {
		t.Errorf("missing cell should be empty: %s", spew.Sdump(c))
	}
	if p := tbl.Body[1].Parent; p != "visible" {
		t.Errorf("detail row should have parent visible, got %q", p)
	}
	if _, ok := tbl.Body[3].Cells[0].Number(); ok {
		t.Errorf("error cell should not have a number")
	}
}

func TestTableSubHeader(t *testing.T) {
	m := New()
	m.DeclareKPI(KPI{Name: "k", Expressions: map[string]string{"x": "1", "y": "2"}})
	m.DeclareColumn("a", "A", "", []SubKPI{{Name: "x", Description: "X"}, {Name: "y"}})
	m.DeclareColumn("b", "B", "", nil)
	tbl := m.Table()
	if len(tbl.Header) != 2 {
		t.Fatalf("expected two header rows, got %d", len(tbl.Header))
	}
	var labels []string
	for _, c := range tbl.Header[1].Cells {
		labels = append(labels, c.Label)
	}
	if want := []string{"X", "y", ""}; !slices.Equal(labels, want) {
		t.Errorf("sub header mismatched! want %v, got %v", want, labels)
	}
	if span := tbl.Header[0].Cells[0].Colspan; span != 2 {
		t.Errorf("colspan mismatched! want 2, got %d", span)
	}
}
