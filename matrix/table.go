package matrix

import (
	"encoding/json"
	"slices"

	"github.com/midbel/mis/style"
	"github.com/midbel/mis/value"
)

type HeaderCell struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Colspan     int    `json:"colspan"`
}

type HeaderRow struct {
	Cells []HeaderCell `json:"cols"`
}

type BodyCell struct {
	Value     value.Value `json:"-"`
	Rendered  string      `json:"val_r"`
	Comment   string      `json:"val_c"`
	Style     string      `json:"style,omitempty"`
	Props     style.Props `json:"-"`
	Kind      style.Kind  `json:"-"`
	Drilldown *Drilldown  `json:"drilldown_arg,omitempty"`
	Empty     bool        `json:"-"`
}

// Number returns the numeric value of the cell. Missing values and errors
// have none.
func (c BodyCell) Number() (float64, bool) {
	if c.Empty || value.IsEmpty(c.Value) || value.IsError(c.Value) {
		return 0, false
	}
	return value.ToFloat(c.Value)
}

// MarshalJSON encodes missing cells as an empty object. Missing values and
// errors are encoded as null.
func (c BodyCell) MarshalJSON() ([]byte, error) {
	if c.Empty {
		return []byte("{}"), nil
	}
	type cell BodyCell
	obj := struct {
		Value any `json:"val"`
		cell
	}{
		cell: cell(c),
	}
	if f, ok := c.Number(); ok {
		obj.Value = f
	} else if t, ok := c.Value.(value.Text); ok {
		obj.Value = string(t)
	}
	return json.Marshal(obj)
}

type BodyRow struct {
	ID          string      `json:"row_id"`
	Parent      string      `json:"parent_row_id,omitempty"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Style       string      `json:"style"`
	Props       style.Props `json:"-"`
	Cells       []BodyCell  `json:"cells"`
}

type Table struct {
	Header []HeaderRow `json:"header"`
	Body   []BodyRow   `json:"body"`
}

// Table returns the presentation of the matrix. Rows hidden by their style
// are skipped.
func (m *Matrix) Table() Table {
	var (
		tbl  Table
		cols = m.columnList()
	)
	tbl.Header = m.header(cols)
	for row := range m.Rows() {
		props := row.Props()
		if props.HideAlways || (props.HideEmpty && row.empty()) {
			continue
		}
		br := BodyRow{
			ID:          row.ID(),
			Label:       row.Label(),
			Description: row.Label(),
			Style:       style.CSS(props, false),
			Props:       props,
		}
		if p := row.Parent(); p != nil {
			br.Parent = p.ID()
		}
		for _, c := range cols {
			br.Cells = append(br.Cells, bodyCells(c, row)...)
		}
		tbl.Body = append(tbl.Body, br)
	}
	return tbl
}

func (m *Matrix) header(cols []*Column) []HeaderRow {
	var (
		top    HeaderRow
		bottom HeaderRow
	)
	for _, c := range cols {
		top.Cells = append(top.Cells, HeaderCell{
			Label:       c.Label,
			Description: c.Description,
			Colspan:     c.Colspan(),
		})
		for _, s := range c.subcols {
			bottom.Cells = append(bottom.Cells, HeaderCell{
				Label:       s.Label,
				Description: s.Description,
				Colspan:     1,
			})
		}
	}
	rows := []HeaderRow{top}
	withSub := slices.ContainsFunc(cols, func(c *Column) bool {
		return len(c.subkpis) > 0
	})
	if withSub {
		rows = append(rows, bottom)
	}
	return rows
}

func bodyCells(col *Column, row *Row) []BodyCell {
	cells, ok := col.cells[row]
	if !ok {
		list := make([]BodyCell, col.Colspan())
		for i := range list {
			list[i].Empty = true
		}
		return list
	}
	var list []BodyCell
	for _, c := range cells {
		bc := BodyCell{
			Value:     c.Value,
			Rendered:  c.Rendered,
			Comment:   c.Comment,
			Style:     style.CSS(c.Props, true),
			Props:     c.Props,
			Kind:      c.Kind,
			Drilldown: c.Drilldown,
		}
		list = append(list, bc)
	}
	return list
}
