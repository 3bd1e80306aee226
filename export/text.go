package export

import (
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/midbel/mis/matrix"
	"github.com/midbel/mis/style"
)

type textEncoder struct {
	writer io.Writer
}

// EncodeText renders the table for a terminal. Colors are dropped when the
// writer is not a terminal.
func EncodeText(w io.Writer) Encoder {
	return &textEncoder{
		writer: w,
	}
}

func (e *textEncoder) Encode(tbl matrix.Table) error {
	var rows [][]string
	for _, br := range tbl.Body {
		line := []string{strings.Repeat("  ", br.Props.IndentLevel) + br.Label}
		for _, c := range br.Cells {
			line = append(line, c.Rendered)
		}
		rows = append(rows, line)
	}
	headers := append([]string{""}, leafHeaders(tbl)...)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Bold(true).Align(lipgloss.Center)
			}
			if row < 0 || row >= len(tbl.Body) {
				return base
			}
			br := tbl.Body[row]
			if col == 0 {
				return textStyle(base, br.Props)
			}
			if col-1 < len(br.Cells) {
				return textStyle(base.Align(lipgloss.Right), br.Cells[col-1].Props)
			}
			return base
		})
	_, err := lipgloss.Fprintln(e.writer, t.String())
	return err
}

func textStyle(base lipgloss.Style, props style.Props) lipgloss.Style {
	if props.FontWeight == "bold" {
		base = base.Bold(true)
	}
	if props.FontStyle == "italic" {
		base = base.Italic(true)
	}
	if c := style.Color(props); c != "" {
		base = base.Foreground(lipgloss.Color(c))
	}
	if c := style.Background(props); c != "" {
		base = base.Background(lipgloss.Color(c))
	}
	return base
}
