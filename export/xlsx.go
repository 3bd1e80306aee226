package export

import (
	"fmt"
	"io"

	"github.com/midbel/mis/matrix"
	"github.com/midbel/mis/style"
	"github.com/unidoc/unioffice"
	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"
)

const sheetName = "report"

type xlsxEncoder struct {
	writer io.Writer

	workbook *spreadsheet.Workbook
	styles   map[style.XLSX]spreadsheet.CellStyle
}

// EncodeXLSX writes the table in a single sheet workbook. Numeric cells keep
// their value, scaled by the divider of their style, and the style carries
// the number format.
func EncodeXLSX(w io.Writer) Encoder {
	return &xlsxEncoder{
		writer: w,
	}
}

func (e *xlsxEncoder) Encode(tbl matrix.Table) error {
	e.workbook = spreadsheet.New()
	e.styles = make(map[style.XLSX]spreadsheet.CellStyle)

	sheet := e.workbook.AddSheet()
	sheet.SetName(sheetName)
	if err := e.encodeHeader(sheet, tbl.Header); err != nil {
		return err
	}
	for _, br := range tbl.Body {
		row := sheet.AddRow()
		label := row.AddCell()
		label.SetString(br.Label)
		label.SetStyle(e.cellStyle(style.SpreadsheetStyle(style.KindStr, br.Props, false)))
		for _, c := range br.Cells {
			cell := row.AddCell()
			if c.Empty {
				continue
			}
			if f, ok := c.Number(); ok {
				cell.SetNumber(style.Scale(c.Props, c.Kind, f))
				cell.SetStyle(e.cellStyle(style.SpreadsheetStyle(c.Kind, c.Props, true)))
				continue
			}
			cell.SetString(c.Rendered)
			cell.SetStyle(e.cellStyle(style.SpreadsheetStyle(style.KindStr, c.Props, true)))
		}
	}
	return e.workbook.Save(e.writer)
}

func (e *xlsxEncoder) encodeHeader(sheet spreadsheet.Sheet, rows []matrix.HeaderRow) error {
	header := e.cellStyle(style.XLSX{Bold: true, Size: 11})
	for i, hr := range rows {
		var (
			row    = sheet.AddRow()
			line   = i + 1
			offset = uint32(1)
		)
		row.AddCell()
		for _, c := range hr.Cells {
			cell := row.AddCell()
			cell.SetString(c.Label)
			cell.SetStyle(header)

			span := uint32(max(c.Colspan, 1))
			for j := uint32(1); j < span; j++ {
				row.AddCell().SetStyle(header)
			}
			if span > 1 {
				from := fmt.Sprintf("%s%d", reference.IndexToColumn(offset), line)
				to := fmt.Sprintf("%s%d", reference.IndexToColumn(offset+span-1), line)
				sheet.AddMergedCells(from, to)
			}
			offset += span
		}
	}
	return nil
}

func (e *xlsxEncoder) cellStyle(x style.XLSX) spreadsheet.CellStyle {
	if cs, ok := e.styles[x]; ok {
		return cs
	}
	ss := e.workbook.StyleSheet
	cs := ss.AddCellStyle()

	font := ss.AddFont()
	font.SetSize(float64(x.Size))
	if x.Bold {
		font.SetBold(true)
	}
	if x.Italic {
		font.SetItalic(true)
	}
	if x.Color != "" {
		font.SetColor(color.FromHex(x.Color))
	}
	cs.SetFont(font)

	if x.Fill != "" {
		fill := ss.Fills().AddFill()
		pattern := fill.SetPatternFill()
		pattern.SetPattern(sml.ST_PatternTypeSolid)
		pattern.SetFgColor(color.FromHex(x.Fill))
		cs.SetFill(fill)
	}
	if x.NumFormat != "" {
		cs.SetNumberFormat(x.NumFormat)
	}
	if x.Indent > 0 {
		xf := ss.X().CellXfs.Xf[cs.Index()]
		xf.Alignment = &sml.CT_CellAlignment{
			IndentAttr: unioffice.Uint32(uint32(x.Indent)),
		}
		xf.ApplyAlignmentAttr = unioffice.Bool(true)
	}
	e.styles[x] = cs
	return cs
}
