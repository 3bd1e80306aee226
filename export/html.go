package export

import (
	"bufio"
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/midbel/mis/matrix"
	"github.com/yuin/goldmark"
)

type htmlEncoder struct {
	writer io.Writer
	notes  string
}

// EncodeHTML writes the table as a html fragment. Notes are markdown and
// written before the table.
func EncodeHTML(w io.Writer, notes string) Encoder {
	return &htmlEncoder{
		writer: w,
		notes:  notes,
	}
}

func (e *htmlEncoder) Encode(tbl matrix.Table) error {
	ws := bufio.NewWriter(e.writer)
	ws.WriteString("<div class=\"mis_report\">\n")
	if strings.TrimSpace(e.notes) != "" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(e.notes), &buf); err != nil {
			return fmt.Errorf("notes: %w", err)
		}
		ws.WriteString("<div class=\"mis_notes\">\n")
		ws.Write(buf.Bytes())
		ws.WriteString("</div>\n")
	}
	ws.WriteString("<table class=\"mis_table\">\n")
	e.encodeHeader(ws, tbl.Header)
	e.encodeBody(ws, tbl.Body)
	ws.WriteString("</table>\n</div>\n")
	return ws.Flush()
}

func (e *htmlEncoder) encodeHeader(ws *bufio.Writer, rows []matrix.HeaderRow) {
	ws.WriteString("  <thead>\n")
	for i, hr := range rows {
		ws.WriteString("    <tr>\n")
		if i == 0 {
			fmt.Fprintf(ws, "      <th class=\"mis_label\"%s></th>\n", span("rowspan", len(rows)))
		}
		for _, c := range hr.Cells {
			fmt.Fprintf(ws, "      <th%s%s>%s</th>\n", span("colspan", c.Colspan), attr("title", c.Description), html.EscapeString(c.Label))
		}
		ws.WriteString("    </tr>\n")
	}
	ws.WriteString("  </thead>\n")
}

func (e *htmlEncoder) encodeBody(ws *bufio.Writer, rows []matrix.BodyRow) {
	ws.WriteString("  <tbody>\n")
	for _, br := range rows {
		fmt.Fprintf(ws, "    <tr data-row-id=\"%s\"%s%s>\n", html.EscapeString(br.ID), attr("data-parent-id", br.Parent), attr("style", br.Style))
		fmt.Fprintf(ws, "      <td class=\"mis_label\"%s>%s</td>\n", attr("title", br.Description), html.EscapeString(br.Label))
		for _, c := range br.Cells {
			class := "mis_cell"
			if _, ok := c.Number(); ok {
				class += " mis_number"
			}
			fmt.Fprintf(ws, "      <td class=\"%s\"%s%s>%s</td>\n", class, attr("style", c.Style), attr("title", c.Comment), html.EscapeString(c.Rendered))
		}
		ws.WriteString("    </tr>\n")
	}
	ws.WriteString("  </tbody>\n")
}

func attr(name, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(" %s=\"%s\"", name, html.EscapeString(value))
}

func span(name string, n int) string {
	if n <= 1 {
		return ""
	}
	return fmt.Sprintf(" %s=\"%d\"", name, n)
}
