package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/midbel/mis/matrix"
)

var ErrFormat = errors.New("unsupported format")

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatHTML = "html"
	FormatXLSX = "xlsx"
	FormatText = "text"
)

type Encoder interface {
	Encode(matrix.Table) error
}

// New returns the encoder of the given format. Notes are only rendered by
// the html encoder.
func New(w io.Writer, format, notes string) (Encoder, error) {
	switch format {
	case "", FormatText:
		return EncodeText(w), nil
	case FormatCSV:
		return EncodeCSV(w), nil
	case FormatJSON:
		return EncodeJSON(w), nil
	case FormatHTML:
		return EncodeHTML(w, notes), nil
	case FormatXLSX:
		return EncodeXLSX(w), nil
	default:
		return nil, fmt.Errorf("%s: %w", format, ErrFormat)
	}
}

// Extension returns the file extension used for format.
func Extension(format string) string {
	switch format {
	case "", FormatText:
		return ".txt"
	default:
		return "." + format
	}
}

// leafHeaders flattens the header rows of tbl into one label per body
// cell. Labels of sub columns are prefixed by the label of their column.
func leafHeaders(tbl matrix.Table) []string {
	if len(tbl.Header) == 0 {
		return nil
	}
	var (
		top    = tbl.Header[0].Cells
		list   []string
		bottom []matrix.HeaderCell
	)
	if len(tbl.Header) > 1 {
		bottom = tbl.Header[1].Cells
	}
	var offset int
	for _, c := range top {
		for i := 0; i < c.Colspan; i++ {
			label := c.Label
			if offset < len(bottom) && bottom[offset].Label != "" {
				label = fmt.Sprintf("%s %s", c.Label, bottom[offset].Label)
			}
			list = append(list, label)
			offset++
		}
	}
	return list
}
