package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/midbel/mis/matrix"
)

type csvEncoder struct {
	writer io.Writer
	comma  byte
}

// EncodeCSV writes one line per header row, repeating the label of spanned
// columns, followed by one line per body row with the rendered values.
func EncodeCSV(w io.Writer) Encoder {
	return &csvEncoder{
		writer: w,
		comma:  ',',
	}
}

// EncodeCSVWith is EncodeCSV with another field separator.
func EncodeCSVWith(w io.Writer, comma byte) Encoder {
	return &csvEncoder{
		writer: w,
		comma:  comma,
	}
}

func (e *csvEncoder) Encode(tbl matrix.Table) error {
	ws := newCSVWriter(e.writer)
	ws.Comma = e.comma
	ws.ForceQuote = true
	for _, hr := range tbl.Header {
		fields := []string{""}
		for _, c := range hr.Cells {
			for i := 0; i < max(c.Colspan, 1); i++ {
				fields = append(fields, c.Label)
			}
		}
		if err := ws.Write(fields); err != nil {
			return err
		}
	}
	for _, br := range tbl.Body {
		fields := []string{br.Label}
		for _, c := range br.Cells {
			fields = append(fields, c.Rendered)
		}
		if err := ws.Write(fields); err != nil {
			return err
		}
	}
	return ws.Flush()
}

const (
	quote = '"'
	nl    = '\n'
	cr    = '\r'
	space = ' '
)

type csvWriter struct {
	inner *bufio.Writer

	ForceQuote bool
	UseCRLF    bool
	Comma      byte
}

func newCSVWriter(w io.Writer) *csvWriter {
	return &csvWriter{
		inner: bufio.NewWriter(w),
		Comma: ',',
	}
}

func (w *csvWriter) Write(line []string) error {
	for i, str := range line {
		if i > 0 {
			if err := w.inner.WriteByte(w.Comma); err != nil {
				return err
			}
		}
		var err error
		if w.needQuotes(str) {
			err = w.writeQuoted(str)
		} else {
			_, err = w.inner.WriteString(str)
		}
		if err != nil {
			return err
		}
	}
	if w.UseCRLF {
		if err := w.inner.WriteByte(cr); err != nil {
			return err
		}
	}
	return w.inner.WriteByte(nl)
}

func (w *csvWriter) Flush() error {
	return w.inner.Flush()
}

func (w *csvWriter) writeQuoted(str string) error {
	w.inner.WriteByte(quote)
	for i := 0; i < len(str); i++ {
		switch c := str[i]; c {
		case quote:
			w.inner.WriteByte(quote)
			w.inner.WriteByte(quote)
		case cr:
			if w.UseCRLF {
				w.inner.WriteByte(c)
			}
		case nl:
			if w.UseCRLF {
				w.inner.WriteByte(cr)
			}
			w.inner.WriteByte(c)
		default:
			w.inner.WriteByte(c)
		}
	}
	return w.inner.WriteByte(quote)
}

func (w *csvWriter) needQuotes(str string) bool {
	if w.ForceQuote {
		return true
	}
	if str == "" {
		return false
	}
	return str[0] == space || strings.ContainsAny(str, string([]byte{w.Comma, cr, nl, quote}))
}
