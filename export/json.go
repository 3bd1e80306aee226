package export

import (
	"encoding/json"
	"io"

	"github.com/midbel/mis/matrix"
)

type jsonEncoder struct {
	writer io.Writer
}

func EncodeJSON(w io.Writer) Encoder {
	return &jsonEncoder{
		writer: w,
	}
}

func (e *jsonEncoder) Encode(tbl matrix.Table) error {
	enc := json.NewEncoder(e.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(tbl)
}
