package ledger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	sax "github.com/midbel/codecs/xml"
)

func LoadSAFT(file string) (*Memory, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadSAFT(r)
}

// ReadSAFT loads the general ledger entries of a SAF-T audit file.
func ReadSAFT(r io.Reader) (*Memory, error) {
	rs := saftReader{
		reader: sax.NewReader(r),
		names:  make(map[string]string),
	}
	if err := rs.Read(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFormat, err)
	}
	mem := NewMemory()
	for code, name := range rs.names {
		mem.SetName(code, name)
	}
	for i, n := range rs.lines {
		if n.txn == nil || n.txn.date.IsZero() {
			return nil, fmt.Errorf("%w: line %d: missing transaction date", ErrFormat, i+1)
		}
		if n.account == "" {
			return nil, fmt.Errorf("%w: line %d: missing account", ErrFormat, i+1)
		}
		mem.Add(n.account, n.txn.date, n.debit, n.credit)
	}
	return mem, nil
}

type saftTransaction struct {
	date time.Time
}

type saftLine struct {
	txn     *saftTransaction
	account string
	debit   float64
	credit  float64
}

type saftReader struct {
	reader *sax.Reader

	names map[string]string
	txn   *saftTransaction
	lines []*saftLine
}

func (r *saftReader) Read() error {
	r.reader.Element(sax.LocalName("Account"), r.onAccount)
	r.reader.Element(sax.LocalName("Transaction"), r.onTransaction)
	r.reader.Element(sax.LocalName("Line"), r.onLine)
	return r.reader.Start()
}

func (r *saftReader) onAccount(rs *sax.Reader, _ sax.E) error {
	var code, name string
	rs.Element(sax.LocalName("AccountID"), func(rs *sax.Reader, _ sax.E) error {
		rs.OnText(func(_ *sax.Reader, str string) error {
			code = strings.TrimSpace(str)
			if name != "" {
				r.names[code] = name
			}
			return nil
		})
		return nil
	})
	rs.Element(sax.LocalName("AccountDescription"), func(rs *sax.Reader, _ sax.E) error {
		rs.OnText(func(_ *sax.Reader, str string) error {
			name = strings.TrimSpace(str)
			if code != "" {
				r.names[code] = name
			}
			return nil
		})
		return nil
	})
	return nil
}

func (r *saftReader) onTransaction(rs *sax.Reader, _ sax.E) error {
	txn := &saftTransaction{}
	r.txn = txn
	rs.Element(sax.LocalName("TransactionDate"), func(rs *sax.Reader, _ sax.E) error {
		rs.OnText(func(_ *sax.Reader, str string) error {
			when, err := time.Parse(DateLayout, strings.TrimSpace(str))
			if err != nil {
				return fmt.Errorf("invalid transaction date %q", str)
			}
			txn.date = when
			return nil
		})
		return nil
	})
	return nil
}

func (r *saftReader) onLine(rs *sax.Reader, _ sax.E) error {
	line := saftLine{
		txn: r.txn,
	}
	r.lines = append(r.lines, &line)
	rs.Element(sax.LocalName("AccountID"), func(rs *sax.Reader, _ sax.E) error {
		rs.OnText(func(_ *sax.Reader, str string) error {
			line.account = strings.TrimSpace(str)
			return nil
		})
		return nil
	})
	rs.Element(sax.LocalName("DebitAmount"), func(rs *sax.Reader, _ sax.E) error {
		return onAmount(rs, &line.debit)
	})
	rs.Element(sax.LocalName("CreditAmount"), func(rs *sax.Reader, _ sax.E) error {
		return onAmount(rs, &line.credit)
	})
	return nil
}

func onAmount(rs *sax.Reader, dst *float64) error {
	rs.Element(sax.LocalName("Amount"), func(rs *sax.Reader, _ sax.E) error {
		rs.OnText(func(_ *sax.Reader, str string) error {
			n, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", str)
			}
			*dst += n
			return nil
		})
		return nil
	})
	return nil
}
