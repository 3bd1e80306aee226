package ledger

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v2"
)

type Line struct {
	Account string
	Date    time.Time
	Debit   float64
	Credit  float64
}

// Memory is a source over move lines kept in memory.
type Memory struct {
	names map[string]string
	lines []Line
}

func NewMemory() *Memory {
	return &Memory{
		names: make(map[string]string),
	}
}

func LoadFile(file string) (*Memory, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Decode(r)
}

// Decode reads a yaml document with the account names and the move lines of
// a ledger.
func Decode(r io.Reader) (*Memory, error) {
	var doc struct {
		Accounts map[string]string `yaml:"accounts"`
		Lines    []struct {
			Account string  `yaml:"account"`
			Date    string  `yaml:"date"`
			Debit   float64 `yaml:"debit"`
			Credit  float64 `yaml:"credit"`
		} `yaml:"lines"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrFormat, err)
	}
	mem := NewMemory()
	for code, name := range doc.Accounts {
		mem.SetName(code, name)
	}
	for i, n := range doc.Lines {
		when, err := time.Parse(DateLayout, n.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid date %q", ErrFormat, i+1, n.Date)
		}
		if n.Account == "" {
			return nil, fmt.Errorf("%w: line %d: missing account", ErrFormat, i+1)
		}
		mem.Add(n.Account, when, n.Debit, n.Credit)
	}
	return mem, nil
}

func (m *Memory) SetName(code, name string) {
	m.names[code] = name
}

func (m *Memory) Add(account string, when time.Time, debit, credit float64) {
	n := Line{
		Account: account,
		Date:    when,
		Debit:   debit,
		Credit:  credit,
	}
	m.lines = append(m.lines, n)
}

func (m *Memory) Len() int {
	return len(m.lines)
}

func (m *Memory) Balances(ctx context.Context, q Query) ([]Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	groups := make(map[string]*Balance)
	for _, n := range m.lines {
		if !q.Contains(n.Date) || !q.Match(n.Account) {
			continue
		}
		b, ok := groups[n.Account]
		if !ok {
			b = &Balance{
				Account: n.Account,
				Name:    m.names[n.Account],
			}
			groups[n.Account] = b
		}
		b.Debit += n.Debit
		b.Credit += n.Credit
	}
	list := make([]Balance, 0, len(groups))
	for _, b := range groups {
		list = append(list, *b)
	}
	slices.SortFunc(list, func(a, b Balance) int {
		return cmp.Compare(a.Account, b.Account)
	})
	return list, nil
}
