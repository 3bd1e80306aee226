package ledger

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrSource  = errors.New("ledger source failure")
	ErrAuth    = errors.New("authentication failed")
	ErrFormat  = errors.New("invalid ledger file")
	ErrPattern = errors.New("invalid account pattern")
)

const DateLayout = "2006-01-02"

// Balance is the aggregated movement of one account.
type Balance struct {
	Account string
	Name    string
	Debit   float64
	Credit  float64
}

// Balance returns debit minus credit.
func (b Balance) Balance() float64 {
	return b.Debit - b.Credit
}

// Query selects the move lines of the accounts matching any of the
// patterns, dated between From and To inclusive. A zero From means no lower
// bound.
type Query struct {
	Accounts []string
	From     time.Time
	To       time.Time
}

func (q Query) Contains(when time.Time) bool {
	if !q.From.IsZero() && when.Before(q.From) {
		return false
	}
	return q.To.IsZero() || !when.After(q.To)
}

func (q Query) Match(code string) bool {
	for _, p := range q.Accounts {
		if Match(p, code) {
			return true
		}
	}
	return false
}

type Source interface {
	Balances(context.Context, Query) ([]Balance, error)
}

// Match reports whether code matches pattern, where % stands for any
// sequence of characters.
func Match(pattern, code string) bool {
	parts := strings.Split(pattern, "%")
	if len(parts) == 1 {
		return pattern == code
	}
	first, last := parts[0], parts[len(parts)-1]
	if !strings.HasPrefix(code, first) {
		return false
	}
	code = code[len(first):]
	for _, p := range parts[1 : len(parts)-1] {
		ix := strings.Index(code, p)
		if ix < 0 {
			return false
		}
		code = code[ix+len(p):]
	}
	return strings.HasSuffix(code, last)
}
