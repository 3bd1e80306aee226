package aep

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/midbel/mis/ledger"
	"github.com/midbel/mis/value"
)

var ErrToken = errors.New("invalid accounting expression")

var tokenRe = regexp.MustCompile(`\b(bal|pbal|nbal|crd|deb)([pie])?\s*(\[[^\]]*\]|_[A-Za-z0-9]+)`)

type Field string

const (
	FieldBal  Field = "bal"
	FieldPbal Field = "pbal"
	FieldNbal Field = "nbal"
	FieldCrd  Field = "crd"
	FieldDeb  Field = "deb"
)

type Mode string

const (
	ModePeriod  Mode = "p"
	ModeInitial Mode = "i"
	ModeEnd     Mode = "e"
)

var modes = []Mode{ModePeriod, ModeInitial, ModeEnd}

// Token is one accounting variable of an expression such as balp[70%].
type Token struct {
	Field    Field
	Mode     Mode
	Accounts []string
}

func ParseToken(str string) (Token, error) {
	parts := tokenRe.FindStringSubmatch(strings.TrimSpace(str))
	if parts == nil || parts[0] != strings.TrimSpace(str) {
		return Token{}, fmt.Errorf("%s: %w", str, ErrToken)
	}
	return makeToken(parts)
}

func makeToken(parts []string) (Token, error) {
	tok := Token{
		Field: Field(parts[1]),
		Mode:  Mode(parts[2]),
	}
	if tok.Mode == "" {
		tok.Mode = ModePeriod
	}
	sel := parts[3]
	if strings.HasPrefix(sel, "_") {
		tok.Accounts = []string{sel[1:]}
		return tok, nil
	}
	sel = strings.TrimSuffix(strings.TrimPrefix(sel, "["), "]")
	for _, a := range strings.Split(sel, ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		tok.Accounts = append(tok.Accounts, a)
	}
	if len(tok.Accounts) == 0 {
		tok.Accounts = append(tok.Accounts, "%")
	}
	return tok, nil
}

// String returns the canonical text of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s%s[%s]", t.Field, t.Mode, strings.Join(t.Accounts, ","))
}

func (t Token) match(code string) bool {
	for _, a := range t.Accounts {
		if ledger.Match(a, code) {
			return true
		}
	}
	return false
}

// value extracts the field of the token from b. Accounts with a balance of
// the wrong sign do not contribute to pbal and nbal.
func (t Token) value(b ledger.Balance) (float64, bool) {
	switch t.Field {
	case FieldCrd:
		return b.Credit, true
	case FieldDeb:
		return b.Debit, true
	case FieldPbal:
		bal := b.Balance()
		return bal, bal > 0
	case FieldNbal:
		bal := b.Balance()
		return bal, bal < 0
	default:
		return b.Balance(), true
	}
}

// Processor computes the accounting variables of a set of expressions
// against a ledger source.
type Processor struct {
	tokens []Token
	index  map[string]int

	names  map[string]string
	values map[string]map[string]float64
}

func NewProcessor() *Processor {
	return &Processor{
		index:  make(map[string]int),
		names:  make(map[string]string),
		values: make(map[string]map[string]float64),
	}
}

// Parse registers the tokens found in expr.
func (p *Processor) Parse(expr string) error {
	for _, parts := range tokenRe.FindAllStringSubmatch(expr, -1) {
		tok, err := makeToken(parts)
		if err != nil {
			return err
		}
		p.register(tok)
	}
	return nil
}

func (p *Processor) register(tok Token) int {
	key := tok.String()
	if ix, ok := p.index[key]; ok {
		return ix
	}
	ix := len(p.tokens)
	p.index[key] = ix
	p.tokens = append(p.tokens, tok)
	return ix
}

func (p *Processor) Tokens() []Token {
	return slices.Clone(p.tokens)
}

// Compute queries source once per mode for the period between from and to.
// Results of a previous call are discarded.
func (p *Processor) Compute(ctx context.Context, source ledger.Source, from, to time.Time) error {
	clear(p.values)
	for _, m := range modes {
		var (
			tokens   []Token
			patterns []string
		)
		for _, t := range p.tokens {
			if t.Mode != m {
				continue
			}
			tokens = append(tokens, t)
			patterns = append(patterns, t.Accounts...)
		}
		if len(tokens) == 0 {
			continue
		}
		slices.Sort(patterns)
		q := ledger.Query{
			Accounts: slices.Compact(patterns),
			From:     from,
			To:       to,
		}
		switch m {
		case ModeInitial:
			q.From, q.To = time.Time{}, from.AddDate(0, 0, -1)
		case ModeEnd:
			q.From = time.Time{}
		}
		list, err := source.Balances(ctx, q)
		if err != nil {
			return err
		}
		p.collect(tokens, list)
	}
	return nil
}

func (p *Processor) collect(tokens []Token, list []ledger.Balance) {
	for _, b := range list {
		if b.Name != "" {
			p.names[b.Account] = b.Name
		}
		for _, t := range tokens {
			if !t.match(b.Account) {
				continue
			}
			f, ok := t.value(b)
			if !ok {
				continue
			}
			key := t.String()
			if p.values[key] == nil {
				p.values[key] = make(map[string]float64)
			}
			p.values[key][b.Account] += f
		}
	}
}

// Bind replaces the tokens of expr by identifiers and returns the values to
// bind them to. A token without data is bound to None.
func (p *Processor) Bind(expr string) (string, map[string]value.Value) {
	return p.bind(expr, func(vs map[string]float64) value.Value {
		if len(vs) == 0 {
			return value.None
		}
		var total float64
		for _, a := range slices.Sorted(maps.Keys(vs)) {
			total += vs[a]
		}
		return value.Float(total)
	})
}

// BindAccount works as Bind, keeping only the contribution of account.
func (p *Processor) BindAccount(expr, account string) (string, map[string]value.Value) {
	return p.bind(expr, func(vs map[string]float64) value.Value {
		f, ok := vs[account]
		if !ok {
			return value.None
		}
		return value.Float(f)
	})
}

func (p *Processor) bind(expr string, get func(map[string]float64) value.Value) (string, map[string]value.Value) {
	env := make(map[string]value.Value)
	res := tokenRe.ReplaceAllStringFunc(expr, func(str string) string {
		tok, err := makeToken(tokenRe.FindStringSubmatch(str))
		if err != nil {
			return str
		}
		var (
			ix    = p.register(tok)
			ident = Ident(ix)
		)
		env[ident] = get(p.values[tok.String()])
		return ident
	})
	return res, env
}

// Accounts returns the accounts with data behind the tokens of expr.
func (p *Processor) Accounts(expr string) []string {
	set := make(map[string]struct{})
	for _, parts := range tokenRe.FindAllStringSubmatch(expr, -1) {
		tok, err := makeToken(parts)
		if err != nil {
			continue
		}
		for a := range p.values[tok.String()] {
			set[a] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// Name returns the name of an account seen during Compute.
func (p *Processor) Name(account string) string {
	return p.names[account]
}

// Has reports whether expr contains accounting variables.
func Has(expr string) bool {
	return tokenRe.MatchString(expr)
}

func Ident(ix int) string {
	return fmt.Sprintf("_aep%d", ix)
}
