package ledger

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/kolo/xmlrpc"
	"go.uber.org/zap"
)

// Odoo reads the posted move lines of an Odoo instance through its XML-RPC
// api.
type Odoo struct {
	url      string
	db       string
	user     string
	password string

	uid       int64
	object    *xmlrpc.Client
	transport http.RoundTripper
	logger    *zap.Logger
}

type OdooOption func(*Odoo)

func WithLogger(logger *zap.Logger) OdooOption {
	return func(o *Odoo) {
		o.logger = logger
	}
}

func WithTransport(tr http.RoundTripper) OdooOption {
	return func(o *Odoo) {
		o.transport = tr
	}
}

func NewOdoo(addr, db, user, password string, options ...OdooOption) (*Odoo, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Odoo URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid Odoo URL scheme: %s, must be http or https", u.Scheme)
	}
	o := Odoo{
		url:       addr,
		db:        db,
		user:      user,
		password:  password,
		transport: http.DefaultTransport,
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(&o)
	}
	return &o, nil
}

func (o *Odoo) Close() error {
	if o.object == nil {
		return nil
	}
	err := o.object.Close()
	o.object, o.uid = nil, 0
	return err
}

func (o *Odoo) Balances(ctx context.Context, q Query) ([]Balance, error) {
	accounts, err := o.accounts(ctx, q.Accounts)
	if err != nil || len(accounts) == 0 {
		return nil, err
	}
	ids := make([]any, 0, len(accounts))
	for id := range accounts {
		ids = append(ids, id)
	}
	domain := []any{
		[]any{"parent_state", "=", "posted"},
		[]any{"account_id", "in", ids},
		[]any{"date", "<=", q.To.Format(DateLayout)},
	}
	if !q.From.IsZero() {
		domain = append(domain, []any{"date", ">=", q.From.Format(DateLayout)})
	}
	var groups []map[string]any
	kwargs := map[string]any{
		"lazy": false,
	}
	args := []any{domain, []any{"debit", "credit"}, []any{"account_id"}}
	if err := o.execute(ctx, "account.move.line", "read_group", args, kwargs, &groups); err != nil {
		return nil, err
	}
	var list []Balance
	for _, g := range groups {
		id, ok := many2one(g["account_id"])
		if !ok {
			return nil, fmt.Errorf("%w: unexpected account_id in read_group result", ErrSource)
		}
		acc, ok := accounts[id]
		if !ok {
			continue
		}
		acc.Debit = toFloat(g["debit"])
		acc.Credit = toFloat(g["credit"])
		list = append(list, acc)
	}
	slices.SortFunc(list, func(a, b Balance) int {
		return cmp.Compare(a.Account, b.Account)
	})
	o.logger.Debug("balances fetched",
		zap.String("op", "read_group"),
		zap.Int("accounts", len(list)),
	)
	return list, nil
}

func (o *Odoo) accounts(ctx context.Context, patterns []string) (map[int64]Balance, error) {
	var domain []any
	for i, p := range patterns {
		if i < len(patterns)-1 {
			domain = append(domain, "|")
		}
		domain = append(domain, []any{"code", "=like", p})
	}
	var records []map[string]any
	kwargs := map[string]any{
		"fields": []any{"id", "code", "name"},
	}
	if err := o.execute(ctx, "account.account", "search_read", []any{domain}, kwargs, &records); err != nil {
		return nil, err
	}
	set := make(map[int64]Balance)
	for _, r := range records {
		id, ok := r["id"].(int64)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected account id", ErrSource)
		}
		code, _ := r["code"].(string)
		name, _ := r["name"].(string)
		set[id] = Balance{
			Account: code,
			Name:    name,
		}
	}
	return set, nil
}

func (o *Odoo) execute(ctx context.Context, model, method string, args []any, kwargs map[string]any, reply any) error {
	if err := o.connect(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		o.logger.Debug("call cancelled", zap.Error(err), zap.String("model", model), zap.String("method", method))
		return err
	}
	params := []any{o.db, o.uid, o.password, model, method, args, kwargs}
	if err := o.object.Call("execute_kw", params, reply); err != nil {
		o.logger.Error("call failed",
			zap.Error(err),
			zap.String("model", model),
			zap.String("method", method),
		)
		return fmt.Errorf("%w: %s.%s: %s", ErrSource, model, method, err)
	}
	return nil
}

func (o *Odoo) connect(ctx context.Context) error {
	if o.object != nil && o.uid != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	common, err := xmlrpc.NewClient(o.url+"/xmlrpc/2/common", o.transport)
	if err != nil {
		return fmt.Errorf("failed to connect to Odoo common endpoint: %w", err)
	}
	defer common.Close()

	var uid any
	if err := common.Call("authenticate", []any{o.db, o.user, o.password, map[string]any{}}, &uid); err != nil {
		o.logger.Error("authentication failed", zap.Error(err), zap.String("db", o.db), zap.String("op", "authenticate"))
		return fmt.Errorf("%w: %s", ErrAuth, err)
	}
	id, ok := uid.(int64)
	if !ok || id == 0 {
		return fmt.Errorf("%w: invalid credentials for %s", ErrAuth, o.user)
	}
	object, err := xmlrpc.NewClient(o.url+"/xmlrpc/2/object", o.transport)
	if err != nil {
		return fmt.Errorf("failed to connect to Odoo object endpoint: %w", err)
	}
	o.uid, o.object = id, object
	o.logger.Info("authenticated", zap.Int64("uid", id), zap.String("db", o.db), zap.String("op", "authenticate"))
	return nil
}

func many2one(v any) (int64, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return 0, false
	}
	id, ok := list[0].(int64)
	return id, ok
}

func toFloat(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}
