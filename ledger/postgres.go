package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const balanceQuery = `
	SELECT a.code, COALESCE(a.name::text, ''), SUM(l.debit)::float8, SUM(l.credit)::float8
	FROM account_move_line l
	JOIN account_account a ON a.id = l.account_id
	WHERE l.parent_state = 'posted'
		AND a.code LIKE ANY($1)
		AND ($2::date IS NULL OR l.date >= $2::date)
		AND l.date <= $3::date
	GROUP BY a.code, a.name
	ORDER BY a.code
`

// Postgres reads the posted move lines of an Odoo database.
type Postgres struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: database url not set", ErrSource)
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSource, err)
	}
	return NewPostgres(pool), nil
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool: pool,
	}
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) Balances(ctx context.Context, q Query) ([]Balance, error) {
	if p.pool == nil {
		return nil, fmt.Errorf("%w: database pool not configured", ErrSource)
	}
	var from any
	if !q.From.IsZero() {
		from = q.From
	}
	rows, err := p.pool.Query(ctx, balanceQuery, q.Accounts, from, q.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSource, err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Balance])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSource, err)
	}
	return list, nil
}
