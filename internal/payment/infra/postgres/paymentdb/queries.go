package paymentdb

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type PaymentOption struct {
	Code     string
	Name     string
	IsActive bool
}

const getPaymentOption = `
SELECT code, name, is_active
FROM payment_options
WHERE code = $1`

func (q *Queries) GetPaymentOption(ctx context.Context, code string) (PaymentOption, error) {
	row := q.db.QueryRowContext(ctx, getPaymentOption, code)
	var i PaymentOption
	err := row.Scan(&i.Code, &i.Name, &i.IsActive)
	return i, err
}

const listActivePaymentOptions = `
SELECT code, name, is_active
FROM payment_options
WHERE is_active
ORDER BY code`

func (q *Queries) ListActivePaymentOptions(ctx context.Context) ([]PaymentOption, error) {
	rows, err := q.db.QueryContext(ctx, listActivePaymentOptions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PaymentOption
	for rows.Next() {
		var i PaymentOption
		if err := rows.Scan(&i.Code, &i.Name, &i.IsActive); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const upsertPaymentOption = `
INSERT INTO payment_options (code, name, is_active)
VALUES ($1, $2, $3)
ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, is_active = EXCLUDED.is_active`

type UpsertPaymentOptionParams struct {
	Code     string
	Name     string
	IsActive bool
}

func (q *Queries) UpsertPaymentOption(ctx context.Context, arg UpsertPaymentOptionParams) error {
	_, err := q.db.ExecContext(ctx, upsertPaymentOption, arg.Code, arg.Name, arg.IsActive)
	return err
}
