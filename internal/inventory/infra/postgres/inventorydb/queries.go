package inventorydb

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
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

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// The guard and the write are one statement, so concurrent reservations on
// the same row serialize on the row lock and re-evaluate the guard.
const reserveStock = `
UPDATE product_variants
SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND stock - $2 >= 0
RETURNING stock`

type ReserveStockParams struct {
	ID    uuid.UUID
	Delta int32
}

// ReserveStock returns sql.ErrNoRows when the variant is missing or the
// guard rejected the update.
func (q *Queries) ReserveStock(ctx context.Context, arg ReserveStockParams) (int32, error) {
	row := q.db.QueryRowContext(ctx, reserveStock, arg.ID, arg.Delta)
	var stock int32
	err := row.Scan(&stock)
	return stock, err
}

const getStock = `SELECT stock FROM product_variants WHERE id = $1`

func (q *Queries) GetStock(ctx context.Context, id uuid.UUID) (int32, error) {
	row := q.db.QueryRowContext(ctx, getStock, id)
	var stock int32
	err := row.Scan(&stock)
	return stock, err
}
