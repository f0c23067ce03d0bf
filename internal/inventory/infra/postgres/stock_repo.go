package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/inventory/infra/postgres/inventorydb"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/google/uuid"
)

var ErrVariantNotFound = apperr.NotFound("product variant not found")

type StockRepo struct {
	q *inventorydb.Queries
}

// NewStockRepo accepts the pool or a transaction.
func NewStockRepo(db inventorydb.DBTX) *StockRepo {
	return &StockRepo{q: inventorydb.New(db)}
}

func (r *StockRepo) Reserve(ctx context.Context, variantID string, delta int) (int, error) {
	id, err := uuid.Parse(variantID)
	if err != nil {
		return 0, ErrVariantNotFound
	}

	stock, err := r.q.ReserveStock(ctx, inventorydb.ReserveStockParams{ID: id, Delta: int32(delta)})
	if err == nil {
		return int(stock), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("reserve stock %s: %w", variantID, err)
	}

	// Guard rejected or row missing: read once to tell them apart and to
	// report what is available now.
	current, err := r.q.GetStock(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrVariantNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read stock %s: %w", variantID, err)
	}
	return 0, apperr.InsufficientStock(variantID, int(current))
}

func (r *StockRepo) Available(ctx context.Context, variantID string) (int, error) {
	id, err := uuid.Parse(variantID)
	if err != nil {
		return 0, ErrVariantNotFound
	}

	stock, err := r.q.GetStock(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrVariantNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read stock %s: %w", variantID, err)
	}
	return int(stock), nil
}
