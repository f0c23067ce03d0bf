package app

import (
	"context"
	"strings"

	"github.com/dwikikusuma/storefront/pkg/apperr"
)

// StockRepo applies deltas atomically against the freshest stock value.
type StockRepo interface {
	Reserve(ctx context.Context, variantID string, delta int) (int, error)
	Available(ctx context.Context, variantID string) (int, error)
}

type Ledger struct {
	repo StockRepo
}

func NewLedger(repo StockRepo) *Ledger {
	return &Ledger{repo: repo}
}

// Reserve subtracts delta from the variant's stock and returns the new
// value. A negative delta returns stock. It never clamps: a result below
// zero fails with an insufficient stock conflict.
func (l *Ledger) Reserve(ctx context.Context, variantID string, delta int) (int, error) {
	if strings.TrimSpace(variantID) == "" {
		return 0, apperr.Validation("product variant required")
	}
	if delta == 0 {
		return l.repo.Available(ctx, variantID)
	}
	return l.repo.Reserve(ctx, variantID, delta)
}

func (l *Ledger) Available(ctx context.Context, variantID string) (int, error) {
	if strings.TrimSpace(variantID) == "" {
		return 0, apperr.Validation("product variant required")
	}
	return l.repo.Available(ctx, variantID)
}

// EnsureAvailable fails with an insufficient stock conflict when quantity
// exceeds what is on hand. It does not hold stock.
func (l *Ledger) EnsureAvailable(ctx context.Context, variantID string, quantity int) error {
	available, err := l.Available(ctx, variantID)
	if err != nil {
		return err
	}
	if quantity > available {
		return apperr.InsufficientStock(variantID, available)
	}
	return nil
}
