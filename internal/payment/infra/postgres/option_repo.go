package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/payment/domain"
	"github.com/dwikikusuma/storefront/internal/payment/infra/postgres/paymentdb"
)

type OptionRepo struct {
	q *paymentdb.Queries
}

func NewOptionRepo(db *sql.DB) *OptionRepo {
	return &OptionRepo{q: paymentdb.New(db)}
}

func (r *OptionRepo) Get(ctx context.Context, code string) (domain.PaymentOption, bool, error) {
	row, err := r.q.GetPaymentOption(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PaymentOption{}, false, nil
	}
	if err != nil {
		return domain.PaymentOption{}, false, fmt.Errorf("get payment option: %w", err)
	}
	return domain.PaymentOption(row), true, nil
}

func (r *OptionRepo) ListActive(ctx context.Context) ([]domain.PaymentOption, error) {
	rows, err := r.q.ListActivePaymentOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payment options: %w", err)
	}
	out := make([]domain.PaymentOption, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.PaymentOption(row))
	}
	return out, nil
}

func (r *OptionRepo) Upsert(ctx context.Context, opt domain.PaymentOption) error {
	return r.q.UpsertPaymentOption(ctx, paymentdb.UpsertPaymentOptionParams(opt))
}
