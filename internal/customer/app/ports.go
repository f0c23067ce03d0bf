package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/customer/domain"
)

type CustomerRepo interface {
	Create(ctx context.Context, c domain.Customer) (domain.Customer, error)
	Get(ctx context.Context, id string) (domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (domain.Customer, error)
}
