package adapter

import (
	"context"
	"errors"

	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	customerapp "github.com/dwikikusuma/storefront/internal/customer/app"
)

type CustomerServiceReader struct {
	svc *customerapp.Service
}

func NewCustomerServiceReader(svc *customerapp.Service) *CustomerServiceReader {
	return &CustomerServiceReader{svc: svc}
}

func (r *CustomerServiceReader) PasswordHash(ctx context.Context, customerID string) (string, error) {
	c, err := r.svc.Get(ctx, customerID)
	if errors.Is(err, customerapp.ErrNotFound) {
		return "", checkoutapp.ErrCustomerNotFound
	}
	if err != nil {
		return "", err
	}
	return c.PasswordHash, nil
}
