package adapter

import (
	"context"

	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	paymentapp "github.com/dwikikusuma/storefront/internal/payment/app"
)

type PaymentOptionReader struct {
	svc *paymentapp.Service
}

func NewPaymentOptionReader(svc *paymentapp.Service) *PaymentOptionReader {
	return &PaymentOptionReader{svc: svc}
}

func (r *PaymentOptionReader) Lookup(ctx context.Context, code string) (checkoutapp.PaymentOption, bool, error) {
	opt, found, err := r.svc.Lookup(ctx, code)
	if err != nil || !found {
		return checkoutapp.PaymentOption{}, false, err
	}
	return checkoutapp.PaymentOption{Code: opt.Code, Name: opt.Name, IsActive: opt.IsActive}, true, nil
}
