package adapter

import (
	"context"
	"errors"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) GetCart(ctx context.Context, customerID string) ([]checkoutapp.CartItem, error) {
	cart, err := r.svc.GetCart(ctx, customerID)
	if errors.Is(err, cartapp.ErrCartNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items := make([]checkoutapp.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, checkoutapp.CartItem{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return items, nil
}
