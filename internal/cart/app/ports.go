package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/shopspring/decimal"
)

type CartRepo interface {
	Get(ctx context.Context, customerID string) (domain.Cart, error)
	GetOrCreate(ctx context.Context, customerID string) (domain.Cart, error)
	// AddItem increments an existing line or inserts a new one.
	AddItem(ctx context.Context, cartID string, item domain.CartItem) error
	// SetItemQuantity leaves the line's add-time price untouched.
	SetItemQuantity(ctx context.Context, cartID, variantID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, variantID string) error
	Clear(ctx context.Context, cartID string) error
}

// VariantPricer resolves a variant to its product's current price.
type VariantPricer interface {
	VariantPrice(ctx context.Context, variantID string) (decimal.Decimal, error)
}

// StockChecker rejects quantities above current stock without holding any.
type StockChecker interface {
	EnsureAvailable(ctx context.Context, variantID string, quantity int) error
}
