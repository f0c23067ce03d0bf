package app

import (
	"context"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	VariantID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CartReader returns the customer's cart lines; no cart reads as no lines.
type CartReader interface {
	GetCart(ctx context.Context, customerID string) ([]CartItem, error)
}

type StockReader interface {
	Available(ctx context.Context, variantID string) (int, error)
}

type CatalogReader interface {
	ProductName(ctx context.Context, variantID string) (string, error)
}

type CustomerReader interface {
	PasswordHash(ctx context.Context, customerID string) (string, error)
}

type CredentialVerifier interface {
	Verify(hash, password string) bool
}

type PaymentOption struct {
	Code     string
	Name     string
	IsActive bool
}

type PaymentOptionReader interface {
	Lookup(ctx context.Context, code string) (PaymentOption, bool, error)
}

// OrderPlacer persists the order together with the stock decrement and the
// cart clear.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req orderdomain.CreateOrderRequest) (orderdomain.Order, error)
	GetForCustomer(ctx context.Context, customerID, id string) (orderdomain.Order, error)
}
