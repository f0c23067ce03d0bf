package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/order/domain"
)

type OrderRepo interface {
	// PlaceOrderTx writes the order and its lines, decrements stock and
	// empties the customer's cart in one transaction.
	PlaceOrderTx(ctx context.Context, order domain.Order) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Order, error)
	ListForAdmin(ctx context.Context, limit int, cursor string) ([]domain.AdminOrder, string, error)
	// UpdateStatus applies the change only while the order is still at from.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status, payment domain.PaymentStatus) (domain.Order, error)
}
