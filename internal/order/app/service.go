package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/order/domain"
	paymentdomain "github.com/dwikikusuma/storefront/internal/payment/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
)

var (
	ErrNotFound          = apperr.NotFound("order not found")
	ErrConcurrentUpdate  = apperr.Conflict("order was modified concurrently")
	ErrExternallyManaged = apperr.Forbidden("status managed externally")
	// ErrCartConsumed means another checkout emptied the cart first.
	ErrCartConsumed = apperr.Validation("cart empty")
	// ErrCartChanged means the cart was edited between the stock check and
	// the order write.
	ErrCartChanged = apperr.Conflict("cart changed during checkout")
)

type Service struct {
	repo OrderRepo
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

// CreateOrder builds a pending, unpaid order from the request lines and
// persists it with its side effects. Prices come from the request as-is.
func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, ErrCartConsumed
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Order{}, apperr.Validation(fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if item.UnitPrice.IsNegative() {
			return domain.Order{}, apperr.Validation(fmt.Sprintf("item %d: unit price cannot be negative", i))
		}
		items = append(items, domain.OrderItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order := domain.Order{
		CustomerID:        req.CustomerID,
		Status:            domain.StatusPending,
		PaymentStatus:     domain.PaymentUnpaid,
		TotalAmount:       domain.Total(items),
		Address:           req.Address.Trimmed(),
		PaymentOptionCode: req.PaymentOptionCode,
		PaymentOptionName: req.PaymentOptionName,
		Items:             items,
	}

	return s.repo.PlaceOrderTx(ctx, order)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// GetForCustomer hides other customers' orders behind not found.
func (s *Service) GetForCustomer(ctx context.Context, customerID, id string) (domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.CustomerID != customerID {
		return domain.Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string, limit int) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID, clampLimit(limit))
}

func (s *Service) ListForAdmin(ctx context.Context, limit int, cursor string) ([]domain.AdminOrder, string, error) {
	return s.repo.ListForAdmin(ctx, clampLimit(limit), cursor)
}

// UpdateStatus moves a cash on delivery order through its status machine.
// Orders paid any other way are managed by their payment provider.
func (s *Service) UpdateStatus(ctx context.Context, orderID, newStatus string) (domain.Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.PaymentOptionCode != paymentdomain.CashOnDelivery {
		return domain.Order{}, ErrExternallyManaged
	}

	to, err := domain.ParseStatus(strings.TrimSpace(newStatus))
	if err != nil {
		return domain.Order{}, err
	}
	payment, err := domain.Transition(o.Status, to)
	if err != nil {
		return domain.Order{}, err
	}

	return s.repo.UpdateStatus(ctx, o.ID, o.Status, to, payment)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
