package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/idempotency"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/metrics"
)

var (
	ErrPasswordRequired      = apperr.Validation("password required")
	ErrAddressIncomplete     = apperr.Validation("address incomplete")
	ErrPaymentOptionRequired = apperr.Validation("payment option required")
	ErrCustomerNotFound      = apperr.NotFound("customer not found")
	ErrInvalidPassword       = apperr.Auth("invalid password")
	ErrEmptyCart             = apperr.Validation("cart empty")
	ErrPaymentOptionInactive = apperr.Validation("payment option inactive")
	ErrPaymentOptionUnknown  = apperr.Validation("payment option unknown")
)

type Deps struct {
	Cart      CartReader
	Stock     StockReader
	Catalog   CatalogReader
	Customers CustomerReader
	Verifier  CredentialVerifier
	Payments  PaymentOptionReader
	Orders    OrderPlacer

	// Optional.
	Idempotency idempotency.Store
	Metrics     *metrics.CheckoutMetrics
}

type Options struct {
	MaxConcurrent int
	// RequirePaymentOption rejects codes missing from the registry instead
	// of placing the order with no option name.
	RequirePaymentOption bool
	IdempotencyTTL       time.Duration
}

type Service struct {
	Deps

	maxConcurrent  int
	requireOption  bool
	idempotencyTTL time.Duration
}

func NewService(deps Deps, opts Options) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}

	return &Service{
		Deps:           deps,
		maxConcurrent:  opts.MaxConcurrent,
		requireOption:  opts.RequirePaymentOption,
		idempotencyTTL: opts.IdempotencyTTL,
	}
}

// PlaceOrder converts the customer's cart into an order. Preconditions are
// checked in a fixed order so the caller learns which one failed; the writes
// happen atomically in the order store.
func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (order orderdomain.Order, err error) {
	log := logger.FromContext(ctx).With(slog.String("customer_id", req.CustomerID))

	lines := 0
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = apperr.KindOf(err).String()
		}
		s.Metrics.Observe(outcome, lines)
	}()

	if req.Password == "" {
		return orderdomain.Order{}, ErrPasswordRequired
	}
	if !req.Address.Complete() {
		return orderdomain.Order{}, ErrAddressIncomplete
	}
	code := strings.ToLower(strings.TrimSpace(req.PaymentOptionCode))
	if code == "" {
		return orderdomain.Order{}, ErrPaymentOptionRequired
	}

	hash, err := s.Customers.PasswordHash(ctx, req.CustomerID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if !s.Verifier.Verify(hash, req.Password) {
		log.Warn("checkout password mismatch")
		return orderdomain.Order{}, ErrInvalidPassword
	}

	// A replay still has to pass the credential checks above.
	if prior, ok, err := s.replay(ctx, req); err != nil || ok {
		return prior, err
	}

	items, err := s.Cart.GetCart(ctx, req.CustomerID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if len(items) == 0 {
		return orderdomain.Order{}, ErrEmptyCart
	}

	if err := s.checkStock(ctx, items); err != nil {
		return orderdomain.Order{}, err
	}

	optionName, err := s.resolvePaymentOption(ctx, code)
	if err != nil {
		return orderdomain.Order{}, err
	}

	orderItems := make([]orderdomain.OrderItemRequest, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, orderdomain.OrderItemRequest{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	order, err = s.Orders.CreateOrder(ctx, orderdomain.CreateOrderRequest{
		CustomerID:        req.CustomerID,
		Address:           req.Address,
		PaymentOptionCode: code,
		PaymentOptionName: optionName,
		Items:             orderItems,
	})
	if err != nil {
		return orderdomain.Order{}, err
	}
	lines = len(order.Items)

	s.remember(ctx, req, order.ID)
	log.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("total", order.TotalAmount.StringFixed(2)),
		slog.Int("lines", lines),
	)
	return order, nil
}

// checkStock re-reads every line's stock concurrently. The first
// insufficient line in cart order is reported.
func (s *Service) checkStock(ctx context.Context, items []CartItem) error {
	available := make([]int, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for idx := range items {
		g.Go(func() error {
			n, err := s.Stock.Available(gctx, items[idx].VariantID)
			if err != nil {
				return err
			}
			available[idx] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for idx, it := range items {
		if it.Quantity > available[idx] {
			return apperr.InsufficientStock(it.VariantID, available[idx])
		}
	}
	return nil
}

func (s *Service) resolvePaymentOption(ctx context.Context, code string) (*string, error) {
	opt, found, err := s.Payments.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if !found {
		if s.requireOption {
			return nil, ErrPaymentOptionUnknown
		}
		logger.FromContext(ctx).Warn("payment option not in registry", slog.String("code", code))
		return nil, nil
	}
	if !opt.IsActive {
		return nil, ErrPaymentOptionInactive
	}
	name := opt.Name
	return &name, nil
}

func (s *Service) replay(ctx context.Context, req domain.PlaceOrderRequest) (orderdomain.Order, bool, error) {
	if s.Idempotency == nil || req.IdempotencyKey == "" {
		return orderdomain.Order{}, false, nil
	}

	orderID, found, err := s.Idempotency.Lookup(ctx, req.CustomerID, req.IdempotencyKey)
	if err != nil {
		return orderdomain.Order{}, false, apperr.Internal("idempotency lookup", err)
	}
	if !found {
		return orderdomain.Order{}, false, nil
	}

	o, err := s.Orders.GetForCustomer(ctx, req.CustomerID, orderID)
	if err != nil {
		return orderdomain.Order{}, false, err
	}
	logger.FromContext(ctx).Info("checkout replayed", slog.String("order_id", orderID))
	return o, true, nil
}

// remember is best effort: the order already exists, so a failure here only
// loses replay protection.
func (s *Service) remember(ctx context.Context, req domain.PlaceOrderRequest, orderID string) {
	if s.Idempotency == nil || req.IdempotencyKey == "" {
		return
	}
	if err := s.Idempotency.Remember(ctx, req.CustomerID, req.IdempotencyKey, orderID, s.idempotencyTTL); err != nil {
		logger.FromContext(ctx).Warn("idempotency remember failed", slog.Any("err", err))
	}
}

// Quote previews the cart with live stock. Lines over stock are flagged, not
// rejected.
func (s *Service) Quote(ctx context.Context, customerID string) (domain.Quote, error) {
	items, err := s.Cart.GetCart(ctx, customerID)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
			}

			name, err := s.Catalog.ProductName(ctx, it.VariantID)
			if err != nil {
				return err
			}
			available, err := s.Stock.Available(ctx, it.VariantID)
			if err != nil {
				return err
			}

			lines[idx] = domain.QuoteLine{
				VariantID:   it.VariantID,
				ProductName: name,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				LineTotal:   it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
				Available:   available,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}

	return domain.Quote{
		Lines: lines,
		Total: total.Round(2),
	}, nil
}
