package app_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"pgregory.net/rapid"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	customerapp "github.com/dwikikusuma/storefront/internal/customer/app"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/idempotency"
	"github.com/dwikikusuma/storefront/pkg/metrics"
)

const password = "correct horse battery"

var verifier = customerapp.NewVerifier(bcrypt.MinCost)

// store is an in-memory backend. PlaceOrderTx holds one lock for the whole
// write so it has the same all-or-nothing behaviour as the SQL transaction.
type store struct {
	mu      sync.Mutex
	hashes  map[string]string
	carts   map[string][]app.CartItem
	stock   map[string]int
	options map[string]app.PaymentOption
	orders  map[string]orderdomain.Order
	seq     int
}

func newStore(t testing.TB) *store {
	t.Helper()
	return &store{
		hashes:  map[string]string{},
		carts:   map[string][]app.CartItem{},
		stock:   map[string]int{},
		options: map[string]app.PaymentOption{"cod": {Code: "cod", Name: "Cash on Delivery", IsActive: true}},
		orders:  map[string]orderdomain.Order{},
	}
}

func (s *store) addCustomer(t testing.TB, id string) {
	t.Helper()
	hash, err := verifier.Hash(password)
	require.NoError(t, err)
	s.mu.Lock()
	s.hashes[id] = hash
	s.mu.Unlock()
}

func (s *store) addToCart(customerID, variantID string, qty int, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[customerID] = append(s.carts[customerID], app.CartItem{
		VariantID: variantID,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	})
}

func (s *store) stockOf(variantID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[variantID]
}

func (s *store) cartLen(customerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts[customerID])
}

func (s *store) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *store) GetCart(_ context.Context, customerID string) ([]app.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]app.CartItem(nil), s.carts[customerID]...), nil
}

func (s *store) Available(_ context.Context, variantID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.stock[variantID]
	if !ok {
		return 0, apperr.NotFound("product variant not found")
	}
	return n, nil
}

func (s *store) ProductName(_ context.Context, variantID string) (string, error) {
	return "Tee " + variantID, nil
}

func (s *store) PasswordHash(_ context.Context, customerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[customerID]
	if !ok {
		return "", app.ErrCustomerNotFound
	}
	return h, nil
}

func (s *store) Lookup(_ context.Context, code string) (app.PaymentOption, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.options[code]
	return o, ok, nil
}

func (s *store) PlaceOrderTx(_ context.Context, o orderdomain.Order) (orderdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claimed := make([]orderdomain.OrderItem, 0, len(s.carts[o.CustomerID]))
	for _, it := range s.carts[o.CustomerID] {
		claimed = append(claimed, orderdomain.OrderItem{VariantID: it.VariantID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	if err := orderapp.MatchClaimedCart(o.Items, claimed); err != nil {
		return orderdomain.Order{}, err
	}

	need := map[string]int{}
	for _, it := range o.Items {
		need[it.VariantID] += it.Quantity
	}
	for id, qty := range need {
		if s.stock[id]-qty < 0 {
			return orderdomain.Order{}, apperr.InsufficientStock(id, s.stock[id])
		}
	}
	for id, qty := range need {
		s.stock[id] -= qty
	}
	delete(s.carts, o.CustomerID)

	s.seq++
	o.ID = fmt.Sprintf("order-%d", s.seq)
	s.orders[o.ID] = o
	return o, nil
}

func (s *store) Get(_ context.Context, id string) (orderdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return orderdomain.Order{}, orderapp.ErrNotFound
	}
	return o, nil
}

func (s *store) ListByCustomer(context.Context, string, int) ([]orderdomain.Order, error) {
	return nil, nil
}

func (s *store) ListForAdmin(context.Context, int, string) ([]orderdomain.AdminOrder, string, error) {
	return nil, "", nil
}

func (s *store) UpdateStatus(context.Context, string, orderdomain.Status, orderdomain.Status, orderdomain.PaymentStatus) (orderdomain.Order, error) {
	return orderdomain.Order{}, errors.New("not used")
}

func newService(s *store, opts app.Options, extra ...func(*app.Deps)) *app.Service {
	deps := app.Deps{
		Cart:      s,
		Stock:     s,
		Catalog:   s,
		Customers: s,
		Verifier:  verifier,
		Payments:  s,
		Orders:    orderapp.NewService(s),
	}
	for _, f := range extra {
		f(&deps)
	}
	return app.NewService(deps, opts)
}

func validAddress() orderdomain.Address {
	return orderdomain.Address{
		ShippingName: "Ada Lovelace",
		AddressLine1: "12 St James's Square",
		City:         "London",
		Country:      "GB",
	}
}

func request(customerID string) domain.PlaceOrderRequest {
	return domain.PlaceOrderRequest{
		CustomerID:        customerID,
		Password:          password,
		Address:           validAddress(),
		PaymentOptionCode: "cod",
	}
}

func TestPlaceOrder_ScenarioA_Success(t *testing.T) {
	s := newStore(t)
	s.addCustomer(t, "c1")
	s.stock["v1"] = 5
	s.addToCart("c1", "v1", 2, "19.99")

	order, err := newService(s, app.Options{}).PlaceOrder(context.Background(), request("c1"))
	require.NoError(t, err)

	assert.Equal(t, 3, s.stockOf("v1"))
	assert.Equal(t, "39.98", order.TotalAmount.StringFixed(2))
	assert.Equal(t, orderdomain.StatusPending, order.Status)
	assert.Equal(t, orderdomain.PaymentUnpaid, order.PaymentStatus)
	require.NotNil(t, order.PaymentOptionName)
	assert.Equal(t, "Cash on Delivery", *order.PaymentOptionName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, orderdomain.OrderItem{VariantID: "v1", Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")}, order.Items[0])
	assert.Zero(t, s.cartLen("c1"))
}

func TestPlaceOrder_ScenarioB_InsufficientStock(t *testing.T) {
	s := newStore(t)
	s.addCustomer(t, "c1")
	s.stock["v1"] = 1
	s.addToCart("c1", "v1", 2, "10.00")

	_, err := newService(s, app.Options{}).PlaceOrder(context.Background(), request("c1"))

	require.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	require.NotNil(t, ae.Available)
	assert.Equal(t, 1, *ae.Available)
	assert.Equal(t, "v1", ae.VariantID)

	assert.Equal(t, 1, s.stockOf("v1"))
	assert.Equal(t, 1, s.cartLen("c1"))
	assert.Zero(t, s.orderCount())
}

func TestPlaceOrder_ScenarioC_WrongPassword(t *testing.T) {
	s := newStore(t)
	s.addCustomer(t, "c1")
	s.stock["v1"] = 5
	s.addToCart("c1", "v1", 2, "10.00")

	req := request("c1")
	req.Password = "not the password"
	_, err := newService(s, app.Options{}).PlaceOrder(context.Background(), req)

	assert.Equal(t, app.ErrInvalidPassword, err)
	assert.Zero(t, s.orderCount())
	assert.Equal(t, 5, s.stockOf("v1"))
	assert.Equal(t, 1, s.cartLen("c1"))
}

func TestPlaceOrder_PreconditionOrder(t *testing.T) {
	s := newStore(t)
	s.addCustomer(t, "c1")
	s.addCustomer(t, "empty")
	s.stock["v1"] = 1
	s.addToCart("c1", "v1", 3, "10.00")
	s.options["old"] = app.PaymentOption{Code: "old", Name: "Old", IsActive: false}

	svc := newService(s, app.Options{})

	tests := []struct {
		name   string
		mutate func(*domain.PlaceOrderRequest)
		want   error
	}{
		{"password first", func(r *domain.PlaceOrderRequest) {
			r.Password = ""
			r.Address = orderdomain.Address{}
			r.PaymentOptionCode = ""
		}, app.ErrPasswordRequired},
		{"address before payment code", func(r *domain.PlaceOrderRequest) {
			r.Address.City = "  "
			r.PaymentOptionCode = ""
		}, app.ErrAddressIncomplete},
		{"payment code before customer", func(r *domain.PlaceOrderRequest) {
			r.PaymentOptionCode = " "
			r.CustomerID = "ghost"
		}, app.ErrPaymentOptionRequired},
		{"customer before password check", func(r *domain.PlaceOrderRequest) {
			r.CustomerID = "ghost"
			r.Password = "wrong"
		}, app.ErrCustomerNotFound},
		{"password before cart", func(r *domain.PlaceOrderRequest) {
			r.CustomerID = "empty"
			r.Password = "wrong"
		}, app.ErrInvalidPassword},
		{"empty cart before payment option", func(r *domain.PlaceOrderRequest) {
			r.CustomerID = "empty"
			r.PaymentOptionCode = "old"
		}, app.ErrEmptyCart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request("c1")
			tt.mutate(&req)
			_, err := svc.PlaceOrder(context.Background(), req)
			assert.Equal(t, tt.want, err)
		})
	}

	t.Run("stock before payment option", func(t *testing.T) {
		req := request("c1")
		req.PaymentOptionCode = "old"
		_, err := svc.PlaceOrder(context.Background(), req)
		assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)
	})
}

func TestPlaceOrder_PaymentOptions(t *testing.T) {
	setup := func(t *testing.T) *store {
		s := newStore(t)
		s.addCustomer(t, "c1")
		s.stock["v1"] = 5
		s.addToCart("c1", "v1", 1, "5.00")
		s.options["old"] = app.PaymentOption{Code: "old", Name: "Old", IsActive: false}
		return s
	}

	t.Run("inactive", func(t *testing.T) {
		s := setup(t)
		req := request("c1")
		req.PaymentOptionCode = "old"
		_, err := newService(s, app.Options{}).PlaceOrder(context.Background(), req)
		assert.Equal(t, app.ErrPaymentOptionInactive, err)
		assert.Equal(t, 5, s.stockOf("v1"))
	})

	t.Run("unknown proceeds without a name", func(t *testing.T) {
		s := setup(t)
		req := request("c1")
		req.PaymentOptionCode = "Gift-Card"
		o, err := newService(s, app.Options{}).PlaceOrder(context.Background(), req)
		require.NoError(t, err)
		assert.Nil(t, o.PaymentOptionName)
		assert.Equal(t, "gift-card", o.PaymentOptionCode)
	})

	t.Run("unknown rejected when required", func(t *testing.T) {
		s := setup(t)
		req := request("c1")
		req.PaymentOptionCode = "gift-card"
		_, err := newService(s, app.Options{RequirePaymentOption: true}).PlaceOrder(context.Background(), req)
		assert.Equal(t, app.ErrPaymentOptionUnknown, err)
		assert.Zero(t, s.orderCount())
	})
}

func TestPlaceOrder_DoubleSubmitDoesNotDoubleDecrement(t *testing.T) {
	s := newStore(t)
	s.addCustomer(t, "c1")
	s.stock["v1"] = 10
	s.addToCart("c1", "v1", 4, "2.50")
	svc := newService(s, app.Options{})

	_, err := svc.PlaceOrder(context.Background(), request("c1"))
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), request("c1"))
	assert.Equal(t, app.ErrEmptyCart, err)
	assert.Equal(t, 6, s.stockOf("v1"))
	assert.Equal(t, 1, s.orderCount())
}

// racingCart returns a stale cart once the real one has been consumed, which
// is what a second request sees when both read before either writes.
type racingCart struct {
	*store
	stale []app.CartItem
}

func (r racingCart) GetCart(context.Context, string) ([]app.CartItem, error) {
	return r.stale, nil
}

func TestPlaceOrder_ConcurrentSubmitOfSameCart(t *testing.T) {
	s := newStore(t)
	s.addCustomer(t, "c1")
	s.stock["v1"] = 10
	s.addToCart("c1", "v1", 4, "2.50")
	stale, _ := s.GetCart(context.Background(), "c1")

	svc := newService(s, app.Options{})
	_, err := svc.PlaceOrder(context.Background(), request("c1"))
	require.NoError(t, err)

	late := newService(s, app.Options{}, func(d *app.Deps) { d.Cart = racingCart{store: s, stale: stale} })
	_, err = late.PlaceOrder(context.Background(), request("c1"))

	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
	assert.Equal(t, "cart empty", err.Error())
	assert.Equal(t, 6, s.stockOf("v1"))
}

func TestPlaceOrder_CartEditedAfterStockCheck(t *testing.T) {
	s := newStore(t)
	s.addCustomer(t, "c1")
	s.stock["v1"] = 10
	s.stock["v2"] = 10
	s.addToCart("c1", "v1", 2, "19.99")
	stale, _ := s.GetCart(context.Background(), "c1")
	s.addToCart("c1", "v2", 1, "5.00")

	svc := newService(s, app.Options{}, func(d *app.Deps) { d.Cart = racingCart{store: s, stale: stale} })
	_, err := svc.PlaceOrder(context.Background(), request("c1"))

	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)
	assert.Equal(t, orderapp.ErrCartChanged, err)
	assert.Equal(t, 2, s.cartLen("c1"))
	assert.Equal(t, 10, s.stockOf("v1"))
	assert.Equal(t, 0, s.orderCount())
}

func TestPlaceOrder_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newStore(t)
	s.stock["v1"] = 5
	const shoppers = 20
	for i := 0; i < shoppers; i++ {
		id := fmt.Sprintf("c%d", i)
		s.addCustomer(t, id)
		s.addToCart(id, "v1", 1, "7.00")
	}
	svc := newService(s, app.Options{MaxConcurrent: 2})

	var (
		mu        sync.Mutex
		succeeded int
	)
	var g errgroup.Group
	for i := 0; i < shoppers; i++ {
		id := fmt.Sprintf("c%d", i)
		g.Go(func() error {
			_, err := svc.PlaceOrder(context.Background(), request(id))
			switch {
			case err == nil:
				mu.Lock()
				succeeded++
				mu.Unlock()
				return nil
			case errors.Is(err, apperr.ErrConflict):
				return nil
			default:
				return err
			}
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, s.stockOf("v1"))
	assert.Equal(t, 5, s.orderCount())
}

func TestPlaceOrder_IdempotencyKeyReplays(t *testing.T) {
	s := newStore(t)
	s.addCustomer(t, "c1")
	s.stock["v1"] = 10
	s.addToCart("c1", "v1", 1, "3.00")

	svc := newService(s, app.Options{}, func(d *app.Deps) { d.Idempotency = idempotency.NewMemoryStore() })

	req := request("c1")
	req.IdempotencyKey = "abc-123"

	first, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 9, s.stockOf("v1"))
	assert.Equal(t, 1, s.orderCount())
}

func TestPlaceOrder_ReplayStillChecksCredentials(t *testing.T) {
	s := newStore(t)
	s.addCustomer(t, "c1")
	s.stock["v1"] = 10
	s.addToCart("c1", "v1", 1, "3.00")

	svc := newService(s, app.Options{}, func(d *app.Deps) { d.Idempotency = idempotency.NewMemoryStore() })

	req := request("c1")
	req.IdempotencyKey = "k"
	first, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	wrong := req
	wrong.Password = "WRONG"
	_, err = svc.PlaceOrder(context.Background(), wrong)
	assert.True(t, errors.Is(err, apperr.ErrAuth), "got %v", err)

	empty := req
	empty.Password = ""
	_, err = svc.PlaceOrder(context.Background(), empty)
	assert.Equal(t, app.ErrPasswordRequired, err)

	noAddress := req
	noAddress.Address = orderdomain.Address{}
	_, err = svc.PlaceOrder(context.Background(), noAddress)
	assert.Equal(t, app.ErrAddressIncomplete, err)

	again, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 1, s.orderCount())
}

func TestPlaceOrder_RecordsOutcomeMetrics(t *testing.T) {
	s := newStore(t)
	s.addCustomer(t, "c1")
	s.stock["v1"] = 1
	s.addToCart("c1", "v1", 1, "3.00")

	m := metrics.NewCheckoutMetrics(prometheus.NewRegistry())
	svc := newService(s, app.Options{}, func(d *app.Deps) { d.Metrics = m })

	_, err := svc.PlaceOrder(context.Background(), request("c1"))
	require.NoError(t, err)
	_, err = svc.PlaceOrder(context.Background(), request("c1"))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("validation")))
}

func TestPlaceOrder_TotalMatchesLinesProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newStore(t)
		s.addCustomer(t, "c1")

		n := rapid.IntRange(1, 6).Draw(rt, "lines")
		want := decimal.Zero
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("v%d", i)
			qty := rapid.IntRange(1, 5).Draw(rt, "qty")
			cents := rapid.Int64Range(0, 100000).Draw(rt, "cents")
			stock := rapid.IntRange(0, 8).Draw(rt, "stock")

			price := decimal.New(cents, -2)
			s.stock[id] = stock
			s.addToCart("c1", id, qty, price.StringFixed(2))
			want = want.Add(price.Mul(decimal.NewFromInt(int64(qty))))
		}

		before := map[string]int{}
		for id, v := range s.stock {
			before[id] = v
		}

		order, err := newService(s, app.Options{}).PlaceOrder(context.Background(), request("c1"))

		for id, v := range s.stock {
			if v < 0 {
				rt.Fatalf("stock for %s went negative: %d", id, v)
			}
		}
		if err != nil {
			if !errors.Is(err, apperr.ErrConflict) {
				rt.Fatalf("unexpected error: %v", err)
			}
			for id, v := range s.stock {
				if before[id] != v {
					rt.Fatalf("failed checkout changed stock of %s", id)
				}
			}
			return
		}

		if !order.TotalAmount.Equal(want.Round(2)) {
			rt.Fatalf("total %s, want %s", order.TotalAmount, want.Round(2))
		}
		if !order.TotalAmount.Equal(orderdomain.Total(order.Items)) {
			rt.Fatalf("total %s does not match its lines", order.TotalAmount)
		}
	})
}

func TestQuote(t *testing.T) {
	s := newStore(t)
	s.stock["v1"] = 1
	s.stock["v2"] = 10
	s.addToCart("c1", "v1", 2, "1.10")
	s.addToCart("c1", "v2", 3, "2.00")

	q, err := newService(s, app.Options{}).Quote(context.Background(), "c1")
	require.NoError(t, err)

	sort.Slice(q.Lines, func(i, j int) bool { return q.Lines[i].VariantID < q.Lines[j].VariantID })
	require.Len(t, q.Lines, 2)
	assert.False(t, q.Lines[0].InStock())
	assert.True(t, q.Lines[1].InStock())
	assert.Equal(t, "8.20", q.Total.StringFixed(2))
	assert.False(t, q.Purchasable())

	_, err = newService(s, app.Options{}).Quote(context.Background(), "nobody")
	assert.Equal(t, app.ErrEmptyCart, err)
}
