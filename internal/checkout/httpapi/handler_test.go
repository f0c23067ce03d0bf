package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/session"
)

// shop backs every checkout port with fixed data.
type shop struct {
	stock int
	items []app.CartItem
}

func (s *shop) GetCart(context.Context, string) ([]app.CartItem, error) { return s.items, nil }
func (s *shop) Available(context.Context, string) (int, error) { return s.stock, nil }
func (s *shop) ProductName(context.Context, string) (string, error) { return "Tee", nil }
func (s *shop) PasswordHash(context.Context, string) (string, error) { return "secret", nil }
func (s *shop) Verify(hash, password string) bool { return hash == password }

func (s *shop) Lookup(_ context.Context, code string) (app.PaymentOption, bool, error) {
	return app.PaymentOption{Code: code, Name: "Cash on Delivery", IsActive: true}, code == "cod", nil
}

func (s *shop) CreateOrder(_ context.Context, req orderdomain.CreateOrderRequest) (orderdomain.Order, error) {
	o := orderdomain.Order{
		ID:                "o1",
		CustomerID:        req.CustomerID,
		Status:            orderdomain.StatusPending,
		PaymentStatus:     orderdomain.PaymentUnpaid,
		Address:           req.Address,
		PaymentOptionCode: req.PaymentOptionCode,
		PaymentOptionName: req.PaymentOptionName,
	}
	for _, it := range req.Items {
		o.Items = append(o.Items, orderdomain.OrderItem{VariantID: it.VariantID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	o.TotalAmount = orderdomain.Total(o.Items)
	return o, nil
}

func (s *shop) GetForCustomer(context.Context, string, string) (orderdomain.Order, error) {
	return orderdomain.Order{}, nil
}

func newTestRouter(s *shop) http.Handler {
	svc := app.NewService(app.Deps{
		Cart: s, Stock: s, Catalog: s, Customers: s, Verifier: s, Payments: s, Orders: s,
	}, app.Options{})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := session.WithPrincipal(r.Context(), session.Principal{ID: "c1", Role: session.RoleCustomer})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	NewHandler(svc).Routes(r)
	return r
}

const validBody = `{
	"password": "secret",
	"address": {"shipping_name": "Ada", "address_line1": "1 Main St", "city": "Springfield", "country": "US"},
	"payment_option_code": "COD"
}`

func checkout(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestPlaceOrderHandler(t *testing.T) {
	line := app.CartItem{VariantID: "v1", Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")}

	t.Run("placed", func(t *testing.T) {
		rec, out := checkout(t, newTestRouter(&shop{stock: 5, items: []app.CartItem{line}}), validBody)
		require.Equal(t, http.StatusOK, rec.Code)

		order := out["order"].(map[string]any)
		assert.Equal(t, "39.98", order["total_amount"])
		assert.Equal(t, "pending", order["status"])
		assert.Equal(t, "unpaid", order["payment_status"])
		assert.Equal(t, "cod", order["payment_option_code"])
	})

	t.Run("insufficient stock reports what is available", func(t *testing.T) {
		rec, out := checkout(t, newTestRouter(&shop{stock: 1, items: []app.CartItem{line}}), validBody)
		require.Equal(t, http.StatusConflict, rec.Code)

		errBody := out["error"].(map[string]any)
		assert.Equal(t, "CONFLICT", errBody["code"])
		assert.Equal(t, float64(1), errBody["available"])
		assert.Equal(t, "v1", errBody["product_variant_id"])
	})

	t.Run("wrong password", func(t *testing.T) {
		body := strings.Replace(validBody, `"secret"`, `"guess"`, 1)
		rec, out := checkout(t, newTestRouter(&shop{stock: 5, items: []app.CartItem{line}}), body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid password", out["error"].(map[string]any)["message"])
	})

	t.Run("missing address", func(t *testing.T) {
		rec, out := checkout(t, newTestRouter(&shop{stock: 5, items: []app.CartItem{line}}), `{"password":"secret","payment_option_code":"cod"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "address incomplete", out["error"].(map[string]any)["message"])
	})

	t.Run("empty cart", func(t *testing.T) {
		rec, out := checkout(t, newTestRouter(&shop{stock: 5}), validBody)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "cart empty", out["error"].(map[string]any)["message"])
	})
}

func TestQuoteHandler(t *testing.T) {
	h := newTestRouter(&shop{stock: 1, items: []app.CartItem{
		{VariantID: "v1", Quantity: 2, UnitPrice: decimal.RequireFromString("3.50")},
	}})

	req := httptest.NewRequest(http.MethodGet, "/checkout/quote", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "7.00", out.Total)
	assert.False(t, out.Purchasable)
	require.Len(t, out.Lines, 1)
	assert.False(t, out.Lines[0].InStock)
	assert.Equal(t, "Tee", out.Lines[0].ProductName)
}
