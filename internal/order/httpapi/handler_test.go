package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
)

type stubRepo struct {
	order domain.Order
}

func (s *stubRepo) PlaceOrderTx(context.Context, domain.Order) (domain.Order, error) {
	return domain.Order{}, nil
}
func (s *stubRepo) Get(_ context.Context, id string) (domain.Order, error) {
	if id != s.order.ID {
		return domain.Order{}, app.ErrNotFound
	}
	return s.order, nil
}
func (s *stubRepo) ListByCustomer(context.Context, string, int) ([]domain.Order, error) {
	return nil, nil
}
func (s *stubRepo) ListForAdmin(context.Context, int, string) ([]domain.AdminOrder, string, error) {
	return nil, "", nil
}
func (s *stubRepo) UpdateStatus(_ context.Context, _ string, _, to domain.Status, p domain.PaymentStatus) (domain.Order, error) {
	s.order.Status, s.order.PaymentStatus = to, p
	return s.order, nil
}

func newRouter(o domain.Order) http.Handler {
	r := chi.NewRouter()
	r.Route("/admin", NewHandler(app.NewService(&stubRepo{order: o})).AdminRoutes)
	return r
}

func patch(t *testing.T, h http.Handler, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/admin/orders/"+id, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAdminUpdateStatus(t *testing.T) {
	cod := domain.Order{ID: "o1", Status: domain.StatusPending, PaymentStatus: domain.PaymentUnpaid, PaymentOptionCode: "cod"}

	t.Run("delivered", func(t *testing.T) {
		rec := patch(t, newRouter(cod), "o1", `{"status":"delivered"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			Order statusResponse `json:"order"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, statusResponse{ID: "o1", Status: "delivered", PaymentStatus: "paid"}, body.Order)
	})

	t.Run("invalid transition is 409", func(t *testing.T) {
		delivered := cod
		delivered.Status = domain.StatusDelivered
		rec := patch(t, newRouter(delivered), "o1", `{"status":"pending"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_TRANSITION")
	})

	t.Run("non cod is 403", func(t *testing.T) {
		card := cod
		card.PaymentOptionCode = "card"
		rec := patch(t, newRouter(card), "o1", `{"status":"shipped"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown order is 404", func(t *testing.T) {
		rec := patch(t, newRouter(cod), "nope", `{"status":"shipped"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown status is 400", func(t *testing.T) {
		rec := patch(t, newRouter(cod), "o1", `{"status":"lost"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
