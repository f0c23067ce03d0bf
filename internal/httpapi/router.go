// Package httpapi assembles the storefront's HTTP surface from the per-context
// handlers.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	adminapi "github.com/dwikikusuma/storefront/internal/admin/httpapi"
	cartapi "github.com/dwikikusuma/storefront/internal/cart/httpapi"
	catalogapi "github.com/dwikikusuma/storefront/internal/catalog/httpapi"
	checkoutapi "github.com/dwikikusuma/storefront/internal/checkout/httpapi"
	customerapi "github.com/dwikikusuma/storefront/internal/customer/httpapi"
	orderapi "github.com/dwikikusuma/storefront/internal/order/httpapi"
	paymentapi "github.com/dwikikusuma/storefront/internal/payment/httpapi"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/dwikikusuma/storefront/pkg/session"
)

type Handlers struct {
	Customers *customerapi.Handler
	Admins    *adminapi.Handler
	Catalog   *catalogapi.Handler
	Payments  *paymentapi.Handler
	Cart      *cartapi.Handler
	Checkout  *checkoutapi.Handler
	Orders    *orderapi.Handler
}

// ReadinessCheck is one dependency checked by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Options struct {
	Log            *slog.Logger
	RequestTimeout time.Duration

	CustomerSessions *session.Manager
	AdminSessions    *session.Manager

	Metrics  *metrics.ServerMetrics
	Gatherer prometheus.Gatherer

	Readiness []ReadinessCheck
}

func NewRouter(opts Options, h Handlers) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.AccessLog(opts.Log))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(httpx.Instrument(opts.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readyHandler(opts.Readiness))
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(opts.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))

		h.Customers.Routes(r)
		h.Admins.Routes(r)
		h.Catalog.Routes(r)
		h.Payments.Routes(r)

		r.Group(func(r chi.Router) {
			r.Use(opts.CustomerSessions.Require)

			h.Customers.AuthedRoutes(r)
			h.Cart.Routes(r)
			h.Checkout.Routes(r)
			h.Orders.Routes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(opts.AdminSessions.Require)

			h.Orders.AdminRoutes(r)
			h.Catalog.AdminRoutes(r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]string{"code": "NOT_FOUND", "message": "route not found"},
		})
	})

	return r
}

func readyHandler(checks []ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				failed[c.Name] = err.Error()
			}
		}

		if len(failed) > 0 {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
