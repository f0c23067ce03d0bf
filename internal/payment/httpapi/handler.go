package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/payment-options", h.ListActive)
}

type optionResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.ListActive(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	out := make([]optionResponse, 0, len(opts))
	for _, o := range opts {
		out = append(out, optionResponse{Code: o.Code, Name: o.Name})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"payment_options": out})
}
