package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/session"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the cart endpoints; they need a customer session.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/cart", h.GetCart)
	r.Delete("/cart", h.ClearCart)
	r.Post("/cart/items", h.AddItem)
	r.Patch("/cart/items/{variantID}", h.SetItemQuantity)
	r.Delete("/cart/items/{variantID}", h.RemoveItem)
}

type cartItemResponse struct {
	ProductVariantID string `json:"product_variant_id"`
	Quantity         int    `json:"quantity"`
	UnitPrice        string `json:"unit_price"`
	LineTotal        string `json:"line_total"`
}

type cartResponse struct {
	ID    string             `json:"id"`
	Items []cartItemResponse `json:"items"`
	Total string             `json:"total"`
}

type addItemRequest struct {
	ProductVariantID string `json:"product_variant_id"`
	Quantity         int    `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := session.SubjectID(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	cart, err := h.svc.GetCart(r.Context(), customerID)
	if errors.Is(err, app.ErrCartNotFound) {
		// no cart yet reads as an empty one
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"cart": toResponse(domain.Cart{})})
		return
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"cart": toResponse(cart)})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	customerID, err := session.SubjectID(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req addItemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	cart, err := h.svc.AddItem(r.Context(), customerID, req.ProductVariantID, req.Quantity)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"cart": toResponse(cart)})
}

func (h *Handler) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	customerID, err := session.SubjectID(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req setQuantityRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if req.Quantity == nil {
		httpx.WriteError(w, r, app.ErrInvalidInput)
		return
	}

	cart, err := h.svc.SetItemQuantity(r.Context(), customerID, chi.URLParam(r, "variantID"), *req.Quantity)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"cart": toResponse(cart)})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customerID, err := session.SubjectID(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	cart, err := h.svc.RemoveItem(r.Context(), customerID, chi.URLParam(r, "variantID"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"cart": toResponse(cart)})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	customerID, err := session.SubjectID(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	cart, err := h.svc.ClearCart(r.Context(), customerID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"cart": toResponse(cart)})
}

func toResponse(c domain.Cart) cartResponse {
	out := cartResponse{
		ID:    c.ID,
		Items: make([]cartItemResponse, 0, len(c.Items)),
		Total: c.Total().StringFixed(2),
	}
	for _, it := range c.Items {
		out.Items = append(out.Items, cartItemResponse{
			ProductVariantID: it.VariantID,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice.StringFixed(2),
			LineTotal:        it.LineTotal().StringFixed(2),
		})
	}
	return out
}
