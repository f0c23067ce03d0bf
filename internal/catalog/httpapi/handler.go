package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the public browsing endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)
}

// AdminRoutes mounts catalog management; the caller adds the auth middleware.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Post("/products", h.CreateProduct)
	r.Post("/products/{id}/variants", h.CreateVariant)
}

type variantResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Size      *string `json:"size"`
	Color     *string `json:"color"`
	Stock     int     `json:"stock"`
}

type productResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       string            `json:"price"`
	Variants    []variantResponse `json:"variants,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type listProductsResponse struct {
	Products   []productResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type createProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

type createVariantRequest struct {
	Size  *string `json:"size"`
	Color *string `json:"color"`
	Stock int     `json:"stock"`
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if req.Price == nil {
		httpx.WriteError(w, r, apperr.Validation("missing price"))
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), req.Name, req.Description, *req.Price)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"product": toResponse(product)})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"product": toResponse(p)})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	products, next, err := h.svc.ListProducts(r.Context(), q.Get("q"), limit, q.Get("cursor"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toResponse(p))
	}

	httpx.WriteJSON(w, http.StatusOK, listProductsResponse{Products: out, NextCursor: next})
}

func (h *Handler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var req createVariantRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	v, err := h.svc.CreateVariant(r.Context(), chi.URLParam(r, "id"), req.Size, req.Color, req.Stock)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"variant": toVariantResponse(v)})
}

func toResponse(p domain.Product) productResponse {
	out := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, toVariantResponse(v))
	}
	return out
}

func toVariantResponse(v domain.Variant) variantResponse {
	return variantResponse{
		ID:        v.ID,
		ProductID: v.ProductID,
		Size:      v.Size,
		Color:     v.Color,
		Stock:     v.Stock,
	}
}
