package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/session"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the customer's own order history.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/orders", h.ListMine)
	r.Get("/orders/{id}", h.GetMine)
}

// AdminRoutes mounts the back-office endpoints.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/orders", h.AdminList)
	r.Get("/orders/{id}", h.AdminGet)
	r.Patch("/orders/{id}", h.AdminUpdateStatus)
}

type AddressResponse struct {
	ShippingName  string `json:"shipping_name"`
	ShippingPhone string `json:"shipping_phone,omitempty"`
	AddressLine1  string `json:"address_line1"`
	AddressLine2  string `json:"address_line2,omitempty"`
	City          string `json:"city"`
	State         string `json:"state,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country"`
}

type ItemResponse struct {
	ProductVariantID string `json:"product_variant_id"`
	Quantity         int    `json:"quantity"`
	UnitPrice        string `json:"unit_price"`
}

type OrderResponse struct {
	ID                string           `json:"id"`
	CustomerID        string           `json:"customer_id"`
	Status            string           `json:"status"`
	PaymentStatus     string           `json:"payment_status"`
	TotalAmount       string           `json:"total_amount"`
	ShippingAddress   AddressResponse  `json:"shipping_address"`
	PaymentOptionCode string           `json:"payment_option_code"`
	PaymentOptionName *string          `json:"payment_option_name"`
	Items             []ItemResponse   `json:"items,omitempty"`
	Customer          *customerSummary `json:"customer,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type customerSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type statusResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	customerID, err := session.SubjectID(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	orders, err := h.svc.ListForCustomer(r.Context(), customerID, limit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToResponse(o))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"orders": out})
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	customerID, err := session.SubjectID(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	o, err := h.svc.GetForCustomer(r.Context(), customerID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"order": ToResponse(o)})
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	orders, next, err := h.svc.ListForAdmin(r.Context(), limit, q.Get("cursor"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp := ToResponse(o.Order)
		resp.Customer = &customerSummary{ID: o.Customer.ID, Email: o.Customer.Email, FullName: o.Customer.FullName}
		out = append(out, resp)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"orders": out, "next_cursor": next})
}

func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"order": ToResponse(o)})
}

func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	adminID, _ := session.SubjectID(r.Context())
	logger.FromContext(r.Context()).Info("order status updated",
		"order_id", o.ID, "status", o.Status, "payment_status", o.PaymentStatus, "admin_id", adminID)

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"order": statusResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
	}})
}

func ToResponse(o domain.Order) OrderResponse {
	out := OrderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount.StringFixed(2),
		ShippingAddress: AddressResponse{
			ShippingName:  o.Address.ShippingName,
			ShippingPhone: o.Address.ShippingPhone,
			AddressLine1:  o.Address.AddressLine1,
			AddressLine2:  o.Address.AddressLine2,
			City:          o.Address.City,
			State:         o.Address.State,
			PostalCode:    o.Address.PostalCode,
			Country:       o.Address.Country,
		},
		PaymentOptionCode: o.PaymentOptionCode,
		PaymentOptionName: o.PaymentOptionName,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, ItemResponse{
			ProductVariantID: it.VariantID,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice.StringFixed(2),
		})
	}
	return out
}
