package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	orderhttp "github.com/dwikikusuma/storefront/internal/order/httpapi"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/idempotency"
	"github.com/dwikikusuma/storefront/pkg/session"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes need a customer session.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/checkout/quote", h.Quote)
	r.Post("/orders/checkout", h.PlaceOrder)
}

type addressRequest struct {
	ShippingName  string `json:"shipping_name"`
	ShippingPhone string `json:"shipping_phone"`
	AddressLine1  string `json:"address_line1"`
	AddressLine2  string `json:"address_line2"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

type placeOrderRequest struct {
	Password          string          `json:"password"`
	Address           *addressRequest `json:"address"`
	PaymentOptionCode string          `json:"payment_option_code"`
}

type quoteLineResponse struct {
	ProductVariantID string `json:"product_variant_id"`
	ProductName      string `json:"product_name"`
	Quantity         int    `json:"quantity"`
	UnitPrice        string `json:"unit_price"`
	LineTotal        string `json:"line_total"`
	Available        int    `json:"available"`
	InStock          bool   `json:"in_stock"`
}

type quoteResponse struct {
	Lines       []quoteLineResponse `json:"lines"`
	Total       string              `json:"total"`
	Purchasable bool                `json:"purchasable"`
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	customerID, err := session.SubjectID(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req placeOrderRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var addr orderdomain.Address
	if req.Address != nil {
		addr = orderdomain.Address{
			ShippingName:  req.Address.ShippingName,
			ShippingPhone: req.Address.ShippingPhone,
			AddressLine1:  req.Address.AddressLine1,
			AddressLine2:  req.Address.AddressLine2,
			City:          req.Address.City,
			State:         req.Address.State,
			PostalCode:    req.Address.PostalCode,
			Country:       req.Address.Country,
		}
	}

	order, err := h.svc.PlaceOrder(r.Context(), domain.PlaceOrderRequest{
		CustomerID:        customerID,
		Password:          req.Password,
		Address:           addr,
		PaymentOptionCode: req.PaymentOptionCode,
		IdempotencyKey:    idempotency.Key(r),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"order": orderhttp.ToResponse(order)})
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	customerID, err := session.SubjectID(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	q, err := h.svc.Quote(r.Context(), customerID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	out := quoteResponse{
		Lines:       make([]quoteLineResponse, 0, len(q.Lines)),
		Total:       q.Total.StringFixed(2),
		Purchasable: q.Purchasable(),
	}
	for _, ln := range q.Lines {
		out.Lines = append(out.Lines, quoteLineResponse{
			ProductVariantID: ln.VariantID,
			ProductName:      ln.ProductName,
			Quantity:         ln.Quantity,
			UnitPrice:        ln.UnitPrice.StringFixed(2),
			LineTotal:        ln.LineTotal.StringFixed(2),
			Available:        ln.Available,
			InStock:          ln.InStock(),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
