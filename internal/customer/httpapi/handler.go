package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/storefront/internal/customer/app"
	"github.com/dwikikusuma/storefront/internal/customer/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/session"
)

type Handler struct {
	svc      *app.Service
	sessions *session.Manager
}

func NewHandler(svc *app.Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
}

// AuthedRoutes need a customer session.
func (h *Handler) AuthedRoutes(r chi.Router) {
	r.Post("/auth/logout", h.Logout)
	r.Get("/me", h.Me)
}

type signupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type customerResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	c, err := h.svc.Register(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.sessions.Issue(r.Context(), w, c.ID); err != nil {
		httpx.WriteError(w, r, apperr.Internal("issue session", err))
		return
	}

	logger.FromContext(r.Context()).Info("customer registered", "customer_id", c.ID)
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"customer": toResponse(c)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	c, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.sessions.Issue(r.Context(), w, c.ID); err != nil {
		httpx.WriteError(w, r, apperr.Internal("issue session", err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"customer": toResponse(c)})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Revoke(r.Context(), w, r); err != nil {
		httpx.WriteError(w, r, apperr.Internal("revoke session", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := session.SubjectID(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"customer": toResponse(c)})
}

func toResponse(c domain.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Email:     c.Email,
		FullName:  c.FullName,
		CreatedAt: c.CreatedAt,
	}
}
