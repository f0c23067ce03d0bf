package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/storefront/internal/admin/app"
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
	r.Post("/admin/auth/login", h.Login)
	r.Post("/admin/auth/logout", h.Logout)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	a, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.sessions.Issue(r.Context(), w, a.ID); err != nil {
		httpx.WriteError(w, r, apperr.Internal("issue session", err))
		return
	}

	logger.FromContext(r.Context()).Info("admin logged in", "admin_id", a.ID)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"admin": map[string]string{"id": a.ID, "email": a.Email, "full_name": a.FullName},
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Revoke(r.Context(), w, r); err != nil {
		httpx.WriteError(w, r, apperr.Internal("revoke session", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
