// Package session issues opaque session tokens stored in redis and carried
// in a cookie. Handlers read the authenticated principal from the context.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/dwikikusuma/storefront/pkg/httpx"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

const (
	CustomerCookie = "sid"
	AdminCookie    = "admin_sid"
)

type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

var ErrNoSession = errors.New("session not found")

type Store interface {
	Create(ctx context.Context, p Principal, ttl time.Duration) (string, error)
	Get(ctx context.Context, token string) (Principal, error)
	Delete(ctx context.Context, token string) error
}

type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "session:"}
}

func (s *RedisStore) Create(ctx context.Context, p Principal, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, s.prefix+token, data, ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (Principal, error) {
	data, err := s.rdb.Get(ctx, s.prefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Principal{}, ErrNoSession
	}
	if err != nil {
		return Principal{}, fmt.Errorf("load session: %w", err)
	}

	var p Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return Principal{}, fmt.Errorf("decode session: %w", err)
	}
	return p, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, s.prefix+token).Err()
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// SubjectID returns the authenticated subject or an auth error.
func SubjectID(ctx context.Context) (string, error) {
	p, ok := FromContext(ctx)
	if !ok || p.ID == "" {
		return "", apperr.Auth("not authenticated")
	}
	return p.ID, nil
}

// Manager ties a store to cookie handling for one role.
type Manager struct {
	Store  Store
	Cookie string
	Role   Role
	TTL    time.Duration
	Secure bool
}

func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, subjectID string) error {
	token, err := m.Store.Create(ctx, Principal{ID: subjectID, Role: m.Role}, m.TTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.Cookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(m.Cookie); err == nil {
		if err := m.Store.Delete(ctx, c.Value); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{Name: m.Cookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: m.Secure})
	return nil
}

// Require rejects requests without a live session of the manager's role.
func (m *Manager) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(m.Cookie)
		if err != nil || c.Value == "" {
			httpx.WriteError(w, r, apperr.Auth("not authenticated"))
			return
		}

		p, err := m.Store.Get(r.Context(), c.Value)
		if errors.Is(err, ErrNoSession) || (err == nil && p.Role != m.Role) {
			httpx.WriteError(w, r, apperr.Auth("not authenticated"))
			return
		}
		if err != nil {
			httpx.WriteError(w, r, apperr.Internal("load session", err))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}
