package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dwikikusuma/storefront/internal/admin/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
)

var (
	ErrNotFound           = apperr.NotFound("admin not found")
	ErrEmailTaken         = apperr.Conflict("email already registered")
	ErrInvalidCredentials = apperr.Auth("invalid credentials")
)

type AdminRepo interface {
	Create(ctx context.Context, a domain.Admin) (domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (domain.Admin, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type Service struct {
	repo   AdminRepo
	hasher PasswordHasher
}

func NewService(repo AdminRepo, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Create is used by the seeding CLI; there is no HTTP surface for it.
func (s *Service) Create(ctx context.Context, email, fullName, password string) (domain.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") || strings.TrimSpace(password) == "" {
		return domain.Admin{}, apperr.Validation("email and password required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.Admin{}, apperr.Internal("hash password", err)
	}
	return s.repo.Create(ctx, domain.Admin{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
	})
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.Admin, error) {
	a, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return domain.Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Admin{}, err
	}
	if !s.hasher.Verify(a.PasswordHash, password) {
		return domain.Admin{}, ErrInvalidCredentials
	}
	return a, nil
}
