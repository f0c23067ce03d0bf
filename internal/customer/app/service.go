package app

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/dwikikusuma/storefront/internal/customer/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
)

const minPasswordLen = 8

var (
	ErrNotFound           = apperr.NotFound("customer not found")
	ErrEmailTaken         = apperr.Conflict("email already registered")
	ErrInvalidCredentials = apperr.Auth("invalid credentials")
)

type Service struct {
	repo     CustomerRepo
	verifier *Verifier
}

func NewService(repo CustomerRepo, verifier *Verifier) *Service {
	return &Service{
		repo:     repo,
		verifier: verifier,
	}
}

func (s *Service) Register(ctx context.Context, email, fullName, password string) (domain.Customer, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)

	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return domain.Customer{}, apperr.Validation("invalid email")
	}
	if fullName == "" {
		return domain.Customer{}, apperr.Validation("full name required")
	}
	if len(password) < minPasswordLen {
		return domain.Customer{}, apperr.Validation("password too short")
	}

	hash, err := s.verifier.Hash(password)
	if err != nil {
		return domain.Customer{}, apperr.Internal("hash password", err)
	}

	return s.repo.Create(ctx, domain.Customer{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	})
}

func (s *Service) Get(ctx context.Context, id string) (domain.Customer, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Customer{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Authenticate does not reveal whether the email exists.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.Customer, error) {
	c, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return domain.Customer{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Customer{}, err
	}
	if !s.verifier.Verify(c.PasswordHash, password) {
		return domain.Customer{}, ErrInvalidCredentials
	}
	return c, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
