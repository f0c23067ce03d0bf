package app

import (
	"context"
	"strings"

	"github.com/dwikikusuma/storefront/internal/payment/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
)

type OptionRepo interface {
	// Get returns found=false, err=nil for an unknown code.
	Get(ctx context.Context, code string) (domain.PaymentOption, bool, error)
	ListActive(ctx context.Context) ([]domain.PaymentOption, error)
	Upsert(ctx context.Context, opt domain.PaymentOption) error
}

type Service struct {
	repo OptionRepo
}

func NewService(repo OptionRepo) *Service {
	return &Service{repo: repo}
}

// Lookup resolves a code. An unknown code is not an error.
func (s *Service) Lookup(ctx context.Context, code string) (domain.PaymentOption, bool, error) {
	code = normalizeCode(code)
	if code == "" {
		return domain.PaymentOption{}, false, nil
	}
	return s.repo.Get(ctx, code)
}

func (s *Service) ListActive(ctx context.Context) ([]domain.PaymentOption, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Upsert(ctx context.Context, code, name string, active bool) (domain.PaymentOption, error) {
	opt := domain.PaymentOption{
		Code:     normalizeCode(code),
		Name:     strings.TrimSpace(name),
		IsActive: active,
	}
	if opt.Code == "" || opt.Name == "" {
		return domain.PaymentOption{}, apperr.Validation("code and name required")
	}
	if err := s.repo.Upsert(ctx, opt); err != nil {
		return domain.PaymentOption{}, err
	}
	return opt, nil
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
