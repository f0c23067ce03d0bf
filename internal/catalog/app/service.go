package app

import (
	"context"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput    = apperr.Validation("invalid input")
	ErrNotFound        = apperr.NotFound("product not found")
	ErrVariantNotFound = apperr.NotFound("product variant not found")
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) CreateProduct(ctx context.Context, name, desc string, price decimal.Decimal) (domain.Product, error) {
	name = strings.TrimSpace(name)

	if name == "" || !price.IsPositive() {
		return domain.Product{}, ErrInvalidInput
	}

	p := domain.Product{
		Name:        name,
		Description: desc,
		Price:       price.Round(2),
	}

	product, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, query, limit, cursor)
}

func (s *Service) CreateVariant(ctx context.Context, productID string, size, color *string, stock int) (domain.Variant, error) {
	if strings.TrimSpace(productID) == "" || stock < 0 {
		return domain.Variant{}, ErrInvalidInput
	}
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return domain.Variant{}, err
	}

	return s.repo.CreateVariant(ctx, domain.Variant{
		ProductID: productID,
		Size:      trimmedOrNil(size),
		Color:     trimmedOrNil(color),
		Stock:     stock,
	})
}

// GetVariant returns the variant with its product's current price.
func (s *Service) GetVariant(ctx context.Context, id string) (domain.VariantWithPrice, error) {
	if strings.TrimSpace(id) == "" {
		return domain.VariantWithPrice{}, ErrInvalidInput
	}
	return s.repo.GetVariant(ctx, id)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
