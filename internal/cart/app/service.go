package app

import (
	"context"
	"strings"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
)

var (
	ErrInvalidInput = apperr.Validation("invalid input")
	ErrCartNotFound = apperr.NotFound("cart not found")
	ErrItemNotFound = apperr.NotFound("cart item not found")
)

type Service struct {
	repo   CartRepo
	prices VariantPricer
	stock  StockChecker
}

func NewService(repo CartRepo, prices VariantPricer, stock StockChecker) *Service {
	return &Service{
		repo:   repo,
		prices: prices,
		stock:  stock,
	}
}

func (s *Service) GetCart(ctx context.Context, customerID string) (domain.Cart, error) {
	if strings.TrimSpace(customerID) == "" {
		return domain.Cart{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, customerID)
}

func (s *Service) GetOrCreate(ctx context.Context, customerID string) (domain.Cart, error) {
	if strings.TrimSpace(customerID) == "" {
		return domain.Cart{}, ErrInvalidInput
	}
	return s.repo.GetOrCreate(ctx, customerID)
}

// AddItem adds quantity of a variant, capturing the product's current price.
// The resulting line quantity may not exceed the variant's stock.
func (s *Service) AddItem(ctx context.Context, customerID, variantID string, quantity int) (domain.Cart, error) {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" || quantity <= 0 {
		return domain.Cart{}, ErrInvalidInput
	}

	cart, err := s.GetOrCreate(ctx, customerID)
	if err != nil {
		return domain.Cart{}, err
	}

	price, err := s.prices.VariantPrice(ctx, variantID)
	if err != nil {
		return domain.Cart{}, err
	}

	if err := s.stock.EnsureAvailable(ctx, variantID, cart.Quantity(variantID)+quantity); err != nil {
		return domain.Cart{}, err
	}

	err = s.repo.AddItem(ctx, cart.ID, domain.CartItem{
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: price,
	})
	if err != nil {
		return domain.Cart{}, err
	}

	return s.repo.Get(ctx, customerID)
}

// SetItemQuantity replaces a line's quantity and keeps the price captured
// when the line was added. Zero removes the line.
func (s *Service) SetItemQuantity(ctx context.Context, customerID, variantID string, quantity int) (domain.Cart, error) {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" || quantity < 0 {
		return domain.Cart{}, ErrInvalidInput
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, customerID, variantID)
	}

	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return domain.Cart{}, err
	}
	if cart.Quantity(variantID) == 0 {
		return domain.Cart{}, ErrItemNotFound
	}

	if err := s.stock.EnsureAvailable(ctx, variantID, quantity); err != nil {
		return domain.Cart{}, err
	}
	if err := s.repo.SetItemQuantity(ctx, cart.ID, variantID, quantity); err != nil {
		return domain.Cart{}, err
	}

	return s.repo.Get(ctx, customerID)
}

func (s *Service) RemoveItem(ctx context.Context, customerID, variantID string) (domain.Cart, error) {
	if strings.TrimSpace(variantID) == "" {
		return domain.Cart{}, ErrInvalidInput
	}

	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, variantID); err != nil {
		return domain.Cart{}, err
	}

	return s.repo.Get(ctx, customerID)
}

func (s *Service) ClearCart(ctx context.Context, customerID string) (domain.Cart, error) {
	cart, err := s.GetCart(ctx, customerID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return domain.Cart{}, err
	}

	return s.repo.Get(ctx, customerID)
}
