package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/cart/infra/postgres/cartdb"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
)

type CartRepo struct {
	q *cartdb.Queries
}

func NewCartRepo(db cartdb.DBTX) *CartRepo {
	return &CartRepo{
		q: cartdb.New(db),
	}
}

func (r *CartRepo) Get(ctx context.Context, customerID string) (domain.Cart, error) {
	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		return domain.Cart{}, app.ErrCartNotFound
	}

	cart, err := r.q.GetCartByCustomerID(ctx, customerUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, app.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("get cart: %w", err)
	}

	rows, err := r.q.ListCartItems(ctx, cart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("list cart items: %w", err)
	}

	items := make([]domain.CartItem, 0, len(rows))
	for _, item := range rows {
		items = append(items, domain.CartItem{
			VariantID: item.ProductVariantID.String(),
			Quantity:  int(item.Quantity),
			UnitPrice: item.UnitPrice,
		})
	}

	return domain.Cart{
		ID:         cart.ID.String(),
		CustomerID: cart.CustomerID.String(),
		Items:      items,
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
	}, nil
}

func (r *CartRepo) GetOrCreate(ctx context.Context, customerID string) (domain.Cart, error) {
	cart, err := r.Get(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, app.ErrCartNotFound) {
		return domain.Cart{}, err
	}

	customerUUID, parseErr := uuid.Parse(customerID)
	if parseErr != nil {
		return domain.Cart{}, app.ErrInvalidInput
	}

	_, createErr := r.q.CreateCart(ctx, customerUUID)
	if createErr == nil || postgres.IsUniqueViolation(createErr) {
		// a concurrent request may have created it first
		return r.Get(ctx, customerID)
	}

	return domain.Cart{}, fmt.Errorf("create cart: %w", createErr)
}

func (r *CartRepo) AddItem(ctx context.Context, cartID string, item domain.CartItem) error {
	cartUUID, variantUUID, err := parseIDs(cartID, item.VariantID)
	if err != nil {
		return err
	}

	_, err = r.q.UpsertAddItemIncrement(ctx, cartdb.UpsertAddItemIncrementParams{
		CartID:           cartUUID,
		ProductVariantID: variantUUID,
		Quantity:         int32(item.Quantity),
		UnitPrice:        item.UnitPrice,
	})
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *CartRepo) SetItemQuantity(ctx context.Context, cartID, variantID string, quantity int) error {
	cartUUID, variantUUID, err := parseIDs(cartID, variantID)
	if err != nil {
		return err
	}

	n, err := r.q.SetItemQuantity(ctx, cartdb.SetItemQuantityParams{
		CartID:           cartUUID,
		ProductVariantID: variantUUID,
		Quantity:         int32(quantity),
	})
	if err != nil {
		return fmt.Errorf("set cart item quantity: %w", err)
	}
	if n == 0 {
		return app.ErrItemNotFound
	}
	return nil
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID, variantID string) error {
	cartUUID, variantUUID, err := parseIDs(cartID, variantID)
	if err != nil {
		return err
	}

	n, err := r.q.RemoveItem(ctx, cartdb.RemoveItemParams{
		CartID:           cartUUID,
		ProductVariantID: variantUUID,
	})
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if n == 0 {
		return app.ErrItemNotFound
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	cartUUID, err := uuid.Parse(cartID)
	if err != nil {
		return app.ErrCartNotFound
	}
	if _, err := r.q.ClearCart(ctx, cartUUID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func parseIDs(cartID, variantID string) (uuid.UUID, uuid.UUID, error) {
	cartUUID, err := uuid.Parse(cartID)
	if err != nil {
		return uuid.Nil, uuid.Nil, app.ErrCartNotFound
	}
	variantUUID, err := uuid.Parse(variantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, app.ErrInvalidInput
	}
	return cartUUID, variantUUID, nil
}
