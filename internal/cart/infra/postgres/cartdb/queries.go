package cartdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type Cart struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CartItem struct {
	CartID           uuid.UUID
	ProductVariantID uuid.UUID
	Quantity         int32
	UnitPrice        decimal.Decimal
	CreatedAt        time.Time
}

const getCartByCustomerID = `
SELECT id, customer_id, created_at, updated_at
FROM carts
WHERE customer_id = $1`

func (q *Queries) GetCartByCustomerID(ctx context.Context, customerID uuid.UUID) (Cart, error) {
	row := q.db.QueryRowContext(ctx, getCartByCustomerID, customerID)
	var i Cart
	err := row.Scan(&i.ID, &i.CustomerID, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createCart = `
INSERT INTO carts (customer_id)
VALUES ($1)
RETURNING id, customer_id, created_at, updated_at`

func (q *Queries) CreateCart(ctx context.Context, customerID uuid.UUID) (Cart, error) {
	row := q.db.QueryRowContext(ctx, createCart, customerID)
	var i Cart
	err := row.Scan(&i.ID, &i.CustomerID, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listCartItems = `
SELECT cart_id, product_variant_id, quantity, unit_price, created_at
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at, product_variant_id`

func (q *Queries) ListCartItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := q.db.QueryContext(ctx, listCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var i CartItem
		if err := rows.Scan(&i.CartID, &i.ProductVariantID, &i.Quantity, &i.UnitPrice, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const upsertAddItemIncrement = `
INSERT INTO cart_items (cart_id, product_variant_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_variant_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
              unit_price = EXCLUDED.unit_price
RETURNING quantity`

type UpsertAddItemIncrementParams struct {
	CartID           uuid.UUID
	ProductVariantID uuid.UUID
	Quantity         int32
	UnitPrice        decimal.Decimal
}

func (q *Queries) UpsertAddItemIncrement(ctx context.Context, arg UpsertAddItemIncrementParams) (int32, error) {
	row := q.db.QueryRowContext(ctx, upsertAddItemIncrement, arg.CartID, arg.ProductVariantID, arg.Quantity, arg.UnitPrice)
	var quantity int32
	err := row.Scan(&quantity)
	return quantity, err
}

const setItemQuantity = `
UPDATE cart_items
SET quantity = $3
WHERE cart_id = $1 AND product_variant_id = $2`

type SetItemQuantityParams struct {
	CartID           uuid.UUID
	ProductVariantID uuid.UUID
	Quantity         int32
}

func (q *Queries) SetItemQuantity(ctx context.Context, arg SetItemQuantityParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, setItemQuantity, arg.CartID, arg.ProductVariantID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const removeItem = `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_variant_id = $2`

type RemoveItemParams struct {
	CartID           uuid.UUID
	ProductVariantID uuid.UUID
}

func (q *Queries) RemoveItem(ctx context.Context, arg RemoveItemParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, removeItem, arg.CartID, arg.ProductVariantID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const clearCart = `DELETE FROM cart_items WHERE cart_id = $1`

func (q *Queries) ClearCart(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, clearCart, cartID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const claimCartByCustomerID = `
DELETE FROM cart_items
WHERE cart_id = (SELECT id FROM carts WHERE customer_id = $1)
RETURNING product_variant_id, quantity, unit_price`

type ClaimedCartItem struct {
	ProductVariantID uuid.UUID
	Quantity         int32
	UnitPrice        decimal.Decimal
}

// ClaimCartByCustomerID deletes the customer's cart lines and returns them.
// No rows means a concurrent request consumed the cart first.
func (q *Queries) ClaimCartByCustomerID(ctx context.Context, customerID uuid.UUID) ([]ClaimedCartItem, error) {
	rows, err := q.db.QueryContext(ctx, claimCartByCustomerID, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ClaimedCartItem
	for rows.Next() {
		var i ClaimedCartItem
		if err := rows.Scan(&i.ProductVariantID, &i.Quantity, &i.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
