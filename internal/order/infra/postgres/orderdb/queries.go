package orderdb

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

type Order struct {
	ID                uuid.UUID       `db:"id"`
	CustomerID        uuid.UUID       `db:"customer_id"`
	Status            string          `db:"status"`
	PaymentStatus     string          `db:"payment_status"`
	TotalAmount       decimal.Decimal `db:"total_amount"`
	ShippingName      string          `db:"shipping_name"`
	ShippingPhone     string          `db:"shipping_phone"`
	AddressLine1      string          `db:"address_line1"`
	AddressLine2      string          `db:"address_line2"`
	City              string          `db:"city"`
	State             string          `db:"state"`
	PostalCode        string          `db:"postal_code"`
	Country           string          `db:"country"`
	PaymentOptionCode string          `db:"payment_option_code"`
	PaymentOptionName sql.NullString  `db:"payment_option_name"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

type OrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	ProductVariantID uuid.UUID
	Quantity         int32
	UnitPrice        decimal.Decimal
}

// OrderColumns is shared with the sqlx admin listing.
const OrderColumns = `o.id, o.customer_id, o.status, o.payment_status, o.total_amount,
o.shipping_name, o.shipping_phone, o.address_line1, o.address_line2, o.city, o.state,
o.postal_code, o.country, o.payment_option_code, o.payment_option_name, o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...any) error }, i *Order) error {
	return row.Scan(
		&i.ID, &i.CustomerID, &i.Status, &i.PaymentStatus, &i.TotalAmount,
		&i.ShippingName, &i.ShippingPhone, &i.AddressLine1, &i.AddressLine2, &i.City, &i.State,
		&i.PostalCode, &i.Country, &i.PaymentOptionCode, &i.PaymentOptionName, &i.CreatedAt, &i.UpdatedAt,
	)
}

const createOrder = `
INSERT INTO orders AS o (
    customer_id, status, payment_status, total_amount,
    shipping_name, shipping_phone, address_line1, address_line2, city, state, postal_code, country,
    payment_option_code, payment_option_name
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + OrderColumns

type CreateOrderParams struct {
	CustomerID        uuid.UUID
	Status            string
	PaymentStatus     string
	TotalAmount       decimal.Decimal
	ShippingName      string
	ShippingPhone     string
	AddressLine1      string
	AddressLine2      string
	City              string
	State             string
	PostalCode        string
	Country           string
	PaymentOptionCode string
	PaymentOptionName sql.NullString
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRowContext(ctx, createOrder,
		arg.CustomerID, arg.Status, arg.PaymentStatus, arg.TotalAmount,
		arg.ShippingName, arg.ShippingPhone, arg.AddressLine1, arg.AddressLine2, arg.City, arg.State, arg.PostalCode, arg.Country,
		arg.PaymentOptionCode, arg.PaymentOptionName,
	)
	var i Order
	err := scanOrder(row, &i)
	return i, err
}

const addOrderItem = `
INSERT INTO order_items (order_id, product_variant_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, product_variant_id, quantity, unit_price`

type AddOrderItemParams struct {
	OrderID          uuid.UUID
	ProductVariantID uuid.UUID
	Quantity         int32
	UnitPrice        decimal.Decimal
}

func (q *Queries) AddOrderItem(ctx context.Context, arg AddOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRowContext(ctx, addOrderItem, arg.OrderID, arg.ProductVariantID, arg.Quantity, arg.UnitPrice)
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.ProductVariantID, &i.Quantity, &i.UnitPrice)
	return i, err
}

const getOrder = `SELECT ` + OrderColumns + ` FROM orders o WHERE o.id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRowContext(ctx, getOrder, id)
	var i Order
	err := scanOrder(row, &i)
	return i, err
}

const listOrderItems = `
SELECT id, order_id, product_variant_id, quantity, unit_price
FROM order_items
WHERE order_id = $1
ORDER BY product_variant_id`

func (q *Queries) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.QueryContext(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ProductVariantID, &i.Quantity, &i.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const listOrdersByCustomer = `
SELECT ` + OrderColumns + `
FROM orders o
WHERE o.customer_id = $1
ORDER BY o.created_at DESC, o.id DESC
LIMIT $2`

type ListOrdersByCustomerParams struct {
	CustomerID uuid.UUID
	Limit      int32
}

func (q *Queries) ListOrdersByCustomer(ctx context.Context, arg ListOrdersByCustomerParams) ([]Order, error) {
	rows, err := q.db.QueryContext(ctx, listOrdersByCustomer, arg.CustomerID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Order
	for rows.Next() {
		var i Order
		if err := scanOrder(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

// The status read is part of the guard so a concurrent update is detected
// instead of overwritten.
const updateOrderStatus = `
UPDATE orders AS o
SET status = $3, payment_status = $4, updated_at = now()
WHERE o.id = $1 AND o.status = $2
RETURNING ` + OrderColumns

type UpdateOrderStatusParams struct {
	ID            uuid.UUID
	PrevStatus    string
	Status        string
	PaymentStatus string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRowContext(ctx, updateOrderStatus, arg.ID, arg.PrevStatus, arg.Status, arg.PaymentStatus)
	var i Order
	err := scanOrder(row, &i)
	return i, err
}
