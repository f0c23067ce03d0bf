package catalogdb

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

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProductVariant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Size      sql.NullString
	Color     sql.NullString
	Stock     int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

const createProduct = `
INSERT INTO products (name, description, price)
VALUES ($1, $2, $3)
RETURNING id, name, description, price, created_at, updated_at`

type CreateProductParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRowContext(ctx, createProduct, arg.Name, arg.Description, arg.Price)
	var i Product
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Price, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getProduct = `
SELECT id, name, description, price, created_at, updated_at
FROM products
WHERE id = $1`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRowContext(ctx, getProduct, id)
	var i Product
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Price, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listProducts = `
SELECT id, name, description, price, created_at, updated_at
FROM products
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
  AND ($3::uuid IS NULL OR id > $3)
ORDER BY id
LIMIT $2`

type ListProductsParams struct {
	Query  string
	Limit  int32
	Cursor uuid.NullUUID
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listProducts, arg.Query, arg.Limit, arg.Cursor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(&i.ID, &i.Name, &i.Description, &i.Price, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const createVariant = `
INSERT INTO product_variants (product_id, size, color, stock)
VALUES ($1, $2, $3, $4)
RETURNING id, product_id, size, color, stock, created_at, updated_at`

type CreateVariantParams struct {
	ProductID uuid.UUID
	Size      sql.NullString
	Color     sql.NullString
	Stock     int32
}

func (q *Queries) CreateVariant(ctx context.Context, arg CreateVariantParams) (ProductVariant, error) {
	row := q.db.QueryRowContext(ctx, createVariant, arg.ProductID, arg.Size, arg.Color, arg.Stock)
	var i ProductVariant
	err := row.Scan(&i.ID, &i.ProductID, &i.Size, &i.Color, &i.Stock, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listVariantsByProduct = `
SELECT id, product_id, size, color, stock, created_at, updated_at
FROM product_variants
WHERE product_id = $1
ORDER BY created_at, id`

func (q *Queries) ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]ProductVariant, error) {
	rows, err := q.db.QueryContext(ctx, listVariantsByProduct, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ProductVariant
	for rows.Next() {
		var i ProductVariant
		if err := rows.Scan(&i.ID, &i.ProductID, &i.Size, &i.Color, &i.Stock, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const getVariantWithPrice = `
SELECT v.id, v.product_id, v.size, v.color, v.stock, v.created_at, v.updated_at, p.name, p.price
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.id = $1`

type GetVariantWithPriceRow struct {
	ProductVariant
	ProductName string
	Price       decimal.Decimal
}

func (q *Queries) GetVariantWithPrice(ctx context.Context, id uuid.UUID) (GetVariantWithPriceRow, error) {
	row := q.db.QueryRowContext(ctx, getVariantWithPrice, id)
	var i GetVariantWithPriceRow
	err := row.Scan(&i.ID, &i.ProductID, &i.Size, &i.Color, &i.Stock, &i.CreatedAt, &i.UpdatedAt, &i.ProductName, &i.Price)
	return i, err
}
