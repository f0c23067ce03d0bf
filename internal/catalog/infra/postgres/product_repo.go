package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/internal/catalog/infra/postgres/catalogdb"
	"github.com/google/uuid"
)

type ProductRepo struct {
	q *catalogdb.Queries
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{q: catalogdb.New(db)}
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	row, err := r.q.CreateProduct(ctx, catalogdb.CreateProductParams{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
	})
	if err != nil {
		return domain.Product{}, err
	}

	return toDomainProduct(row, nil), nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}

	product, err := r.q.GetProduct(ctx, prodID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}

	variants, err := r.q.ListVariantsByProduct(ctx, prodID)
	if err != nil {
		return domain.Product{}, err
	}

	return toDomainProduct(product, variants), nil
}

func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	var cur uuid.NullUUID
	if strings.TrimSpace(cursor) != "" {
		uid, err := uuid.Parse(strings.TrimSpace(cursor))
		if err != nil {
			return nil, "", app.ErrInvalidInput
		}
		cur = uuid.NullUUID{UUID: uid, Valid: true}
	}

	rows, err := r.q.ListProducts(ctx, catalogdb.ListProductsParams{
		Query:  strings.TrimSpace(query),
		Limit:  int32(limit),
		Cursor: cur,
	})
	if err != nil {
		return nil, "", err
	}

	out := make([]domain.Product, 0, len(rows))
	var nextCursor string

	for _, row := range rows {
		out = append(out, toDomainProduct(row, nil))
		nextCursor = row.ID.String()
	}

	if len(out) < limit {
		nextCursor = ""
	}

	return out, nextCursor, nil
}

func (r *ProductRepo) CreateVariant(ctx context.Context, v domain.Variant) (domain.Variant, error) {
	productID, err := uuid.Parse(v.ProductID)
	if err != nil {
		return domain.Variant{}, app.ErrNotFound
	}

	row, err := r.q.CreateVariant(ctx, catalogdb.CreateVariantParams{
		ProductID: productID,
		Size:      nullString(v.Size),
		Color:     nullString(v.Color),
		Stock:     int32(v.Stock),
	})
	if err != nil {
		return domain.Variant{}, err
	}
	return toDomainVariant(row), nil
}

func (r *ProductRepo) GetVariant(ctx context.Context, id string) (domain.VariantWithPrice, error) {
	variantID, err := uuid.Parse(id)
	if err != nil {
		return domain.VariantWithPrice{}, app.ErrVariantNotFound
	}

	row, err := r.q.GetVariantWithPrice(ctx, variantID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VariantWithPrice{}, app.ErrVariantNotFound
	}
	if err != nil {
		return domain.VariantWithPrice{}, err
	}

	return domain.VariantWithPrice{
		Variant:     toDomainVariant(row.ProductVariant),
		ProductName: row.ProductName,
		Price:       row.Price,
	}, nil
}

func toDomainProduct(row catalogdb.Product, variants []catalogdb.ProductVariant) domain.Product {
	p := domain.Product{
		ID:          row.ID.String(),
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	for _, v := range variants {
		p.Variants = append(p.Variants, toDomainVariant(v))
	}
	return p
}

func toDomainVariant(row catalogdb.ProductVariant) domain.Variant {
	return domain.Variant{
		ID:        row.ID.String(),
		ProductID: row.ProductID.String(),
		Size:      stringPtr(row.Size),
		Color:     stringPtr(row.Color),
		Stock:     int(row.Stock),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
