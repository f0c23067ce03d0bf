package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Variants    []Variant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Variant is the size/color SKU stock is tracked against.
type Variant struct {
	ID        string
	ProductID string
	Size      *string
	Color     *string
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VariantWithPrice is a variant joined with its product's current price.
type VariantWithPrice struct {
	Variant
	ProductName string
	Price       decimal.Decimal
}
