package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Address is the shipping snapshot stored on the order header.
type Address struct {
	ShippingName  string
	ShippingPhone string
	AddressLine1  string
	AddressLine2  string
	City          string
	State         string
	PostalCode    string
	Country       string
}

func (a Address) Trimmed() Address {
	return Address{
		ShippingName:  strings.TrimSpace(a.ShippingName),
		ShippingPhone: strings.TrimSpace(a.ShippingPhone),
		AddressLine1:  strings.TrimSpace(a.AddressLine1),
		AddressLine2:  strings.TrimSpace(a.AddressLine2),
		City:          strings.TrimSpace(a.City),
		State:         strings.TrimSpace(a.State),
		PostalCode:    strings.TrimSpace(a.PostalCode),
		Country:       strings.TrimSpace(a.Country),
	}
}

// Complete reports whether the required fields are present.
func (a Address) Complete() bool {
	t := a.Trimmed()
	return t.ShippingName != "" && t.AddressLine1 != "" && t.City != "" && t.Country != ""
}

type Order struct {
	ID                string
	CustomerID        string
	Status            Status
	PaymentStatus     PaymentStatus
	TotalAmount       decimal.Decimal
	Address           Address
	PaymentOptionCode string
	PaymentOptionName *string
	Items             []OrderItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem is an immutable purchase snapshot.
type OrderItem struct {
	ID        string
	OrderID   string
	VariantID string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums the lines and rounds to cents.
func Total(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total.Round(2)
}

type CreateOrderRequest struct {
	CustomerID        string
	Address           Address
	PaymentOptionCode string
	PaymentOptionName *string
	Items             []OrderItemRequest
}

type OrderItemRequest struct {
	VariantID string
	Quantity  int
	UnitPrice decimal.Decimal
}

type CustomerSummary struct {
	ID       string
	Email    string
	FullName string
}

// AdminOrder is an order header joined with who placed it.
type AdminOrder struct {
	Order
	Customer CustomerSummary
}
