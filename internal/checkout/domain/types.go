package domain

import (
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/shopspring/decimal"
)

type QuoteLine struct {
	VariantID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	Available   int
}

// InStock reports whether the line could be bought right now.
func (l QuoteLine) InStock() bool { return l.Quantity <= l.Available }

type Quote struct {
	Lines []QuoteLine
	Total decimal.Decimal
}

func (q Quote) Purchasable() bool {
	for _, l := range q.Lines {
		if !l.InStock() {
			return false
		}
	}
	return len(q.Lines) > 0
}

type PlaceOrderRequest struct {
	CustomerID        string
	Password          string
	Address           orderdomain.Address
	PaymentOptionCode string
	// IdempotencyKey is optional; a repeated key returns the first order.
	IdempotencyKey string
}
