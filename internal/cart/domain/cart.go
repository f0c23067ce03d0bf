package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one variant line. UnitPrice is the product price captured
// when the line was last added.
type CartItem struct {
	VariantID string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	ID         string
	CustomerID string
	Items      []CartItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Quantity returns the quantity held for variantID, 0 when absent.
func (c Cart) Quantity(variantID string) int {
	for _, it := range c.Items {
		if it.VariantID == variantID {
			return it.Quantity
		}
	}
	return 0
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total.Round(2)
}
