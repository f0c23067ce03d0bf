package app

import "github.com/dwikikusuma/storefront/internal/order/domain"

// MatchClaimedCart checks the cart lines deleted inside the order
// transaction against the lines the order was priced from. Only an exact
// match by variant, quantity and unit price may be placed.
func MatchClaimedCart(ordered, claimed []domain.OrderItem) error {
	if len(claimed) == 0 {
		return ErrCartConsumed
	}
	if len(claimed) != len(ordered) {
		return ErrCartChanged
	}

	want := make(map[string]domain.OrderItem, len(ordered))
	for _, it := range ordered {
		want[it.VariantID] = it
	}
	for _, got := range claimed {
		it, ok := want[got.VariantID]
		if !ok || it.Quantity != got.Quantity || !it.UnitPrice.Equal(got.UnitPrice) {
			return ErrCartChanged
		}
		delete(want, got.VariantID)
	}
	return nil
}
