package adapter

import (
	"context"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/shopspring/decimal"
)

type CatalogPricer struct {
	svc *catalogapp.Service
}

func NewCatalogPricer(svc *catalogapp.Service) *CatalogPricer {
	return &CatalogPricer{svc: svc}
}

func (c *CatalogPricer) VariantPrice(ctx context.Context, variantID string) (decimal.Decimal, error) {
	v, err := c.svc.GetVariant(ctx, variantID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return v.Price, nil
}
