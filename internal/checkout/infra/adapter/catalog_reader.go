package adapter

import (
	"context"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) ProductName(ctx context.Context, variantID string) (string, error) {
	v, err := r.svc.GetVariant(ctx, variantID)
	if err != nil {
		return "", err
	}
	return v.ProductName, nil
}
