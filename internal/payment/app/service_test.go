package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront/internal/payment/domain"
)

type memRepo map[string]domain.PaymentOption

func (m memRepo) Get(_ context.Context, code string) (domain.PaymentOption, bool, error) {
	o, ok := m[code]
	return o, ok, nil
}

func (m memRepo) ListActive(context.Context) ([]domain.PaymentOption, error) {
	var out []domain.PaymentOption
	for _, o := range m {
		if o.IsActive {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m memRepo) Upsert(_ context.Context, o domain.PaymentOption) error {
	m[o.Code] = o
	return nil
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memRepo{"cod": {Code: "cod", Name: "Cash on Delivery", IsActive: true}})

	opt, found, err := svc.Lookup(ctx, " COD ")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Cash on Delivery", opt.Name)

	_, found, err = svc.Lookup(ctx, "card")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = svc.Lookup(ctx, "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpsertAndListActive(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memRepo{})

	_, err := svc.Upsert(ctx, "bank", "Bank Transfer", false)
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, "COD", "Cash on Delivery", true)
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.CashOnDelivery, active[0].Code)

	_, err = svc.Upsert(ctx, "x", " ", true)
	assert.Error(t, err)
}
