package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront/internal/order/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 30, 0, 123456000, time.UTC)
	id := uuid.New()

	gotT, gotID, err := decodeCursor(encodeCursor(ts, id))
	require.NoError(t, err)
	assert.True(t, ts.Equal(gotT))
	assert.Equal(t, id, gotID)

	for _, bad := range []string{"nope", "2025-03-01T12:30:00Z_not-a-uuid", "yesterday_" + id.String()} {
		_, _, err := decodeCursor(bad)
		assert.Error(t, err, bad)
	}
}

func TestSortedByVariantDoesNotMutateInput(t *testing.T) {
	in := []domain.OrderItem{{VariantID: "c"}, {VariantID: "a"}, {VariantID: "b"}}
	out := sortedByVariant(in)

	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].VariantID, out[1].VariantID, out[2].VariantID})
	assert.Equal(t, "c", in[0].VariantID)
}
