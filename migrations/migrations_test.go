package migrations

import (
	"io"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsLoad(t *testing.T) {
	src, err := iofs.New(files, "sql")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	require.Equal(t, uint(1), first)

	up, _, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()

	body, err := io.ReadAll(up)
	require.NoError(t, err)
	schema := string(body)

	require.True(t, strings.Contains(schema, "CHECK (stock >= 0)"), "stock must be guarded by the schema")
	require.True(t, strings.Contains(schema, "customer_id UUID NOT NULL UNIQUE"), "one cart per customer")
	require.True(t, strings.Contains(schema, "'cod'"), "cod payment option is seeded")
}
