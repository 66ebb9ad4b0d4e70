package migration

import (
	"io"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/backend/migrations"
)

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	source, err := iofs.New(migrations.FS, ".")
	require.NoError(t, err)
	defer source.Close()

	version, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	for {
		up, _, err := source.ReadUp(version)
		require.NoError(t, err, "version %d has no up migration", version)
		_ = up.Close()

		down, _, err := source.ReadDown(version)
		require.NoError(t, err, "version %d has no down migration", version)
		_ = down.Close()

		next, err := source.Next(version)
		if err != nil {
			break
		}
		version = next
	}
}

func TestEmbeddedMigrations_CreateOrdersTable(t *testing.T) {
	source, err := iofs.New(migrations.FS, ".")
	require.NoError(t, err)
	defer source.Close()

	up, identifier, err := source.ReadUp(1)
	require.NoError(t, err)
	defer up.Close()

	body, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Equal(t, "create_fulfillment_orders", identifier)
	sql := string(body)
	assert.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS fulfillment_orders"))
	assert.Contains(t, sql, "idx_fulfillment_orders_order_sn")
	assert.Contains(t, sql, "pickup_details")
}
