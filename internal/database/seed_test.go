package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/inventory-backend/internal/config"
	"github.com/javajoker/inventory-backend/internal/repository"
	"github.com/javajoker/inventory-backend/internal/services"
)

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	cfg := config.InventoryConfig{DefaultReorderPoint: 10, DefaultMaxStock: 1000, MaxSaveAttempts: 3, DefaultTopProducts: 10}

	n, err := SeedCatalog(ctx, services.NewProductService(store, cfg), services.NewInventoryService(store, cfg))
	require.NoError(t, err)
	assert.Equal(t, len(sampleCatalog), n)

	rows, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, rows, len(sampleCatalog))

	bySKU := make(map[string]repository.StockRow, len(rows))
	for _, row := range rows {
		require.NoError(t, row.Record.Validate())
		require.NotNil(t, row.Product)
		bySKU[row.Record.SKU] = row
	}

	phone := bySKU["PHONE-001"].Record
	assert.Equal(t, 150, phone.TotalStock)
	assert.Equal(t, 125, phone.TotalAvailable)
	assert.Equal(t, 50, phone.ReorderPoint)
	assert.False(t, phone.StockAlerts.LowStock)

	assert.True(t, bySKU["AUDIO-001"].Record.StockAlerts.Overstock)
	assert.True(t, bySKU["DESK-001"].Record.StockAlerts.OutOfStock)

	_, err = SeedCatalog(ctx, services.NewProductService(store, cfg), services.NewInventoryService(store, cfg))
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestOpenStoreMemory(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMemory}}

	store, closeStore, err := OpenStore(cfg)
	require.NoError(t, err)
	defer closeStore()
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Reset(context.Background()))
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, _, err := OpenStore(&config.Config{Storage: config.StorageConfig{Driver: "mongo"}})
	assert.Error(t, err)
}
