package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/inventory-backend/internal/config"
	"github.com/javajoker/inventory-backend/internal/models"
	"github.com/javajoker/inventory-backend/internal/repository"
)

var testInventoryConfig = config.InventoryConfig{
	DefaultReorderPoint: 10,
	DefaultMaxStock:     1000,
	MaxSaveAttempts:     4,
	RetryBackoffMs:      1,
	DefaultTopProducts:  10,
}

func intPtr(v int) *int { return &v }

func newInventoryFixture(t *testing.T) (*repository.MemoryStore, *InventoryService, *ProductService) {
	t.Helper()
	store := repository.NewMemoryStore()
	return store, NewInventoryService(store, testInventoryConfig), NewProductService(store, testInventoryConfig)
}

func createProduct(t *testing.T, products *ProductService, sku string, cost, retail float64) *ProductWithStock {
	t.Helper()
	created, err := products.CreateProduct(context.Background(), &CreateProductRequest{
		SKU:      sku,
		Name:     "Product " + sku,
		Category: CategoryInput{Main: "Electronics", Sub: "Phones"},
		Pricing:  PricingInput{Cost: cost, Retail: retail},
	})
	require.NoError(t, err)
	return created
}

func assertLedgerConsistent(t *testing.T, r *models.StockRecord) {
	t.Helper()
	assert.NoError(t, r.Validate())
}

func TestAddThenRemoveStock(t *testing.T) {
	ctx := context.Background()
	_, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 450, 699.99).Inventory.ID

	record, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, record.TotalStock)
	assert.Equal(t, 100, record.TotalAvailable)
	assert.False(t, record.StockAlerts.LowStock)
	assert.NotNil(t, record.LastRestock)

	record, err = inventory.RemoveStock(ctx, id, &RemoveStockRequest{WarehouseName: "WH1", Quantity: 95, Reason: "test"})
	require.NoError(t, err)
	assert.Equal(t, 5, record.TotalStock)
	assert.Equal(t, 5, record.TotalAvailable)
	assert.True(t, record.StockAlerts.LowStock)
	assert.False(t, record.StockAlerts.OutOfStock)
	assertLedgerConsistent(t, record)
}

func TestAddStockMergesExistingWarehouse(t *testing.T) {
	ctx := context.Background()
	_, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID

	_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Location: "Dock A", Quantity: 10})
	require.NoError(t, err)
	record, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: " WH1 ", Quantity: 5})
	require.NoError(t, err)

	require.Len(t, record.Warehouses, 1)
	assert.Equal(t, 15, record.Warehouses[0].Quantity)
	assert.Equal(t, "Dock A", record.Warehouses[0].Location)
}

func TestAddStockRejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	_, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID

	for _, qty := range []int{0, -3} {
		_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: qty})
		assert.ErrorIs(t, err, ErrValidation)
		assert.False(t, IsRetryable(err))
	}
}

func TestValidationPrecedesStorage(t *testing.T) {
	_, inventory, _ := newInventoryFixture(t)

	_, err := inventory.AddStock(context.Background(), uuid.New(), &AddStockRequest{WarehouseName: "WH1", Quantity: 0})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveStockFailures(t *testing.T) {
	ctx := context.Background()
	store, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID
	_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 10})
	require.NoError(t, err)
	before, err := store.LoadStockRecord(ctx, id)
	require.NoError(t, err)

	t.Run("missing warehouse", func(t *testing.T) {
		_, err := inventory.RemoveStock(ctx, id, &RemoveStockRequest{WarehouseName: "WH9", Quantity: 1})
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("more than available", func(t *testing.T) {
		_, err := inventory.RemoveStock(ctx, id, &RemoveStockRequest{WarehouseName: "WH1", Quantity: 11})
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("unknown record", func(t *testing.T) {
		_, err := inventory.RemoveStock(ctx, uuid.New(), &RemoveStockRequest{WarehouseName: "WH1", Quantity: 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	after, err := store.LoadStockRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRemoveStockDefaultsReason(t *testing.T) {
	ctx := context.Background()
	_, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID
	_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 10})
	require.NoError(t, err)
	_, err = inventory.RemoveStock(ctx, id, &RemoveStockRequest{WarehouseName: "WH1", Quantity: 2})
	require.NoError(t, err)

	movements, err := inventory.ListMovements(ctx, id, 1)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementTypeRemove, movements[0].MovementType)
	assert.Equal(t, defaultRemovalReason, movements[0].Reason)
	assert.Equal(t, -2, movements[0].Quantity)
	assert.Equal(t, 10, movements[0].StockBefore)
	assert.Equal(t, 8, movements[0].StockAfter)
}

func TestReserveExceedingAvailability(t *testing.T) {
	ctx := context.Background()
	store, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID
	_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 10})
	require.NoError(t, err)
	before, err := store.LoadStockRecord(ctx, id)
	require.NoError(t, err)

	_, err = inventory.Reserve(ctx, id, &ReservationRequest{WarehouseName: "WH1", Quantity: 15})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = inventory.Reserve(ctx, id, &ReservationRequest{WarehouseName: "WH2", Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := store.LoadStockRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID
	start, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 40})
	require.NoError(t, err)

	reserved, err := inventory.Reserve(ctx, id, &ReservationRequest{WarehouseName: "WH1", Quantity: 15})
	require.NoError(t, err)
	assert.Equal(t, 15, reserved.Warehouses[0].Reserved)
	assert.Equal(t, 25, reserved.TotalAvailable)
	assert.Equal(t, 40, reserved.TotalStock)

	released, err := inventory.Release(ctx, id, &ReservationRequest{WarehouseName: "WH1", Quantity: 15})
	require.NoError(t, err)
	assert.Equal(t, start.Warehouses[0].Reserved, released.Warehouses[0].Reserved)
	assert.Equal(t, start.Warehouses[0].Available, released.Warehouses[0].Available)
	assert.Equal(t, start.TotalAvailable, released.TotalAvailable)

	_, err = inventory.Release(ctx, id, &ReservationRequest{WarehouseName: "WH1", Quantity: 1})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestFulfillReservationShipsReservedUnits(t *testing.T) {
	ctx := context.Background()
	_, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID
	_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 30})
	require.NoError(t, err)
	_, err = inventory.Reserve(ctx, id, &ReservationRequest{WarehouseName: "WH1", Quantity: 12})
	require.NoError(t, err)

	record, err := inventory.FulfillReservation(ctx, id, &ReservationRequest{WarehouseName: "WH1", Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, 20, record.TotalStock)
	assert.Equal(t, 18, record.TotalAvailable)
	assert.Equal(t, 2, record.Warehouses[0].Reserved)

	_, err = inventory.FulfillReservation(ctx, id, &ReservationRequest{WarehouseName: "WH1", Quantity: 3})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestRemoveWarehouse(t *testing.T) {
	ctx := context.Background()
	_, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID
	_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 30})
	require.NoError(t, err)
	_, err = inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH2", Quantity: 20})
	require.NoError(t, err)
	_, err = inventory.Reserve(ctx, id, &ReservationRequest{WarehouseName: "WH1", Quantity: 5})
	require.NoError(t, err)

	record, err := inventory.RemoveWarehouse(ctx, id, "WH1")
	require.NoError(t, err)
	require.Len(t, record.Warehouses, 1)
	assert.Equal(t, "WH2", record.Warehouses[0].WarehouseName)
	assert.Equal(t, 20, record.TotalStock)
	assert.Equal(t, 20, record.TotalAvailable)

	_, err = inventory.RemoveWarehouse(ctx, id, "WH1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	store, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID
	_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 30})
	require.NoError(t, err)
	_, err = inventory.Reserve(ctx, id, &ReservationRequest{WarehouseName: "WH1", Quantity: 10})
	require.NoError(t, err)

	t.Run("thresholds and absolute quantity", func(t *testing.T) {
		loc := "Aisle 4"
		record, err := inventory.UpdateSettings(ctx, id, &UpdateSettingsRequest{
			ReorderPoint: intPtr(25),
			MaxStock:     intPtr(40),
			WarehouseUpdates: []WarehouseUpdate{
				{WarehouseName: "WH1", Quantity: intPtr(50), Location: &loc},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 50, record.TotalStock)
		assert.Equal(t, 40, record.TotalAvailable)
		assert.Equal(t, "Aisle 4", record.Warehouses[0].Location)
		assert.True(t, record.StockAlerts.Overstock)
		assert.False(t, record.StockAlerts.LowStock)
		assertLedgerConsistent(t, record)
	})

	t.Run("unmatched warehouse fails without changes", func(t *testing.T) {
		before, err := store.LoadStockRecord(ctx, id)
		require.NoError(t, err)

		_, err = inventory.UpdateSettings(ctx, id, &UpdateSettingsRequest{
			ReorderPoint:     intPtr(1),
			WarehouseUpdates: []WarehouseUpdate{{WarehouseName: "WH9", Quantity: intPtr(5)}},
		})
		assert.ErrorIs(t, err, ErrNotFound)

		after, err := store.LoadStockRecord(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("quantity below reserved", func(t *testing.T) {
		_, err := inventory.UpdateSettings(ctx, id, &UpdateSettingsRequest{
			WarehouseUpdates: []WarehouseUpdate{{WarehouseName: "WH1", Quantity: intPtr(5)}},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("negative threshold", func(t *testing.T) {
		_, err := inventory.UpdateSettings(ctx, id, &UpdateSettingsRequest{ReorderPoint: intPtr(-1)})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpdateSettingsRestockTime(t *testing.T) {
	ctx := context.Background()
	_, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID

	added := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	inventory.now = func() time.Time { return added }
	_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 10})
	require.NoError(t, err)

	raised := added.Add(time.Hour)
	inventory.now = func() time.Time { return raised }
	record, err := inventory.UpdateSettings(ctx, id, &UpdateSettingsRequest{
		WarehouseUpdates: []WarehouseUpdate{{WarehouseName: "WH1", Quantity: intPtr(50)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, record.TotalStock)
	require.NotNil(t, record.LastRestock)
	assert.True(t, raised.Equal(*record.LastRestock))

	lowered := raised.Add(time.Hour)
	inventory.now = func() time.Time { return lowered }
	record, err = inventory.UpdateSettings(ctx, id, &UpdateSettingsRequest{
		ReorderPoint:     intPtr(3),
		WarehouseUpdates: []WarehouseUpdate{{WarehouseName: "WH1", Quantity: intPtr(20)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 20, record.TotalStock)
	assert.True(t, raised.Equal(*record.LastRestock))
}

func TestRandomSequencesPreserveInvariants(t *testing.T) {
	ctx := context.Background()
	store, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID
	rng := rand.New(rand.NewSource(7))
	warehouses := []string{"WH1", "WH2", "WH3"}

	for i := 0; i < 500; i++ {
		wh := warehouses[rng.Intn(len(warehouses))]
		qty := rng.Intn(20) + 1

		var err error
		switch rng.Intn(5) {
		case 0, 1:
			_, err = inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: wh, Quantity: qty})
		case 2:
			_, err = inventory.RemoveStock(ctx, id, &RemoveStockRequest{WarehouseName: wh, Quantity: qty})
		case 3:
			_, err = inventory.Reserve(ctx, id, &ReservationRequest{WarehouseName: wh, Quantity: qty})
		case 4:
			_, err = inventory.Release(ctx, id, &ReservationRequest{WarehouseName: wh, Quantity: qty})
		}
		if err != nil {
			kind := KindOf(err)
			require.Contains(t, []ErrorKind{KindInsufficientStock, KindNotFound}, kind, err.Error())
		}

		record, err := store.LoadStockRecord(ctx, id)
		require.NoError(t, err)
		require.NoError(t, record.Validate())
		for _, w := range record.Warehouses {
			require.GreaterOrEqual(t, w.Available, 0)
		}
	}
}

func TestConcurrentRemovalsCannotOversell(t *testing.T) {
	ctx := context.Background()
	store, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID
	_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 10})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := inventory.RemoveStock(ctx, id, &RemoveStockRequest{WarehouseName: "WH1", Quantity: 8})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	record, err := store.LoadStockRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, record.TotalAvailable)
	assert.Equal(t, 0, inventory.locks.size())
}

// racingStore lets another writer commit between the service's load and
// its save, the way a second process would.
type racingStore struct {
	*repository.MemoryStore
	races int
}

func (s *racingStore) SaveStockRecord(ctx context.Context, record *models.StockRecord) error {
	if s.races > 0 {
		s.races--
		other, err := s.MemoryStore.LoadStockRecord(ctx, record.ID)
		if err != nil {
			return err
		}
		other.ReorderPoint++
		other.Recalculate()
		if err := s.MemoryStore.SaveStockRecord(ctx, other); err != nil {
			return err
		}
	}
	return s.MemoryStore.SaveStockRecord(ctx, record)
}

func TestLostRaceIsRetried(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryStore()
	store := &racingStore{MemoryStore: mem}
	products := NewProductService(store, testInventoryConfig)
	inventory := NewInventoryService(store, testInventoryConfig)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID

	store.races = 2
	record, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, record.TotalStock)
	assert.Equal(t, 12, record.ReorderPoint)
	assertLedgerConsistent(t, record)

	store.races = testInventoryConfig.MaxSaveAttempts
	_, err = inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 5})
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, IsRetryable(err))

	stored, err := mem.LoadStockRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.TotalStock)
}

func TestCancelledContextIsStorageUnavailable(t *testing.T) {
	_, inventory, products := newInventoryFixture(t)
	id := createProduct(t, products, "PHONE-001", 1, 2).Inventory.ID

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := inventory.AddStock(ctx, id, &AddStockRequest{WarehouseName: "WH1", Quantity: 1})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.True(t, IsRetryable(err))
}

func TestListStockRecordsJoinsProduct(t *testing.T) {
	ctx := context.Background()
	store, inventory, products := newInventoryFixture(t)
	kept := createProduct(t, products, "PHONE-001", 1, 2)
	orphan := createProduct(t, products, "PHONE-002", 1, 2)
	_, err := inventory.AddStock(ctx, kept.Inventory.ID, &AddStockRequest{WarehouseName: "WH1", Quantity: 3})
	require.NoError(t, err)
	store.DeleteProductOnly(orphan.ID)

	views, total, err := inventory.ListStockRecords(ctx, StockListParams{Page: 1, Limit: 10, LowStock: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Product)
	assert.Equal(t, "PHONE-001", views[0].Product.SKU)

	view, err := inventory.GetStockRecord(ctx, orphan.Inventory.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Product)
}
