package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/inventory-backend/internal/models"
)

func TestCreateProductPairsStockRecord(t *testing.T) {
	ctx := context.Background()
	store, _, products := newInventoryFixture(t)

	created, err := products.CreateProduct(ctx, &CreateProductRequest{
		SKU:      " phone-001 ",
		Name:     "Samsung Galaxy S21",
		Category: CategoryInput{Main: "Electronics", Sub: "Smartphones"},
		Pricing:  PricingInput{Cost: 450, Retail: 699.99, Wholesale: 550},
		Tags:     []string{"android", "5g"},
	})
	require.NoError(t, err)

	assert.Equal(t, "PHONE-001", created.SKU)
	assert.Equal(t, "Electronics/Smartphones", created.Category.Path)
	assert.Equal(t, models.DefaultCurrency, created.Pricing.Currency)
	assert.Equal(t, models.ProductStatusActive, created.Status)

	record, err := store.LoadStockRecordByProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "PHONE-001", record.SKU)
	assert.Empty(t, record.Warehouses)
	assert.Equal(t, 10, record.ReorderPoint)
	assert.Equal(t, 1000, record.MaxStock)
	assert.True(t, record.StockAlerts.OutOfStock)
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	_, _, products := newInventoryFixture(t)
	createProduct(t, products, "PHONE-001", 1, 2)

	cases := map[string]*CreateProductRequest{
		"bad sku":       {SKU: "no spaces", Name: "x", Category: CategoryInput{Main: "A", Sub: "B"}},
		"missing name":  {SKU: "OK-1", Category: CategoryInput{Main: "A", Sub: "B"}},
		"missing sub":   {SKU: "OK-1", Name: "x", Category: CategoryInput{Main: "A"}},
		"negative cost": {SKU: "OK-1", Name: "x", Category: CategoryInput{Main: "A", Sub: "B"}, Pricing: PricingInput{Cost: -1}},
		"bad status":    {SKU: "OK-1", Name: "x", Category: CategoryInput{Main: "A", Sub: "B"}, Status: "archived"},
		"negative max":  {SKU: "OK-1", Name: "x", Category: CategoryInput{Main: "A", Sub: "B"}, MaxStock: intPtr(-5)},
		"duplicate sku": {SKU: "phone-001", Name: "x", Category: CategoryInput{Main: "A", Sub: "B"}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := products.CreateProduct(ctx, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateProductCustomThresholds(t *testing.T) {
	_, _, products := newInventoryFixture(t)

	created, err := products.CreateProduct(context.Background(), &CreateProductRequest{
		SKU:          "LAPTOP-001",
		Name:         "MacBook Air M2",
		Category:     CategoryInput{Main: "Electronics", Sub: "Laptops"},
		Pricing:      PricingInput{Cost: 900, Retail: 1199.99},
		ReorderPoint: intPtr(0),
		MaxStock:     intPtr(50),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created.Inventory.ReorderPoint)
	assert.Equal(t, 50, created.Inventory.MaxStock)
}

func TestUpdateProductSyncsSKU(t *testing.T) {
	ctx := context.Background()
	store, inventory, products := newInventoryFixture(t)
	created := createProduct(t, products, "PHONE-001", 1, 2)
	_, err := inventory.AddStock(ctx, created.Inventory.ID, &AddStockRequest{WarehouseName: "WH1", Quantity: 4})
	require.NoError(t, err)

	sku := "phone-100"
	name := "Renamed"
	updated, err := products.UpdateProduct(ctx, created.ID, &UpdateProductRequest{SKU: &sku, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "PHONE-100", updated.SKU)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.Inventory)
	assert.Equal(t, "PHONE-100", updated.Inventory.SKU)
	assert.Equal(t, 4, updated.Inventory.TotalStock)

	record, err := store.LoadStockRecord(ctx, created.Inventory.ID)
	require.NoError(t, err)
	assert.Equal(t, "PHONE-100", record.SKU)

	_, err = inventory.AddStock(ctx, created.Inventory.ID, &AddStockRequest{WarehouseName: "WH1", Quantity: 1})
	assert.NoError(t, err)
}

func TestUpdateProductErrors(t *testing.T) {
	ctx := context.Background()
	_, _, products := newInventoryFixture(t)
	createProduct(t, products, "PHONE-001", 1, 2)
	other := createProduct(t, products, "PHONE-002", 1, 2)

	sku := "PHONE-001"
	_, err := products.UpdateProduct(ctx, other.ID, &UpdateProductRequest{SKU: &sku})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = products.UpdateProduct(ctx, uuid.New(), &UpdateProductRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProductCascades(t *testing.T) {
	ctx := context.Background()
	store, inventory, products := newInventoryFixture(t)
	created := createProduct(t, products, "PHONE-001", 1, 2)
	_, err := inventory.AddStock(ctx, created.Inventory.ID, &AddStockRequest{WarehouseName: "WH1", Quantity: 4})
	require.NoError(t, err)

	require.NoError(t, products.DeleteProduct(ctx, created.ID))

	_, err = store.LoadStockRecord(ctx, created.Inventory.ID)
	assert.Error(t, err)
	_, err = products.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, products.DeleteProduct(ctx, created.ID), ErrNotFound)
}

func TestListProductsFilters(t *testing.T) {
	ctx := context.Background()
	_, _, products := newInventoryFixture(t)
	createProduct(t, products, "PHONE-001", 1, 2)
	createProduct(t, products, "PHONE-002", 1, 2)

	list, total, err := products.ListProducts(ctx, ProductListParams{Page: 1, Limit: 1, Category: "Electronics"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 1)

	_, total, err = products.ListProducts(ctx, ProductListParams{Page: 1, Limit: 10, Search: "phone-002"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, _, err = products.ListProducts(ctx, ProductListParams{Page: 1, Limit: 10, Status: "gone"})
	assert.ErrorIs(t, err, ErrValidation)
}
