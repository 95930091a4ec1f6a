// internal/database/seed.go
package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/inventory-backend/internal/models"
	"github.com/javajoker/inventory-backend/internal/services"
)

type seedStock struct {
	Warehouse string
	Location  string
	Quantity  int
	Reserved  int
}

type seedProduct struct {
	Request services.CreateProductRequest
	Stock   []seedStock
}

func intPtr(v int) *int { return &v }

var sampleCatalog = []seedProduct{
	{
		Request: services.CreateProductRequest{
			SKU:         "PHONE-001",
			Name:        "Samsung Galaxy S21",
			Description: "Smartphone with a 6.2 inch AMOLED display",
			Category:    services.CategoryInput{Main: "Electronics", Sub: "Mobile Phones"},
			Pricing:     services.PricingInput{Cost: 450, Retail: 699.99, Wholesale: 550, Currency: "USD"},
			Specifications: models.Specifications{
				Brand: "Samsung", Model: "Galaxy S21", Color: "Black", Storage: "128GB",
				Technical: models.JSONB{"screen": "6.2 inches AMOLED", "camera": "64MP Triple Camera", "battery": "4000mAh"},
			},
			Tags:         []string{"smartphone", "android", "samsung"},
			ReorderPoint: intPtr(50),
			MaxStock:     intPtr(500),
		},
		Stock: []seedStock{{Warehouse: "Main Warehouse", Location: "A1-B2-C3", Quantity: 150, Reserved: 25}},
	},
	{
		Request: services.CreateProductRequest{
			SKU:         "LAPTOP-001",
			Name:        "MacBook Air M2",
			Description: "Ultra thin laptop with the M2 chip",
			Category:    services.CategoryInput{Main: "Electronics", Sub: "Laptops"},
			Pricing:     services.PricingInput{Cost: 900, Retail: 1199.99, Wholesale: 1000, Currency: "USD"},
			Specifications: models.Specifications{
				Brand: "Apple", Model: "MacBook Air", Color: "Silver", Storage: "256GB SSD",
				Technical: models.JSONB{"screen": "13.6 inches Retina", "processor": "Apple M2", "ram": "8GB"},
			},
			Tags:         []string{"laptop", "apple", "macbook"},
			ReorderPoint: intPtr(20),
			MaxStock:     intPtr(200),
		},
		Stock: []seedStock{{Warehouse: "Main Warehouse", Location: "B1-A2-D1", Quantity: 75, Reserved: 10}},
	},
	{
		Request: services.CreateProductRequest{
			SKU:         "TABLET-001",
			Name:        "iPad Air",
			Description: "10.9 inch tablet",
			Category:    services.CategoryInput{Main: "Electronics", Sub: "Tablets"},
			Pricing:     services.PricingInput{Cost: 420, Retail: 599, Wholesale: 500},
			Specifications: models.Specifications{
				Brand: "Apple", Model: "iPad Air", Color: "Blue", Storage: "64GB",
			},
			Tags: []string{"tablet", "apple"},
		},
		Stock: []seedStock{
			{Warehouse: "Main Warehouse", Location: "C2-A1-B4", Quantity: 40, Reserved: 5},
			{Warehouse: "East Warehouse", Location: "E1-01", Quantity: 8},
		},
	},
	{
		Request: services.CreateProductRequest{
			SKU:         "AUDIO-001",
			Name:        "Sony WH-1000XM5",
			Description: "Noise cancelling wireless headphones",
			Category:    services.CategoryInput{Main: "Electronics", Sub: "Audio"},
			Pricing:     services.PricingInput{Cost: 220, Retail: 399.99, Wholesale: 300},
			Specifications: models.Specifications{
				Brand: "Sony", Model: "WH-1000XM5", Color: "Black",
			},
			Tags:     []string{"headphones", "wireless", "sony"},
			MaxStock: intPtr(100),
		},
		Stock: []seedStock{
			{Warehouse: "East Warehouse", Location: "E2-07", Quantity: 120, Reserved: 30},
		},
	},
	{
		Request: services.CreateProductRequest{
			SKU:         "DESK-001",
			Name:        "Standing Desk",
			Description: "Electric height adjustable desk",
			Category:    services.CategoryInput{Main: "Furniture", Sub: "Office"},
			Pricing:     services.PricingInput{Cost: 180, Retail: 349, Wholesale: 250},
			Tags:        []string{"office", "desk"},
		},
	},
}

// SeedCatalog creates the sample products and books their stock through the
// services so every ledger invariant holds. It returns the number of products created.
func SeedCatalog(ctx context.Context, products *services.ProductService, inventory *services.InventoryService) (int, error) {
	for i, item := range sampleCatalog {
		req := item.Request
		created, err := products.CreateProduct(ctx, &req)
		if err != nil {
			return i, fmt.Errorf("failed to seed product %s: %w", req.SKU, err)
		}

		for _, s := range item.Stock {
			if _, err := inventory.AddStock(ctx, created.Inventory.ID, &services.AddStockRequest{
				WarehouseName: s.Warehouse,
				Location:      s.Location,
				Quantity:      s.Quantity,
			}); err != nil {
				return i, fmt.Errorf("failed to seed stock for %s: %w", req.SKU, err)
			}
			if s.Reserved > 0 {
				if _, err := inventory.Reserve(ctx, created.Inventory.ID, &services.ReservationRequest{
					WarehouseName: s.Warehouse,
					Quantity:      s.Reserved,
				}); err != nil {
					return i, fmt.Errorf("failed to seed reservation for %s: %w", req.SKU, err)
				}
			}
		}

		logrus.WithFields(logrus.Fields{
			"sku":        created.SKU,
			"warehouses": len(item.Stock),
		}).Info("Seeded product")
	}

	return len(sampleCatalog), nil
}
