// internal/repository/store.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/javajoker/inventory-backend/internal/models"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("record was modified concurrently")
	ErrUnavailable = errors.New("storage unavailable")
	ErrDuplicate   = errors.New("duplicate key")
)

// Store is the persistence gateway for products, stock records and movements.
type Store interface {
	CreateProductWithStock(ctx context.Context, product *models.Product, record *models.StockRecord) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProductCascade(ctx context.Context, productID uuid.UUID) error
	LoadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)

	LoadStockRecord(ctx context.Context, id uuid.UUID) (*models.StockRecord, error)
	LoadStockRecordByProduct(ctx context.Context, productID uuid.UUID) (*models.StockRecord, error)
	ListStockRecords(ctx context.Context, filter StockFilter) ([]StockRow, int64, error)
	// SaveStockRecord writes the whole record if its version still matches
	// the stored one, then advances record.Version.
	SaveStockRecord(ctx context.Context, record *models.StockRecord) error
	Snapshot(ctx context.Context) ([]StockRow, error)

	AppendMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, recordID uuid.UUID, limit int) ([]models.StockMovement, error)

	Ping(ctx context.Context) error
}

// StockRow pairs a stock record with its product. Product is nil when the
// two collections have diverged.
type StockRow struct {
	Record  *models.StockRecord
	Product *models.Product
}

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

type ProductFilter struct {
	Page
	Category string
	Status   models.ProductStatus
	Search   string
}

type StockFilter struct {
	Page
	LowStock   bool
	OutOfStock bool
}

func paginate[T any](items []T, p Page) []T {
	if p.Limit <= 0 {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
