// internal/repository/memory.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/inventory-backend/internal/models"
)

// MemoryStore keeps everything in process memory. Values are copied on the
// way in and out so callers never share state with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	products  map[uuid.UUID]*models.Product
	records   map[uuid.UUID]*models.StockRecord
	byProduct map[uuid.UUID]uuid.UUID
	movements []models.StockMovement
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:  make(map[uuid.UUID]*models.Product),
		records:   make(map[uuid.UUID]*models.StockRecord),
		byProduct: make(map[uuid.UUID]uuid.UUID),
		now:       time.Now,
	}
}

func (s *MemoryStore) CreateProductWithStock(ctx context.Context, product *models.Product, record *models.StockRecord) error {
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product.Normalize()
	for _, p := range s.products {
		if p.SKU == product.SKU {
			return ErrDuplicate
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, exists := s.products[product.ID]; exists {
		return ErrDuplicate
	}

	now := s.now()
	product.CreatedAt, product.UpdatedAt = now, now
	record.CreatedAt, record.UpdatedAt = now, now
	record.ProductID = product.ID
	record.SKU = product.SKU
	if record.Version == 0 {
		record.Version = 1
	}

	s.products[product.ID] = product.Clone()
	s.records[record.ID] = record.Clone()
	s.byProduct[product.ID] = record.ID
	return nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	product.Normalize()
	for id, p := range s.products {
		if id != product.ID && p.SKU == product.SKU {
			return ErrDuplicate
		}
	}

	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.now()
	s.products[product.ID] = product.Clone()

	if recordID, ok := s.byProduct[product.ID]; ok {
		if r := s.records[recordID]; r.SKU != product.SKU {
			r.SKU = product.SKU
			r.UpdatedAt = product.UpdatedAt
			r.Version++
		}
	}
	return nil
}

func (s *MemoryStore) DeleteProductCascade(ctx context.Context, productID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return ErrNotFound
	}
	if recordID, ok := s.byProduct[productID]; ok {
		delete(s.records, recordID)
		delete(s.byProduct, productID)
		kept := s.movements[:0]
		for _, m := range s.movements {
			if m.StockRecordID != recordID {
				kept = append(kept, m)
			}
		}
		s.movements = kept
	}
	delete(s.products, productID)
	return nil
}

// DeleteProductOnly removes a product and leaves its stock record behind,
// reproducing the orphaned-record state that independent collections can reach.
func (s *MemoryStore) DeleteProductOnly(productID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, productID)
}

func (s *MemoryStore) LoadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, ErrUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var out []models.Product
	for _, p := range s.products {
		if filter.Category != "" && p.Category.Main != filter.Category {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		out = append(out, *p.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SKU < out[j].SKU
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return paginate(out, filter.Page), int64(len(out)), nil
}

func (s *MemoryStore) LoadStockRecord(ctx context.Context, id uuid.UUID) (*models.StockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (s *MemoryStore) LoadStockRecordByProduct(ctx context.Context, productID uuid.UUID) (*models.StockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recordID, ok := s.byProduct[productID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.records[recordID].Clone(), nil
}

func (s *MemoryStore) ListStockRecords(ctx context.Context, filter StockFilter) ([]StockRow, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, ErrUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []StockRow
	for _, r := range s.records {
		if filter.LowStock && !r.StockAlerts.LowStock {
			continue
		}
		if filter.OutOfStock && !r.StockAlerts.OutOfStock {
			continue
		}
		rows = append(rows, s.rowLocked(r))
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Record, rows[j].Record
		if a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.SKU < b.SKU
		}
		return a.UpdatedAt.After(b.UpdatedAt)
	})

	return paginate(rows, filter.Page), int64(len(rows)), nil
}

func (s *MemoryStore) SaveStockRecord(ctx context.Context, record *models.StockRecord) error {
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[record.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != record.Version {
		return ErrConflict
	}

	record.Version++
	record.UpdatedAt = s.now()
	record.CreatedAt = current.CreatedAt
	s.records[record.ID] = record.Clone()
	return nil
}

func (s *MemoryStore) Snapshot(ctx context.Context) ([]StockRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]StockRow, 0, len(s.records))
	for _, r := range s.records {
		rows = append(rows, s.rowLocked(r))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Record.SKU < rows[j].Record.SKU })
	return rows, nil
}

func (s *MemoryStore) AppendMovement(ctx context.Context, movement *models.StockMovement) error {
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	movement.CreatedAt = s.now()
	movement.UpdatedAt = movement.CreatedAt
	s.movements = append(s.movements, *movement)
	return nil
}

func (s *MemoryStore) ListMovements(ctx context.Context, recordID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.StockMovement{}
	for i := len(s.movements) - 1; i >= 0; i-- {
		if s.movements[i].StockRecordID != recordID {
			continue
		}
		out = append(out, s.movements[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[uuid.UUID]*models.Product)
	s.records = make(map[uuid.UUID]*models.StockRecord)
	s.byProduct = make(map[uuid.UUID]uuid.UUID)
	s.movements = nil
	return nil
}

func (s *MemoryStore) rowLocked(r *models.StockRecord) StockRow {
	row := StockRow{Record: r.Clone()}
	if p, ok := s.products[r.ProductID]; ok {
		row.Product = p.Clone()
	}
	return row
}
