// internal/repository/gorm.go
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/javajoker/inventory-backend/internal/models"
)

const uniqueViolation = "23505"

// GormStore persists through gorm. Each call runs under its own timeout.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormStore(db *gorm.DB, timeout time.Duration) *GormStore {
	return &GormStore{db: db, timeout: timeout}
}

func (s *GormStore) withTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func (s *GormStore) CreateProductWithStock(ctx context.Context, product *models.Product, record *models.StockRecord) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		record.ProductID = product.ID
		record.SKU = product.SKU
		return tx.Create(record).Error
	})
	return classify(err)
}

func (s *GormStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(product).Select("*").Omit("id", "created_at").Updates(product)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.StockRecord{}).
			Where("product_id = ? AND sku <> ?", product.ID, product.SKU).
			Updates(map[string]interface{}{
				"sku":     product.SKU,
				"version": gorm.Expr("version + 1"),
			}).Error
	})
	return classify(err)
}

func (s *GormStore) DeleteProductCascade(ctx context.Context, productID uuid.UUID) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.StockMovement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&models.StockRecord{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", productID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return classify(err)
}

func (s *GormStore) LoadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &product, nil
}

func (s *GormStore) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	query := db.Model(&models.Product{})
	if filter.Category != "" {
		query = query.Where("category_main = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?", term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	var products []models.Product
	if err := applyPage(query, filter.Page).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, 0, classify(err)
	}
	return products, total, nil
}

func (s *GormStore) LoadStockRecord(ctx context.Context, id uuid.UUID) (*models.StockRecord, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var record models.StockRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &record, nil
}

func (s *GormStore) LoadStockRecordByProduct(ctx context.Context, productID uuid.UUID) (*models.StockRecord, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var record models.StockRecord
	if err := db.First(&record, "product_id = ?", productID).Error; err != nil {
		return nil, classify(err)
	}
	return &record, nil
}

func (s *GormStore) ListStockRecords(ctx context.Context, filter StockFilter) ([]StockRow, int64, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	query := db.Model(&models.StockRecord{})
	if filter.LowStock {
		query = query.Where("alert_low_stock = ?", true)
	}
	if filter.OutOfStock {
		query = query.Where("alert_out_of_stock = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	var records []models.StockRecord
	if err := applyPage(query, filter.Page).Order("updated_at DESC").Find(&records).Error; err != nil {
		return nil, 0, classify(err)
	}

	rows, err := s.join(db, records)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *GormStore) SaveStockRecord(ctx context.Context, record *models.StockRecord) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	expected := record.Version
	next := record.Clone()
	next.Version = expected + 1

	res := db.Model(next).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at", "product_id").
		Updates(next)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.StockRecord{}).Where("id = ?", record.ID).Count(&count).Error; err != nil {
			return classify(err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}

	record.Version = next.Version
	record.UpdatedAt = next.UpdatedAt
	return nil
}

func (s *GormStore) Snapshot(ctx context.Context) ([]StockRow, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var records []models.StockRecord
	if err := db.Order("sku").Find(&records).Error; err != nil {
		return nil, classify(err)
	}
	return s.join(db, records)
}

func (s *GormStore) AppendMovement(ctx context.Context, movement *models.StockMovement) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	return classify(db.Create(movement).Error)
}

func (s *GormStore) ListMovements(ctx context.Context, recordID uuid.UUID, limit int) ([]models.StockMovement, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	query := db.Where("stock_record_id = ?", recordID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	movements := []models.StockMovement{}
	if err := query.Find(&movements).Error; err != nil {
		return nil, classify(err)
	}
	return movements, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		return classify(err)
	}
	if err := sqlDB.PingContext(db.Statement.Context); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *GormStore) Reset(ctx context.Context) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.StockMovement{}, &models.StockRecord{}, &models.Product{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return classify(err)
}

func (s *GormStore) join(db *gorm.DB, records []models.StockRecord) ([]StockRow, error) {
	rows := make([]StockRow, 0, len(records))
	if len(records) == 0 {
		return rows, nil
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ProductID)
	}

	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, classify(err)
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for i := range records {
		rows = append(rows, StockRow{Record: &records[i], Product: byID[records[i].ProductID]})
	}
	return rows, nil
}

func applyPage(db *gorm.DB, p Page) *gorm.DB {
	if p.Limit <= 0 {
		return db
	}
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// classify maps driver and gorm failures onto the repository error set.
func classify(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrUnavailable), errors.Is(err, ErrDuplicate):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		pgconn.Timeout(err) ||
		errors.As(err, &connectErr) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return err
}
