// internal/services/inventory_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/inventory-backend/internal/config"
	"github.com/javajoker/inventory-backend/internal/models"
	"github.com/javajoker/inventory-backend/internal/repository"
	"github.com/javajoker/inventory-backend/pkg/retry"
)

// InventoryService applies stock mutations to one record at a time. Each
// mutation is load, transition, finalize and save under the record's lock;
// a version conflict from another process restarts the cycle.
type InventoryService struct {
	store repository.Store
	locks *recordLocker
	retry retry.Config
	now   func() time.Time
}

type AddStockRequest struct {
	WarehouseName string `json:"warehouse_name" validate:"required,max=100"`
	Location      string `json:"location,omitempty" validate:"max=255"`
	Quantity      int    `json:"quantity" validate:"gt=0"`
}

type RemoveStockRequest struct {
	WarehouseName string `json:"warehouse_name" validate:"required,max=100"`
	Quantity      int    `json:"quantity" validate:"gt=0"`
	Reason        string `json:"reason,omitempty" validate:"max=500"`
}

type ReservationRequest struct {
	WarehouseName string `json:"warehouse_name" validate:"required,max=100"`
	Quantity      int    `json:"quantity" validate:"gt=0"`
}

type WarehouseUpdate struct {
	WarehouseName string  `json:"warehouse_name" validate:"required"`
	Quantity      *int    `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Location      *string `json:"location,omitempty" validate:"omitempty,max=255"`
}

type UpdateSettingsRequest struct {
	ReorderPoint     *int              `json:"reorder_point,omitempty" validate:"omitempty,gte=0"`
	MaxStock         *int              `json:"max_stock,omitempty" validate:"omitempty,gte=0"`
	WarehouseUpdates []WarehouseUpdate `json:"warehouse_updates,omitempty" validate:"dive"`
}

type StockListParams struct {
	Page       int
	Limit      int
	LowStock   bool
	OutOfStock bool
}

// StockRecordView is a stock record joined with a summary of its product.
type StockRecordView struct {
	*models.StockRecord
	Product *ProductSummary `json:"product,omitempty"`
}

type ProductSummary struct {
	ID       uuid.UUID       `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Category models.Category `json:"category"`
	Pricing  models.Pricing  `json:"pricing"`
}

func NewInventoryService(store repository.Store, cfg config.InventoryConfig) *InventoryService {
	return &InventoryService{
		store: store,
		locks: newRecordLocker(),
		retry: retry.Config{
			MaxAttempts: cfg.MaxSaveAttempts,
			Backoff:     retry.ExponentialBackoff(cfg.RetryBackoff()),
			ShouldRetry: func(err error) bool { return errors.Is(err, ErrConflict) },
		},
		now: time.Now,
	}
}

func (s *InventoryService) AddStock(ctx context.Context, recordID uuid.UUID, req *AddStockRequest) (*models.StockRecord, error) {
	req.WarehouseName = strings.TrimSpace(req.WarehouseName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, recordID, "add_stock", addStock(*req, s.now()))
}

func (s *InventoryService) RemoveStock(ctx context.Context, recordID uuid.UUID, req *RemoveStockRequest) (*models.StockRecord, error) {
	req.WarehouseName = strings.TrimSpace(req.WarehouseName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Reason) == "" {
		req.Reason = defaultRemovalReason
	}
	return s.mutate(ctx, recordID, "remove_stock", removeStock(*req))
}

func (s *InventoryService) RemoveWarehouse(ctx context.Context, recordID uuid.UUID, warehouseName string) (*models.StockRecord, error) {
	warehouseName = strings.TrimSpace(warehouseName)
	if warehouseName == "" {
		return nil, validationError("warehouse name is required")
	}
	return s.mutate(ctx, recordID, "remove_warehouse", removeWarehouse(warehouseName))
}

func (s *InventoryService) UpdateSettings(ctx context.Context, recordID uuid.UUID, req *UpdateSettingsRequest) (*models.StockRecord, error) {
	for i := range req.WarehouseUpdates {
		req.WarehouseUpdates[i].WarehouseName = strings.TrimSpace(req.WarehouseUpdates[i].WarehouseName)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, recordID, "update_settings", updateSettings(*req, s.now()))
}

func (s *InventoryService) Reserve(ctx context.Context, recordID uuid.UUID, req *ReservationRequest) (*models.StockRecord, error) {
	req.WarehouseName = strings.TrimSpace(req.WarehouseName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, recordID, "reserve", reserve(*req))
}

func (s *InventoryService) Release(ctx context.Context, recordID uuid.UUID, req *ReservationRequest) (*models.StockRecord, error) {
	req.WarehouseName = strings.TrimSpace(req.WarehouseName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, recordID, "release", release(*req))
}

func (s *InventoryService) FulfillReservation(ctx context.Context, recordID uuid.UUID, req *ReservationRequest) (*models.StockRecord, error) {
	req.WarehouseName = strings.TrimSpace(req.WarehouseName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, recordID, "fulfill", fulfill(*req))
}

func (s *InventoryService) GetStockRecord(ctx context.Context, recordID uuid.UUID) (*StockRecordView, error) {
	record, err := s.store.LoadStockRecord(ctx, recordID)
	if err != nil {
		return nil, storeError(err, "inventory")
	}

	view := &StockRecordView{StockRecord: record}
	product, err := s.store.LoadProduct(ctx, record.ProductID)
	switch {
	case err == nil:
		view.Product = summarize(product)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeError(err, "product")
	}
	return view, nil
}

func (s *InventoryService) ListStockRecords(ctx context.Context, params StockListParams) ([]StockRecordView, int64, error) {
	rows, total, err := s.store.ListStockRecords(ctx, repository.StockFilter{
		Page:       repository.Page{Page: params.Page, Limit: params.Limit},
		LowStock:   params.LowStock,
		OutOfStock: params.OutOfStock,
	})
	if err != nil {
		return nil, 0, storeError(err, "inventory")
	}

	views := make([]StockRecordView, 0, len(rows))
	for _, row := range rows {
		view := StockRecordView{StockRecord: row.Record}
		if row.Product != nil {
			view.Product = summarize(row.Product)
		}
		views = append(views, view)
	}
	return views, total, nil
}

func (s *InventoryService) ListMovements(ctx context.Context, recordID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if limit < 0 {
		return nil, validationError("limit must be a positive integer")
	}
	if _, err := s.store.LoadStockRecord(ctx, recordID); err != nil {
		return nil, storeError(err, "inventory")
	}

	movements, err := s.store.ListMovements(ctx, recordID, limit)
	if err != nil {
		return nil, storeError(err, "inventory")
	}
	return movements, nil
}

func (s *InventoryService) mutate(ctx context.Context, recordID uuid.UUID, op string, apply transition) (*models.StockRecord, error) {
	unlock := s.locks.Lock(recordID)
	defer unlock()

	var (
		drafts  []movementDraft
		before  models.StockRecord
		attempt int
	)
	record, err := retry.DoWithResult(ctx, s.retry, func() (*models.StockRecord, error) {
		attempt++
		loaded, err := s.store.LoadStockRecord(ctx, recordID)
		if err != nil {
			return nil, storeError(err, "inventory")
		}
		before = *loaded

		next := loaded.Clone()
		drafts, err = apply(next)
		if err != nil {
			return nil, err
		}

		if err := s.finalize(ctx, next); err != nil {
			if errors.Is(err, ErrConflict) {
				logrus.WithFields(logrus.Fields{
					"record_id": recordID,
					"operation": op,
					"attempt":   attempt,
				}).Warn("Stock record changed underneath, retrying")
			}
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, storeError(err, "inventory")
	}

	s.recordMovements(ctx, &before, record, drafts)

	logrus.WithFields(logrus.Fields{
		"record_id":       record.ID,
		"sku":             record.SKU,
		"operation":       op,
		"total_stock":     record.TotalStock,
		"total_available": record.TotalAvailable,
		"alerts":          record.StockAlerts,
	}).Info("Stock record updated")

	return record, nil
}

// finalize rederives totals and alerts, verifies the ledger invariants and
// persists the whole record.
func (s *InventoryService) finalize(ctx context.Context, record *models.StockRecord) error {
	record.Recalculate()
	if err := record.Validate(); err != nil {
		return &ServiceError{Kind: KindInternal, Message: "stock record invariant violated", Err: err}
	}
	return storeError(s.store.SaveStockRecord(ctx, record), "inventory")
}

func (s *InventoryService) recordMovements(ctx context.Context, before, after *models.StockRecord, drafts []movementDraft) {
	for _, d := range drafts {
		movement := &models.StockMovement{
			StockRecordID:   after.ID,
			ProductID:       after.ProductID,
			MovementType:    d.Type,
			WarehouseName:   d.Warehouse,
			Quantity:        d.Quantity,
			Reason:          d.Reason,
			StockBefore:     before.TotalStock,
			StockAfter:      after.TotalStock,
			AvailableBefore: before.TotalAvailable,
			AvailableAfter:  after.TotalAvailable,
		}
		if err := s.store.AppendMovement(ctx, movement); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"record_id":     after.ID,
				"movement_type": d.Type,
				"warehouse":     d.Warehouse,
				"quantity":      d.Quantity,
				"reason":        d.Reason,
			}).Error("Failed to record stock movement")
		}
	}
}

func summarize(p *models.Product) *ProductSummary {
	return &ProductSummary{
		ID:       p.ID,
		SKU:      p.SKU,
		Name:     p.Name,
		Category: p.Category,
		Pricing:  p.Pricing,
	}
}
