// internal/services/ledger.go
package services

import (
	"time"

	"github.com/javajoker/inventory-backend/internal/models"
)

const defaultRemovalReason = "Manual adjustment"

// movementDraft describes one applied transition; totals are filled in
// once the record has been finalized and saved.
type movementDraft struct {
	Type      models.MovementType
	Warehouse string
	Quantity  int
	Reason    string
}

// transition mutates a loaded record in place. It must leave the record
// untouched when it returns an error.
type transition func(record *models.StockRecord) ([]movementDraft, error)

func addStock(req AddStockRequest, now time.Time) transition {
	return func(r *models.StockRecord) ([]movementDraft, error) {
		if i := r.Warehouse(req.WarehouseName); i >= 0 {
			w := &r.Warehouses[i]
			w.Quantity += req.Quantity
			w.Available += req.Quantity
		} else {
			r.Warehouses = append(r.Warehouses, models.WarehouseAllocation{
				WarehouseName: req.WarehouseName,
				Location:      req.Location,
				Quantity:      req.Quantity,
				Reserved:      0,
				Available:     req.Quantity,
			})
		}
		r.LastRestock = &now

		return []movementDraft{{Type: models.MovementTypeAdd, Warehouse: req.WarehouseName, Quantity: req.Quantity}}, nil
	}
}

func removeStock(req RemoveStockRequest) transition {
	return func(r *models.StockRecord) ([]movementDraft, error) {
		i := r.Warehouse(req.WarehouseName)
		if i < 0 {
			return nil, insufficientStockError("insufficient stock available: warehouse %q holds no stock", req.WarehouseName)
		}
		w := &r.Warehouses[i]
		if w.Available < req.Quantity {
			return nil, insufficientStockError("insufficient stock available: %d requested, %d available in %q",
				req.Quantity, w.Available, req.WarehouseName)
		}

		w.Quantity -= req.Quantity
		w.Available -= req.Quantity

		return []movementDraft{{Type: models.MovementTypeRemove, Warehouse: req.WarehouseName, Quantity: -req.Quantity, Reason: req.Reason}}, nil
	}
}

func removeWarehouse(name string) transition {
	return func(r *models.StockRecord) ([]movementDraft, error) {
		i := r.Warehouse(name)
		if i < 0 {
			return nil, notFoundError("warehouse %q not found", name)
		}
		removed := r.Warehouses[i]
		r.Warehouses = append(r.Warehouses[:i], r.Warehouses[i+1:]...)

		return []movementDraft{{Type: models.MovementTypeRemoveWarehouse, Warehouse: name, Quantity: -removed.Quantity}}, nil
	}
}

// updateSettings checks every warehouse update before applying any of them.
func updateSettings(req UpdateSettingsRequest, now time.Time) transition {
	return func(r *models.StockRecord) ([]movementDraft, error) {
		for _, u := range req.WarehouseUpdates {
			i := r.Warehouse(u.WarehouseName)
			if i < 0 {
				return nil, notFoundError("warehouse %q not found", u.WarehouseName)
			}
			if u.Quantity != nil && *u.Quantity < r.Warehouses[i].Reserved {
				return nil, validationError("quantity %d for warehouse %q is below its %d reserved units",
					*u.Quantity, u.WarehouseName, r.Warehouses[i].Reserved)
			}
		}

		if req.ReorderPoint != nil {
			r.ReorderPoint = *req.ReorderPoint
		}
		if req.MaxStock != nil {
			r.MaxStock = *req.MaxStock
		}

		var drafts []movementDraft
		for _, u := range req.WarehouseUpdates {
			w := &r.Warehouses[r.Warehouse(u.WarehouseName)]
			if u.Quantity != nil {
				diff := *u.Quantity - w.Quantity
				w.Quantity = *u.Quantity
				w.Available += diff
				if diff > 0 {
					r.LastRestock = &now
				}
				if diff != 0 {
					drafts = append(drafts, movementDraft{Type: models.MovementTypeAdjust, Warehouse: w.WarehouseName, Quantity: diff, Reason: "quantity reset"})
				}
			}
			if u.Location != nil {
				w.Location = *u.Location
			}
		}

		if len(drafts) == 0 {
			drafts = append(drafts, movementDraft{Type: models.MovementTypeAdjust, Reason: "settings updated"})
		}
		return drafts, nil
	}
}

func reserve(req ReservationRequest) transition {
	return func(r *models.StockRecord) ([]movementDraft, error) {
		i := r.Warehouse(req.WarehouseName)
		if i < 0 {
			return nil, notFoundError("warehouse %q not found", req.WarehouseName)
		}
		w := &r.Warehouses[i]
		if w.Available < req.Quantity {
			return nil, insufficientStockError("insufficient stock available: %d requested, %d available in %q",
				req.Quantity, w.Available, req.WarehouseName)
		}

		w.Reserved += req.Quantity
		w.Available -= req.Quantity

		return []movementDraft{{Type: models.MovementTypeReserve, Warehouse: req.WarehouseName, Quantity: req.Quantity}}, nil
	}
}

func release(req ReservationRequest) transition {
	return func(r *models.StockRecord) ([]movementDraft, error) {
		i := r.Warehouse(req.WarehouseName)
		if i < 0 {
			return nil, notFoundError("warehouse %q not found", req.WarehouseName)
		}
		w := &r.Warehouses[i]
		if w.Reserved < req.Quantity {
			return nil, insufficientStockError("insufficient reserved stock: %d requested, %d reserved in %q",
				req.Quantity, w.Reserved, req.WarehouseName)
		}

		w.Reserved -= req.Quantity
		w.Available += req.Quantity

		return []movementDraft{{Type: models.MovementTypeRelease, Warehouse: req.WarehouseName, Quantity: req.Quantity}}, nil
	}
}

// fulfill ships reserved units: they leave both reserved and quantity.
func fulfill(req ReservationRequest) transition {
	return func(r *models.StockRecord) ([]movementDraft, error) {
		i := r.Warehouse(req.WarehouseName)
		if i < 0 {
			return nil, notFoundError("warehouse %q not found", req.WarehouseName)
		}
		w := &r.Warehouses[i]
		if w.Reserved < req.Quantity {
			return nil, insufficientStockError("insufficient reserved stock: %d requested, %d reserved in %q",
				req.Quantity, w.Reserved, req.WarehouseName)
		}

		w.Reserved -= req.Quantity
		w.Quantity -= req.Quantity

		return []movementDraft{{Type: models.MovementTypeFulfill, Warehouse: req.WarehouseName, Quantity: -req.Quantity}}, nil
	}
}
