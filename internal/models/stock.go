// internal/models/stock.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WarehouseAllocation is the stock of one product held at one named warehouse.
type WarehouseAllocation struct {
	WarehouseName string `json:"warehouse_name"`
	Location      string `json:"location"`
	Quantity      int    `json:"quantity"`
	Reserved      int    `json:"reserved"`
	Available     int    `json:"available"`
}

type StockAlerts struct {
	LowStock   bool `json:"low_stock" gorm:"default:false;index"`
	OutOfStock bool `json:"out_of_stock" gorm:"default:false;index"`
	Overstock  bool `json:"overstock" gorm:"default:false"`
}

// StockRecord is the per-product inventory ledger entry. Warehouses is the
// source of truth; totals and alerts are recomputed from it by Recalculate.
type StockRecord struct {
	BaseModel
	ProductID      uuid.UUID             `json:"product_id" gorm:"type:uuid;not null;uniqueIndex"`
	SKU            string                `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Warehouses     []WarehouseAllocation `json:"warehouses" gorm:"type:jsonb;serializer:json"`
	TotalStock     int                   `json:"total_stock" gorm:"not null;default:0"`
	TotalAvailable int                   `json:"total_available" gorm:"not null;default:0;index"`
	ReorderPoint   int                   `json:"reorder_point" gorm:"not null;default:10"`
	MaxStock       int                   `json:"max_stock" gorm:"not null;default:1000"`
	LastRestock    *time.Time            `json:"last_restock"`
	StockAlerts    StockAlerts           `json:"stock_alerts" gorm:"embedded;embeddedPrefix:alert_"`
	Version        int                   `json:"version" gorm:"not null;default:1"`
}

// StockMovement is the audit entry appended after every committed mutation.
type StockMovement struct {
	BaseModel
	StockRecordID   uuid.UUID    `json:"stock_record_id" gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID    `json:"product_id" gorm:"type:uuid;not null;index"`
	MovementType    MovementType `json:"movement_type" gorm:"type:varchar(20);not null;index"`
	WarehouseName   string       `json:"warehouse_name" gorm:"size:100"`
	Quantity        int          `json:"quantity"`
	Reason          string       `json:"reason,omitempty" gorm:"type:text"`
	StockBefore     int          `json:"stock_before"`
	StockAfter      int          `json:"stock_after"`
	AvailableBefore int          `json:"available_before"`
	AvailableAfter  int          `json:"available_after"`
}

// DeriveAlerts computes the alert flags from totals and thresholds.
func DeriveAlerts(totalAvailable, totalStock, reorderPoint, maxStock int) StockAlerts {
	return StockAlerts{
		OutOfStock: totalAvailable == 0,
		LowStock:   totalAvailable > 0 && totalAvailable <= reorderPoint,
		Overstock:  totalStock > maxStock,
	}
}

// NewStockRecord returns the empty record paired with a freshly created product.
func NewStockRecord(product *Product, reorderPoint, maxStock int) *StockRecord {
	r := &StockRecord{
		ProductID:    product.ID,
		SKU:          product.SKU,
		Warehouses:   []WarehouseAllocation{},
		ReorderPoint: reorderPoint,
		MaxStock:     maxStock,
		Version:      1,
	}
	r.ID = uuid.New()
	r.Recalculate()
	return r
}

// Warehouse returns the index of the named allocation, or -1.
func (r *StockRecord) Warehouse(name string) int {
	for i := range r.Warehouses {
		if r.Warehouses[i].WarehouseName == name {
			return i
		}
	}
	return -1
}

// Recalculate rederives available per warehouse, both totals and the alert flags.
func (r *StockRecord) Recalculate() {
	r.TotalStock, r.TotalAvailable = 0, 0
	for i := range r.Warehouses {
		w := &r.Warehouses[i]
		w.Available = w.Quantity - w.Reserved
		r.TotalStock += w.Quantity
		r.TotalAvailable += w.Available
	}
	r.StockAlerts = DeriveAlerts(r.TotalAvailable, r.TotalStock, r.ReorderPoint, r.MaxStock)
}

// Validate reports the first violated ledger invariant.
func (r *StockRecord) Validate() error {
	if r.ReorderPoint < 0 || r.MaxStock < 0 {
		return fmt.Errorf("thresholds must be non-negative")
	}

	seen := make(map[string]struct{}, len(r.Warehouses))
	stock, available := 0, 0
	for _, w := range r.Warehouses {
		if _, dup := seen[w.WarehouseName]; dup {
			return fmt.Errorf("duplicate warehouse %q", w.WarehouseName)
		}
		seen[w.WarehouseName] = struct{}{}

		if w.Quantity < 0 || w.Reserved < 0 {
			return fmt.Errorf("warehouse %q has negative quantity or reserved", w.WarehouseName)
		}
		if w.Available != w.Quantity-w.Reserved || w.Available < 0 {
			return fmt.Errorf("warehouse %q available %d does not match quantity %d minus reserved %d",
				w.WarehouseName, w.Available, w.Quantity, w.Reserved)
		}
		stock += w.Quantity
		available += w.Available
	}

	if stock != r.TotalStock || available != r.TotalAvailable {
		return fmt.Errorf("totals %d/%d do not match warehouse sums %d/%d",
			r.TotalStock, r.TotalAvailable, stock, available)
	}
	if r.StockAlerts != DeriveAlerts(r.TotalAvailable, r.TotalStock, r.ReorderPoint, r.MaxStock) {
		return fmt.Errorf("stock alerts are stale")
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r *StockRecord) Clone() *StockRecord {
	c := *r
	c.Warehouses = append(make([]WarehouseAllocation, 0, len(r.Warehouses)), r.Warehouses...)
	if r.LastRestock != nil {
		t := *r.LastRestock
		c.LastRestock = &t
	}
	return &c
}
