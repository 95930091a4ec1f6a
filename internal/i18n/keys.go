// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyValidationInvalid  = "validation.invalid"
	KeyStorageUnavailable = "storage.unavailable"
	KeyRouteNotFound      = "route.not_found"

	// Products
	KeyProductCreated  = "product.created"
	KeyProductUpdated  = "product.updated"
	KeyProductDeleted  = "product.deleted"
	KeyProductNotFound = "product.not_found"

	// Inventory
	KeyInventoryNotFound      = "inventory.not_found"
	KeyInventoryUpdated       = "inventory.updated"
	KeyStockAdded             = "inventory.stock_added"
	KeyStockRemoved           = "inventory.stock_removed"
	KeyStockReserved          = "inventory.stock_reserved"
	KeyStockReleased          = "inventory.stock_released"
	KeyStockFulfilled         = "inventory.stock_fulfilled"
	KeyWarehouseRemoved       = "inventory.warehouse_removed"
	KeyWarehouseNotFound      = "inventory.warehouse_not_found"
	KeyInsufficientStock      = "inventory.insufficient_stock"
	KeyConcurrentModification = "inventory.concurrent_modification"

	// Aggregations
	KeyReportCategoryValue = "report.category_value"
	KeyReportTopProducts   = "report.top_products"
	KeyReportWarehouses    = "report.warehouse_dashboard"
	KeyReportArchived      = "report.archived"
)
