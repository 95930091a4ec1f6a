// internal/handlers/inventory.go
package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/inventory-backend/internal/i18n"
	"github.com/javajoker/inventory-backend/internal/models"
	"github.com/javajoker/inventory-backend/internal/services"
	"github.com/javajoker/inventory-backend/internal/utils"
)

const defaultMovementLimit = 50

type InventoryHandler struct {
	inventoryService *services.InventoryService
}

func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// GET /inventory
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	lowStock, _ := strconv.ParseBool(c.Query("low_stock"))
	outOfStock, _ := strconv.ParseBool(c.Query("out_of_stock"))

	records, total, err := h.inventoryService.ListStockRecords(c.Request.Context(), services.StockListParams{
		Page:       params.Page,
		Limit:      params.Limit,
		LowStock:   lowStock,
		OutOfStock: outOfStock,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(records, total, params))
}

// GET /inventory/:id
func (h *InventoryHandler) GetStockRecord(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	record, err := h.inventoryService.GetStockRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "", record)
}

// GET /inventory/:id/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	limit := defaultMovementLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.BadRequestResponse(c, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	movements, err := h.inventoryService.ListMovements(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "", movements)
}

// POST /inventory/:id/add-stock
func (h *InventoryHandler) AddStock(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.AddStockRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.inventoryService.AddStock(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyStockAdded), record)
}

// POST /inventory/:id/remove-stock
func (h *InventoryHandler) RemoveStock(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.RemoveStockRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.inventoryService.RemoveStock(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyStockRemoved, req.Reason), record)
}

// POST /inventory/:id/reserve
func (h *InventoryHandler) Reserve(c *gin.Context) {
	h.reservation(c, h.inventoryService.Reserve, i18n.KeyStockReserved)
}

// POST /inventory/:id/release
func (h *InventoryHandler) Release(c *gin.Context) {
	h.reservation(c, h.inventoryService.Release, i18n.KeyStockReleased)
}

// POST /inventory/:id/fulfill
func (h *InventoryHandler) Fulfill(c *gin.Context) {
	h.reservation(c, h.inventoryService.FulfillReservation, i18n.KeyStockFulfilled)
}

// PUT /inventory/:id
func (h *InventoryHandler) UpdateSettings(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.inventoryService.UpdateSettings(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyInventoryUpdated), record)
}

// DELETE /inventory/:id/warehouse/:warehouseName
func (h *InventoryHandler) RemoveWarehouse(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	record, err := h.inventoryService.RemoveWarehouse(c.Request.Context(), id, c.Param("warehouseName"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyWarehouseRemoved), record)
}

type reservationFunc func(ctx context.Context, id uuid.UUID, req *services.ReservationRequest) (*models.StockRecord, error)

func (h *InventoryHandler) reservation(c *gin.Context, apply reservationFunc, messageKey string) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.ReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := apply(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, messageKey), record)
}
