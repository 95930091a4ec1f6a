// internal/handlers/analytics.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/inventory-backend/internal/i18n"
	"github.com/javajoker/inventory-backend/internal/services"
	"github.com/javajoker/inventory-backend/internal/utils"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GET /aggregations/inventory-value-by-category
func (h *AnalyticsHandler) InventoryValueByCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	report, err := h.analyticsService.InventoryValueByCategory(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyReportCategoryValue), report)
}

// GET /aggregations/top-products-analysis
func (h *AnalyticsHandler) TopProductsAnalysis(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	report, limit, err := h.analyticsService.TopProductsAnalysis(c.Request.Context(), c.Query("limit"), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyReportTopProducts, limit), report)
}

// GET /aggregations/warehouse-dashboard
func (h *AnalyticsHandler) WarehouseDashboard(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	dashboard, err := h.analyticsService.WarehouseDashboard(c.Request.Context(), c.Query("warehouse"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyReportWarehouses), dashboard)
}

// POST /aggregations/:report/archive
func (h *AnalyticsHandler) ArchiveReport(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	result, err := h.analyticsService.Archive(c.Request.Context(), c.Param("report"), services.ReportParams{
		Category:  c.Query("category"),
		Warehouse: c.Query("warehouse"),
		Limit:     c.Query("limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyReportArchived), result)
}
