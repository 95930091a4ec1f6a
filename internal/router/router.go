// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/inventory-backend/internal/config"
	"github.com/javajoker/inventory-backend/internal/handlers"
	"github.com/javajoker/inventory-backend/internal/i18n"
	"github.com/javajoker/inventory-backend/internal/middleware"
	"github.com/javajoker/inventory-backend/internal/repository"
	"github.com/javajoker/inventory-backend/internal/services"
	"github.com/javajoker/inventory-backend/internal/utils"
)

// Initialize builds the engine. The returned stop func ends the rate
// limiters' background cleanup.
func Initialize(store repository.Store, archiver *services.ReportArchiver, cfg *config.Config) (*gin.Engine, func()) {
	// Initialize services
	productService := services.NewProductService(store, cfg.Inventory)
	inventoryService := services.NewInventoryService(store, cfg.Inventory)
	analyticsService := services.NewAnalyticsService(store, archiver, cfg.Inventory.DefaultTopProducts)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(store, cfg.Storage.Driver)
	productHandler := handlers.NewProductHandler(productService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	generalLimiter := middleware.NewRateLimiter(cfg.RateLimit.GeneralPerSecond, cfg.RateLimit.GeneralBurst)
	mutationLimiter := middleware.NewRateLimiter(cfg.RateLimit.MutationPerSecond, cfg.RateLimit.MutationBurst)
	stop := func() {
		generalLimiter.Stop()
		mutationLimiter.Stop()
	}

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(generalLimiter.Middleware())

	api := r.Group("/api")
	{
		api.GET("", healthHandler.Index)
		api.GET("/health", healthHandler.Health)

		products := api.Group("/products")
		products.Use(mutationLimiter.MutationsOnly())
		{
			products.GET("", productHandler.GetProducts)
			products.POST("", productHandler.CreateProduct)
			products.GET("/:id", productHandler.GetProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
		}

		inventory := api.Group("/inventory")
		inventory.Use(mutationLimiter.MutationsOnly())
		{
			inventory.GET("", inventoryHandler.GetInventory)
			inventory.GET("/:id", inventoryHandler.GetStockRecord)
			inventory.GET("/:id/movements", inventoryHandler.GetMovements)
			inventory.POST("/:id/add-stock", inventoryHandler.AddStock)
			inventory.POST("/:id/remove-stock", inventoryHandler.RemoveStock)
			inventory.POST("/:id/reserve", inventoryHandler.Reserve)
			inventory.POST("/:id/release", inventoryHandler.Release)
			inventory.POST("/:id/fulfill", inventoryHandler.Fulfill)
			inventory.PUT("/:id", inventoryHandler.UpdateSettings)
			inventory.DELETE("/:id/warehouse/:warehouseName", inventoryHandler.RemoveWarehouse)
		}

		aggregations := api.Group("/aggregations")
		{
			aggregations.GET("/inventory-value-by-category", analyticsHandler.InventoryValueByCategory)
			aggregations.GET("/top-products-analysis", analyticsHandler.TopProductsAnalysis)
			aggregations.GET("/warehouse-dashboard", analyticsHandler.WarehouseDashboard)
			aggregations.POST("/:report/archive", mutationLimiter.Middleware(), analyticsHandler.ArchiveReport)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, i18n.KeyRouteNotFound)
	})

	return r, stop
}
