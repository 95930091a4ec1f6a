// internal/handlers/health.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/inventory-backend/internal/repository"
)

const (
	serviceVersion = "1.0.0"
	pingTimeout    = 2 * time.Second
)

type HealthHandler struct {
	store   repository.Store
	driver  string
	started time.Time
}

func NewHealthHandler(store repository.Store, driver string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver, started: time.Now()}
}

// GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	status, code, storage := "healthy", http.StatusOK, "connected"
	if err := h.store.Ping(ctx); err != nil {
		status, code, storage = "degraded", http.StatusServiceUnavailable, "unavailable"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"version":   serviceVersion,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"storage": gin.H{
			"driver": h.driver,
			"status": storage,
		},
	})
}

// GET /api
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Inventory Management API",
		"version": serviceVersion,
		"endpoints": gin.H{
			"health":       "/api/health",
			"products":     "/api/products",
			"inventory":    "/api/inventory",
			"aggregations": "/api/aggregations",
		},
	})
}
