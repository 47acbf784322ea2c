package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facturas/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	storage port.ObjectStorage
	bucket  string
}

// NewHealthHandler creates a new HealthHandler. storage may be nil.
func NewHealthHandler(storage port.ObjectStorage, bucket string) *HealthHandler {
	return &HealthHandler{storage: storage, bucket: bucket}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": "disabled"})
		return
	}
	if err := h.storage.Ping(c.Request.Context(), h.bucket); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "storage not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
