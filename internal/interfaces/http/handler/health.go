package handler

import (
	"net/http"

	"github.com/finbooks/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports process and database health
type HealthHandler struct {
	BaseHandler
	db *persistence.Database
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *persistence.Database) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness reports that the process is up
func (h *HealthHandler) Liveness(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok"})
}

// Readiness reports whether the service can reach its database
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		h.Error(c, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "Database is not reachable")
		return
	}

	stats, err := h.db.Stats()
	if err != nil {
		h.Error(c, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "Database is not reachable")
		return
	}

	h.Success(c, gin.H{
		"status":   "ok",
		"database": stats,
	})
}

// RegisterRoutes registers health endpoints
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Liveness)
	rg.GET("/health/ready", h.Readiness)
}
