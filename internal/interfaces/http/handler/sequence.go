package handler

import (
	ledgerapp "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// SequenceHandler handles document sequence administration endpoints
type SequenceHandler struct {
	BaseHandler
	service *ledgerapp.SequenceService
}

// NewSequenceHandler creates a new SequenceHandler
func NewSequenceHandler(service *ledgerapp.SequenceService) *SequenceHandler {
	return &SequenceHandler{service: service}
}

// CreateSequence defines a new named counter
func (h *SequenceHandler) CreateSequence(c *gin.Context) {
	var cmd ledgerapp.CreateSequenceCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	seq, err := h.service.CreateSequence(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, seq)
}

// GetSequence returns the state of a counter
func (h *SequenceHandler) GetSequence(c *gin.Context) {
	seq, err := h.service.GetSequence(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seq)
}

// AllocateValue hands out the next value of a counter
func (h *SequenceHandler) AllocateValue(c *gin.Context) {
	value, err := h.service.AllocateValue(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"name": c.Param("name"), "value": value})
}

// RegisterRoutes registers sequence routes
func (h *SequenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sequences := rg.Group("/sequences")
	{
		sequences.POST("", h.CreateSequence)
		sequences.GET("/:name", h.GetSequence)
		sequences.POST("/:name/allocate", h.AllocateValue)
	}
}
