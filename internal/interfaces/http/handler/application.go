package handler

import (
	ledgerapp "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ApplicationHandler handles payment application endpoints
type ApplicationHandler struct {
	BaseHandler
	service *ledgerapp.ApplicationService
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(service *ledgerapp.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// ApplyPayment applies an amount of a payment against an invoice
func (h *ApplicationHandler) ApplyPayment(c *gin.Context) {
	var cmd ledgerapp.ApplyPaymentCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	app, err := h.service.ApplyPayment(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, app)
}

// GetApplication returns an application by ID
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid application ID")
		return
	}

	app, err := h.service.GetApplication(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, app)
}

// ReverseApplication undoes an active application and restores both balances
func (h *ApplicationHandler) ReverseApplication(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid application ID")
		return
	}
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	app, err := h.service.ReverseApplication(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, app)
}

// RegisterRoutes registers application routes
func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	applications := rg.Group("/applications")
	{
		applications.POST("", h.ApplyPayment)
		applications.GET("/:id", h.GetApplication)
		applications.POST("/:id/reverse", h.ReverseApplication)
	}
}
