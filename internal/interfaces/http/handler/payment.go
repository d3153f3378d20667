package handler

import (
	ledgerapp "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment lifecycle and settlement endpoints
type PaymentHandler struct {
	BaseHandler
	payments     *ledgerapp.PaymentService
	applications *ledgerapp.ApplicationService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *ledgerapp.PaymentService, applications *ledgerapp.ApplicationService) *PaymentHandler {
	return &PaymentHandler{payments: payments, applications: applications}
}

// ListPaymentsRequest represents payment list query parameters
type ListPaymentsRequest struct {
	Kind          string `form:"kind" binding:"omitempty,oneof=RECEIPT DISBURSEMENT"`
	Status        string `form:"status" binding:"omitempty,oneof=DRAFT CONFIRMED CLEARED CANCELLED REVERSED"`
	PartyID       string `form:"party_id" binding:"omitempty,uuid"`
	WithUnapplied bool   `form:"with_unapplied"`
	Offset        int    `form:"offset" binding:"omitempty,gte=0"`
	Limit         int    `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

// AutoApplyRequest carries the optional remark for auto application
type AutoApplyRequest struct {
	Remark string `json:"remark" binding:"max=500"`
}

// CreatePayment records a draft payment with a freshly allocated number
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var cmd ledgerapp.CreatePaymentCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	p, err := h.payments.CreatePayment(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// GetPayment returns a payment by ID
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	p, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// GetPaymentBalance returns the amount, applied, and unapplied totals of a
// payment
func (h *PaymentHandler) GetPaymentBalance(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	balance, err := h.payments.GetPaymentBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// GetPaymentByNumber returns a payment by its document number
func (h *PaymentHandler) GetPaymentByNumber(c *gin.Context) {
	p, err := h.payments.GetPaymentByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ListPayments returns payments matching the query filters
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var req ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := ledger.PaymentFilter{
		WithUnapplied: req.WithUnapplied,
		Offset:        req.Offset,
		Limit:         req.Limit,
	}
	if req.Kind != "" {
		kind := ledger.PaymentKind(req.Kind)
		filter.Kind = &kind
	}
	if req.Status != "" {
		status := ledger.PaymentStatus(req.Status)
		filter.Status = &status
	}
	if req.PartyID != "" {
		partyID, err := uuid.Parse(req.PartyID)
		if err != nil {
			h.BadRequest(c, "Invalid party ID")
			return
		}
		filter.PartyID = &partyID
	}

	result, err := h.payments.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Offset, result.Limit)
}

// ConfirmPayment confirms a draft payment, making it applicable
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	p, err := h.payments.ConfirmPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ClearPayment records bank settlement of a confirmed payment
func (h *PaymentHandler) ClearPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	p, err := h.payments.ClearPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// CancelPayment cancels a payment with no applied amount
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	p, err := h.payments.CancelPayment(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ReversePayment reverses a confirmed or cleared payment
func (h *PaymentHandler) ReversePayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	p, err := h.payments.ReversePayment(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ListPaymentApplications returns the applications made from a payment
func (h *PaymentHandler) ListPaymentApplications(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	apps, err := h.applications.ListByPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apps)
}

// AutoApply distributes the payment's unapplied balance FIFO across the
// party's open invoices
func (h *PaymentHandler) AutoApply(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}
	// The remark body is optional
	var req AutoApplyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	result, err := h.applications.AutoApply(c.Request.Context(), id, req.Remark)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// PreviewAutoApply plans a FIFO distribution without changing anything
func (h *PaymentHandler) PreviewAutoApply(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	plan, err := h.applications.PreviewAutoApply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.GET("", h.ListPayments)
		payments.GET("/number/:number", h.GetPaymentByNumber)
		payments.GET("/:id", h.GetPayment)
		payments.GET("/:id/balance", h.GetPaymentBalance)
		payments.GET("/:id/applications", h.ListPaymentApplications)
		payments.GET("/:id/auto-apply", h.PreviewAutoApply)
		payments.POST("", h.CreatePayment)
		payments.POST("/:id/confirm", h.ConfirmPayment)
		payments.POST("/:id/clear", h.ClearPayment)
		payments.POST("/:id/cancel", h.CancelPayment)
		payments.POST("/:id/reverse", h.ReversePayment)
		payments.POST("/:id/auto-apply", h.AutoApply)
	}
}
