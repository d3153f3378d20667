package handler

import (
	"time"

	ledgerapp "github.com/finbooks/backend/internal/application/ledger"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice lifecycle endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices     *ledgerapp.InvoiceService
	applications *ledgerapp.ApplicationService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *ledgerapp.InvoiceService, applications *ledgerapp.ApplicationService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, applications: applications}
}

// ListInvoicesRequest represents invoice list query parameters
type ListInvoicesRequest struct {
	Kind      string     `form:"kind" binding:"omitempty,oneof=RECEIVABLE PAYABLE"`
	Status    string     `form:"status" binding:"omitempty,oneof=DRAFT OPEN PAID CANCELLED VOID"`
	PartyID   string     `form:"party_id" binding:"omitempty,uuid"`
	Overdue   bool       `form:"overdue"`
	DueBefore *time.Time `form:"due_before" time_format:"2006-01-02"`
	DueAfter  *time.Time `form:"due_after" time_format:"2006-01-02"`
	Offset    int        `form:"offset" binding:"omitempty,gte=0"`
	Limit     int        `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

// ReasonRequest carries the operator-supplied reason for a state change
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// CreateInvoice creates a draft invoice with a freshly allocated number
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var cmd ledgerapp.CreateInvoiceCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	inv, err := h.invoices.CreateInvoice(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// GetInvoice returns an invoice by ID
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// GetInvoiceBalance returns the total, paid, and due amounts of an invoice
func (h *InvoiceHandler) GetInvoiceBalance(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	balance, err := h.invoices.GetInvoiceBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// GetInvoiceByNumber returns an invoice by its document number
func (h *InvoiceHandler) GetInvoiceByNumber(c *gin.Context) {
	inv, err := h.invoices.GetInvoiceByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// ListInvoices returns invoices matching the query filters
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := ledger.InvoiceFilter{
		Overdue:   req.Overdue,
		DueBefore: req.DueBefore,
		DueAfter:  req.DueAfter,
		Offset:    req.Offset,
		Limit:     req.Limit,
	}
	if req.Kind != "" {
		kind := ledger.InvoiceKind(req.Kind)
		filter.Kind = &kind
	}
	if req.Status != "" {
		status := ledger.InvoiceStatus(req.Status)
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

	result, err := h.invoices.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Offset, result.Limit)
}

// ApproveInvoice opens a draft invoice for payment
func (h *InvoiceHandler) ApproveInvoice(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.invoices.ApproveInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// CancelInvoice cancels a draft invoice
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	inv, err := h.invoices.CancelInvoice(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// VoidInvoice voids an approved invoice that has no applied payments
func (h *InvoiceHandler) VoidInvoice(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	inv, err := h.invoices.VoidInvoice(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// ListInvoiceApplications returns the applications posted against an invoice
func (h *InvoiceHandler) ListInvoiceApplications(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	apps, err := h.applications.ListByInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apps)
}

// AgingSummary buckets open balances by days overdue
func (h *InvoiceHandler) AgingSummary(c *gin.Context) {
	kind := ledger.InvoiceKind(c.DefaultQuery("kind", ledger.InvoiceKindReceivable.String()))

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "as_of must be formatted as YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	buckets, err := h.invoices.AgingSummary(c.Request.Context(), kind, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"kind": kind.String(), "as_of": asOf.Format("2006-01-02"), "buckets": buckets})
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/aging", h.AgingSummary)
		invoices.GET("/number/:number", h.GetInvoiceByNumber)
		invoices.GET("/:id", h.GetInvoice)
		invoices.GET("/:id/balance", h.GetInvoiceBalance)
		invoices.GET("/:id/applications", h.ListInvoiceApplications)
		invoices.POST("", h.CreateInvoice)
		invoices.POST("/:id/approve", h.ApproveInvoice)
		invoices.POST("/:id/cancel", h.CancelInvoice)
		invoices.POST("/:id/void", h.VoidInvoice)
	}
}
