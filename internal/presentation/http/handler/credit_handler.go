package handler

import (
	"strconv"
	"time"

	"github.com/billflow/billflow-api/internal/application/service"
	"github.com/billflow/billflow-api/internal/presentation/http/dto/response"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreditHandler handles credit note HTTP requests
type CreditHandler struct {
	creditService *service.CreditService
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(creditService *service.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

// List handles listing credits
func (h *CreditHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}

	var clientID *uuid.UUID
	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		id, err := uuid.Parse(clientIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}
		clientID = &id
	}

	result, err := h.creditService.ListCredits(c.Request.Context(), *userID, params, clientID, IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Credits retrieved successfully", result)
}

// Create handles issuing a credit
func (h *CreditHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		ClientID  uuid.UUID  `json:"client_id" binding:"required"`
		Amount    float64    `json:"amount" binding:"required,gt=0"`
		Reason    string     `json:"reason"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	credit, err := h.creditService.CreateCredit(c.Request.Context(), &service.CreateCreditInput{
		UserID:    *userID,
		ClientID:  req.ClientID,
		Amount:    req.Amount,
		Reason:    req.Reason,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Credit created successfully", credit)
}

// Get handles getting a single credit
func (h *CreditHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid credit ID")
		return
	}

	credit, err := h.creditService.GetCredit(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Credit retrieved successfully", credit)
}

// Apply handles applying a credit to an invoice
func (h *CreditHandler) Apply(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid credit ID")
		return
	}

	var req struct {
		InvoiceID uuid.UUID `json:"invoice_id" binding:"required"`
		Amount    float64   `json:"amount" binding:"omitempty,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	application, err := h.creditService.ApplyCredit(c.Request.Context(), &service.ApplyCreditInput{
		UserID:       *userID,
		IsSuperAdmin: IsSuperAdmin(c),
		CreditID:     id,
		InvoiceID:    req.InvoiceID,
		Amount:       req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Credit applied successfully", application)
}

// ApplyAvailable handles applying all usable credits to an invoice
func (h *CreditHandler) ApplyAvailable(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	applied, err := h.creditService.ApplyAvailableCredits(c.Request.Context(), *userID, invoiceID, IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Available credits applied successfully", gin.H{
		"applied":      len(applied),
		"applications": applied,
	})
}

// Reconcile handles recomputing a credit's balance from its applications
func (h *CreditHandler) Reconcile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid credit ID")
		return
	}

	credit, err := h.creditService.ReconcileCredit(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Credit reconciled successfully", credit)
}

// Delete handles deleting an unapplied credit
func (h *CreditHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid credit ID")
		return
	}

	if err := h.creditService.DeleteCredit(c.Request.Context(), *userID, id, IsSuperAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Credit deleted successfully", nil)
}
