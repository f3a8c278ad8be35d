package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/billflow/billflow-api/internal/application/service"
	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/internal/presentation/http/dto/response"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillingCycleHandler handles billing cycle HTTP requests
type BillingCycleHandler struct {
	cycleService *service.BillingCycleService
}

// NewBillingCycleHandler creates a new billing cycle handler
func NewBillingCycleHandler(cycleService *service.BillingCycleService) *BillingCycleHandler {
	return &BillingCycleHandler{cycleService: cycleService}
}

// List handles listing billing cycles
func (h *BillingCycleHandler) List(c *gin.Context) {
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

	result, err := h.cycleService.ListBillingCycles(c.Request.Context(), *userID, params, clientID, IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Billing cycles retrieved successfully", result)
}

// Create handles creating a billing cycle
func (h *BillingCycleHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		ClientID    uuid.UUID  `json:"client_id" binding:"required"`
		TaxRateID   *uuid.UUID `json:"tax_rate_id"`
		TemplateID  *uuid.UUID `json:"template_id"`
		Name        string     `json:"name" binding:"required"`
		Frequency   string     `json:"frequency" binding:"required,oneof=Monthly Quarterly Annual"`
		Amount      float64    `json:"amount" binding:"required,gt=0"`
		Description string     `json:"description"`
		StartDate   time.Time  `json:"start_date" binding:"required"`
		DueDays     int        `json:"due_days" binding:"omitempty,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	var frequency enum.BillingFrequency
	_ = frequency.UnmarshalJSON([]byte(`"` + req.Frequency + `"`))

	cycle, err := h.cycleService.CreateBillingCycle(c.Request.Context(), &service.CreateBillingCycleInput{
		UserID:      *userID,
		ClientID:    req.ClientID,
		TaxRateID:   req.TaxRateID,
		TemplateID:  req.TemplateID,
		Name:        req.Name,
		Frequency:   frequency,
		Amount:      req.Amount,
		Description: req.Description,
		StartDate:   req.StartDate,
		DueDays:     req.DueDays,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Billing cycle created successfully", cycle)
}

// Get handles getting a single billing cycle
func (h *BillingCycleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid billing cycle ID")
		return
	}

	cycle, err := h.cycleService.GetBillingCycle(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Billing cycle retrieved successfully", cycle)
}

// Update handles updating a billing cycle
func (h *BillingCycleHandler) Update(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid billing cycle ID")
		return
	}

	var req struct {
		TaxRateID   *uuid.UUID `json:"tax_rate_id"`
		TemplateID  *uuid.UUID `json:"template_id"`
		Name        *string    `json:"name"`
		Frequency   *string    `json:"frequency" binding:"omitempty,oneof=Monthly Quarterly Annual"`
		Amount      *float64   `json:"amount" binding:"omitempty,gt=0"`
		Description *string    `json:"description"`
		DueDays     *int       `json:"due_days" binding:"omitempty,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdateBillingCycleInput{
		UserID:       *userID,
		ID:           id,
		IsSuperAdmin: IsSuperAdmin(c),
		TaxRateID:    req.TaxRateID,
		TemplateID:   req.TemplateID,
		Name:         req.Name,
		Amount:       req.Amount,
		Description:  req.Description,
		DueDays:      req.DueDays,
	}
	if req.Frequency != nil {
		var frequency enum.BillingFrequency
		_ = frequency.UnmarshalJSON([]byte(`"` + *req.Frequency + `"`))
		input.Frequency = &frequency
	}

	cycle, err := h.cycleService.UpdateBillingCycle(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Billing cycle updated successfully", cycle)
}

// Pause handles pausing a billing cycle
func (h *BillingCycleHandler) Pause(c *gin.Context) {
	h.setStatus(c, h.cycleService.PauseBillingCycle, "Billing cycle paused successfully")
}

// Resume handles resuming a paused billing cycle
func (h *BillingCycleHandler) Resume(c *gin.Context) {
	h.setStatus(c, h.cycleService.ResumeBillingCycle, "Billing cycle resumed successfully")
}

// End handles permanently ending a billing cycle
func (h *BillingCycleHandler) End(c *gin.Context) {
	h.setStatus(c, h.cycleService.EndBillingCycle, "Billing cycle ended successfully")
}

type cycleTransition func(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) (*entity.BillingCycle, error)

func (h *BillingCycleHandler) setStatus(c *gin.Context, fn cycleTransition, message string) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid billing cycle ID")
		return
	}

	cycle, err := fn(c.Request.Context(), *userID, id, IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, cycle)
}

// Delete handles deleting a billing cycle
func (h *BillingCycleHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid billing cycle ID")
		return
	}

	cycle, err := h.cycleService.GetBillingCycle(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !IsSuperAdmin(c) && cycle.UserID != *userID {
		response.Forbidden(c, "Forbidden")
		return
	}

	if _, err := h.cycleService.EndBillingCycle(c.Request.Context(), *userID, id, true); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Billing cycle ended successfully", nil)
}

// GenerateDue handles generating invoices for all due cycles
func (h *BillingCycleHandler) GenerateDue(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	asOf := time.Now()
	if asOfStr := c.Query("as_of"); asOfStr != "" {
		parsed, err := time.Parse("2006-01-02", asOfStr)
		if err != nil {
			response.BadRequest(c, "Invalid as_of date")
			return
		}
		asOf = parsed
	}

	invoices, err := h.cycleService.GenerateDueInvoices(c.Request.Context(), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Due invoices generated successfully", gin.H{
		"generated": len(invoices),
		"invoices":  invoices,
	})
}
