package handler

import (
	"github.com/billflow/billflow-api/internal/application/service"
	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaxRateHandler handles tax rate HTTP requests
type TaxRateHandler struct {
	taxRateService *service.TaxRateService
}

// NewTaxRateHandler creates a new tax rate handler
func NewTaxRateHandler(taxRateService *service.TaxRateService) *TaxRateHandler {
	return &TaxRateHandler{taxRateService: taxRateService}
}

// List handles listing a user's tax rates
func (h *TaxRateHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	rates, err := h.taxRateService.ListTaxRates(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tax rates retrieved successfully", rates)
}

// Create handles creating a tax rate
func (h *TaxRateHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Name       string  `json:"name" binding:"required"`
		Percentage float64 `json:"percentage" binding:"min=0,max=100"`
		Type       int     `json:"type" binding:"min=0,max=1"`
		Region     *string `json:"region"`
		IsDefault  bool    `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	rate, err := h.taxRateService.CreateTaxRate(c.Request.Context(), &service.CreateTaxRateInput{
		UserID:     *userID,
		Name:       req.Name,
		Percentage: req.Percentage,
		Type:       enum.TaxType(req.Type),
		Region:     req.Region,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Tax rate created successfully", rate)
}

// Get handles getting a single tax rate
func (h *TaxRateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tax rate ID")
		return
	}

	rate, err := h.taxRateService.GetTaxRate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tax rate retrieved successfully", rate)
}

// Update handles updating a tax rate
func (h *TaxRateHandler) Update(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tax rate ID")
		return
	}

	var req struct {
		Name       *string  `json:"name"`
		Percentage *float64 `json:"percentage" binding:"omitempty,min=0,max=100"`
		Type       *int     `json:"type" binding:"omitempty,min=0,max=1"`
		Region     *string  `json:"region"`
		IsDefault  *bool    `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdateTaxRateInput{
		UserID:       *userID,
		ID:           id,
		IsSuperAdmin: IsSuperAdmin(c),
		Name:         req.Name,
		Percentage:   req.Percentage,
		Region:       req.Region,
		IsDefault:    req.IsDefault,
	}
	if req.Type != nil {
		taxType := enum.TaxType(*req.Type)
		input.Type = &taxType
	}

	rate, err := h.taxRateService.UpdateTaxRate(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tax rate updated successfully", rate)
}

// Delete handles deleting a tax rate
func (h *TaxRateHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid tax rate ID")
		return
	}

	if err := h.taxRateService.DeleteTaxRate(c.Request.Context(), *userID, id, IsSuperAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tax rate deleted successfully", nil)
}
