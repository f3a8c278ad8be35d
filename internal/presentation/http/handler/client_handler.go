package handler

import (
	"strconv"

	"github.com/billflow/billflow-api/internal/application/service"
	"github.com/billflow/billflow-api/internal/presentation/http/dto/response"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List handles listing clients
func (h *ClientHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	search := c.Query("search")
	isSuperAdmin := IsSuperAdmin(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}

	result, err := h.clientService.ListClients(c.Request.Context(), *userID, params, search, isSuperAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Clients retrieved successfully", result)
}

// Create handles creating a client
func (h *ClientHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		Name         string  `json:"name" binding:"required"`
		CompanyName  *string `json:"company_name"`
		Email        *string `json:"email" binding:"omitempty,email"`
		Phone        *string `json:"phone"`
		TaxNumber    *string `json:"tax_number"`
		BillingEmail *string `json:"billing_email" binding:"omitempty,email"`
		Address      *string `json:"address"`
		Notes        *string `json:"notes"`
		Currency     string  `json:"currency" binding:"omitempty,len=3"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), &service.CreateClientInput{
		UserID:       *userID,
		Name:         req.Name,
		CompanyName:  req.CompanyName,
		Email:        req.Email,
		Phone:        req.Phone,
		TaxNumber:    req.TaxNumber,
		BillingEmail: req.BillingEmail,
		Address:      req.Address,
		Notes:        req.Notes,
		Currency:     req.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client created successfully", client)
}

// Get handles getting a single client
func (h *ClientHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}

// Update handles updating a client
func (h *ClientHandler) Update(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	var req struct {
		Name         *string `json:"name"`
		CompanyName  *string `json:"company_name"`
		Email        *string `json:"email" binding:"omitempty,email"`
		Phone        *string `json:"phone"`
		TaxNumber    *string `json:"tax_number"`
		BillingEmail *string `json:"billing_email" binding:"omitempty,email"`
		Address      *string `json:"address"`
		Notes        *string `json:"notes"`
		Currency     *string `json:"currency" binding:"omitempty,len=3"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), &service.UpdateClientInput{
		UserID:       *userID,
		ID:           id,
		IsSuperAdmin: IsSuperAdmin(c),
		Name:         req.Name,
		CompanyName:  req.CompanyName,
		Email:        req.Email,
		Phone:        req.Phone,
		TaxNumber:    req.TaxNumber,
		BillingEmail: req.BillingEmail,
		Address:      req.Address,
		Notes:        req.Notes,
		Currency:     req.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client updated successfully", client)
}

// Delete handles deleting a client
func (h *ClientHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), *userID, id, IsSuperAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client deleted successfully", nil)
}
