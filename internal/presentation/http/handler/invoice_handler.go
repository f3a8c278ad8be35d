package handler

import (
	"strconv"
	"time"

	"github.com/billflow/billflow-api/internal/application/service"
	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/internal/presentation/http/dto/response"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	renderService  *service.RenderService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService, renderService *service.RenderService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		renderService:  renderService,
	}
}

// invoiceItemRequest represents a line item in a create or update request
type invoiceItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Category    *string `json:"category"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"min=0"`
}

func toItemInputs(items []invoiceItemRequest) []service.InvoiceItemInput {
	inputs := make([]service.InvoiceItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, service.InvoiceItemInput{
			Description: item.Description,
			Category:    item.Category,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return inputs
}

// List handles listing invoices with filters
func (h *InvoiceHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	input := &service.ListInvoicesInput{
		UserID:       *userID,
		IsSuperAdmin: IsSuperAdmin(c),
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
	}

	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		clientID, err := uuid.Parse(clientIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}
		input.ClientID = &clientID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		var status enum.InvoiceStatus
		if err := status.UnmarshalJSON([]byte(`"` + statusStr + `"`)); err != nil {
			response.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			response.BadRequest(c, "Invalid from date")
			return
		}
		input.From = &from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			response.BadRequest(c, "Invalid to date")
			return
		}
		input.To = &to
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// Create handles creating an invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		ClientID    uuid.UUID            `json:"client_id" binding:"required"`
		TemplateID  *uuid.UUID           `json:"template_id"`
		TaxRateID   *uuid.UUID           `json:"tax_rate_id"`
		IssueDate   time.Time            `json:"issue_date" binding:"required"`
		DueDate     time.Time            `json:"due_date" binding:"required"`
		PeriodStart *time.Time           `json:"period_start"`
		PeriodEnd   *time.Time           `json:"period_end"`
		Notes       *string              `json:"notes"`
		Items       []invoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		UserID:      *userID,
		ClientID:    req.ClientID,
		TemplateID:  req.TemplateID,
		TaxRateID:   req.TaxRateID,
		IssueDate:   req.IssueDate,
		DueDate:     req.DueDate,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Notes:       req.Notes,
		Items:       toItemInputs(req.Items),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Get handles getting a single invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Update handles updating a draft invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req struct {
		TaxRateID *uuid.UUID           `json:"tax_rate_id"`
		IssueDate *time.Time           `json:"issue_date"`
		DueDate   *time.Time           `json:"due_date"`
		Notes     *string              `json:"notes"`
		Items     []invoiceItemRequest `json:"items" binding:"omitempty,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdateInvoiceInput{
		UserID:       *userID,
		ID:           id,
		IsSuperAdmin: IsSuperAdmin(c),
		TaxRateID:    req.TaxRateID,
		IssueDate:    req.IssueDate,
		DueDate:      req.DueDate,
		Notes:        req.Notes,
	}
	if req.Items != nil {
		input.Items = toItemInputs(req.Items)
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// Delete handles deleting a draft invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), *userID, id, IsSuperAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice deleted successfully", nil)
}

// transition wraps the status transition endpoints
func (h *InvoiceHandler) transition(c *gin.Context, fn func(*gin.Context, uuid.UUID, uuid.UUID, bool) error) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := fn(c, *userID, id, IsSuperAdmin(c)); err != nil {
		response.Error(c, err)
	}
}

// Send handles transitioning a draft invoice to sent
func (h *InvoiceHandler) Send(c *gin.Context) {
	h.transition(c, func(c *gin.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
		invoice, err := h.invoiceService.SendInvoice(c.Request.Context(), userID, id, isSuperAdmin)
		if err != nil {
			return err
		}
		response.OK(c, "Invoice sent successfully", invoice)
		return nil
	})
}

// MarkPaid handles marking an invoice as paid
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	h.transition(c, func(c *gin.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
		invoice, err := h.invoiceService.MarkInvoicePaid(c.Request.Context(), userID, id, isSuperAdmin)
		if err != nil {
			return err
		}
		response.OK(c, "Invoice marked as paid", invoice)
		return nil
	})
}

// Void handles voiding an invoice
func (h *InvoiceHandler) Void(c *gin.Context) {
	h.transition(c, func(c *gin.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
		invoice, err := h.invoiceService.VoidInvoice(c.Request.Context(), userID, id, isSuperAdmin)
		if err != nil {
			return err
		}
		response.OK(c, "Invoice voided successfully", invoice)
		return nil
	})
}

// MarkOverdue flags every sent invoice past its due date as overdue.
// The as_of query parameter overrides the reference date for the sweep.
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	count, err := h.invoiceService.MarkOverdueInvoices(c.Request.Context(), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Overdue sweep completed", gin.H{"marked": count})
}

// Render handles rendering an invoice with a template.
// The mode query parameter selects html (default) or tree output.
func (h *InvoiceHandler) Render(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	input := &service.RenderInvoiceInput{
		UserID:       *userID,
		IsSuperAdmin: IsSuperAdmin(c),
		InvoiceID:    id,
	}
	if templateIDStr := c.Query("template_id"); templateIDStr != "" {
		templateID, err := uuid.Parse(templateIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid template ID")
			return
		}
		input.TemplateID = &templateID
	}

	switch c.DefaultQuery("mode", "html") {
	case "html":
		result, err := h.renderService.RenderInvoiceHTML(c.Request.Context(), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Invoice rendered successfully", result)
	case "tree":
		result, err := h.renderService.RenderInvoiceTree(c.Request.Context(), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Invoice rendered successfully", result)
	default:
		response.BadRequest(c, "Invalid render mode (use html or tree)")
	}
}

// Preview handles returning a rendered invoice as a standalone HTML page
func (h *InvoiceHandler) Preview(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	input := &service.RenderInvoiceInput{
		UserID:       *userID,
		IsSuperAdmin: IsSuperAdmin(c),
		InvoiceID:    id,
	}
	if templateIDStr := c.Query("template_id"); templateIDStr != "" {
		templateID, err := uuid.Parse(templateIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid template ID")
			return
		}
		input.TemplateID = &templateID
	}

	result, err := h.renderService.RenderInvoiceHTML(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	page := "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><style>" +
		result.Styles +
		"</style></head><body>" +
		result.HTML +
		"</body></html>"
	c.Data(200, "text/html; charset=utf-8", []byte(page))
}
