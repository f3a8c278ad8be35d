package service

import (
	"context"
	"time"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/apperror"
	"github.com/billflow/billflow-api/pkg/renderer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RenderService turns stored invoices into rendered documents
type RenderService struct {
	invoiceRepo  repository.InvoiceRepository
	templateRepo repository.TemplateRepository
	log          *zap.Logger
}

// NewRenderService creates a new render service
func NewRenderService(
	invoiceRepo repository.InvoiceRepository,
	templateRepo repository.TemplateRepository,
	log *zap.Logger,
) *RenderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RenderService{
		invoiceRepo:  invoiceRepo,
		templateRepo: templateRepo,
		log:          log,
	}
}

// RenderInvoiceInput selects the invoice and template to render
type RenderInvoiceInput struct {
	UserID       uuid.UUID
	IsSuperAdmin bool
	InvoiceID    uuid.UUID
	// TemplateID overrides the invoice's template when set
	TemplateID *uuid.UUID
}

// resolve loads the invoice and the template document to render it with.
// Template precedence: explicit override, invoice's own template, user default.
func (s *RenderService) resolve(ctx context.Context, input *RenderInvoiceInput) (*entity.Invoice, *entity.InvoiceTemplate, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice == nil {
		return nil, nil, apperror.NewNotFoundError("Invoice")
	}
	if !input.IsSuperAdmin && invoice.UserID != input.UserID {
		return nil, nil, apperror.ErrForbidden
	}

	templateID := input.TemplateID
	if templateID == nil {
		templateID = invoice.TemplateID
	}

	var template *entity.InvoiceTemplate
	if templateID != nil {
		template, err = s.templateRepo.GetByID(ctx, *templateID)
		if err != nil {
			return nil, nil, err
		}
	}
	if template == nil {
		template, err = s.templateRepo.GetDefault(ctx, invoice.UserID)
		if err != nil {
			return nil, nil, err
		}
	}
	if template == nil {
		return nil, nil, apperror.NewNotFoundError("Template")
	}

	return invoice, template, nil
}

// BuildViewModel flattens an invoice into the data document consumed by templates
func BuildViewModel(invoice *entity.Invoice) map[string]any {
	client := map[string]any{
		"name":     invoice.Client.Name,
		"currency": invoice.Client.Currency,
	}
	if invoice.Client.CompanyName != nil {
		client["company_name"] = *invoice.Client.CompanyName
	}
	if invoice.Client.Email != nil {
		client["email"] = *invoice.Client.Email
	}
	if invoice.Client.Address != nil {
		client["address"] = *invoice.Client.Address
	}
	if invoice.Client.TaxNumber != nil {
		client["tax_number"] = *invoice.Client.TaxNumber
	}

	items := make([]map[string]any, 0, len(invoice.LineItems))
	for _, li := range invoice.LineItems {
		item := map[string]any{
			"description": li.Description,
			"quantity":    li.Quantity,
			"unit_price":  float64(li.UnitPrice) / 100,
			"total_price": float64(li.TotalPrice) / 100,
		}
		if li.Category != nil {
			item["category"] = *li.Category
		}
		items = append(items, item)
	}

	data := map[string]any{
		"number":         invoice.Number,
		"status":         invoice.Status.String(),
		"issue_date":     invoice.IssueDate,
		"due_date":       invoice.DueDate,
		"currency":       invoice.Currency,
		"sub_total":      float64(invoice.SubTotal) / 100,
		"tax_amount":     float64(invoice.TaxAmount) / 100,
		"credit_applied": float64(invoice.CreditApplied) / 100,
		"total":          float64(invoice.Total) / 100,
		"amount_due":     float64(invoice.AmountDue) / 100,
		"client":         client,
		"items":          items,
	}
	if invoice.PeriodStart != nil {
		data["period_start"] = *invoice.PeriodStart
	}
	if invoice.PeriodEnd != nil {
		data["period_end"] = *invoice.PeriodEnd
	}
	if invoice.Notes != nil {
		data["notes"] = *invoice.Notes
	}
	return data
}

// RenderInvoiceHTML renders an invoice to an HTML document
func (s *RenderService) RenderInvoiceHTML(ctx context.Context, input *RenderInvoiceInput) (*renderer.HTMLResult, error) {
	invoice, template, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	tpl, err := renderer.ParseTemplate([]byte(template.ParsedJSON))
	if err != nil {
		return nil, apperror.NewAppError(422, "Stored template document is invalid: "+err.Error())
	}

	meta := renderer.Metadata{
		TemplateID: template.ID.String(),
		InvoiceID:  invoice.ID.String(),
		RenderedAt: time.Now().UTC(),
	}

	result, err := renderer.RenderHTML(tpl, BuildViewModel(invoice), meta, s.log)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RenderInvoiceTree renders an invoice to a structured node tree
func (s *RenderService) RenderInvoiceTree(ctx context.Context, input *RenderInvoiceInput) (*renderer.TreeResult, error) {
	invoice, template, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	tpl, err := renderer.ParseTemplate([]byte(template.ParsedJSON))
	if err != nil {
		return nil, apperror.NewAppError(422, "Stored template document is invalid: "+err.Error())
	}

	result, err := renderer.RenderTree(tpl, BuildViewModel(invoice), s.log)
	if err != nil {
		return nil, err
	}
	return result, nil
}
