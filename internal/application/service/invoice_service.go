package service

import (
	"context"
	"fmt"
	"time"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/apperror"
	"github.com/billflow/billflow-api/pkg/email"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService handles invoice-related operations
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	clientRepo   repository.ClientRepository
	taxRateRepo  repository.TaxRateRepository
	emailService *email.EmailService
	log          *zap.Logger
}

// NewInvoiceService creates a new invoice service. emailService may be nil
// when outbound mail is not configured.
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	taxRateRepo repository.TaxRateRepository,
	emailService *email.EmailService,
	log *zap.Logger,
) *InvoiceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		taxRateRepo:  taxRateRepo,
		emailService: emailService,
		log:          log,
	}
}

// InvoiceItemInput represents a line item input
type InvoiceItemInput struct {
	Description string
	Category    *string
	Quantity    float64
	UnitPrice   float64
}

// CreateInvoiceInput represents the input for creating an invoice
type CreateInvoiceInput struct {
	UserID         uuid.UUID
	ClientID       uuid.UUID
	BillingCycleID *uuid.UUID
	TemplateID     *uuid.UUID
	TaxRateID      *uuid.UUID
	IssueDate      time.Time
	DueDate        time.Time
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	Notes          *string
	Items          []InvoiceItemInput
}

// toCents converts a decimal amount to cents, rounded half up
func toCents(amount float64) int64 {
	if amount < 0 {
		return -int64(-amount*100 + 0.5)
	}
	return int64(amount*100 + 0.5)
}

// CreateInvoice creates a new draft invoice with its line items
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Invoice requires at least one line item")
	}
	if input.DueDate.Before(input.IssueDate) {
		return nil, apperror.NewBadRequestError("Due date cannot be before issue date")
	}

	var taxRate *entity.TaxRate
	if input.TaxRateID != nil {
		taxRate, err = s.taxRateRepo.GetByID(ctx, *input.TaxRateID)
		if err != nil {
			return nil, err
		}
		if taxRate == nil {
			return nil, apperror.NewNotFoundError("Tax rate")
		}
	}

	number, err := s.nextNumber(ctx, input.UserID, input.IssueDate.Year())
	if err != nil {
		return nil, err
	}

	items := make([]entity.InvoiceLineItem, 0, len(input.Items))
	var subTotal int64
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Line item quantity must be positive")
		}
		unitPrice := toCents(item.UnitPrice)
		totalPrice := toCents(item.Quantity * item.UnitPrice)
		subTotal += totalPrice
		items = append(items, entity.InvoiceLineItem{
			Description: item.Description,
			Category:    item.Category,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			TotalPrice:  totalPrice,
		})
	}

	taxAmount := taxRate.Apply(subTotal)
	total := subTotal + taxAmount

	invoice := &entity.Invoice{
		UserID:         input.UserID,
		ClientID:       input.ClientID,
		BillingCycleID: input.BillingCycleID,
		TemplateID:     input.TemplateID,
		Number:         number,
		Status:         enum.InvoiceStatusDraft,
		IssueDate:      input.IssueDate,
		DueDate:        input.DueDate,
		PeriodStart:    input.PeriodStart,
		PeriodEnd:      input.PeriodEnd,
		SubTotal:       subTotal,
		TaxAmount:      taxAmount,
		Total:          total,
		AmountDue:      total,
		Currency:       client.Currency,
		Notes:          input.Notes,
		LineItems:      items,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	return s.invoiceRepo.GetByID(ctx, invoice.ID)
}

// nextNumber produces the next sequential invoice number for a user's calendar year
func (s *InvoiceService) nextNumber(ctx context.Context, userID uuid.UUID, year int) (string, error) {
	count, err := s.invoiceRepo.CountForYear(ctx, userID, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%06d", year, count+1), nil
}

// GetInvoice retrieves an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoicesInput represents the input for listing invoices
type ListInvoicesInput struct {
	UserID       uuid.UUID
	IsSuperAdmin bool
	Pagination   *pagination.PaginationParams
	ClientID     *uuid.UUID
	Status       *enum.InvoiceStatus
	From         *time.Time
	To           *time.Time
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, input *ListInvoicesInput) (*pagination.PaginatedResult[entity.Invoice], error) {
	filter := &repository.InvoiceFilter{
		ClientID: input.ClientID,
		Status:   input.Status,
		From:     input.From,
		To:       input.To,
	}

	invoices, total, err := s.invoiceRepo.List(ctx, input.UserID, input.Pagination, filter, input.IsSuperAdmin)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// UpdateInvoiceInput represents the input for updating a draft invoice
type UpdateInvoiceInput struct {
	UserID       uuid.UUID
	ID           uuid.UUID
	IsSuperAdmin bool
	TaxRateID    *uuid.UUID
	IssueDate    *time.Time
	DueDate      *time.Time
	Notes        *string
	Items        []InvoiceItemInput
}

// UpdateInvoice replaces the details of a draft invoice. Only drafts can change.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, input *UpdateInvoiceInput) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	if !input.IsSuperAdmin && invoice.UserID != input.UserID {
		return nil, apperror.ErrForbidden
	}
	if invoice.Status != enum.InvoiceStatusDraft {
		return nil, apperror.NewConflictError("Only draft invoices can be edited")
	}

	if input.IssueDate != nil {
		invoice.IssueDate = *input.IssueDate
	}
	if input.DueDate != nil {
		invoice.DueDate = *input.DueDate
	}
	if invoice.DueDate.Before(invoice.IssueDate) {
		return nil, apperror.NewBadRequestError("Due date cannot be before issue date")
	}
	if input.Notes != nil {
		invoice.Notes = input.Notes
	}

	if input.Items != nil {
		items := make([]entity.InvoiceLineItem, 0, len(input.Items))
		var subTotal int64
		for _, item := range input.Items {
			if item.Quantity <= 0 {
				return nil, apperror.NewBadRequestError("Line item quantity must be positive")
			}
			unitPrice := toCents(item.UnitPrice)
			totalPrice := toCents(item.Quantity * item.UnitPrice)
			subTotal += totalPrice
			items = append(items, entity.InvoiceLineItem{
				InvoiceID:   invoice.ID,
				Description: item.Description,
				Category:    item.Category,
				Quantity:    item.Quantity,
				UnitPrice:   unitPrice,
				TotalPrice:  totalPrice,
			})
		}

		var taxRate *entity.TaxRate
		if input.TaxRateID != nil {
			taxRate, err = s.taxRateRepo.GetByID(ctx, *input.TaxRateID)
			if err != nil {
				return nil, err
			}
			if taxRate == nil {
				return nil, apperror.NewNotFoundError("Tax rate")
			}
		}

		invoice.LineItems = items
		invoice.SubTotal = subTotal
		invoice.TaxAmount = taxRate.Apply(subTotal)
		invoice.Total = subTotal + invoice.TaxAmount
		invoice.AmountDue = invoice.Total - invoice.CreditApplied
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	return s.invoiceRepo.GetByID(ctx, invoice.ID)
}

// DeleteInvoice deletes a draft invoice
func (s *InvoiceService) DeleteInvoice(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if invoice == nil {
		return apperror.NewNotFoundError("Invoice")
	}

	if !isSuperAdmin && invoice.UserID != userID {
		return apperror.ErrForbidden
	}
	if invoice.Status != enum.InvoiceStatusDraft {
		return apperror.NewConflictError("Only draft invoices can be deleted")
	}

	return s.invoiceRepo.Delete(ctx, id)
}

// SendInvoice transitions a draft invoice to sent
func (s *InvoiceService) SendInvoice(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if !isSuperAdmin && invoice.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	if invoice.Status != enum.InvoiceStatusDraft {
		return nil, apperror.NewConflictError("Only draft invoices can be sent")
	}

	invoice.Status = enum.InvoiceStatusSent
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.notifyClient(ctx, invoice)
	return invoice, nil
}

// notifyClient emails the client about an issued invoice. Failures are
// logged, never surfaced; the status transition has already committed.
func (s *InvoiceService) notifyClient(ctx context.Context, invoice *entity.Invoice) {
	if s.emailService == nil {
		return
	}

	client, err := s.clientRepo.GetByID(ctx, invoice.ClientID)
	if err != nil || client == nil {
		return
	}
	to := client.Email
	if client.BillingEmail != nil && *client.BillingEmail != "" {
		to = client.BillingEmail
	}
	if to == nil || *to == "" {
		return
	}

	if err := s.emailService.SendInvoiceEmail(*to, client.Name, invoice.Number, invoice.Total, client.Currency, invoice.DueDate); err != nil {
		s.log.Warn("invoice notification failed",
			zap.String("invoice_number", invoice.Number),
			zap.Error(err))
	}
}

// MarkInvoicePaid marks an open invoice as paid
func (s *InvoiceService) MarkInvoicePaid(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if !isSuperAdmin && invoice.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	if !invoice.Status.IsOpen() {
		return nil, apperror.NewConflictError("Only sent or overdue invoices can be marked paid")
	}

	now := time.Now()
	invoice.Status = enum.InvoiceStatusPaid
	invoice.AmountDue = 0
	invoice.PaidAt = &now
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// VoidInvoice voids an invoice that has not been paid
func (s *InvoiceService) VoidInvoice(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if !isSuperAdmin && invoice.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	if invoice.Status == enum.InvoiceStatusPaid {
		return nil, apperror.NewConflictError("Paid invoices cannot be voided")
	}

	invoice.Status = enum.InvoiceStatusVoid
	invoice.AmountDue = 0
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// MarkOverdueInvoices flags open invoices past their due date. Returns how many changed.
func (s *InvoiceService) MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int, error) {
	invoices, err := s.invoiceRepo.ListOverdue(ctx, asOf)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range invoices {
		if invoices[i].Status == enum.InvoiceStatusOverdue {
			continue
		}
		invoices[i].Status = enum.InvoiceStatusOverdue
		if err := s.invoiceRepo.Update(ctx, &invoices[i]); err != nil {
			s.log.Warn("failed to mark invoice overdue",
				zap.String("invoice", invoices[i].Number),
				zap.Error(err))
			continue
		}
		changed++
	}
	return changed, nil
}
