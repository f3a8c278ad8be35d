package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/apperror"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditService handles credit notes and their application to invoices
type CreditService struct {
	creditRepo  repository.CreditRepository
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	log         *zap.Logger
}

// NewCreditService creates a new credit service
func NewCreditService(
	creditRepo repository.CreditRepository,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	log *zap.Logger,
) *CreditService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CreditService{
		creditRepo:  creditRepo,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		log:         log,
	}
}

// CreateCreditInput represents the create credit input
type CreateCreditInput struct {
	UserID    uuid.UUID
	ClientID  uuid.UUID
	Amount    float64
	Reason    string
	ExpiresAt *time.Time
}

// CreateCredit issues a new credit note to a client
func (s *CreditService) CreateCredit(ctx context.Context, input *CreateCreditInput) (*entity.Credit, error) {
	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Credit amount must be positive")
	}

	amount := toCents(input.Amount)
	credit := &entity.Credit{
		UserID:    input.UserID,
		ClientID:  input.ClientID,
		Reference: newCreditReference(),
		Reason:    input.Reason,
		Status:    enum.CreditStatusAvailable,
		Amount:    amount,
		Remaining: amount,
		ExpiresAt: input.ExpiresAt,
	}

	if err := s.creditRepo.Create(ctx, credit); err != nil {
		return nil, err
	}

	return credit, nil
}

// newCreditReference builds a unique human-readable credit reference
func newCreditReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("CR-%s-%s", time.Now().Format("20060102"), suffix)
}

// GetCredit retrieves a credit by ID
func (s *CreditService) GetCredit(ctx context.Context, id uuid.UUID) (*entity.Credit, error) {
	credit, err := s.creditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, apperror.NewNotFoundError("Credit")
	}
	return credit, nil
}

// ListCredits lists credits. If isSuperAdmin is true, returns all credits.
func (s *CreditService) ListCredits(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, clientID *uuid.UUID, isSuperAdmin bool) (*pagination.PaginatedResult[entity.Credit], error) {
	credits, total, err := s.creditRepo.List(ctx, userID, params, clientID, isSuperAdmin)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(credits, pag), nil
}

// ApplyCreditInput represents a manual credit application
type ApplyCreditInput struct {
	UserID       uuid.UUID
	IsSuperAdmin bool
	CreditID     uuid.UUID
	InvoiceID    uuid.UUID
	// Amount is the decimal amount to apply. Zero means apply as much as possible.
	Amount float64
}

// ApplyCredit applies part of a credit to an open invoice and reduces both balances
func (s *CreditService) ApplyCredit(ctx context.Context, input *ApplyCreditInput) (*entity.CreditApplication, error) {
	credit, err := s.creditRepo.GetByID(ctx, input.CreditID)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, apperror.NewNotFoundError("Credit")
	}
	if !input.IsSuperAdmin && credit.UserID != input.UserID {
		return nil, apperror.ErrForbidden
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	now := time.Now()
	if !credit.IsUsable(now) {
		return nil, apperror.NewConflictError("Credit has no usable balance")
	}
	if credit.ClientID != invoice.ClientID {
		return nil, apperror.NewConflictError("Credit and invoice belong to different clients")
	}
	if !invoice.Status.IsOpen() {
		return nil, apperror.NewConflictError("Credits can only be applied to sent or overdue invoices")
	}

	amount := toCents(input.Amount)
	if amount == 0 {
		amount = credit.Remaining
		if invoice.AmountDue < amount {
			amount = invoice.AmountDue
		}
	}
	if amount <= 0 {
		return nil, apperror.NewBadRequestError("Application amount must be positive")
	}
	if amount > credit.Remaining {
		return nil, apperror.NewConflictError("Application exceeds remaining credit balance")
	}
	if amount > invoice.AmountDue {
		return nil, apperror.NewConflictError("Application exceeds invoice balance")
	}

	application := &entity.CreditApplication{
		CreditID:  credit.ID,
		InvoiceID: invoice.ID,
		Amount:    amount,
	}
	if err := s.creditRepo.CreateApplication(ctx, application); err != nil {
		return nil, err
	}

	credit.Remaining -= amount
	if credit.Remaining == 0 {
		credit.Status = enum.CreditStatusFullyApplied
	} else {
		credit.Status = enum.CreditStatusPartiallyApplied
	}
	if err := s.creditRepo.Update(ctx, credit); err != nil {
		return nil, err
	}

	invoice.CreditApplied += amount
	invoice.AmountDue -= amount
	if invoice.AmountDue == 0 {
		invoice.Status = enum.InvoiceStatusPaid
		invoice.PaidAt = &now
	}
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	return application, nil
}

// ApplyAvailableCredits applies a client's usable credits to an invoice,
// oldest credit first, until the invoice is settled or credits run out.
func (s *CreditService) ApplyAvailableCredits(ctx context.Context, userID, invoiceID uuid.UUID, isSuperAdmin bool) ([]entity.CreditApplication, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	credits, err := s.creditRepo.ListUsableByClient(ctx, invoice.ClientID, time.Now())
	if err != nil {
		return nil, err
	}

	var applied []entity.CreditApplication
	for i := range credits {
		if invoice.AmountDue <= 0 {
			break
		}
		application, err := s.ApplyCredit(ctx, &ApplyCreditInput{
			UserID:       userID,
			IsSuperAdmin: isSuperAdmin,
			CreditID:     credits[i].ID,
			InvoiceID:    invoiceID,
		})
		if err != nil {
			s.log.Warn("credit application failed",
				zap.String("credit", credits[i].Reference),
				zap.Error(err))
			continue
		}
		applied = append(applied, *application)

		invoice, err = s.invoiceRepo.GetByID(ctx, invoiceID)
		if err != nil {
			return applied, err
		}
	}
	return applied, nil
}

// ReconcileCredit recomputes a credit's remaining balance and status from its
// application history, correcting any drift in the stored values.
func (s *CreditService) ReconcileCredit(ctx context.Context, id uuid.UUID) (*entity.Credit, error) {
	credit, err := s.creditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, apperror.NewNotFoundError("Credit")
	}

	applications, err := s.creditRepo.ListApplicationsByCredit(ctx, id)
	if err != nil {
		return nil, err
	}

	var applied int64
	for _, a := range applications {
		applied += a.Amount
	}

	remaining := credit.Amount - applied
	if remaining < 0 {
		remaining = 0
	}

	status := enum.CreditStatusAvailable
	switch {
	case credit.ExpiresAt != nil && time.Now().After(*credit.ExpiresAt) && remaining > 0:
		status = enum.CreditStatusExpired
	case remaining == 0:
		status = enum.CreditStatusFullyApplied
	case applied > 0:
		status = enum.CreditStatusPartiallyApplied
	}

	if credit.Remaining != remaining || credit.Status != status {
		credit.Remaining = remaining
		credit.Status = status
		if err := s.creditRepo.Update(ctx, credit); err != nil {
			return nil, err
		}
	}

	return credit, nil
}

// DeleteCredit deletes a credit that has never been applied
func (s *CreditService) DeleteCredit(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
	credit, err := s.creditRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if credit == nil {
		return apperror.NewNotFoundError("Credit")
	}

	if !isSuperAdmin && credit.UserID != userID {
		return apperror.ErrForbidden
	}
	if credit.Remaining != credit.Amount {
		return apperror.NewConflictError("Applied credits cannot be deleted")
	}

	return s.creditRepo.Delete(ctx, id)
}
