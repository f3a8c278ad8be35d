package service

import (
	"context"
	"time"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/apperror"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BillingCycleService handles recurring billing schedules
type BillingCycleService struct {
	cycleRepo   repository.BillingCycleRepository
	clientRepo  repository.ClientRepository
	invoiceRepo repository.InvoiceRepository
	invoiceSvc  *InvoiceService
	log         *zap.Logger
}

// NewBillingCycleService creates a new billing cycle service
func NewBillingCycleService(
	cycleRepo repository.BillingCycleRepository,
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
	invoiceSvc *InvoiceService,
	log *zap.Logger,
) *BillingCycleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BillingCycleService{
		cycleRepo:   cycleRepo,
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		invoiceSvc:  invoiceSvc,
		log:         log,
	}
}

// CreateBillingCycleInput represents the create billing cycle input
type CreateBillingCycleInput struct {
	UserID      uuid.UUID
	ClientID    uuid.UUID
	TaxRateID   *uuid.UUID
	TemplateID  *uuid.UUID
	Name        string
	Frequency   enum.BillingFrequency
	Amount      float64
	Description string
	StartDate   time.Time
	DueDays     int
}

// CreateBillingCycle creates a new recurring billing cycle
func (s *BillingCycleService) CreateBillingCycle(ctx context.Context, input *CreateBillingCycleInput) (*entity.BillingCycle, error) {
	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Billing amount must be positive")
	}
	dueDays := input.DueDays
	if dueDays <= 0 {
		dueDays = 30
	}

	cycle := &entity.BillingCycle{
		UserID:        input.UserID,
		ClientID:      input.ClientID,
		TaxRateID:     input.TaxRateID,
		TemplateID:    input.TemplateID,
		Name:          input.Name,
		Frequency:     input.Frequency,
		Status:        enum.CycleStatusActive,
		Amount:        toCents(input.Amount),
		Description:   input.Description,
		StartDate:     input.StartDate,
		NextBillingAt: input.StartDate,
		DueDays:       dueDays,
	}

	if err := s.cycleRepo.Create(ctx, cycle); err != nil {
		return nil, err
	}

	return cycle, nil
}

// GetBillingCycle retrieves a billing cycle by ID
func (s *BillingCycleService) GetBillingCycle(ctx context.Context, id uuid.UUID) (*entity.BillingCycle, error) {
	cycle, err := s.cycleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, apperror.NewNotFoundError("Billing cycle")
	}
	return cycle, nil
}

// ListBillingCycles lists billing cycles. If isSuperAdmin is true, returns all cycles.
func (s *BillingCycleService) ListBillingCycles(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, clientID *uuid.UUID, isSuperAdmin bool) (*pagination.PaginatedResult[entity.BillingCycle], error) {
	cycles, total, err := s.cycleRepo.List(ctx, userID, params, clientID, isSuperAdmin)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(cycles, pag), nil
}

// UpdateBillingCycleInput represents the update billing cycle input
type UpdateBillingCycleInput struct {
	UserID       uuid.UUID
	ID           uuid.UUID
	IsSuperAdmin bool
	TaxRateID    *uuid.UUID
	TemplateID   *uuid.UUID
	Name         *string
	Frequency    *enum.BillingFrequency
	Amount       *float64
	Description  *string
	DueDays      *int
}

// UpdateBillingCycle updates an existing billing cycle
func (s *BillingCycleService) UpdateBillingCycle(ctx context.Context, input *UpdateBillingCycleInput) (*entity.BillingCycle, error) {
	cycle, err := s.cycleRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, apperror.NewNotFoundError("Billing cycle")
	}

	if !input.IsSuperAdmin && cycle.UserID != input.UserID {
		return nil, apperror.ErrForbidden
	}
	if cycle.Status == enum.CycleStatusEnded {
		return nil, apperror.NewConflictError("Ended billing cycles cannot be edited")
	}

	if input.Name != nil {
		cycle.Name = *input.Name
	}
	if input.Frequency != nil {
		cycle.Frequency = *input.Frequency
	}
	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, apperror.NewBadRequestError("Billing amount must be positive")
		}
		cycle.Amount = toCents(*input.Amount)
	}
	if input.Description != nil {
		cycle.Description = *input.Description
	}
	if input.TaxRateID != nil {
		cycle.TaxRateID = input.TaxRateID
	}
	if input.TemplateID != nil {
		cycle.TemplateID = input.TemplateID
	}
	if input.DueDays != nil && *input.DueDays > 0 {
		cycle.DueDays = *input.DueDays
	}

	if err := s.cycleRepo.Update(ctx, cycle); err != nil {
		return nil, err
	}

	return cycle, nil
}

// setStatus transitions a cycle between active, paused and ended
func (s *BillingCycleService) setStatus(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool, status enum.CycleStatus) (*entity.BillingCycle, error) {
	cycle, err := s.cycleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, apperror.NewNotFoundError("Billing cycle")
	}
	if !isSuperAdmin && cycle.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	if cycle.Status == enum.CycleStatusEnded {
		return nil, apperror.NewConflictError("Ended billing cycles cannot change status")
	}

	cycle.Status = status
	if err := s.cycleRepo.Update(ctx, cycle); err != nil {
		return nil, err
	}
	return cycle, nil
}

// PauseBillingCycle pauses invoice generation for a cycle
func (s *BillingCycleService) PauseBillingCycle(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) (*entity.BillingCycle, error) {
	return s.setStatus(ctx, userID, id, isSuperAdmin, enum.CycleStatusPaused)
}

// ResumeBillingCycle resumes a paused cycle
func (s *BillingCycleService) ResumeBillingCycle(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) (*entity.BillingCycle, error) {
	return s.setStatus(ctx, userID, id, isSuperAdmin, enum.CycleStatusActive)
}

// EndBillingCycle permanently ends a cycle
func (s *BillingCycleService) EndBillingCycle(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) (*entity.BillingCycle, error) {
	return s.setStatus(ctx, userID, id, isSuperAdmin, enum.CycleStatusEnded)
}

// GenerateDueInvoices creates invoices for all cycles due at the given time.
// Generation is idempotent per cycle and billing period, so re-running for the
// same period never duplicates invoices. Returns the created invoices.
func (s *BillingCycleService) GenerateDueInvoices(ctx context.Context, asOf time.Time) ([]entity.Invoice, error) {
	cycles, err := s.cycleRepo.ListDue(ctx, asOf)
	if err != nil {
		return nil, err
	}

	var created []entity.Invoice
	for i := range cycles {
		invoice, err := s.generateForCycle(ctx, &cycles[i], asOf)
		if err != nil {
			s.log.Warn("billing cycle generation failed",
				zap.String("cycle", cycles[i].Name),
				zap.Error(err))
			continue
		}
		if invoice != nil {
			created = append(created, *invoice)
		}
	}
	return created, nil
}

// generateForCycle produces one invoice for the cycle's current period and
// advances the next billing date. A nil invoice means the period was already billed.
func (s *BillingCycleService) generateForCycle(ctx context.Context, cycle *entity.BillingCycle, asOf time.Time) (*entity.Invoice, error) {
	periodStart := cycle.NextBillingAt
	periodEnd := cycle.Frequency.Next(periodStart).AddDate(0, 0, -1)

	exists, err := s.invoiceRepo.ExistsForCyclePeriod(ctx, cycle.ID, periodStart)
	if err != nil {
		return nil, err
	}

	var invoice *entity.Invoice
	if !exists {
		notes := cycle.Description
		input := &CreateInvoiceInput{
			UserID:         cycle.UserID,
			ClientID:       cycle.ClientID,
			BillingCycleID: &cycle.ID,
			TemplateID:     cycle.TemplateID,
			TaxRateID:      cycle.TaxRateID,
			IssueDate:      periodStart,
			DueDate:        periodStart.AddDate(0, 0, cycle.DueDays),
			PeriodStart:    &periodStart,
			PeriodEnd:      &periodEnd,
			Items: []InvoiceItemInput{{
				Description: cycle.Name,
				Quantity:    1,
				UnitPrice:   float64(cycle.Amount) / 100,
			}},
		}
		if notes != "" {
			input.Notes = &notes
		}

		invoice, err = s.invoiceSvc.CreateInvoice(ctx, input)
		if err != nil {
			return nil, err
		}
	}

	cycle.NextBillingAt = cycle.Frequency.Next(periodStart)
	if err := s.cycleRepo.Update(ctx, cycle); err != nil {
		return nil, err
	}

	return invoice, nil
}
