package repository

import (
	"context"
	"time"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	ClientID *uuid.UUID
	Status   *enum.InvoiceStatus
	From     *time.Time
	To       *time.Time
}

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create persists the invoice together with its line items
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns invoices with page-based pagination. If skipUserFilter is true, returns all invoices.
	List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, filter *InvoiceFilter, skipUserFilter bool) ([]entity.Invoice, int64, error)
	// ListOverdue returns open invoices whose due date has passed
	ListOverdue(ctx context.Context, asOf time.Time) ([]entity.Invoice, error)
	// CountForYear returns how many invoices exist for a calendar year, used for numbering
	CountForYear(ctx context.Context, userID uuid.UUID, year int) (int64, error)
	// ExistsForCyclePeriod reports whether a cycle already produced an invoice for a period start
	ExistsForCyclePeriod(ctx context.Context, cycleID uuid.UUID, periodStart time.Time) (bool, error)
}
