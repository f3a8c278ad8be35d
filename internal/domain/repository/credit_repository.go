package repository

import (
	"context"
	"time"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
)

// CreditRepository defines the interface for credit note data operations
type CreditRepository interface {
	Create(ctx context.Context, credit *entity.Credit) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Credit, error)
	Update(ctx context.Context, credit *entity.Credit) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns credits with page-based pagination. If skipUserFilter is true, returns all credits.
	List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, clientID *uuid.UUID, skipUserFilter bool) ([]entity.Credit, int64, error)
	// ListUsableByClient returns a client's credits that still have balance, oldest first
	ListUsableByClient(ctx context.Context, clientID uuid.UUID, asOf time.Time) ([]entity.Credit, error)
	// CreateApplication records a credit application inside the current transaction
	CreateApplication(ctx context.Context, application *entity.CreditApplication) error
	// ListApplicationsByCredit returns the application history for a credit
	ListApplicationsByCredit(ctx context.Context, creditID uuid.UUID) ([]entity.CreditApplication, error)
	// ListApplicationsByInvoice returns credits applied to an invoice
	ListApplicationsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.CreditApplication, error)
}
