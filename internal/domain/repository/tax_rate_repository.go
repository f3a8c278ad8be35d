package repository

import (
	"context"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/google/uuid"
)

// TaxRateRepository defines the interface for tax rate data operations
type TaxRateRepository interface {
	Create(ctx context.Context, rate *entity.TaxRate) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.TaxRate, error)
	GetDefault(ctx context.Context, userID uuid.UUID) (*entity.TaxRate, error)
	Update(ctx context.Context, rate *entity.TaxRate) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]entity.TaxRate, error)
	// ClearDefault unsets the default flag on all of a user's tax rates
	ClearDefault(ctx context.Context, userID uuid.UUID) error
}
