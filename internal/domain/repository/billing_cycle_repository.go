package repository

import (
	"context"
	"time"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
)

// BillingCycleRepository defines the interface for billing cycle data operations
type BillingCycleRepository interface {
	Create(ctx context.Context, cycle *entity.BillingCycle) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.BillingCycle, error)
	Update(ctx context.Context, cycle *entity.BillingCycle) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns billing cycles with page-based pagination. If skipUserFilter is true, returns all cycles.
	List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, clientID *uuid.UUID, skipUserFilter bool) ([]entity.BillingCycle, int64, error)
	// ListDue returns active cycles whose next billing date is at or before the given time
	ListDue(ctx context.Context, asOf time.Time) ([]entity.BillingCycle, error)
}
