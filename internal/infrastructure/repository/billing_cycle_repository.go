package repository

import (
	"context"
	"errors"
	"time"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	domainRepo "github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type billingCycleRepository struct {
	db *gorm.DB
}

// NewBillingCycleRepository creates a new billing cycle repository
func NewBillingCycleRepository(db *gorm.DB) domainRepo.BillingCycleRepository {
	return &billingCycleRepository{db: db}
}

func (r *billingCycleRepository) Create(ctx context.Context, cycle *entity.BillingCycle) error {
	return r.db.WithContext(ctx).Create(cycle).Error
}

func (r *billingCycleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.BillingCycle, error) {
	var cycle entity.BillingCycle
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("TaxRate").
		First(&cycle, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cycle, err
}

func (r *billingCycleRepository) Update(ctx context.Context, cycle *entity.BillingCycle) error {
	return r.db.WithContext(ctx).Save(cycle).Error
}

func (r *billingCycleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.BillingCycle{}, "id = ?", id).Error
}

func (r *billingCycleRepository) List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, clientID *uuid.UUID, skipUserFilter bool) ([]entity.BillingCycle, int64, error) {
	var cycles []entity.BillingCycle
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.BillingCycle{})
	if !skipUserFilter {
		query = query.Where("user_id = ?", userID)
	}
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Client").
		Order("next_billing_at ASC").
		Find(&cycles).Error

	return cycles, total, err
}

func (r *billingCycleRepository) ListDue(ctx context.Context, asOf time.Time) ([]entity.BillingCycle, error) {
	var cycles []entity.BillingCycle
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("TaxRate").
		Where("status = ?", enum.CycleStatusActive).
		Where("next_billing_at <= ?", asOf).
		Order("next_billing_at ASC").
		Find(&cycles).Error
	return cycles, err
}
