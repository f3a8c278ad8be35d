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

type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new credit repository
func NewCreditRepository(db *gorm.DB) domainRepo.CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) Create(ctx context.Context, credit *entity.Credit) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

func (r *creditRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Credit, error) {
	var credit entity.Credit
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Applications").
		First(&credit, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &credit, err
}

func (r *creditRepository) Update(ctx context.Context, credit *entity.Credit) error {
	return r.db.WithContext(ctx).Save(credit).Error
}

func (r *creditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Credit{}, "id = ?", id).Error
}

func (r *creditRepository) List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, clientID *uuid.UUID, skipUserFilter bool) ([]entity.Credit, int64, error) {
	var credits []entity.Credit
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Credit{})
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
		Order("created_at DESC").
		Find(&credits).Error

	return credits, total, err
}

func (r *creditRepository) ListUsableByClient(ctx context.Context, clientID uuid.UUID, asOf time.Time) ([]entity.Credit, error) {
	var credits []entity.Credit
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("remaining > 0").
		Where("status IN ?", []enum.CreditStatus{enum.CreditStatusAvailable, enum.CreditStatusPartiallyApplied}).
		Where("expires_at IS NULL OR expires_at >= ?", asOf).
		Order("created_at ASC").
		Find(&credits).Error
	return credits, err
}

func (r *creditRepository) CreateApplication(ctx context.Context, application *entity.CreditApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *creditRepository) ListApplicationsByCredit(ctx context.Context, creditID uuid.UUID) ([]entity.CreditApplication, error) {
	var applications []entity.CreditApplication
	err := r.db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Order("created_at ASC").
		Find(&applications).Error
	return applications, err
}

func (r *creditRepository) ListApplicationsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.CreditApplication, error) {
	var applications []entity.CreditApplication
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&applications).Error
	return applications, err
}
