package repository

import (
	"context"
	"errors"

	"github.com/billflow/billflow-api/internal/domain/entity"
	domainRepo "github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type taxRateRepository struct {
	db *gorm.DB
}

// NewTaxRateRepository creates a new tax rate repository
func NewTaxRateRepository(db *gorm.DB) domainRepo.TaxRateRepository {
	return &taxRateRepository{db: db}
}

func (r *taxRateRepository) Create(ctx context.Context, rate *entity.TaxRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *taxRateRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.TaxRate, error) {
	var rate entity.TaxRate
	err := r.db.WithContext(ctx).First(&rate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rate, err
}

func (r *taxRateRepository) GetDefault(ctx context.Context, userID uuid.UUID) (*entity.TaxRate, error) {
	var rate entity.TaxRate
	err := r.db.WithContext(ctx).
		First(&rate, "user_id = ? AND is_default = ?", userID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rate, err
}

func (r *taxRateRepository) Update(ctx context.Context, rate *entity.TaxRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

func (r *taxRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.TaxRate{}, "id = ?", id).Error
}

func (r *taxRateRepository) List(ctx context.Context, userID uuid.UUID) ([]entity.TaxRate, error) {
	var rates []entity.TaxRate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&rates).Error
	return rates, err
}

func (r *taxRateRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.TaxRate{}).
		Where("user_id = ?", userID).
		Update("is_default", false).Error
}
