package service

import (
	"context"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/apperror"
	"github.com/google/uuid"
)

// TaxRateService handles tax rate operations
type TaxRateService struct {
	taxRateRepo repository.TaxRateRepository
}

// NewTaxRateService creates a new tax rate service
func NewTaxRateService(taxRateRepo repository.TaxRateRepository) *TaxRateService {
	return &TaxRateService{taxRateRepo: taxRateRepo}
}

// CreateTaxRateInput represents the create tax rate input
type CreateTaxRateInput struct {
	UserID     uuid.UUID
	Name       string
	Percentage float64
	Type       enum.TaxType
	Region     *string
	IsDefault  bool
}

// CreateTaxRate creates a new tax rate
func (s *TaxRateService) CreateTaxRate(ctx context.Context, input *CreateTaxRateInput) (*entity.TaxRate, error) {
	if input.Percentage < 0 || input.Percentage > 100 {
		return nil, apperror.NewBadRequestError("Tax percentage must be between 0 and 100")
	}

	if input.IsDefault {
		if err := s.taxRateRepo.ClearDefault(ctx, input.UserID); err != nil {
			return nil, err
		}
	}

	rate := &entity.TaxRate{
		UserID:     input.UserID,
		Name:       input.Name,
		Percentage: input.Percentage,
		Type:       input.Type,
		Region:     input.Region,
		IsDefault:  input.IsDefault,
	}

	if err := s.taxRateRepo.Create(ctx, rate); err != nil {
		return nil, err
	}

	return rate, nil
}

// GetTaxRate retrieves a tax rate by ID
func (s *TaxRateService) GetTaxRate(ctx context.Context, id uuid.UUID) (*entity.TaxRate, error) {
	rate, err := s.taxRateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, apperror.NewNotFoundError("Tax rate")
	}
	return rate, nil
}

// ListTaxRates lists a user's tax rates
func (s *TaxRateService) ListTaxRates(ctx context.Context, userID uuid.UUID) ([]entity.TaxRate, error) {
	return s.taxRateRepo.List(ctx, userID)
}

// UpdateTaxRateInput represents the update tax rate input
type UpdateTaxRateInput struct {
	UserID       uuid.UUID
	ID           uuid.UUID
	IsSuperAdmin bool
	Name         *string
	Percentage   *float64
	Type         *enum.TaxType
	Region       *string
	IsDefault    *bool
}

// UpdateTaxRate updates an existing tax rate
func (s *TaxRateService) UpdateTaxRate(ctx context.Context, input *UpdateTaxRateInput) (*entity.TaxRate, error) {
	rate, err := s.taxRateRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, apperror.NewNotFoundError("Tax rate")
	}

	if !input.IsSuperAdmin && rate.UserID != input.UserID {
		return nil, apperror.ErrForbidden
	}

	if input.Name != nil {
		rate.Name = *input.Name
	}
	if input.Percentage != nil {
		if *input.Percentage < 0 || *input.Percentage > 100 {
			return nil, apperror.NewBadRequestError("Tax percentage must be between 0 and 100")
		}
		rate.Percentage = *input.Percentage
	}
	if input.Type != nil {
		rate.Type = *input.Type
	}
	if input.Region != nil {
		rate.Region = input.Region
	}
	if input.IsDefault != nil {
		if *input.IsDefault && !rate.IsDefault {
			if err := s.taxRateRepo.ClearDefault(ctx, rate.UserID); err != nil {
				return nil, err
			}
		}
		rate.IsDefault = *input.IsDefault
	}

	if err := s.taxRateRepo.Update(ctx, rate); err != nil {
		return nil, err
	}

	return rate, nil
}

// DeleteTaxRate deletes a tax rate
func (s *TaxRateService) DeleteTaxRate(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
	rate, err := s.taxRateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rate == nil {
		return apperror.NewNotFoundError("Tax rate")
	}

	if !isSuperAdmin && rate.UserID != userID {
		return apperror.ErrForbidden
	}

	return s.taxRateRepo.Delete(ctx, id)
}
