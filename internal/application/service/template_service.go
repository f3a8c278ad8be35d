package service

import (
	"context"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/apperror"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/billflow/billflow-api/pkg/renderer"
	"github.com/google/uuid"
)

// TemplateService handles invoice template operations
type TemplateService struct {
	templateRepo repository.TemplateRepository
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo repository.TemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

// CreateTemplateInput represents the create template input
type CreateTemplateInput struct {
	UserID      uuid.UUID
	Name        string
	Description *string
	ParsedJSON  string
	IsDefault   bool
}

// CreateTemplate validates and stores a new invoice template
func (s *TemplateService) CreateTemplate(ctx context.Context, input *CreateTemplateInput) (*entity.InvoiceTemplate, error) {
	// Reject documents the renderer cannot parse
	if _, err := renderer.ParseTemplate([]byte(input.ParsedJSON)); err != nil {
		return nil, apperror.NewBadRequestError("Invalid template document: " + err.Error())
	}

	if input.IsDefault {
		if err := s.templateRepo.ClearDefault(ctx, input.UserID); err != nil {
			return nil, err
		}
	}

	template := &entity.InvoiceTemplate{
		UserID:      input.UserID,
		Name:        input.Name,
		Description: input.Description,
		ParsedJSON:  input.ParsedJSON,
		IsDefault:   input.IsDefault,
		Version:     1,
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, err
	}

	return template, nil
}

// GetTemplate retrieves a template by ID
func (s *TemplateService) GetTemplate(ctx context.Context, id uuid.UUID) (*entity.InvoiceTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, apperror.NewNotFoundError("Template")
	}
	return template, nil
}

// GetDefaultTemplate returns the user's default template, or nil when none is set
func (s *TemplateService) GetDefaultTemplate(ctx context.Context, userID uuid.UUID) (*entity.InvoiceTemplate, error) {
	return s.templateRepo.GetDefault(ctx, userID)
}

// ListTemplates lists templates. If isSuperAdmin is true, returns all templates.
func (s *TemplateService) ListTemplates(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, isSuperAdmin bool) (*pagination.PaginatedResult[entity.InvoiceTemplate], error) {
	templates, total, err := s.templateRepo.List(ctx, userID, params, isSuperAdmin)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(templates, pag), nil
}

// UpdateTemplateInput represents the update template input
type UpdateTemplateInput struct {
	UserID       uuid.UUID
	ID           uuid.UUID
	IsSuperAdmin bool
	Name         *string
	Description  *string
	ParsedJSON   *string
	IsDefault    *bool
}

// UpdateTemplate updates an existing template, bumping its version when the document changes
func (s *TemplateService) UpdateTemplate(ctx context.Context, input *UpdateTemplateInput) (*entity.InvoiceTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, apperror.NewNotFoundError("Template")
	}

	if !input.IsSuperAdmin && template.UserID != input.UserID {
		return nil, apperror.ErrForbidden
	}

	if input.Name != nil {
		template.Name = *input.Name
	}
	if input.Description != nil {
		template.Description = input.Description
	}
	if input.ParsedJSON != nil {
		if _, err := renderer.ParseTemplate([]byte(*input.ParsedJSON)); err != nil {
			return nil, apperror.NewBadRequestError("Invalid template document: " + err.Error())
		}
		if *input.ParsedJSON != template.ParsedJSON {
			template.Version++
		}
		template.ParsedJSON = *input.ParsedJSON
	}
	if input.IsDefault != nil {
		if *input.IsDefault && !template.IsDefault {
			if err := s.templateRepo.ClearDefault(ctx, template.UserID); err != nil {
				return nil, err
			}
		}
		template.IsDefault = *input.IsDefault
	}

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}

	return template, nil
}

// DeleteTemplate deletes a template
func (s *TemplateService) DeleteTemplate(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if template == nil {
		return apperror.NewNotFoundError("Template")
	}

	if !isSuperAdmin && template.UserID != userID {
		return apperror.ErrForbidden
	}

	return s.templateRepo.Delete(ctx, id)
}
