package repository

import (
	"context"
	"errors"

	"github.com/billflow/billflow-api/internal/domain/entity"
	domainRepo "github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new invoice template repository
func NewTemplateRepository(db *gorm.DB) domainRepo.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *entity.InvoiceTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *templateRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceTemplate, error) {
	var template entity.InvoiceTemplate
	err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &template, err
}

func (r *templateRepository) GetDefault(ctx context.Context, userID uuid.UUID) (*entity.InvoiceTemplate, error) {
	var template entity.InvoiceTemplate
	err := r.db.WithContext(ctx).
		First(&template, "user_id = ? AND is_default = ?", userID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &template, err
}

func (r *templateRepository) Update(ctx context.Context, template *entity.InvoiceTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

func (r *templateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.InvoiceTemplate{}, "id = ?", id).Error
}

func (r *templateRepository) List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, skipUserFilter bool) ([]entity.InvoiceTemplate, int64, error) {
	var templates []entity.InvoiceTemplate
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InvoiceTemplate{})
	if !skipUserFilter {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&templates).Error

	return templates, total, err
}

func (r *templateRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.InvoiceTemplate{}).
		Where("user_id = ?", userID).
		Update("is_default", false).Error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) domainRepo.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *entity.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var document entity.Document
	err := r.db.WithContext(ctx).First(&document, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &document, err
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Document{}, "id = ?", id).Error
}

func (r *documentRepository) List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, clientID, invoiceID *uuid.UUID, skipUserFilter bool) ([]entity.Document, int64, error) {
	var documents []entity.Document
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Document{})
	if !skipUserFilter {
		query = query.Where("user_id = ?", userID)
	}
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}
	if invoiceID != nil {
		query = query.Where("invoice_id = ?", *invoiceID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&documents).Error

	return documents, total, err
}

func (r *documentRepository) ListAfter(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int, clientID, invoiceID *uuid.UUID, skipUserFilter bool) ([]entity.Document, error) {
	var documents []entity.Document

	query := r.db.WithContext(ctx).Model(&entity.Document{})
	if !skipUserFilter {
		query = query.Where("user_id = ?", userID)
	}
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}
	if invoiceID != nil {
		query = query.Where("invoice_id = ?", *invoiceID)
	}
	if cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	// Fetch one extra row so the caller can detect whether more pages exist
	err := query.Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&documents).Error

	return documents, err
}
