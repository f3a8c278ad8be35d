package repository

import (
	"context"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
)

// TemplateRepository defines the interface for invoice template data operations
type TemplateRepository interface {
	Create(ctx context.Context, template *entity.InvoiceTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceTemplate, error)
	GetDefault(ctx context.Context, userID uuid.UUID) (*entity.InvoiceTemplate, error)
	Update(ctx context.Context, template *entity.InvoiceTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns templates with page-based pagination. If skipUserFilter is true, returns all templates.
	List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, skipUserFilter bool) ([]entity.InvoiceTemplate, int64, error)
	// ClearDefault unsets the default flag on all of a user's templates
	ClearDefault(ctx context.Context, userID uuid.UUID) error
}

// DocumentRepository defines the interface for document metadata operations
type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns documents with page-based pagination, optionally filtered by client or invoice
	List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, clientID, invoiceID *uuid.UUID, skipUserFilter bool) ([]entity.Document, int64, error)
	// ListAfter returns up to limit+1 documents older than the cursor position, newest first
	ListAfter(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int, clientID, invoiceID *uuid.UUID, skipUserFilter bool) ([]entity.Document, error)
}
