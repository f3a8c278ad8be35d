package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/apperror"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/billflow/billflow-api/pkg/storage"
	"github.com/google/uuid"
)

// maxDocumentSize caps uploads at 20 MiB
const maxDocumentSize = 20 << 20

// DocumentService handles document uploads attached to clients and invoices
type DocumentService struct {
	documentRepo repository.DocumentRepository
	clientRepo   repository.ClientRepository
	invoiceRepo  repository.InvoiceRepository
	store        storage.Storage
}

// NewDocumentService creates a new document service
func NewDocumentService(
	documentRepo repository.DocumentRepository,
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
	store storage.Storage,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		clientRepo:   clientRepo,
		invoiceRepo:  invoiceRepo,
		store:        store,
	}
}

// UploadDocumentInput represents a document upload
type UploadDocumentInput struct {
	UserID      uuid.UUID
	ClientID    *uuid.UUID
	InvoiceID   *uuid.UUID
	Type        enum.DocumentType
	FileName    string
	ContentType string
	SizeBytes   int64
	Content     io.Reader
}

// UploadDocument stores the file and records its metadata
func (s *DocumentService) UploadDocument(ctx context.Context, input *UploadDocumentInput) (*entity.Document, error) {
	if input.FileName == "" {
		return nil, apperror.NewBadRequestError("File name is required")
	}
	if input.SizeBytes > maxDocumentSize {
		return nil, apperror.NewBadRequestError("File exceeds the 20MB upload limit")
	}

	if input.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, apperror.NewNotFoundError("Client")
		}
	}
	if input.InvoiceID != nil {
		invoice, err := s.invoiceRepo.GetByID(ctx, *input.InvoiceID)
		if err != nil {
			return nil, err
		}
		if invoice == nil {
			return nil, apperror.NewNotFoundError("Invoice")
		}
	}

	id := uuid.New()
	key := fmt.Sprintf("documents/%s/%s%s", input.UserID, id, filepath.Ext(input.FileName))
	path, err := s.store.Save(key, io.LimitReader(input.Content, maxDocumentSize))
	if err != nil {
		return nil, err
	}

	document := &entity.Document{
		ID:          id,
		UserID:      input.UserID,
		ClientID:    input.ClientID,
		InvoiceID:   input.InvoiceID,
		Type:        input.Type,
		FileName:    input.FileName,
		StoragePath: path,
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
	}

	if err := s.documentRepo.Create(ctx, document); err != nil {
		// Remove the orphaned file so storage and metadata stay in sync
		_ = s.store.Delete(key)
		return nil, err
	}

	return document, nil
}

// GetDocument retrieves document metadata by ID
func (s *DocumentService) GetDocument(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) (*entity.Document, error) {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apperror.NewNotFoundError("Document")
	}
	if !isSuperAdmin && document.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	return document, nil
}

// OpenDocument returns the stored file content for download
func (s *DocumentService) OpenDocument(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) (*entity.Document, io.ReadCloser, error) {
	document, err := s.GetDocument(ctx, userID, id, isSuperAdmin)
	if err != nil {
		return nil, nil, err
	}

	key := storageKey(document)
	rc, err := s.store.Open(key)
	if err != nil {
		return nil, nil, apperror.NewNotFoundError("Document file")
	}
	return document, rc, nil
}

// storageKey rebuilds the storage key from document metadata
func storageKey(d *entity.Document) string {
	return fmt.Sprintf("documents/%s/%s%s", d.UserID, d.ID, filepath.Ext(d.FileName))
}

// ListDocuments lists documents with optional client and invoice filters
func (s *DocumentService) ListDocuments(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, clientID, invoiceID *uuid.UUID, isSuperAdmin bool) (*pagination.PaginatedResult[entity.Document], error) {
	documents, total, err := s.documentRepo.List(ctx, userID, params, clientID, invoiceID, isSuperAdmin)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(documents, pag), nil
}

// ListDocumentsByCursor lists documents with keyset pagination, newest first
func (s *DocumentService) ListDocumentsByCursor(ctx context.Context, userID uuid.UUID, params *pagination.CursorParams, clientID, invoiceID *uuid.UUID, isSuperAdmin bool) (*pagination.CursorPaginatedResult[entity.Document], error) {
	params.Validate()

	cursor, err := params.DecodeCursor()
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}

	documents, err := s.documentRepo.ListAfter(ctx, userID, cursor, params.Limit, clientID, invoiceID, isSuperAdmin)
	if err != nil {
		return nil, err
	}

	pag, items := pagination.NewCursorPagination(documents, params.Limit,
		func(d entity.Document) string { return d.ID.String() },
		func(d entity.Document) time.Time { return d.CreatedAt })
	pag.HasPrev = params.Cursor != ""

	return pagination.NewCursorPaginatedResult(items, pag), nil
}

// DeleteDocument removes a document and its stored file
func (s *DocumentService) DeleteDocument(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
	document, err := s.GetDocument(ctx, userID, id, isSuperAdmin)
	if err != nil {
		return err
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(storageKey(document))
}
