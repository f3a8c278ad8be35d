package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	infraRepo "github.com/billflow/billflow-api/internal/infrastructure/repository"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/billflow/billflow-api/pkg/storage"
)

func newDocumentService(db *gorm.DB) *DocumentService {
	return NewDocumentService(
		infraRepo.NewDocumentRepository(db),
		infraRepo.NewClientRepository(db),
		infraRepo.NewInvoiceRepository(db),
		storage.NewNullStorage(),
	)
}

func seedDocuments(t *testing.T, db *gorm.DB, userID uuid.UUID, n int) []entity.Document {
	t.Helper()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	docs := make([]entity.Document, 0, n)
	for i := 0; i < n; i++ {
		doc := entity.Document{
			UserID:      userID,
			Type:        enum.DocumentTypeOther,
			FileName:    fmt.Sprintf("statement-%d.pdf", i+1),
			StoragePath: fmt.Sprintf("documents/%s/%d.pdf", userID, i+1),
			ContentType: "application/pdf",
			SizeBytes:   1024,
		}
		require.NoError(t, db.Create(&doc).Error)
		// Space creation times apart so keyset ordering is deterministic
		require.NoError(t, db.Model(&doc).Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
		docs = append(docs, doc)
	}
	return docs
}

func TestListDocumentsByCursor(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	svc := newDocumentService(db)
	ctx := context.Background()

	seeded := seedDocuments(t, db, user.ID, 5)

	params := &pagination.CursorParams{Limit: 2}
	page1, err := svc.ListDocumentsByCursor(ctx, user.ID, params, nil, nil, false)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.Pagination.HasNext)
	assert.False(t, page1.Pagination.HasPrev)
	// Newest first
	assert.Equal(t, seeded[4].ID, page1.Items[0].ID)
	assert.Equal(t, seeded[3].ID, page1.Items[1].ID)
	require.NotNil(t, page1.Pagination.NextCursor)

	params = &pagination.CursorParams{Limit: 2, Cursor: *page1.Pagination.NextCursor}
	page2, err := svc.ListDocumentsByCursor(ctx, user.ID, params, nil, nil, false)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.True(t, page2.Pagination.HasNext)
	assert.True(t, page2.Pagination.HasPrev)
	assert.Equal(t, seeded[2].ID, page2.Items[0].ID)
	assert.Equal(t, seeded[1].ID, page2.Items[1].ID)

	params = &pagination.CursorParams{Limit: 2, Cursor: *page2.Pagination.NextCursor}
	page3, err := svc.ListDocumentsByCursor(ctx, user.ID, params, nil, nil, false)
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.Pagination.HasNext)
	assert.Equal(t, seeded[0].ID, page3.Items[0].ID)
}

func TestListDocumentsByCursorRejectsBadCursor(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	svc := newDocumentService(db)

	params := &pagination.CursorParams{Limit: 2, Cursor: "not-base64!"}
	_, err := svc.ListDocumentsByCursor(context.Background(), user.ID, params, nil, nil, false)
	assert.Error(t, err)
}

func TestListDocumentsFilteredByClient(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newDocumentService(db)
	ctx := context.Background()

	seedDocuments(t, db, user.ID, 2)
	attached := entity.Document{
		UserID:      user.ID,
		ClientID:    &client.ID,
		Type:        enum.DocumentTypeContract,
		FileName:    "contract.pdf",
		StoragePath: "documents/contract.pdf",
	}
	require.NoError(t, db.Create(&attached).Error)

	result, err := svc.ListDocuments(ctx, user.ID, pagination.DefaultPagination(), &client.ID, nil, false)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "contract.pdf", result.Items[0].FileName)

	all, err := svc.ListDocuments(ctx, user.ID, pagination.DefaultPagination(), nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.Total)
}

func TestUploadDocumentValidation(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	svc := newDocumentService(db)
	ctx := context.Background()

	_, err := svc.UploadDocument(ctx, &UploadDocumentInput{
		UserID:  user.ID,
		Content: strings.NewReader("x"),
	})
	assert.Error(t, err)

	missing := uuid.New()
	_, err = svc.UploadDocument(ctx, &UploadDocumentInput{
		UserID:   user.ID,
		ClientID: &missing,
		FileName: "orphan.pdf",
		Content:  strings.NewReader("x"),
	})
	assert.Error(t, err)
}
