package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	infraRepo "github.com/billflow/billflow-api/internal/infrastructure/repository"
	"github.com/billflow/billflow-api/pkg/apperror"
)

func newInvoiceService(db *gorm.DB) *InvoiceService {
	return NewInvoiceService(
		infraRepo.NewInvoiceRepository(db),
		infraRepo.NewClientRepository(db),
		infraRepo.NewTaxRateRepository(db),
		nil,
		nil,
	)
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)

	taxRate := &entity.TaxRate{
		UserID:     user.ID,
		Name:       "VAT",
		Percentage: 16,
		Type:       enum.TaxTypeExclusive,
	}
	require.NoError(t, db.Create(taxRate).Error)

	svc := newInvoiceService(db)
	issueDate := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		TaxRateID: &taxRate.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 30),
		Items: []InvoiceItemInput{
			{Description: "Consulting hours", Quantity: 2, UnitPrice: 50},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-2025-000001", invoice.Number)
	assert.Equal(t, enum.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, int64(10000), invoice.SubTotal)
	assert.Equal(t, int64(1600), invoice.TaxAmount)
	assert.Equal(t, int64(11600), invoice.Total)
	assert.Equal(t, int64(11600), invoice.AmountDue)
	assert.Equal(t, "USD", invoice.Currency)
	require.Len(t, invoice.LineItems, 1)
	assert.Equal(t, int64(5000), invoice.LineItems[0].UnitPrice)

	second, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 14),
		Items: []InvoiceItemInput{
			{Description: "Retainer", Quantity: 1, UnitPrice: 100},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-000002", second.Number)
	assert.Equal(t, int64(0), second.TaxAmount)
}

func TestCreateInvoiceValidation(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newInvoiceService(db)

	issueDate := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 30),
	})
	require.Error(t, err)

	_, err = svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, -1),
		Items:     []InvoiceItemInput{{Description: "X", Quantity: 1, UnitPrice: 1}},
	})
	require.Error(t, err)
}

func TestInvoiceLifecycle(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newInvoiceService(db)
	ctx := context.Background()

	issueDate := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := svc.CreateInvoice(ctx, &CreateInvoiceInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 30),
		Items:     []InvoiceItemInput{{Description: "Support", Quantity: 1, UnitPrice: 99.99}},
	})
	require.NoError(t, err)

	sent, err := svc.SendInvoice(ctx, user.ID, invoice.ID, false)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusSent, sent.Status)

	// Sent invoices can no longer be edited or deleted
	_, err = svc.UpdateInvoice(ctx, &UpdateInvoiceInput{
		UserID: user.ID,
		ID:     invoice.ID,
		Items:  []InvoiceItemInput{{Description: "Changed", Quantity: 1, UnitPrice: 1}},
	})
	require.Error(t, err)
	require.Error(t, svc.DeleteInvoice(ctx, user.ID, invoice.ID, false))

	paid, err := svc.MarkInvoicePaid(ctx, user.ID, invoice.ID, false)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, paid.Status)
	assert.Equal(t, int64(0), paid.AmountDue)
	require.NotNil(t, paid.PaidAt)

	_, err = svc.VoidInvoice(ctx, user.ID, invoice.ID, false)
	require.Error(t, err)
}

func TestInvoiceOwnership(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db)
	other := seedUser(t, db)
	client := seedClient(t, db, owner.ID)
	svc := newInvoiceService(db)
	ctx := context.Background()

	issueDate := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := svc.CreateInvoice(ctx, &CreateInvoiceInput{
		UserID:    owner.ID,
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 7),
		Items:     []InvoiceItemInput{{Description: "Audit", Quantity: 1, UnitPrice: 500}},
	})
	require.NoError(t, err)

	_, err = svc.SendInvoice(ctx, other.ID, invoice.ID, false)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// Super admin bypasses the ownership check
	_, err = svc.SendInvoice(ctx, other.ID, invoice.ID, true)
	require.NoError(t, err)
}

func TestMarkOverdueInvoices(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newInvoiceService(db)
	ctx := context.Background()

	issueDate := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := svc.CreateInvoice(ctx, &CreateInvoiceInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 14),
		Items:     []InvoiceItemInput{{Description: "Hosting", Quantity: 1, UnitPrice: 25}},
	})
	require.NoError(t, err)
	_, err = svc.SendInvoice(ctx, user.ID, invoice.ID, false)
	require.NoError(t, err)

	asOf := issueDate.AddDate(0, 1, 0)
	changed, err := svc.MarkOverdueInvoices(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	reloaded, err := svc.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOverdue, reloaded.Status)

	// A second sweep finds nothing new to flag
	changed, err = svc.MarkOverdueInvoices(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestToCentsRounding(t *testing.T) {
	assert.Equal(t, int64(1050), toCents(10.50))
	assert.Equal(t, int64(1), toCents(0.005))
	assert.Equal(t, int64(-1050), toCents(-10.50))
	assert.Equal(t, int64(3333), toCents(33.333))
}
