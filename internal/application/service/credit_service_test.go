package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
	infraRepo "github.com/billflow/billflow-api/internal/infrastructure/repository"
)

func newCreditService(db *gorm.DB) *CreditService {
	return NewCreditService(
		infraRepo.NewCreditRepository(db),
		infraRepo.NewInvoiceRepository(db),
		infraRepo.NewClientRepository(db),
		nil,
	)
}

// openInvoice creates and sends an invoice worth 116.00 for the given client.
func openInvoice(t *testing.T, db *gorm.DB, userID, clientID uuid.UUID) *entity.Invoice {
	t.Helper()

	svc := newInvoiceService(db)
	ctx := context.Background()
	issueDate := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(ctx, &CreateInvoiceInput{
		UserID:    userID,
		ClientID:  clientID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 30),
		Items:     []InvoiceItemInput{{Description: "Development", Quantity: 1, UnitPrice: 116}},
	})
	require.NoError(t, err)

	sent, err := svc.SendInvoice(ctx, userID, invoice.ID, false)
	require.NoError(t, err)
	return sent
}

func TestApplyCreditPartial(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newCreditService(db)
	ctx := context.Background()

	invoice := openInvoice(t, db, user.ID, client.ID)

	credit, err := svc.CreateCredit(ctx, &CreateCreditInput{
		UserID:   user.ID,
		ClientID: client.ID,
		Amount:   50,
		Reason:   "Goodwill",
	})
	require.NoError(t, err)
	assert.Equal(t, enum.CreditStatusAvailable, credit.Status)
	assert.Equal(t, int64(5000), credit.Remaining)

	application, err := svc.ApplyCredit(ctx, &ApplyCreditInput{
		UserID:    user.ID,
		CreditID:  credit.ID,
		InvoiceID: invoice.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), application.Amount)

	reloadedCredit, err := svc.GetCredit(ctx, credit.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloadedCredit.Remaining)
	assert.Equal(t, enum.CreditStatusFullyApplied, reloadedCredit.Status)

	var reloadedInvoice entity.Invoice
	require.NoError(t, db.First(&reloadedInvoice, "id = ?", invoice.ID).Error)
	assert.Equal(t, int64(5000), reloadedInvoice.CreditApplied)
	assert.Equal(t, int64(6600), reloadedInvoice.AmountDue)
	assert.Equal(t, enum.InvoiceStatusSent, reloadedInvoice.Status)
}

func TestApplyCreditSettlesInvoice(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newCreditService(db)
	ctx := context.Background()

	invoice := openInvoice(t, db, user.ID, client.ID)

	credit, err := svc.CreateCredit(ctx, &CreateCreditInput{
		UserID:   user.ID,
		ClientID: client.ID,
		Amount:   200,
		Reason:   "Prepayment",
	})
	require.NoError(t, err)

	application, err := svc.ApplyCredit(ctx, &ApplyCreditInput{
		UserID:    user.ID,
		CreditID:  credit.ID,
		InvoiceID: invoice.ID,
	})
	require.NoError(t, err)
	// Zero input amount applies only what the invoice still owes
	assert.Equal(t, int64(11600), application.Amount)

	reloadedCredit, err := svc.GetCredit(ctx, credit.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8400), reloadedCredit.Remaining)
	assert.Equal(t, enum.CreditStatusPartiallyApplied, reloadedCredit.Status)

	var reloadedInvoice entity.Invoice
	require.NoError(t, db.First(&reloadedInvoice, "id = ?", invoice.ID).Error)
	assert.Equal(t, enum.InvoiceStatusPaid, reloadedInvoice.Status)
	assert.Equal(t, int64(0), reloadedInvoice.AmountDue)
	require.NotNil(t, reloadedInvoice.PaidAt)
}

func TestApplyCreditGuards(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	otherClient := seedClient(t, db, user.ID)
	svc := newCreditService(db)
	invoiceSvc := newInvoiceService(db)
	ctx := context.Background()

	credit, err := svc.CreateCredit(ctx, &CreateCreditInput{
		UserID:   user.ID,
		ClientID: client.ID,
		Amount:   10,
		Reason:   "Refund",
	})
	require.NoError(t, err)

	// Draft invoices cannot receive credits
	issueDate := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	draft, err := invoiceSvc.CreateInvoice(ctx, &CreateInvoiceInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, 7),
		Items:     []InvoiceItemInput{{Description: "Draft work", Quantity: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)
	_, err = svc.ApplyCredit(ctx, &ApplyCreditInput{UserID: user.ID, CreditID: credit.ID, InvoiceID: draft.ID})
	require.Error(t, err)

	// Credit and invoice must share a client
	foreign := openInvoice(t, db, user.ID, otherClient.ID)
	_, err = svc.ApplyCredit(ctx, &ApplyCreditInput{UserID: user.ID, CreditID: credit.ID, InvoiceID: foreign.ID})
	require.Error(t, err)

	// Over-application is rejected
	invoice := openInvoice(t, db, user.ID, client.ID)
	_, err = svc.ApplyCredit(ctx, &ApplyCreditInput{UserID: user.ID, CreditID: credit.ID, InvoiceID: invoice.ID, Amount: 25})
	require.Error(t, err)

	// Expired credits are unusable
	expired := time.Now().AddDate(0, 0, -1)
	require.NoError(t, db.Model(&entity.Credit{}).Where("id = ?", credit.ID).Update("expires_at", expired).Error)
	_, err = svc.ApplyCredit(ctx, &ApplyCreditInput{UserID: user.ID, CreditID: credit.ID, InvoiceID: invoice.ID})
	require.Error(t, err)
}

func TestApplyAvailableCreditsOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newCreditService(db)
	ctx := context.Background()

	first, err := svc.CreateCredit(ctx, &CreateCreditInput{
		UserID:   user.ID,
		ClientID: client.ID,
		Amount:   30,
		Reason:   "Older credit",
	})
	require.NoError(t, err)

	second, err := svc.CreateCredit(ctx, &CreateCreditInput{
		UserID:   user.ID,
		ClientID: client.ID,
		Amount:   200,
		Reason:   "Newer credit",
	})
	require.NoError(t, err)

	// Force a stable ordering in case both rows share a timestamp
	require.NoError(t, db.Model(&entity.Credit{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	invoice := openInvoice(t, db, user.ID, client.ID)

	applied, err := svc.ApplyAvailableCredits(ctx, user.ID, invoice.ID, false)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, first.ID, applied[0].CreditID)
	assert.Equal(t, int64(3000), applied[0].Amount)
	assert.Equal(t, second.ID, applied[1].CreditID)
	assert.Equal(t, int64(8600), applied[1].Amount)

	var reloadedInvoice entity.Invoice
	require.NoError(t, db.First(&reloadedInvoice, "id = ?", invoice.ID).Error)
	assert.Equal(t, enum.InvoiceStatusPaid, reloadedInvoice.Status)
	assert.Equal(t, int64(11600), reloadedInvoice.CreditApplied)
}

func TestReconcileCreditRepairsDrift(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newCreditService(db)
	ctx := context.Background()

	invoice := openInvoice(t, db, user.ID, client.ID)
	credit, err := svc.CreateCredit(ctx, &CreateCreditInput{
		UserID:   user.ID,
		ClientID: client.ID,
		Amount:   40,
		Reason:   "Adjustment",
	})
	require.NoError(t, err)

	_, err = svc.ApplyCredit(ctx, &ApplyCreditInput{
		UserID:    user.ID,
		CreditID:  credit.ID,
		InvoiceID: invoice.ID,
		Amount:    15,
	})
	require.NoError(t, err)

	// Corrupt the stored balance, reconciliation recomputes from history
	require.NoError(t, db.Model(&entity.Credit{}).Where("id = ?", credit.ID).
		Updates(map[string]any{"remaining": 9999, "status": enum.CreditStatusAvailable}).Error)

	reconciled, err := svc.ReconcileCredit(ctx, credit.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), reconciled.Remaining)
	assert.Equal(t, enum.CreditStatusPartiallyApplied, reconciled.Status)
}

func TestDeleteCreditOnlyWhenUnapplied(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newCreditService(db)
	ctx := context.Background()

	credit, err := svc.CreateCredit(ctx, &CreateCreditInput{
		UserID:   user.ID,
		ClientID: client.ID,
		Amount:   60,
		Reason:   "Unused",
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCredit(ctx, user.ID, credit.ID, false))

	applied, err := svc.CreateCredit(ctx, &CreateCreditInput{
		UserID:   user.ID,
		ClientID: client.ID,
		Amount:   60,
		Reason:   "Used",
	})
	require.NoError(t, err)

	invoice := openInvoice(t, db, user.ID, client.ID)
	_, err = svc.ApplyCredit(ctx, &ApplyCreditInput{
		UserID:    user.ID,
		CreditID:  applied.ID,
		InvoiceID: invoice.ID,
		Amount:    10,
	})
	require.NoError(t, err)
	require.Error(t, svc.DeleteCredit(ctx, user.ID, applied.ID, false))
}
