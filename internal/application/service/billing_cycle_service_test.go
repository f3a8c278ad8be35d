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
)

func newBillingCycleService(db *gorm.DB) *BillingCycleService {
	invoiceSvc := newInvoiceService(db)
	return NewBillingCycleService(
		infraRepo.NewBillingCycleRepository(db),
		infraRepo.NewClientRepository(db),
		infraRepo.NewInvoiceRepository(db),
		invoiceSvc,
		nil,
	)
}

func TestCreateBillingCycleDefaults(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newBillingCycleService(db)

	start := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	cycle, err := svc.CreateBillingCycle(context.Background(), &CreateBillingCycleInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		Name:      "Monthly retainer",
		Frequency: enum.BillingFrequencyMonthly,
		Amount:    250,
		StartDate: start,
	})
	require.NoError(t, err)

	assert.Equal(t, enum.CycleStatusActive, cycle.Status)
	assert.Equal(t, int64(25000), cycle.Amount)
	assert.Equal(t, 30, cycle.DueDays)
	assert.True(t, cycle.NextBillingAt.Equal(start))

	_, err = svc.CreateBillingCycle(context.Background(), &CreateBillingCycleInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		Name:      "Broken",
		Frequency: enum.BillingFrequencyMonthly,
		Amount:    0,
		StartDate: start,
	})
	require.Error(t, err)
}

func TestGenerateDueInvoices(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newBillingCycleService(db)
	ctx := context.Background()

	start := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	cycle, err := svc.CreateBillingCycle(ctx, &CreateBillingCycleInput{
		UserID:      user.ID,
		ClientID:    client.ID,
		Name:        "Monthly retainer",
		Frequency:   enum.BillingFrequencyMonthly,
		Amount:      250,
		Description: "January services",
		StartDate:   start,
		DueDays:     14,
	})
	require.NoError(t, err)

	created, err := svc.GenerateDueInvoices(ctx, start)
	require.NoError(t, err)
	require.Len(t, created, 1)

	invoice := created[0]
	assert.Equal(t, enum.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, int64(25000), invoice.Total)
	require.NotNil(t, invoice.PeriodStart)
	require.NotNil(t, invoice.PeriodEnd)
	assert.True(t, invoice.PeriodStart.Equal(start))
	assert.True(t, invoice.PeriodEnd.Equal(time.Date(2025, time.February, 14, 0, 0, 0, 0, time.UTC)))
	assert.True(t, invoice.DueDate.Equal(start.AddDate(0, 0, 14)))
	require.NotNil(t, invoice.BillingCycleID)
	assert.Equal(t, cycle.ID, *invoice.BillingCycleID)

	reloaded, err := svc.GetBillingCycle(ctx, cycle.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.NextBillingAt.Equal(start.AddDate(0, 1, 0)))

	// Same instant again, the cycle is no longer due
	created, err = svc.GenerateDueInvoices(ctx, start)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestGenerateDueInvoicesIdempotentPerPeriod(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newBillingCycleService(db)
	ctx := context.Background()

	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	cycle, err := svc.CreateBillingCycle(ctx, &CreateBillingCycleInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		Name:      "Quarterly license",
		Frequency: enum.BillingFrequencyQuarterly,
		Amount:    1200,
		StartDate: start,
	})
	require.NoError(t, err)

	created, err := svc.GenerateDueInvoices(ctx, start)
	require.NoError(t, err)
	require.Len(t, created, 1)

	// Wind the schedule back as if a previous run crashed before advancing it
	require.NoError(t, db.Model(&entity.BillingCycle{}).
		Where("id = ?", cycle.ID).
		Update("next_billing_at", start).Error)

	created, err = svc.GenerateDueInvoices(ctx, start)
	require.NoError(t, err)
	assert.Empty(t, created)

	// The schedule still advances so reruns converge
	reloaded, err := svc.GetBillingCycle(ctx, cycle.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.NextBillingAt.Equal(start.AddDate(0, 3, 0)))

	var count int64
	require.NoError(t, db.Model(&entity.Invoice{}).
		Where("billing_cycle_id = ?", cycle.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPausedCycleSkipsGeneration(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	svc := newBillingCycleService(db)
	ctx := context.Background()

	start := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	cycle, err := svc.CreateBillingCycle(ctx, &CreateBillingCycleInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		Name:      "Paused plan",
		Frequency: enum.BillingFrequencyMonthly,
		Amount:    80,
		StartDate: start,
	})
	require.NoError(t, err)

	_, err = svc.PauseBillingCycle(ctx, user.ID, cycle.ID, false)
	require.NoError(t, err)

	created, err := svc.GenerateDueInvoices(ctx, start)
	require.NoError(t, err)
	assert.Empty(t, created)

	// Ended cycles never come back
	_, err = svc.EndBillingCycle(ctx, user.ID, cycle.ID, false)
	require.NoError(t, err)
	_, err = svc.ResumeBillingCycle(ctx, user.ID, cycle.ID, false)
	require.Error(t, err)
}
