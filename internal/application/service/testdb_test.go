package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/billflow/billflow-api/internal/domain/entity"
)

// setupTestDB opens an isolated in-memory database with the billing schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},
		&entity.Client{},
		&entity.TaxRate{},
		&entity.InvoiceTemplate{},
		&entity.Invoice{},
		&entity.InvoiceLineItem{},
		&entity.BillingCycle{},
		&entity.Credit{},
		&entity.CreditApplication{},
		&entity.Document{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB) *entity.User {
	t.Helper()

	user := &entity.User{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Wanjiru",
		Username:  "ada-" + uuid.New().String()[:8],
		Email:     uuid.New().String()[:8] + "@example.com",
		Password:  "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedClient(t *testing.T, db *gorm.DB, userID uuid.UUID) *entity.Client {
	t.Helper()

	client := &entity.Client{
		UserID:   userID,
		Name:     "Acme Consulting",
		Currency: "USD",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}
