package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/billflow/billflow-api/internal/config"
	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/enum"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to postgres", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// User-related entities
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},
		&entity.PasswordResetToken{},

		// Billing entities
		&entity.Client{},
		&entity.TaxRate{},
		&entity.InvoiceTemplate{},
		&entity.Invoice{},
		&entity.InvoiceLineItem{},
		&entity.BillingCycle{},
		&entity.Credit{},
		&entity.CreditApplication{},
		&entity.Document{},

		// System entities
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData seeds the database with default data (roles, permissions, admin user)
func SeedDefaultData(db *gorm.DB, log *zap.Logger) error {
	log.Info("seeding default data")

	// Create default permissions
	permissions := []entity.Permission{
		{Name: "view-dashboard", GuardName: "web"},
		{Name: "manage-clients", GuardName: "web"},
		{Name: "manage-invoices", GuardName: "web"},
		{Name: "manage-billing", GuardName: "web"},
		{Name: "manage-templates", GuardName: "web"},
		{Name: "manage-documents", GuardName: "web"},
		{Name: "manage-users", GuardName: "web"},
		{Name: "view-reports", GuardName: "web"},
	}

	for i := range permissions {
		var existing entity.Permission
		if err := db.Where("name = ?", permissions[i].Name).First(&existing).Error; err != nil {
			if err := db.Create(&permissions[i]).Error; err != nil {
				log.Warn("failed to create permission", zap.String("name", permissions[i].Name), zap.Error(err))
			}
		}
	}

	// Reload permissions with IDs
	var allPermissions []entity.Permission
	db.Find(&allPermissions)

	// Create super-admin role with all permissions
	var superAdminRole entity.Role
	if err := db.Where("name = ?", "super-admin").First(&superAdminRole).Error; err != nil {
		superAdminRole = entity.Role{
			Name:        "super-admin",
			GuardName:   "web",
			Permissions: allPermissions,
		}
		if err := db.Create(&superAdminRole).Error; err != nil {
			log.Warn("failed to create super-admin role", zap.Error(err))
		}
	}

	// Create admin role with all permissions
	var adminRole entity.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		adminRole = entity.Role{
			Name:        "admin",
			GuardName:   "web",
			Permissions: allPermissions,
		}
		if err := db.Create(&adminRole).Error; err != nil {
			log.Warn("failed to create admin role", zap.Error(err))
		}
	}

	// Create staff role with limited permissions
	staffPermissions := []string{
		"view-dashboard",
		"manage-clients",
		"manage-invoices",
		"manage-documents",
	}
	seedRole(db, log, "staff", pickPermissions(allPermissions, staffPermissions))

	// Create default user role for new registrants, everything except user administration
	userPermissions := []string{
		"view-dashboard",
		"manage-clients",
		"manage-invoices",
		"manage-billing",
		"manage-templates",
		"manage-documents",
		"view-reports",
	}
	seedRole(db, log, "user", pickPermissions(allPermissions, userPermissions))

	// Create super admin user if configured via environment variables
	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")

	if adminEmail != "" && adminPassword != "" {
		var existingAdmin entity.User
		if err := db.Where("email = ?", adminEmail).First(&existingAdmin).Error; err != nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Warn("failed to hash admin password", zap.Error(err))
			} else {
				var saRole entity.Role
				if err := db.Where("name = ?", "super-admin").First(&saRole).Error; err == nil {
					if adminName == "" {
						adminName = "Super Admin"
					}
					firstName := adminName
					lastName := ""
					for i, c := range adminName {
						if c == ' ' {
							firstName = adminName[:i]
							lastName = adminName[i+1:]
							break
						}
					}
					adminUser := entity.User{
						ID:        uuid.New(),
						FirstName: firstName,
						LastName:  lastName,
						Email:     adminEmail,
						Password:  string(hashedPassword),
						Roles:     []entity.Role{saRole},
					}
					if err := db.Create(&adminUser).Error; err != nil {
						log.Warn("failed to create super admin user", zap.Error(err))
					} else {
						log.Info("super admin user created", zap.String("email", adminEmail))
						seedBillingDefaults(db, log, adminUser.ID)
					}
				}
			}
		}
	}

	log.Info("default data seeding completed")
	return nil
}

func seedRole(db *gorm.DB, log *zap.Logger, name string, perms []entity.Permission) {
	var role entity.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		role = entity.Role{
			Name:        name,
			GuardName:   "web",
			Permissions: perms,
		}
		if err := db.Create(&role).Error; err != nil {
			log.Warn("failed to create role", zap.String("name", name), zap.Error(err))
		}
	}
}

func pickPermissions(all []entity.Permission, names []string) []entity.Permission {
	var picked []entity.Permission
	for _, name := range names {
		for _, p := range all {
			if p.Name == name {
				picked = append(picked, p)
				break
			}
		}
	}
	return picked
}

// starterTemplateJSON is the layout seeded as the first default invoice template.
const starterTemplateJSON = `{
  "sections": [
    {
      "type": "header",
      "grid": {"columns": 2, "minRows": 2},
      "content": [
        {"type": "staticText", "content": "INVOICE", "id": "title", "position": {"column": 1, "row": 1}},
        {"type": "field", "name": "number", "position": {"column": 2, "row": 1}},
        {"type": "field", "name": "issue_date", "position": {"column": 1, "row": 2}},
        {"type": "field", "name": "due_date", "position": {"column": 2, "row": 2}},
        {"type": "style", "elements": ["text:title"], "props": {"font-size": "20px", "font-weight": 700}}
      ]
    },
    {
      "type": "items",
      "grid": {"columns": 4, "minRows": 3},
      "content": [
        {"type": "list", "name": "items", "groupBy": "category", "aggregation": "sum", "aggregationField": "total_price", "content": [
          {"type": "field", "name": "description"},
          {"type": "field", "name": "quantity"},
          {"type": "field", "name": "unit_price"},
          {"type": "field", "name": "total_price"}
        ]}
      ]
    },
    {
      "type": "summary",
      "grid": {"columns": 2, "minRows": 3},
      "content": [
        {"type": "staticText", "content": "Subtotal", "position": {"column": 1, "row": 1}},
        {"type": "field", "name": "sub_total", "position": {"column": 2, "row": 1}},
        {"type": "staticText", "content": "Tax", "position": {"column": 1, "row": 2}},
        {"type": "field", "name": "tax_amount", "position": {"column": 2, "row": 2}},
        {"type": "conditional", "condition": {"field": "credit_applied", "op": "gt", "value": 0}, "content": [
          {"type": "staticText", "content": "Credit applied", "position": {"column": 1, "row": 3}},
          {"type": "field", "name": "credit_applied", "position": {"column": 2, "row": 3}}
        ]},
        {"type": "staticText", "content": "Amount due", "id": "due-label", "position": {"column": 1, "row": 4}},
        {"type": "field", "name": "amount_due", "position": {"column": 2, "row": 4}},
        {"type": "style", "elements": ["text:due-label"], "props": {"font-weight": 700}}
      ]
    }
  ],
  "globals": [
    {"name": "grand_total", "type": "calculation", "expression": {"field": "items", "operation": "sum"}}
  ]
}`

// seedBillingDefaults gives a freshly created admin account a default
// invoice template and a standard tax rate so invoices render out of the box.
func seedBillingDefaults(db *gorm.DB, log *zap.Logger, userID uuid.UUID) {
	var templateCount int64
	db.Model(&entity.InvoiceTemplate{}).Where("user_id = ?", userID).Count(&templateCount)
	if templateCount == 0 {
		description := "Starter layout with header, line items and summary"
		template := entity.InvoiceTemplate{
			UserID:      userID,
			Name:        "Standard Invoice",
			Description: &description,
			ParsedJSON:  starterTemplateJSON,
			IsDefault:   true,
		}
		if err := db.Create(&template).Error; err != nil {
			log.Warn("failed to seed default invoice template", zap.Error(err))
		}
	}

	var taxCount int64
	db.Model(&entity.TaxRate{}).Where("user_id = ?", userID).Count(&taxCount)
	if taxCount == 0 {
		taxRate := entity.TaxRate{
			UserID:     userID,
			Name:       "Standard VAT",
			Percentage: 16,
			Type:       enum.TaxTypeExclusive,
			IsDefault:  true,
		}
		if err := db.Create(&taxRate).Error; err != nil {
			log.Warn("failed to seed default tax rate", zap.Error(err))
		}
	}
}
