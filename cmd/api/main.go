package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/billflow/billflow-api/internal/application/service"
	"github.com/billflow/billflow-api/internal/config"
	"github.com/billflow/billflow-api/internal/infrastructure/database"
	"github.com/billflow/billflow-api/internal/infrastructure/repository"
	"github.com/billflow/billflow-api/internal/logger"
	"github.com/billflow/billflow-api/internal/presentation/http/handler"
	"github.com/billflow/billflow-api/internal/presentation/http/routes"
	"github.com/billflow/billflow-api/pkg/email"
	"github.com/billflow/billflow-api/pkg/oauth"
	"github.com/billflow/billflow-api/pkg/storage"
	"github.com/billflow/billflow-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.App.Env, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db, zapLogger); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Seed default data
	if err := database.SeedDefaultData(db, zapLogger); err != nil {
		zapLogger.Warn("failed to seed default data", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	passwordResetRepo := repository.NewPasswordResetTokenRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	clientRepo := repository.NewClientRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	cycleRepo := repository.NewBillingCycleRepository(db)
	taxRateRepo := repository.NewTaxRateRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Initialize email service
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		FrontendURL:  cfg.Email.FrontendURL,
	})

	// Initialize Google OAuth service
	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	// Initialize document storage
	store, err := storage.NewStorageFromConfig(cfg.Storage.Type, cfg.Storage.Path)
	if err != nil {
		zapLogger.Warn("failed to initialize storage, documents disabled", zap.Error(err))
		store = storage.NewNullStorage()
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, passwordResetRepo, jwtManager, emailService, googleOAuthService)
	userService := service.NewUserService(userRepo, roleRepo, permissionRepo)
	clientService := service.NewClientService(clientRepo)
	taxRateService := service.NewTaxRateService(taxRateRepo)
	templateService := service.NewTemplateService(templateRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, taxRateRepo, emailService, zapLogger)
	cycleService := service.NewBillingCycleService(cycleRepo, clientRepo, invoiceRepo, invoiceService, zapLogger)
	creditService := service.NewCreditService(creditRepo, invoiceRepo, clientRepo, zapLogger)
	renderService := service.NewRenderService(invoiceRepo, templateRepo, zapLogger)
	documentService := service.NewDocumentService(documentRepo, clientRepo, invoiceRepo, store)
	reportService := service.NewReportService(invoiceRepo, creditRepo)
	dashboardService := service.NewDashboardService(analyticsRepo, clientRepo, invoiceRepo, creditRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Client:       handler.NewClientHandler(clientService),
		Invoice:      handler.NewInvoiceHandler(invoiceService, renderService),
		BillingCycle: handler.NewBillingCycleHandler(cycleService),
		Credit:       handler.NewCreditHandler(creditService),
		TaxRate:      handler.NewTaxRateHandler(taxRateService),
		Template:     handler.NewTemplateHandler(templateService),
		Document:     handler.NewDocumentHandler(documentService),
		Report:       handler.NewReportHandler(reportService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		User:         handler.NewUserHandler(userService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Logger:          zapLogger,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	zapLogger.Info("starting server",
		zap.String("service", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", port),
	)

	if err := router.Run(":" + port); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
}
