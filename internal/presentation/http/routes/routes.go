package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/billflow/billflow-api/internal/config"
	domainRepo "github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/internal/presentation/http/handler"
	"github.com/billflow/billflow-api/internal/presentation/http/middleware"
	"github.com/billflow/billflow-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth         *handler.AuthHandler
	Client       *handler.ClientHandler
	Invoice      *handler.InvoiceHandler
	BillingCycle *handler.BillingCycleHandler
	Credit       *handler.CreditHandler
	TaxRate      *handler.TaxRateHandler
	Template     *handler.TemplateHandler
	Document     *handler.DocumentHandler
	Report       *handler.ReportHandler
	Dashboard    *handler.DashboardHandler
	User         *handler.UserHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Dashboard
	protected.GET("/dashboard", h.Dashboard.GetStats)

	// Clients
	registerClientRoutes(protected, h)

	// Invoices
	registerInvoiceRoutes(protected, h, deps)

	// Billing cycles
	registerBillingCycleRoutes(protected, h)

	// Credits
	registerCreditRoutes(protected, h)

	// Tax rates
	registerTaxRateRoutes(protected, h)

	// Invoice templates
	registerTemplateRoutes(protected, h)

	// Documents
	registerDocumentRoutes(protected, h)

	// Reports
	registerReportRoutes(protected, h)

	// Users (Admin)
	registerUserRoutes(protected, h)

	// Roles (Admin)
	registerRoleRoutes(protected, h)

	// Permissions (Admin)
	registerPermissionRoutes(protected, h)
}

func registerClientRoutes(protected *gin.RouterGroup, h *Handlers) {
	clients := protected.Group("/clients")
	clients.Use(middleware.RequirePermission("manage-clients"))
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	invoices := protected.Group("/invoices")
	invoices.Use(middleware.RequirePermission("manage-invoices"))
	{
		invoices.GET("", h.Invoice.List)
		// Invoice creation uses idempotency middleware to prevent duplicates
		invoices.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Invoice.Create)
		invoices.POST("/mark-overdue", h.Invoice.MarkOverdue)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Update)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.POST("/:id/send", h.Invoice.Send)
		invoices.POST("/:id/pay", h.Invoice.MarkPaid)
		invoices.POST("/:id/void", h.Invoice.Void)
		invoices.GET("/:id/render", h.Invoice.Render)
		invoices.GET("/:id/preview", h.Invoice.Preview)
		invoices.POST("/:id/apply-credits", h.Credit.ApplyAvailable)
	}
}

func registerBillingCycleRoutes(protected *gin.RouterGroup, h *Handlers) {
	cycles := protected.Group("/billing-cycles")
	cycles.Use(middleware.RequirePermission("manage-billing"))
	{
		cycles.GET("", h.BillingCycle.List)
		cycles.POST("", h.BillingCycle.Create)
		cycles.POST("/generate-due", h.BillingCycle.GenerateDue)
		cycles.GET("/:id", h.BillingCycle.Get)
		cycles.PUT("/:id", h.BillingCycle.Update)
		cycles.DELETE("/:id", h.BillingCycle.Delete)
		cycles.POST("/:id/pause", h.BillingCycle.Pause)
		cycles.POST("/:id/resume", h.BillingCycle.Resume)
		cycles.POST("/:id/end", h.BillingCycle.End)
	}
}

func registerCreditRoutes(protected *gin.RouterGroup, h *Handlers) {
	credits := protected.Group("/credits")
	credits.Use(middleware.RequirePermission("manage-billing"))
	{
		credits.GET("", h.Credit.List)
		credits.POST("", h.Credit.Create)
		credits.GET("/:id", h.Credit.Get)
		credits.DELETE("/:id", h.Credit.Delete)
		credits.POST("/:id/apply", h.Credit.Apply)
		credits.POST("/:id/reconcile", h.Credit.Reconcile)
	}
}

func registerTaxRateRoutes(protected *gin.RouterGroup, h *Handlers) {
	taxRates := protected.Group("/tax-rates")
	taxRates.Use(middleware.RequirePermission("manage-billing"))
	{
		taxRates.GET("", h.TaxRate.List)
		taxRates.POST("", h.TaxRate.Create)
		taxRates.GET("/:id", h.TaxRate.Get)
		taxRates.PUT("/:id", h.TaxRate.Update)
		taxRates.DELETE("/:id", h.TaxRate.Delete)
	}
}

func registerTemplateRoutes(protected *gin.RouterGroup, h *Handlers) {
	templates := protected.Group("/templates")
	templates.Use(middleware.RequirePermission("manage-templates"))
	{
		templates.GET("", h.Template.List)
		templates.POST("", h.Template.Create)
		templates.GET("/:id", h.Template.Get)
		templates.PUT("/:id", h.Template.Update)
		templates.DELETE("/:id", h.Template.Delete)
	}
}

func registerDocumentRoutes(protected *gin.RouterGroup, h *Handlers) {
	documents := protected.Group("/documents")
	documents.Use(middleware.RequirePermission("manage-documents"))
	{
		documents.GET("", h.Document.List)
		documents.POST("", h.Document.Upload)
		documents.GET("/:id", h.Document.Get)
		documents.GET("/:id/download", h.Document.Download)
		documents.DELETE("/:id", h.Document.Delete)
	}
}

func registerReportRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/reports")
	reports.Use(middleware.RequirePermission("view-reports"))
	{
		reports.GET("/invoices", h.Report.Invoices)
		reports.GET("/credits", h.Report.Credits)
	}
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequirePermission("manage-users"))
	{
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id/roles", h.User.UpdateRoles)
		users.DELETE("/:id", h.User.Delete)
	}
}

func registerRoleRoutes(protected *gin.RouterGroup, h *Handlers) {
	roles := protected.Group("/roles")
	roles.Use(middleware.RequirePermission("manage-users"))
	{
		roles.GET("", h.User.ListRoles)
	}
}

func registerPermissionRoutes(protected *gin.RouterGroup, h *Handlers) {
	permissions := protected.Group("/permissions")
	permissions.Use(middleware.RequirePermission("manage-users"))
	{
		permissions.GET("", h.User.ListPermissions)
	}
}
