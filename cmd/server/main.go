package main

import (
	"log"
	"talent_flow_app_go/config"
	"talent_flow_app_go/db"
	"talent_flow_app_go/handlers"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.Client{},
		&models.ClientContact{},
		&models.ClientAddress{},
		&models.ComplianceAudit{},
		&models.Contract{},
		&models.Case{},
		&models.Interaction{},
		&models.Document{},
		&models.OnboardingChecklist{},
		&models.OnboardingItem{},
		&models.Notification{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Checklist templates must parse before clients can be onboarded
	if err := services.LoadOnboardingTemplates(cfg.OnboardingTemplatePath); err != nil {
		log.Fatalf("Failed to load onboarding templates: %v", err)
	}

	// Document storage (R2 when configured, local directory otherwise)
	services.InitializeStorage(cfg)

	// In-memory failed-login tracking
	services.InitSecurityMonitor()

	// First admin from ADMIN_SEED_EMAIL/ADMIN_SEED_PASSWORD, if set
	if err := services.SeedAdminFromEnv(db.DB); err != nil {
		log.Printf("[WARNING] Admin seed failed: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public routes (no authentication required, rate limited)
	e.POST("/login", handlers.Login, middleware.LoginRateLimiter.Middleware())
	e.POST("/forgot-password", handlers.ForgotPassword, middleware.PasswordResetRateLimiter.Middleware())
	e.POST("/reset-password", handlers.ResetPassword, middleware.PasswordResetRateLimiter.Middleware())

	// Protected routes (authentication required)
	protected := e.Group("")
	protected.Use(middleware.RequireAuth())
	protected.Use(middleware.AuditContext())
	protected.Use(middleware.APIRateLimiter.Middleware())
	{
		protected.POST("/logout", handlers.Logout)
		protected.GET("/api/me", handlers.GetCurrentUser)
		protected.PUT("/api/me/password", handlers.ChangePassword)

		protected.GET("/api/dashboard", handlers.GetDashboard)
		protected.GET("/api/search", handlers.Search)

		// Users (handler-level checks for self vs admin access)
		protected.GET("/api/users", handlers.GetUsers)
		protected.GET("/api/users/:id", handlers.GetUser)
		protected.PUT("/api/users/:id", handlers.UpdateUser)

		// Clients
		protected.GET("/api/clients", handlers.GetClients)
		protected.GET("/api/clients/:id", handlers.GetClient)
		protected.PUT("/api/clients/:id", handlers.UpdateClient)

		// Client contacts
		protected.GET("/api/clients/:id/contacts", handlers.GetClientContacts)
		protected.POST("/api/clients/:id/contacts", handlers.CreateClientContact)
		protected.PUT("/api/clients/:id/contacts/:contactId", handlers.UpdateClientContact)
		protected.DELETE("/api/clients/:id/contacts/:contactId", handlers.DeleteClientContact)

		// Client addresses
		protected.GET("/api/clients/:id/addresses", handlers.GetClientAddresses)
		protected.POST("/api/clients/:id/addresses", handlers.CreateClientAddress)
		protected.PUT("/api/clients/:id/addresses/:addressId", handlers.UpdateClientAddress)
		protected.DELETE("/api/clients/:id/addresses/:addressId", handlers.DeleteClientAddress)

		// Compliance audits
		protected.GET("/api/clients/:id/audits", handlers.GetClientAudits)
		protected.POST("/api/clients/:id/audits", handlers.CreateClientAudit)
		protected.PUT("/api/clients/:id/audits/:auditId", handlers.UpdateClientAudit)
		protected.DELETE("/api/clients/:id/audits/:auditId", handlers.DeleteClientAudit)

		// Onboarding
		protected.GET("/api/clients/:id/onboarding", handlers.GetClientOnboarding)
		protected.PUT("/api/onboarding/items/:id", handlers.UpdateOnboardingItem)

		// Contracts (reads; writes are role-gated below)
		protected.GET("/api/clients/:id/contracts", handlers.GetClientContracts)
		protected.GET("/api/contracts/:id", handlers.GetContract)
		protected.GET("/api/contracts/:id/summary.pdf", handlers.GetContractSummaryPDF)

		// Cases (consultant scoping enforced in handlers)
		protected.GET("/api/cases", handlers.GetCases)
		protected.POST("/api/cases", handlers.CreateCase)
		protected.GET("/api/cases/:id", handlers.GetCase)
		protected.PUT("/api/cases/:id", handlers.UpdateCase)
		protected.PUT("/api/cases/:id/status", handlers.UpdateCaseStatus)
		protected.GET("/api/cases/:id/summary.pdf", handlers.GetCaseSummaryPDF)

		// Interactions
		protected.GET("/api/cases/:id/interactions", handlers.GetCaseInteractions)
		protected.POST("/api/cases/:id/interactions", handlers.CreateCaseInteraction)
		protected.PUT("/api/interactions/:id", handlers.UpdateInteraction)

		// Documents
		protected.GET("/api/clients/:id/documents", handlers.GetClientDocuments)
		protected.POST("/api/clients/:id/documents", handlers.UploadClientDocument)
		protected.POST("/api/cases/:id/documents", handlers.UploadCaseDocument)
		protected.GET("/api/documents/:id/download", handlers.DownloadDocument)
		protected.DELETE("/api/documents/:id", handlers.DeleteDocument)

		// Notifications
		protected.GET("/api/notifications", handlers.GetNotifications)
		protected.GET("/api/notifications/unread-count", handlers.GetUnreadNotificationCount)
		protected.PUT("/api/notifications/:id/read", handlers.MarkNotificationRead)
		protected.PUT("/api/notifications/read-all", handlers.MarkAllNotificationsRead)

		// Client creation (consultants open their own accounts)
		clientCreateRoutes := protected.Group("")
		clientCreateRoutes.Use(middleware.RequireRole(models.RoleAdmin, models.RoleConsultant))
		{
			clientCreateRoutes.POST("/api/clients", handlers.CreateClient)
		}

		// Contract management and reporting (back office)
		staffRoutes := protected.Group("")
		staffRoutes.Use(middleware.RequireRole(models.RoleAdmin, models.RoleStaff))
		{
			staffRoutes.POST("/api/clients/:id/contracts", handlers.CreateClientContract)
			staffRoutes.PUT("/api/contracts/:id", handlers.UpdateContract)
			staffRoutes.POST("/api/contracts/:id/activate", handlers.ActivateContract)
			staffRoutes.POST("/api/contracts/:id/terminate", handlers.TerminateContract)
			staffRoutes.POST("/api/contracts/:id/documents", handlers.UploadContractDocument)

			staffRoutes.GET("/api/reports/cases.xlsx", handlers.GetCaseReport)
			staffRoutes.GET("/api/reports/clients.xlsx", handlers.GetClientReport)
		}

		// Admin-only routes
		adminRoutes := protected.Group("")
		adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminRoutes.POST("/api/users", handlers.CreateUser)
			adminRoutes.DELETE("/api/users/:id", handlers.DeleteUser)

			adminRoutes.DELETE("/api/clients/:id", handlers.DeleteClient)
			adminRoutes.GET("/api/clients/import/template", handlers.GetClientImportTemplate)
			adminRoutes.POST("/api/clients/import", handlers.ImportClients)
			adminRoutes.POST("/api/clients/:id/onboarding/reset", handlers.ResetClientOnboarding)

			adminRoutes.PUT("/api/cases/:id/assign", handlers.AssignCase)
			adminRoutes.DELETE("/api/cases/:id", handlers.DeleteCase)
			adminRoutes.DELETE("/api/interactions/:id", handlers.DeleteInteraction)

			adminRoutes.GET("/api/audit-logs", handlers.GetAuditLogs)
			adminRoutes.GET("/api/audit-logs/:type/:id", handlers.GetResourceHistory)
			adminRoutes.GET("/api/security/alerts", handlers.GetSecurityAlerts)
		}
	}

	// Hourly cleanup of expired sessions and reset tokens
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}

			if err := services.CleanupExpiredResetTokens(db.DB); err != nil {
				log.Printf("Error cleaning up expired tokens: %v", err)
			}
		}
	}()

	// Contract expiry sweep: once at startup, then every six hours
	go func() {
		services.RunContractExpiryCheck(db.DB, cfg)

		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			services.RunContractExpiryCheck(db.DB, cfg)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
