package main

import (
	"log"
	"talent_flow_app_go/config"
	"talent_flow_app_go/db"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.Environment == "production" {
		log.Fatal("Refusing to seed demo data in production")
	}

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

	// Seeded clients get their setup checklists from the templates
	if err := services.LoadOnboardingTemplates(cfg.OnboardingTemplatePath); err != nil {
		log.Fatalf("Failed to load onboarding templates: %v", err)
	}

	if err := services.SeedDemoData(db.DB); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	log.Println("[SEED] Done. Demo logins use password \"demo-pass-1\".")
}
