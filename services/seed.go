package services

import (
	"fmt"
	"log"
	"os"
	"talent_flow_app_go/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedAdminFromEnv creates an admin user from environment variables.
// Only runs if ADMIN_SEED_EMAIL and ADMIN_SEED_PASSWORD are set and no
// admin user exists yet.
func SeedAdminFromEnv(db *gorm.DB) error {
	email := os.Getenv("ADMIN_SEED_EMAIL")
	password := os.Getenv("ADMIN_SEED_PASSWORD")
	name := os.Getenv("ADMIN_SEED_NAME")

	// Skip if env vars not set
	if email == "" || password == "" {
		return nil
	}

	if name == "" {
		name = "Administrator"
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("[SEED] Admin user already exists, skipping seed")
		return nil
	}

	var existingUser models.User
	if err := db.Where("email = ?", email).First(&existingUser).Error; err == nil {
		log.Printf("[SEED] User with email %s already exists, skipping admin seed", email)
		return nil
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	if err := db.Create(user).Error; err != nil {
		return err
	}

	log.Printf("[SEED] Created admin user: %s", email)
	return nil
}

// SeedDemoData populates a database with a small, deterministic demo data
// set. Intended for local development and demos, never production.
func SeedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Client{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("[SEED] Clients already exist, skipping demo seed")
		return nil
	}

	hashedPassword, err := HashPassword("demo-pass-1")
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:     "Dana Okafor",
		Email:    "dana@talentflow.test",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		Title:    "Managing Partner",
		IsActive: true,
	}
	consultant := &models.User{
		Name:     "Priya Raman",
		Email:    "priya@talentflow.test",
		Password: hashedPassword,
		Role:     models.RoleConsultant,
		Title:    "Senior HR Consultant",
		IsActive: true,
	}
	staff := &models.User{
		Name:     "Leo Martins",
		Email:    "leo@talentflow.test",
		Password: hashedPassword,
		Role:     models.RoleStaff,
		Title:    "Office Coordinator",
		IsActive: true,
	}
	for _, u := range []*models.User{admin, consultant, staff} {
		if err := db.Create(u).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}

	clients := []*models.Client{
		{
			Name:             "Acme Group",
			Slug:             "acme-group",
			LegalName:        "Acme Group Holdings Ltd",
			Industry:         "Manufacturing",
			Headcount:        240,
			Status:           models.ClientStatusActive,
			Email:            "hr@acme.test",
			Phone:            "+1 555 0100",
			Website:          "https://acme.test",
			AccountManagerID: &consultant.ID,
		},
		{
			Name:      "Borealis Labs",
			Slug:      "borealis-labs",
			LegalName: "Borealis Laboratories Inc",
			Industry:  "Biotech",
			Headcount: 55,
			Status:    models.ClientStatusActive,
			Email:     "people@borealis.test",
		},
		{
			Name:      "Cedar Retail",
			Slug:      "cedar-retail",
			Industry:  "Retail",
			Headcount: 820,
			Status:    models.ClientStatusProspect,
		},
	}
	for _, client := range clients {
		if err := db.Create(client).Error; err != nil {
			return fmt.Errorf("failed to seed client %s: %w", client.Name, err)
		}
		if _, err := InstantiateChecklist(db, models.ChecklistTemplateClientSetup, client.ID, nil); err != nil {
			return fmt.Errorf("failed to seed checklist for %s: %w", client.Name, err)
		}
	}

	acme, borealis := clients[0], clients[1]

	// Contacts and addresses
	contacts := []*models.ClientContact{
		{ClientID: acme.ID, Name: "Jane Smith", Title: "Head of People", Email: "jane@acme.test", Phone: "+1 555 0101", IsPrimary: true},
		{ClientID: acme.ID, Name: "Tom Becker", Title: "Payroll Lead", Email: "tom@acme.test"},
		{ClientID: borealis.ID, Name: "Ana Costa", Title: "COO", Email: "ana@borealis.test", IsPrimary: true},
	}
	for _, contact := range contacts {
		if err := db.Create(contact).Error; err != nil {
			return fmt.Errorf("failed to seed contact %s: %w", contact.Name, err)
		}
	}

	addresses := []*models.ClientAddress{
		{ClientID: acme.ID, Label: models.AddressLabelHQ, Street: "12 Foundry Way", City: "Springfield", State: "IL", PostalCode: "62704", Country: "US", IsPrimary: true},
		{ClientID: acme.ID, Label: models.AddressLabelSite, Street: "400 Plant Rd", City: "Peoria", State: "IL", PostalCode: "61602", Country: "US"},
		{ClientID: borealis.ID, Label: models.AddressLabelHQ, Street: "88 Harbor Blvd", City: "Boston", State: "MA", PostalCode: "02110", Country: "US", IsPrimary: true},
	}
	for _, address := range addresses {
		if err := db.Create(address).Error; err != nil {
			return fmt.Errorf("failed to seed address: %w", err)
		}
	}

	// An active contract for Acme
	startsOn := time.Now().AddDate(0, -6, 0)
	endsOn := time.Now().AddDate(0, 6, 0)
	contract := &models.Contract{
		ClientID:        acme.ID,
		Version:         1,
		Status:          models.ContractStatusDraft,
		HourlyRateCents: 15000,
		MonthlyHours:    40,
		Currency:        "USD",
		ServiceScope:    "Retained HR advisory: policy upkeep, payroll review, employee relations support.",
		StartsOn:        startsOn,
		EndsOn:          &endsOn,
		CreatedByID:     &admin.ID,
	}
	if err := db.Create(contract).Error; err != nil {
		return fmt.Errorf("failed to seed contract: %w", err)
	}
	if err := ActivateContract(db, contract); err != nil {
		return fmt.Errorf("failed to activate seeded contract: %w", err)
	}

	// Cases in different states
	caseNumber, err := EnsureUniqueCaseNumber(db, acme.ID)
	if err != nil {
		return err
	}
	grievance := &models.Case{
		ClientID:     acme.ID,
		ContractID:   &contract.ID,
		CaseNumber:   caseNumber,
		Title:        "Shift supervisor grievance",
		Description:  "Two warehouse employees raised a grievance about shift allocation.",
		Category:     models.CaseCategoryGrievance,
		Priority:     models.CasePriorityHigh,
		Status:       models.CaseStatusOpen,
		AssignedToID: &consultant.ID,
		CreatedByID:  &admin.ID,
	}
	if err := db.Create(grievance).Error; err != nil {
		return fmt.Errorf("failed to seed case: %w", err)
	}

	caseNumber, err = EnsureUniqueCaseNumber(db, borealis.ID)
	if err != nil {
		return err
	}
	policy := &models.Case{
		ClientID:    borealis.ID,
		CaseNumber:  caseNumber,
		Title:       "Remote work policy refresh",
		Description: "Annual review of the hybrid working policy.",
		Category:    models.CaseCategoryPolicy,
		Priority:    models.CasePriorityMedium,
		Status:      models.CaseStatusOpen,
		CreatedByID: &admin.ID,
	}
	if err := db.Create(policy).Error; err != nil {
		return fmt.Errorf("failed to seed case: %w", err)
	}

	interactions := []*models.Interaction{
		{
			CaseID:      grievance.ID,
			Kind:        models.InteractionKindCall,
			Subject:     "Initial intake call",
			Notes:       "<p>Walked through the complaint with Jane. Two employees affected, both on night shift.</p>",
			Minutes:     30,
			ContactName: "Jane Smith",
			LoggedByID:  consultant.ID,
		},
		{
			CaseID:     grievance.ID,
			Kind:       models.InteractionKindMeeting,
			Subject:    "On-site interviews scheduled",
			Notes:      "<p>Interviews booked for next Tuesday with both employees and the supervisor.</p>",
			Minutes:    15,
			LoggedByID: consultant.ID,
		},
	}
	for _, interaction := range interactions {
		if err := db.Create(interaction).Error; err != nil {
			return fmt.Errorf("failed to seed interaction: %w", err)
		}
		if err := TouchCaseActivity(db, interaction.CaseID); err != nil {
			return err
		}
	}

	// A scheduled compliance audit for Acme
	audit := &models.ComplianceAudit{
		ClientID:     acme.ID,
		Kind:         models.AuditKindPolicy,
		ScheduledFor: time.Now().AddDate(0, 1, 0),
		AuditorID:    &consultant.ID,
	}
	if err := db.Create(audit).Error; err != nil {
		return fmt.Errorf("failed to seed compliance audit: %w", err)
	}

	log.Println("[SEED] Demo data created: 3 users, 3 clients, 1 contract, 2 cases")
	return nil
}
