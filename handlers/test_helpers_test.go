package handlers

import (
	"io"
	"net/http/httptest"
	"talent_flow_app_go/config"
	"talent_flow_app_go/db"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests while allowing shared cache for async tasks
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.Exec("PRAGMA journal_mode=WAL;").Error
	assert.NoError(t, err)

	// Initialize Storage for tests if not already set
	if services.Storage == nil {
		services.Storage = services.NewLocalStorage("tmp/test_uploads")
	}

	err = testDB.AutoMigrate(
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
	)
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	// Initialize security monitor
	services.InitSecurityMonitor()

	// Checklist templates fall back to the built-in defaults when no file exists
	err = services.LoadOnboardingTemplates("config/onboarding.yml")
	assert.NoError(t, err)

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:   "test",
		EmailTestMode: true,
	})

	return e, c, rec
}

// setupJSONEcho is setupEcho with the request marked as JSON
func setupJSONEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e, c, rec := setupEcho(method, path, body)
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e, c, rec
}

func stringToPtr(s string) *string {
	return &s
}

func createTestAdmin(t *testing.T, database *gorm.DB) *models.User {
	return createTestUser(t, database, "admin", "admin@test.com", models.RoleAdmin)
}

func createTestUser(t *testing.T, database *gorm.DB, id, email, role string) *models.User {
	hashed, err := services.HashPassword("pass123456789")
	assert.NoError(t, err)
	user := &models.User{
		ID:       "user-" + id,
		Name:     "Test " + id,
		Email:    email,
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	assert.NoError(t, database.Create(user).Error)
	return user
}

func createTestClient(t *testing.T, database *gorm.DB, slug string) *models.Client {
	client := &models.Client{
		ID:     "client-" + slug,
		Name:   "Client " + slug,
		Slug:   slug,
		Status: models.ClientStatusActive,
	}
	assert.NoError(t, database.Create(client).Error)
	return client
}

func createTestCase(t *testing.T, database *gorm.DB, id, clientID string, assignedToID *string) *models.Case {
	caseRecord := &models.Case{
		ID:           "case-" + id,
		CaseNumber:   "HR-2026-" + id,
		ClientID:     clientID,
		Title:        "Case " + id,
		Category:     models.CaseCategoryGrievance,
		Priority:     models.CasePriorityMedium,
		Status:       models.CaseStatusOpen,
		AssignedToID: assignedToID,
	}
	assert.NoError(t, database.Create(caseRecord).Error)
	return caseRecord
}
