package services

import (
	"encoding/json"
	"talent_flow_app_go/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuditTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.AuditLog{}, &models.User{})
	return db
}

func TestLogAuditEvent(t *testing.T) {
	db := setupAuditTestDB()

	user := models.User{
		Name:  "Test Auditor",
		Email: "auditor@talentflow.test",
		Role:  models.RoleAdmin,
	}
	db.Create(&user)

	ctx := AuditContext{
		UserID:    user.ID,
		UserName:  user.Name,
		UserRole:  user.Role,
		IPAddress: "10.0.0.1",
		UserAgent: "TestAgent/1.0",
	}

	oldVals := map[string]interface{}{"status": "OPEN"}
	newVals := map[string]interface{}{"status": "IN_PROGRESS"}

	LogAuditEvent(db, ctx, models.AuditActionUpdate, "Case", "case-123", "ACME-2026-00001", "Updated status", oldVals, newVals)

	// LogAuditEvent writes in a goroutine, give it a moment
	time.Sleep(100 * time.Millisecond)

	var entry models.AuditLog
	result := db.First(&entry, "resource_id = ?", "case-123")
	assert.NoError(t, result.Error)
	assert.Equal(t, user.ID, *entry.UserID)
	assert.Equal(t, "Case", entry.ResourceType)
	assert.Equal(t, "ACME-2026-00001", entry.ResourceName)
	assert.Equal(t, "Updated status", entry.Description)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)

	var savedOld, savedNew map[string]interface{}
	json.Unmarshal([]byte(entry.OldValues), &savedOld)
	json.Unmarshal([]byte(entry.NewValues), &savedNew)
	assert.Equal(t, "OPEN", savedOld["status"])
	assert.Equal(t, "IN_PROGRESS", savedNew["status"])
}

func TestLogAuditEventAnonymousActor(t *testing.T) {
	db := setupAuditTestDB()

	LogAuditEvent(db, AuditContext{IPAddress: "10.0.0.9"}, models.AuditActionLogin, "User", "unknown-email", "", "Failed login attempt", nil, nil)

	time.Sleep(100 * time.Millisecond)

	var entry models.AuditLog
	result := db.First(&entry, "resource_id = ?", "unknown-email")
	assert.NoError(t, result.Error)
	assert.Nil(t, entry.UserID)
	assert.Empty(t, entry.OldValues)
	assert.Empty(t, entry.NewValues)
}

func TestLogSecurityEvent(t *testing.T) {
	db := setupAuditTestDB()

	userID := "user-security-123"

	LogSecurityEvent(db, "LOGIN_FAILED", userID, "Invalid password")

	// Wait for async
	time.Sleep(100 * time.Millisecond)

	var entry models.AuditLog
	result := db.Where("action = ?", "SECURITY").First(&entry)
	assert.NoError(t, result.Error)
	assert.Equal(t, userID, *entry.UserID)
	assert.Equal(t, "SECURITY_EVENT", entry.ResourceType)
	assert.Equal(t, "LOGIN_FAILED", entry.ResourceID)
	assert.Equal(t, "Invalid password", entry.Description)
}

func TestGetResourceAuditHistory(t *testing.T) {
	db := setupAuditTestDB()

	db.Create(&models.AuditLog{
		ResourceType: "Case",
		ResourceID:   "case-ABC",
		Action:       models.AuditActionCreate,
		CreatedAt:    time.Now().Add(-2 * time.Hour),
	})
	db.Create(&models.AuditLog{
		ResourceType: "Case",
		ResourceID:   "case-ABC",
		Action:       models.AuditActionUpdate,
		CreatedAt:    time.Now().Add(-1 * time.Hour),
	})
	db.Create(&models.AuditLog{
		ResourceType: "Client",
		ResourceID:   "client-123",
		Action:       models.AuditActionCreate,
	})

	logs, err := GetResourceAuditHistory(db, "Case", "case-ABC")
	assert.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Equal(t, models.AuditActionUpdate, logs[0].Action) // newest first
}

func TestGetAuditLogs(t *testing.T) {
	db := setupAuditTestDB()

	actorOne := "user-1"
	actorTwo := "user-2"

	db.Create(&models.AuditLog{
		ID: "log-a", UserID: &actorOne, UserName: "Dana Ops",
		ResourceType: "Client", ResourceID: "client-1", ResourceName: "ACME Group",
		Action: models.AuditActionCreate, CreatedAt: time.Now().Add(-3 * time.Hour),
	})
	db.Create(&models.AuditLog{
		ID: "log-b", UserID: &actorOne, UserName: "Dana Ops",
		ResourceType: "Case", ResourceID: "case-1", ResourceName: "ACME-2026-00001",
		Action: models.AuditActionUpdate, Description: "Priority raised",
		CreatedAt: time.Now().Add(-2 * time.Hour),
	})
	db.Create(&models.AuditLog{
		ID: "log-c", UserID: &actorTwo, UserName: "Sam Lee",
		ResourceType: "Case", ResourceID: "case-2", ResourceName: "BETA-2026-00001",
		Action: models.AuditActionDelete, CreatedAt: time.Now().Add(-1 * time.Hour),
	})
	db.Create(&models.AuditLog{
		ID: "log-d", UserID: &actorTwo, UserName: "Sam Lee",
		ResourceType: "User", ResourceID: "user-9", ResourceName: "New consultant",
		Action: models.AuditActionLogin, CreatedAt: time.Now(),
	})

	t.Run("No filters returns everything newest first", func(t *testing.T) {
		logs, total, err := GetAuditLogs(db, AuditLogFilters{}, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, logs, 4)
		assert.Equal(t, "log-d", logs[0].ID)
	})

	t.Run("Filter by actor", func(t *testing.T) {
		logs, total, err := GetAuditLogs(db, AuditLogFilters{UserID: actorTwo}, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, l := range logs {
			assert.Equal(t, actorTwo, *l.UserID)
		}
	})

	t.Run("Filter by resource type", func(t *testing.T) {
		_, total, err := GetAuditLogs(db, AuditLogFilters{ResourceType: "Case"}, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("Filter by action", func(t *testing.T) {
		logs, total, err := GetAuditLogs(db, AuditLogFilters{Action: "DELETE"}, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "log-c", logs[0].ID)
	})

	t.Run("Date window", func(t *testing.T) {
		_, total, err := GetAuditLogs(db, AuditLogFilters{DateFrom: time.Now().Add(-90 * time.Minute)}, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("Search matches resource name, description and actor", func(t *testing.T) {
		_, total, err := GetAuditLogs(db, AuditLogFilters{SearchQuery: "ACME"}, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)

		_, total, err = GetAuditLogs(db, AuditLogFilters{SearchQuery: "Priority raised"}, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, total, err = GetAuditLogs(db, AuditLogFilters{SearchQuery: "Sam Lee"}, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("Pagination", func(t *testing.T) {
		logs, total, err := GetAuditLogs(db, AuditLogFilters{}, 2, 3)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, logs, 1)
		assert.Equal(t, "log-a", logs[0].ID)
	})
}

func TestAuditLogsAreImmutable(t *testing.T) {
	db := setupAuditTestDB()

	entry := &models.AuditLog{
		ResourceType: "Case",
		ResourceID:   "case-1",
		Action:       models.AuditActionCreate,
	}
	db.Create(entry)

	err := db.Model(entry).Update("description", "tampered").Error
	assert.Error(t, err)

	err = db.Delete(entry).Error
	assert.Error(t, err)

	var count int64
	db.Model(&models.AuditLog{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var reloaded models.AuditLog
	db.First(&reloaded, "id = ?", entry.ID)
	assert.Empty(t, reloaded.Description)
}
