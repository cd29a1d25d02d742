package handlers

import (
	"net/http"
	"strings"
	"talent_flow_app_go/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func createTestAuditLog(t *testing.T, database *gorm.DB, id string, userID *string, resourceType, resourceID, resourceName string, action models.AuditAction, age time.Duration) *models.AuditLog {
	t.Helper()
	entry := &models.AuditLog{
		ID:           "audit-" + id,
		UserID:       userID,
		UserName:     "Test admin",
		UserRole:     models.RoleAdmin,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ResourceName: resourceName,
		Action:       action,
		Description:  "Entry " + id,
		CreatedAt:    time.Now().Add(-age),
	}
	assert.NoError(t, database.Create(entry).Error)
	return entry
}

func TestGetAuditLogs(t *testing.T) {
	database := setupTestDB(t)
	admin := createTestAdmin(t, database)
	staff := createTestUser(t, database, "s1", "s1@test.com", models.RoleStaff)

	createTestAuditLog(t, database, "old", &admin.ID, "Client", "client-1", "ACME Group", models.AuditActionCreate, 3*time.Hour)
	createTestAuditLog(t, database, "mid", &admin.ID, "Case", "case-1", "ACME-2026-00001", models.AuditActionUpdate, 2*time.Hour)
	createTestAuditLog(t, database, "new", &staff.ID, "Case", "case-1", "ACME-2026-00001", models.AuditActionDelete, 1*time.Hour)

	t.Run("Lists newest first", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/audit-logs", nil)
		c.Set("user", admin)

		err := GetAuditLogs(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"total":3`)
		assert.Less(t, strings.Index(body, "audit-new"), strings.Index(body, "audit-mid"))
		assert.Less(t, strings.Index(body, "audit-mid"), strings.Index(body, "audit-old"))
	})

	t.Run("Filters by resource type", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/audit-logs?resource_type=Client", nil)
		c.Set("user", admin)

		err := GetAuditLogs(c)
		assert.NoError(t, err)
		body := rec.Body.String()
		assert.Contains(t, body, `"total":1`)
		assert.Contains(t, body, "audit-old")
		assert.NotContains(t, body, "audit-new")
	})

	t.Run("Filters by action", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/audit-logs?action=DELETE", nil)
		c.Set("user", admin)

		err := GetAuditLogs(c)
		assert.NoError(t, err)
		body := rec.Body.String()
		assert.Contains(t, body, `"total":1`)
		assert.Contains(t, body, "audit-new")
	})

	t.Run("Filters by actor", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/audit-logs?user_id="+staff.ID, nil)
		c.Set("user", admin)

		err := GetAuditLogs(c)
		assert.NoError(t, err)
		body := rec.Body.String()
		assert.Contains(t, body, `"total":1`)
		assert.Contains(t, body, "audit-new")
	})

	t.Run("Search matches resource name", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/audit-logs?search=ACME-2026", nil)
		c.Set("user", admin)

		err := GetAuditLogs(c)
		assert.NoError(t, err)
		assert.Contains(t, rec.Body.String(), `"total":2`)
	})

	t.Run("Date window excludes older entries", func(t *testing.T) {
		tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
		_, c, rec := setupEcho(http.MethodGet, "/api/audit-logs?date_from="+tomorrow, nil)
		c.Set("user", admin)

		err := GetAuditLogs(c)
		assert.NoError(t, err)
		assert.Contains(t, rec.Body.String(), `"total":0`)
	})

	t.Run("Paginates", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/audit-logs?limit=2&page=2", nil)
		c.Set("user", admin)

		err := GetAuditLogs(c)
		assert.NoError(t, err)
		body := rec.Body.String()
		assert.Contains(t, body, `"page":2`)
		assert.Contains(t, body, `"total_pages":2`)
		assert.Contains(t, body, "audit-old")
	})
}

func TestGetResourceHistory(t *testing.T) {
	database := setupTestDB(t)
	admin := createTestAdmin(t, database)

	createTestAuditLog(t, database, "created", &admin.ID, "Case", "case-1", "ACME-2026-00001", models.AuditActionCreate, 2*time.Hour)
	createTestAuditLog(t, database, "unrelated", &admin.ID, "Client", "client-1", "ACME Group", models.AuditActionUpdate, 1*time.Hour)
	assert.NoError(t, database.Create(&models.AuditLog{
		ID:           "audit-updated",
		UserID:       &admin.ID,
		UserName:     "Test admin",
		UserRole:     models.RoleAdmin,
		ResourceType: "Case",
		ResourceID:   "case-1",
		ResourceName: "ACME-2026-00001",
		Action:       models.AuditActionUpdate,
		OldValues:    `{"status":"OPEN"}`,
		NewValues:    `{"status":"IN_PROGRESS"}`,
		CreatedAt:    time.Now().Add(-1 * time.Hour),
	}).Error)

	_, c, rec := setupEcho(http.MethodGet, "/api/audit-logs/Case/case-1", nil)
	c.SetParamNames("type", "id")
	c.SetParamValues("Case", "case-1")
	c.Set("user", admin)

	err := GetResourceHistory(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, "audit-updated"), strings.Index(body, "audit-created"))
	assert.NotContains(t, body, "audit-unrelated")

	// Value blobs are parsed into per-field changes
	assert.Contains(t, body, `"field":"status"`)
	assert.Contains(t, body, `"old":"OPEN"`)
	assert.Contains(t, body, `"new":"IN_PROGRESS"`)
}
