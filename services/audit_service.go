package services

import (
	"encoding/json"
	"log"
	"talent_flow_app_go/models"
	"time"

	"gorm.io/gorm"
)

// AuditContext carries the actor and request details stamped onto audit rows.
// Middleware fills it once per request; services receive it by value.
type AuditContext struct {
	UserID    string
	UserName  string
	UserRole  string
	IPAddress string
	UserAgent string
}

// LogAuditEvent records an audit entry. The write happens on a goroutine so
// request handlers never wait on the audit table.
func LogAuditEvent(
	db *gorm.DB,
	ctx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID string,
	resourceName string,
	description string,
	oldValues interface{},
	newValues interface{},
) {
	entry := models.AuditLog{
		UserID:       actorID(ctx.UserID),
		UserName:     ctx.UserName,
		UserRole:     ctx.UserRole,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ResourceName: resourceName,
		Action:       action,
		Description:  description,
		OldValues:    toJSON(oldValues),
		NewValues:    toJSON(newValues),
		IPAddress:    ctx.IPAddress,
		UserAgent:    ctx.UserAgent,
	}

	go persistAuditEntry(db, entry)
}

// LogSecurityEvent records security-relevant events (failed logins, lockouts,
// password resets). They surface immediately on stdout and land in the audit
// table under the SECURITY action.
func LogSecurityEvent(db *gorm.DB, eventType, userID, details string) {
	log.Printf("[SECURITY] %s | User: %s | Details: %s", eventType, userID, details)

	entry := models.AuditLog{
		UserID:       actorID(userID),
		Action:       models.AuditActionSecurity,
		ResourceType: "SECURITY_EVENT",
		ResourceID:   eventType,
		Description:  details,
	}

	go persistAuditEntry(db, entry)
}

func persistAuditEntry(db *gorm.DB, entry models.AuditLog) {
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[AUDIT] Failed to write audit entry: %v", err)
	}
}

// actorID keeps anonymous events (failed logins for unknown emails) as NULL
// actors instead of empty strings.
func actorID(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}

func toJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	bytes, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(bytes)
}

// AuditLogFilters narrows GetAuditLogs. Zero values mean "no filter".
type AuditLogFilters struct {
	UserID       string
	ResourceType string
	Action       string
	DateFrom     time.Time
	DateTo       time.Time
	SearchQuery  string
}

// GetAuditLogs returns one page of audit entries, newest first, plus the
// total match count for pagination.
func GetAuditLogs(
	db *gorm.DB,
	filters AuditLogFilters,
	page, pageSize int,
) ([]models.AuditLog, int64, error) {
	query := db.Model(&models.AuditLog{})

	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.ResourceType != "" {
		query = query.Where("resource_type = ?", filters.ResourceType)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("created_at <= ?", filters.DateTo)
	}
	if filters.SearchQuery != "" {
		pattern := "%" + filters.SearchQuery + "%"
		query = query.Where(
			"resource_name LIKE ? OR description LIKE ? OR user_name LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}

// GetResourceAuditHistory returns every audit entry for one resource, newest
// first, for the per-record history view.
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
