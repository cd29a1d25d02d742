package handlers

import (
	"net/http"
	"strconv"
	"talent_flow_app_go/db"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
	"time"

	"github.com/labstack/echo/v4"
)

// GetAuditLogs returns filtered and paginated audit logs (admin only)
func GetAuditLogs(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 20
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 100 {
			pageSize = l
		}
	}

	filters := services.AuditLogFilters{
		UserID:       c.QueryParam("user_id"),
		ResourceType: c.QueryParam("resource_type"),
		Action:       c.QueryParam("action"),
		SearchQuery:  c.QueryParam("search"),
	}

	if dateFrom := c.QueryParam("date_from"); dateFrom != "" {
		if t, err := time.Parse("2006-01-02", dateFrom); err == nil {
			filters.DateFrom = t
		}
	}
	if dateTo := c.QueryParam("date_to"); dateTo != "" {
		if t, err := time.Parse("2006-01-02", dateTo); err == nil {
			filters.DateTo = t.Add(24*time.Hour - time.Second) // End of day
		}
	}

	logs, total, err := services.GetAuditLogs(db.DB, filters, page, pageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch audit logs")
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": logs,
		"pagination": map[string]interface{}{
			"page":        page,
			"limit":       pageSize,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// GetResourceHistory returns the audit history for a specific resource,
// with old/new value blobs parsed into per-field changes (admin only)
func GetResourceHistory(c echo.Context) error {
	resourceType := c.Param("type")
	resourceID := c.Param("id")

	logs, err := services.GetResourceAuditHistory(db.DB, resourceType, resourceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch history")
	}

	type historyEntry struct {
		models.AuditLog
		Changes []models.AuditChange `json:"changes,omitempty"`
	}

	entries := make([]historyEntry, len(logs))
	for i, entry := range logs {
		entries[i] = historyEntry{AuditLog: entry, Changes: entry.Changes()}
	}

	return c.JSON(http.StatusOK, entries)
}
