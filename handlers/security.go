package handlers

import (
	"net/http"
	"talent_flow_app_go/db"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// GetSecurityAlerts returns active in-memory alerts plus the most recent
// security-related audit entries
func GetSecurityAlerts(c echo.Context) error {
	alerts := services.Monitor.GetRecentAlerts()

	var logs []models.AuditLog
	if err := db.DB.Where("resource_type = ? OR action IN ?", "SECURITY_EVENT",
		[]models.AuditAction{models.AuditActionLogin, models.AuditActionLogout, models.AuditActionSecurity}).
		Order("created_at DESC").
		Limit(20).
		Find(&logs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch security logs")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts":        alerts,
		"recent_events": logs,
	})
}
