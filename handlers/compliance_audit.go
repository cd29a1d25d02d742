package handlers

import (
	"net/http"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
	"time"

	"github.com/labstack/echo/v4"
)

// GetClientAudits returns a client's compliance audits, newest first
func GetClientAudits(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var audits []models.ComplianceAudit
	if err := db.DB.
		Preload("Auditor").
		Where("client_id = ?", client.ID).
		Order("scheduled_for DESC").
		Find(&audits).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch audits")
	}

	return c.JSON(http.StatusOK, audits)
}

// CreateClientAudit schedules a compliance audit for a client
func CreateClientAudit(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	audit := new(models.ComplianceAudit)
	if err := c.Bind(audit); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if !models.IsValidAuditKind(audit.Kind) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid kind. Must be one of: POLICY, PAYROLL, SAFETY, CONTRACTS, FULL_REVIEW",
		})
	}

	if audit.ScheduledFor.IsZero() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Scheduled date is required",
		})
	}

	if audit.AuditorID != nil && *audit.AuditorID != "" {
		var auditor models.User
		if err := db.DB.First(&auditor, "id = ? AND is_active = ?", *audit.AuditorID, true).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Auditor not found or inactive",
			})
		}
	} else {
		audit.AuditorID = nil
	}

	audit.ID = ""
	audit.ClientID = client.ID
	audit.CompletedAt = nil
	audit.Outcome = nil
	audit.Findings = services.SanitizeHTML(audit.Findings)

	if err := db.DB.Create(audit).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create audit",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "ComplianceAudit", audit.ID, audit.Kind,
		"Scheduled compliance audit for client "+client.Name, nil, nil)

	return c.JSON(http.StatusCreated, audit)
}

// UpdateClientAudit updates an audit. Providing an outcome marks the audit
// completed and stamps completed_at.
func UpdateClientAudit(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var audit models.ComplianceAudit
	if err := db.DB.First(&audit, "id = ? AND client_id = ?", c.Param("auditId"), client.ID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Audit not found",
		})
	}

	wasCompleted := audit.IsCompleted()

	if err := c.Bind(&audit); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if !models.IsValidAuditKind(audit.Kind) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid kind. Must be one of: POLICY, PAYROLL, SAFETY, CONTRACTS, FULL_REVIEW",
		})
	}

	if audit.Outcome != nil {
		if !models.IsValidAuditOutcome(*audit.Outcome) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid outcome. Must be one of: PASS, FINDINGS, FAIL",
			})
		}
		if audit.CompletedAt == nil {
			now := time.Now()
			audit.CompletedAt = &now
		}
	} else if !wasCompleted {
		audit.CompletedAt = nil
	}

	if audit.AuditorID != nil && *audit.AuditorID != "" {
		var auditor models.User
		if err := db.DB.First(&auditor, "id = ? AND is_active = ?", *audit.AuditorID, true).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Auditor not found or inactive",
			})
		}
	}

	audit.ClientID = client.ID
	audit.Findings = services.SanitizeHTML(audit.Findings)

	if err := db.DB.Save(&audit).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update audit",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "ComplianceAudit", audit.ID, audit.Kind,
		"Updated compliance audit for client "+client.Name, nil, nil)

	return c.JSON(http.StatusOK, audit)
}

// DeleteClientAudit removes a scheduled audit
func DeleteClientAudit(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var audit models.ComplianceAudit
	if err := db.DB.First(&audit, "id = ? AND client_id = ?", c.Param("auditId"), client.ID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Audit not found",
		})
	}

	if err := db.DB.Delete(&audit).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete audit",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "ComplianceAudit", audit.ID, audit.Kind,
		"Deleted compliance audit for client "+client.Name, nil, nil)

	return c.NoContent(http.StatusNoContent)
}
