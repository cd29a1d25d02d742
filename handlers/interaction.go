package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// findAccessibleCase loads a case by the :id route param and enforces the
// consultant scoping rule
func findAccessibleCase(c echo.Context) (*models.Case, error) {
	var caseRecord models.Case
	if err := db.DB.First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return nil, c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	currentUser := middleware.GetCurrentUser(c)
	if !canAccessCase(currentUser, &caseRecord) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	return &caseRecord, nil
}

// GetCaseInteractions returns a case's interactions, newest first
func GetCaseInteractions(c echo.Context) error {
	caseRecord, err := findAccessibleCase(c)
	if caseRecord == nil {
		return err
	}

	kind := c.QueryParam("kind")
	keyword := c.QueryParam("keyword")

	page := 1
	limit := 20
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			page = p
		}
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	query := db.DB.Model(&models.Interaction{}).Where("case_id = ?", caseRecord.ID)

	if kind != "" && (models.IsValidInteractionKind(kind) || kind == models.InteractionKindSystem) {
		query = query.Where("kind = ?", kind)
	}
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("subject LIKE ? OR notes LIKE ? OR contact_name LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count interactions")
	}

	offset := (page - 1) * limit
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	var interactions []models.Interaction
	if err := query.
		Preload("LoggedBy").
		Order("occurred_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&interactions).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch interactions")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": interactions,
		"pagination": map[string]interface{}{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// CreateCaseInteraction logs an interaction on a case
func CreateCaseInteraction(c echo.Context) error {
	caseRecord, err := findAccessibleCase(c)
	if caseRecord == nil {
		return err
	}

	if caseRecord.IsClosed() {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Cannot log interactions on a closed case",
		})
	}

	interaction := new(models.Interaction)
	if err := c.Bind(interaction); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if !models.IsValidInteractionKind(interaction.Kind) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid kind. Must be one of: CALL, EMAIL, MEETING, NOTE",
		})
	}

	interaction.Subject = strings.TrimSpace(interaction.Subject)
	if interaction.Subject == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Subject is required",
		})
	}

	if interaction.Minutes < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Minutes cannot be negative",
		})
	}

	currentUser := middleware.GetCurrentUser(c)

	interaction.ID = ""
	interaction.CaseID = caseRecord.ID
	interaction.LoggedByID = currentUser.ID
	interaction.LoggedBy = nil
	interaction.Notes = services.SanitizeHTML(interaction.Notes)

	if err := db.DB.Create(interaction).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create interaction",
		})
	}

	if err := services.TouchCaseActivity(db.DB, caseRecord.ID); err != nil {
		c.Logger().Warnf("failed to touch case activity for %s: %v", caseRecord.ID, err)
	}

	return c.JSON(http.StatusCreated, interaction)
}

// UpdateInteraction edits an interaction. Only the author or an admin may
// edit, and SYSTEM entries are immutable.
func UpdateInteraction(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var interaction models.Interaction
	if err := db.DB.Preload("Case").First(&interaction, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Interaction not found",
		})
	}

	if interaction.IsSystem() {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "System entries cannot be modified",
		})
	}

	if interaction.LoggedByID != currentUser.ID && !currentUser.IsAdmin() {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	if interaction.Case.IsClosed() {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Cannot edit interactions on a closed case",
		})
	}

	originalCaseID := interaction.CaseID
	originalLoggedBy := interaction.LoggedByID

	if err := c.Bind(&interaction); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if !models.IsValidInteractionKind(interaction.Kind) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid kind. Must be one of: CALL, EMAIL, MEETING, NOTE",
		})
	}

	interaction.Subject = strings.TrimSpace(interaction.Subject)
	if interaction.Subject == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Subject is required",
		})
	}

	if interaction.Minutes < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Minutes cannot be negative",
		})
	}

	interaction.CaseID = originalCaseID
	interaction.LoggedByID = originalLoggedBy
	interaction.Notes = services.SanitizeHTML(interaction.Notes)
	interaction.Case = models.Case{}
	interaction.LoggedBy = nil

	if err := db.DB.Save(&interaction).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update interaction",
		})
	}

	return c.JSON(http.StatusOK, interaction)
}

// DeleteInteraction removes an interaction (admin only). SYSTEM entries are
// immutable.
func DeleteInteraction(c echo.Context) error {
	var interaction models.Interaction
	if err := db.DB.First(&interaction, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Interaction not found",
		})
	}

	if interaction.IsSystem() {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "System entries cannot be deleted",
		})
	}

	if err := db.DB.Delete(&interaction).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete interaction",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "Interaction", interaction.ID, interaction.Subject,
		"Deleted interaction", nil, nil)

	return c.NoContent(http.StatusNoContent)
}
