package handlers

import (
	"net/http"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type updateOnboardingItemRequest struct {
	Done bool `json:"done" form:"done"`
}

type resetOnboardingRequest struct {
	TemplateKey string `json:"template_key" form:"template_key"`
}

// GetClientOnboarding returns a client's checklists with items and progress
func GetClientOnboarding(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var checklists []models.OnboardingChecklist
	if err := db.DB.
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Preload("Items.DoneBy").
		Where("client_id = ?", client.ID).
		Order("created_at ASC").
		Find(&checklists).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch checklists")
	}

	type checklistWithProgress struct {
		models.OnboardingChecklist
		Progress models.OnboardingProgress `json:"progress"`
	}

	response := make([]checklistWithProgress, 0, len(checklists))
	for i := range checklists {
		response = append(response, checklistWithProgress{
			OnboardingChecklist: checklists[i],
			Progress:            checklists[i].Progress(),
		})
	}

	return c.JSON(http.StatusOK, response)
}

// UpdateOnboardingItem toggles a checklist item's done state. Toggling to the
// current state is a no-op.
func UpdateOnboardingItem(c echo.Context) error {
	var item models.OnboardingItem
	if err := db.DB.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Checklist item not found",
		})
	}

	var req updateOnboardingItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	currentUser := middleware.GetCurrentUser(c)
	if err := services.SetChecklistItemDone(db.DB, &item, req.Done, currentUser.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update checklist item")
	}

	// Reload for the fresh done_at/done_by state
	db.DB.First(&item, "id = ?", item.ID)

	var checklist models.OnboardingChecklist
	if err := db.DB.Preload("Items").First(&checklist, "id = ?", item.ChecklistID).Error; err != nil {
		return c.JSON(http.StatusOK, item)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"item":     item,
		"progress": checklist.Progress(),
	})
}

// ResetClientOnboarding rebuilds a client's checklists from the current
// templates, discarding completion state (admin only). A template_key in the
// body limits the reset to one checklist.
func ResetClientOnboarding(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var req resetOnboardingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	query := db.DB.Where("client_id = ?", client.ID)
	if req.TemplateKey != "" {
		query = query.Where("template_key = ?", req.TemplateKey)
	}

	var checklists []models.OnboardingChecklist
	if err := query.Find(&checklists).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch checklists")
	}
	if len(checklists) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "No checklists found for this client",
		})
	}

	rebuilt := make([]models.OnboardingChecklist, 0, len(checklists))
	for i := range checklists {
		fresh, err := services.ResetChecklist(db.DB, &checklists[i])
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to reset checklist")
		}
		rebuilt = append(rebuilt, *fresh)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "OnboardingChecklist", client.ID, client.Name,
		"Reset onboarding checklists", nil, nil)

	return c.JSON(http.StatusOK, rebuilt)
}
