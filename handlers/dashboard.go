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

// dashboardCounts is the headline numbers block of the dashboard payload.
// Case counts are scoped to the consultant's own cases for consultants.
type dashboardCounts struct {
	OpenCases           int64 `json:"open_cases"`
	InProgressCases     int64 `json:"in_progress_cases"`
	OnHoldCases         int64 `json:"on_hold_cases"`
	ActiveClients       int64 `json:"active_clients"`
	ActiveContracts     int64 `json:"active_contracts"`
	ExpiringContracts   int64 `json:"expiring_contracts"`
	UnreadNotifications int64 `json:"unread_notifications"`
}

// recentInteraction carries the case reference alongside the entry, since
// Interaction does not serialize its parent case
type recentInteraction struct {
	models.Interaction
	CaseNumber string `json:"case_number"`
	CaseTitle  string `json:"case_title"`
}

// onboardingLaggard is a client whose setup checklist still has required
// steps open
type onboardingLaggard struct {
	ClientID   string                    `json:"client_id"`
	ClientName string                    `json:"client_name"`
	ClientSlug string                    `json:"client_slug"`
	Progress   models.OnboardingProgress `json:"progress"`
}

// countCasesByStatus counts cases in a status, optionally pinned to one
// assignee
func countCasesByStatus(status, assigneeID string) (int64, error) {
	query := db.DB.Model(&models.Case{}).Where("status = ?", status)
	if assigneeID != "" {
		query = query.Where("assigned_to_id = ?", assigneeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// GetDashboard returns the workload overview: headline counts, the most
// recently opened cases, the latest logged interactions, and clients whose
// onboarding is still incomplete
func GetDashboard(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	// Consultants get their own workload, admins and staff see everything
	assigneeID := ""
	if currentUser.Role == models.RoleConsultant {
		assigneeID = currentUser.ID
	}

	var counts dashboardCounts
	var err error

	if counts.OpenCases, err = countCasesByStatus(models.CaseStatusOpen, assigneeID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load dashboard counts")
	}
	if counts.InProgressCases, err = countCasesByStatus(models.CaseStatusInProgress, assigneeID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load dashboard counts")
	}
	if counts.OnHoldCases, err = countCasesByStatus(models.CaseStatusOnHold, assigneeID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load dashboard counts")
	}

	if err := db.DB.Model(&models.Client{}).
		Where("status = ?", models.ClientStatusActive).
		Count(&counts.ActiveClients).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load dashboard counts")
	}

	if err := db.DB.Model(&models.Contract{}).
		Where("status = ?", models.ContractStatusActive).
		Count(&counts.ActiveContracts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load dashboard counts")
	}

	// Expiring means still active with an end date inside the warning window.
	// Unlike the expiry job this ignores expiry_notified_at, so contracts stay
	// visible here after their one-time warning went out.
	expiryCutoff := time.Now().Add(services.ContractExpiryWarningWindow)
	if err := db.DB.Model(&models.Contract{}).
		Where("status = ? AND ends_on IS NOT NULL AND ends_on >= ? AND ends_on <= ?",
			models.ContractStatusActive, time.Now(), expiryCutoff).
		Count(&counts.ExpiringContracts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load dashboard counts")
	}

	notifier := services.NewNotificationService(db.DB)
	if counts.UnreadNotifications, err = notifier.GetUnreadCount(currentUser.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load dashboard counts")
	}

	recentCasesQuery := db.DB.Model(&models.Case{})
	if assigneeID != "" {
		recentCasesQuery = recentCasesQuery.Where("assigned_to_id = ?", assigneeID)
	}
	var recentCases []models.Case
	if err := recentCasesQuery.
		Preload("Client").
		Preload("AssignedTo").
		Order("opened_at DESC").
		Limit(5).
		Find(&recentCases).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load recent cases")
	}

	interactionsQuery := db.DB.Model(&models.Interaction{})
	if assigneeID != "" {
		interactionsQuery = interactionsQuery.
			Where("EXISTS (SELECT 1 FROM cases WHERE cases.id = interactions.case_id AND cases.assigned_to_id = ? AND cases.deleted_at IS NULL)", assigneeID)
	}
	var interactions []models.Interaction
	if err := interactionsQuery.
		Preload("Case").
		Preload("LoggedBy").
		Order("occurred_at DESC").
		Limit(5).
		Find(&interactions).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load recent interactions")
	}

	recentInteractions := make([]recentInteraction, 0, len(interactions))
	for _, entry := range interactions {
		recentInteractions = append(recentInteractions, recentInteraction{
			Interaction: entry,
			CaseNumber:  entry.Case.CaseNumber,
			CaseTitle:   entry.Case.Title,
		})
	}

	// Laggards are checklists of non-archived clients with at least one
	// required step still open, oldest setup first
	var checklists []models.OnboardingChecklist
	if err := db.DB.
		Preload("Client").
		Preload("Items").
		Where("EXISTS (SELECT 1 FROM onboarding_items WHERE onboarding_items.checklist_id = onboarding_checklists.id AND onboarding_items.required = ? AND onboarding_items.done = ?)", true, false).
		Where("EXISTS (SELECT 1 FROM clients WHERE clients.id = onboarding_checklists.client_id AND clients.deleted_at IS NULL AND clients.status != ?)", models.ClientStatusArchived).
		Order("created_at ASC").
		Limit(10).
		Find(&checklists).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load onboarding status")
	}

	laggards := make([]onboardingLaggard, 0, len(checklists))
	for i := range checklists {
		laggards = append(laggards, onboardingLaggard{
			ClientID:   checklists[i].ClientID,
			ClientName: checklists[i].Client.Name,
			ClientSlug: checklists[i].Client.Slug,
			Progress:   checklists[i].Progress(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"counts":              counts,
		"recent_cases":        recentCases,
		"recent_interactions": recentInteractions,
		"onboarding_laggards": laggards,
	})
}
