package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"talent_flow_app_go/config"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// caseSortColumns whitelists the sortable columns for case listings.
// Priority sorts by urgency rather than alphabetically.
var caseSortColumns = map[string]string{
	"opened_at":   "opened_at",
	"priority":    "CASE priority WHEN 'URGENT' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END",
	"status":      "status",
	"case_number": "case_number",
}

type updateCaseStatusRequest struct {
	Status         string `json:"status" form:"status"`
	ResolutionNote string `json:"resolution_note" form:"resolution_note"`
}

type assignCaseRequest struct {
	AssignedToID string `json:"assigned_to_id" form:"assigned_to_id"`
}

// canAccessCase checks role-based case access: consultants only see cases
// assigned to them, admins and staff see everything
func canAccessCase(user *models.User, caseRecord *models.Case) bool {
	if user.Role != models.RoleConsultant {
		return true
	}
	return caseRecord.AssignedToID != nil && *caseRecord.AssignedToID == user.ID
}

// notifyCaseAssignment sends the in-app notification and email for a case
// assignment
func notifyCaseAssignment(c echo.Context, caseRecord *models.Case, assignee *models.User, clientName string) {
	notifier := services.NewNotificationService(db.DB)
	if err := notifier.NotifyCaseAssigned(caseRecord, assignee.ID, clientName); err != nil {
		c.Logger().Warnf("failed to create assignment notification: %v", err)
	}

	cfg := c.Get("config").(*config.Config)
	baseURL := cfg.AppURL
	if baseURL == "" {
		baseURL = c.Scheme() + "://" + c.Request().Host
	}

	email := services.BuildCaseAssignmentEmail(assignee.Email, services.CaseAssignmentEmailData{
		ConsultantName: assignee.Name,
		CaseNumber:     caseRecord.CaseNumber,
		CaseTitle:      caseRecord.Title,
		ClientName:     clientName,
		CaseURL:        fmt.Sprintf("%s/api/cases/%s", baseURL, caseRecord.ID),
	})
	services.SendEmailAsync(cfg, email)
}

// GetCases returns a list of cases with filtering, sorting, and pagination
func GetCases(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	status := c.QueryParam("status")
	priority := c.QueryParam("priority")
	category := c.QueryParam("category")
	clientID := c.QueryParam("client_id")
	assignedTo := c.QueryParam("assigned_to")
	dateFrom := c.QueryParam("date_from")
	dateTo := c.QueryParam("date_to")
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

	orderClause := "opened_at DESC"
	if sortParam := c.QueryParam("sort"); sortParam != "" {
		if column, ok := caseSortColumns[sortParam]; ok {
			direction := "ASC"
			if c.QueryParam("order") == "desc" {
				direction = "DESC"
			}
			orderClause = column + " " + direction
		}
	}

	query := db.DB.Model(&models.Case{})

	// Consultants only see cases assigned to them
	if currentUser.Role == models.RoleConsultant {
		query = query.Where("assigned_to_id = ?", currentUser.ID)
	}

	if status != "" && models.IsValidCaseStatus(status) {
		query = query.Where("status = ?", status)
	}
	if priority != "" && models.IsValidCasePriority(priority) {
		query = query.Where("priority = ?", priority)
	}
	if category != "" && models.IsValidCaseCategory(category) {
		query = query.Where("category = ?", category)
	}
	if clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if assignedTo != "" && currentUser.IsAdmin() {
		query = query.Where("assigned_to_id = ?", assignedTo)
	}
	if dateFrom != "" {
		if parsedDate, err := time.Parse("2006-01-02", dateFrom); err == nil {
			query = query.Where("opened_at >= ?", parsedDate)
		}
	}
	if dateTo != "" {
		if parsedDate, err := time.Parse("2006-01-02", dateTo); err == nil {
			// Add 24 hours to include the entire day
			endOfDay := parsedDate.Add(24 * time.Hour)
			query = query.Where("opened_at < ?", endOfDay)
		}
	}
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where(
			db.DB.Where("case_number LIKE ?", pattern).
				Or("title LIKE ?", pattern).
				Or("description LIKE ?", pattern).
				Or("EXISTS (SELECT 1 FROM clients WHERE clients.id = cases.client_id AND clients.name LIKE ?)", pattern),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count cases")
	}

	offset := (page - 1) * limit
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	var cases []models.Case
	if err := query.
		Preload("Client").
		Preload("AssignedTo").
		Order(orderClause).
		Limit(limit).
		Offset(offset).
		Find(&cases).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cases")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": cases,
		"pagination": map[string]interface{}{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// GetCase returns a single case with its client, assignee, interactions, and
// documents
func GetCase(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var caseRecord models.Case
	if err := db.DB.
		Preload("Client").
		Preload("Contract").
		Preload("AssignedTo").
		Preload("CreatedBy").
		Preload("StatusChanger").
		Preload("Interactions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("occurred_at DESC")
		}).
		Preload("Interactions.LoggedBy").
		Preload("Documents").
		Preload("Documents.UploadedBy").
		First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	if !canAccessCase(currentUser, &caseRecord) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	return c.JSON(http.StatusOK, caseRecord)
}

// CreateCase creates a new case with a generated case number
func CreateCase(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	caseRecord := new(models.Case)
	if err := c.Bind(caseRecord); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	caseRecord.Title = strings.TrimSpace(caseRecord.Title)
	if caseRecord.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Case title is required",
		})
	}

	var client models.Client
	if err := db.DB.First(&client, "id = ?", caseRecord.ClientID).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Client not found",
		})
	}

	if caseRecord.Category == "" {
		caseRecord.Category = models.CaseCategoryOther
	} else if !models.IsValidCaseCategory(caseRecord.Category) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid category. Must be one of: GRIEVANCE, PAYROLL, POLICY, DISCIPLINARY, COMPLIANCE, OTHER",
		})
	}

	if caseRecord.Priority == "" {
		caseRecord.Priority = models.CasePriorityMedium
	} else if !models.IsValidCasePriority(caseRecord.Priority) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid priority. Must be one of: LOW, MEDIUM, HIGH, URGENT",
		})
	}

	if caseRecord.ContractID != nil && *caseRecord.ContractID != "" {
		var contract models.Contract
		if err := db.DB.First(&contract, "id = ? AND client_id = ?", *caseRecord.ContractID, client.ID).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Contract not found for this client",
			})
		}
	} else {
		caseRecord.ContractID = nil
	}

	var assignee *models.User
	if caseRecord.AssignedToID != nil && *caseRecord.AssignedToID != "" {
		var user models.User
		if err := db.DB.First(&user, "id = ? AND is_active = ?", *caseRecord.AssignedToID, true).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Assignee not found or inactive",
			})
		}
		assignee = &user
	} else {
		caseRecord.AssignedToID = nil
	}

	caseNumber, err := services.EnsureUniqueCaseNumber(db.DB, client.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate case number")
	}

	caseRecord.ID = ""
	caseRecord.CaseNumber = caseNumber
	caseRecord.Status = models.CaseStatusOpen
	caseRecord.OpenedAt = time.Now()
	caseRecord.ClosedAt = nil
	caseRecord.StatusChangedAt = nil
	caseRecord.StatusChangedBy = nil
	caseRecord.LastActivityAt = nil
	caseRecord.CreatedByID = &currentUser.ID
	caseRecord.Description = services.SanitizeHTML(caseRecord.Description)

	// Relations come back through preloads, never from the request body
	caseRecord.Client = models.Client{}
	caseRecord.Contract = nil
	caseRecord.AssignedTo = nil
	caseRecord.Interactions = nil
	caseRecord.Documents = nil

	if err := db.DB.Create(caseRecord).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create case",
		})
	}

	if assignee != nil {
		notifyCaseAssignment(c, caseRecord, assignee, client.Name)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "Case", caseRecord.ID, caseRecord.CaseNumber,
		"Opened case for client "+client.Name, nil, map[string]interface{}{
			"category": caseRecord.Category,
			"priority": caseRecord.Priority,
		})

	return c.JSON(http.StatusCreated, caseRecord)
}

// UpdateCase updates a case's fields. Status and assignment changes go
// through their dedicated endpoints.
func UpdateCase(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var caseRecord models.Case
	if err := db.DB.First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	if !canAccessCase(currentUser, &caseRecord) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	original := caseRecord

	if err := c.Bind(&caseRecord); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	caseRecord.Title = strings.TrimSpace(caseRecord.Title)
	if caseRecord.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Case title is required",
		})
	}

	if !models.IsValidCaseCategory(caseRecord.Category) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid category. Must be one of: GRIEVANCE, PAYROLL, POLICY, DISCIPLINARY, COMPLIANCE, OTHER",
		})
	}
	if !models.IsValidCasePriority(caseRecord.Priority) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid priority. Must be one of: LOW, MEDIUM, HIGH, URGENT",
		})
	}

	if caseRecord.ContractID != nil && *caseRecord.ContractID != "" {
		var contract models.Contract
		if err := db.DB.First(&contract, "id = ? AND client_id = ?", *caseRecord.ContractID, original.ClientID).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Contract not found for this client",
			})
		}
	}

	// Identity and lifecycle fields are immutable here
	caseRecord.ClientID = original.ClientID
	caseRecord.CaseNumber = original.CaseNumber
	caseRecord.Status = original.Status
	caseRecord.OpenedAt = original.OpenedAt
	caseRecord.ClosedAt = original.ClosedAt
	caseRecord.StatusChangedAt = original.StatusChangedAt
	caseRecord.StatusChangedBy = original.StatusChangedBy
	caseRecord.AssignedToID = original.AssignedToID
	caseRecord.CreatedByID = original.CreatedByID
	caseRecord.LastActivityAt = original.LastActivityAt
	caseRecord.Description = services.SanitizeHTML(caseRecord.Description)

	caseRecord.Client = models.Client{}
	caseRecord.Contract = nil
	caseRecord.AssignedTo = nil
	caseRecord.Interactions = nil
	caseRecord.Documents = nil

	if err := db.DB.Save(&caseRecord).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update case",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "Case", caseRecord.ID, caseRecord.CaseNumber,
		"Updated case",
		map[string]interface{}{"title": original.Title, "priority": original.Priority, "category": original.Category},
		map[string]interface{}{"title": caseRecord.Title, "priority": caseRecord.Priority, "category": caseRecord.Category})

	return c.JSON(http.StatusOK, caseRecord)
}

// UpdateCaseStatus moves a case through its status lifecycle. Closing
// requires a resolution note, which is stored as a SYSTEM interaction.
func UpdateCaseStatus(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var caseRecord models.Case
	if err := db.DB.Preload("Client").First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	if !canAccessCase(currentUser, &caseRecord) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	var req updateCaseStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if !models.IsValidCaseStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid status. Must be one of: OPEN, IN_PROGRESS, ON_HOLD, CLOSED",
		})
	}

	if req.Status == caseRecord.Status {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Case is already " + req.Status,
		})
	}

	if !caseRecord.CanTransitionTo(req.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Cannot transition from %s to %s", caseRecord.Status, req.Status),
		})
	}

	closing := req.Status == models.CaseStatusClosed
	if closing && strings.TrimSpace(req.ResolutionNote) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "A resolution note is required to close a case",
		})
	}

	oldStatus := caseRecord.Status
	now := time.Now()

	updates := map[string]interface{}{
		"status":            req.Status,
		"status_changed_at": now,
		"status_changed_by": currentUser.ID,
	}
	if closing {
		updates["closed_at"] = now
	} else if oldStatus == models.CaseStatusClosed {
		// Reopening clears the closed timestamp
		updates["closed_at"] = nil
	}

	if err := db.DB.Model(&caseRecord).Updates(updates).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update case status",
		})
	}

	if closing {
		if err := services.LogSystemInteraction(db.DB, caseRecord.ID, currentUser.ID,
			"Case closed", req.ResolutionNote); err != nil {
			c.Logger().Warnf("failed to log resolution note for case %s: %v", caseRecord.ID, err)
		}
	}

	if caseRecord.AssignedToID != nil && *caseRecord.AssignedToID != currentUser.ID {
		notifier := services.NewNotificationService(db.DB)
		if err := notifier.NotifyCaseStatusChanged(&caseRecord, *caseRecord.AssignedToID, oldStatus, req.Status); err != nil {
			c.Logger().Warnf("failed to create status notification: %v", err)
		}
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "Case", caseRecord.ID, caseRecord.CaseNumber,
		"Changed case status",
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": req.Status})

	return c.JSON(http.StatusOK, caseRecord)
}

// AssignCase assigns a case to a user (admin only). Passing an empty
// assignee unassigns the case.
func AssignCase(c echo.Context) error {
	var caseRecord models.Case
	if err := db.DB.Preload("Client").First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	var req assignCaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	var oldAssignee string
	if caseRecord.AssignedToID != nil {
		oldAssignee = *caseRecord.AssignedToID
	}

	if req.AssignedToID == "" {
		if err := db.DB.Model(&caseRecord).Update("assigned_to_id", nil).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unassign case")
		}
		caseRecord.AssignedToID = nil
	} else {
		var assignee models.User
		if err := db.DB.First(&assignee, "id = ? AND is_active = ?", req.AssignedToID, true).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Assignee not found or inactive",
			})
		}

		if err := db.DB.Model(&caseRecord).Update("assigned_to_id", assignee.ID).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to assign case")
		}
		caseRecord.AssignedToID = &assignee.ID

		if oldAssignee != assignee.ID {
			notifyCaseAssignment(c, &caseRecord, &assignee, caseRecord.Client.Name)
		}
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "Case", caseRecord.ID, caseRecord.CaseNumber,
		"Reassigned case",
		map[string]interface{}{"assigned_to_id": oldAssignee},
		map[string]interface{}{"assigned_to_id": req.AssignedToID})

	return c.JSON(http.StatusOK, caseRecord)
}

// DeleteCase soft-deletes a case (admin only)
func DeleteCase(c echo.Context) error {
	var caseRecord models.Case
	if err := db.DB.First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	if err := db.DB.Delete(&caseRecord).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete case",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "Case", caseRecord.ID, caseRecord.CaseNumber,
		"Deleted case", map[string]interface{}{"status": caseRecord.Status}, nil)

	return c.NoContent(http.StatusNoContent)
}

// GetCaseSummaryPDF renders a case summary with its interaction timeline as PDF
func GetCaseSummaryPDF(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var caseRecord models.Case
	if err := db.DB.
		Preload("Client").
		Preload("AssignedTo").
		First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	if !canAccessCase(currentUser, &caseRecord) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	var interactions []models.Interaction
	db.DB.Preload("LoggedBy").
		Where("case_id = ?", caseRecord.ID).
		Order("occurred_at DESC").
		Find(&interactions)

	var documents []models.Document
	db.DB.Preload("UploadedBy").
		Where("case_id = ?", caseRecord.ID).
		Order("created_at DESC").
		Find(&documents)

	pdfBytes, err := services.GenerateCaseSummaryPDF(&caseRecord, &caseRecord.Client, interactions, documents)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	fileName := fmt.Sprintf("case_%s.pdf", caseRecord.CaseNumber)
	c.Response().Header().Set("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}
