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
	"gorm.io/gorm"
)

// clientSortColumns whitelists the sortable columns for client listings
var clientSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"status":     "status",
	"headcount":  "headcount",
}

// GetClients returns a list of clients with filtering and pagination
func GetClients(c echo.Context) error {
	status := c.QueryParam("status")
	industry := c.QueryParam("industry")
	accountManager := c.QueryParam("account_manager")
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

	// Sorting is restricted to a whitelist of columns
	orderClause := "name ASC"
	if sortParam := c.QueryParam("sort"); sortParam != "" {
		if column, ok := clientSortColumns[sortParam]; ok {
			direction := "ASC"
			if c.QueryParam("order") == "desc" {
				direction = "DESC"
			}
			orderClause = column + " " + direction
		}
	}

	query := db.DB.Model(&models.Client{})

	if status != "" && models.IsValidClientStatus(status) {
		query = query.Where("status = ?", status)
	}
	if industry != "" {
		query = query.Where("industry = ?", industry)
	}
	if accountManager != "" {
		query = query.Where("account_manager_id = ?", accountManager)
	}
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where(
			db.DB.Where("name LIKE ?", pattern).
				Or("legal_name LIKE ?", pattern).
				Or("industry LIKE ?", pattern).
				Or("EXISTS (SELECT 1 FROM client_contacts WHERE client_contacts.client_id = clients.id AND client_contacts.email LIKE ?)", pattern),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count clients")
	}

	offset := (page - 1) * limit
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	var clients []models.Client
	if err := query.
		Preload("AccountManager").
		Order(orderClause).
		Limit(limit).
		Offset(offset).
		Find(&clients).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch clients")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": clients,
		"pagination": map[string]interface{}{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// GetClient returns a single client with contacts, addresses, compliance
// audits, the active contract, and onboarding progress
func GetClient(c echo.Context) error {
	id := c.Param("id")

	var client models.Client
	if err := db.DB.
		Preload("AccountManager").
		Preload("Contacts").
		Preload("Addresses").
		Preload("Audits").
		First(&client, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Client not found",
		})
	}

	var activeContract *models.Contract
	var contract models.Contract
	if err := db.DB.
		Where("client_id = ? AND status = ?", client.ID, models.ContractStatusActive).
		First(&contract).Error; err == nil {
		activeContract = &contract
	}

	var checklists []models.OnboardingChecklist
	db.DB.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	}).Where("client_id = ?", client.ID).Find(&checklists)

	progress := make([]models.OnboardingProgress, 0, len(checklists))
	for i := range checklists {
		progress = append(progress, checklists[i].Progress())
	}

	openCases, _ := services.CountOpenCases(db.DB, client.ID)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"client":          client,
		"active_contract": activeContract,
		"onboarding":      progress,
		"open_cases":      openCases,
	})
}

// CreateClient creates a new client with a unique slug and kicks off the
// client setup checklist
func CreateClient(c echo.Context) error {
	client := new(models.Client)
	if err := c.Bind(client); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Client name is required",
		})
	}

	if client.Status == "" {
		client.Status = models.ClientStatusProspect
	} else if !models.IsValidClientStatus(client.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid status. Must be one of: PROSPECT, ACTIVE, ARCHIVED",
		})
	}

	if client.Headcount < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Headcount cannot be negative",
		})
	}

	if client.AccountManagerID != nil && *client.AccountManagerID != "" {
		var manager models.User
		if err := db.DB.First(&manager, "id = ? AND is_active = ?", *client.AccountManagerID, true).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Account manager not found or inactive",
			})
		}
	} else {
		client.AccountManagerID = nil
	}

	slug, err := services.EnsureUniqueClientSlug(db.DB, client.Name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create client")
	}
	client.Slug = slug

	client.Notes = services.SanitizeHTML(client.Notes)

	// Relations are managed through their own endpoints
	client.Contacts = nil
	client.Addresses = nil
	client.Contracts = nil
	client.Cases = nil

	if err := db.DB.Create(client).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create client",
		})
	}

	if _, err := services.InstantiateChecklist(db.DB, models.ChecklistTemplateClientSetup, client.ID, nil); err != nil {
		// The client record stays valid even if the checklist template is broken
		c.Logger().Warnf("failed to create setup checklist for client %s: %v", client.ID, err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "Client", client.ID, client.Name,
		"Created client", nil, map[string]interface{}{
			"slug":   client.Slug,
			"status": client.Status,
		})

	return c.JSON(http.StatusCreated, client)
}

// UpdateClient updates an existing client. The slug is never regenerated so
// existing case numbers keep their prefix.
func UpdateClient(c echo.Context) error {
	id := c.Param("id")

	var client models.Client
	if err := db.DB.First(&client, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Client not found",
		})
	}

	originalSlug := client.Slug
	originalStatus := client.Status
	originalName := client.Name

	if err := c.Bind(&client); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Client name is required",
		})
	}

	if !models.IsValidClientStatus(client.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid status. Must be one of: PROSPECT, ACTIVE, ARCHIVED",
		})
	}

	if client.Headcount < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Headcount cannot be negative",
		})
	}

	if client.AccountManagerID != nil && *client.AccountManagerID != "" {
		var manager models.User
		if err := db.DB.First(&manager, "id = ? AND is_active = ?", *client.AccountManagerID, true).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Account manager not found or inactive",
			})
		}
	}

	// Slug stays stable across renames
	client.Slug = originalSlug
	client.Notes = services.SanitizeHTML(client.Notes)

	client.Contacts = nil
	client.Addresses = nil
	client.Contracts = nil
	client.Cases = nil

	if err := db.DB.Save(&client).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update client",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "Client", client.ID, client.Name,
		"Updated client",
		map[string]interface{}{"name": originalName, "status": originalStatus},
		map[string]interface{}{"name": client.Name, "status": client.Status})

	return c.JSON(http.StatusOK, client)
}

// DeleteClient soft-deletes a client (admin only). Deletion is blocked while
// the client still has open cases.
func DeleteClient(c echo.Context) error {
	id := c.Param("id")

	var client models.Client
	if err := db.DB.First(&client, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Client not found",
		})
	}

	openCases, err := services.CountOpenCases(db.DB, client.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check client cases")
	}
	if openCases > 0 {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Cannot delete a client with open cases. Close or reassign the cases first.",
		})
	}

	if err := db.DB.Delete(&client).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete client",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "Client", client.ID, client.Name,
		"Deleted client", map[string]interface{}{"slug": client.Slug, "status": client.Status}, nil)

	return c.NoContent(http.StatusNoContent)
}
