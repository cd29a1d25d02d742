package handlers

import (
	"net/http"
	"strings"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// findClient loads a client by the :id route param, shared by the nested
// contact/address/audit handlers
func findClient(c echo.Context) (*models.Client, error) {
	var client models.Client
	if err := db.DB.First(&client, "id = ?", c.Param("id")).Error; err != nil {
		return nil, c.JSON(http.StatusNotFound, map[string]string{
			"error": "Client not found",
		})
	}
	return &client, nil
}

// GetClientContacts returns a client's contacts, primary first
func GetClientContacts(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var contacts []models.ClientContact
	if err := db.DB.
		Where("client_id = ?", client.ID).
		Order("is_primary DESC, name ASC").
		Find(&contacts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch contacts")
	}

	return c.JSON(http.StatusOK, contacts)
}

// CreateClientContact adds a contact to a client. The first contact of a
// client automatically becomes the primary one.
func CreateClientContact(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	contact := new(models.ClientContact)
	if err := c.Bind(contact); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	contact.Name = strings.TrimSpace(contact.Name)
	if contact.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Contact name is required",
		})
	}

	contact.ID = ""
	contact.ClientID = client.ID

	var existingCount int64
	db.DB.Model(&models.ClientContact{}).Where("client_id = ?", client.ID).Count(&existingCount)

	makePrimary := contact.IsPrimary || existingCount == 0
	contact.IsPrimary = false

	if err := db.DB.Create(contact).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create contact",
		})
	}

	if makePrimary {
		if err := services.SetPrimaryContact(db.DB, client.ID, contact.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to set primary contact")
		}
		contact.IsPrimary = true
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "ClientContact", contact.ID, contact.Name,
		"Added contact to client "+client.Name, nil, nil)

	return c.JSON(http.StatusCreated, contact)
}

// UpdateClientContact updates a contact. Promoting a contact to primary
// clears the flag on the client's other contacts.
func UpdateClientContact(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var contact models.ClientContact
	if err := db.DB.First(&contact, "id = ? AND client_id = ?", c.Param("contactId"), client.ID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Contact not found",
		})
	}

	wasPrimary := contact.IsPrimary

	if err := c.Bind(&contact); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	contact.Name = strings.TrimSpace(contact.Name)
	if contact.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Contact name is required",
		})
	}

	contact.ClientID = client.ID

	promote := contact.IsPrimary && !wasPrimary
	contact.IsPrimary = wasPrimary

	if err := db.DB.Save(&contact).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update contact",
		})
	}

	if promote {
		if err := services.SetPrimaryContact(db.DB, client.ID, contact.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to set primary contact")
		}
		contact.IsPrimary = true
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "ClientContact", contact.ID, contact.Name,
		"Updated contact of client "+client.Name, nil, nil)

	return c.JSON(http.StatusOK, contact)
}

// DeleteClientContact removes a contact from a client
func DeleteClientContact(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var contact models.ClientContact
	if err := db.DB.First(&contact, "id = ? AND client_id = ?", c.Param("contactId"), client.ID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Contact not found",
		})
	}

	if err := db.DB.Delete(&contact).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete contact",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "ClientContact", contact.ID, contact.Name,
		"Removed contact from client "+client.Name, nil, nil)

	return c.NoContent(http.StatusNoContent)
}
