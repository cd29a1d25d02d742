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

// GetClientAddresses returns a client's addresses, primary first
func GetClientAddresses(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var addresses []models.ClientAddress
	if err := db.DB.
		Where("client_id = ?", client.ID).
		Order("is_primary DESC, label ASC").
		Find(&addresses).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch addresses")
	}

	return c.JSON(http.StatusOK, addresses)
}

// CreateClientAddress adds an address to a client. The first address of a
// client automatically becomes the primary one.
func CreateClientAddress(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	address := new(models.ClientAddress)
	if err := c.Bind(address); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	address.Street = strings.TrimSpace(address.Street)
	address.City = strings.TrimSpace(address.City)
	address.Country = strings.TrimSpace(address.Country)
	if address.Street == "" || address.City == "" || address.Country == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Street, city, and country are required",
		})
	}

	if address.Label == "" {
		address.Label = models.AddressLabelHQ
	} else if !models.IsValidAddressLabel(address.Label) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid label. Must be one of: HQ, BILLING, SITE",
		})
	}

	address.ID = ""
	address.ClientID = client.ID

	var existingCount int64
	db.DB.Model(&models.ClientAddress{}).Where("client_id = ?", client.ID).Count(&existingCount)

	makePrimary := address.IsPrimary || existingCount == 0
	address.IsPrimary = false

	if err := db.DB.Create(address).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create address",
		})
	}

	if makePrimary {
		if err := services.SetPrimaryAddress(db.DB, client.ID, address.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to set primary address")
		}
		address.IsPrimary = true
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "ClientAddress", address.ID, address.Label,
		"Added address to client "+client.Name, nil, nil)

	return c.JSON(http.StatusCreated, address)
}

// UpdateClientAddress updates an address. Promoting an address to primary
// clears the flag on the client's other addresses.
func UpdateClientAddress(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var address models.ClientAddress
	if err := db.DB.First(&address, "id = ? AND client_id = ?", c.Param("addressId"), client.ID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Address not found",
		})
	}

	wasPrimary := address.IsPrimary

	if err := c.Bind(&address); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	address.Street = strings.TrimSpace(address.Street)
	address.City = strings.TrimSpace(address.City)
	address.Country = strings.TrimSpace(address.Country)
	if address.Street == "" || address.City == "" || address.Country == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Street, city, and country are required",
		})
	}

	if !models.IsValidAddressLabel(address.Label) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid label. Must be one of: HQ, BILLING, SITE",
		})
	}

	address.ClientID = client.ID

	promote := address.IsPrimary && !wasPrimary
	address.IsPrimary = wasPrimary

	if err := db.DB.Save(&address).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update address",
		})
	}

	if promote {
		if err := services.SetPrimaryAddress(db.DB, client.ID, address.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to set primary address")
		}
		address.IsPrimary = true
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "ClientAddress", address.ID, address.Label,
		"Updated address of client "+client.Name, nil, nil)

	return c.JSON(http.StatusOK, address)
}

// DeleteClientAddress removes an address from a client
func DeleteClientAddress(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var address models.ClientAddress
	if err := db.DB.First(&address, "id = ? AND client_id = ?", c.Param("addressId"), client.ID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Address not found",
		})
	}

	if err := db.DB.Delete(&address).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete address",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "ClientAddress", address.ID, address.Label,
		"Removed address from client "+client.Name, nil, nil)

	return c.NoContent(http.StatusNoContent)
}
