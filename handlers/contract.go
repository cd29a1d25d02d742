package handlers

import (
	"fmt"
	"net/http"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type terminateContractRequest struct {
	Reason string `json:"reason" form:"reason"`
}

// GetClientContracts returns a client's contract history, newest version first
func GetClientContracts(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	var contracts []models.Contract
	if err := db.DB.
		Preload("CreatedBy").
		Where("client_id = ?", client.ID).
		Order("version DESC").
		Find(&contracts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch contracts")
	}

	return c.JSON(http.StatusOK, contracts)
}

// CreateClientContract creates a new draft contract for a client with the
// next version number
func CreateClientContract(c echo.Context) error {
	client, err := findClient(c)
	if client == nil {
		return err
	}

	contract := new(models.Contract)
	if err := c.Bind(contract); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if contract.HourlyRateCents <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Hourly rate must be positive",
		})
	}
	if contract.MonthlyHours <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Monthly hours must be positive",
		})
	}
	if contract.StartsOn.IsZero() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Start date is required",
		})
	}
	if contract.EndsOn != nil && !contract.EndsOn.After(contract.StartsOn) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "End date must be after the start date",
		})
	}

	version, err := services.NextContractVersion(db.DB, client.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create contract")
	}

	currentUser := middleware.GetCurrentUser(c)

	contract.ID = ""
	contract.ClientID = client.ID
	contract.Version = version
	contract.Status = models.ContractStatusDraft
	contract.SignedAt = nil
	contract.SupersedesID = nil
	contract.TerminationReason = nil
	contract.ExpiryNotifiedAt = nil
	contract.CreatedByID = &currentUser.ID
	if contract.Currency == "" {
		contract.Currency = "USD"
	}

	if err := db.DB.Create(contract).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create contract",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "Contract", contract.ID,
		fmt.Sprintf("%s/v%d", client.Slug, contract.Version),
		"Created draft contract", nil, map[string]interface{}{
			"version": contract.Version,
			"status":  contract.Status,
		})

	return c.JSON(http.StatusCreated, contract)
}

// GetContract returns a single contract
func GetContract(c echo.Context) error {
	var contract models.Contract
	if err := db.DB.
		Preload("Client").
		Preload("CreatedBy").
		First(&contract, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Contract not found",
		})
	}

	return c.JSON(http.StatusOK, contract)
}

// UpdateContract edits a contract's terms. Only drafts are editable.
func UpdateContract(c echo.Context) error {
	var contract models.Contract
	if err := db.DB.Preload("Client").First(&contract, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Contract not found",
		})
	}

	if !contract.IsDraft() {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Only draft contracts can be edited",
		})
	}

	originalClientID := contract.ClientID
	originalVersion := contract.Version

	if err := c.Bind(&contract); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if contract.HourlyRateCents <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Hourly rate must be positive",
		})
	}
	if contract.MonthlyHours <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Monthly hours must be positive",
		})
	}
	if contract.EndsOn != nil && !contract.EndsOn.After(contract.StartsOn) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "End date must be after the start date",
		})
	}

	// Identity and lifecycle fields never change through edits
	contract.ClientID = originalClientID
	contract.Version = originalVersion
	contract.Status = models.ContractStatusDraft

	if err := db.DB.Save(&contract).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update contract",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "Contract", contract.ID,
		contract.Reference(), "Updated draft contract", nil, nil)

	return c.JSON(http.StatusOK, contract)
}

// ActivateContract transitions a draft to ACTIVE, expiring any previously
// active contract of the client
func ActivateContract(c echo.Context) error {
	var contract models.Contract
	if err := db.DB.Preload("Client").First(&contract, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Contract not found",
		})
	}

	if !contract.IsDraft() {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Only draft contracts can be activated",
		})
	}

	oldStatus := contract.Status
	if err := services.ActivateContract(db.DB, &contract); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to activate contract",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "Contract", contract.ID,
		contract.Reference(), "Activated contract",
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": contract.Status})

	return c.JSON(http.StatusOK, contract)
}

// TerminateContract ends an active contract early with a reason
func TerminateContract(c echo.Context) error {
	var contract models.Contract
	if err := db.DB.Preload("Client").First(&contract, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Contract not found",
		})
	}

	if !contract.IsActive() {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Only active contracts can be terminated",
		})
	}

	var req terminateContractRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if req.Reason == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Termination reason is required",
		})
	}

	if err := services.TerminateContract(db.DB, &contract, req.Reason); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to terminate contract",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "Contract", contract.ID,
		contract.Reference(), "Terminated contract: "+req.Reason,
		map[string]interface{}{"status": models.ContractStatusActive},
		map[string]interface{}{"status": models.ContractStatusTerminated})

	return c.JSON(http.StatusOK, contract)
}

// GetContractSummaryPDF renders a contract summary sheet as PDF
func GetContractSummaryPDF(c echo.Context) error {
	var contract models.Contract
	if err := db.DB.
		Preload("Client").
		Preload("CreatedBy").
		First(&contract, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Contract not found",
		})
	}

	pdfBytes, err := services.GenerateContractSummaryPDF(&contract, &contract.Client)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	fileName := fmt.Sprintf("contract_%s_v%d.pdf", contract.Client.Slug, contract.Version)
	c.Response().Header().Set("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}
