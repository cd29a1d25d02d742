package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// GetClientImportTemplate serves the Excel template for bulk client import
func GetClientImportTemplate(c echo.Context) error {
	buf, err := services.GenerateClientImportTemplate()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate template")
	}

	c.Response().Header().Set("Content-Disposition", "attachment; filename=client_import_template.xlsx")
	c.Response().Header().Set("Content-Type", excelMimeType)

	return c.Blob(http.StatusOK, excelMimeType, buf.Bytes())
}

// ImportClients processes an uploaded client workbook and reports per-row
// results
func ImportClients(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
	}

	if !strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "File must be an .xlsx workbook"})
	}
	if file.Size > MaxUploadSize {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "File exceeds the 20 MB size limit"})
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open file")
	}
	defer src.Close()

	result, err := services.BulkCreateClientsFromExcel(db.DB, src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Import failed: %v", err),
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "Client", "", file.Filename,
		fmt.Sprintf("Imported %d clients from workbook", result.SuccessCount), nil, map[string]interface{}{
			"total_processed": result.TotalProcessed,
			"success_count":   result.SuccessCount,
			"failed_count":    result.FailedCount,
		})

	return c.JSON(http.StatusOK, result)
}
