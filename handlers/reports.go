package handlers

import (
	"fmt"
	"net/http"
	"talent_flow_app_go/db"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
	"time"

	"github.com/labstack/echo/v4"
)

const excelMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetCaseReport exports cases matching the query filters as an Excel workbook
func GetCaseReport(c echo.Context) error {
	filters := services.CaseReportFilters{}

	if status := c.QueryParam("status"); status != "" {
		if !models.IsValidCaseStatus(status) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid status filter"})
		}
		filters.Status = status
	}
	if priority := c.QueryParam("priority"); priority != "" {
		if !models.IsValidCasePriority(priority) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid priority filter"})
		}
		filters.Priority = priority
	}
	filters.ClientID = c.QueryParam("client_id")
	filters.AssignedTo = c.QueryParam("assigned_to")

	buf, err := services.ExportCasesExcel(db.DB, filters)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate report")
	}

	filename := fmt.Sprintf("cases_report_%s.xlsx", time.Now().Format("2006-01-02"))

	c.Response().Header().Set("Content-Disposition", "attachment; filename="+filename)
	c.Response().Header().Set("Content-Type", excelMimeType)

	return c.Blob(http.StatusOK, excelMimeType, buf.Bytes())
}

// GetClientReport exports the client directory as an Excel workbook
func GetClientReport(c echo.Context) error {
	buf, err := services.ExportClientsExcel(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate report")
	}

	filename := fmt.Sprintf("clients_report_%s.xlsx", time.Now().Format("2006-01-02"))

	c.Response().Header().Set("Content-Disposition", "attachment; filename="+filename)
	c.Response().Header().Set("Content-Type", excelMimeType)

	return c.Blob(http.StatusOK, excelMimeType, buf.Bytes())
}
