package services

import (
	"bytes"
	"fmt"
	"talent_flow_app_go/models"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// CaseReportFilters narrows the case export to a subset of cases
type CaseReportFilters struct {
	Status     string
	Priority   string
	ClientID   string
	AssignedTo string
}

// ExportCasesExcel builds a cases workbook matching the given filters
func ExportCasesExcel(db *gorm.DB, filters CaseReportFilters) (*bytes.Buffer, error) {
	query := db.Model(&models.Case{}).
		Preload("Client").
		Preload("AssignedTo")

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		query = query.Where("priority = ?", filters.Priority)
	}
	if filters.ClientID != "" {
		query = query.Where("client_id = ?", filters.ClientID)
	}
	if filters.AssignedTo != "" {
		query = query.Where("assigned_to_id = ?", filters.AssignedTo)
	}

	var cases []models.Case
	if err := query.Order("opened_at DESC").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to load cases for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Cases"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Case Number", // A
		"Client",      // B
		"Title",       // C
		"Category",    // D
		"Priority",    // E
		"Status",      // F
		"Assigned To", // G
		"Opened",      // H
		"Closed",      // I
		"Age (days)",  // J
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	now := time.Now()
	for i, c := range cases {
		row := i + 2

		clientName := ""
		if c.Client.ID != "" {
			clientName = c.Client.Name
		}
		assignee := ""
		if c.AssignedTo != nil {
			assignee = c.AssignedTo.Name
		}
		closed := ""
		ageEnd := now
		if c.ClosedAt != nil {
			closed = c.ClosedAt.Format("2006-01-02")
			ageEnd = *c.ClosedAt
		}
		ageDays := int(ageEnd.Sub(c.OpenedAt).Hours() / 24)
		if ageDays < 0 {
			ageDays = 0
		}

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), c.CaseNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), clientName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), c.Title)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), c.Category)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), c.Priority)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), c.Status)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), assignee)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), c.OpenedAt.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), closed)
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), ageDays)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "J1", headerStyle)
	f.SetColWidth(sheet, "A", "C", 24)
	f.SetColWidth(sheet, "D", "J", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// ExportClientsExcel builds a workbook of all clients with engagement counts
func ExportClientsExcel(db *gorm.DB) (*bytes.Buffer, error) {
	var clients []models.Client
	if err := db.Preload("AccountManager").Order("name ASC").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to load clients for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Clients"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Name",            // A
		"Slug",            // B
		"Status",          // C
		"Industry",        // D
		"Headcount",       // E
		"Account Manager", // F
		"Active Contract", // G
		"Open Cases",      // H
		"Created",         // I
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, client := range clients {
		row := i + 2

		manager := ""
		if client.AccountManager != nil {
			manager = client.AccountManager.Name
		}

		var activeContracts int64
		db.Model(&models.Contract{}).
			Where("client_id = ? AND status = ?", client.ID, models.ContractStatusActive).
			Count(&activeContracts)
		hasActive := "No"
		if activeContracts > 0 {
			hasActive = "Yes"
		}

		openCases, _ := CountOpenCases(db, client.ID)

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), client.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), client.Slug)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), client.Status)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), client.Industry)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), client.Headcount)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), manager)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), hasActive)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), openCases)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), client.CreatedAt.Format("2006-01-02"))
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "I1", headerStyle)
	f.SetColWidth(sheet, "A", "B", 24)
	f.SetColWidth(sheet, "C", "I", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}
