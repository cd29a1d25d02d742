package services

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"talent_flow_app_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportResult contains the summary of a bulk import
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	SuccessCount   int      `json:"success_count"`
	FailedCount    int      `json:"failed_count"`
	Errors         []string `json:"errors"`
}

const (
	importSheetInstructions = "Instructions"
	importSheetClients      = "Clients"
)

// GenerateClientImportTemplate builds the Excel template for bulk client import
func GenerateClientImportTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", importSheetInstructions)

	// --- Instructions sheet ---
	f.SetCellValue(importSheetInstructions, "A1", "Client import template")
	f.SetCellValue(importSheetInstructions, "A3", "Before you upload:")
	f.SetCellValue(importSheetInstructions, "A4", "- Fields marked with * are required.")
	f.SetCellValue(importSheetInstructions, "A5", "- Status must be one of: PROSPECT, ACTIVE, ARCHIVED. Empty defaults to PROSPECT.")
	f.SetCellValue(importSheetInstructions, "A6", "- Headcount must be a whole number.")
	f.SetCellValue(importSheetInstructions, "A7", "- A row with a name matching an existing client is skipped and reported.")
	f.SetCellValue(importSheetInstructions, "A8", "- Contact columns are optional. When Contact Name is present a primary contact is created.")
	f.SetCellValue(importSheetInstructions, "A9", "- Do not rename or reorder the sheets.")

	mainTitleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	f.SetCellStyle(importSheetInstructions, "A1", "A1", mainTitleStyle)
	f.SetColWidth(importSheetInstructions, "A", "A", 90)

	// --- Clients sheet ---
	f.NewSheet(importSheetClients)
	headers := []string{
		"Name*",         // A
		"Legal Name",    // B
		"Industry",      // C
		"Headcount",     // D
		"Status",        // E
		"Email",         // F
		"Phone",         // G
		"Website",       // H
		"Contact Name",  // I
		"Contact Title", // J
		"Contact Email", // K
		"Contact Phone", // L
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(importSheetClients, cell, header)
	}
	f.SetColWidth(importSheetClients, "A", "L", 20)

	// Example row
	f.SetCellValue(importSheetClients, "A2", "Acme Group")
	f.SetCellValue(importSheetClients, "B2", "Acme Group Holdings Ltd")
	f.SetCellValue(importSheetClients, "C2", "Manufacturing")
	f.SetCellValue(importSheetClients, "D2", 240)
	f.SetCellValue(importSheetClients, "E2", "ACTIVE")
	f.SetCellValue(importSheetClients, "F2", "hr@acme.example.com")
	f.SetCellValue(importSheetClients, "G2", "+1 555 0100")
	f.SetCellValue(importSheetClients, "H2", "https://acme.example.com")
	f.SetCellValue(importSheetClients, "I2", "Jane Smith")
	f.SetCellValue(importSheetClients, "J2", "Head of People")
	f.SetCellValue(importSheetClients, "K2", "jane.smith@acme.example.com")
	f.SetCellValue(importSheetClients, "L2", "+1 555 0101")

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(importSheetClients, "A1", "L1", headerStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}

	return buf, nil
}

// BulkCreateClientsFromExcel parses an uploaded template and creates client
// records. Rows that fail validation are reported individually; valid rows
// are still committed.
func BulkCreateClientsFromExcel(dbConn *gorm.DB, file io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	result := &ImportResult{
		Errors: []string{},
	}

	if f.SheetCount < 2 {
		return nil, fmt.Errorf("invalid excel format: missing sheets")
	}

	sheets := f.GetSheetList()
	clientSheetName := sheets[1]

	rows, err := f.GetRows(clientSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read clients sheet: %w", err)
	}

	cell := func(row []string, idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	tx := dbConn.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for i, row := range rows {
		if i == 0 {
			continue // Header
		}

		name := cell(row, 0)
		if name == "" {
			continue
		}

		result.TotalProcessed++

		// Columns:
		// 0: Name*, 1: Legal Name, 2: Industry, 3: Headcount, 4: Status,
		// 5: Email, 6: Phone, 7: Website,
		// 8: Contact Name, 9: Contact Title, 10: Contact Email, 11: Contact Phone

		// Duplicate detection is by slug so "Acme Group" and "acme group" collide
		slug := models.GenerateClientSlug(name)
		var count int64
		if err := tx.Model(&models.Client{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to check for duplicate client: %w", err)
		}
		if count > 0 {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: client %q already exists", i+1, name))
			continue
		}

		status := strings.ToUpper(cell(row, 4))
		if status == "" {
			status = models.ClientStatusProspect
		}
		if !models.IsValidClientStatus(status) {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid status %q", i+1, cell(row, 4)))
			continue
		}

		headcount := 0
		if raw := cell(row, 3); raw != "" {
			headcount, err = strconv.Atoi(raw)
			if err != nil || headcount < 0 {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid headcount %q", i+1, raw))
				continue
			}
		}

		client := models.Client{
			Name:      name,
			Slug:      slug,
			LegalName: cell(row, 1),
			Industry:  cell(row, 2),
			Headcount: headcount,
			Status:    status,
			Email:     cell(row, 5),
			Phone:     cell(row, 6),
			Website:   cell(row, 7),
		}

		if err := tx.Create(&client).Error; err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to save client: %v", i+1, err))
			continue
		}

		if contactName := cell(row, 8); contactName != "" {
			contact := models.ClientContact{
				ClientID:  client.ID,
				Name:      contactName,
				Title:     cell(row, 9),
				Email:     cell(row, 10),
				Phone:     cell(row, 11),
				IsPrimary: true,
			}
			if err := tx.Create(&contact).Error; err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: warning: failed to create contact: %v", i+1, err))
			}
		}

		if _, err := InstantiateChecklist(tx, models.ChecklistTemplateClientSetup, client.ID, nil); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: warning: failed to create setup checklist: %v", i+1, err))
		}

		result.SuccessCount++
	}

	if result.FailedCount > 0 && result.SuccessCount == 0 && result.TotalProcessed > 0 {
		tx.Rollback()
		return result, fmt.Errorf("all rows failed")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return result, nil
}
