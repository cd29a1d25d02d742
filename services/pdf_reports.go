package services

import (
	"bytes"
	"fmt"
	"html/template"
	"talent_flow_app_go/models"
)

// summaryStyles is shared by the contract and case summary sheets
const summaryStyles = `
    @page { margin: 0.75in; }
    body { font-family: Helvetica, Arial, sans-serif; font-size: 11pt; color: #111; line-height: 1.45; }
    h1 { font-size: 17pt; margin-bottom: 2pt; }
    .subtitle { color: #555; font-size: 10pt; margin-bottom: 18pt; }
    h2 { font-size: 12pt; border-bottom: 1px solid #999; padding-bottom: 3pt; margin-top: 18pt; }
    table { width: 100%; border-collapse: collapse; margin-top: 6pt; }
    td, th { padding: 4pt 6pt; vertical-align: top; text-align: left; font-size: 10pt; }
    th { color: #555; font-weight: normal; width: 32%; }
    .rows th { font-weight: bold; border-bottom: 1px solid #ccc; width: auto; }
    .rows td { border-bottom: 1px solid #eee; }
    .badge { font-weight: bold; }
    .notes { white-space: pre-wrap; }
`

var contractSummaryTmpl = template.Must(template.New("contract_summary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>` + summaryStyles + `</style>
</head>
<body>
  <h1>Contract Summary</h1>
  <div class="subtitle">{{.Reference}} &middot; generated by TalentFlow</div>

  <h2>Engagement</h2>
  <table>
    <tr><th>Client</th><td>{{.ClientName}}</td></tr>
    <tr><th>Status</th><td class="badge">{{.Status}}</td></tr>
    <tr><th>Version</th><td>{{.Version}}</td></tr>
    <tr><th>Starts on</th><td>{{.StartsOn}}</td></tr>
    <tr><th>Ends on</th><td>{{.EndsOn}}</td></tr>
    {{if .SignedAt}}<tr><th>Signed at</th><td>{{.SignedAt}}</td></tr>{{end}}
    {{if .Supersedes}}<tr><th>Supersedes</th><td>{{.Supersedes}}</td></tr>{{end}}
    {{if .TerminationReason}}<tr><th>Termination reason</th><td>{{.TerminationReason}}</td></tr>{{end}}
  </table>

  <h2>Commercials</h2>
  <table>
    <tr><th>Hourly rate</th><td>{{.HourlyRate}}</td></tr>
    <tr><th>Monthly hours</th><td>{{.MonthlyHours}}</td></tr>
  </table>

  {{if .ServiceScope}}
  <h2>Service scope</h2>
  <div class="notes">{{.ServiceScope}}</div>
  {{end}}
</body>
</html>`))

type contractSummaryData struct {
	Reference         string
	ClientName        string
	Status            string
	Version           int
	StartsOn          string
	EndsOn            string
	SignedAt          string
	Supersedes        string
	TerminationReason string
	HourlyRate        string
	MonthlyHours      int
	ServiceScope      string
}

// GenerateContractSummaryPDF renders a one-page summary sheet for a contract
func GenerateContractSummaryPDF(contract *models.Contract, client *models.Client) ([]byte, error) {
	data := contractSummaryData{
		Reference:    fmt.Sprintf("%s / v%d", client.Name, contract.Version),
		ClientName:   client.Name,
		Status:       contract.Status,
		Version:      contract.Version,
		StartsOn:     contract.StartsOn.Format("2006-01-02"),
		EndsOn:       "open-ended",
		HourlyRate:   contract.HourlyRateDisplay(),
		MonthlyHours: contract.MonthlyHours,
		ServiceScope: contract.ServiceScope,
	}
	if contract.EndsOn != nil {
		data.EndsOn = contract.EndsOn.Format("2006-01-02")
	}
	if contract.SignedAt != nil {
		data.SignedAt = contract.SignedAt.Format("2006-01-02 15:04")
	}
	if contract.Supersedes != nil {
		data.Supersedes = fmt.Sprintf("v%d", contract.Supersedes.Version)
	}
	if contract.TerminationReason != nil {
		data.TerminationReason = *contract.TerminationReason
	}

	var buf bytes.Buffer
	if err := contractSummaryTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render contract summary: %w", err)
	}

	return GeneratePDF(buf.String(), DefaultPDFOptions())
}

var caseSummaryTmpl = template.Must(template.New("case_summary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>` + summaryStyles + `</style>
</head>
<body>
  <h1>{{.CaseNumber}}</h1>
  <div class="subtitle">{{.Title}} &middot; generated by TalentFlow</div>

  <h2>Case details</h2>
  <table>
    <tr><th>Client</th><td>{{.ClientName}}</td></tr>
    <tr><th>Status</th><td class="badge">{{.Status}}</td></tr>
    <tr><th>Category</th><td>{{.Category}}</td></tr>
    <tr><th>Priority</th><td>{{.Priority}}</td></tr>
    <tr><th>Assigned to</th><td>{{.AssignedTo}}</td></tr>
    <tr><th>Opened</th><td>{{.OpenedAt}}</td></tr>
    {{if .ClosedAt}}<tr><th>Closed</th><td>{{.ClosedAt}}</td></tr>{{end}}
  </table>

  {{if .Description}}
  <h2>Description</h2>
  <div class="notes">{{.Description}}</div>
  {{end}}

  {{if .Interactions}}
  <h2>Interaction log</h2>
  <table class="rows">
    <tr><th>Date</th><th>Kind</th><th>Subject</th><th>Logged by</th></tr>
    {{range .Interactions}}
    <tr><td>{{.Date}}</td><td>{{.Kind}}</td><td>{{.Subject}}</td><td>{{.LoggedBy}}</td></tr>
    {{end}}
  </table>
  {{end}}

  {{if .Documents}}
  <h2>Documents</h2>
  <table class="rows">
    <tr><th>File</th><th>Size</th><th>Uploaded by</th></tr>
    {{range .Documents}}
    <tr><td>{{.Name}}</td><td>{{.Size}}</td><td>{{.UploadedBy}}</td></tr>
    {{end}}
  </table>
  {{end}}
</body>
</html>`))

type caseSummaryInteraction struct {
	Date     string
	Kind     string
	Subject  string
	LoggedBy string
}

type caseSummaryDocument struct {
	Name       string
	Size       string
	UploadedBy string
}

type caseSummaryData struct {
	CaseNumber   string
	Title        string
	ClientName   string
	Status       string
	Category     string
	Priority     string
	AssignedTo   string
	OpenedAt     string
	ClosedAt     string
	Description  string
	Interactions []caseSummaryInteraction
	Documents    []caseSummaryDocument
}

// GenerateCaseSummaryPDF renders a case summary sheet including the
// interaction log and document list.
func GenerateCaseSummaryPDF(c *models.Case, client *models.Client, interactions []models.Interaction, documents []models.Document) ([]byte, error) {
	data := caseSummaryData{
		CaseNumber:  c.CaseNumber,
		Title:       c.Title,
		ClientName:  client.Name,
		Status:      c.Status,
		Category:    c.Category,
		Priority:    c.Priority,
		AssignedTo:  "Unassigned",
		OpenedAt:    c.OpenedAt.Format("2006-01-02"),
		Description: c.Description,
	}
	if c.AssignedTo != nil {
		data.AssignedTo = c.AssignedTo.Name
	}
	if c.ClosedAt != nil {
		data.ClosedAt = c.ClosedAt.Format("2006-01-02")
	}

	for _, interaction := range interactions {
		entry := caseSummaryInteraction{
			Date:    interaction.OccurredAt.Format("2006-01-02 15:04"),
			Kind:    interaction.Kind,
			Subject: interaction.Subject,
		}
		if interaction.LoggedBy != nil {
			entry.LoggedBy = interaction.LoggedBy.Name
		}
		data.Interactions = append(data.Interactions, entry)
	}

	for _, doc := range documents {
		entry := caseSummaryDocument{
			Name: doc.FileOriginalName,
			Size: doc.SizeDisplay(),
		}
		if doc.UploadedBy != nil {
			entry.UploadedBy = doc.UploadedBy.Name
		}
		data.Documents = append(data.Documents, entry)
	}

	var buf bytes.Buffer
	if err := caseSummaryTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render case summary: %w", err)
	}

	return GeneratePDF(buf.String(), DefaultPDFOptions())
}
