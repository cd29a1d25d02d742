package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"

	"talent_flow_app_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// loadTemplate loads an email template pair (.html and .txt) from the
// templates/emails directory and executes both with the given data.
func loadTemplate(templateName string, data interface{}) (html string, text string, err error) {
	basePath := "templates/emails"

	loadAndExec := func(ext string) (string, error) {
		path := filepath.Join(basePath, templateName+ext)
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read template %s: %v", path, err)
		}

		tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
		if err != nil {
			return "", fmt.Errorf("failed to parse template %s: %v", path, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("failed to execute template %s: %v", path, err)
		}
		return buf.String(), nil
	}

	htmlContent, err := loadAndExec(".html")
	if err != nil {
		return "", "", err
	}

	textContent, err := loadAndExec(".txt")
	if err != nil {
		return "", "", err
	}

	return htmlContent, textContent, nil
}

// buildEmail loads a template pair and wraps it in an Email. If the
// template cannot be loaded the text fallback keeps the email sendable.
func buildEmail(templateName string, data interface{}, toEmail, fallbackText string) *Email {
	htmlBody, textBody, err := loadTemplate(templateName, data)
	if err != nil {
		log.Printf("Error loading %s email template: %v", templateName, err)
		textBody = fallbackText
	}

	return &Email{
		To:       []string{toEmail},
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		log.Printf("Email logged successfully (development mode - not actually sent)")
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	fromAddress := fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom)

	params := &resend.SendEmailRequest{
		From:    fromAddress,
		To:      email.To,
		Subject: email.Subject,
	}

	// Set body (prefer HTML if available)
	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}

	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (Development Mode - Not Actually Sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s...", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// SendEmailAsync sends an email asynchronously using a goroutine.
// This is the recommended method for sending emails in handlers to avoid
// blocking HTTP responses.
func SendEmailAsync(cfg *config.Config, email *Email) {
	// Copy the email to avoid race conditions
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}(cfg, emailCopy)
}

// WelcomeEmailData contains data for the welcome email template
type WelcomeEmailData struct {
	UserName string
	LoginURL string
}

// BuildWelcomeEmail creates a welcome email for newly created users
func BuildWelcomeEmail(userEmail, userName, loginURL string) *Email {
	data := WelcomeEmailData{
		UserName: userName,
		LoginURL: loginURL,
	}

	fallback := fmt.Sprintf("Hi %s,\n\nYour TalentFlow account has been created. Sign in at %s to get started.", userName, loginURL)
	email := buildEmail("welcome", data, userEmail, fallback)
	email.Subject = "Welcome to TalentFlow"
	return email
}

// PasswordResetEmailData contains data for the password reset email template
type PasswordResetEmailData struct {
	UserName  string
	ResetLink string
	ExpiresAt string
}

// BuildPasswordResetEmail creates a password reset email with reset link
func BuildPasswordResetEmail(userEmail, userName, resetLink, expiresAt string) *Email {
	data := PasswordResetEmailData{
		UserName:  userName,
		ResetLink: resetLink,
		ExpiresAt: expiresAt,
	}

	fallback := fmt.Sprintf("Hi %s,\n\nWe received a request to reset your password. Use this link within the next hour: %s\n\nIf you did not request this, you can ignore this email.", userName, resetLink)
	email := buildEmail("password_reset", data, userEmail, fallback)
	email.Subject = "Reset your TalentFlow password"
	return email
}

// CaseAssignmentEmailData contains data for the case assignment email template
type CaseAssignmentEmailData struct {
	ConsultantName string
	CaseNumber     string
	CaseTitle      string
	ClientName     string
	CaseURL        string
}

// BuildCaseAssignmentEmail creates an assignment notification email for consultants
func BuildCaseAssignmentEmail(consultantEmail string, data CaseAssignmentEmailData) *Email {
	fallback := fmt.Sprintf("Hi %s,\n\nCase %s (%s) for %s has been assigned to you.\n\n%s", data.ConsultantName, data.CaseNumber, data.CaseTitle, data.ClientName, data.CaseURL)
	email := buildEmail("case_assignment", data, consultantEmail, fallback)
	email.Subject = fmt.Sprintf("Case %s assigned to you", data.CaseNumber)
	return email
}

// ContractExpiryEmailData contains data for the contract expiry warning email
type ContractExpiryEmailData struct {
	UserName    string
	ClientName  string
	Reference   string
	EndsOn      string
	DaysLeft    int
	ContractURL string
}

// BuildContractExpiryEmail creates an expiry warning email for account managers
func BuildContractExpiryEmail(userEmail string, data ContractExpiryEmailData) *Email {
	fallback := fmt.Sprintf("Hi %s,\n\nContract %s for %s ends on %s (%d days from now). Review it before it expires: %s", data.UserName, data.Reference, data.ClientName, data.EndsOn, data.DaysLeft, data.ContractURL)
	email := buildEmail("contract_expiry", data, userEmail, fallback)
	email.Subject = fmt.Sprintf("Contract %s expires in %d days", data.Reference, data.DaysLeft)
	return email
}
