package services

import (
	"fmt"
	"strings"
	"talent_flow_app_go/models"
	"time"

	"gorm.io/gorm"
)

// GenerateCaseNumber generates a case number for a client.
// Format: {CLIENT_SLUG}-{YEAR}-{SEQUENCE}
// Example: ACME-GROUP-2026-00042
func GenerateCaseNumber(db *gorm.DB, clientID string) (string, error) {
	var client models.Client
	if err := db.First(&client, "id = ?", clientID).Error; err != nil {
		return "", fmt.Errorf("failed to fetch client: %w", err)
	}

	prefix := strings.ToUpper(client.Slug)
	currentYear := time.Now().Year()

	// Find the highest sequence number for this client and year
	var maxCase models.Case
	err := db.Where("client_id = ? AND case_number LIKE ?", clientID, fmt.Sprintf("%s-%d-%%", prefix, currentYear)).
		Order("case_number DESC").
		First(&maxCase).Error

	sequence := 1
	if err == nil {
		// Parse sequence from existing case number
		var parsedSeq int
		_, scanErr := fmt.Sscanf(maxCase.CaseNumber, fmt.Sprintf("%s-%d-%%d", prefix, currentYear), &parsedSeq)
		if scanErr == nil {
			sequence = parsedSeq + 1
		}
	} else if err != gorm.ErrRecordNotFound {
		return "", fmt.Errorf("failed to query max case number: %w", err)
	}

	// Zero-padded sequence keeps case numbers sortable as strings
	caseNumber := fmt.Sprintf("%s-%d-%05d", prefix, currentYear, sequence)
	return caseNumber, nil
}

// EnsureUniqueCaseNumber generates a unique case number with retry logic.
// Retries up to maxRetries times if a collision occurs (concurrent creates).
func EnsureUniqueCaseNumber(db *gorm.DB, clientID string) (string, error) {
	const maxRetries = 10

	for i := 0; i < maxRetries; i++ {
		caseNumber, err := GenerateCaseNumber(db, clientID)
		if err != nil {
			return "", err
		}

		var count int64
		if err := db.Model(&models.Case{}).Where("case_number = ?", caseNumber).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check case number uniqueness: %w", err)
		}

		if count == 0 {
			return caseNumber, nil
		}

		// Collision detected, retry
	}

	return "", fmt.Errorf("failed to generate unique case number after %d retries", maxRetries)
}

// TouchCaseActivity updates a case's last activity timestamp. Called whenever
// an interaction or document is added to the case.
func TouchCaseActivity(db *gorm.DB, caseID string) error {
	now := time.Now()
	return db.Model(&models.Case{}).
		Where("id = ?", caseID).
		Update("last_activity_at", now).Error
}

// LogSystemInteraction records an immutable SYSTEM interaction on a case.
// Used for resolution notes and other machine-generated entries.
func LogSystemInteraction(db *gorm.DB, caseID, userID, subject, notes string) error {
	interaction := &models.Interaction{
		CaseID:     caseID,
		Kind:       models.InteractionKindSystem,
		Subject:    subject,
		Notes:      SanitizeHTML(notes),
		OccurredAt: time.Now(),
		LoggedByID: userID,
	}
	if err := db.Create(interaction).Error; err != nil {
		return fmt.Errorf("failed to log system interaction: %w", err)
	}
	return TouchCaseActivity(db, caseID)
}
