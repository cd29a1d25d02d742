package services

import (
	"fmt"
	"talent_flow_app_go/models"

	"gorm.io/gorm"
)

// EnsureUniqueClientSlug derives a URL-safe slug from a client name and
// appends a numeric suffix until it is unique. The slug is also the case
// number prefix, so it never changes after creation.
func EnsureUniqueClientSlug(db *gorm.DB, name string) (string, error) {
	base := models.GenerateClientSlug(name)

	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := db.Model(&models.Client{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug uniqueness: %w", err)
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// CountOpenCases returns the number of not-CLOSED cases for a client
func CountOpenCases(db *gorm.DB, clientID string) (int64, error) {
	var count int64
	err := db.Model(&models.Case{}).
		Where("client_id = ? AND status != ?", clientID, models.CaseStatusClosed).
		Count(&count).Error
	return count, err
}

// SetPrimaryContact marks one contact as primary and clears the flag on the
// client's other contacts in the same transaction.
func SetPrimaryContact(db *gorm.DB, clientID, contactID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ClientContact{}).
			Where("client_id = ? AND id != ?", clientID, contactID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.ClientContact{}).
			Where("id = ? AND client_id = ?", contactID, clientID).
			Update("is_primary", true).Error
	})
}

// SetPrimaryAddress marks one address as primary and clears the flag on the
// client's other addresses in the same transaction.
func SetPrimaryAddress(db *gorm.DB, clientID, addressID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ClientAddress{}).
			Where("client_id = ? AND id != ?", clientID, addressID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.ClientAddress{}).
			Where("id = ? AND client_id = ?", addressID, clientID).
			Update("is_primary", true).Error
	})
}
