package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"talent_flow_app_go/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// ResetTokenLength is the length of the reset token in bytes (64 chars hex)
	ResetTokenLength = 32
	// ResetTokenDuration is how long a password reset token stays valid
	ResetTokenDuration = 1 * time.Hour
)

// GenerateResetToken generates a cryptographically secure reset token
func GenerateResetToken() (string, error) {
	bytes := make([]byte, ResetTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// CreatePasswordResetToken creates a reset token for a user.
// Any previous unused tokens for the same user are invalidated so only
// the most recent email link works.
func CreatePasswordResetToken(db *gorm.DB, userID string) (*models.PasswordResetToken, error) {
	token, err := GenerateResetToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := db.Model(&models.PasswordResetToken{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Update("used_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to invalidate previous tokens: %w", err)
	}

	resetToken := &models.PasswordResetToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(ResetTokenDuration),
	}

	if err := db.Create(resetToken).Error; err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	return resetToken, nil
}

// ValidatePasswordResetToken looks up a reset token and verifies it is
// unused and unexpired.
func ValidatePasswordResetToken(db *gorm.DB, token string) (*models.PasswordResetToken, error) {
	var resetToken models.PasswordResetToken

	err := db.Preload("User").
		Where("token = ?", token).
		First(&resetToken).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invalid or expired reset token")
		}
		return nil, fmt.Errorf("failed to validate reset token: %w", err)
	}

	if resetToken.UsedAt != nil {
		return nil, fmt.Errorf("reset token already used")
	}

	if resetToken.IsExpired() {
		return nil, fmt.Errorf("invalid or expired reset token")
	}

	return &resetToken, nil
}

// MarkResetTokenUsed marks a reset token as consumed
func MarkResetTokenUsed(db *gorm.DB, tokenID string) error {
	now := time.Now()
	result := db.Model(&models.PasswordResetToken{}).
		Where("id = ?", tokenID).
		Update("used_at", now)
	if result.Error != nil {
		return fmt.Errorf("failed to mark token used: %w", result.Error)
	}
	return nil
}

// CleanupExpiredResetTokens removes expired and used reset tokens
func CleanupExpiredResetTokens(db *gorm.DB) error {
	result := db.Where("expires_at < ? OR used_at IS NOT NULL", time.Now()).
		Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup reset tokens: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d password reset tokens", result.RowsAffected)
	}
	return nil
}
