package services

import (
	"fmt"
	"talent_flow_app_go/models"
	"time"

	"gorm.io/gorm"
)

// ContractExpiryWarningWindow is how far ahead the expiry job warns about
// contracts approaching their end date.
const ContractExpiryWarningWindow = 30 * 24 * time.Hour

// NextContractVersion returns the version number for a new contract of a
// client: one higher than the client's current maximum, starting at 1.
func NextContractVersion(db *gorm.DB, clientID string) (int, error) {
	var maxVersion int
	err := db.Model(&models.Contract{}).
		Where("client_id = ?", clientID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, fmt.Errorf("failed to determine contract version: %w", err)
	}
	return maxVersion + 1, nil
}

// ActivateContract transitions a draft contract to ACTIVE. Any currently
// active contract of the same client is superseded (marked EXPIRED) in the
// same transaction, and a contract kickoff checklist is instantiated.
func ActivateContract(db *gorm.DB, contract *models.Contract) error {
	if !contract.IsDraft() {
		return fmt.Errorf("only draft contracts can be activated")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		// Supersede the currently active contract, if any
		var current models.Contract
		err := tx.Where("client_id = ? AND status = ?", contract.ClientID, models.ContractStatusActive).
			First(&current).Error
		if err == nil {
			supersededUpdates := map[string]interface{}{
				"status": models.ContractStatusExpired,
			}
			if current.EndsOn == nil || current.EndsOn.After(time.Now()) {
				supersededUpdates["ends_on"] = time.Now()
			}
			if err := tx.Model(&current).Updates(supersededUpdates).Error; err != nil {
				return fmt.Errorf("failed to supersede active contract: %w", err)
			}
			contract.SupersedesID = &current.ID
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to look up active contract: %w", err)
		}

		now := time.Now()
		contract.Status = models.ContractStatusActive
		if contract.SignedAt == nil {
			contract.SignedAt = &now
		}

		if err := tx.Save(contract).Error; err != nil {
			return fmt.Errorf("failed to activate contract: %w", err)
		}

		if _, err := InstantiateChecklist(tx, models.ChecklistTemplateContractKickoff, contract.ClientID, &contract.ID); err != nil {
			return fmt.Errorf("failed to create kickoff checklist: %w", err)
		}

		return nil
	})
}

// TerminateContract ends an active contract early. The end date is pulled in
// to today when it was unset or in the future.
func TerminateContract(db *gorm.DB, contract *models.Contract, reason string) error {
	if contract.Status != models.ContractStatusActive {
		return fmt.Errorf("only active contracts can be terminated")
	}
	if reason == "" {
		return fmt.Errorf("termination reason is required")
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	updates := map[string]interface{}{
		"status":             models.ContractStatusTerminated,
		"termination_reason": reason,
	}
	if contract.EndsOn == nil || contract.EndsOn.After(today) {
		updates["ends_on"] = today
	}

	if err := db.Model(contract).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to terminate contract: %w", err)
	}
	return nil
}

// FindExpiringContracts returns active contracts whose end date falls within
// the warning window and that have not been notified about yet.
func FindExpiringContracts(db *gorm.DB, window time.Duration) ([]models.Contract, error) {
	cutoff := time.Now().Add(window)
	var contracts []models.Contract
	err := db.Preload("Client").
		Where("status = ? AND ends_on IS NOT NULL AND ends_on <= ? AND ends_on >= ? AND expiry_notified_at IS NULL",
			models.ContractStatusActive, cutoff, time.Now()).
		Find(&contracts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring contracts: %w", err)
	}
	return contracts, nil
}

// MarkContractExpiryNotified records that the expiry warning for a contract
// has been delivered, so the job does not warn twice.
func MarkContractExpiryNotified(db *gorm.DB, contractID string) error {
	now := time.Now()
	return db.Model(&models.Contract{}).
		Where("id = ?", contractID).
		Update("expiry_notified_at", now).Error
}

// ExpireLapsedContracts flips active contracts whose end date has passed to
// EXPIRED. Returns the number of contracts updated.
func ExpireLapsedContracts(db *gorm.DB) (int64, error) {
	result := db.Model(&models.Contract{}).
		Where("status = ? AND ends_on IS NOT NULL AND ends_on < ?", models.ContractStatusActive, time.Now()).
		Update("status", models.ContractStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire contracts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
