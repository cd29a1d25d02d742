package services

import (
	"fmt"
	"log"
	"talent_flow_app_go/config"
	"talent_flow_app_go/models"
	"time"

	"gorm.io/gorm"
)

// RunContractExpiryCheck is the periodic contract lifecycle sweep. It expires
// contracts whose end date has passed and sends a one-time warning for
// contracts ending within the warning window.
func RunContractExpiryCheck(db *gorm.DB, cfg *config.Config) {
	expired, err := ExpireLapsedContracts(db)
	if err != nil {
		log.Printf("Contract expiry sweep failed: %v", err)
	} else if expired > 0 {
		log.Printf("Marked %d lapsed contracts as EXPIRED", expired)
	}

	contracts, err := FindExpiringContracts(db, ContractExpiryWarningWindow)
	if err != nil {
		log.Printf("Contract expiry warning lookup failed: %v", err)
		return
	}

	notifier := NewNotificationService(db)

	for i := range contracts {
		contract := &contracts[i]
		if contract.Client.ID == "" || contract.EndsOn == nil {
			continue
		}

		daysLeft := int(time.Until(*contract.EndsOn).Hours() / 24)
		if daysLeft < 0 {
			daysLeft = 0
		}

		recipients, err := expiryRecipients(db, &contract.Client)
		if err != nil {
			log.Printf("Failed to resolve expiry recipients for contract %s: %v", contract.ID, err)
			continue
		}

		for _, user := range recipients {
			if err := notifier.NotifyContractExpiring(contract, user.ID, contract.Client.Name, daysLeft); err != nil {
				log.Printf("Failed to create expiry notification for user %s: %v", user.ID, err)
				continue
			}

			email := BuildContractExpiryEmail(user.Email, ContractExpiryEmailData{
				UserName:    user.Name,
				ClientName:  contract.Client.Name,
				Reference:   fmt.Sprintf("%s / v%d", contract.Client.Name, contract.Version),
				EndsOn:      contract.EndsOn.Format("2006-01-02"),
				DaysLeft:    daysLeft,
				ContractURL: fmt.Sprintf("%s/api/contracts/%s", cfg.AppURL, contract.ID),
			})
			SendEmailAsync(cfg, email)
		}

		if err := MarkContractExpiryNotified(db, contract.ID); err != nil {
			log.Printf("Failed to mark contract %s as notified: %v", contract.ID, err)
		}
	}

	if len(contracts) > 0 {
		log.Printf("Sent expiry warnings for %d contracts", len(contracts))
	}
}

// expiryRecipients returns the client's account manager, or every active
// admin when no account manager is set.
func expiryRecipients(db *gorm.DB, client *models.Client) ([]models.User, error) {
	if client.AccountManagerID != nil {
		var manager models.User
		err := db.Where("id = ? AND is_active = ?", *client.AccountManagerID, true).First(&manager).Error
		if err == nil {
			return []models.User{manager}, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		// Fall through to admins when the manager is gone or deactivated
	}

	var admins []models.User
	err := db.Where("role = ? AND is_active = ?", models.RoleAdmin, true).Find(&admins).Error
	return admins, err
}
