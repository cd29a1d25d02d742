package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contract status constants
const (
	ContractStatusDraft      = "DRAFT"
	ContractStatusActive     = "ACTIVE"
	ContractStatusExpired    = "EXPIRED"
	ContractStatusTerminated = "TERMINATED"
)

// Contract is a versioned service agreement with a client. Each new agreement
// for the same client gets the next version number; at most one version is
// ACTIVE at a time (enforced in services.ActivateContract).
type Contract struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID string `gorm:"type:uuid;not null;index:idx_contract_client_version,unique" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"-"`

	Version int    `gorm:"not null;index:idx_contract_client_version,unique" json:"version"`
	Status  string `gorm:"not null;default:DRAFT;index" json:"status"`

	// Commercial terms. Rates are stored as integer cents to avoid float drift.
	HourlyRateCents int    `gorm:"not null" json:"hourly_rate_cents"`
	MonthlyHours    int    `gorm:"not null" json:"monthly_hours"`
	Currency        string `gorm:"not null;default:USD;size:3" json:"currency"`
	ServiceScope    string `gorm:"type:text" json:"service_scope"`

	StartsOn time.Time  `gorm:"not null" json:"starts_on"`
	EndsOn   *time.Time `gorm:"index" json:"ends_on,omitempty"`
	SignedAt *time.Time `json:"signed_at,omitempty"`

	// Previous version this contract replaces
	SupersedesID *string   `gorm:"type:uuid" json:"supersedes_id,omitempty"`
	Supersedes   *Contract `gorm:"foreignKey:SupersedesID" json:"-"`

	TerminationReason *string `gorm:"type:text" json:"termination_reason,omitempty"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedBy   *User   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`

	// Contract expiry warning tracking (set by the expiry sweep job)
	ExpiryNotifiedAt *time.Time `json:"-"`
}

// BeforeCreate hook to generate UUID
func (ct *Contract) BeforeCreate(tx *gorm.DB) error {
	if ct.ID == "" {
		ct.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Contract model
func (Contract) TableName() string {
	return "contracts"
}

// IsDraft checks if the contract is still editable
func (ct *Contract) IsDraft() bool {
	return ct.Status == ContractStatusDraft
}

// IsActive checks if the contract is the client's current agreement
func (ct *Contract) IsActive() bool {
	return ct.Status == ContractStatusActive
}

// Reference returns a human-readable contract reference, e.g. "acme-corp/v3"
func (ct *Contract) Reference() string {
	return fmt.Sprintf("%s/v%d", ct.Client.Slug, ct.Version)
}

// HourlyRateDisplay formats the hourly rate for exports, e.g. "150.00 USD"
func (ct *Contract) HourlyRateDisplay() string {
	return fmt.Sprintf("%d.%02d %s", ct.HourlyRateCents/100, ct.HourlyRateCents%100, ct.Currency)
}

// ExpiresWithin reports whether the contract has an end date inside the window
func (ct *Contract) ExpiresWithin(window time.Duration) bool {
	if ct.EndsOn == nil {
		return false
	}
	return time.Until(*ct.EndsOn) <= window
}

// IsValidContractStatus checks if the status is valid
func IsValidContractStatus(status string) bool {
	switch status {
	case ContractStatusDraft, ContractStatusActive, ContractStatusExpired, ContractStatusTerminated:
		return true
	}
	return false
}
