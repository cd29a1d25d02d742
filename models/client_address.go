package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address label constants
const (
	AddressLabelHQ      = "HQ"
	AddressLabelBilling = "BILLING"
	AddressLabelSite    = "SITE"
)

// ClientAddress is a postal address attached to a client company
type ClientAddress struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"-"`

	Label      string `gorm:"not null;default:HQ" json:"label"` // HQ, BILLING, SITE
	Street     string `gorm:"not null" json:"street"`
	City       string `gorm:"not null" json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `gorm:"not null" json:"country"`
	IsPrimary  bool   `gorm:"not null;default:false" json:"is_primary"`
}

// BeforeCreate hook to generate UUID
func (ca *ClientAddress) BeforeCreate(tx *gorm.DB) error {
	if ca.ID == "" {
		ca.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ClientAddress model
func (ClientAddress) TableName() string {
	return "client_addresses"
}

// IsValidAddressLabel checks if the label is one of the known labels
func IsValidAddressLabel(label string) bool {
	switch label {
	case AddressLabelHQ, AddressLabelBilling, AddressLabelSite:
		return true
	}
	return false
}
