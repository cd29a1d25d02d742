package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientContact is a person at a client company
type ClientContact struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"-"`

	Name      string `gorm:"not null" json:"name"`
	Title     string `json:"title"` // e.g. "Head of People"
	Email     string `gorm:"index" json:"email"`
	Phone     string `json:"phone"`
	IsPrimary bool   `gorm:"not null;default:false" json:"is_primary"`
}

// BeforeCreate hook to generate UUID
func (cc *ClientContact) BeforeCreate(tx *gorm.DB) error {
	if cc.ID == "" {
		cc.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ClientContact model
func (ClientContact) TableName() string {
	return "client_contacts"
}
