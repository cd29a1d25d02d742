package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interaction kind constants
const (
	InteractionKindCall    = "CALL"
	InteractionKindEmail   = "EMAIL"
	InteractionKindMeeting = "MEETING"
	InteractionKindNote    = "NOTE"
	InteractionKindSystem  = "SYSTEM" // written by the app itself (e.g. resolution notes)
)

// Interaction is a logged communication entry attached to a case
type Interaction struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"-"`

	Kind        string     `gorm:"not null;index" json:"kind"`
	Subject     string     `gorm:"not null" json:"subject"`
	Notes       string     `gorm:"type:text" json:"notes"` // sanitized HTML
	OccurredAt  time.Time  `gorm:"not null;index" json:"occurred_at"`
	Minutes     int        `gorm:"not null;default:0" json:"minutes"` // time spent
	ContactName string     `json:"contact_name"`                      // client-side participant

	LoggedByID string `gorm:"type:uuid;not null;index" json:"logged_by_id"`
	LoggedBy   *User  `gorm:"foreignKey:LoggedByID" json:"logged_by,omitempty"`
}

// BeforeCreate hook to generate UUID and default OccurredAt
func (i *Interaction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.OccurredAt.IsZero() {
		i.OccurredAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for Interaction model
func (Interaction) TableName() string {
	return "interactions"
}

// IsSystem checks if the entry was written by the app (immutable)
func (i *Interaction) IsSystem() bool {
	return i.Kind == InteractionKindSystem
}

// IsValidInteractionKind checks if the kind can be set by users.
// SYSTEM is reserved for app-generated entries.
func IsValidInteractionKind(kind string) bool {
	switch kind {
	case InteractionKindCall, InteractionKindEmail, InteractionKindMeeting, InteractionKindNote:
		return true
	}
	return false
}
