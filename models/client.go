package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client status constants
const (
	ClientStatusProspect = "PROSPECT"
	ClientStatusActive   = "ACTIVE"
	ClientStatusArchived = "ARCHIVED"
)

// Client represents a customer company of the consultancy
type Client struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name      string `gorm:"not null;index" json:"name"`
	Slug      string `gorm:"uniqueIndex;not null" json:"slug"`
	LegalName string `json:"legal_name"`
	Industry  string `gorm:"index" json:"industry"`
	Headcount int    `gorm:"not null;default:0" json:"headcount"`
	Status    string `gorm:"not null;default:PROSPECT;index" json:"status"`

	// Primary company contact info (individual contacts live in ClientContact)
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`

	// Free-form notes from the account team (sanitized HTML)
	Notes string `gorm:"type:text" json:"notes"`

	// Account manager (consultancy user responsible for the relationship)
	AccountManagerID *string `gorm:"type:uuid;index" json:"account_manager_id,omitempty"`
	AccountManager   *User   `gorm:"foreignKey:AccountManagerID" json:"account_manager,omitempty"`

	// Relationships
	Contacts   []ClientContact       `gorm:"foreignKey:ClientID" json:"contacts,omitempty"`
	Addresses  []ClientAddress       `gorm:"foreignKey:ClientID" json:"addresses,omitempty"`
	Audits     []ComplianceAudit     `gorm:"foreignKey:ClientID" json:"audits,omitempty"`
	Contracts  []Contract            `gorm:"foreignKey:ClientID" json:"contracts,omitempty"`
	Cases      []Case                `gorm:"foreignKey:ClientID" json:"cases,omitempty"`
	Documents  []Document            `gorm:"foreignKey:ClientID" json:"documents,omitempty"`
	Checklists []OnboardingChecklist `gorm:"foreignKey:ClientID" json:"checklists,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Client model
func (Client) TableName() string {
	return "clients"
}

// IsActive checks if the client is an active customer
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// IsArchived checks if the client has been archived
func (c *Client) IsArchived() bool {
	return c.Status == ClientStatusArchived
}

// IsValidClientStatus checks if the status is valid
func IsValidClientStatus(status string) bool {
	switch status {
	case ClientStatusProspect, ClientStatusActive, ClientStatusArchived:
		return true
	}
	return false
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateClientSlug builds a URL/number safe slug from a company name.
// Uniqueness is handled by the caller (see services.EnsureUniqueClientSlug).
func GenerateClientSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugCleaner.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	if slug == "" {
		slug = "client"
	}
	return slug
}
