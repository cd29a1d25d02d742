package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusOpen       = "OPEN"
	CaseStatusInProgress = "IN_PROGRESS"
	CaseStatusOnHold     = "ON_HOLD"
	CaseStatusClosed     = "CLOSED"
)

// Case priority constants
const (
	CasePriorityLow    = "LOW"
	CasePriorityMedium = "MEDIUM"
	CasePriorityHigh   = "HIGH"
	CasePriorityUrgent = "URGENT"
)

// Case category constants
const (
	CaseCategoryGrievance    = "GRIEVANCE"
	CaseCategoryPayroll      = "PAYROLL"
	CaseCategoryPolicy       = "POLICY"
	CaseCategoryDisciplinary = "DISCIPLINARY"
	CaseCategoryCompliance   = "COMPLIANCE"
	CaseCategoryOther        = "OTHER"
)

// Case is an escalation or issue tracked against a client
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Client relationship
	ClientID string `gorm:"type:uuid;not null;index:idx_case_client_status" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// Optional link to the contract the work falls under
	ContractID *string   `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	Contract   *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`

	// Case identification
	CaseNumber  string `gorm:"not null;uniqueIndex" json:"case_number"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"not null;default:OTHER;index" json:"category"`
	Priority    string `gorm:"not null;default:MEDIUM;index" json:"priority"`

	// Status and lifecycle
	Status          string     `gorm:"not null;default:OPEN;index:idx_case_client_status" json:"status"`
	OpenedAt        time.Time  `gorm:"not null;index" json:"opened_at"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`
	StatusChangedBy *string    `gorm:"type:uuid" json:"status_changed_by,omitempty"`

	// Assignment
	AssignedToID *string `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`

	// Activity tracking (bumped when interactions/documents are added)
	LastActivityAt *time.Time `gorm:"index" json:"last_activity_at,omitempty"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedBy   *User   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`

	// Relationships
	StatusChanger *User         `gorm:"foreignKey:StatusChangedBy" json:"status_changer,omitempty"`
	Interactions  []Interaction `gorm:"foreignKey:CaseID" json:"interactions,omitempty"`
	Documents     []Document    `gorm:"foreignKey:CaseID" json:"documents,omitempty"`
}

// BeforeCreate hook to generate UUID and set OpenedAt
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.OpenedAt.IsZero() {
		c.OpenedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsOpen checks if the case still accepts work
func (c *Case) IsOpen() bool {
	return c.Status != CaseStatusClosed
}

// IsClosed checks if the case is closed
func (c *Case) IsClosed() bool {
	return c.Status == CaseStatusClosed
}

// caseTransitions maps each status to the statuses it may move to
var caseTransitions = map[string][]string{
	CaseStatusOpen:       {CaseStatusInProgress, CaseStatusOnHold, CaseStatusClosed},
	CaseStatusInProgress: {CaseStatusOnHold, CaseStatusClosed},
	CaseStatusOnHold:     {CaseStatusInProgress, CaseStatusClosed},
	CaseStatusClosed:     {CaseStatusOpen}, // reopen
}

// CanTransitionTo checks whether a status change is allowed
func (c *Case) CanTransitionTo(status string) bool {
	for _, s := range caseTransitions[c.Status] {
		if s == status {
			return true
		}
	}
	return false
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	switch status {
	case CaseStatusOpen, CaseStatusInProgress, CaseStatusOnHold, CaseStatusClosed:
		return true
	}
	return false
}

// IsValidCasePriority checks if the priority is valid
func IsValidCasePriority(priority string) bool {
	switch priority {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh, CasePriorityUrgent:
		return true
	}
	return false
}

// IsValidCaseCategory checks if the category is valid
func IsValidCaseCategory(category string) bool {
	switch category {
	case CaseCategoryGrievance, CaseCategoryPayroll, CaseCategoryPolicy,
		CaseCategoryDisciplinary, CaseCategoryCompliance, CaseCategoryOther:
		return true
	}
	return false
}
