package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Compliance audit outcome constants
const (
	AuditOutcomePass     = "PASS"
	AuditOutcomeFindings = "FINDINGS"
	AuditOutcomeFail     = "FAIL"
)

// Compliance audit kind constants
const (
	AuditKindPolicy     = "POLICY"      // Handbook / policy review
	AuditKindPayroll    = "PAYROLL"     // Payroll and classification audit
	AuditKindSafety     = "SAFETY"      // Workplace safety review
	AuditKindContracts  = "CONTRACTS"   // Employment contract review
	AuditKindFullReview = "FULL_REVIEW" // Complete HR compliance audit
)

// ComplianceAudit records an HR compliance audit performed for a client
type ComplianceAudit struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"-"`

	Kind         string     `gorm:"not null" json:"kind"`
	ScheduledFor time.Time  `gorm:"not null;index" json:"scheduled_for"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Outcome      *string    `gorm:"size:20" json:"outcome,omitempty"` // PASS, FINDINGS, FAIL
	Findings     string     `gorm:"type:text" json:"findings"`

	AuditorID *string `gorm:"type:uuid;index" json:"auditor_id,omitempty"`
	Auditor   *User   `gorm:"foreignKey:AuditorID" json:"auditor,omitempty"`
}

// BeforeCreate hook to generate UUID
func (a *ComplianceAudit) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ComplianceAudit model
func (ComplianceAudit) TableName() string {
	return "compliance_audits"
}

// IsCompleted checks if the audit has been carried out
func (a *ComplianceAudit) IsCompleted() bool {
	return a.CompletedAt != nil
}

// IsValidAuditOutcome checks if the outcome is valid
func IsValidAuditOutcome(outcome string) bool {
	switch outcome {
	case AuditOutcomePass, AuditOutcomeFindings, AuditOutcomeFail:
		return true
	}
	return false
}

// IsValidAuditKind checks if the kind is valid
func IsValidAuditKind(kind string) bool {
	switch kind {
	case AuditKindPolicy, AuditKindPayroll, AuditKindSafety, AuditKindContracts, AuditKindFullReview:
		return true
	}
	return false
}
