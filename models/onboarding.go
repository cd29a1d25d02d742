package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Checklist template keys (see config/onboarding.yml)
const (
	ChecklistTemplateClientSetup     = "client_setup"
	ChecklistTemplateContractKickoff = "contract_kickoff"
)

// OnboardingChecklist is an instantiated checklist template tracking how far
// along a client (or one of its contracts) is in the setup process
type OnboardingChecklist struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"-"`

	// Set when the checklist belongs to a specific contract (contract_kickoff)
	ContractID *string   `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	Contract   *Contract `gorm:"foreignKey:ContractID" json:"-"`

	TemplateKey string `gorm:"not null;index" json:"template_key"`
	Name        string `gorm:"not null" json:"name"`

	Items []OnboardingItem `gorm:"foreignKey:ChecklistID" json:"items,omitempty"`
}

// BeforeCreate hook to generate UUID
func (cl *OnboardingChecklist) BeforeCreate(tx *gorm.DB) error {
	if cl.ID == "" {
		cl.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for OnboardingChecklist model
func (OnboardingChecklist) TableName() string {
	return "onboarding_checklists"
}

// OnboardingItem is a single step in a checklist
type OnboardingItem struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ChecklistID string              `gorm:"type:uuid;not null;index" json:"checklist_id"`
	Checklist   OnboardingChecklist `gorm:"foreignKey:ChecklistID" json:"-"`

	Key      string `gorm:"not null" json:"key"`
	Label    string `gorm:"not null" json:"label"`
	Required bool   `gorm:"not null;default:true" json:"required"`
	Position int    `gorm:"not null;default:0" json:"position"`

	Done     bool       `gorm:"not null;default:false" json:"done"`
	DoneAt   *time.Time `json:"done_at,omitempty"`
	DoneByID *string    `gorm:"type:uuid" json:"done_by_id,omitempty"`
	DoneBy   *User      `gorm:"foreignKey:DoneByID" json:"done_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (it *OnboardingItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for OnboardingItem model
func (OnboardingItem) TableName() string {
	return "onboarding_items"
}

// OnboardingProgress summarizes checklist completion for API payloads.
// PercentComplete counts required steps only; optional steps are informative.
type OnboardingProgress struct {
	ChecklistID     string  `json:"checklist_id"`
	TemplateKey     string  `json:"template_key"`
	Name            string  `json:"name"`
	TotalSteps      int     `json:"total_steps"`
	CompletedSteps  int     `json:"completed_steps"`
	RequiredSteps   int     `json:"required_steps"`
	RequiredDone    int     `json:"required_done"`
	PercentComplete float64 `json:"percent_complete"`
	IsComplete      bool    `json:"is_complete"`
}

// Progress computes completion counters for the checklist. Items must be
// loaded. A checklist with no required steps counts as complete.
func (cl *OnboardingChecklist) Progress() OnboardingProgress {
	p := OnboardingProgress{
		ChecklistID: cl.ID,
		TemplateKey: cl.TemplateKey,
		Name:        cl.Name,
		TotalSteps:  len(cl.Items),
	}

	for _, item := range cl.Items {
		if item.Done {
			p.CompletedSteps++
		}
		if item.Required {
			p.RequiredSteps++
			if item.Done {
				p.RequiredDone++
			}
		}
	}

	if p.RequiredSteps == 0 {
		p.PercentComplete = 100
		p.IsComplete = true
		return p
	}

	p.PercentComplete = float64(p.RequiredDone) / float64(p.RequiredSteps) * 100
	p.IsComplete = p.RequiredDone == p.RequiredSteps
	return p
}
