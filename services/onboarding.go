package services

import (
	"fmt"
	"log"
	"os"
	"sync"
	"talent_flow_app_go/models"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ChecklistTemplateStep is one step inside a checklist template
type ChecklistTemplateStep struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Required bool   `yaml:"required"`
}

// ChecklistTemplate describes a reusable onboarding checklist
type ChecklistTemplate struct {
	Key   string                  `yaml:"key"`
	Name  string                  `yaml:"name"`
	Steps []ChecklistTemplateStep `yaml:"steps"`
}

type templateFile struct {
	Templates []ChecklistTemplate `yaml:"templates"`
}

var (
	templateMu          sync.RWMutex
	onboardingTemplates map[string]ChecklistTemplate
)

// defaultOnboardingYAML is used when no template file is present on disk,
// so checklist instantiation keeps working in tests and fresh deployments.
const defaultOnboardingYAML = `
templates:
  - key: client_setup
    name: Client setup
    steps:
      - key: intake_call
        label: Intake call completed
        required: true
      - key: primary_contact
        label: Primary contact recorded
        required: true
      - key: company_profile
        label: Company profile completed (industry, headcount, addresses)
        required: true
      - key: nda_signed
        label: NDA signed and filed
        required: true
      - key: billing_details
        label: Billing details confirmed
        required: true
      - key: portal_invite
        label: Client portal invite sent
        required: false
  - key: contract_kickoff
    name: Contract kickoff
    steps:
      - key: scope_review
        label: Service scope reviewed with client
        required: true
      - key: signed_copy_filed
        label: Signed contract copy uploaded
        required: true
      - key: consultant_assigned
        label: Lead consultant assigned
        required: true
      - key: kickoff_meeting
        label: Kickoff meeting held
        required: true
      - key: policy_audit_scheduled
        label: Baseline HR policy audit scheduled
        required: false
      - key: escalation_path
        label: Escalation path agreed
        required: false
`

// LoadOnboardingTemplates reads checklist templates from a YAML file. When the
// file is missing the built-in defaults are loaded instead.
func LoadOnboardingTemplates(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[WARNING] Onboarding template file %s not found, using built-in defaults", path)
			data = []byte(defaultOnboardingYAML)
		} else {
			return fmt.Errorf("failed to read onboarding templates: %w", err)
		}
	}

	var parsed templateFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse onboarding templates: %w", err)
	}

	if len(parsed.Templates) == 0 {
		return fmt.Errorf("onboarding template file %s defines no templates", path)
	}

	templates := make(map[string]ChecklistTemplate, len(parsed.Templates))
	for _, tmpl := range parsed.Templates {
		if tmpl.Key == "" {
			return fmt.Errorf("onboarding template with empty key in %s", path)
		}
		if _, exists := templates[tmpl.Key]; exists {
			return fmt.Errorf("duplicate onboarding template key %q in %s", tmpl.Key, path)
		}
		seen := make(map[string]bool, len(tmpl.Steps))
		for _, step := range tmpl.Steps {
			if step.Key == "" {
				return fmt.Errorf("template %q has a step with empty key", tmpl.Key)
			}
			if seen[step.Key] {
				return fmt.Errorf("template %q has duplicate step key %q", tmpl.Key, step.Key)
			}
			seen[step.Key] = true
		}
		templates[tmpl.Key] = tmpl
	}

	templateMu.Lock()
	onboardingTemplates = templates
	templateMu.Unlock()

	log.Printf("Loaded %d onboarding checklist templates", len(templates))
	return nil
}

// GetOnboardingTemplate returns a loaded template by key
func GetOnboardingTemplate(key string) (ChecklistTemplate, bool) {
	templateMu.RLock()
	defer templateMu.RUnlock()

	if onboardingTemplates == nil {
		return ChecklistTemplate{}, false
	}
	tmpl, ok := onboardingTemplates[key]
	return tmpl, ok
}

// ListOnboardingTemplates returns all loaded templates
func ListOnboardingTemplates() []ChecklistTemplate {
	templateMu.RLock()
	defer templateMu.RUnlock()

	templates := make([]ChecklistTemplate, 0, len(onboardingTemplates))
	for _, tmpl := range onboardingTemplates {
		templates = append(templates, tmpl)
	}
	return templates
}

// InstantiateChecklist creates a checklist for a client from a template.
// Idempotent: if a checklist for the same client, template and contract
// already exists it is returned unchanged.
func InstantiateChecklist(db *gorm.DB, templateKey, clientID string, contractID *string) (*models.OnboardingChecklist, error) {
	tmpl, ok := GetOnboardingTemplate(templateKey)
	if !ok {
		return nil, fmt.Errorf("unknown onboarding template: %s", templateKey)
	}

	query := db.Where("client_id = ? AND template_key = ?", clientID, templateKey)
	if contractID != nil {
		query = query.Where("contract_id = ?", *contractID)
	} else {
		query = query.Where("contract_id IS NULL")
	}

	var existing models.OnboardingChecklist
	err := query.Preload("Items").First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check existing checklist: %w", err)
	}

	checklist := &models.OnboardingChecklist{
		ClientID:    clientID,
		ContractID:  contractID,
		TemplateKey: tmpl.Key,
		Name:        tmpl.Name,
	}
	for i, step := range tmpl.Steps {
		checklist.Items = append(checklist.Items, models.OnboardingItem{
			Key:      step.Key,
			Label:    step.Label,
			Required: step.Required,
			Position: i,
		})
	}

	if err := db.Create(checklist).Error; err != nil {
		return nil, fmt.Errorf("failed to create checklist: %w", err)
	}

	return checklist, nil
}

// SetChecklistItemDone toggles a checklist item's completion state.
// Marking an already-done item done again is a no-op.
func SetChecklistItemDone(db *gorm.DB, item *models.OnboardingItem, done bool, userID string) error {
	if item.Done == done {
		return nil
	}

	updates := map[string]interface{}{"done": done}
	if done {
		now := time.Now()
		updates["done_at"] = now
		updates["done_by_id"] = userID
	} else {
		updates["done_at"] = nil
		updates["done_by_id"] = nil
	}

	if err := db.Model(item).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update checklist item: %w", err)
	}
	return nil
}

// ResetChecklist deletes a checklist and rebuilds it from the currently
// loaded template. Completion state is not preserved, and steps added to the
// template since instantiation are picked up.
func ResetChecklist(db *gorm.DB, checklist *models.OnboardingChecklist) (*models.OnboardingChecklist, error) {
	if _, ok := GetOnboardingTemplate(checklist.TemplateKey); !ok {
		return nil, fmt.Errorf("unknown onboarding template: %s", checklist.TemplateKey)
	}

	var rebuilt *models.OnboardingChecklist
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("checklist_id = ?", checklist.ID).Delete(&models.OnboardingItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete checklist items: %w", err)
		}
		// Hard delete so re-instantiation is not blocked by the soft-deleted row
		if err := tx.Unscoped().Delete(&models.OnboardingChecklist{}, "id = ?", checklist.ID).Error; err != nil {
			return fmt.Errorf("failed to delete checklist: %w", err)
		}

		var err error
		rebuilt, err = InstantiateChecklist(tx, checklist.TemplateKey, checklist.ClientID, checklist.ContractID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rebuilt, nil
}
