package services

import (
	"strings"
	"talent_flow_app_go/models"

	"gorm.io/gorm"
)

// SearchResults groups matches by entity type
type SearchResults struct {
	Query     string              `json:"query"`
	Clients   []ClientSearchHit   `json:"clients"`
	Cases     []CaseSearchHit     `json:"cases"`
	Contacts  []ContactSearchHit  `json:"contacts"`
	Documents []DocumentSearchHit `json:"documents"`
}

type ClientSearchHit struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Status   string `json:"status"`
	Industry string `json:"industry,omitempty"`
}

type CaseSearchHit struct {
	ID         string `json:"id"`
	CaseNumber string `json:"case_number"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	ClientName string `json:"client_name"`
}

type ContactSearchHit struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
}

type DocumentSearchHit struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	ClientID string `json:"client_id"`
	CaseID   string `json:"case_id,omitempty"`
}

// SearchService runs the global keyword search
type SearchService struct {
	db *gorm.DB
}

// NewSearchService creates a new search service instance
func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

// Search matches the query against clients, cases, contacts and documents.
// Queries shorter than two characters return empty results. A non-empty
// assigneeID restricts case matches to that assignee (consultant scoping).
func (s *SearchService) Search(query string, limit int, assigneeID string) (*SearchResults, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	results := &SearchResults{
		Query:     query,
		Clients:   []ClientSearchHit{},
		Cases:     []CaseSearchHit{},
		Contacts:  []ContactSearchHit{},
		Documents: []DocumentSearchHit{},
	}

	trimmed := strings.TrimSpace(query)
	if len(trimmed) < 2 {
		return results, nil
	}
	pattern := "%" + trimmed + "%"

	var clients []models.Client
	if err := s.db.
		Where("name LIKE ? OR legal_name LIKE ? OR industry LIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&clients).Error; err != nil {
		return nil, err
	}
	for _, client := range clients {
		results.Clients = append(results.Clients, ClientSearchHit{
			ID:       client.ID,
			Name:     client.Name,
			Slug:     client.Slug,
			Status:   client.Status,
			Industry: client.Industry,
		})
	}

	casesQuery := s.db.Preload("Client").
		Where("case_number LIKE ? OR title LIKE ? OR description LIKE ?", pattern, pattern, pattern)
	if assigneeID != "" {
		casesQuery = casesQuery.Where("assigned_to_id = ?", assigneeID)
	}

	var cases []models.Case
	if err := casesQuery.
		Order("opened_at DESC").
		Limit(limit).
		Find(&cases).Error; err != nil {
		return nil, err
	}
	for _, c := range cases {
		hit := CaseSearchHit{
			ID:         c.ID,
			CaseNumber: c.CaseNumber,
			Title:      c.Title,
			Status:     c.Status,
			Priority:   c.Priority,
		}
		if c.Client.ID != "" {
			hit.ClientName = c.Client.Name
		}
		results.Cases = append(results.Cases, hit)
	}

	var contacts []models.ClientContact
	if err := s.db.Preload("Client").
		Where("name LIKE ? OR email LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	for _, contact := range contacts {
		hit := ContactSearchHit{
			ID:       contact.ID,
			Name:     contact.Name,
			Email:    contact.Email,
			ClientID: contact.ClientID,
		}
		if contact.Client.ID != "" {
			hit.ClientName = contact.Client.Name
		}
		results.Contacts = append(results.Contacts, hit)
	}

	var documents []models.Document
	if err := s.db.
		Where("file_original_name LIKE ? OR description LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&documents).Error; err != nil {
		return nil, err
	}
	for _, doc := range documents {
		hit := DocumentSearchHit{
			ID:       doc.ID,
			FileName: doc.FileOriginalName,
			ClientID: doc.ClientID,
		}
		if doc.CaseID != nil {
			hit.CaseID = *doc.CaseID
		}
		results.Documents = append(results.Documents, hit)
	}

	return results, nil
}
