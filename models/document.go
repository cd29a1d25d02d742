package models

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document represents an uploaded file attached to a client, and optionally
// to one of the client's cases or contracts
type Document struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Client relationship (for scoping)
	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"-"`

	// Optional attachments
	CaseID *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	Case   *Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	ContractID *string   `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	Contract   *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`

	// File metadata
	FileName         string `gorm:"not null" json:"file_name"`
	FileOriginalName string `gorm:"not null" json:"file_original_name"`
	StorageKey       string `gorm:"not null" json:"-"` // Not exposed in JSON for security
	FileSize         int64  `gorm:"not null" json:"file_size"`
	MimeType         string `json:"mime_type,omitempty"`

	Description *string `gorm:"type:text" json:"description,omitempty"`

	// Upload tracking
	UploadedByID *string `gorm:"type:uuid" json:"uploaded_by_id,omitempty"`
	UploadedBy   *User   `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// GetDownloadURL returns the download URL for this document
func (d *Document) GetDownloadURL() string {
	return "/api/documents/" + d.ID + "/download"
}

// SizeDisplay returns a human-readable file size, e.g. "2.4 MB"
func (d *Document) SizeDisplay() string {
	return humanize.Bytes(uint64(d.FileSize))
}
