package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User role constants
const (
	RoleAdmin      = "admin"
	RoleConsultant = "consultant"
	RoleStaff      = "staff"
)

type User struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string     `gorm:"not null" json:"name"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Role        string     `gorm:"not null;default:staff" json:"role"` // admin, consultant, staff
	Title       string     `json:"title"`                              // e.g. "Senior HR Consultant"
	Phone       string     `json:"phone"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`

	// Login throttling
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockoutUntil        *time.Time `json:"-"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// IsAdmin checks if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsLockedOut checks if the user is currently locked out after failed logins
func (u *User) IsLockedOut() bool {
	return u.LockoutUntil != nil && time.Now().Before(*u.LockoutUntil)
}

// IsValidUserRole checks if the role is one of the known roles
func IsValidUserRole(role string) bool {
	return role == RoleAdmin || role == RoleConsultant || role == RoleStaff
}
