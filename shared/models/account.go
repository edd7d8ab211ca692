package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account lockout parameters shared by all human credential records.
const (
	MaxFailedAttempts = 5
	LockoutDuration   = time.Hour
)

// Account holds the credential fields shared by admins and technicians. The
// two roles live in structurally identical tables; both models embed this.
type Account struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID       uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	FirstName      string     `json:"first_name" gorm:"type:varchar(50);not null"`
	LastName       string     `json:"last_name" gorm:"type:varchar(50);not null"`
	Email          string     `json:"email" gorm:"not null"`
	PasswordDigest string     `json:"-" gorm:"not null"`
	FailedAttempts int        `json:"failed_attempts" gorm:"not null;default:0"`
	LockedAt       *time.Time `json:"locked_at,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP    string     `json:"last_login_ip,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Admin is an administrative credential holder within a tenant
type Admin struct {
	Account `gorm:"embedded"`
}

// TableName returns the table name for the Admin model
func (Admin) TableName() string {
	return "admins"
}

// Technician is a field-technician credential holder within a tenant
type Technician struct {
	Account `gorm:"embedded"`
}

// TableName returns the table name for the Technician model
func (Technician) TableName() string {
	return "technicians"
}

// NormalizeEmail lowercases and trims an email address. Emails are stored
// normalized and unique per (tenant, email) pair.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName returns the account holder's display name
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Locked reports whether the account is locked at the given instant.
// Expiry is a read-time computation: once LockoutDuration has elapsed the
// account reads as unlocked even though FailedAttempts and LockedAt keep
// their stale values until an explicit reset or the next successful login.
func (a *Account) Locked(now time.Time) bool {
	return a.LockedAt != nil && now.Sub(*a.LockedAt) < LockoutDuration
}
