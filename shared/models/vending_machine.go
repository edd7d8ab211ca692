package models

import (
	"time"

	"github.com/google/uuid"
)

// VendingMachine is an unattended machine client. It authenticates by API key
// before its owning tenant is known, so both key columns are unique globally
// rather than per tenant.
type VendingMachine struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name     string    `json:"name" gorm:"type:varchar(100);not null"`
	Location string    `json:"location" gorm:"type:varchar(255);not null"`

	// APIKeyDigest is the signed token produced under the server key. The
	// raw key is embedded in it and recoverable only with that key; the raw
	// value itself is returned once at generation time and never persisted.
	APIKeyDigest string `json:"-" gorm:"not null;uniqueIndex"`

	// APIKeyLookup is the deterministic keyed digest of the raw key, used as
	// the direct match column during authentication. The signed token above
	// is kept for audit and rotation and is still verified on a match.
	APIKeyLookup string `json:"-" gorm:"not null;uniqueIndex"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the VendingMachine model
func (VendingMachine) TableName() string {
	return "vending_machines"
}

// MaskedAPIKey returns a redacted form of the stored digest for display
func (m *VendingMachine) MaskedAPIKey() string {
	if m.APIKeyDigest == "" {
		return ""
	}
	if len(m.APIKeyDigest) <= 8 {
		return "****" + m.APIKeyDigest
	}
	return "****" + m.APIKeyDigest[len(m.APIKeyDigest)-8:]
}
