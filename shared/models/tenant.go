package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReservedSubdomains cannot be claimed by tenants because they collide with
// platform routes and infrastructure hostnames.
var ReservedSubdomains = []string{
	"www", "api", "admin", "app", "mail", "ftp", "localhost",
	"support", "help", "docs", "blog", "news",
	"cdn", "assets", "static", "media", "files",
	"test", "staging", "dev", "development",
	"dashboard", "console", "panel",
	"auth", "login", "signup", "register",
	"billing", "payment", "payments",
	"status", "health", "ping",
	"webhook", "webhooks", "callback",
	"mobile", "ios", "android",
	"beta", "alpha", "demo", "sandbox",
	"root", "system", "internal",
	"autemix", "platform", "service",
}

var subdomainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-]*[a-zA-Z0-9]$`)

// Tenant represents a customer organization. Every scoped entity carries its
// ID; tenants are never hard-deleted, only deactivated.
type Tenant struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Subdomain string    `json:"subdomain" gorm:"type:varchar(63);not null;uniqueIndex"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Field-level validation errors from the create path. Carried on the
	// record instead of being returned as an error; callers inspect it.
	Errors FieldErrors `json:"errors,omitempty" gorm:"-"`
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// NormalizeSubdomain lowercases and trims a subdomain the same way it is
// stored, so lookups are case-insensitive.
func NormalizeSubdomain(subdomain string) string {
	return strings.ToLower(strings.TrimSpace(subdomain))
}

// Normalize applies subdomain normalization in place before validation.
func (t *Tenant) Normalize() {
	t.Subdomain = NormalizeSubdomain(t.Subdomain)
}

// SubdomainReserved reports whether the given subdomain is on the reserved list.
func SubdomainReserved(subdomain string) bool {
	s := NormalizeSubdomain(subdomain)
	if s == "" {
		return true
	}
	for _, r := range ReservedSubdomains {
		if s == r {
			return true
		}
	}
	return false
}

// Validate checks Tenant invariants and records failures on t.Errors.
// Uniqueness is checked separately by the lifecycle service, which has
// repository access.
func (t *Tenant) Validate() FieldErrors {
	errs := FieldErrors{}

	name := strings.TrimSpace(t.Name)
	if name == "" {
		errs.Add("name", "can't be blank")
	} else if len(name) < 2 || len(name) > 100 {
		errs.Add("name", "must be between 2 and 100 characters")
	}

	switch {
	case t.Subdomain == "":
		errs.Add("subdomain", "can't be blank")
	case len(t.Subdomain) < 2 || len(t.Subdomain) > 63:
		errs.Add("subdomain", "must be between 2 and 63 characters")
	case !subdomainPattern.MatchString(t.Subdomain):
		errs.Add("subdomain", "must contain only letters, numbers, and hyphens")
	case SubdomainReserved(t.Subdomain):
		errs.Add("subdomain", "is reserved")
	}

	return errs
}

// FullDomain returns the tenant's hostname under the given base domain.
func (t *Tenant) FullDomain(baseDomain string) string {
	return t.Subdomain + "." + baseDomain
}
