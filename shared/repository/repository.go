package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Erixon159/autemix-app/shared/models"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint would be violated
	ErrDuplicate = errors.New("record already exists")
	// ErrConcurrentUpdate is returned when a compare-and-swap update lost the
	// race against another writer; callers may retry from a fresh read.
	ErrConcurrentUpdate = errors.New("concurrent update conflict")
)

// CredentialKind selects which credential table an operation targets. Admins
// and technicians share one schema and one repository.
type CredentialKind string

const (
	KindAdmin      CredentialKind = "admins"
	KindTechnician CredentialKind = "technicians"
)

// TenantRepository provides access to tenant records
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	// FindBySubdomain matches case-insensitively and regardless of the
	// active flag; resolution order depends on seeing inactive matches.
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context) ([]models.Tenant, error)
}

// CredentialRepository provides access to admin and technician records.
// Lock-state mutations use a compare-and-swap on the failed-attempts counter
// so concurrent failed logins against one record cannot lose updates.
type CredentialRepository interface {
	Create(ctx context.Context, kind CredentialKind, acct *models.Account) error
	FindByID(ctx context.Context, kind CredentialKind, id uuid.UUID) (*models.Account, error)
	FindByEmail(ctx context.Context, kind CredentialKind, tenantID uuid.UUID, email string) (*models.Account, error)
	// UpdateLockState applies (failedAttempts, lockedAt) only if the stored
	// counter still equals expectedAttempts; otherwise ErrConcurrentUpdate.
	UpdateLockState(ctx context.Context, kind CredentialKind, id uuid.UUID, expectedAttempts, failedAttempts int, lockedAt *time.Time) error
	// RecordLogin stamps the login time and origin address; when resetLock is
	// set it also clears the counter and lock timestamp in the same write.
	RecordLogin(ctx context.Context, kind CredentialKind, id uuid.UUID, at time.Time, ip string, resetLock bool) error
}

// MachineRepository provides access to vending machine records
type MachineRepository interface {
	Create(ctx context.Context, machine *models.VendingMachine) error
	// FindByLookup matches the keyed digest of a presented credential across
	// all tenants; machine authentication runs before the tenant is known.
	FindByLookup(ctx context.Context, lookupDigest string) (*models.VendingMachine, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.VendingMachine, error)
	UpdateKey(ctx context.Context, id uuid.UUID, signedDigest, lookupDigest string) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.VendingMachine, error)
}
