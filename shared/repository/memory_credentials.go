package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Erixon159/autemix-app/shared/models"
)

// MemoryCredentialRepo is an in-memory CredentialRepository with the same
// compare-and-swap semantics as the database-backed one.
type MemoryCredentialRepo struct {
	mu       sync.Mutex
	accounts map[CredentialKind]map[uuid.UUID]models.Account
}

// NewMemoryCredentialRepo creates an empty in-memory credential repository
func NewMemoryCredentialRepo() *MemoryCredentialRepo {
	return &MemoryCredentialRepo{
		accounts: map[CredentialKind]map[uuid.UUID]models.Account{
			KindAdmin:      {},
			KindTechnician: {},
		},
	}
}

func (r *MemoryCredentialRepo) Create(_ context.Context, kind CredentialKind, acct *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct.Email = models.NormalizeEmail(acct.Email)
	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	}
	for _, a := range r.accounts[kind] {
		if a.TenantID == acct.TenantID && a.Email == acct.Email {
			return ErrDuplicate
		}
	}
	r.accounts[kind][acct.ID] = *acct
	return nil
}

func (r *MemoryCredentialRepo) FindByID(_ context.Context, kind CredentialKind, id uuid.UUID) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[kind][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *MemoryCredentialRepo) FindByEmail(_ context.Context, kind CredentialKind, tenantID uuid.UUID, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := models.NormalizeEmail(email)
	for _, a := range r.accounts[kind] {
		if a.TenantID == tenantID && a.Email == normalized {
			acct := a
			return &acct, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryCredentialRepo) UpdateLockState(_ context.Context, kind CredentialKind, id uuid.UUID, expectedAttempts, failedAttempts int, lockedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[kind][id]
	if !ok {
		return ErrNotFound
	}
	if a.FailedAttempts != expectedAttempts {
		return ErrConcurrentUpdate
	}
	a.FailedAttempts = failedAttempts
	a.LockedAt = lockedAt
	a.UpdatedAt = time.Now()
	r.accounts[kind][id] = a
	return nil
}

func (r *MemoryCredentialRepo) RecordLogin(_ context.Context, kind CredentialKind, id uuid.UUID, at time.Time, ip string, resetLock bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[kind][id]
	if !ok {
		return ErrNotFound
	}
	a.LastLoginAt = &at
	a.LastLoginIP = ip
	if resetLock {
		a.FailedAttempts = 0
		a.LockedAt = nil
	}
	a.UpdatedAt = time.Now()
	r.accounts[kind][id] = a
	return nil
}
