package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Erixon159/autemix-app/shared/models"
)

// GormCredentialRepo is the PostgreSQL-backed credential repository. The
// admins and technicians tables share one schema, so all queries go through
// Table(kind).
type GormCredentialRepo struct {
	db *gorm.DB
}

// NewGormCredentialRepo creates a credential repository backed by the given database
func NewGormCredentialRepo(db *gorm.DB) *GormCredentialRepo {
	return &GormCredentialRepo{db: db}
}

func (r *GormCredentialRepo) Create(ctx context.Context, kind CredentialKind, acct *models.Account) error {
	acct.Email = models.NormalizeEmail(acct.Email)

	var count int64
	err := r.db.WithContext(ctx).Table(string(kind)).
		Where("tenant_id = ? AND LOWER(email) = ?", acct.TenantID, acct.Email).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	return r.db.WithContext(ctx).Table(string(kind)).Create(acct).Error
}

func (r *GormCredentialRepo) FindByID(ctx context.Context, kind CredentialKind, id uuid.UUID) (*models.Account, error) {
	var acct models.Account
	err := r.db.WithContext(ctx).Table(string(kind)).Where("id = ?", id).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *GormCredentialRepo) FindByEmail(ctx context.Context, kind CredentialKind, tenantID uuid.UUID, email string) (*models.Account, error) {
	var acct models.Account
	err := r.db.WithContext(ctx).Table(string(kind)).
		Where("tenant_id = ? AND LOWER(email) = ?", tenantID, models.NormalizeEmail(email)).
		First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// UpdateLockState is the compare-and-swap on the failed-attempts counter.
// The WHERE clause pins the counter value read by the caller; a zero row
// count means another writer got there first.
func (r *GormCredentialRepo) UpdateLockState(ctx context.Context, kind CredentialKind, id uuid.UUID, expectedAttempts, failedAttempts int, lockedAt *time.Time) error {
	res := r.db.WithContext(ctx).Table(string(kind)).
		Where("id = ? AND failed_attempts = ?", id, expectedAttempts).
		Updates(map[string]interface{}{
			"failed_attempts": failedAttempts,
			"locked_at":       lockedAt,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *GormCredentialRepo) RecordLogin(ctx context.Context, kind CredentialKind, id uuid.UUID, at time.Time, ip string, resetLock bool) error {
	updates := map[string]interface{}{
		"last_login_at": at,
		"last_login_ip": ip,
		"updated_at":    time.Now(),
	}
	if resetLock {
		updates["failed_attempts"] = 0
		updates["locked_at"] = nil
	}

	res := r.db.WithContext(ctx).Table(string(kind)).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
