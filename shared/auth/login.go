package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Erixon159/autemix-app/shared/models"
	"github.com/Erixon159/autemix-app/shared/repository"
	"github.com/Erixon159/autemix-app/shared/tenancy"
)

// Login errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked")
)

// lockUpdateRetries bounds how often a lost compare-and-swap is retried from
// a fresh read before ErrConcurrentUpdate surfaces to the caller.
const lockUpdateRetries = 3

// LoginService authenticates human credential holders and maintains the
// shared brute-force lockout state machine: 5 failed attempts lock the
// account for one hour.
type LoginService struct {
	creds repository.CredentialRepository
	now   func() time.Time
}

// NewLoginService creates a login service
func NewLoginService(creds repository.CredentialRepository) *LoginService {
	return &LoginService{creds: creds, now: time.Now}
}

// Authenticate checks an email/password pair against the ambient tenant's
// credential records and applies the lockout bookkeeping. On success the
// login time and origin address are stamped and, if any failures had
// accumulated, counter and lock are cleared.
func (s *LoginService) Authenticate(ctx context.Context, kind repository.CredentialKind, email, password, ip string) (*models.Account, error) {
	tenant, err := tenancy.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	acct, err := s.creds.FindByEmail(ctx, kind, tenant.ID, email)
	if err == repository.ErrNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if acct.Locked(now) {
		return nil, ErrAccountLocked
	}

	if !CheckPassword(acct.PasswordDigest, password) {
		if err := s.RegisterFailedAttempt(ctx, kind, acct); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	resetLock := acct.FailedAttempts > 0
	if err := s.creds.RecordLogin(ctx, kind, acct.ID, now, ip, resetLock); err != nil {
		return nil, err
	}
	acct.LastLoginAt = &now
	acct.LastLoginIP = ip
	if resetLock {
		acct.FailedAttempts = 0
		acct.LockedAt = nil
	}
	return acct, nil
}

// RegisterFailedAttempt increments the failure counter; reaching the maximum
// locks the account with the current time. The counter is not capped: a
// failure registered once a previous lock has expired keeps counting past
// the maximum and refreshes the lock timestamp. The increment is a
// compare-and-swap retried from a fresh read when it loses a race.
func (s *LoginService) RegisterFailedAttempt(ctx context.Context, kind repository.CredentialKind, acct *models.Account) error {
	for i := 0; i < lockUpdateRetries; i++ {
		attempts := acct.FailedAttempts + 1
		lockedAt := acct.LockedAt
		if attempts >= models.MaxFailedAttempts {
			t := s.now()
			lockedAt = &t
		}

		err := s.creds.UpdateLockState(ctx, kind, acct.ID, acct.FailedAttempts, attempts, lockedAt)
		if err == nil {
			acct.FailedAttempts = attempts
			acct.LockedAt = lockedAt
			return nil
		}
		if err != repository.ErrConcurrentUpdate {
			return err
		}

		fresh, ferr := s.creds.FindByID(ctx, kind, acct.ID)
		if ferr != nil {
			return ferr
		}
		*acct = *fresh
	}
	return repository.ErrConcurrentUpdate
}

// Unlock clears the failure counter and lock timestamp unconditionally,
// regardless of how much of the lockout has elapsed.
func (s *LoginService) Unlock(ctx context.Context, kind repository.CredentialKind, acct *models.Account) error {
	for i := 0; i < lockUpdateRetries; i++ {
		err := s.creds.UpdateLockState(ctx, kind, acct.ID, acct.FailedAttempts, 0, nil)
		if err == nil {
			acct.FailedAttempts = 0
			acct.LockedAt = nil
			return nil
		}
		if err != repository.ErrConcurrentUpdate {
			return err
		}

		fresh, ferr := s.creds.FindByID(ctx, kind, acct.ID)
		if ferr != nil {
			return ferr
		}
		*acct = *fresh
	}
	return repository.ErrConcurrentUpdate
}
