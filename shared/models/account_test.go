package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "john.doe@x.com", NormalizeEmail("John.Doe@X.com"))
	assert.Equal(t, "john.doe@x.com", NormalizeEmail("  JOHN.DOE@X.COM  "))
}

func TestAccountLocked(t *testing.T) {
	now := time.Now()

	acct := Account{}
	assert.False(t, acct.Locked(now), "no lock timestamp means unlocked")

	lockedAt := now.Add(-30 * time.Minute)
	acct = Account{FailedAttempts: 5, LockedAt: &lockedAt}
	assert.True(t, acct.Locked(now))

	// Expiry is computed at read time; the stored fields do not change.
	expired := now.Add(-LockoutDuration - time.Minute)
	acct = Account{FailedAttempts: 5, LockedAt: &expired}
	assert.False(t, acct.Locked(now))
	assert.Equal(t, 5, acct.FailedAttempts)
	assert.NotNil(t, acct.LockedAt)
}

func TestAccountFullName(t *testing.T) {
	acct := Account{FirstName: "Jane", LastName: "Doe"}
	assert.Equal(t, "Jane Doe", acct.FullName())
}
