package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erixon159/autemix-app/shared/models"
	"github.com/Erixon159/autemix-app/shared/repository"
	"github.com/Erixon159/autemix-app/shared/utils"
)

// memoryCache is an in-process Cache for exercising the cache-hit path.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (c *memoryCache) Get(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if !ok {
		return "", utils.ErrCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Set(key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// countingMachineRepo counts lookup scans so tests can tell which path
// served an authentication.
type countingMachineRepo struct {
	*repository.MemoryMachineRepo
	lookups int
}

func (r *countingMachineRepo) FindByLookup(ctx context.Context, lookupDigest string) (*models.VendingMachine, error) {
	r.lookups++
	return r.MemoryMachineRepo.FindByLookup(ctx, lookupDigest)
}

type machineFixture struct {
	auth     *MachineAuthenticator
	signer   *APIKeySigner
	machines *repository.MemoryMachineRepo
	tenants  *repository.MemoryTenantRepo
	tenant   *models.Tenant
	machine  *models.VendingMachine
	rawKey   string
}

func newMachineFixture(t *testing.T) *machineFixture {
	t.Helper()

	signer := NewAPIKeySigner("test-secret-key-base")
	machines := repository.NewMemoryMachineRepo()
	tenants := repository.NewMemoryTenantRepo()

	tenant := &models.Tenant{Subdomain: "acme", Active: true}
	require.NoError(t, tenants.Create(context.Background(), tenant))

	raw, signed, lookup, err := signer.Generate()
	require.NoError(t, err)

	machine := &models.VendingMachine{
		TenantID:     tenant.ID,
		Name:         "Lobby Machine",
		Location:     "Building A",
		APIKeyDigest: signed,
		APIKeyLookup: lookup,
	}
	require.NoError(t, machines.Create(context.Background(), machine))

	return &machineFixture{
		auth:     NewMachineAuthenticator(machines, tenants, signer),
		signer:   signer,
		machines: machines,
		tenants:  tenants,
		tenant:   tenant,
		machine:  machine,
		rawKey:   raw,
	}
}

func TestMachineAuthenticateSuccess(t *testing.T) {
	f := newMachineFixture(t)

	machine, tenant, err := f.auth.Authenticate(context.Background(), f.rawKey)
	require.NoError(t, err)

	assert.Equal(t, f.machine.ID, machine.ID)
	assert.Equal(t, f.tenant.ID, tenant.ID)
	assert.Equal(t, "acme", tenant.Subdomain)
}

func TestMachineAuthenticateMissingKey(t *testing.T) {
	f := newMachineFixture(t)

	_, _, err := f.auth.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestMachineAuthenticateUnknownKey(t *testing.T) {
	f := newMachineFixture(t)

	_, _, err := f.auth.Authenticate(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestMachineAuthenticateRejectsTamperedStoredToken(t *testing.T) {
	f := newMachineFixture(t)

	// Corrupt the stored signed token while keeping the lookup digest intact:
	// the direct match finds the record but verification must refuse it.
	tampered := f.machine.APIKeyDigest[:len(f.machine.APIKeyDigest)-2] + "xx"
	require.NoError(t, f.machines.UpdateKey(context.Background(), f.machine.ID, tampered, f.machine.APIKeyLookup))

	_, _, err := f.auth.Authenticate(context.Background(), f.rawKey)
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestMachineAuthenticateRejectsSwappedToken(t *testing.T) {
	f := newMachineFixture(t)

	// A valid token for a different key under the matched lookup digest must
	// fail the constant-time comparison against the presented value.
	_, otherSigned, _, err := f.signer.Generate()
	require.NoError(t, err)
	require.NoError(t, f.machines.UpdateKey(context.Background(), f.machine.ID, otherSigned, f.machine.APIKeyLookup))

	_, _, err = f.auth.Authenticate(context.Background(), f.rawKey)
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestMachineAuthenticateOrphanedTenant(t *testing.T) {
	signer := NewAPIKeySigner("test-secret-key-base")
	machines := repository.NewMemoryMachineRepo()
	tenants := repository.NewMemoryTenantRepo()

	raw, signed, lookup, err := signer.Generate()
	require.NoError(t, err)
	machine := &models.VendingMachine{
		TenantID:     uuid.New(),
		Name:         "Orphan",
		APIKeyDigest: signed,
		APIKeyLookup: lookup,
	}
	require.NoError(t, machines.Create(context.Background(), machine))

	auth := NewMachineAuthenticator(machines, tenants, signer)
	_, _, err = auth.Authenticate(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidAPIKey, "a machine without a resolvable tenant must not authenticate")
}

func TestMachineAuthenticateRepeatedWithCache(t *testing.T) {
	f := newMachineFixture(t)
	ctx := context.Background()

	counting := &countingMachineRepo{MemoryMachineRepo: f.machines}
	f.auth.machines = counting
	f.auth.cache = newMemoryCache()

	machine, tenant, err := f.auth.Authenticate(ctx, f.rawKey)
	require.NoError(t, err)
	assert.Equal(t, f.machine.ID, machine.ID)
	assert.Equal(t, 1, counting.lookups)

	// The second authentication is served through the cached reference and
	// must still carry the verifiable key columns.
	machine, tenant, err = f.auth.Authenticate(ctx, f.rawKey)
	require.NoError(t, err)
	assert.Equal(t, f.machine.ID, machine.ID)
	assert.Equal(t, f.tenant.ID, tenant.ID)
	assert.Equal(t, 1, counting.lookups, "cached authentication must not rescan by lookup digest")
}

func TestMachineAuthenticateStaleCacheEntry(t *testing.T) {
	f := newMachineFixture(t)
	ctx := context.Background()

	cache := newMemoryCache()
	f.auth.cache = cache

	_, _, err := f.auth.Authenticate(ctx, f.rawKey)
	require.NoError(t, err)

	// A cached reference pointing at a vanished record falls back to the
	// lookup scan and drops the entry.
	require.NoError(t, cache.Set(MachineCacheKey(f.signer.LookupDigest(f.rawKey)),
		`{"machine_id":"`+uuid.NewString()+`","tenant_id":"`+uuid.NewString()+`"}`, 0))

	machine, _, err := f.auth.Authenticate(ctx, f.rawKey)
	require.NoError(t, err)
	assert.Equal(t, f.machine.ID, machine.ID)
}

func TestMachineAuthenticateCachedThenRotated(t *testing.T) {
	f := newMachineFixture(t)
	ctx := context.Background()

	f.auth.cache = newMemoryCache()

	_, _, err := f.auth.Authenticate(ctx, f.rawKey)
	require.NoError(t, err)

	// Rotate without evicting: the cached reference re-reads the current
	// record, whose key no longer matches the presented one.
	_, newSigned, newLookup, err := f.signer.Generate()
	require.NoError(t, err)
	require.NoError(t, f.machines.UpdateKey(ctx, f.machine.ID, newSigned, newLookup))

	_, _, err = f.auth.Authenticate(ctx, f.rawKey)
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestMachineAuthenticateAfterRotation(t *testing.T) {
	f := newMachineFixture(t)
	ctx := context.Background()

	newRaw, newSigned, newLookup, err := f.signer.Generate()
	require.NoError(t, err)
	require.NoError(t, f.machines.UpdateKey(ctx, f.machine.ID, newSigned, newLookup))

	_, _, err = f.auth.Authenticate(ctx, f.rawKey)
	assert.ErrorIs(t, err, ErrInvalidAPIKey, "the replaced key must stop working")

	machine, _, err := f.auth.Authenticate(ctx, newRaw)
	require.NoError(t, err)
	assert.Equal(t, f.machine.ID, machine.ID)
}
