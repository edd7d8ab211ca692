package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Erixon159/autemix-app/shared/models"
	"github.com/Erixon159/autemix-app/shared/repository"
	"github.com/Erixon159/autemix-app/shared/utils"
)

// Machine authentication errors. The two must stay distinguishable from each
// other at the boundary; internal causes behind ErrInvalidAPIKey must not be.
var (
	ErrAPIKeyRequired = errors.New("API key required")
	ErrInvalidAPIKey  = errors.New("invalid API key")
)

const machineCacheTTL = 5 * time.Minute

// Cache is the get/set/delete surface the authenticator needs. The default
// implementation is the shared Redis client.
type Cache interface {
	Get(key string) (string, error)
	Set(key, value string, ttl time.Duration) error
	Delete(key string) error
}

type redisCache struct{}

func (redisCache) Get(key string) (string, error) { return utils.CacheGet(key) }
func (redisCache) Set(key, value string, ttl time.Duration) error {
	return utils.CacheSet(key, value, ttl)
}
func (redisCache) Delete(key string) error { return utils.CacheDelete(key) }

// MachineAuthenticator resolves a presented API key to a machine and its
// owning tenant. The match runs across all tenants: authentication has to
// succeed before the tenant is known.
type MachineAuthenticator struct {
	machines repository.MachineRepository
	tenants  repository.TenantRepository
	signer   *APIKeySigner
	cache    Cache
}

// NewMachineAuthenticator creates a machine authenticator
func NewMachineAuthenticator(machines repository.MachineRepository, tenants repository.TenantRepository, signer *APIKeySigner) *MachineAuthenticator {
	return &MachineAuthenticator{machines: machines, tenants: tenants, signer: signer, cache: redisCache{}}
}

// Authenticate verifies a presented API key. The keyed digest of the
// presented value drives a direct lookup; the matched record's signed token
// is then verified and its embedded raw key compared in constant time.
// Every failure after extraction, including crypto and lookup errors, is
// downgraded to ErrInvalidAPIKey.
func (a *MachineAuthenticator) Authenticate(ctx context.Context, presented string) (*models.VendingMachine, *models.Tenant, error) {
	if presented == "" {
		return nil, nil, ErrAPIKeyRequired
	}

	lookup := a.signer.LookupDigest(presented)

	machine, err := a.findMachine(ctx, lookup)
	if err != nil {
		if err != repository.ErrNotFound {
			logrus.Errorf("API key authentication error: %v", err)
		}
		return nil, nil, ErrInvalidAPIKey
	}

	raw, err := a.signer.Verify(machine.APIKeyDigest)
	if err != nil {
		logrus.Errorf("API key authentication error: %v", err)
		return nil, nil, ErrInvalidAPIKey
	}
	if subtle.ConstantTimeCompare([]byte(raw), []byte(presented)) != 1 {
		return nil, nil, ErrInvalidAPIKey
	}

	tenant, err := a.tenants.FindByID(ctx, machine.TenantID)
	if err != nil {
		if err != repository.ErrNotFound {
			logrus.Errorf("API key authentication error: %v", err)
		}
		return nil, nil, ErrInvalidAPIKey
	}

	return machine, tenant, nil
}

// cachedMachineRef is the cache payload: just enough to re-fetch the record.
// The machine itself never goes through the cache, so the key columns (which
// do not serialize) stay intact and the signed token stays out of Redis.
type cachedMachineRef struct {
	MachineID uuid.UUID `json:"machine_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
}

// findMachine checks the cache before scanning by lookup digest. The cache
// key is the lookup digest, never the presented credential itself; a hit
// still reads the current record from the database.
func (a *MachineAuthenticator) findMachine(ctx context.Context, lookup string) (*models.VendingMachine, error) {
	cacheKey := MachineCacheKey(lookup)
	if cached, err := a.cache.Get(cacheKey); err == nil {
		var ref cachedMachineRef
		if json.Unmarshal([]byte(cached), &ref) == nil {
			if machine, err := a.machines.FindByID(ctx, ref.TenantID, ref.MachineID); err == nil {
				return machine, nil
			}
			// Stale entry, fall through to the lookup scan.
			_ = a.cache.Delete(cacheKey)
		}
	}

	machine, err := a.machines.FindByLookup(ctx, lookup)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cachedMachineRef{MachineID: machine.ID, TenantID: machine.TenantID}); err == nil {
		_ = a.cache.Set(cacheKey, string(data), machineCacheTTL)
	}
	return machine, nil
}

// MachineCacheKey is the Redis key caching a machine by its lookup digest.
// Key rotation deletes the entry for the digest being replaced.
func MachineCacheKey(lookupDigest string) string {
	return "machine:key:" + lookupDigest
}
