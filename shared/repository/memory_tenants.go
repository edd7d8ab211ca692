package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Erixon159/autemix-app/shared/models"
)

// MemoryTenantRepo is an in-memory TenantRepository used by unit tests and
// when running without a database.
type MemoryTenantRepo struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]models.Tenant
}

// NewMemoryTenantRepo creates an empty in-memory tenant repository
func NewMemoryTenantRepo() *MemoryTenantRepo {
	return &MemoryTenantRepo{tenants: map[uuid.UUID]models.Tenant{}}
}

func (r *MemoryTenantRepo) Create(_ context.Context, tenant *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	for _, t := range r.tenants {
		if t.Subdomain == models.NormalizeSubdomain(tenant.Subdomain) {
			return ErrDuplicate
		}
	}
	stored := *tenant
	stored.Errors = nil
	r.tenants[tenant.ID] = stored
	return nil
}

func (r *MemoryTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *MemoryTenantRepo) FindBySubdomain(_ context.Context, subdomain string) (*models.Tenant, error) {
	normalized := models.NormalizeSubdomain(subdomain)
	if normalized == "" {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tenants {
		if t.Subdomain == normalized {
			tenant := t
			return &tenant, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryTenantRepo) ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error) {
	_, err := r.FindBySubdomain(ctx, subdomain)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *MemoryTenantRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tenants[id]
	if !ok {
		return ErrNotFound
	}
	t.Active = active
	r.tenants[id] = t
	return nil
}

func (r *MemoryTenantRepo) List(_ context.Context) ([]models.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Subdomain < all[j].Subdomain })
	return all, nil
}
