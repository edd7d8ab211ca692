package tenancy

import (
	"context"

	"github.com/Erixon159/autemix-app/shared/models"
	"github.com/Erixon159/autemix-app/shared/repository"
)

// TenantRef identifies a tenant either by a record already in hand or by its
// subdomain. Call sites resolve it exactly once at the service boundary.
type TenantRef struct {
	tenant    *models.Tenant
	subdomain string
}

// ByTenant references a tenant record directly
func ByTenant(tenant *models.Tenant) TenantRef {
	return TenantRef{tenant: tenant}
}

// BySubdomain references a tenant by its subdomain string
func BySubdomain(subdomain string) TenantRef {
	return TenantRef{subdomain: subdomain}
}

// Resolve returns the referenced tenant record, looking up the subdomain
// when needed. Active status is not checked here; callers decide what an
// inactive match means.
func (r TenantRef) Resolve(ctx context.Context, tenants repository.TenantRepository) (*models.Tenant, error) {
	if r.tenant != nil {
		return r.tenant, nil
	}
	tenant, err := tenants.FindBySubdomain(ctx, r.subdomain)
	if err == repository.ErrNotFound {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return tenant, nil
}
