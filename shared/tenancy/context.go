package tenancy

import (
	"context"
	"errors"

	"github.com/Erixon159/autemix-app/shared/models"
)

// Errors surfaced by tenant resolution and context queries
var (
	ErrContextMissing = errors.New("tenant context required")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantInactive = errors.New("tenant is not active")
)

type contextKey int

const tenantKey contextKey = iota

// NewContext returns a context carrying the given tenant as the ambient
// value. The ambient tenant is request/task-local by construction: derived
// contexts never leak across concurrent requests, and the previous value is
// restored structurally when the derived context goes out of scope.
func NewContext(ctx context.Context, tenant *models.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, tenant)
}

// FromContext returns the ambient tenant, or ErrContextMissing when no
// tenant scope has been entered.
func FromContext(ctx context.Context) (*models.Tenant, error) {
	tenant, ok := ctx.Value(tenantKey).(*models.Tenant)
	if !ok || tenant == nil {
		return nil, ErrContextMissing
	}
	return tenant, nil
}

// InTenantContext reports whether an ambient tenant is set
func InTenantContext(ctx context.Context) bool {
	_, err := FromContext(ctx)
	return err == nil
}

// CurrentSubdomain returns the ambient tenant's subdomain, or "" outside a
// tenant scope.
func CurrentSubdomain(ctx context.Context) string {
	tenant, err := FromContext(ctx)
	if err != nil {
		return ""
	}
	return tenant.Subdomain
}

// RunWithTenant runs fn with tenant as the ambient value. Nested calls
// shadow the outer tenant for the duration of fn; the outer scope keeps its
// own context value on every exit path, including errors and panics.
func RunWithTenant(ctx context.Context, tenant *models.Tenant, fn func(ctx context.Context) error) error {
	return fn(NewContext(ctx, tenant))
}
