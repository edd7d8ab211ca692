package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Erixon159/autemix-app/shared/config"
	"github.com/Erixon159/autemix-app/shared/models"
	"github.com/Erixon159/autemix-app/shared/repository"
	"github.com/Erixon159/autemix-app/shared/tenancy"
)

// Gin context keys set by the tenant and machine middlewares
const (
	ContextTenantKey  = "tenant"
	ContextMachineKey = "machine"
)

// TenantResolver binds every request to a tenant before any handler runs.
// Resolution tries the host subdomain first and the X-Tenant-Subdomain
// header second; the header is only consulted when the subdomain step found
// no record at all, so an inactive tenant matched by subdomain suppresses
// the fallback. Only after both steps is the active flag checked. Anything
// short of an active tenant is a 404.
func TenantResolver(tenants repository.TenantRepository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Machine-authenticated requests are already tenant-bound; their
		// tenant comes from the matched machine, never from the host.
		if _, ok := GetTenant(c); ok {
			c.Next()
			return
		}

		tenant := resolveTenant(c, tenants, cfg)
		if tenant == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":   "Tenant not found",
				"message": "Invalid subdomain or tenant is inactive",
			})
			return
		}

		SetTenant(c, tenant)
		c.Next()
	}
}

func resolveTenant(c *gin.Context, tenants repository.TenantRepository, cfg *config.Config) *models.Tenant {
	ctx := c.Request.Context()

	var tenant *models.Tenant
	if subdomain := ExtractSubdomain(c.Request.Host, cfg); subdomain != "" {
		tenant, _ = tenants.FindBySubdomain(ctx, subdomain)
	}

	// Header fallback for API clients, skipped whenever the subdomain step
	// matched a record, active or not.
	if tenant == nil {
		if header := c.GetHeader(config.TenantHeader); header != "" {
			tenant, _ = tenants.FindBySubdomain(ctx, header)
		}
	}

	if tenant == nil || !tenant.Active {
		return nil
	}
	return tenant
}

// ExtractSubdomain returns the candidate subdomain from a request host, or
// "" when the host carries none.
//
//	company1.autemix.com      -> company1
//	company1.localhost:3001   -> company1
func ExtractSubdomain(host string, cfg *config.Config) string {
	// Strip port suffix
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return ""
	}

	parts := strings.Split(host, ".")
	if strings.Contains(host, "localhost") || cfg.IsDevelopment() {
		// Development: any multi-label host has its first label as subdomain
		if len(parts) > 1 {
			return parts[0]
		}
		return ""
	}

	// Production: need at least subdomain.domain.tld
	if len(parts) >= 3 {
		return parts[0]
	}
	return ""
}

// SetTenant installs the tenant into both the gin context and the request's
// context.Context, so downstream code reads the ambient tenant through
// tenancy.FromContext regardless of whether it sees gin.
func SetTenant(c *gin.Context, tenant *models.Tenant) {
	c.Set(ContextTenantKey, tenant)
	c.Request = c.Request.WithContext(tenancy.NewContext(c.Request.Context(), tenant))
}

// GetTenant returns the tenant bound to the request, if any
func GetTenant(c *gin.Context) (*models.Tenant, bool) {
	value, exists := c.Get(ContextTenantKey)
	if !exists {
		return nil, false
	}
	tenant, ok := value.(*models.Tenant)
	return tenant, ok
}

// RequireTenant guards handlers that must run inside a tenant scope. Meant
// for routes where the resolver is intentionally not mounted.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tenancy.InTenantContext(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Tenant context required",
			})
			return
		}
		c.Next()
	}
}
