package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erixon159/autemix-app/shared/config"
	"github.com/Erixon159/autemix-app/shared/models"
	"github.com/Erixon159/autemix-app/shared/repository"
	"github.com/Erixon159/autemix-app/shared/tenancy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func prodConfig() *config.Config {
	return &config.Config{Env: config.EnvProduction, BaseDomain: "autemix.com"}
}

func devConfig() *config.Config {
	return &config.Config{Env: config.EnvDevelopment, BaseDomain: "localhost"}
}

func TestExtractSubdomain(t *testing.T) {
	tests := []struct {
		name string
		host string
		cfg  *config.Config
		want string
	}{
		{"production full host", "company1.autemix.com", prodConfig(), "company1"},
		{"production apex", "autemix.com", prodConfig(), ""},
		{"production single label", "autemix", prodConfig(), ""},
		{"production with port", "company1.autemix.com:8443", prodConfig(), "company1"},
		{"localhost with subdomain", "company1.localhost", prodConfig(), "company1"},
		{"localhost with port", "company1.localhost:3001", prodConfig(), "company1"},
		{"bare localhost", "localhost:3001", prodConfig(), ""},
		{"development two labels", "company1.test", devConfig(), "company1"},
		{"development single label", "company1", devConfig(), ""},
		{"empty host", "", prodConfig(), ""},
		{"port only", ":8080", prodConfig(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSubdomain(tt.host, tt.cfg))
		})
	}
}

// resolverRouter mounts the resolver ahead of a probe handler that reports
// which tenant the request ended up bound to, via both access paths.
func resolverRouter(tenants repository.TenantRepository, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(TenantResolver(tenants, cfg))
	router.GET("/probe", func(c *gin.Context) {
		tenant, ok := GetTenant(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no tenant bound"})
			return
		}
		ambient := tenancy.CurrentSubdomain(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"subdomain": tenant.Subdomain, "ambient": ambient})
	})
	return router
}

func seedTenant(t *testing.T, tenants *repository.MemoryTenantRepo, subdomain string, active bool) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: subdomain, Subdomain: subdomain, Active: active}
	require.NoError(t, tenants.Create(context.Background(), tenant))
	return tenant
}

func probeRequest(router *gin.Engine, host string, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Host = host
	if header != "" {
		req.Header.Set(config.TenantHeader, header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTenantResolverBySubdomain(t *testing.T) {
	tenants := repository.NewMemoryTenantRepo()
	seedTenant(t, tenants, "company1", true)
	router := resolverRouter(tenants, prodConfig())

	w := probeRequest(router, "company1.autemix.com", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "company1", body["subdomain"])
	assert.Equal(t, "company1", body["ambient"], "request context carries the ambient tenant")
}

func TestTenantResolverCaseInsensitiveHost(t *testing.T) {
	tenants := repository.NewMemoryTenantRepo()
	seedTenant(t, tenants, "company1", true)
	router := resolverRouter(tenants, prodConfig())

	w := probeRequest(router, "COMPANY1.autemix.com", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantResolverUnknownSubdomain(t *testing.T) {
	tenants := repository.NewMemoryTenantRepo()
	router := resolverRouter(tenants, prodConfig())

	w := probeRequest(router, "ghost.autemix.com", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// The failure body is part of the contract.
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Tenant not found", body["error"])
	assert.Equal(t, "Invalid subdomain or tenant is inactive", body["message"])
}

func TestTenantResolverInactiveTenant(t *testing.T) {
	tenants := repository.NewMemoryTenantRepo()
	seedTenant(t, tenants, "company1", false)
	router := resolverRouter(tenants, prodConfig())

	w := probeRequest(router, "company1.autemix.com", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenantResolverHeaderFallback(t *testing.T) {
	tenants := repository.NewMemoryTenantRepo()
	seedTenant(t, tenants, "company1", true)
	router := resolverRouter(tenants, prodConfig())

	// Apex host yields no subdomain; the header supplies the tenant.
	w := probeRequest(router, "autemix.com", "company1")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "company1", body["subdomain"])
}

func TestTenantResolverInactiveMatchSuppressesHeaderFallback(t *testing.T) {
	tenants := repository.NewMemoryTenantRepo()
	seedTenant(t, tenants, "inactive1", false)
	seedTenant(t, tenants, "company1", true)
	router := resolverRouter(tenants, prodConfig())

	// The subdomain step matched a record, so the header pointing at an
	// active tenant is never consulted and the request fails.
	w := probeRequest(router, "inactive1.autemix.com", "company1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenantResolverHeaderFallbackOnUnknownSubdomain(t *testing.T) {
	tenants := repository.NewMemoryTenantRepo()
	seedTenant(t, tenants, "company1", true)
	router := resolverRouter(tenants, prodConfig())

	// No record for the subdomain at all: the header is consulted.
	w := probeRequest(router, "ghost.autemix.com", "company1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantResolverSkipsWhenTenantAlreadyBound(t *testing.T) {
	tenants := repository.NewMemoryTenantRepo()
	bound := seedTenant(t, tenants, "machine-owner", true)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		SetTenant(c, bound)
		c.Next()
	})
	router.Use(TenantResolver(tenants, prodConfig()))
	router.GET("/probe", func(c *gin.Context) {
		tenant, _ := GetTenant(c)
		c.JSON(http.StatusOK, gin.H{"subdomain": tenant.Subdomain})
	})

	// Unresolvable host, but the pre-bound tenant survives untouched.
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Host = "ghost.autemix.com"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "machine-owner", body["subdomain"])
}

func TestRequireTenant(t *testing.T) {
	router := gin.New()
	router.Use(RequireTenant())
	router.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Tenant context required", body["error"])
}
