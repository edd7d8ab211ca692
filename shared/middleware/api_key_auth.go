package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Erixon159/autemix-app/shared/auth"
	"github.com/Erixon159/autemix-app/shared/config"
	"github.com/Erixon159/autemix-app/shared/models"
)

// machineAuthPrefix scopes machine authentication. The trailing slash is
// significant: POST /api/v1/machines (registration) is exempt, while
// POST /api/v1/machines/:id/... is guarded.
const machineAuthPrefix = "/api/v1/machines/"

// APIKeyAuth authenticates vending machines on mutating requests under the
// machine route prefix. Read-only requests on the same prefix pass through
// untouched. On success the machine and its owning tenant are bound to the
// request; the tenant comes from the machine's ownership, not from any
// subdomain, and overrides whatever the resolver put there.
func APIKeyAuth(authenticator *auth.MachineAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requiresMachineAuth(c.Request) {
			c.Next()
			return
		}

		apiKey := extractAPIKey(c)
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "API key required",
			})
			return
		}

		machine, tenant, err := authenticator.Authenticate(c.Request.Context(), apiKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
			})
			return
		}

		SetTenant(c, tenant)
		c.Set(ContextMachineKey, machine)
		c.Next()
	}
}

func requiresMachineAuth(r *http.Request) bool {
	if !strings.HasPrefix(r.URL.Path, machineAuthPrefix) {
		return false
	}
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// extractAPIKey pulls the machine credential from the request. A bearer
// token in the Authorization header wins over the X-API-Key header.
func extractAPIKey(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.GetHeader(config.APIKeyHeader)
}

// GetMachine returns the machine bound to the request, if any
func GetMachine(c *gin.Context) (*models.VendingMachine, bool) {
	value, exists := c.Get(ContextMachineKey)
	if !exists {
		return nil, false
	}
	machine, ok := value.(*models.VendingMachine)
	return machine, ok
}
