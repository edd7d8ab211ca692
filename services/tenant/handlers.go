package main

import (
	"github.com/gin-gonic/gin"

	"github.com/Erixon159/autemix-app/shared/repository"
	"github.com/Erixon159/autemix-app/shared/tenancy"
	"github.com/Erixon159/autemix-app/shared/utils"
)

// CreateTenantRequest represents the create tenant request
type CreateTenantRequest struct {
	Name      string `json:"name" binding:"required"`
	Subdomain string `json:"subdomain" binding:"required"`
}

// handleCreateTenant handles tenant provisioning. Validation failures come
// back on the record, not as an error; they map to a 422 with field errors.
func handleCreateTenant(service *tenancy.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		tenant, err := service.Create(c.Request.Context(), req.Name, req.Subdomain)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create tenant")
			return
		}
		if tenant.Errors.Any() {
			utils.UnprocessableResponse(c, tenant.Errors)
			return
		}

		utils.CreatedResponse(c, "Tenant created successfully", tenant)
	}
}

// handleListTenants handles getting all tenants
func handleListTenants(tenants repository.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := tenants.List(c.Request.Context())
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch tenants")
			return
		}

		utils.OKResponse(c, "Tenants retrieved successfully", all)
	}
}

// handleGetTenant handles getting a tenant by subdomain
func handleGetTenant(tenants repository.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, err := tenants.FindBySubdomain(c.Request.Context(), c.Param("subdomain"))
		if err == repository.ErrNotFound {
			utils.NotFoundResponse(c, "Tenant not found")
			return
		}
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch tenant")
			return
		}

		utils.OKResponse(c, "Tenant retrieved successfully", tenant)
	}
}

// handleCheckAvailability reports whether a subdomain can still be claimed
func handleCheckAvailability(service *tenancy.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		subdomain := c.Param("subdomain")
		available, err := service.AvailableSubdomain(c.Request.Context(), subdomain)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to check subdomain")
			return
		}

		utils.OKResponse(c, "Subdomain availability checked", gin.H{
			"subdomain": subdomain,
			"available": available,
		})
	}
}

// handleActivateTenant flips a tenant to active. The lifecycle service only
// reports success or failure on this path; false maps to 404.
func handleActivateTenant(service *tenancy.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !service.Activate(c.Request.Context(), tenancy.BySubdomain(c.Param("subdomain"))) {
			utils.NotFoundResponse(c, "Tenant not found")
			return
		}
		utils.OKResponse(c, "Tenant activated", nil)
	}
}

// handleDeactivateTenant flips a tenant to inactive
func handleDeactivateTenant(service *tenancy.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !service.Deactivate(c.Request.Context(), tenancy.BySubdomain(c.Param("subdomain"))) {
			utils.NotFoundResponse(c, "Tenant not found")
			return
		}
		utils.OKResponse(c, "Tenant deactivated", nil)
	}
}
