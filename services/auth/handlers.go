package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Erixon159/autemix-app/shared/auth"
	"github.com/Erixon159/autemix-app/shared/middleware"
	"github.com/Erixon159/autemix-app/shared/repository"
	"github.com/Erixon159/autemix-app/shared/tenancy"
	"github.com/Erixon159/autemix-app/shared/utils"
)

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the authenticated profile. Issuing session tokens is
// a separate concern; login here is bookkeeping against the lockout policy.
type LoginResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	LastLoginAt string `json:"last_login_at"`
}

// handleLogin authenticates an admin or technician within the ambient tenant
func handleLogin(loginService *auth.LoginService, kind repository.CredentialKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		acct, err := loginService.Authenticate(c.Request.Context(), kind, req.Email, req.Password, c.ClientIP())
		switch err {
		case nil:
		case auth.ErrAccountLocked:
			utils.LockedResponse(c, "Account is locked")
			return
		case auth.ErrInvalidCredentials:
			utils.UnauthorizedResponse(c, "Invalid email or password")
			return
		case tenancy.ErrContextMissing:
			utils.BadRequestResponse(c, "Tenant context required")
			return
		case repository.ErrConcurrentUpdate:
			utils.ErrorResponse(c, 409, "Login attempt conflicted with another update, retry")
			return
		default:
			logrus.Errorf("Login failed: %v", err)
			utils.InternalServerErrorResponse(c, "Login failed")
			return
		}

		resp := LoginResponse{
			ID:       acct.ID.String(),
			Email:    acct.Email,
			FullName: acct.FullName(),
		}
		if acct.LastLoginAt != nil {
			resp.LastLoginAt = acct.LastLoginAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		utils.OKResponse(c, "Login successful", resp)
	}
}

// handleUnlock clears an account's failure counter and lock regardless of
// how much of the lockout has elapsed.
func handleUnlock(loginService *auth.LoginService, credentials repository.CredentialRepository, kind repository.CredentialKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, ok := middleware.GetTenant(c)
		if !ok {
			utils.BadRequestResponse(c, "Tenant context required")
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid account id")
			return
		}

		acct, err := credentials.FindByID(c.Request.Context(), kind, id)
		if err == repository.ErrNotFound || (err == nil && acct.TenantID != tenant.ID) {
			utils.NotFoundResponse(c, "Account not found")
			return
		}
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch account")
			return
		}

		if err := loginService.Unlock(c.Request.Context(), kind, acct); err != nil {
			logrus.Errorf("Unlock failed: %v", err)
			utils.InternalServerErrorResponse(c, "Failed to unlock account")
			return
		}

		utils.OKResponse(c, "Account unlocked", nil)
	}
}
