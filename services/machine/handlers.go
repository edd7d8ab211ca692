package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Erixon159/autemix-app/shared/auth"
	"github.com/Erixon159/autemix-app/shared/middleware"
	"github.com/Erixon159/autemix-app/shared/models"
	"github.com/Erixon159/autemix-app/shared/repository"
	"github.com/Erixon159/autemix-app/shared/utils"
)

// RegisterMachineRequest represents the machine registration request
type RegisterMachineRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Location string `json:"location" binding:"required,max=255"`
}

// TelemetryRequest is the payload machines push after authenticating
type TelemetryRequest struct {
	ItemsSold     int     `json:"items_sold"`
	CashCollected float64 `json:"cash_collected"`
	Status        string  `json:"status" binding:"required,oneof=ok low_stock fault"`
}

// handleRegisterMachine provisions a machine for the ambient tenant. The
// raw API key appears in this response and nowhere else, ever again.
func handleRegisterMachine(machines repository.MachineRepository, signer *auth.APIKeySigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, ok := middleware.GetTenant(c)
		if !ok {
			utils.BadRequestResponse(c, "Tenant context required")
			return
		}

		var req RegisterMachineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		machine, raw, err := createWithFreshKey(c, machines, signer, tenant.ID, req)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to register machine")
			return
		}

		utils.CreatedResponse(c, "Machine registered successfully", gin.H{
			"machine": machine,
			"api_key": raw,
		})
	}
}

// createWithFreshKey persists a machine under a newly generated key. A
// duplicate on the globally unique key columns just means the generated key
// collided; generating again resolves it.
func createWithFreshKey(c *gin.Context, machines repository.MachineRepository, signer *auth.APIKeySigner, tenantID uuid.UUID, req RegisterMachineRequest) (*models.VendingMachine, string, error) {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		var raw, signed, lookup string
		raw, signed, lookup, err = signer.Generate()
		if err != nil {
			return nil, "", err
		}

		machine := &models.VendingMachine{
			TenantID:     tenantID,
			Name:         req.Name,
			Location:     req.Location,
			APIKeyDigest: signed,
			APIKeyLookup: lookup,
		}
		err = machines.Create(c.Request.Context(), machine)
		if err == nil {
			return machine, raw, nil
		}
		if err != repository.ErrDuplicate {
			return nil, "", err
		}
		logrus.Warn("Generated API key collided, regenerating")
	}
	return nil, "", err
}

// handleListMachines returns the ambient tenant's machines
func handleListMachines(machines repository.MachineRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, ok := middleware.GetTenant(c)
		if !ok {
			utils.BadRequestResponse(c, "Tenant context required")
			return
		}

		all, err := machines.ListByTenant(c.Request.Context(), tenant.ID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch machines")
			return
		}

		utils.OKResponse(c, "Machines retrieved successfully", all)
	}
}

// handleGetMachine returns one machine with its masked key. Read-only, so it
// sits outside the machine authentication boundary on purpose.
func handleGetMachine(machines repository.MachineRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, ok := middleware.GetTenant(c)
		if !ok {
			utils.BadRequestResponse(c, "Tenant context required")
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid machine id")
			return
		}

		machine, err := machines.FindByID(c.Request.Context(), tenant.ID, id)
		if err == repository.ErrNotFound {
			utils.NotFoundResponse(c, "Machine not found")
			return
		}
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch machine")
			return
		}

		utils.OKResponse(c, "Machine retrieved successfully", gin.H{
			"machine":        machine,
			"masked_api_key": machine.MaskedAPIKey(),
		})
	}
}

// handleRotateKey lets an authenticated machine rotate its own credential.
// The replaced lookup digest is evicted from the cache so the old key stops
// working immediately.
func handleRotateKey(machines repository.MachineRepository, signer *auth.APIKeySigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		machine, ok := middleware.GetMachine(c)
		if !ok {
			utils.UnauthorizedResponse(c, "Invalid API key")
			return
		}
		if c.Param("id") != machine.ID.String() {
			utils.NotFoundResponse(c, "Machine not found")
			return
		}

		raw, signed, lookup, err := signer.Generate()
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to generate API key")
			return
		}

		oldLookup := machine.APIKeyLookup
		if err := machines.UpdateKey(c.Request.Context(), machine.ID, signed, lookup); err != nil {
			utils.InternalServerErrorResponse(c, "Failed to rotate API key")
			return
		}
		_ = utils.CacheDelete(auth.MachineCacheKey(oldLookup))

		logrus.Infof("Rotated API key for machine %s", machine.ID)
		utils.OKResponse(c, "API key rotated", gin.H{
			"api_key": raw,
		})
	}
}

// handleTelemetry accepts a mutating report from an authenticated machine
func handleTelemetry() gin.HandlerFunc {
	return func(c *gin.Context) {
		machine, ok := middleware.GetMachine(c)
		if !ok {
			utils.UnauthorizedResponse(c, "Invalid API key")
			return
		}
		if c.Param("id") != machine.ID.String() {
			utils.NotFoundResponse(c, "Machine not found")
			return
		}

		var req TelemetryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		tenant, _ := middleware.GetTenant(c)
		logrus.WithFields(logrus.Fields{
			"tenant_id":  tenant.ID,
			"machine_id": machine.ID,
			"status":     req.Status,
		}).Info("Telemetry received")

		utils.OKResponse(c, "Telemetry recorded", gin.H{
			"machine_id":  machine.ID,
			"tenant_id":   tenant.ID,
			"received_at": time.Now().UTC(),
		})
	}
}
