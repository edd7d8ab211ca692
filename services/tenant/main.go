package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	appconfig "github.com/Erixon159/autemix-app/shared/config"
	"github.com/Erixon159/autemix-app/shared/events"
	"github.com/Erixon159/autemix-app/shared/repository"
	"github.com/Erixon159/autemix-app/shared/tenancy"
	"github.com/Erixon159/autemix-app/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()

	// Initialize database
	db, err := appconfig.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	tenants := repository.NewGormTenantRepo(db)

	// Lifecycle events are optional; without a broker they are dropped
	publisher := events.NewPublisher(cfg.KafkaBroker)
	if publisher != nil {
		defer publisher.Close()
	}

	service := tenancy.NewService(tenants, publisher)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Tenant service is healthy", nil)
	})

	// Provisioning routes: platform scope, no tenant resolution here
	group := router.Group("/tenants")
	{
		group.POST("", handleCreateTenant(service))
		group.GET("", handleListTenants(tenants))
		group.GET("/:subdomain", handleGetTenant(tenants))
		group.GET("/:subdomain/availability", handleCheckAvailability(service))
		group.POST("/:subdomain/activate", handleActivateTenant(service))
		group.POST("/:subdomain/deactivate", handleDeactivateTenant(service))
	}

	// Start server
	port := os.Getenv("TENANT_SERVICE_PORT")
	if port == "" {
		port = "8002"
	}

	logrus.Infof("Tenant service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start tenant service:", err)
	}
}
