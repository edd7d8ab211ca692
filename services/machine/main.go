package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Erixon159/autemix-app/shared/auth"
	appconfig "github.com/Erixon159/autemix-app/shared/config"
	"github.com/Erixon159/autemix-app/shared/middleware"
	"github.com/Erixon159/autemix-app/shared/repository"
	"github.com/Erixon159/autemix-app/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()

	// Redis backs the machine credential cache; run without it if down
	if err := utils.InitRedis(); err != nil {
		logrus.Warnf("Failed to connect to Redis, caching disabled: %v", err)
	}
	defer utils.CloseRedis()

	// Initialize database
	db, err := appconfig.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	tenants := repository.NewGormTenantRepo(db)
	machines := repository.NewGormMachineRepo(db)
	signer := auth.NewAPIKeySigner(cfg.SecretKeyBase)
	authenticator := auth.NewMachineAuthenticator(machines, tenants, signer)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Machine service is healthy", nil)
	})

	// Machine authentication runs first: mutating requests under
	// /api/v1/machines/ are bound to a tenant through the presented key and
	// skip subdomain resolution entirely. Everything else resolves the
	// tenant from the host or fallback header.
	api := router.Group("/api/v1/machines")
	api.Use(middleware.APIKeyAuth(authenticator))
	api.Use(middleware.TenantResolver(tenants, cfg))
	{
		api.POST("", handleRegisterMachine(machines, signer))
		api.GET("", handleListMachines(machines))
		api.GET("/:id", handleGetMachine(machines))
		api.POST("/:id/rotate-key", handleRotateKey(machines, signer))
		api.POST("/:id/telemetry", handleTelemetry())
	}

	// Start server
	port := os.Getenv("MACHINE_SERVICE_PORT")
	if port == "" {
		port = "8003"
	}

	logrus.Infof("Machine service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start machine service:", err)
	}
}
