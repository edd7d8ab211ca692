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

	// Initialize database
	db, err := appconfig.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	tenants := repository.NewGormTenantRepo(db)
	credentials := repository.NewGormCredentialRepo(db)
	loginService := auth.NewLoginService(credentials)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint, reachable without a tenant
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Auth service is healthy", nil)
	})

	// Every auth route runs inside a tenant scope resolved from the host
	// subdomain or the fallback header.
	api := router.Group("/api/v1/auth")
	api.Use(middleware.TenantResolver(tenants, cfg))
	{
		api.POST("/admins/login", handleLogin(loginService, repository.KindAdmin))
		api.POST("/admins/:id/unlock", handleUnlock(loginService, credentials, repository.KindAdmin))
		api.POST("/technicians/login", handleLogin(loginService, repository.KindTechnician))
		api.POST("/technicians/:id/unlock", handleUnlock(loginService, credentials, repository.KindTechnician))
	}

	// Start server
	port := os.Getenv("AUTH_SERVICE_PORT")
	if port == "" {
		port = "8001"
	}

	logrus.Infof("Auth service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start auth service:", err)
	}
}
