package config

import "os"

// Environment names. APP_ENV selects how the tenant resolver interprets
// request hosts (see shared/middleware/tenant_resolver.go).
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// TenantHeader is the explicit tenant-identifier header used as a fallback
// when no subdomain can be extracted from the request host.
const TenantHeader = "X-Tenant-Subdomain"

// APIKeyHeader carries a machine credential when no bearer token is present.
const APIKeyHeader = "X-API-Key"

// Config holds application-level configuration shared by all services
type Config struct {
	Env           string
	BaseDomain    string
	SecretKeyBase string
	KafkaBroker   string
}

// Load reads application configuration from environment variables
func Load() *Config {
	return &Config{
		Env:           getEnv("APP_ENV", EnvDevelopment),
		BaseDomain:    getEnv("BASE_DOMAIN", "autemix.com"),
		SecretKeyBase: getEnv("SECRET_KEY_BASE", "development-secret-key-base"),
		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
	}
}

// IsDevelopment reports whether the app runs in a development-style
// environment (single-label domains like company1.localhost are allowed).
func (c *Config) IsDevelopment() bool {
	return c.Env != EnvProduction
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
