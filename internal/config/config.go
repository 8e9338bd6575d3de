package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string `yaml:"port"`
	Env  string `yaml:"env"`

	// Database
	DBDriver       string `yaml:"db_driver"` // "sqlite" or "postgres"
	DBPath         string `yaml:"db_path"`   // SQLite file path
	DBDSN          string `yaml:"db_dsn"`    // Postgres DSN
	MigrationsPath string `yaml:"migrations_path"`

	// CORS
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// Rate Limiting
	RateLimitRequests int `yaml:"rate_limit_requests"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Logo uploads
	ImgBBAPIKey string `yaml:"imgbb_api_key"`

	// Database query timeout
	DBQueryTimeoutSeconds int `yaml:"db_query_timeout_seconds"`
}

// Load reads configuration from an optional .env file, an optional YAML file
// named by CONFIG_FILE, and environment variables. Environment variables win.
func Load() *Config {
	// Not having a .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  "8080",
		Env:                   "development",
		DBDriver:              "sqlite",
		DBPath:                "./data/sprintcap.db",
		MigrationsPath:        "./migrations",
		CORSAllowedOrigins:    []string{"http://localhost:5173", "http://localhost:3000"},
		RateLimitRequests:     100,
		LogLevel:              "info",
		DBQueryTimeoutSeconds: 5,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			// A malformed file is ignored rather than booting with half-applied values
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", cfg.MigrationsPath)
	cfg.CORSAllowedOrigins = getEnvAsSlice("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)
	cfg.RateLimitRequests = getEnvAsInt("RATE_LIMIT_REQUESTS", cfg.RateLimitRequests)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.ImgBBAPIKey = getEnv("IMGBB_API_KEY", cfg.ImgBBAPIKey)
	cfg.DBQueryTimeoutSeconds = getEnvAsInt("DB_QUERY_TIMEOUT_SECONDS", cfg.DBQueryTimeoutSeconds)

	return cfg
}

// DBQueryTimeout returns the per-query timeout duration
func (c *Config) DBQueryTimeout() time.Duration {
	return time.Duration(c.DBQueryTimeoutSeconds) * time.Second
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated values
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}
	return result
}
