package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session modes supported by AUTH_SESSION_MODE
const (
	SessionModeRedis = "redis"
	SessionModeJWT   = "jwt"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Security  SecurityConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string // development, staging, production
	LogLevel        string // debug, info, warn, error
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	AutoMigrate        bool
}

// AuthConfig controls how session credentials are issued and resolved
type AuthConfig struct {
	SessionMode  string // "redis" (opaque token) or "jwt" (signed token)
	SessionTTL   time.Duration
	JWTSecret    string
	CookieName   string
	CookieSecure bool
	CookieDomain string
}

// RedisConfig holds the session / rate-limit store address
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RateLimitConfig holds rate limiting configuration for public auth endpoints
type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

// Window returns the rate limit window as a duration
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// Enabled reports whether requests should be limited at all
func (r RateLimitConfig) Enabled() bool {
	return r.Requests > 0 && r.WindowSeconds > 0
}

// CORSConfig holds CORS-related configuration.
// An origin is allowed if it is listed in AllowedOrigins, or if it starts with
// one of the PreviewPrefixes and ends with one of the PreviewSuffixes.
type CORSConfig struct {
	AllowedOrigins  []string
	PreviewPrefixes []string
	PreviewSuffixes []string
	AllowedMethods  []string
	AllowedHeaders  []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost       int
	EnableRequestLog bool
	EnableAuditLog   bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			AutoMigrate:        getEnvAsBool("DATABASE_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			SessionMode:  strings.ToLower(getEnv("AUTH_SESSION_MODE", SessionModeRedis)),
			SessionTTL:   time.Duration(getEnvAsInt("AUTH_SESSION_TTL_SECONDS", 7*24*3600)) * time.Second,
			JWTSecret:    getEnv("JWT_SECRET", ""),
			CookieName:   getEnv("AUTH_COOKIE_NAME", "skillbridge.session_token"),
			CookieSecure: getEnvAsBool("AUTH_COOKIE_SECURE", false),
			CookieDomain: getEnv("AUTH_COOKIE_DOMAIN", ""),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "skillbridge"),
		},
		RateLimit: RateLimitConfig{
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 20),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		CORS: CORSConfig{
			AllowedOrigins:  originList(),
			PreviewPrefixes: getEnvAsSlice("CORS_PREVIEW_PREFIXES", nil),
			PreviewSuffixes: getEnvAsSlice("CORS_PREVIEW_SUFFIXES", nil),
			AllowedMethods:  getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:  getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "Cookie"}),
		},
		Security: SecurityConfig{
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 12),
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
			EnableAuditLog:   getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.Auth.SessionMode {
	case SessionModeRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when AUTH_SESSION_MODE=redis")
		}
	case SessionModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_SESSION_MODE=jwt")
		}
	default:
		return fmt.Errorf("invalid AUTH_SESSION_MODE: %s (must be 'redis' or 'jwt')", c.Auth.SessionMode)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("AUTH_SESSION_TTL_SECONDS must be positive")
	}

	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// originList merges the explicit allow-list with the single-origin variables
// the frontend deployments set.
func originList() []string {
	origins := getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil)
	for _, key := range []string{"APP_URL", "FRONTEND_URL"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			origins = append(origins, strings.TrimRight(v, "/"))
		}
	}
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

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
