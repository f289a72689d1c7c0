package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	LogLevel string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Redis    RedisConfig
	Cron     CronConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds token authority configuration
type JWTConfig struct {
	Secret               string
	Issuer               string
	Audience             string
	AccessTokenMins      int
	RefreshThresholdMins int
}

// CookieConfig holds session cookie configuration
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite string
	Domain   string
}

// RedisConfig holds the revocation cache connection values
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CronConfig holds background job schedules
type CronConfig struct {
	RevocationCleanupSpec string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; production injects plain environment variables
	_ = godotenv.Load()

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", defaultLogLevel(appMode)),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cron: CronConfig{
			RevocationCleanupSpec: getEnv("CRON_REVOCATION_CLEANUP", "@every 1h"),
		},
	}

	if cfg.IsProd() && cfg.JWT.Secret == defaultJWTSecret {
		return nil, fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}

	return cfg, nil
}

const defaultJWTSecret = "dev_secret_change_me_at_least_32_bytes"

func defaultLogLevel(mode string) string {
	if mode == "prod" {
		return "info"
	}
	return "debug"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "cleanorder"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:               getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		Issuer:               getEnv("JWT_ISSUER", "CleanOrderAPI"),
		Audience:             getEnv("JWT_AUDIENCE", "CleanOrderClient"),
		AccessTokenMins:      getEnvAsInt("ACCESS_TOKEN_MINUTES", 60),
		RefreshThresholdMins: getEnvAsInt("REFRESH_THRESHOLD_MINUTES", 10),
	}
}

// loadCookieConfig loads the session cookie config. The browser client runs on a
// different origin, so the cookie has to be cross-site capable by default.
func loadCookieConfig() CookieConfig {
	return CookieConfig{
		Name:     getEnv("COOKIE_NAME", "AuthToken"),
		Secure:   getEnvAsBool("COOKIE_SECURE", true),
		SameSite: getEnv("COOKIE_SAMESITE", "None"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// AccessTokenTTL returns the validity window of an issued token
func (c JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMins) * time.Minute
}

// RefreshThreshold returns the remaining validity under which tokens are reissued
func (c JWTConfig) RefreshThreshold() time.Duration {
	return time.Duration(c.RefreshThresholdMins) * time.Minute
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		return strings.Join([]string{
			"http://localhost:4200",
			"https://localhost:4200",
			"http://localhost:8100",
			"https://localhost:8100",
			"http://localhost:8101",
			"https://localhost:8101",
		}, ",")
	}
	return origins
}
