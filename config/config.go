package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort     string
	ServerHost     string
	FrontendURL    string
	AllowedOrigins []string
	CookieSecure   bool

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Email configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	EmailFrom     string
	EmailFromName string

	// Storage configuration
	S3BucketName string
	AWSRegion    string
	S3Endpoint   string

	// Background work
	AuditQueueSize     int
	ResetSweepSchedule string
}

// Defaults applied when a key is set neither in the environment nor as a secret
const (
	DefaultTokenTTL           = 24 * time.Hour
	DefaultAuditQueueSize     = 256
	DefaultResetSweepSchedule = "@every 15m"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	switch env {
	case CI:
		loadValues(cfg, os.Getenv)
	case Development, Test:
		loadValues(cfg, envThenSecret)
		applyDevDefaults(cfg)
	case Production:
		loadValues(cfg, secretThenEnv)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadValues fills cfg using lookup for every key
func loadValues(cfg *Config, lookup func(string) string) {
	cfg.ServerPort = lookup("SERVER_PORT")
	cfg.ServerHost = lookup("SERVER_HOST")
	cfg.FrontendURL = lookup("FRONTEND_URL")
	cfg.AllowedOrigins = splitList(lookup("ALLOWED_ORIGINS"))
	cfg.CookieSecure = parseBool(lookup("COOKIE_SECURE"), cfg.Environment == Production)

	cfg.DBDriver = lookup("DB_DRIVER")
	if cfg.DBDriver == "" {
		cfg.DBDriver = "postgres"
	}
	cfg.DBHost = lookup("DB_HOST")
	cfg.DBPort = lookup("DB_PORT")
	cfg.DBUser = lookup("DB_USER")
	cfg.DBPassword = lookup("DB_PASSWORD")
	cfg.DBName = lookup("DB_NAME")
	cfg.DBSSLMode = lookup("DB_SSL_MODE")
	cfg.SQLitePath = lookup("SQLITE_PATH")

	cfg.RedisURL = lookup("REDIS_URL")
	cfg.RedisHost = lookup("REDIS_HOST")
	cfg.RedisPort = lookup("REDIS_PORT")
	cfg.RedisPassword = lookup("REDIS_PASSWORD")
	cfg.RedisDB = 0 // This is a constant, not a secret

	cfg.JWTSecret = lookup("JWT_SECRET")
	cfg.TokenTTL = DefaultTokenTTL

	cfg.SMTPHost = lookup("SMTP_HOST")
	cfg.SMTPPort = lookup("SMTP_PORT")
	cfg.SMTPUsername = lookup("SMTP_USERNAME")
	cfg.SMTPPassword = lookup("SMTP_PASSWORD")
	cfg.EmailFrom = lookup("EMAIL_FROM")
	cfg.EmailFromName = lookup("EMAIL_FROM_NAME")

	cfg.S3BucketName = lookup("S3_BUCKET_NAME")
	cfg.AWSRegion = lookup("AWS_REGION")
	cfg.S3Endpoint = lookup("S3_ENDPOINT")

	cfg.AuditQueueSize = DefaultAuditQueueSize
	if n, err := strconv.Atoi(lookup("AUDIT_QUEUE_SIZE")); err == nil {
		cfg.AuditQueueSize = n
	}
	cfg.ResetSweepSchedule = lookup("RESET_SWEEP_SCHEDULE")
	if cfg.ResetSweepSchedule == "" {
		cfg.ResetSweepSchedule = DefaultResetSweepSchedule
	}
}

// applyDevDefaults fills in local defaults so the API starts without any setup
func applyDevDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.ServerHost == "" {
		cfg.ServerHost = "localhost"
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:3000"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{cfg.FrontendURL}
	}
	if cfg.DBDriver == "sqlite" && cfg.SQLitePath == "" {
		cfg.SQLitePath = "pantry.db"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// EmailEnabled reports whether enough SMTP settings are present to send mail
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.EmailFrom != ""
}

func envThenSecret(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return readSecret(strings.ToLower(key))
}

func secretThenEnv(key string) string {
	if v := readSecret(strings.ToLower(key)); v != "" {
		return v
	}
	return os.Getenv(key)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
