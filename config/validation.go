package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequiredFields []string
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {
			RequiredFields: []string{"JWT_SECRET"},
		},
		Test: {
			RequiredFields: []string{"JWT_SECRET"},
		},
		CI: {
			RequiredFields: []string{"SERVER_PORT", "SERVER_HOST", "JWT_SECRET"},
		},
		Production: {
			RequiredFields: []string{"SERVER_PORT", "SERVER_HOST", "JWT_SECRET", "FRONTEND_URL"},
		},
	}

	minSecretLength = 32
)

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs []error

	for _, field := range requirements[cfg.Environment].RequiredFields {
		if fieldValue(cfg, field) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"})
		}
	}

	if cfg.Environment == Production && len(cfg.JWTSecret) < minSecretLength {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: fmt.Sprintf("must be at least %d characters", minSecretLength)})
	}

	switch cfg.DBDriver {
	case "postgres":
		for _, field := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_NAME"} {
			if fieldValue(cfg, field) == "" {
				errs = append(errs, ValidationError{Field: field, Message: "is required for the postgres driver"})
			}
		}
	case "sqlite":
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not allowed in production"})
		}
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{Field: "SQLITE_PATH", Message: "is required for the sqlite driver"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.AuditQueueSize <= 0 {
		errs = append(errs, ValidationError{Field: "AUDIT_QUEUE_SIZE", Message: "must be positive"})
	}
	if _, err := cron.ParseStandard(cfg.ResetSweepSchedule); err != nil {
		errs = append(errs, ValidationError{Field: "RESET_SWEEP_SCHEDULE", Message: err.Error()})
	}

	return errors.Join(errs...)
}

func fieldValue(cfg *Config, field string) string {
	switch field {
	case "SERVER_PORT":
		return cfg.ServerPort
	case "SERVER_HOST":
		return cfg.ServerHost
	case "JWT_SECRET":
		return cfg.JWTSecret
	case "FRONTEND_URL":
		return cfg.FrontendURL
	case "DB_HOST":
		return cfg.DBHost
	case "DB_PORT":
		return cfg.DBPort
	case "DB_USER":
		return cfg.DBUser
	case "DB_NAME":
		return cfg.DBName
	}
	return ""
}
