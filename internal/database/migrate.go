package database

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/migrations"
)

// Models lists every table owned by the application, in dependency order
var Models = []any{
	&models.User{},
	&models.Shop{},
	&models.Recipe{},
	&models.Rating{},
	&models.Favorite{},
	&models.Comment{},
	&models.ActivityLog{},
}

// gooseUp is swapped out in tests
var gooseUp = func(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return goose.UpContext(ctx, sqlDB, ".")
}

// RunMigrations brings the schema up to date.
// SQLite databases (local development and tests) use gorm auto-migration,
// PostgreSQL uses the embedded goose migrations.
func RunMigrations(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info("using gorm auto-migration for sqlite")
		return db.WithContext(ctx).AutoMigrate(Models...)
	}

	if err := SetupGoose(); err != nil {
		return err
	}
	if err := gooseUp(ctx, db); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info("migrations applied")
	return nil
}

// SetupGoose points goose at the embedded migration files
func SetupGoose() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}
