package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/config"
	"github.com/pageza/pantry/backend/internal/database"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/service"
)

func main() {
	name := flag.String("name", "Admin User", "Display name of the admin account")
	email := flag.String("email", os.Getenv("SEED_ADMIN_EMAIL"), "Email of the admin account")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if *email == "" || len(password) < service.MinPasswordLength || len(password) > service.MaxPasswordLength {
		log.Fatal("SEED_ADMIN_EMAIL (or -email) and a SEED_ADMIN_PASSWORD of 6 to 72 bytes are required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	ctx := context.Background()
	if err := database.RunMigrations(ctx, db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// an existing account is promoted rather than recreated
	var existing models.User
	err = db.WithContext(ctx).Where("email = ?", *email).First(&existing).Error
	switch {
	case err == nil:
		if err := db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
			"role":   models.RoleAdmin,
			"status": models.StatusVerified,
		}).Error; err != nil {
			log.Fatal("failed to promote user", zap.Error(err))
		}
		log.Info("promoted existing user to admin", zap.String("email", *email))
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Fatal("failed to look up user", zap.Error(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}
	admin := &models.User{
		Name:         *name,
		Email:        *email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Status:       models.StatusVerified,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		log.Fatal("failed to create admin", zap.Error(err))
	}
	log.Info("created admin user", zap.String("email", *email), zap.String("id", admin.ID.String()))
}
