// Package migrations brings a database to the state the server expects on boot.
package migrations

import (
	"context"
	"errors"
	"fmt"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/config"
	"farmcloud/internal/database"
	"farmcloud/internal/models"
	"farmcloud/internal/repository"
	"farmcloud/internal/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations migrates the schema and creates the default data. It never drops tables
// and is safe to run on every start.
func RunMigrations(ctx context.Context, db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("running database migrations")
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	repos := repository.New(db)
	if err := createDefaultData(ctx, repos, cfg, log); err != nil {
		return err
	}
	log.Info("database migrations completed")
	return nil
}

// createDefaultData ensures the settings row and the bootstrap admin exist.
func createDefaultData(ctx context.Context, repos *repository.Repositories, cfg *config.Config, log *zap.Logger) error {
	if _, err := repos.Settings.GetOrCreate(ctx); err != nil {
		return fmt.Errorf("failed to create default settings: %w", err)
	}
	if cfg == nil || cfg.AdminPassword == "" {
		log.Info("ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	users := services.NewUserService(repos.Users)
	existing, err := users.GetUserByUsername(ctx, cfg.AdminUsername)
	switch {
	case err == nil && existing != nil:
		log.Debug("admin user already exists", zap.String("username", cfg.AdminUsername))
		return nil
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	admin := &models.User{
		Username:    cfg.AdminUsername,
		Email:       cfg.AdminEmail,
		Role:        models.RoleAdmin,
		IsSuperuser: true,
	}
	if err := users.CreateUser(ctx, admin, cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Info("admin user created", zap.String("username", admin.Username))
	return nil
}
