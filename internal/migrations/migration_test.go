package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"farmcloud/internal/config"
	"farmcloud/internal/database"
	"farmcloud/internal/models"
	"farmcloud/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.Initialize("sqlite://"+filepath.Join(t.TempDir(), "migrate.db"), database.Options{})
	require.NoError(t, err)

	cfg := &config.Config{AdminUsername: "admin", AdminPassword: "change-me", AdminEmail: "admin@farmcloud.ae"}
	require.NoError(t, RunMigrations(ctx, db, cfg, nil))
	require.NoError(t, RunMigrations(ctx, db, cfg, nil))

	repos := repository.New(db)
	admin, err := repos.Users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsSuperuser)
	assert.Equal(t, "A", admin.Avatar)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("change-me")))

	var users, settings int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Settings{}).Count(&settings).Error)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), settings)
}

func TestRunMigrationsWithoutAdminPassword(t *testing.T) {
	ctx := context.Background()
	db, err := database.Initialize("sqlite://"+filepath.Join(t.TempDir(), "migrate.db"), database.Options{})
	require.NoError(t, err)

	require.NoError(t, RunMigrations(ctx, db, &config.Config{AdminUsername: "admin"}, nil))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
