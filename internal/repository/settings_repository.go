package repository

import (
	"context"

	"farmcloud/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	GetOrCreate(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// GetOrCreate inserts the default row if missing and returns the stored one.
// Concurrent first loads race on the primary key, not on separate rows.
func (r *settingsRepository) GetOrCreate(ctx context.Context) (*models.Settings, error) {
	db := r.db.WithContext(ctx)

	defaults := models.DefaultSettings()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
		return nil, translate(err)
	}

	var settings models.Settings
	if err := db.First(&settings, models.SettingsID).Error; err != nil {
		return nil, translate(err)
	}
	return &settings, nil
}

// Save always writes the singleton row, whatever ID the caller set.
func (r *settingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	settings.ID = models.SettingsID
	return translate(r.db.WithContext(ctx).Save(settings).Error)
}
