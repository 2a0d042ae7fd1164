package services

import (
	"context"
	"errors"
	"time"

	"farmcloud/internal/models"
	cache "farmcloud/internal/redis"
	"farmcloud/internal/repository"

	"go.uber.org/zap"
)

// SettingsCache is an optional read-through cache for the settings row.
type SettingsCache interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	SetSettings(ctx context.Context, settings *models.Settings, ttl time.Duration) error
	InvalidateSettings(ctx context.Context) error
}

type SettingsService interface {
	// Load returns the settings, creating the default row on first use.
	Load(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) (*models.Settings, error)
	// Delete never removes the settings row.
	Delete(ctx context.Context) error
}

type settingsService struct {
	repo  repository.SettingsRepository
	store SettingsCache
	ttl   time.Duration
	log   *zap.Logger
}

// NewSettingsService builds the service; store may be nil.
func NewSettingsService(repo repository.SettingsRepository, store SettingsCache, ttl time.Duration, log *zap.Logger) SettingsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &settingsService{repo: repo, store: store, ttl: ttl, log: log}
}

func (s *settingsService) Load(ctx context.Context) (*models.Settings, error) {
	if s.store != nil {
		cached, err := s.store.GetSettings(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("settings cache read failed", zap.Error(err))
		}
	}

	settings, err := s.repo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.SetSettings(ctx, settings, s.ttl); err != nil {
			s.log.Warn("settings cache write failed", zap.Error(err))
		}
	}
	return settings, nil
}

func (s *settingsService) Save(ctx context.Context, settings *models.Settings) (*models.Settings, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	// Make sure the row exists so Save updates instead of inserting a partial row.
	if _, err := s.repo.GetOrCreate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.GetOrCreate(ctx)
}

func (s *settingsService) Delete(ctx context.Context) error {
	return nil
}

func (s *settingsService) invalidate(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.InvalidateSettings(ctx); err != nil {
		s.log.Warn("settings cache invalidation failed", zap.Error(err))
	}
}
