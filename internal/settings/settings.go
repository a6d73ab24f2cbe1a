// Package settings holds the process-wide user preferences. They are read
// from the store on first use and changed only through Service.Set.
package settings

import (
	"context"
	"fmt"
	"sync"

	"wardrobe/internal/database"
	"wardrobe/internal/logger"
	"wardrobe/internal/models"

	"github.com/jmoiron/sqlx"
)

type Service struct {
	db *sqlx.DB

	mu      sync.Mutex
	loaded  bool
	current models.Settings
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Get returns the current settings, loading them on the first call. A failed
// load is not cached.
func (s *Service) Get(ctx context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return models.Settings{}, err
	}
	return s.current, nil
}

// Set validates and persists one setting, then updates the cached copy.
func (s *Service) Set(ctx context.Context, key, value string) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return models.Settings{}, err
	}

	next, err := s.current.WithSetting(key, value)
	if err != nil {
		return models.Settings{}, err
	}

	encoded := models.EncodeSettings(next)[key]
	if err := database.SetSetting(ctx, s.db, key, encoded); err != nil {
		return models.Settings{}, err
	}

	s.current = next
	logger.Info("Setting updated", "key", key, "value", encoded)
	return next, nil
}

func (s *Service) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	raw, err := database.GetAllSettings(ctx, s.db)
	if err != nil {
		return err
	}

	decoded, err := models.DecodeSettings(raw)
	if err != nil {
		return fmt.Errorf("failed to decode stored settings: %w", err)
	}

	s.current = decoded
	s.loaded = true
	return nil
}
