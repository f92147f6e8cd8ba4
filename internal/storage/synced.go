package storage

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/models"
)

// Synced writes every save to a local cache first and then to the primary
// provider. When the primary is unreachable the cache keeps the client
// working, and its unsynced flag makes the next successful call push the
// cached alarms back to the primary.
type Synced struct {
	primary Provider
	cache   *JSONStore
}

func NewSynced(primary Provider, cache *JSONStore) *Synced {
	return &Synced{primary: primary, cache: cache}
}

func (s *Synced) Init() error {
	if err := s.cache.Init(); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	return s.primary.Init()
}

// Load opens the cache and tries the primary. A primary that fails to open is
// logged, not fatal: alarms then come from the cache.
func (s *Synced) Load() error {
	if err := s.cache.Load(); err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}
	if err := s.primary.Load(); err != nil {
		logger.Warn("Primary storage unavailable, using local cache", "kind", s.primary.Kind(), "error", err)
	}
	return nil
}

func (s *Synced) Close() error {
	return errors.Join(s.primary.Close(), s.cache.Close())
}

// LoadAlarms prefers the primary. Cached changes the primary has not seen yet
// win and are pushed. If the primary fails the cached alarms are returned
// together with an ErrPersistence warning.
func (s *Synced) LoadAlarms(ctx context.Context, userID string) ([]models.Alarm, error) {
	if s.cache.Unsynced(userID) {
		cached, err := s.cache.LoadAlarms(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.primary.SaveAlarms(ctx, userID, cached); err != nil {
			return cached, fmt.Errorf("%w: cached changes not yet saved to %s: %v", apperrors.ErrPersistence, s.primary.Kind(), err)
		}
		if err := s.cache.MarkSynced(userID); err != nil {
			logger.Warn("Failed to clear cache flag", "error", err)
		}
		logger.Info("Pushed cached alarms to primary storage", "kind", s.primary.Kind(), "count", len(cached))
		return cached, nil
	}

	alarms, err := s.primary.LoadAlarms(ctx, userID)
	if err != nil {
		cached, cerr := s.cache.LoadAlarms(ctx, userID)
		if cerr != nil {
			return nil, errors.Join(err, cerr)
		}
		return cached, fmt.Errorf("%w: loaded from local cache: %v", apperrors.ErrPersistence, err)
	}
	if err := s.cache.SaveAlarms(ctx, userID, alarms); err != nil {
		logger.Warn("Failed to refresh local cache", "error", err)
	}
	return alarms, nil
}

// SaveAlarms always lands in the cache. A primary failure is returned as an
// ErrPersistence warning and retried on the next load or save.
func (s *Synced) SaveAlarms(ctx context.Context, userID string, alarms []models.Alarm) error {
	if err := s.cache.SaveCache(userID, alarms); err != nil {
		logger.Warn("Failed to write local cache", "error", err)
	}
	if err := s.primary.SaveAlarms(ctx, userID, alarms); err != nil {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrPersistence, s.primary.Kind(), err)
	}
	if err := s.cache.MarkSynced(userID); err != nil {
		logger.Warn("Failed to clear cache flag", "error", err)
	}
	return nil
}

// SaveStats is best effort and only goes to the primary.
func (s *Synced) SaveStats(ctx context.Context, userID string, stats models.UserStats) error {
	if err := s.cache.SaveStats(ctx, userID, stats); err != nil {
		logger.Debug("Failed to cache stats", "error", err)
	}
	return s.primary.SaveStats(ctx, userID, stats)
}

func (s *Synced) Kind() string {
	return s.primary.Kind()
}

func (s *Synced) GetConfigPath() string {
	return s.primary.GetConfigPath()
}

// Cache exposes the local store, which also holds client settings.
func (s *Synced) Cache() *JSONStore {
	return s.cache
}
