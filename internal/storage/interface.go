// Package storage persists alarms per user. Providers are the database,
// flat-file and remote backends; Synced layers a local cache over one.
package storage

import (
	"context"

	"github.com/julianstephens/alarmist/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Alarms are saved and loaded as a whole list, in display order.
	LoadAlarms(ctx context.Context, userID string) ([]models.Alarm, error)
	SaveAlarms(ctx context.Context, userID string, alarms []models.Alarm) error

	// Stats
	SaveStats(ctx context.Context, userID string, stats models.UserStats) error

	// Utils
	Kind() string
	GetConfigPath() string
}
