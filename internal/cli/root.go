// Package cli holds the state shared by alarmist's commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/alarmist/internal/backup"
	"github.com/julianstephens/alarmist/internal/config"
	"github.com/julianstephens/alarmist/internal/constants"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/storage"
	"github.com/julianstephens/alarmist/internal/utils"
)

type Context struct {
	Config   *config.Config
	DataDir  string
	Debug    bool
	Location *time.Location
	// Cache is the local alarm cache that also holds client settings.
	Cache *storage.JSONStore
	// Store is the configured primary wrapped with the local cache.
	Store storage.Provider
}

// NewContext resolves the timezone and builds (without opening) the
// configured storage.
func NewContext(cfg *config.Config, dataDir string, debug bool) (*Context, error) {
	cfg.ApplyDataDir(dataDir)

	cache := storage.NewJSONStore(cfg.Storage.CachePath)
	primary, err := OpenPrimary(cfg)
	if err != nil {
		return nil, err
	}

	c := &Context{
		Config:  cfg,
		DataDir: dataDir,
		Debug:   debug,
		Cache:   cache,
		Store:   storage.NewSynced(primary, cache),
	}
	if c.Location, err = c.resolveLocation(); err != nil {
		return nil, err
	}
	return c, nil
}

// resolveLocation prefers the config timezone and falls back to the one
// saved in settings.
func (c *Context) resolveLocation() (*time.Location, error) {
	tz := c.Config.Timezone
	if tz == "" || tz == "Local" {
		if s, err := c.Cache.GetSettings(); err == nil && s.Timezone != "" {
			tz = s.Timezone
		}
	}
	return utils.LoadLocation(tz)
}

// Permission reports the stored OS notification permission.
func (c *Context) Permission() string {
	s, err := c.Cache.GetSettings()
	if err != nil {
		logger.Debug("Failed to read settings", "error", err)
		return constants.PermissionDefault
	}
	return s.NotificationPermission
}

// UpdateSettings applies fn to the stored settings and saves them.
func (c *Context) UpdateSettings(fn func(*models.Settings)) error {
	s, err := c.Cache.GetSettings()
	if err != nil {
		return err
	}
	fn(&s)
	return c.Cache.SaveSettings(s)
}

// Now returns the current time in the configured location.
func (c *Context) Now() time.Time {
	return time.Now().In(c.Location)
}

// Close releases the storage.
func (c *Context) Close() error {
	return c.Store.Close()
}

// Report prints a command result, treating persistence failures as
// warnings: the change is kept locally and retried on the next sync.
func Report(err error, success string) error {
	if err == nil {
		fmt.Println(success)
		return nil
	}
	if errors.Is(err, apperrors.ErrPersistence) {
		fmt.Println(success)
		fmt.Fprintf(os.Stderr, "Warning: saved locally only: %v\n", err)
		return nil
	}
	return err
}

// ParseWeekdays parses a comma-separated list of weekday names or numbers
// (0=Sunday).
func ParseWeekdays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	dayMap := map[string]time.Weekday{
		"sun": time.Sunday, "sunday": time.Sunday,
		"mon": time.Monday, "monday": time.Monday,
		"tue": time.Tuesday, "tuesday": time.Tuesday,
		"wed": time.Wednesday, "wednesday": time.Wednesday,
		"thu": time.Thursday, "thursday": time.Thursday,
		"fri": time.Friday, "friday": time.Friday,
		"sat": time.Saturday, "saturday": time.Saturday,
	}

	var weekdays []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		weekdays = append(weekdays, time.Weekday(num))
	}
	return weekdays, nil
}

// WithTimeout is the default deadline for one-shot commands.
func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 30*time.Second)
}

// PerformAutomaticBackup snapshots the SQLite database. Failures are logged
// and never interrupt the command.
func (c *Context) PerformAutomaticBackup() {
	if c.Config.Storage.Driver != constants.DriverSQLite {
		return
	}
	if _, err := backup.NewManager(c.Config.Storage.DSN).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
