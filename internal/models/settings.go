package models

import (
	"time"

	"github.com/julianstephens/alarmist/internal/constants"
)

// Settings holds client-local preferences kept next to the alarm cache.
type Settings struct {
	NotificationPermission string `json:"notification_permission"` // default, granted, or denied
	Timezone               string `json:"timezone"`                // IANA timezone name or "Local"
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	switch settings.NotificationPermission {
	case constants.PermissionGranted, constants.PermissionDenied:
	default:
		settings.NotificationPermission = constants.PermissionDefault
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}

// UserStats is the per-user summary the backend keeps after each save.
type UserStats struct {
	AlarmCount  int       `json:"alarmCount"`
	TotalAlarms int       `json:"totalAlarms"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// StatsFor summarizes alarms: AlarmCount counts enabled alarms that can
// still ring, TotalAlarms counts every alarm.
func StatsFor(alarms []Alarm, now time.Time) UserStats {
	s := UserStats{TotalAlarms: len(alarms), UpdatedAt: now}
	for _, a := range alarms {
		if a.Enabled && a.Status != StatusCompleted {
			s.AlarmCount++
		}
	}
	return s
}
