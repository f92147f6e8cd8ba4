package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/alarmist/internal/constants"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusTriggered Status = "triggered"
	StatusSnoozed   Status = "snoozed"
	StatusCompleted Status = "completed"
)

type RepeatType string

const (
	RepeatOnce   RepeatType = "once"
	RepeatDaily  RepeatType = "daily"
	RepeatWeekly RepeatType = "weekly"
)

type Alarm struct {
	ID                string         `json:"id"`
	Time              string         `json:"time"` // HH:MM format
	Label             string         `json:"label"`
	Enabled           bool           `json:"enabled"`
	Status            Status         `json:"status"`
	RepeatType        RepeatType     `json:"repeatType"`
	RepeatDays        []time.Weekday `json:"repeatDays"`
	LastTriggeredDate string         `json:"lastTriggeredDate,omitempty"` // YYYY-MM-DD format
	SnoozeCount       int            `json:"snoozeCount"`
	CustomSoundRef    string         `json:"customSoundRef,omitempty"`
	CustomSoundName   string         `json:"customSoundName,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	TriggeredAt       *time.Time     `json:"triggeredAt,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
	LastSnoozeAt      *time.Time     `json:"lastSnoozeAt,omitempty"`
	OriginalAlarmID   string         `json:"originalAlarmId,omitempty"`
}

// Validate checks the user-editable fields of an alarm.
func (a *Alarm) Validate() error {
	if strings.TrimSpace(a.Time) == "" {
		return apperrors.Validation("time", "please select a time for the alarm")
	}
	if _, err := time.Parse(constants.TimeFormat, a.Time); err != nil {
		return apperrors.Validation("time", "invalid time format (expected HH:MM)")
	}

	switch a.RepeatType {
	case RepeatOnce, RepeatDaily:
	case RepeatWeekly:
		if len(a.RepeatDays) == 0 {
			return apperrors.Validation("repeatDays", "please select at least one day for weekly repeat")
		}
		for _, wd := range a.RepeatDays {
			if wd < time.Sunday || wd > time.Saturday {
				return apperrors.Validation("repeatDays", "invalid weekday %d", int(wd))
			}
		}
	default:
		return apperrors.Validation("repeatType", "invalid repeat type %q (must be once, daily, or weekly)", a.RepeatType)
	}

	return nil
}

// Normalize clears weekdays on non-weekly alarms and sorts/deduplicates them
// on weekly ones.
func (a *Alarm) Normalize() {
	if a.RepeatType != RepeatWeekly {
		a.RepeatDays = []time.Weekday{}
		return
	}
	seen := make(map[time.Weekday]bool, len(a.RepeatDays))
	days := make([]time.Weekday, 0, len(a.RepeatDays))
	for _, wd := range a.RepeatDays {
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	a.RepeatDays = days
}

// IsRinging reports whether the alarm is currently being presented.
func (a *Alarm) IsRinging() bool {
	return a.Status == StatusTriggered || a.Status == StatusSnoozed
}

// HasDay reports whether wd is one of the alarm's weekly repeat days.
func (a *Alarm) HasDay(wd time.Weekday) bool {
	for _, d := range a.RepeatDays {
		if d == wd {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate it without aliasing.
func (a Alarm) Clone() Alarm {
	c := a
	c.RepeatDays = append([]time.Weekday(nil), a.RepeatDays...)
	c.TriggeredAt = cloneTime(a.TriggeredAt)
	c.CompletedAt = cloneTime(a.CompletedAt)
	c.LastSnoozeAt = cloneTime(a.LastSnoozeAt)
	return c
}

// NewSnoozed builds the one-time alarm spawned by snoozing parent; it rings at
// at, formatted in at's location.
func NewSnoozed(id string, parent Alarm, at, now time.Time) Alarm {
	return Alarm{
		ID:              id,
		Time:            at.Format(constants.TimeFormat),
		Label:           parent.Label + constants.SnoozeLabelSuffix,
		Enabled:         true,
		Status:          StatusPending,
		RepeatType:      RepeatOnce,
		RepeatDays:      []time.Weekday{},
		SnoozeCount:     0,
		CustomSoundRef:  parent.CustomSoundRef,
		CustomSoundName: parent.CustomSoundName,
		CreatedAt:       now,
		OriginalAlarmID: parent.ID,
	}
}

// FormatRepeat returns a human-readable string describing the alarm's repeat rule
func (a *Alarm) FormatRepeat() string {
	switch a.RepeatType {
	case RepeatDaily:
		return "Daily"
	case RepeatWeekly:
		days := make([]string, len(a.RepeatDays))
		for i, wd := range a.RepeatDays {
			days[i] = wd.String()[:3]
		}
		return fmt.Sprintf("Weekly: %s", strings.Join(days, ", "))
	default:
		return "Once"
	}
}

// FormatStatus renders the status the way the alarm list shows it.
func (a *Alarm) FormatStatus() string {
	switch a.Status {
	case StatusPending:
		return "Pending"
	case StatusTriggered:
		return "Triggered"
	case StatusSnoozed:
		return fmt.Sprintf("Snoozed (%dx)", a.SnoozeCount)
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
