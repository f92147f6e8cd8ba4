package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/alarmist/internal/constants"
)

// LoadLocation resolves an IANA timezone name. Empty and "Local" both mean the
// system zone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// ClockOf returns the HH:MM, weekday and YYYY-MM-DD of now in loc.
func ClockOf(now time.Time, loc *time.Location) (hhmm string, weekday time.Weekday, date string) {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(constants.TimeFormat), now.Weekday(), now.Format(constants.DateFormat)
}

// Today returns the local calendar date of now in loc.
func Today(now time.Time, loc *time.Location) string {
	_, _, date := ClockOf(now, loc)
	return date
}

// ValidateTimeFormat checks if the string is a 24h HH:MM time.
func ValidateTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}

// AtClock returns the instant on day's calendar date at the HH:MM clock time,
// in loc.
func AtClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.TimeFormat, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	day = day.In(loc)
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// FormatClock renders an HH:MM alarm time for display, e.g. "7:05 AM".
func FormatClock(clock string) string {
	t, err := time.Parse(constants.TimeFormat, clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}
