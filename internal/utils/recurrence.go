package utils

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/julianstephens/alarmist/internal/models"
)

var rruleDay = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// ShouldRingOn reports whether the alarm's repeat rule allows it to ring on
// the given weekday. Once and daily alarms ring on any day.
func ShouldRingOn(alarm models.Alarm, wd time.Weekday) bool {
	switch alarm.RepeatType {
	case models.RepeatOnce, models.RepeatDaily:
		return true
	case models.RepeatWeekly:
		return alarm.HasDay(wd)
	default:
		return false
	}
}

// NextOccurrence returns the next instant at or after now (minute granularity)
// at which the alarm would ring. Disabled and completed alarms never ring.
func NextOccurrence(alarm models.Alarm, now time.Time, loc *time.Location) (time.Time, bool) {
	if !alarm.Enabled || alarm.Status == models.StatusCompleted {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	start, err := AtClock(now, alarm.Time, loc)
	if err != nil {
		return time.Time{}, false
	}

	opt := rrule.ROption{Freq: rrule.DAILY, Dtstart: start}
	if alarm.RepeatType == models.RepeatWeekly {
		if len(alarm.RepeatDays) == 0 {
			return time.Time{}, false
		}
		opt.Freq = rrule.WEEKLY
		for _, wd := range alarm.RepeatDays {
			if d, ok := rruleDay[wd]; ok {
				opt.Byweekday = append(opt.Byweekday, d)
			}
		}
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, false
	}

	after := now.Truncate(time.Minute)
	if alarm.LastTriggeredDate == Today(now, loc) {
		after = time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
	}
	next := rule.After(after, true)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}
