// Package scheduler decides, once per second, whether an alarm is due.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/alarmist/internal/constants"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/utils"
)

// AlarmSource supplies the current alarm snapshot.
type AlarmSource interface {
	Alarms() []models.Alarm
}

// Presenter rings a matched alarm and reports whether one is already ringing.
type Presenter interface {
	Active() bool
	Trigger(ctx context.Context, now time.Time, alarm models.Alarm) error
}

// ShouldFire reports whether alarm is due at now. It matches on the minute,
// so it stays true for the whole minute until lastTriggeredDate is set.
func ShouldFire(alarm models.Alarm, now time.Time, loc *time.Location) bool {
	if !alarm.Enabled || alarm.Status == models.StatusCompleted {
		return false
	}
	hhmm, weekday, today := utils.ClockOf(now, loc)
	if alarm.Time != hhmm || alarm.LastTriggeredDate == today {
		return false
	}
	return utils.ShouldRingOn(alarm, weekday)
}

// EvaluateTick returns the first alarm due at now, in slice order.
func EvaluateTick(now time.Time, alarms []models.Alarm, loc *time.Location) (models.Alarm, bool) {
	for _, a := range alarms {
		if ShouldFire(a, now, loc) {
			return a, true
		}
	}
	return models.Alarm{}, false
}

type Option func(*Scheduler)

// WithLocation evaluates wall-clock times in loc instead of time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

type Scheduler struct {
	source    AlarmSource
	presenter Presenter
	loc       *time.Location
	now       func() time.Time
}

func New(source AlarmSource, presenter Presenter, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:    source,
		presenter: presenter,
		loc:       time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick runs one evaluation. It returns the alarm handed to the presenter, if
// any. Nothing is evaluated while an alarm is ringing.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (models.Alarm, bool) {
	if s.presenter.Active() {
		return models.Alarm{}, false
	}
	alarm, ok := EvaluateTick(now, s.source.Alarms(), s.loc)
	if !ok {
		return models.Alarm{}, false
	}

	logger.Info("Alarm due", "id", alarm.ID, "time", alarm.Time, "label", alarm.Label)
	if err := s.presenter.Trigger(ctx, now, alarm); err != nil {
		if errors.Is(err, apperrors.ErrBusy) {
			return models.Alarm{}, false
		}
		logger.Warn("Failed to trigger alarm", "id", alarm.ID, "error", err)
	}
	return alarm, true
}

// Run ticks every second until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(constants.TickInterval)
	defer ticker.Stop()

	s.Tick(ctx, s.now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}
