// Package playback rings alarms. The Controller owns the single in-flight
// alarm, drives the sound fallback chain and guarantees teardown.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/alarmist/internal/constants"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/utils"
)

// AlarmStore is the slice of the alarm service the controller writes through.
// Both methods may return a usable alarm together with an ErrPersistence
// warning.
type AlarmStore interface {
	Mutate(ctx context.Context, id string, fn func(*models.Alarm)) (models.Alarm, error)
	AddDerived(ctx context.Context, alarm models.Alarm) (models.Alarm, error)
}

// Alerter surfaces a ringing alarm to the user (banner, OS notification).
type Alerter interface {
	PresentAlert(label, clock string)
}

type Option func(*Controller)

func WithLocation(loc *time.Location) Option {
	return func(c *Controller) { c.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithAlerter(a Alerter) Option {
	return func(c *Controller) { c.alerter = a }
}

// WithIDs replaces uuid generation for snooze-derived alarms.
func WithIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// WithTeardownRechecks overrides the delays of the re-teardowns issued after
// every stop.
func WithTeardownRechecks(delays ...time.Duration) Option {
	return func(c *Controller) { c.rechecks = delays }
}

type Controller struct {
	store      AlarmStore
	strategies []Strategy
	alerter    Alerter
	loc        *time.Location
	now        func() time.Time
	newID      func() string
	rechecks   []time.Duration

	mu       sync.Mutex
	current  *models.Alarm
	preview  bool
	engaged  string
	cancel   context.CancelFunc
	epoch    uint64
	deferred []*time.Timer
	closed   bool
	saves    saveQueue
}

// New builds a controller that tries strategies in order.
func New(store AlarmStore, strategies []Strategy, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		strategies: strategies,
		loc:        time.Local,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
		rechecks:   []time.Duration{constants.TeardownRecheckShort, constants.TeardownRecheckLong},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Active reports whether an alarm is ringing.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil || c.preview
}

// Current returns the ringing alarm and the layer that engaged.
func (c *Controller) Current() (models.Alarm, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return models.Alarm{}, "", false
	}
	return c.current.Clone(), c.engaged, true
}

// Trigger rings alarm. It fails with ErrBusy while another alarm rings. A
// returned ErrPersistence means the alarm is ringing but was not saved.
//
// The ring is claimed and the chain started under the lock; the save runs
// after the lock is released so Active and Current never wait on storage.
func (c *Controller) Trigger(ctx context.Context, now time.Time, alarm models.Alarm) error {
	today := utils.Today(now, c.loc)
	mark := func(a *models.Alarm) {
		at := now
		a.Status = models.StatusTriggered
		a.TriggeredAt = &at
		a.LastTriggeredDate = today
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("playback controller is closed")
	}
	if c.current != nil || c.preview {
		c.mu.Unlock()
		return apperrors.ErrBusy
	}

	c.cancelDeferredLocked()
	c.epoch++
	epoch := c.epoch
	claimed := alarm.Clone()
	mark(&claimed)
	ringCtx, cancel := context.WithCancel(context.Background())
	c.current = &claimed
	c.cancel = cancel
	c.engaged = c.startChainLocked(ringCtx, claimed)
	engaged := c.engaged
	turn := c.saves.enqueue()
	c.mu.Unlock()

	updated, err := turn.run(func() (models.Alarm, error) {
		return c.store.Mutate(ctx, alarm.ID, mark)
	})
	var warning error
	if err != nil {
		if !errors.Is(err, apperrors.ErrPersistence) {
			c.mu.Lock()
			if c.epoch == epoch && c.current == &claimed {
				c.current = nil
				c.engaged = ""
				if terr := c.teardownLocked(); terr != nil {
					logger.Warn("Teardown after failed trigger", "id", alarm.ID, "error", terr)
				}
			}
			c.mu.Unlock()
			return err
		}
		warning = err
	}

	c.mu.Lock()
	if c.epoch != epoch || c.current != &claimed {
		// Stopped or snoozed while the save was in flight.
		c.mu.Unlock()
		return warning
	}
	*c.current = updated
	c.mu.Unlock()

	logger.Info("Alarm ringing", "id", updated.ID, "label", updated.Label, "layer", engaged)
	if c.alerter != nil {
		c.alerter.PresentAlert(updated.Label, updated.Time)
	}
	return warning
}

// startChainLocked starts strategies in order until one succeeds.
func (c *Controller) startChainLocked(ctx context.Context, alarm models.Alarm) string {
	for _, s := range c.strategies {
		if err := s.Start(ctx, alarm); err != nil {
			logger.Debug("Playback layer failed, falling back", "layer", s.Name(), "error", err)
			if serr := s.Stop(); serr != nil {
				logger.Debug("Playback layer cleanup failed", "layer", s.Name(), "error", serr)
			}
			continue
		}
		return s.Name()
	}
	logger.Warn("No playback layer engaged", "id", alarm.ID)
	return ""
}

// Preview plays alarm's sound through the chain for d without changing any
// alarm state. It returns the layer that engaged.
func (c *Controller) Preview(ctx context.Context, alarm models.Alarm, d time.Duration) (string, error) {
	c.mu.Lock()
	if c.current != nil || c.preview {
		c.mu.Unlock()
		return "", apperrors.ErrBusy
	}
	c.cancelDeferredLocked()
	c.epoch++
	epoch := c.epoch
	c.preview = true
	ringCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	engaged := c.startChainLocked(ringCtx, alarm)
	c.mu.Unlock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-ringCtx.Done():
	case <-timer.C:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// Stopped early and something else has rung since.
		return engaged, nil
	}
	c.preview = false
	return engaged, c.teardownLocked()
}

// Stop dismisses the ringing alarm: once alarms complete, repeating alarms
// return to pending. Stop with nothing ringing still tears audio down.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	cur := c.current
	c.current = nil
	c.preview = false
	c.engaged = ""
	teardownErr := c.teardownLocked()
	var turn saveTurn
	if cur != nil {
		turn = c.saves.enqueue()
	}
	c.mu.Unlock()

	if cur == nil {
		return teardownErr
	}

	now := c.now()
	_, err := turn.run(func() (models.Alarm, error) {
		return c.store.Mutate(ctx, cur.ID, func(a *models.Alarm) {
			applyStopRule(a, now)
		})
	})
	if err != nil && errors.Is(err, apperrors.ErrNotFound) {
		// Deleted while ringing.
		err = nil
	}
	logger.Info("Alarm stopped", "id", cur.ID, "repeat", cur.RepeatType)
	return errors.Join(teardownErr, err)
}

func applyStopRule(a *models.Alarm, now time.Time) {
	if a.RepeatType == models.RepeatOnce {
		at := now
		a.Status = models.StatusCompleted
		a.CompletedAt = &at
		return
	}
	a.Status = models.StatusPending
	a.TriggeredAt = nil
}

// Snooze records the snooze, stops the alarm and schedules a one-time copy
// five minutes out. Claiming the ringing alarm and stopping it is one step,
// so a concurrent Stop either wins outright or finds nothing to stop.
func (c *Controller) Snooze(ctx context.Context) (models.Alarm, error) {
	c.mu.Lock()
	cur := c.current
	if cur == nil {
		c.mu.Unlock()
		logger.Debug("Snooze with no ringing alarm")
		return models.Alarm{}, apperrors.NotFound("ringing alarm", "")
	}
	c.current = nil
	c.engaged = ""
	teardownErr := c.teardownLocked()
	turn := c.saves.enqueue()
	c.mu.Unlock()

	log := logger.With("id", cur.ID)
	var warnings []error
	if teardownErr != nil {
		if log != nil {
			log.Warn("Teardown on snooze failed", "error", teardownErr)
		}
		warnings = append(warnings, teardownErr)
	}

	now := c.now()
	parent, err := turn.run(func() (models.Alarm, error) {
		return c.store.Mutate(ctx, cur.ID, func(a *models.Alarm) {
			at := now
			a.Status = models.StatusSnoozed
			a.SnoozeCount++
			a.LastSnoozeAt = &at
			applyStopRule(a, now)
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrPersistence) {
			return models.Alarm{}, errors.Join(append(warnings, err)...)
		}
		warnings = append(warnings, err)
	}

	at := now.In(c.loc).Add(constants.SnoozeDuration)
	derived, err := c.store.AddDerived(ctx, models.NewSnoozed(c.newID(), parent, at, now))
	if err != nil {
		if !errors.Is(err, apperrors.ErrPersistence) {
			return models.Alarm{}, errors.Join(append(warnings, err)...)
		}
		warnings = append(warnings, err)
	}
	if log != nil {
		log.Info("Alarm snoozed", "count", parent.SnoozeCount, "until", derived.Time)
	}
	return derived, errors.Join(warnings...)
}

// EmergencyStop tears everything down without touching alarm state. It
// returns ErrTeardownFailed when any layer refuses to stop, in which case the
// caller should restart the process.
func (c *Controller) EmergencyStop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.preview = false
	c.engaged = ""
	if err := c.teardownLocked(); err != nil {
		logger.Error("Emergency teardown failed", "error", err)
		return fmt.Errorf("%w: %v", apperrors.ErrTeardownFailed, err)
	}
	return nil
}

// Close stops all audio and prevents further triggers.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.current = nil
	err := c.stopAllLocked()
	c.cancelDeferredLocked()
	return err
}

// teardownLocked stops every strategy now and re-checks after each recheck
// delay, replacing any previously scheduled re-checks.
func (c *Controller) teardownLocked() error {
	err := c.stopAllLocked()

	c.cancelDeferredLocked()
	epoch := c.epoch
	for _, d := range c.rechecks {
		c.deferred = append(c.deferred, time.AfterFunc(d, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.epoch != epoch || c.current != nil {
				return
			}
			if err := c.stopAllLocked(); err != nil {
				logger.Debug("Deferred teardown failed", "error", err)
			}
		}))
	}
	return err
}

func (c *Controller) stopAllLocked() error {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	var errs []error
	for _, s := range c.strategies {
		if err := s.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) cancelDeferredLocked() {
	for _, t := range c.deferred {
		t.Stop()
	}
	c.deferred = nil
}

// saveQueue orders alarm writes by the order their transitions were claimed
// under the controller lock, without holding that lock during the write.
type saveQueue struct {
	tail chan struct{}
}

type saveTurn struct {
	prev chan struct{}
	done chan struct{}
}

// enqueue must be called with c.mu held.
func (q *saveQueue) enqueue() saveTurn {
	t := saveTurn{prev: q.tail, done: make(chan struct{})}
	q.tail = t.done
	return t
}

func (t saveTurn) run(fn func() (models.Alarm, error)) (models.Alarm, error) {
	if t.prev != nil {
		<-t.prev
	}
	defer close(t.done)
	return fn()
}
