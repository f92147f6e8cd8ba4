// Package alarms owns the signed-in user's alarm list: validation, lifecycle
// bookkeeping and persistence after every change.
package alarms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/alarmist/internal/constants"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/session"
	"github.com/julianstephens/alarmist/internal/storage"
)

// SoundReleaser frees stored custom sounds.
type SoundReleaser interface {
	Release(ref string) error
}

// Input holds the user-editable fields of an alarm.
type Input struct {
	Time            string
	Label           string
	RepeatType      models.RepeatType
	RepeatDays      []time.Weekday
	CustomSoundRef  string
	CustomSoundName string
}

// FromAlarm returns the editable fields of a.
func FromAlarm(a models.Alarm) Input {
	return Input{
		Time:            a.Time,
		Label:           a.Label,
		RepeatType:      a.RepeatType,
		RepeatDays:      append([]time.Weekday(nil), a.RepeatDays...),
		CustomSoundRef:  a.CustomSoundRef,
		CustomSoundName: a.CustomSoundName,
	}
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithSounds(r SoundReleaser) Option {
	return func(s *Service) { s.sounds = r }
}

// Service is safe for concurrent use. The in-memory list is authoritative;
// a failed save is reported as an ErrPersistence warning and the change is
// kept.
type Service struct {
	store   storage.Provider
	session session.Source
	sounds  SoundReleaser
	now     func() time.Time
	newID   func() string

	mu     sync.RWMutex
	userID string
	alarms []models.Alarm
	loaded bool

	// saveMu orders saves so the last one written is the latest state.
	saveMu sync.Mutex
}

func New(store storage.Provider, src session.Source, opts ...Option) *Service {
	s := &Service{
		store:   store,
		session: src,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the current user's alarms. Without a session nothing is read
// and ErrNoSession is returned. A persistence warning still leaves the
// returned (cached) alarms loaded.
func (s *Service) Load(ctx context.Context) error {
	user, ok := s.session.CurrentUser()
	if !ok {
		s.mu.Lock()
		s.userID, s.alarms, s.loaded = "", nil, false
		s.mu.Unlock()
		return apperrors.ErrNoSession
	}

	list, err := s.store.LoadAlarms(ctx, user.ID)
	if err != nil && (list == nil || !errors.Is(err, apperrors.ErrPersistence)) {
		return fmt.Errorf("failed to load alarms: %w", err)
	}

	for i := range list {
		list[i].Normalize()
		// Nothing rings right after start-up.
		if list[i].IsRinging() {
			list[i].Status = models.StatusPending
			list[i].TriggeredAt = nil
		}
	}

	s.mu.Lock()
	s.userID = user.ID
	s.alarms = list
	s.loaded = true
	s.mu.Unlock()

	logger.Debug("Loaded alarms", "user", user.ID, "count", len(list), "storage", s.store.Kind())
	if err != nil {
		logger.Warn("Alarms loaded from local cache", "error", err)
	}
	return err
}

// UserID returns the user whose alarms are loaded.
func (s *Service) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Alarms returns a snapshot of the list in display order.
func (s *Service) Alarms() []models.Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Alarm, len(s.alarms))
	for i, a := range s.alarms {
		out[i] = a.Clone()
	}
	return out
}

func (s *Service) Get(id string) (models.Alarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return models.Alarm{}, apperrors.NotFound("alarm", id)
	}
	return s.alarms[i].Clone(), nil
}

// Add validates in and appends a new pending, enabled alarm.
func (s *Service) Add(ctx context.Context, in Input) (models.Alarm, error) {
	a := models.Alarm{
		ID:              s.newID(),
		Time:            strings.TrimSpace(in.Time),
		Label:           strings.TrimSpace(in.Label),
		Enabled:         true,
		Status:          models.StatusPending,
		RepeatType:      in.RepeatType,
		RepeatDays:      append([]time.Weekday(nil), in.RepeatDays...),
		CustomSoundRef:  in.CustomSoundRef,
		CustomSoundName: in.CustomSoundName,
		CreatedAt:       s.now(),
	}
	if a.Label == "" {
		a.Label = constants.DefaultAlarmLabel
	}
	if a.RepeatType == "" {
		a.RepeatType = models.RepeatOnce
	}
	if err := a.Validate(); err != nil {
		return models.Alarm{}, err
	}
	a.Normalize()

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return models.Alarm{}, apperrors.ErrNoSession
	}
	s.alarms = append(s.alarms, a)
	s.mu.Unlock()

	logger.Info("Alarm added", "id", a.ID, "time", a.Time, "repeat", a.RepeatType)
	return a.Clone(), s.persist(ctx)
}

// Edit replaces the editable fields of alarm id. On a validation failure the
// alarm is left untouched.
func (s *Service) Edit(ctx context.Context, id string, in Input) (models.Alarm, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return models.Alarm{}, apperrors.ErrNoSession
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Alarm{}, apperrors.NotFound("alarm", id)
	}

	next := s.alarms[i].Clone()
	next.Time = strings.TrimSpace(in.Time)
	next.Label = strings.TrimSpace(in.Label)
	if next.Label == "" {
		next.Label = constants.DefaultAlarmLabel
	}
	next.RepeatType = in.RepeatType
	next.RepeatDays = append([]time.Weekday(nil), in.RepeatDays...)
	next.CustomSoundRef = in.CustomSoundRef
	next.CustomSoundName = in.CustomSoundName
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return models.Alarm{}, err
	}
	next.Normalize()
	rearm(&next)

	oldRef := s.alarms[i].CustomSoundRef
	s.alarms[i] = next
	orphan := oldRef != "" && oldRef != next.CustomSoundRef && !s.referencedLocked(oldRef)
	s.mu.Unlock()

	if orphan {
		s.release(oldRef)
	}
	logger.Info("Alarm updated", "id", id)
	return next.Clone(), s.persist(ctx)
}

// Toggle flips whether alarm id is enabled. Enabling a completed alarm
// re-arms it.
func (s *Service) Toggle(ctx context.Context, id string) (models.Alarm, error) {
	return s.Mutate(ctx, id, func(a *models.Alarm) {
		a.Enabled = !a.Enabled
		if a.Enabled {
			rearm(a)
		}
	})
}

// rearm returns a completed alarm to pending so it can ring again, including
// later today.
func rearm(a *models.Alarm) {
	if a.Status != models.StatusCompleted {
		return
	}
	a.Status = models.StatusPending
	a.CompletedAt = nil
	a.TriggeredAt = nil
	a.LastTriggeredDate = ""
}

// Delete removes alarm id and releases its custom sound once nothing else
// uses it.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return apperrors.ErrNoSession
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return apperrors.NotFound("alarm", id)
	}
	ref := s.alarms[i].CustomSoundRef
	s.alarms = append(s.alarms[:i], s.alarms[i+1:]...)
	orphan := ref != "" && !s.referencedLocked(ref)
	s.mu.Unlock()

	if orphan {
		s.release(ref)
	}
	logger.Info("Alarm deleted", "id", id)
	return s.persist(ctx)
}

// Mutate applies fn to alarm id and persists the result. The returned alarm
// is valid even when err is an ErrPersistence warning.
func (s *Service) Mutate(ctx context.Context, id string, fn func(*models.Alarm)) (models.Alarm, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return models.Alarm{}, apperrors.ErrNoSession
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Alarm{}, apperrors.NotFound("alarm", id)
	}
	fn(&s.alarms[i])
	updated := s.alarms[i].Clone()
	s.mu.Unlock()

	return updated, s.persist(ctx)
}

// AddDerived appends an alarm built elsewhere, such as a snooze follow-up.
func (s *Service) AddDerived(ctx context.Context, a models.Alarm) (models.Alarm, error) {
	if a.ID == "" {
		a.ID = s.newID()
	}
	if err := a.Validate(); err != nil {
		return models.Alarm{}, err
	}
	a.Normalize()

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return models.Alarm{}, apperrors.ErrNoSession
	}
	s.alarms = append(s.alarms, a.Clone())
	s.mu.Unlock()

	logger.Info("Snoozed alarm scheduled", "id", a.ID, "time", a.Time, "parent", a.OriginalAlarmID)
	return a, s.persist(ctx)
}

// Sorted returns the snapshot ordered by time of day, then label.
func (s *Service) Sorted() []models.Alarm {
	list := s.Alarms()
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Time != list[j].Time {
			return list[i].Time < list[j].Time
		}
		return list[i].Label < list[j].Label
	})
	return list
}

// Resolve finds an alarm by full id or unique id prefix.
func (s *Service) Resolve(idOrPrefix string) (models.Alarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var match *models.Alarm
	for i := range s.alarms {
		a := &s.alarms[i]
		if a.ID == idOrPrefix {
			return a.Clone(), nil
		}
		if idOrPrefix != "" && strings.HasPrefix(a.ID, idOrPrefix) {
			if match != nil {
				return models.Alarm{}, apperrors.Validation("id", "prefix %q matches more than one alarm", idOrPrefix)
			}
			match = a
		}
	}
	if match == nil {
		return models.Alarm{}, apperrors.NotFound("alarm", idOrPrefix)
	}
	return match.Clone(), nil
}

// persist saves the latest list and then stats, best effort.
func (s *Service) persist(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	userID := s.userID
	snapshot := make([]models.Alarm, len(s.alarms))
	for i, a := range s.alarms {
		snapshot[i] = a.Clone()
	}
	s.mu.RUnlock()

	if err := s.store.SaveAlarms(ctx, userID, snapshot); err != nil {
		logger.Warn("Failed to save alarms", "user", userID, "error", err)
		if errors.Is(err, apperrors.ErrPersistence) {
			return err
		}
		return fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	if err := s.store.SaveStats(ctx, userID, models.StatsFor(snapshot, s.now())); err != nil {
		logger.Debug("Failed to save stats", "user", userID, "error", err)
	}
	return nil
}

func (s *Service) release(ref string) {
	if s.sounds == nil {
		return
	}
	if err := s.sounds.Release(ref); err != nil {
		logger.Warn("Failed to release custom sound", "ref", ref, "error", err)
	}
}

func (s *Service) indexLocked(id string) int {
	for i := range s.alarms {
		if s.alarms[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) referencedLocked(ref string) bool {
	for i := range s.alarms {
		if s.alarms[i].CustomSoundRef == ref {
			return true
		}
	}
	return false
}
