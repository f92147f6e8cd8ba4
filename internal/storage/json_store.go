package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/models"
)

type document struct {
	Version  int                    `json:"version"`
	Settings models.Settings        `json:"settings"`
	Users    map[string]*userRecord `json:"users"`
}

type userRecord struct {
	Alarms []models.Alarm   `json:"alarms"`
	Stats  models.UserStats `json:"stats"`
	// Unsynced marks alarms written here that the primary store has not
	// accepted yet.
	Unsynced bool `json:"unsynced,omitempty"`
}

// JSONStore keeps everything in one JSON file. It is the client's local cache
// and the server's fallback when no database is reachable.
type JSONStore struct {
	path string

	mu  sync.Mutex
	doc *document
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func newDocument() *document {
	doc := &document{Version: 1, Users: map[string]*userRecord{}}
	models.ApplyDefaultSettings(&doc.Settings)
	return doc
}

func (s *JSONStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.path); err == nil {
		return s.loadLocked()
	}
	s.doc = newDocument()
	return s.saveLocked()
}

// Load reads the file. A missing file yields an empty store.
func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *JSONStore) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.doc = newDocument()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Users == nil {
		doc.Users = map[string]*userRecord{}
	}
	models.ApplyDefaultSettings(&doc.Settings)
	s.doc = doc
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// saveLocked writes through a temp file so a crash never leaves half a file.
func (s *JSONStore) saveLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) ensureLoadedLocked() error {
	if s.doc != nil {
		return nil
	}
	return s.loadLocked()
}

func (s *JSONStore) user(id string) *userRecord {
	rec, ok := s.doc.Users[id]
	if !ok {
		rec = &userRecord{Alarms: []models.Alarm{}}
		s.doc.Users[id] = rec
	}
	return rec
}

func (s *JSONStore) LoadAlarms(_ context.Context, userID string) ([]models.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	rec, ok := s.doc.Users[userID]
	if !ok {
		return []models.Alarm{}, nil
	}
	return cloneAlarms(rec.Alarms), nil
}

func (s *JSONStore) SaveAlarms(_ context.Context, userID string, alarms []models.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}
	s.user(userID).Alarms = cloneAlarms(alarms)
	return s.saveLocked()
}

func (s *JSONStore) SaveStats(_ context.Context, userID string, stats models.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}
	s.user(userID).Stats = stats
	return s.saveLocked()
}

// Stats returns the last stats saved for userID.
func (s *JSONStore) Stats(userID string) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return models.UserStats{}, err
	}
	if rec, ok := s.doc.Users[userID]; ok {
		return rec.Stats, nil
	}
	return models.UserStats{}, nil
}

// SaveCache stores alarms and flags them as not yet accepted by the primary.
func (s *JSONStore) SaveCache(userID string, alarms []models.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}
	rec := s.user(userID)
	rec.Alarms = cloneAlarms(alarms)
	rec.Unsynced = true
	return s.saveLocked()
}

// MarkSynced clears the unsynced flag for userID.
func (s *JSONStore) MarkSynced(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}
	rec, ok := s.doc.Users[userID]
	if !ok || !rec.Unsynced {
		return nil
	}
	rec.Unsynced = false
	return s.saveLocked()
}

// Unsynced reports whether userID has cached changes the primary lacks.
func (s *JSONStore) Unsynced(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return false
	}
	rec, ok := s.doc.Users[userID]
	return ok && rec.Unsynced
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return models.Settings{}, err
	}
	return s.doc.Settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}
	models.ApplyDefaultSettings(&settings)
	s.doc.Settings = settings
	return s.saveLocked()
}

func (s *JSONStore) Kind() string {
	return constants.DriverFile
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func cloneAlarms(in []models.Alarm) []models.Alarm {
	out := make([]models.Alarm, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
