package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/storage/sqlite"
)

func seedDatabase(t *testing.T, alarms ...models.Alarm) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alarmist.db")
	s := sqlite.NewStore(path)
	require.NoError(t, s.Init())
	require.NoError(t, s.SaveAlarms(context.Background(), "u1", alarms))
	require.NoError(t, s.Close())
	return path
}

func loadAlarms(t *testing.T, path string) []models.Alarm {
	t.Helper()
	s := sqlite.NewStore(path)
	require.NoError(t, s.Load())
	defer s.Close()
	got, err := s.LoadAlarms(context.Background(), "u1")
	require.NoError(t, err)
	return got
}

func alarm(id, clock string) models.Alarm {
	return models.Alarm{
		ID: id, Time: clock, Enabled: true, Status: models.StatusPending,
		RepeatType: models.RepeatDaily, RepeatDays: []time.Weekday{},
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndList(t *testing.T) {
	db := seedDatabase(t, alarm("a", "07:00"))
	m := NewManager(db)
	stamp := time.Date(2026, 3, 4, 7, 0, 0, 0, time.Local)
	m.now = func() time.Time { return stamp }

	first, err := m.Create()
	require.NoError(t, err)
	second, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "same-second backups get a counter")

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Timestamp.Equal(stamp))
	assert.Len(t, loadAlarms(t, first), 1)
}

func TestCreateWithoutDatabase(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	_, err := m.Create()
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestRotation(t *testing.T) {
	db := seedDatabase(t, alarm("a", "07:00"))
	m := NewManager(db)
	base := time.Date(2026, 3, 1, 7, 0, 0, 0, time.Local)
	for i := 0; i < MaxBackups+3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		m.now = func() time.Time { return at }
		_, err := m.Create()
		require.NoError(t, err)
	}

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, MaxBackups)
	assert.True(t, list[0].Timestamp.Equal(base.Add(time.Duration(MaxBackups+2)*time.Hour)), "newest kept")
}

func TestRestore(t *testing.T) {
	db := seedDatabase(t, alarm("a", "07:00"))
	m := NewManager(db)
	snapshot, err := m.Create()
	require.NoError(t, err)

	s := sqlite.NewStore(db)
	require.NoError(t, s.Load())
	require.NoError(t, s.SaveAlarms(context.Background(), "u1", []models.Alarm{alarm("a", "07:00"), alarm("b", "09:00")}))
	require.NoError(t, s.Close())

	m.now = func() time.Time { return time.Now().Add(time.Minute) }
	previous, err := m.Restore(snapshot)
	require.NoError(t, err)
	assert.FileExists(t, previous)
	assert.Len(t, loadAlarms(t, db), 1)
	assert.Len(t, loadAlarms(t, previous), 2)
}

func TestRestoreRejectsForeignFile(t *testing.T) {
	db := seedDatabase(t)
	bogus := filepath.Join(t.TempDir(), "notes.db")
	require.NoError(t, os.WriteFile(bogus, []byte("not a database"), 0600))

	_, err := NewManager(db).Restore(bogus)
	assert.Error(t, err)
}
