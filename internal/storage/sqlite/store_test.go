package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/alarmist/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, s.Init())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreAlarmsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	triggered := created.Add(time.Hour)

	in := []models.Alarm{
		{
			ID: "b", Time: "08:30", Label: "Second", Enabled: false,
			Status: models.StatusPending, RepeatType: models.RepeatWeekly,
			RepeatDays: []time.Weekday{time.Monday, time.Friday},
			CreatedAt:  created,
		},
		{
			ID: "a", Time: "07:00", Label: "First", Enabled: true,
			Status: models.StatusTriggered, RepeatType: models.RepeatOnce,
			RepeatDays: []time.Weekday{}, LastTriggeredDate: "2026-03-01", SnoozeCount: 2,
			CustomSoundRef: "sound:x.wav", CustomSoundName: "birds.wav",
			CreatedAt: created, TriggeredAt: &triggered, OriginalAlarmID: "root",
		},
	}
	require.NoError(t, s.SaveAlarms(ctx, "u1", in))

	got, err := s.LoadAlarms(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID, "order is preserved")
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, got[0].RepeatDays)
	assert.False(t, got[0].Enabled)
	assert.Nil(t, got[0].TriggeredAt)

	a := got[1]
	assert.True(t, a.Enabled)
	assert.Equal(t, models.StatusTriggered, a.Status)
	assert.Equal(t, "2026-03-01", a.LastTriggeredDate)
	assert.Equal(t, 2, a.SnoozeCount)
	assert.Equal(t, "sound:x.wav", a.CustomSoundRef)
	assert.Equal(t, "root", a.OriginalAlarmID)
	require.NotNil(t, a.TriggeredAt)
	assert.True(t, a.TriggeredAt.Equal(triggered))
	assert.True(t, a.CreatedAt.Equal(created))
}

func TestStoreSaveReplacesList(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	now := time.Now()

	require.NoError(t, s.SaveAlarms(ctx, "u1", []models.Alarm{
		{ID: "a", Time: "07:00", RepeatType: models.RepeatOnce, CreatedAt: now},
		{ID: "b", Time: "08:00", RepeatType: models.RepeatOnce, CreatedAt: now},
	}))
	require.NoError(t, s.SaveAlarms(ctx, "u2", []models.Alarm{
		{ID: "a", Time: "09:00", RepeatType: models.RepeatDaily, CreatedAt: now},
	}))
	require.NoError(t, s.SaveAlarms(ctx, "u1", []models.Alarm{
		{ID: "b", Time: "08:00", RepeatType: models.RepeatOnce, CreatedAt: now},
	}))

	got, err := s.LoadAlarms(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	other, err := s.LoadAlarms(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "09:00", other[0].Time)

	empty, err := s.LoadAlarms(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStoreStatsUpsert(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.SaveStats(ctx, "u1", models.UserStats{AlarmCount: 1, TotalAlarms: 2, UpdatedAt: time.Now()}))
	require.NoError(t, s.SaveStats(ctx, "u1", models.UserStats{AlarmCount: 3, TotalAlarms: 4, UpdatedAt: time.Now()}))

	got, err := s.GetStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.AlarmCount)
	assert.Equal(t, 4, got.TotalAlarms)

	none, err := s.GetStats(ctx, "u2")
	require.NoError(t, err)
	assert.Zero(t, none.TotalAlarms)
}

func TestStoreLoadRequiresInit(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, s.Load())
}

func TestStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	s := NewStore(path)
	require.NoError(t, s.Init())
	require.NoError(t, s.SaveAlarms(ctx, "u1", []models.Alarm{{ID: "a", Time: "07:00", RepeatType: models.RepeatOnce, CreatedAt: time.Now()}}))
	require.NoError(t, s.Close())

	reopened := NewStore(path)
	require.NoError(t, reopened.Load())
	defer reopened.Close()
	got, err := reopened.LoadAlarms(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
