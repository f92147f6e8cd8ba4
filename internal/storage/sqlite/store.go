package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/migration"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/storage"
	"github.com/julianstephens/alarmist/migrations"
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(context.Background()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'alarmist init' first")
	}

	if err := s.open(); err != nil {
		return err
	}
	return s.runner().Validate(context.Background())
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps "database is locked" out of concurrent saves.
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite)
}

func (s *Store) runMigrations(ctx context.Context) error {
	_, err := s.runner().Apply(ctx, func(msg string) {
		logger.Info(msg)
	})
	return err
}

func (s *Store) LoadAlarms(ctx context.Context, userID string) ([]models.Alarm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, time, label, enabled, status, repeat_type, repeat_days,
		       last_triggered_date, snooze_count, custom_sound_ref, custom_sound_name,
		       created_at, triggered_at, completed_at, last_snooze_at, original_alarm_id
		FROM alarms WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alarms: %w", err)
	}
	defer rows.Close()

	alarms := []models.Alarm{}
	for rows.Next() {
		var (
			a                                         models.Alarm
			enabled                                   int
			status, repeatType, days, createdAt       string
			lastDate, soundRef, soundName, originalID sql.NullString
			triggeredAt, completedAt, snoozedAt       sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Time, &a.Label, &enabled, &status, &repeatType, &days,
			&lastDate, &a.SnoozeCount, &soundRef, &soundName,
			&createdAt, &triggeredAt, &completedAt, &snoozedAt, &originalID); err != nil {
			return nil, fmt.Errorf("failed to scan alarm: %w", err)
		}
		a.Enabled = enabled != 0
		a.Status = models.Status(status)
		a.RepeatType = models.RepeatType(repeatType)
		a.LastTriggeredDate = lastDate.String
		a.CustomSoundRef = soundRef.String
		a.CustomSoundName = soundName.String
		a.OriginalAlarmID = originalID.String
		if a.RepeatDays, err = storage.DecodeDays(days); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for alarm %s: %w", a.ID, err)
		}
		a.TriggeredAt = parseNullTime(triggeredAt)
		a.CompletedAt = parseNullTime(completedAt)
		a.LastSnoozeAt = parseNullTime(snoozedAt)
		alarms = append(alarms, a)
	}
	return alarms, rows.Err()
}

// SaveAlarms replaces the user's alarm list in one transaction.
func (s *Store) SaveAlarms(ctx context.Context, userID string, alarms []models.Alarm) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM alarms WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear alarms: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alarms (user_id, id, position, time, label, enabled, status, repeat_type, repeat_days,
			last_triggered_date, snooze_count, custom_sound_ref, custom_sound_name,
			created_at, triggered_at, completed_at, last_snooze_at, original_alarm_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, a := range alarms {
		days, err := storage.EncodeDays(a.RepeatDays)
		if err != nil {
			return err
		}
		enabled := 0
		if a.Enabled {
			enabled = 1
		}
		if _, err := stmt.ExecContext(ctx, userID, a.ID, i, a.Time, a.Label, enabled, string(a.Status), string(a.RepeatType), days,
			nullString(a.LastTriggeredDate), a.SnoozeCount, nullString(a.CustomSoundRef), nullString(a.CustomSoundName),
			a.CreatedAt.UTC().Format(time.RFC3339Nano), formatNullTime(a.TriggeredAt), formatNullTime(a.CompletedAt),
			formatNullTime(a.LastSnoozeAt), nullString(a.OriginalAlarmID)); err != nil {
			return fmt.Errorf("failed to save alarm %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) SaveStats(ctx context.Context, userID string, stats models.UserStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, alarm_count, total_alarms, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			alarm_count = excluded.alarm_count,
			total_alarms = excluded.total_alarms,
			updated_at = excluded.updated_at`,
		userID, stats.AlarmCount, stats.TotalAlarms, stats.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

// GetStats returns the stored stats for userID, or zero stats when none exist.
func (s *Store) GetStats(ctx context.Context, userID string) (models.UserStats, error) {
	var (
		stats     models.UserStats
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT alarm_count, total_alarms, updated_at FROM user_stats WHERE user_id = ?", userID).
		Scan(&stats.AlarmCount, &stats.TotalAlarms, &updatedAt)
	if err == sql.ErrNoRows {
		return models.UserStats{}, nil
	}
	if err != nil {
		return models.UserStats{}, err
	}
	stats.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return stats, nil
}

func (s *Store) Kind() string {
	return constants.DriverSQLite
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, or nil before Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		logger.Warn("Ignoring malformed timestamp", "value", v.String, "error", err)
		return nil
	}
	return &t
}
