package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/migration"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/storage"
	"github.com/julianstephens/alarmist/migrations"
)

type Store struct {
	connStr string
	db      *sql.DB
}

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	return &Store{connStr: withSearchPath(connStr)}
}

// withSearchPath pins the alarmist schema unless the caller chose one.
func withSearchPath(connStr string) string {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if _, ok := dsnParam(connStr, "search_path"); ok {
		return connStr
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// dsnParam looks up key (case-insensitive) in a key=value DSN.
func dsnParam(connStr, key string) (string, bool) {
	for _, part := range strings.Fields(connStr) {
		k, v, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	_, ok := dsnParam(connStr, "sslmode")
	return ok
}

// ValidateConnString rejects malformed connection strings and ones that embed
// a password. Passwords belong in PGPASSFILE or the environment.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if _, set := u.User.Password(); set {
			return ErrEmbeddedCredentials
		}
		return nil
	}
	if _, ok := dsnParam(connStr, "password"); ok {
		return ErrEmbeddedCredentials
	}
	return nil
}

func (s *Store) Init() error {
	if err := s.open(); err != nil {
		return err
	}
	if _, err := s.runner().Apply(context.Background(), func(msg string) {
		logger.Info(msg)
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.open(); err != nil {
		return err
	}
	return s.runner().Validate(context.Background())
}

func (s *Store) open() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(constants.AppName)); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		panic(err)
	}
	return migration.NewRunner(s.db, subFS, migration.Postgres)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) LoadAlarms(ctx context.Context, userID string) ([]models.Alarm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, time, label, enabled, status, repeat_type, repeat_days,
		       last_triggered_date, snooze_count, custom_sound_ref, custom_sound_name,
		       created_at, triggered_at, completed_at, last_snooze_at, original_alarm_id
		FROM alarms WHERE user_id = $1 ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alarms: %w", err)
	}
	defer rows.Close()

	alarms := []models.Alarm{}
	for rows.Next() {
		var (
			a                                         models.Alarm
			status, repeatType, days                  string
			lastDate, soundRef, soundName, originalID sql.NullString
			triggeredAt, completedAt, snoozedAt       sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.Time, &a.Label, &a.Enabled, &status, &repeatType, &days,
			&lastDate, &a.SnoozeCount, &soundRef, &soundName,
			&a.CreatedAt, &triggeredAt, &completedAt, &snoozedAt, &originalID); err != nil {
			return nil, fmt.Errorf("failed to scan alarm: %w", err)
		}
		a.Status = models.Status(status)
		a.RepeatType = models.RepeatType(repeatType)
		a.LastTriggeredDate = lastDate.String
		a.CustomSoundRef = soundRef.String
		a.CustomSoundName = soundName.String
		a.OriginalAlarmID = originalID.String
		if a.RepeatDays, err = storage.DecodeDays(days); err != nil {
			return nil, err
		}
		a.TriggeredAt = timePtr(triggeredAt)
		a.CompletedAt = timePtr(completedAt)
		a.LastSnoozeAt = timePtr(snoozedAt)
		alarms = append(alarms, a)
	}
	return alarms, rows.Err()
}

func (s *Store) SaveAlarms(ctx context.Context, userID string, alarms []models.Alarm) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM alarms WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear alarms: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alarms (user_id, id, position, time, label, enabled, status, repeat_type, repeat_days,
			last_triggered_date, snooze_count, custom_sound_ref, custom_sound_name,
			created_at, triggered_at, completed_at, last_snooze_at, original_alarm_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, a := range alarms {
		days, err := storage.EncodeDays(a.RepeatDays)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, userID, a.ID, i, a.Time, a.Label, a.Enabled, string(a.Status), string(a.RepeatType), days,
			nullString(a.LastTriggeredDate), a.SnoozeCount, nullString(a.CustomSoundRef), nullString(a.CustomSoundName),
			a.CreatedAt, nullTime(a.TriggeredAt), nullTime(a.CompletedAt), nullTime(a.LastSnoozeAt),
			nullString(a.OriginalAlarmID)); err != nil {
			return fmt.Errorf("failed to save alarm %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) SaveStats(ctx context.Context, userID string, stats models.UserStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, alarm_count, total_alarms, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			alarm_count = EXCLUDED.alarm_count,
			total_alarms = EXCLUDED.total_alarms,
			updated_at = EXCLUDED.updated_at`,
		userID, stats.AlarmCount, stats.TotalAlarms, stats.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

func (s *Store) Kind() string {
	return constants.DriverPostgres
}

// GetConfigPath returns the connection string with any password redacted.
func (s *Store) GetConfigPath() string {
	if isURL(s.connStr) {
		if u, err := url.Parse(s.connStr); err == nil {
			return u.Redacted()
		}
	}
	return s.connStr
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
