// Package remote is a storage provider backed by the alarmist HTTP API.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/julianstephens/alarmist/internal/api"
	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/models"
)

var ErrUnhealthy = errors.New("alarm server is unhealthy")

type Store struct {
	baseURL string
	http    *resty.Client
}

func New(baseURL string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = constants.DefaultRemoteTimeout
	}
	r := resty.New()
	r.SetBaseURL(baseURL)
	r.SetTimeout(timeout)
	r.SetHeader("Content-Type", "application/json")
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", constants.AppName+"/"+constants.Version)

	return &Store{baseURL: baseURL, http: r}
}

func (s *Store) Init() error {
	return s.Load()
}

// Load checks the server is reachable and healthy.
func (s *Store) Load() error {
	_, err := s.Health(context.Background())
	return err
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/health")
	if err != nil {
		return out, fmt.Errorf("failed to reach alarm server: %w", err)
	}
	if resp.IsError() || !out.Success {
		return out, fmt.Errorf("%w: %s", ErrUnhealthy, resp.Status())
	}
	return out, nil
}

func (s *Store) LoadAlarms(ctx context.Context, userID string) ([]models.Alarm, error) {
	var out api.AlarmsResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		SetResult(&out).
		Get("/api/users/{id}/alarms")
	if err != nil {
		return nil, fmt.Errorf("failed to load alarms: %w", err)
	}
	if resp.IsError() || !out.Success {
		return nil, fmt.Errorf("failed to load alarms: %s", responseError(resp))
	}
	if out.Alarms == nil {
		out.Alarms = []models.Alarm{}
	}
	return out.Alarms, nil
}

func (s *Store) SaveAlarms(ctx context.Context, userID string, alarms []models.Alarm) error {
	if alarms == nil {
		alarms = []models.Alarm{}
	}
	var out api.MessageResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		SetBody(api.SaveAlarmsRequest{Alarms: alarms}).
		SetResult(&out).
		SetError(&out).
		Put("/api/users/{id}/alarms")
	if err != nil {
		return fmt.Errorf("failed to save alarms: %w", err)
	}
	if resp.IsError() || !out.Success {
		return fmt.Errorf("failed to save alarms: %s", responseError(resp))
	}
	return nil
}

func (s *Store) SaveStats(ctx context.Context, userID string, stats models.UserStats) error {
	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		SetBody(api.StatsRequest{AlarmCount: stats.AlarmCount, TotalAlarms: stats.TotalAlarms}).
		Put("/api/users/{id}/stats")
	if err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to save stats: %s", responseError(resp))
	}
	return nil
}

func (s *Store) Kind() string {
	return constants.DriverRemote
}

func (s *Store) GetConfigPath() string {
	if u, err := url.Parse(s.baseURL); err == nil {
		return u.Redacted()
	}
	return s.baseURL
}

func responseError(resp *resty.Response) string {
	if e, ok := resp.Error().(*api.MessageResponse); ok && e.Error != "" {
		return e.Error
	}
	if body := resp.String(); body != "" {
		return fmt.Sprintf("%s: %s", resp.Status(), body)
	}
	return resp.Status()
}
