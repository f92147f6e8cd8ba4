package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/storage"
)

func setupServer(t *testing.T) (*httptest.Server, *storage.JSONStore) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, store.Init())
	srv := httptest.NewServer(NewServer(store, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, []byte(buf.String())
}

func TestHealth(t *testing.T) {
	srv, _ := setupServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/api/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var h HealthResponse
	require.NoError(t, json.Unmarshal(body, &h))
	assert.True(t, h.Success)
	assert.Equal(t, constants.DriverFile, h.Storage)
	assert.False(t, h.Timestamp.IsZero())
}

func TestAlarmsRoundTrip(t *testing.T) {
	srv, store := setupServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/users/u1/alarms", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"alarms":[]}`, string(body))

	payload := `{"alarms":[{"id":"a","time":"07:00","label":"Wake","enabled":true,"status":"pending","repeatType":"weekly","repeatDays":[1,3],"snoozeCount":0,"createdAt":"2026-03-01T00:00:00Z"}]}`
	resp, body = do(t, http.MethodPut, srv.URL+"/api/users/u1/alarms", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var msg MessageResponse
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.True(t, msg.Success)
	assert.Equal(t, "Alarms saved successfully", msg.Message)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/users/u1/alarms", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got AlarmsResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Alarms, 1)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, got.Alarms[0].RepeatDays)

	stored, err := store.LoadAlarms(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestPutAlarmsRejectsBadInput(t *testing.T) {
	srv, _ := setupServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"missing alarms", `{}`},
		{"null alarms", `{"alarms":null}`},
		{"alarms not array", `{"alarms":{"id":"a"}}`},
		{"invalid alarm", `{"alarms":[{"id":"a","time":"25:00","repeatType":"once"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPut, srv.URL+"/api/users/u1/alarms", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var msg MessageResponse
			require.NoError(t, json.Unmarshal(body, &msg))
			assert.False(t, msg.Success)
			assert.NotEmpty(t, msg.Error)
		})
	}
}

func TestPutStats(t *testing.T) {
	srv, store := setupServer(t)

	resp, _ := do(t, http.MethodPut, srv.URL+"/api/users/u1/stats", `{"alarmCount":2,"totalAlarms":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats, err := store.Stats("u1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.AlarmCount)
	assert.Equal(t, 3, stats.TotalAlarms)

	resp, _ = do(t, http.MethodPut, srv.URL+"/api/users/u1/stats", `{"alarmCount":4,"totalAlarms":3}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := setupServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/users/u1/alarms", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := setupServer(t)
	resp, _ := do(t, http.MethodGet, srv.URL+"/api/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type brokenStore struct{ storage.JSONStore }

var errBroken = errors.New("db down")

func (b *brokenStore) Init() error  { return errBroken }
func (b *brokenStore) Kind() string { return constants.DriverPostgres }
func (b *brokenStore) LoadAlarms(context.Context, string) ([]models.Alarm, error) {
	return nil, errBroken
}

func TestSelectStoreFallsBack(t *testing.T) {
	fallback := storage.NewJSONStore(filepath.Join(t.TempDir(), "users.json"))
	got, err := SelectStore(&brokenStore{}, fallback)
	require.NoError(t, err)
	assert.Equal(t, constants.DriverFile, got.Kind())

	primary := storage.NewJSONStore(filepath.Join(t.TempDir(), "primary.json"))
	got, err = SelectStore(primary, fallback)
	require.NoError(t, err)
	assert.Same(t, primary, got)
}

func TestLoadFailureReturns500(t *testing.T) {
	srv := httptest.NewServer(NewServer(&brokenStore{}, nil).Handler())
	defer srv.Close()
	resp, body := do(t, http.MethodGet, srv.URL+"/api/users/u1/alarms", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "Failed to load alarms")
}
