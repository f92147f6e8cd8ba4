// Package api serves per-user alarm lists over HTTP and defines the JSON
// shapes the remote storage client speaks.
package api

import (
	"time"

	"github.com/julianstephens/alarmist/internal/models"
)

type HealthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Storage   string    `json:"storage"`
}

type AlarmsResponse struct {
	Success bool           `json:"success"`
	Alarms  []models.Alarm `json:"alarms"`
}

type SaveAlarmsRequest struct {
	Alarms []models.Alarm `json:"alarms"`
}

type StatsRequest struct {
	AlarmCount  int `json:"alarmCount"`
	TotalAlarms int `json:"totalAlarms"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
