package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// EncodeDays serializes repeat days for the repeat_days column.
func EncodeDays(days []time.Weekday) (string, error) {
	if days == nil {
		days = []time.Weekday{}
	}
	data, err := json.Marshal(days)
	if err != nil {
		return "", fmt.Errorf("failed to encode repeat days: %w", err)
	}
	return string(data), nil
}

// DecodeDays parses the repeat_days column. An empty column yields no days.
func DecodeDays(raw string) ([]time.Weekday, error) {
	days := []time.Weekday{}
	if raw == "" {
		return days, nil
	}
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil, fmt.Errorf("failed to decode repeat days %q: %w", raw, err)
	}
	return days, nil
}
