package models

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/julianstephens/alarmist/internal/errors"
)

func TestAlarm_Validate(t *testing.T) {
	tests := []struct {
		name      string
		alarm     Alarm
		wantErr   bool
		wantField string
	}{
		{
			name:  "valid daily alarm",
			alarm: Alarm{Time: "07:00", RepeatType: RepeatDaily},
		},
		{
			name:  "valid one-time alarm",
			alarm: Alarm{Time: "23:59", RepeatType: RepeatOnce},
		},
		{
			name: "valid weekly alarm",
			alarm: Alarm{
				Time:       "07:00",
				RepeatType: RepeatWeekly,
				RepeatDays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			},
		},
		{
			name:      "missing time",
			alarm:     Alarm{RepeatType: RepeatOnce},
			wantErr:   true,
			wantField: "time",
		},
		{
			name:      "invalid time",
			alarm:     Alarm{Time: "25:00", RepeatType: RepeatOnce},
			wantErr:   true,
			wantField: "time",
		},
		{
			name:      "weekly without days",
			alarm:     Alarm{Time: "07:00", RepeatType: RepeatWeekly},
			wantErr:   true,
			wantField: "repeatDays",
		},
		{
			name: "weekly with out-of-range day",
			alarm: Alarm{
				Time:       "07:00",
				RepeatType: RepeatWeekly,
				RepeatDays: []time.Weekday{7},
			},
			wantErr:   true,
			wantField: "repeatDays",
		},
		{
			name:      "unknown repeat type",
			alarm:     Alarm{Time: "07:00", RepeatType: "hourly"},
			wantErr:   true,
			wantField: "repeatType",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alarm.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("Validate() error %v does not match ErrValidation", err)
			}
			var ve *apperrors.ValidationError
			if errors.As(err, &ve) && ve.Field != tt.wantField {
				t.Errorf("Validate() field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestAlarm_Normalize(t *testing.T) {
	weekly := Alarm{
		RepeatType: RepeatWeekly,
		RepeatDays: []time.Weekday{time.Friday, time.Monday, time.Friday, time.Wednesday},
	}
	weekly.Normalize()
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(weekly.RepeatDays) != len(want) {
		t.Fatalf("RepeatDays = %v, want %v", weekly.RepeatDays, want)
	}
	for i := range want {
		if weekly.RepeatDays[i] != want[i] {
			t.Errorf("RepeatDays[%d] = %v, want %v", i, weekly.RepeatDays[i], want[i])
		}
	}

	daily := Alarm{RepeatType: RepeatDaily, RepeatDays: []time.Weekday{time.Monday}}
	daily.Normalize()
	if len(daily.RepeatDays) != 0 {
		t.Errorf("daily alarm kept repeat days %v", daily.RepeatDays)
	}
}

func TestNewSnoozed(t *testing.T) {
	fired := time.Date(2026, 3, 4, 7, 0, 12, 0, time.UTC)
	parent := Alarm{
		ID:              "parent",
		Time:            "07:00",
		Label:           "Wake up",
		Enabled:         true,
		Status:          StatusSnoozed,
		RepeatType:      RepeatWeekly,
		RepeatDays:      []time.Weekday{time.Wednesday},
		SnoozeCount:     2,
		CustomSoundRef:  "sound:abc.wav",
		CustomSoundName: "birds.wav",
	}

	derived := NewSnoozed("child", parent, fired.Add(5*time.Minute), fired)

	if derived.Time != "07:05" {
		t.Errorf("Time = %q, want %q", derived.Time, "07:05")
	}
	if derived.RepeatType != RepeatOnce {
		t.Errorf("RepeatType = %q, want once", derived.RepeatType)
	}
	if derived.SnoozeCount != 0 {
		t.Errorf("SnoozeCount = %d, want 0", derived.SnoozeCount)
	}
	if derived.OriginalAlarmID != parent.ID {
		t.Errorf("OriginalAlarmID = %q, want %q", derived.OriginalAlarmID, parent.ID)
	}
	if derived.Label != "Wake up (Snoozed)" {
		t.Errorf("Label = %q", derived.Label)
	}
	if derived.CustomSoundRef != parent.CustomSoundRef || derived.CustomSoundName != parent.CustomSoundName {
		t.Errorf("custom sound not carried over: %+v", derived)
	}
	if derived.Status != StatusPending || !derived.Enabled {
		t.Errorf("derived alarm should be pending and enabled, got %s enabled=%v", derived.Status, derived.Enabled)
	}
	if len(derived.RepeatDays) != 0 {
		t.Errorf("RepeatDays = %v, want empty", derived.RepeatDays)
	}
}

func TestAlarm_CloneDoesNotAlias(t *testing.T) {
	now := time.Now()
	orig := Alarm{RepeatDays: []time.Weekday{time.Monday}, TriggeredAt: &now}
	c := orig.Clone()
	c.RepeatDays[0] = time.Sunday
	*c.TriggeredAt = now.Add(time.Hour)

	if orig.RepeatDays[0] != time.Monday {
		t.Error("Clone shares RepeatDays backing array")
	}
	if !orig.TriggeredAt.Equal(now) {
		t.Error("Clone shares TriggeredAt pointer")
	}
}

func TestAlarm_FormatRepeatAndStatus(t *testing.T) {
	a := Alarm{RepeatType: RepeatWeekly, RepeatDays: []time.Weekday{time.Monday, time.Friday}}
	if got := a.FormatRepeat(); got != "Weekly: Mon, Fri" {
		t.Errorf("FormatRepeat() = %q", got)
	}
	a = Alarm{Status: StatusSnoozed, SnoozeCount: 2}
	if got := a.FormatStatus(); got != "Snoozed (2x)" {
		t.Errorf("FormatStatus() = %q", got)
	}
	if !a.IsRinging() {
		t.Error("snoozed alarm should report IsRinging")
	}
}

func TestStatsFor(t *testing.T) {
	now := time.Now()
	alarms := []Alarm{
		{Enabled: true, Status: StatusPending},
		{Enabled: false, Status: StatusPending},
		{Enabled: true, Status: StatusCompleted},
	}
	s := StatsFor(alarms, now)
	if s.AlarmCount != 1 || s.TotalAlarms != 3 {
		t.Errorf("StatsFor() = %+v, want 1 active of 3", s)
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	s := Settings{NotificationPermission: "maybe"}
	ApplyDefaultSettings(&s)
	if s.NotificationPermission != "default" || s.Timezone != "Local" {
		t.Errorf("ApplyDefaultSettings() = %+v", s)
	}
}
