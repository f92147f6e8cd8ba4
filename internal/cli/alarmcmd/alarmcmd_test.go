package alarmcmd

import (
	"testing"
	"time"

	"github.com/julianstephens/alarmist/internal/models"
)

func TestAddCmdValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     AddCmd
		wantErr bool
	}{
		{name: "once", cmd: AddCmd{Time: "07:30", Repeat: "once"}},
		{name: "bad time", cmd: AddCmd{Time: "7:30pm", Repeat: "once"}, wantErr: true},
		{name: "weekly without days", cmd: AddCmd{Time: "07:30", Repeat: "weekly"}, wantErr: true},
		{name: "weekly with days", cmd: AddCmd{Time: "07:30", Repeat: "weekly", Weekdays: "mon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEditCmdValidate(t *testing.T) {
	bad := "25:00"
	if err := (&EditCmd{Time: &bad}).Validate(); err == nil {
		t.Error("expected invalid time to be rejected")
	}
	if err := (&EditCmd{Sound: "a.wav", ClearSound: true}).Validate(); err == nil {
		t.Error("expected --sound with --clear-sound to be rejected")
	}
}

func TestListHelpers(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID() = %q", got)
	}
	if got := statusOf(models.Alarm{Enabled: false, Status: models.StatusPending}); got != "Off" {
		t.Errorf("statusOf(disabled) = %q", got)
	}

	now := time.Date(2026, 3, 4, 6, 0, 0, 0, time.UTC)
	a := models.Alarm{Time: "07:00", Enabled: true, Status: models.StatusPending, RepeatType: models.RepeatDaily}
	if got := nextRing(a, now, time.UTC); got != "Wed Mar 4 07:00" {
		t.Errorf("nextRing() = %q", got)
	}
	a.Enabled = false
	if got := nextRing(a, now, time.UTC); got != "-" {
		t.Errorf("nextRing(disabled) = %q", got)
	}
}
