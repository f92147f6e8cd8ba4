package handlers

import (
	"time"

	"github.com/julianstephens/alarmist/internal/models"
)

// TickMsg drives the clock and the scheduler once per second.
type TickMsg time.Time

// FrameMsg redraws the screen while the display flashes.
type FrameMsg time.Time

// FiredMsg reports that the scheduler handed an alarm to playback.
type FiredMsg struct {
	Alarm models.Alarm
}

type StoppedMsg struct {
	Alarm models.Alarm
	Err   error
}

type SnoozedMsg struct {
	Derived models.Alarm
	Err     error
}

type EmergencyMsg struct {
	Err error
}

type PreviewDoneMsg struct {
	Layer string
	Err   error
}

// MutatedMsg reports the outcome of an add, edit, toggle or delete.
type MutatedMsg struct {
	Success string
	Err     error
}
