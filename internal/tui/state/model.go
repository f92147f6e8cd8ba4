package state

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/alarmist/internal/alarms"
	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/playback"
	"github.com/julianstephens/alarmist/internal/scheduler"
	"github.com/julianstephens/alarmist/internal/sounds"
	"github.com/julianstephens/alarmist/internal/tui/components/alarmlist"
	"github.com/julianstephens/alarmist/internal/tui/components/flash"
	"github.com/julianstephens/alarmist/internal/tui/components/toast"
)

// AlarmFormModel backs the add/edit alarm form.
type AlarmFormModel struct {
	Time       string
	Label      string
	Repeat     models.RepeatType
	Days       []time.Weekday
	SoundPath  string
	ClearSound bool
	// HasSound is set when the alarm being edited already has a custom sound.
	HasSound bool
}

// Deps are the long-lived collaborators the TUI drives.
type Deps struct {
	Alarms     *alarms.Service
	Controller *playback.Controller
	Scheduler  *scheduler.Scheduler
	Sounds     *sounds.Store
	Flasher    *flash.Flasher
	Location   *time.Location
	Clock      func() time.Time
	// Restart replaces the process when audio could not be torn down.
	Restart func() error
}

// Model is the shared state for the TUI.
type Model struct {
	Deps
	State           constants.SessionState
	Keys            KeyMap
	Help            help.Model
	AlarmList       alarmlist.Model
	Toasts          toast.Model
	Form            *huh.Form
	AlarmForm       *AlarmFormModel
	EditingID       string
	AlarmToDeleteID string
	Ringing         models.Alarm
	RingLayer       string
	Testing         bool
	Now             time.Time
	Quitting        bool
	Width           int
	Height          int
}

func New(deps Deps) Model {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Flasher == nil {
		deps.Flasher = flash.New()
	}
	m := Model{
		Deps:      deps,
		State:     constants.StateAlarms,
		Keys:      DefaultKeyMap(),
		Help:      help.New(),
		AlarmList: alarmlist.New(0, 0),
		Toasts:    toast.New(),
		Now:       deps.Clock(),
	}
	m.RefreshAlarms()
	return m
}

// RefreshAlarms reloads the list from the service.
func (m *Model) RefreshAlarms() {
	m.AlarmList.SetAlarms(m.Alarms.Alarms(), m.Now, m.Location)
}

// Toast queues a toast and returns its expiry command.
func (m *Model) Toast(kind toast.Kind, text string) tea.Cmd {
	return m.Toasts.Push(kind, text)
}
