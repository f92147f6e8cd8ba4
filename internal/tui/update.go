package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/tui/components/toast"
	"github.com/julianstephens/alarmist/internal/tui/handlers"
)

// chromeHeight is the space taken by the header, flash bar, toasts and help.
const chromeHeight = 8

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.Help.Width = msg.Width
		m.AlarmList.SetSize(msg.Width-4, max(msg.Height-chromeHeight, 3))
		return m, nil
	case toast.ExpireMsg:
		m.Toasts.Expire(msg.ID)
		return m, nil
	case handlers.TickMsg:
		return m, handlers.HandleTick(&m.Model, time.Time(msg))
	case handlers.FrameMsg:
		return m, handlers.HandleFrame(&m.Model)
	case handlers.FiredMsg:
		return m, handlers.HandleFired(&m.Model, msg)
	case handlers.StoppedMsg:
		return m, handlers.HandleStopped(&m.Model, msg)
	case handlers.SnoozedMsg:
		return m, handlers.HandleSnoozed(&m.Model, msg)
	case handlers.EmergencyMsg:
		return m, handlers.HandleEmergency(&m.Model, msg)
	case handlers.MutatedMsg:
		return m, handlers.HandleMutated(&m.Model, msg)
	case handlers.PreviewDoneMsg:
		return m, handlers.HandlePreviewDone(&m.Model, msg)
	}

	if handled, cmd := handlers.HandleAlarmListMessages(&m.Model, msg); handled {
		return m, cmd
	}

	switch m.State {
	case constants.StateEditing:
		return m, handlers.HandleEditingState(&m.Model, msg)
	case constants.StateRinging:
		if msg, ok := msg.(tea.KeyMsg); ok {
			return m, handlers.HandleRingingKeys(&m.Model, msg)
		}
		return m, nil
	case constants.StateConfirmDelete:
		if msg, ok := msg.(tea.KeyMsg); ok {
			return m, handlers.HandleConfirmDelete(&m.Model, msg)
		}
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.Keys.Quit):
			m.Quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Help):
			m.Help.ShowAll = !m.Help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.AlarmList, cmd = m.AlarmList.Update(msg)
	return m, cmd
}
