package handlers

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/tui/state"
)

func Tick() tea.Cmd {
	return tea.Tick(constants.TickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func Frame() tea.Cmd {
	return tea.Tick(constants.FlashInterval/2, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// HandleTick advances the clock, keeps the ring modal in step with the
// controller and runs one scheduler evaluation off the UI goroutine.
func HandleTick(m *state.Model, now time.Time) tea.Cmd {
	m.Now = now
	cmds := []tea.Cmd{Tick()}

	if m.State == constants.StateRinging {
		if _, _, ok := m.Controller.Current(); !ok {
			m.State = constants.StateAlarms
		}
	} else if cur, layer, ok := m.Controller.Current(); ok {
		enterRinging(m, cur, layer)
		cmds = append(cmds, Frame())
	}
	m.RefreshAlarms()

	sched := m.Scheduler
	cmds = append(cmds, func() tea.Msg {
		alarm, fired := sched.Tick(context.Background(), now)
		if !fired {
			return nil
		}
		return FiredMsg{Alarm: alarm}
	})
	return tea.Batch(cmds...)
}

// HandleFrame keeps redrawing while the flasher or ring modal is visible.
func HandleFrame(m *state.Model) tea.Cmd {
	if m.Flasher.Active() || m.State == constants.StateRinging {
		return Frame()
	}
	return nil
}
