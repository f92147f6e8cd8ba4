package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/alarmist/internal/constants"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/notifier"
	"github.com/julianstephens/alarmist/internal/playback"
	"github.com/julianstephens/alarmist/internal/tui/components/toast"
	"github.com/julianstephens/alarmist/internal/tui/state"
	"github.com/julianstephens/alarmist/internal/utils"
)

func enterRinging(m *state.Model, alarm models.Alarm, layer string) {
	m.Ringing = alarm
	m.RingLayer = layer
	m.Form = nil
	m.State = constants.StateRinging
}

// HandleFired opens the ring modal for the alarm the scheduler triggered.
func HandleFired(m *state.Model, msg FiredMsg) tea.Cmd {
	cur, layer, ok := m.Controller.Current()
	if !ok {
		return nil
	}
	enterRinging(m, cur, layer)
	m.RefreshAlarms()
	return tea.Batch(Frame(), m.Toast(toast.Info, notifier.AlertText(cur.Label, cur.Time)))
}

// HandleRingingKeys maps stop, snooze and emergency keys while ringing.
func HandleRingingKeys(m *state.Model, msg tea.KeyMsg) tea.Cmd {
	ctrl := m.Controller
	switch {
	case key.Matches(msg, m.Keys.Stop):
		alarm := m.Ringing
		return func() tea.Msg {
			return StoppedMsg{Alarm: alarm, Err: stopOrEscalate(ctrl)}
		}
	case key.Matches(msg, m.Keys.Snooze):
		return func() tea.Msg {
			derived, err := ctrl.Snooze(context.Background())
			return SnoozedMsg{Derived: derived, Err: err}
		}
	case key.Matches(msg, m.Keys.Emergency), msg.String() == "ctrl+c":
		return func() tea.Msg {
			if err := ctrl.Stop(context.Background()); err != nil {
				logger.Warn("Stop before emergency teardown failed", "error", err)
			}
			return EmergencyMsg{Err: ctrl.EmergencyStop()}
		}
	}
	return nil
}

// stopOrEscalate stops the ringing alarm. When audio refuses to stop it falls
// back to the emergency teardown, whose failure is returned as
// ErrTeardownFailed.
func stopOrEscalate(ctrl *playback.Controller) error {
	err := ctrl.Stop(context.Background())
	if err == nil || (errors.Is(err, apperrors.ErrPersistence) && !hasOtherCause(err)) {
		return err
	}
	logger.Warn("Stop failed, escalating to emergency teardown", "error", err)
	if eerr := ctrl.EmergencyStop(); eerr != nil {
		return eerr
	}
	return err
}

func hasOtherCause(err error) bool {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return false
	}
	for _, e := range joined.Unwrap() {
		if e != nil && !errors.Is(e, apperrors.ErrPersistence) {
			return true
		}
	}
	return false
}

func HandleStopped(m *state.Model, msg StoppedMsg) tea.Cmd {
	m.State = constants.StateAlarms
	m.RefreshAlarms()
	if cmd := restartIfStuck(m, msg.Err); cmd != nil {
		return cmd
	}
	switch {
	case msg.Err == nil:
		return m.Toast(toast.Success, "Alarm stopped")
	case errors.Is(msg.Err, apperrors.ErrPersistence):
		return m.Toast(toast.Error, "Alarm stopped, but saving failed")
	default:
		return m.Toast(toast.Error, fmt.Sprintf("Failed to stop audio cleanly: %v", msg.Err))
	}
}

func HandleSnoozed(m *state.Model, msg SnoozedMsg) tea.Cmd {
	m.State = constants.StateAlarms
	m.RefreshAlarms()
	if msg.Err != nil && !errors.Is(msg.Err, apperrors.ErrPersistence) {
		if cmd := restartIfStuck(m, msg.Err); cmd != nil {
			return cmd
		}
		return m.Toast(toast.Error, fmt.Sprintf("Snooze failed: %v", msg.Err))
	}
	text := fmt.Sprintf("Snoozed until %s", utils.FormatClock(msg.Derived.Time))
	if msg.Err != nil {
		return m.Toast(toast.Error, text+" (not saved)")
	}
	return m.Toast(toast.Info, text)
}

func HandleEmergency(m *state.Model, msg EmergencyMsg) tea.Cmd {
	m.State = constants.StateAlarms
	m.Flasher.Clear()
	m.RefreshAlarms()
	if cmd := restartIfStuck(m, msg.Err); cmd != nil {
		return cmd
	}
	return m.Toast(toast.Info, "All audio stopped")
}

// restartIfStuck replaces the process when audio could not be released.
func restartIfStuck(m *state.Model, err error) tea.Cmd {
	if !errors.Is(err, apperrors.ErrTeardownFailed) {
		return nil
	}
	logger.Error("Audio teardown failed, restarting", "error", err)
	if m.Restart == nil {
		return m.Toast(toast.Error, "Audio could not be stopped; restart alarmist")
	}
	restart := m.Restart
	return tea.Sequence(tea.ExitAltScreen, func() tea.Msg {
		if rerr := restart(); rerr != nil {
			logger.Error("Restart failed", "error", rerr)
		}
		return tea.Quit()
	})
}
