package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/afero"

	"github.com/julianstephens/alarmist/internal/alarms"
	"github.com/julianstephens/alarmist/internal/constants"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/tui/components/alarmlist"
	"github.com/julianstephens/alarmist/internal/tui/components/toast"
	"github.com/julianstephens/alarmist/internal/tui/state"
)

// HandleAlarmListMessages handles messages from the alarm list component.
func HandleAlarmListMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case alarmlist.AddAlarmMsg:
		m.EditingID = ""
		m.AlarmForm = &state.AlarmFormModel{
			Time:   m.Now.In(m.Location).Format(constants.TimeFormat),
			Repeat: models.RepeatOnce,
		}
		m.Form = NewAlarmForm(m.AlarmForm, "New alarm")
		m.State = constants.StateEditing
		return true, m.Form.Init()

	case alarmlist.EditAlarmMsg:
		m.EditingID = msg.Alarm.ID
		m.AlarmForm = &state.AlarmFormModel{
			Time:     msg.Alarm.Time,
			Label:    msg.Alarm.Label,
			Repeat:   msg.Alarm.RepeatType,
			Days:     append(msg.Alarm.RepeatDays[:0:0], msg.Alarm.RepeatDays...),
			HasSound: msg.Alarm.CustomSoundRef != "",
		}
		m.Form = NewAlarmForm(m.AlarmForm, "Edit alarm")
		m.State = constants.StateEditing
		return true, m.Form.Init()

	case alarmlist.DeleteAlarmMsg:
		m.AlarmToDeleteID = msg.ID
		m.State = constants.StateConfirmDelete
		return true, nil

	case alarmlist.ToggleAlarmMsg:
		svc := m.Alarms
		return true, func() tea.Msg {
			a, err := svc.Toggle(context.Background(), msg.ID)
			state := "disabled"
			if a.Enabled {
				state = "enabled"
			}
			return MutatedMsg{Success: fmt.Sprintf("Alarm %s", state), Err: err}
		}

	case alarmlist.SoundTestMsg:
		if m.Testing {
			return true, nil
		}
		m.Testing = true
		target := models.Alarm{Label: "Sound test"}
		if msg.Alarm != nil {
			target = *msg.Alarm
		}
		ctrl := m.Controller
		return true, tea.Batch(Frame(), func() tea.Msg {
			layer, err := ctrl.Preview(context.Background(), target, constants.SoundTestDuration)
			return PreviewDoneMsg{Layer: layer, Err: err}
		})
	}
	return false, nil
}

// HandleEditingState drives the add/edit form.
func HandleEditingState(m *state.Model, msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.State = constants.StateAlarms
		m.Form = nil
		return nil
	}

	form, cmd := m.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Form = f
	}

	switch m.Form.State {
	case huh.StateCompleted:
		m.State = constants.StateAlarms
		save := saveAlarmCmd(m, *m.AlarmForm, m.EditingID)
		m.Form = nil
		return tea.Batch(cmd, save)
	case huh.StateAborted:
		m.State = constants.StateAlarms
		m.Form = nil
	}
	return cmd
}

func saveAlarmCmd(m *state.Model, fm state.AlarmFormModel, editingID string) tea.Cmd {
	svc, store := m.Alarms, m.Sounds
	return func() tea.Msg {
		ctx := context.Background()
		var current models.Alarm
		if editingID != "" {
			var err error
			if current, err = svc.Get(editingID); err != nil {
				return MutatedMsg{Err: err}
			}
		}

		in := alarms.Input{
			Time:            strings.TrimSpace(fm.Time),
			Label:           fm.Label,
			RepeatType:      fm.Repeat,
			RepeatDays:      fm.Days,
			CustomSoundRef:  current.CustomSoundRef,
			CustomSoundName: current.CustomSoundName,
		}
		if fm.Repeat != models.RepeatWeekly {
			in.RepeatDays = nil
		}
		if fm.ClearSound {
			in.CustomSoundRef, in.CustomSoundName = "", ""
		}
		if p := strings.TrimSpace(fm.SoundPath); p != "" {
			ref, err := store.ImportFile(afero.NewOsFs(), p)
			if err != nil {
				return MutatedMsg{Err: err}
			}
			in.CustomSoundRef = ref
			in.CustomSoundName = baseName(p)
		}

		var (
			saved   models.Alarm
			err     error
			success = "Alarm updated"
		)
		if editingID == "" {
			saved, err = svc.Add(ctx, in)
			success = "Alarm added"
		} else {
			saved, err = svc.Edit(ctx, editingID, in)
		}
		if err != nil && saved.ID == "" && in.CustomSoundRef != current.CustomSoundRef {
			_ = store.Release(in.CustomSoundRef)
		}
		return MutatedMsg{Success: success, Err: err}
	}
}

// HandleConfirmDelete handles the delete confirmation prompt.
func HandleConfirmDelete(m *state.Model, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.Keys.Confirm):
		id := m.AlarmToDeleteID
		m.AlarmToDeleteID = ""
		m.State = constants.StateAlarms
		svc := m.Alarms
		return func() tea.Msg {
			return MutatedMsg{Success: "Alarm deleted", Err: svc.Delete(context.Background(), id)}
		}
	case key.Matches(msg, m.Keys.Cancel):
		m.AlarmToDeleteID = ""
		m.State = constants.StateAlarms
	}
	return nil
}

func HandleMutated(m *state.Model, msg MutatedMsg) tea.Cmd {
	m.RefreshAlarms()
	switch {
	case msg.Err == nil:
		return m.Toast(toast.Success, msg.Success)
	case errors.Is(msg.Err, apperrors.ErrPersistence):
		return m.Toast(toast.Error, msg.Success+", but it was only saved locally")
	default:
		return m.Toast(toast.Error, apperrors.Format(msg.Err))
	}
}

func HandlePreviewDone(m *state.Model, msg PreviewDoneMsg) tea.Cmd {
	m.Testing = false
	if msg.Err != nil {
		if errors.Is(msg.Err, apperrors.ErrBusy) {
			return m.Toast(toast.Info, "An alarm is ringing")
		}
		if cmd := restartIfStuck(m, msg.Err); cmd != nil {
			return cmd
		}
		return m.Toast(toast.Error, apperrors.Format(msg.Err))
	}
	return m.Toast(toast.Info, fmt.Sprintf("Sound test played via %s", msg.Layer))
}

func baseName(p string) string {
	p = strings.TrimRight(p, `/\`)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
