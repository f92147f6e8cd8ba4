package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/tui/components/ring"
)

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var content string
	switch m.State {
	case constants.StateEditing:
		if m.Form != nil {
			content = docStyle.Render(m.Form.View())
		}
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	case constants.StateRinging:
		content = ring.View(m.Ringing, m.RingLayer, m.Width, max(m.Height-chromeHeight, 10))
	default:
		content = docStyle.Render(m.AlarmList.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.Flasher.Bar(m.Width),
		content,
		m.Toasts.View(),
		m.Help.View(m),
	)
}

func (m Model) viewHeader() string {
	now := m.Now.In(m.Location)
	status := ""
	if m.Testing {
		status = dimStyle.Render(" testing sound...")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render("alarmist"),
		clockStyle.Render(now.Format("Mon Jan 2  15:04:05")),
		status,
	)
}

func (m Model) viewConfirmDelete() string {
	label := "this alarm"
	if a, err := m.Alarms.Get(m.AlarmToDeleteID); err == nil && a.Label != "" {
		label = "\"" + a.Label + "\""
	}
	return lipgloss.Place(m.Width, max(m.Height-chromeHeight, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete "+label+"?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
