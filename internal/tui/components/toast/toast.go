// Package toast shows short-lived success, info and error messages.
package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/alarmist/internal/constants"
)

type Kind int

const (
	Info Kind = iota
	Success
	Error
)

var styles = map[Kind]lipgloss.Style{
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Padding(0, 1),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Padding(0, 1),
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Padding(0, 1),
}

// ExpireMsg removes the toast with the given id.
type ExpireMsg struct {
	ID int
}

type toast struct {
	id   int
	kind Kind
	text string
}

type Model struct {
	next   int
	toasts []toast
	ttl    time.Duration
}

func New() Model {
	return Model{ttl: constants.ToastDuration}
}

// Push adds a toast and returns the command that expires it.
func (m *Model) Push(kind Kind, text string) tea.Cmd {
	m.next++
	id := m.next
	m.toasts = append(m.toasts, toast{id: id, kind: kind, text: text})
	return tea.Tick(m.ttl, func(time.Time) tea.Msg {
		return ExpireMsg{ID: id}
	})
}

func (m *Model) Expire(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

func (m Model) Len() int {
	return len(m.toasts)
}

func (m Model) View() string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, len(m.toasts))
	for i, t := range m.toasts {
		prefix := "•"
		switch t.kind {
		case Success:
			prefix = "✓"
		case Error:
			prefix = "✗"
		}
		lines[i] = styles[t.kind].Render(prefix + " " + t.text)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
