package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/tui/handlers"
	"github.com/julianstephens/alarmist/internal/tui/state"
)

type Model struct {
	state.Model
}

func NewModel(deps state.Deps) Model {
	return Model{Model: state.New(deps)}
}

func (m Model) Init() tea.Cmd {
	return handlers.Tick()
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (m Model) ShortHelp() []key.Binding {
	switch m.State {
	case constants.StateRinging:
		return []key.Binding{m.Keys.Stop, m.Keys.Snooze, m.Keys.Emergency}
	case constants.StateConfirmDelete:
		return []key.Binding{m.Keys.Confirm, m.Keys.Cancel}
	default:
		return []key.Binding{m.Keys.Add, m.Keys.Edit, m.Keys.Toggle, m.Keys.Help, m.Keys.Quit}
	}
}

// FullHelp returns keybindings for the expanded help view.
func (m Model) FullHelp() [][]key.Binding {
	switch m.State {
	case constants.StateRinging, constants.StateConfirmDelete:
		return [][]key.Binding{m.ShortHelp()}
	default:
		return [][]key.Binding{
			{m.Keys.Add, m.Keys.Edit, m.Keys.Delete},
			{m.Keys.Toggle, m.Keys.SoundTest},
			{m.Keys.Help, m.Keys.Quit},
		}
	}
}

// Run starts the full-screen TUI and blocks until it exits.
func Run(deps state.Deps) error {
	p := tea.NewProgram(NewModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
