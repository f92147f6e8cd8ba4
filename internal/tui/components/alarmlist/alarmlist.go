package alarmlist

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/utils"
)

type AddAlarmMsg struct{}

type EditAlarmMsg struct {
	Alarm models.Alarm
}

type DeleteAlarmMsg struct {
	ID string
}

type ToggleAlarmMsg struct {
	ID string
}

type SoundTestMsg struct {
	Alarm *models.Alarm
}

// Section groups alarms in the list.
type Section int

const (
	SectionRinging Section = iota
	SectionActive
	SectionInactive
)

func SectionOf(a models.Alarm) Section {
	switch {
	case a.IsRinging():
		return SectionRinging
	case a.Enabled && a.Status != models.StatusCompleted:
		return SectionActive
	default:
		return SectionInactive
	}
}

type Item struct {
	Alarm models.Alarm
	Next  time.Time
}

func (i Item) Title() string {
	title := fmt.Sprintf("⏰ %s  %s", utils.FormatClock(i.Alarm.Time), i.Alarm.Label)
	switch SectionOf(i.Alarm) {
	case SectionRinging:
		title = "[RINGING] " + title
	case SectionInactive:
		if i.Alarm.Status == models.StatusCompleted {
			title = "[DONE] " + title
		} else {
			title = "[OFF] " + title
		}
	}
	return title
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s · %s", i.Alarm.FormatRepeat(), i.Alarm.FormatStatus())
	if i.Alarm.CustomSoundName != "" {
		desc += " · ♪ " + i.Alarm.CustomSoundName
	}
	if !i.Next.IsZero() {
		desc += " · next " + i.Next.Format("Mon 15:04")
	}
	return desc
}

func (i Item) FilterValue() string { return i.Alarm.Label }

type KeyMap struct {
	Add       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Toggle    key.Binding
	SoundTest key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "t"), key.WithHelp("space", "toggle")),
		SoundTest: key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "test sound")),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Alarms"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("alarm", "alarms")

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Toggle}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Toggle, keys.SoundTest}
	}

	return Model{list: l, keys: keys}
}

// Order sorts alarms into sections (ringing, active, inactive) and by time
// within each section.
func Order(alarms []models.Alarm) []models.Alarm {
	out := append([]models.Alarm(nil), alarms...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := SectionOf(out[i]), SectionOf(out[j])
		if si != sj {
			return si < sj
		}
		return out[i].Time < out[j].Time
	})
	return out
}

// SetAlarms replaces the items, keeping the selection on the same alarm.
func (m *Model) SetAlarms(alarms []models.Alarm, now time.Time, loc *time.Location) {
	selected := ""
	if item, ok := m.list.SelectedItem().(Item); ok {
		selected = item.Alarm.ID
	}

	ordered := Order(alarms)
	items := make([]list.Item, len(ordered))
	index := 0
	for i, a := range ordered {
		next, _ := utils.NextOccurrence(a, now, loc)
		items[i] = Item{Alarm: a, Next: next}
		if a.ID == selected {
			index = i
		}
	}
	m.list.SetItems(items)
	m.list.Select(index)
}

// Selected returns the highlighted alarm.
func (m Model) Selected() (models.Alarm, bool) {
	item, ok := m.list.SelectedItem().(Item)
	return item.Alarm, ok
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddAlarmMsg{} }
		case key.Matches(msg, m.keys.SoundTest):
			var target *models.Alarm
			if a, ok := m.Selected(); ok {
				target = &a
			}
			return m, func() tea.Msg { return SoundTestMsg{Alarm: target} }
		}
		if a, ok := m.Selected(); ok {
			switch {
			case key.Matches(msg, m.keys.Edit):
				return m, func() tea.Msg { return EditAlarmMsg{Alarm: a} }
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteAlarmMsg{ID: a.ID} }
			case key.Matches(msg, m.keys.Toggle):
				return m, func() tea.Msg { return ToggleAlarmMsg{ID: a.ID} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "No alarms yet. Press a to add one."
	}
	return m.list.View()
}
