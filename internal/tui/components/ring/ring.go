// Package ring renders the modal shown while an alarm rings.
package ring

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/utils"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 4).
			Align(lipgloss.Center)

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// View renders the modal for alarm, which engaged playback through layer.
func View(alarm models.Alarm, layer string, width, height int) string {
	lines := []string{
		clockStyle.Render("⏰ " + utils.FormatClock(alarm.Time)),
		"",
		labelStyle.Render(alarm.Label),
	}
	if alarm.SnoozeCount > 0 {
		lines = append(lines, hintStyle.Render(fmt.Sprintf("Snoozed %d time(s)", alarm.SnoozeCount)))
	}
	if alarm.OriginalAlarmID != "" {
		lines = append(lines, hintStyle.Render("Snoozed alarm"))
	}
	if layer != "" {
		lines = append(lines, hintStyle.Render("Sound: "+layer))
	}
	lines = append(lines,
		"",
		"[esc/space/enter] Stop   [s] Snooze 5 min",
		hintStyle.Render("[!] Emergency stop"),
	)

	box := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
