// Package flash is the visual playback layer's surface in the TUI. Playback
// goroutines write the state with atomics and the view reads it on render.
package flash

import (
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/alarmist/internal/constants"
)

const (
	off int32 = iota
	red
	white
)

type Flasher struct {
	state atomic.Int32
}

func New() *Flasher {
	return &Flasher{}
}

func (f *Flasher) Flash(on bool) {
	if on {
		f.state.Store(red)
		return
	}
	f.state.Store(white)
}

func (f *Flasher) Clear() {
	f.state.Store(off)
}

// Active reports whether the screen is currently flashing.
func (f *Flasher) Active() bool {
	return f != nil && f.state.Load() != off
}

// Bar renders a full-width strip in the current flash color, or "" when idle.
func (f *Flasher) Bar(width int) string {
	if f == nil {
		return ""
	}
	var bg string
	switch f.state.Load() {
	case red:
		bg = constants.FlashColorOn
	case white:
		bg = constants.FlashColorOff
	default:
		return ""
	}
	if width <= 0 {
		width = 40
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color("#000000")).
		Bold(true).
		Width(width).
		Align(lipgloss.Center).
		Render(strings.Repeat(" ", 2) + "ALARM" + strings.Repeat(" ", 2))
}
