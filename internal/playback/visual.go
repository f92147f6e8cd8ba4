package playback

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/models"
)

// Flasher shows or hides the alert flash color. Implementations must not block.
type Flasher interface {
	Flash(on bool)
	Clear()
}

// Visual alternates the flash color a bounded number of times and then
// clears itself. It is the last layer and never fails.
type Visual struct {
	flasher Flasher

	mu   sync.Mutex
	task *task
}

func NewVisual(f Flasher) *Visual {
	return &Visual{flasher: f}
}

func (v *Visual) Name() string { return constants.LayerVisual }

func (v *Visual) Start(_ context.Context, _ models.Alarm) error {
	tk := every(constants.FlashInterval, func(i int) bool {
		if i >= constants.MaxFlashes {
			v.flasher.Clear()
			return false
		}
		v.flasher.Flash(i%2 == 0)
		return true
	})

	v.mu.Lock()
	v.task = tk
	v.mu.Unlock()
	return nil
}

func (v *Visual) Stop() error {
	v.mu.Lock()
	tk := v.task
	v.task = nil
	v.mu.Unlock()
	if tk == nil {
		return nil
	}
	tk.Cancel()
	v.flasher.Clear()
	return nil
}

// ConsoleFlasher paints a full-width bar on a plain terminal line.
type ConsoleFlasher struct {
	Out   io.Writer
	Width int

	mu  sync.Mutex
	on  *color.Color
	off *color.Color
}

func NewConsoleFlasher(out io.Writer) *ConsoleFlasher {
	return &ConsoleFlasher{
		Out:   out,
		Width: 40,
		on:    color.New(color.BgRed, color.FgWhite, color.Bold),
		off:   color.New(color.BgWhite, color.FgRed, color.Bold),
	}
}

func (f *ConsoleFlasher) Flash(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.off
	if on {
		c = f.on
	}
	fmt.Fprint(f.Out, "\r"+c.Sprintf("%-*s", f.Width, " ALARM"))
}

func (f *ConsoleFlasher) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.Out, "\r%-*s\r", f.Width, "")
}
