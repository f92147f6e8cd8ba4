package playback

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/models"
)

const bell = "\a"

// Beep rings the terminal bell every two seconds.
type Beep struct {
	out        io.Writer
	isTerminal func() bool

	mu   sync.Mutex
	task *task
}

// NewBeep rings the bell on f when f is a terminal.
func NewBeep(f *os.File) *Beep {
	return &Beep{
		out: f,
		isTerminal: func() bool {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		},
	}
}

func (b *Beep) Name() string { return constants.LayerBeep }

func (b *Beep) Start(_ context.Context, _ models.Alarm) error {
	if b.out == nil || !b.isTerminal() {
		return layerError(b.Name(), errors.New("output is not a terminal"))
	}
	tk := every(constants.BeepRepeatPeriod, func(int) bool {
		if _, err := io.WriteString(b.out, bell); err != nil {
			logger.Debug("Bell write failed", "error", err)
			return false
		}
		return true
	})

	b.mu.Lock()
	b.task = tk
	b.mu.Unlock()
	return nil
}

func (b *Beep) Stop() error {
	b.mu.Lock()
	tk := b.task
	b.task = nil
	b.mu.Unlock()
	tk.Cancel()
	return nil
}
