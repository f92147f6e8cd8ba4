package playback

import (
	"bytes"
	"context"
	"sync"

	"github.com/julianstephens/alarmist/internal/audio"
	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/models"
)

// Tone replays a short generated beep on the audio device every second.
type Tone struct {
	device DeviceFunc
	pcm    []byte

	mu     sync.Mutex
	dev    audio.Device
	task   *task
	player audio.Player
}

func NewTone(device DeviceFunc) *Tone {
	return &Tone{device: device, pcm: audio.PCM(audio.AlarmTone())}
}

func (t *Tone) Name() string { return constants.LayerTone }

func (t *Tone) Start(_ context.Context, _ models.Alarm) error {
	dev, err := t.device()
	if err != nil {
		return layerError(t.Name(), err)
	}
	if err := dev.Resume(); err != nil {
		return layerError(t.Name(), err)
	}

	t.mu.Lock()
	t.dev = dev
	t.mu.Unlock()

	tk := every(constants.ToneRepeatPeriod, func(int) bool {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.dev == nil {
			return false
		}
		if t.player != nil {
			if err := t.player.Close(); err != nil {
				logger.Debug("Tone player close failed", "error", err)
			}
		}
		t.player = t.dev.NewPlayer(bytes.NewReader(t.pcm))
		t.player.Play()
		return true
	})

	t.mu.Lock()
	t.task = tk
	t.mu.Unlock()
	return nil
}

func (t *Tone) Stop() error {
	t.mu.Lock()
	tk := t.task
	t.task = nil
	t.mu.Unlock()

	// The task callback takes t.mu, so it must be cancelled unlocked.
	tk.Cancel()

	t.mu.Lock()
	defer t.mu.Unlock()
	var err error
	if t.player != nil {
		err = t.player.Close()
		t.player = nil
	}
	if t.dev != nil {
		if serr := t.dev.Suspend(); serr != nil && err == nil {
			err = serr
		}
		t.dev = nil
	}
	return err
}
