package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/julianstephens/alarmist/internal/audio"
	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/models"
)

// Oscillator synthesizes a pulsing two-pitch tone and pipes each pulse to a
// system audio player. It covers hosts where the audio device cannot be opened
// in-process but a sound server is still reachable.
type Oscillator struct {
	player SystemPlayerFunc

	mu     sync.Mutex
	task   *task
	cancel context.CancelFunc
}

func NewOscillator(player SystemPlayerFunc) *Oscillator {
	return &Oscillator{player: player}
}

func (o *Oscillator) Name() string { return constants.LayerOscillator }

func (o *Oscillator) Start(ctx context.Context, _ models.Alarm) error {
	p, err := o.player()
	if err != nil {
		return layerError(o.Name(), err)
	}

	pulseCtx, cancel := context.WithCancel(ctx)
	samplesPerPulse := int(constants.OscillatorPulsePeriod.Seconds() * audio.DeviceSampleRate)

	tk := every(constants.OscillatorPulsePeriod, func(i int) bool {
		freq := audio.OscillatorFrequency(i)
		wav := audio.EncodeWAV(audio.OscillatorPulse(freq, i*samplesPerPulse, audio.DeviceSampleRate), audio.DeviceSampleRate)
		if err := p.Play(pulseCtx, wav); err != nil {
			if errors.Is(err, context.Canceled) {
				return false
			}
			logger.Debug("Oscillator pulse failed", "pulse", i, "error", err)
		}
		return true
	})

	o.mu.Lock()
	o.task = tk
	o.cancel = cancel
	o.mu.Unlock()
	return nil
}

func (o *Oscillator) Stop() error {
	o.mu.Lock()
	tk, cancel := o.task, o.cancel
	o.task, o.cancel = nil, nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	tk.Cancel()
	return nil
}
