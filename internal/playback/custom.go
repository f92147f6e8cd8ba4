package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/julianstephens/alarmist/internal/audio"
	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/sounds"
)

// CustomSound loops the alarm's own sound file on the audio device. Only
// uncompressed WAV can be decoded; other imported formats fall through.
type CustomSound struct {
	resolver sounds.Resolver
	device   DeviceFunc

	mu     sync.Mutex
	dev    audio.Device
	player audio.Player
}

func NewCustomSound(resolver sounds.Resolver, device DeviceFunc) *CustomSound {
	return &CustomSound{resolver: resolver, device: device}
}

func (c *CustomSound) Name() string { return constants.LayerCustom }

func (c *CustomSound) Start(_ context.Context, alarm models.Alarm) error {
	if alarm.CustomSoundRef == "" {
		return layerError(c.Name(), errors.New("alarm has no custom sound"))
	}
	if c.resolver == nil {
		return layerError(c.Name(), errors.New("no sound storage configured"))
	}
	if ext := sounds.Ext(alarm.CustomSoundRef); ext != ".wav" {
		return layerError(c.Name(), fmt.Errorf("%w: %s", audio.ErrUnsupportedFormat, ext))
	}

	rc, err := c.resolver.Open(alarm.CustomSoundRef)
	if err != nil {
		return layerError(c.Name(), err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return layerError(c.Name(), err)
	}

	format, raw, err := audio.ParseWAV(data)
	if err != nil {
		return layerError(c.Name(), err)
	}
	pcm, err := audio.ToDevicePCM(format, raw)
	if err != nil {
		return layerError(c.Name(), err)
	}
	if len(pcm) == 0 {
		return layerError(c.Name(), errors.New("sound is empty"))
	}

	dev, err := c.device()
	if err != nil {
		return layerError(c.Name(), err)
	}
	if err := dev.Resume(); err != nil {
		return layerError(c.Name(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	c.dev = dev
	c.player = dev.NewPlayer(audio.NewLoopReader(pcm))
	c.player.Play()
	return nil
}

func (c *CustomSound) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *CustomSound) closeLocked() error {
	var err error
	if c.player != nil {
		err = c.player.Close()
		c.player = nil
	}
	if c.dev != nil {
		if serr := c.dev.Suspend(); serr != nil && err == nil {
			err = serr
		}
		c.dev = nil
	}
	return err
}
