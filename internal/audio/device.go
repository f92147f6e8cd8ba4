package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/logger"
)

// DeviceSampleRate is the rate the shared output device is opened at. All PCM
// handed to a Device must be signed 16-bit little-endian mono at this rate.
const DeviceSampleRate = constants.ToneSampleRate

// Player is a single voice on a Device.
type Player interface {
	Play()
	IsPlaying() bool
	Close() error
}

// Device is an audio output that can mix several players.
type Device interface {
	NewPlayer(r io.Reader) Player
	Suspend() error
	Resume() error
}

type otoDevice struct {
	ctx *oto.Context
}

func (d *otoDevice) NewPlayer(r io.Reader) Player { return d.ctx.NewPlayer(r) }
func (d *otoDevice) Suspend() error               { return d.ctx.Suspend() }
func (d *otoDevice) Resume() error                { return d.ctx.Resume() }

var (
	sharedDevice     Device
	sharedDeviceErr  error
	sharedDeviceOnce sync.Once
)

// OpenDevice returns the process-wide output device. oto allows a single
// context per process, so the first result (device or error) is reused.
func OpenDevice() (Device, error) {
	sharedDeviceOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   DeviceSampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			sharedDeviceErr = fmt.Errorf("failed to open audio device: %w", err)
			logger.Debug("Audio device unavailable", "error", err)
			return
		}
		<-ready
		sharedDevice = &otoDevice{ctx: ctx}
		logger.Debug("Audio device ready", "sample_rate", DeviceSampleRate)
	})
	return sharedDevice, sharedDeviceErr
}

// LoopReader yields pcm over and over until closed by the player.
type LoopReader struct {
	pcm []byte
	off int
}

func NewLoopReader(pcm []byte) *LoopReader {
	return &LoopReader{pcm: pcm}
}

func (l *LoopReader) Read(p []byte) (int, error) {
	if len(l.pcm) == 0 {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) {
		c := copy(p[n:], l.pcm[l.off:])
		n += c
		l.off = (l.off + c) % len(l.pcm)
	}
	return n, nil
}

// PCM converts rendered samples to device byte order.
func PCM(samples []int16) []byte {
	return samplesToBytes(samples)
}
