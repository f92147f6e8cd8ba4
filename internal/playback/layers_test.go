package playback

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/alarmist/internal/audio"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/sounds"
)

func TestCustomSound(t *testing.T) {
	store := sounds.NewStore(afero.NewMemMapFs(), "/sounds")
	wavRef, err := store.Import("chime.wav", bytes.NewReader(audio.EncodeWAV(audio.Sine(440, 100*time.Millisecond, 0.5, 8000), 8000)))
	require.NoError(t, err)
	mp3Ref, err := store.Import("song.mp3", strings.NewReader("ID3....."))
	require.NoError(t, err)

	tests := []struct {
		name    string
		ref     string
		device  DeviceFunc
		wantErr bool
	}{
		{name: "wav loops on device", ref: wavRef},
		{name: "no custom sound", ref: "", wantErr: true},
		{name: "compressed format falls through", ref: mp3Ref, wantErr: true},
		{name: "missing file", ref: "sound:gone.wav", wantErr: true},
		{name: "device unavailable", ref: wavRef, device: noDevice, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{}
			devFn := tt.device
			if devFn == nil {
				devFn = deviceOf(dev)
			}
			layer := NewCustomSound(store, devFn)

			err := layer.Start(context.Background(), models.Alarm{CustomSoundRef: tt.ref})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrPlayback))
				assert.NoError(t, layer.Stop())
				return
			}
			require.NoError(t, err)
			assert.True(t, dev.anyPlaying())

			require.NoError(t, layer.Stop())
			assert.False(t, dev.anyPlaying())
			assert.EqualValues(t, 1, dev.suspended.Load())
		})
	}
}

func TestToneReplaysUntilStopped(t *testing.T) {
	dev := &fakeDevice{}
	layer := NewTone(deviceOf(dev))

	require.NoError(t, layer.Start(context.Background(), models.Alarm{}))
	require.Eventually(t, func() bool { return dev.playerCount() >= 1 }, time.Second, time.Millisecond)
	assert.True(t, dev.anyPlaying())

	require.NoError(t, layer.Stop())
	assert.False(t, dev.anyPlaying())
	count := dev.playerCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, count, dev.playerCount(), "no replays after stop")

	assert.NoError(t, layer.Stop(), "second stop is harmless")
}

func TestToneWithoutDevice(t *testing.T) {
	layer := NewTone(noDevice)
	err := layer.Start(context.Background(), models.Alarm{})
	assert.ErrorIs(t, err, apperrors.ErrPlayback)
	assert.NoError(t, layer.Stop())
}

func TestOscillator(t *testing.T) {
	p := &fakeSystemPlayer{}
	layer := NewOscillator(func() (audio.SystemPlayer, error) { return p, nil })

	require.NoError(t, layer.Start(context.Background(), models.Alarm{}))
	require.Eventually(t, func() bool { return p.count() >= 1 }, time.Second, time.Millisecond)
	require.NoError(t, layer.Stop())

	count := p.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, count, p.count())

	p.mu.Lock()
	_, _, err := audio.ParseWAV(p.clips[0])
	p.mu.Unlock()
	assert.NoError(t, err, "pulses are valid WAV clips")
}

func TestOscillatorWithoutPlayer(t *testing.T) {
	layer := NewOscillator(func() (audio.SystemPlayer, error) { return nil, audio.ErrNoSystemPlayer })
	assert.ErrorIs(t, layer.Start(context.Background(), models.Alarm{}), apperrors.ErrPlayback)
	assert.NoError(t, layer.Stop())
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBeep(t *testing.T) {
	t.Run("rings the bell on a terminal", func(t *testing.T) {
		out := &syncBuffer{}
		layer := &Beep{out: out, isTerminal: func() bool { return true }}
		require.NoError(t, layer.Start(context.Background(), models.Alarm{}))
		require.Eventually(t, func() bool { return strings.Contains(out.String(), "\a") }, time.Second, time.Millisecond)
		assert.NoError(t, layer.Stop())
	})

	t.Run("fails when not a terminal", func(t *testing.T) {
		layer := &Beep{out: &syncBuffer{}, isTerminal: func() bool { return false }}
		assert.ErrorIs(t, layer.Start(context.Background(), models.Alarm{}), apperrors.ErrPlayback)
		assert.NoError(t, layer.Stop())
	})
}

func TestVisualAlwaysStartsAndClears(t *testing.T) {
	f := &fakeFlasher{}
	layer := NewVisual(f)

	require.NoError(t, layer.Start(context.Background(), models.Alarm{}))
	require.Eventually(t, func() bool { return f.flashes.Load() >= 1 }, time.Second, time.Millisecond)
	assert.True(t, f.on.Load(), "first flash shows the alert color")

	require.NoError(t, layer.Stop())
	assert.False(t, f.on.Load())
	assert.GreaterOrEqual(t, f.clears.Load(), int32(1))
}

func TestVisualStopWithoutStartLeavesDisplayAlone(t *testing.T) {
	f := &fakeFlasher{}
	layer := NewVisual(f)

	require.NoError(t, layer.Stop())
	require.NoError(t, layer.Stop())
	assert.EqualValues(t, 0, f.clears.Load())

	require.NoError(t, layer.Start(context.Background(), models.Alarm{}))
	require.NoError(t, layer.Stop())
	require.NoError(t, layer.Stop())
	assert.EqualValues(t, 1, f.clears.Load(), "only the stop that ended a flash clears")
}

func TestConsoleFlasher(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFlasher(&buf)
	f.Flash(true)
	f.Flash(false)
	f.Clear()
	assert.Contains(t, buf.String(), "ALARM")
	assert.True(t, strings.HasSuffix(buf.String(), "\r"))
}

func TestTaskCancel(t *testing.T) {
	var mu sync.Mutex
	ticks := 0
	tk := every(time.Millisecond, func(int) bool {
		mu.Lock()
		ticks++
		mu.Unlock()
		return true
	})
	time.Sleep(10 * time.Millisecond)
	tk.Cancel()
	tk.Cancel()

	mu.Lock()
	after := ticks
	mu.Unlock()
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, after, ticks)
	assert.Greater(t, ticks, 0)

	var nilTask *task
	nilTask.Cancel()
}
