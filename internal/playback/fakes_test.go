package playback

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/julianstephens/alarmist/internal/audio"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/models"
)

type fakeStrategy struct {
	name     string
	startErr error
	stopErr  error
	starts   atomic.Int32
	stops    atomic.Int32
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Start(context.Context, models.Alarm) error {
	f.starts.Add(1)
	return f.startErr
}

func (f *fakeStrategy) Stop() error {
	f.stops.Add(1)
	return f.stopErr
}

type fakeStore struct {
	mu       sync.Mutex
	alarms   map[string]models.Alarm
	derived  []models.Alarm
	saveErr  error
	mutateCt int
	// beforeMutate runs outside the store lock ahead of every Mutate.
	beforeMutate func(id string)
}

func newFakeStore(alarms ...models.Alarm) *fakeStore {
	s := &fakeStore{alarms: map[string]models.Alarm{}}
	for _, a := range alarms {
		s.alarms[a.ID] = a
	}
	return s
}

func (s *fakeStore) Mutate(_ context.Context, id string, fn func(*models.Alarm)) (models.Alarm, error) {
	if s.beforeMutate != nil {
		s.beforeMutate(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alarms[id]
	if !ok {
		return models.Alarm{}, apperrors.NotFound("alarm", id)
	}
	fn(&a)
	s.alarms[id] = a
	s.mutateCt++
	if s.saveErr != nil {
		return a, s.saveErr
	}
	return a, nil
}

func (s *fakeStore) AddDerived(_ context.Context, a models.Alarm) (models.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarms[a.ID] = a
	s.derived = append(s.derived, a)
	return a, s.saveErr
}

func (s *fakeStore) get(id string) models.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alarms[id]
}

type fakeAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (a *fakeAlerter) PresentAlert(label, clock string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, label+" "+clock)
}

type fakePlayer struct {
	dev     *fakeDevice
	playing atomic.Bool
	closed  atomic.Bool
}

func (p *fakePlayer) Play()           { p.playing.Store(true) }
func (p *fakePlayer) IsPlaying() bool { return p.playing.Load() }
func (p *fakePlayer) Close() error {
	p.playing.Store(false)
	p.closed.Store(true)
	return nil
}

type fakeDevice struct {
	mu        sync.Mutex
	players   []*fakePlayer
	reads     [][]byte
	suspended atomic.Int32
	resumed   atomic.Int32
}

func (d *fakeDevice) NewPlayer(r io.Reader) audio.Player {
	buf := make([]byte, 64)
	n, _ := io.ReadFull(r, buf)
	p := &fakePlayer{dev: d}
	d.mu.Lock()
	d.players = append(d.players, p)
	d.reads = append(d.reads, buf[:n])
	d.mu.Unlock()
	return p
}

func (d *fakeDevice) Suspend() error { d.suspended.Add(1); return nil }
func (d *fakeDevice) Resume() error  { d.resumed.Add(1); return nil }

func (d *fakeDevice) playerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.players)
}

func (d *fakeDevice) anyPlaying() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.players {
		if p.IsPlaying() {
			return true
		}
	}
	return false
}

func deviceOf(d *fakeDevice) DeviceFunc {
	return func() (audio.Device, error) { return d, nil }
}

var errNoDevice = errors.New("no audio device")

func noDevice() (audio.Device, error) { return nil, errNoDevice }

type fakeSystemPlayer struct {
	mu    sync.Mutex
	clips [][]byte
}

func (p *fakeSystemPlayer) Play(ctx context.Context, wav []byte) error {
	p.mu.Lock()
	p.clips = append(p.clips, wav)
	p.mu.Unlock()
	return ctx.Err()
}

func (p *fakeSystemPlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clips)
}

type fakeFlasher struct {
	flashes atomic.Int32
	clears  atomic.Int32
	on      atomic.Bool
}

func (f *fakeFlasher) Flash(on bool) {
	f.flashes.Add(1)
	f.on.Store(on)
}

func (f *fakeFlasher) Clear() {
	f.clears.Add(1)
	f.on.Store(false)
}
