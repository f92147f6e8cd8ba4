package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/julianstephens/alarmist/internal/alarms"
	"github.com/julianstephens/alarmist/internal/audio"
	"github.com/julianstephens/alarmist/internal/constants"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/notifier"
	"github.com/julianstephens/alarmist/internal/playback"
	"github.com/julianstephens/alarmist/internal/scheduler"
	"github.com/julianstephens/alarmist/internal/session"
	"github.com/julianstephens/alarmist/internal/sounds"
)

// Runtime is the set of collaborators that ring alarms.
type Runtime struct {
	Alarms     *alarms.Service
	Sounds     *sounds.Store
	Controller *playback.Controller
	Scheduler  *scheduler.Scheduler
}

// Close tears down any audio still playing.
func (r *Runtime) Close() error {
	return r.Controller.Close()
}

// SoundStore returns the custom sound store under the data directory.
func (c *Context) SoundStore() *sounds.Store {
	return sounds.NewStore(afero.NewOsFs(), filepath.Join(c.DataDir, constants.SoundsDirName))
}

// LoadAlarms opens storage and loads the signed-in user's alarms.
func (c *Context) LoadAlarms(ctx context.Context) (*alarms.Service, *sounds.Store, error) {
	if err := c.Store.Load(); err != nil {
		return nil, nil, err
	}
	snd := c.SoundStore()
	svc := alarms.New(c.Store, session.Keyring{}, alarms.WithSounds(snd))
	if err := svc.Load(ctx); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoSession):
			return nil, nil, fmt.Errorf("%w: run 'alarmist session set <user-id>' first", err)
		case errors.Is(err, apperrors.ErrPersistence):
			fmt.Fprintf(os.Stderr, "Warning: using locally cached alarms: %v\n", err)
		default:
			return nil, nil, err
		}
	}
	return svc, snd, nil
}

// Runtime loads alarms and builds the playback controller and scheduler.
// flasher receives the visual layer; bell is where the beep layer writes.
// Every ringing alarm goes to the OS notifier and then to extra.
func (c *Context) Runtime(ctx context.Context, flasher playback.Flasher, bell *os.File, extra ...playback.Alerter) (*Runtime, error) {
	svc, snd, err := c.LoadAlarms(ctx)
	if err != nil {
		return nil, err
	}

	alerters := notifier.Multi{notifier.New(c.Permission)}
	for _, a := range extra {
		alerters = append(alerters, a)
	}
	ctrl := playback.New(svc, c.Strategies(snd, flasher, bell),
		playback.WithLocation(c.Location),
		playback.WithAlerter(alerters),
	)
	sched := scheduler.New(svc, ctrl, scheduler.WithLocation(c.Location))

	return &Runtime{Alarms: svc, Sounds: snd, Controller: ctrl, Scheduler: sched}, nil
}

// Strategies builds the fallback chain in order, skipping disabled layers.
func (c *Context) Strategies(snd *sounds.Store, flasher playback.Flasher, bell *os.File) []playback.Strategy {
	player := c.Config.Playback.Player
	all := []playback.Strategy{
		playback.NewCustomSound(snd, audio.OpenDevice),
		playback.NewTone(audio.OpenDevice),
		playback.NewOscillator(func() (audio.SystemPlayer, error) {
			p, err := audio.FindSystemPlayer(player)
			if err != nil {
				return nil, err
			}
			return p, nil
		}),
		playback.NewBeep(bell),
		playback.NewVisual(flasher),
	}

	var chain []playback.Strategy
	for _, s := range all {
		if c.Config.LayerEnabled(s.Name()) {
			chain = append(chain, s)
			continue
		}
		logger.Debug("Playback layer disabled", "layer", s.Name())
	}
	return chain
}
