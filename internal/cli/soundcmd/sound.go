// Package soundcmd holds the custom sound commands.
package soundcmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/playback"
)

type ImportCmd struct {
	Path string `arg:"" help:"Sound file to import (mp3, wav, ogg, m4a, mp4; max 10 MB)." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	ref, err := ctx.SoundStore().ImportFile(afero.NewOsFs(), c.Path)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %s as %s\n", c.Path, ref)
	return nil
}

// TestCmd plays a sound through the fallback chain for a few seconds.
type TestCmd struct {
	Alarm    string        `help:"Play the sound of this alarm (ID or prefix)."`
	Ref      string        `help:"Play an imported sound reference."`
	Duration time.Duration `help:"How long to play." default:"3s"`
}

func (c *TestCmd) Run(ctx *cli.Context) error {
	runCtx, cancel := context.WithTimeout(context.Background(), c.Duration+10*time.Second)
	defer cancel()

	target := models.Alarm{Label: "Sound test", CustomSoundRef: c.Ref}
	snd := ctx.SoundStore()
	if c.Alarm != "" {
		svc, _, err := ctx.LoadAlarms(runCtx)
		if err != nil {
			return err
		}
		if target, err = svc.Resolve(c.Alarm); err != nil {
			return err
		}
	}

	flasher := playback.NewConsoleFlasher(os.Stdout)
	ctrl := playback.New(nil, ctx.Strategies(snd, flasher, os.Stdout))
	defer ctrl.Close()

	layer, err := ctrl.Preview(runCtx, target, c.Duration)
	flasher.Clear()
	if err != nil {
		return err
	}
	if layer == "" {
		return fmt.Errorf("no playback layer could start")
	}
	fmt.Printf("Played via the %s layer\n", layer)
	if target.CustomSoundRef != "" && layer != constants.LayerCustom {
		fmt.Fprintln(os.Stderr, "Warning: the custom sound could not be played, a fallback layer was used")
	}
	return nil
}
