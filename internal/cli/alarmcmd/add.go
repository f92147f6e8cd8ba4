// Package alarmcmd holds the alarm management commands.
package alarmcmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/julianstephens/alarmist/internal/alarms"
	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/sounds"
	"github.com/julianstephens/alarmist/internal/utils"
)

type AddCmd struct {
	Time     string `arg:"" help:"Alarm time (HH:MM, 24h)."`
	Label    string `short:"l" help:"Alarm label." default:"Alarm"`
	Repeat   string `short:"r" help:"Repeat (once|daily|weekly)." enum:"once,daily,weekly" default:"once"`
	Weekdays string `short:"w" help:"Comma-separated weekdays for weekly alarms."`
	Sound    string `short:"s" help:"Custom sound file (mp3, wav, ogg, m4a, mp4)." type:"existingfile"`
}

func (c *AddCmd) Validate() error {
	if !utils.ValidateTimeFormat(c.Time) {
		return fmt.Errorf("invalid time %q (expected HH:MM)", c.Time)
	}
	if c.Repeat == string(models.RepeatWeekly) && c.Weekdays == "" {
		return fmt.Errorf("weekdays must be specified for weekly alarms")
	}
	return nil
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	runCtx, cancel := cli.WithTimeout(context.Background())
	defer cancel()

	svc, snd, err := ctx.LoadAlarms(runCtx)
	if err != nil {
		return err
	}
	days, err := cli.ParseWeekdays(c.Weekdays)
	if err != nil {
		return err
	}

	in := alarms.Input{
		Time:       c.Time,
		Label:      c.Label,
		RepeatType: models.RepeatType(c.Repeat),
		RepeatDays: days,
	}
	if c.Sound != "" {
		if in.CustomSoundRef, in.CustomSoundName, err = importSound(snd, c.Sound); err != nil {
			return err
		}
	}

	a, err := svc.Add(runCtx, in)
	if err != nil && a.ID == "" {
		if in.CustomSoundRef != "" {
			_ = snd.Release(in.CustomSoundRef)
		}
		return err
	}
	return cli.Report(err, fmt.Sprintf("Added alarm %s at %s (%s) (ID: %s)",
		a.Label, utils.FormatClock(a.Time), a.FormatRepeat(), a.ID))
}

func importSound(snd *sounds.Store, path string) (ref, name string, err error) {
	ref, err = snd.ImportFile(afero.NewOsFs(), path)
	if err != nil {
		return "", "", fmt.Errorf("failed to import sound: %w", err)
	}
	return ref, filepath.Base(path), nil
}
