package alarmcmd

import (
	"context"
	"fmt"

	"github.com/julianstephens/alarmist/internal/alarms"
	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/utils"
)

type EditCmd struct {
	ID         string  `arg:"" help:"Alarm ID or unique ID prefix."`
	Time       *string `short:"t" help:"New time (HH:MM, 24h)."`
	Label      *string `short:"l" help:"New label."`
	Repeat     *string `short:"r" help:"New repeat (once|daily|weekly)."`
	Weekdays   *string `short:"w" help:"Comma-separated weekdays for weekly alarms."`
	Sound      string  `short:"s" help:"Replace the custom sound with this file." type:"existingfile"`
	ClearSound bool    `help:"Remove the custom sound."`
}

func (c *EditCmd) Validate() error {
	if c.Time != nil && !utils.ValidateTimeFormat(*c.Time) {
		return fmt.Errorf("invalid time %q (expected HH:MM)", *c.Time)
	}
	if c.Sound != "" && c.ClearSound {
		return fmt.Errorf("--sound and --clear-sound cannot be used together")
	}
	return nil
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	runCtx, cancel := cli.WithTimeout(context.Background())
	defer cancel()

	svc, snd, err := ctx.LoadAlarms(runCtx)
	if err != nil {
		return err
	}
	current, err := svc.Resolve(c.ID)
	if err != nil {
		return err
	}

	in := alarms.FromAlarm(current)
	if c.Time != nil {
		in.Time = *c.Time
	}
	if c.Label != nil {
		in.Label = *c.Label
	}
	if c.Repeat != nil {
		in.RepeatType = models.RepeatType(*c.Repeat)
	}
	if c.Weekdays != nil {
		if in.RepeatDays, err = cli.ParseWeekdays(*c.Weekdays); err != nil {
			return err
		}
	}
	if c.ClearSound {
		in.CustomSoundRef, in.CustomSoundName = "", ""
	}
	if c.Sound != "" {
		if in.CustomSoundRef, in.CustomSoundName, err = importSound(snd, c.Sound); err != nil {
			return err
		}
	}

	a, err := svc.Edit(runCtx, current.ID, in)
	if err != nil && a.ID == "" {
		if c.Sound != "" {
			_ = snd.Release(in.CustomSoundRef)
		}
		return err
	}
	return cli.Report(err, fmt.Sprintf("Updated alarm %s at %s (%s)", a.Label, utils.FormatClock(a.Time), a.FormatRepeat()))
}
