package system

import (
	"context"
	"os"

	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/tui"
	"github.com/julianstephens/alarmist/internal/tui/components/flash"
	"github.com/julianstephens/alarmist/internal/tui/state"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	flasher := flash.New()
	rt, err := ctx.Runtime(context.Background(), flasher, os.Stdout)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("Audio teardown on exit failed", "error", err)
		}
	}()

	return tui.Run(state.Deps{
		Alarms:     rt.Alarms,
		Controller: rt.Controller,
		Scheduler:  rt.Scheduler,
		Sounds:     rt.Sounds,
		Flasher:    flasher,
		Location:   ctx.Location,
		Restart:    cli.Restart,
	})
}
