package alarmcmd

import (
	"context"
	"fmt"

	"github.com/julianstephens/alarmist/internal/cli"
)

type ToggleCmd struct {
	ID string `arg:"" help:"Alarm ID or unique ID prefix."`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	runCtx, cancel := cli.WithTimeout(context.Background())
	defer cancel()

	svc, _, err := ctx.LoadAlarms(runCtx)
	if err != nil {
		return err
	}
	current, err := svc.Resolve(c.ID)
	if err != nil {
		return err
	}

	a, err := svc.Toggle(runCtx, current.ID)
	if err != nil && a.ID == "" {
		return err
	}
	state := "disabled"
	if a.Enabled {
		state = "enabled"
	}
	return cli.Report(err, fmt.Sprintf("Alarm %s %s", a.Label, state))
}
