package alarmcmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/utils"
)

type DeleteCmd struct {
	ID  string `arg:"" help:"Alarm ID or unique ID prefix."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	runCtx, cancel := cli.WithTimeout(context.Background())
	defer cancel()

	svc, _, err := ctx.LoadAlarms(runCtx)
	if err != nil {
		return err
	}
	a, err := svc.Resolve(c.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete alarm %q at %s?", a.Label, utils.FormatClock(a.Time))).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			WithTheme(huh.ThemeDracula()).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	return cli.Report(svc.Delete(runCtx, a.ID), fmt.Sprintf("Deleted alarm: %s (ID: %s)", a.Label, a.ID))
}
