package alarmcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/utils"
)

type ListCmd struct {
	JSON bool `help:"Print the alarms as JSON."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	runCtx, cancel := cli.WithTimeout(context.Background())
	defer cancel()

	svc, _, err := ctx.LoadAlarms(runCtx)
	if err != nil {
		return err
	}
	list := svc.Sorted()

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("No alarms. Add one with 'alarmist alarm add HH:MM'.")
		return nil
	}

	now := ctx.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tLABEL\tREPEAT\tSTATUS\tNEXT")
	for _, a := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(a.ID), a.Time, a.Label, a.FormatRepeat(), statusOf(a), nextRing(a, now, ctx.Location))
	}
	return w.Flush()
}

func statusOf(a models.Alarm) string {
	if !a.Enabled {
		return "Off"
	}
	return a.FormatStatus()
}

func nextRing(a models.Alarm, now time.Time, loc *time.Location) string {
	next, ok := utils.NextOccurrence(a, now, loc)
	if !ok {
		return "-"
	}
	return next.Format("Mon Jan 2 15:04")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
