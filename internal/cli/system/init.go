// Package system holds the setup, session and long-running commands.
package system

import (
	"fmt"

	"github.com/julianstephens/alarmist/internal/cli"
)

type InitCmd struct{}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized alarmist storage (%s) at: %s\n", ctx.Store.Kind(), ctx.Store.GetConfigPath())
	fmt.Printf("Local cache: %s\n", ctx.Cache.GetConfigPath())
	return nil
}
