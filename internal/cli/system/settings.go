package system

import (
	"fmt"

	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/config"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/utils"
)

// TimezoneCmd shows or sets the timezone alarms ring in when the config file
// does not pin one.
type TimezoneCmd struct {
	Zone string `arg:"" optional:"" help:"IANA timezone name, or Local."`
}

func (c *TimezoneCmd) Run(ctx *cli.Context) error {
	if c.Zone == "" {
		fmt.Printf("Timezone: %s\n", ctx.Location)
		return nil
	}
	if !utils.ValidateTimezone(c.Zone) {
		return fmt.Errorf("unknown timezone %q", c.Zone)
	}
	if err := ctx.UpdateSettings(func(s *models.Settings) { s.Timezone = c.Zone }); err != nil {
		return err
	}
	fmt.Printf("Timezone set to %s\n", c.Zone)
	return nil
}

// ConfigCmd prints the effective configuration and the supported
// environment variables.
type ConfigCmd struct{}

func (c *ConfigCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config
	fmt.Printf("Data directory:  %s\n", ctx.DataDir)
	fmt.Printf("Storage driver:  %s\n", cfg.Storage.Driver)
	fmt.Printf("Storage:         %s\n", ctx.Store.GetConfigPath())
	fmt.Printf("Local cache:     %s\n", cfg.Storage.CachePath)
	fmt.Printf("Timezone:        %s\n", ctx.Location)
	fmt.Printf("API address:     %s\n", cfg.API.Addr)
	if len(cfg.Playback.DisabledLayers) > 0 {
		fmt.Printf("Disabled layers: %v\n", cfg.Playback.DisabledLayers)
	}
	fmt.Println()
	fmt.Println(config.Description())
	return nil
}
