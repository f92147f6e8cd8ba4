package system

import (
	"fmt"

	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/notifier"
)

// NotificationsGrantCmd allows OS notifications for ringing alarms.
type NotificationsGrantCmd struct {
	Test bool `help:"Send a test notification after granting."`
}

func (c *NotificationsGrantCmd) Run(ctx *cli.Context) error {
	if err := setPermission(ctx, constants.PermissionGranted); err != nil {
		return err
	}
	fmt.Println("OS notifications enabled")
	if c.Test {
		if err := notifier.New(ctx.Permission).Notify("alarmist notifications are working"); err != nil {
			return fmt.Errorf("test notification failed: %w", err)
		}
	}
	return nil
}

type NotificationsDenyCmd struct{}

func (c *NotificationsDenyCmd) Run(ctx *cli.Context) error {
	if err := setPermission(ctx, constants.PermissionDenied); err != nil {
		return err
	}
	fmt.Println("OS notifications disabled")
	return nil
}

type NotificationsStatusCmd struct{}

func (c *NotificationsStatusCmd) Run(ctx *cli.Context) error {
	fmt.Printf("Permission: %s\n", ctx.Permission())
	if dir, err := notifier.GetTrayAppConfigDir(); err == nil {
		fmt.Printf("Tray lockfile directory: %s\n", dir)
	}
	return nil
}

func setPermission(ctx *cli.Context, permission string) error {
	return ctx.UpdateSettings(func(s *models.Settings) {
		s.NotificationPermission = permission
	})
}
