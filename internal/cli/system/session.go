package system

import (
	"fmt"

	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/session"
)

// SessionSetCmd stores the signed-in user handed over by the sign-in flow.
type SessionSetCmd struct {
	UserID string `arg:"" help:"User ID of the signed-in user."`
	Name   string `help:"Display name."`
}

func (c *SessionSetCmd) Run(ctx *cli.Context) error {
	if err := session.Save(session.User{ID: c.UserID, DisplayName: c.Name}); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", c.UserID)
	return nil
}

type SessionClearCmd struct{}

func (c *SessionClearCmd) Run(ctx *cli.Context) error {
	if err := session.Clear(); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

type SessionShowCmd struct{}

func (c *SessionShowCmd) Run(ctx *cli.Context) error {
	u, ok := session.Keyring{}.CurrentUser()
	if !ok {
		fmt.Println("Not signed in")
		return nil
	}
	if u.DisplayName != "" {
		fmt.Printf("Signed in as %s (%s)\n", u.DisplayName, u.ID)
		return nil
	}
	fmt.Printf("Signed in as %s\n", u.ID)
	return nil
}
