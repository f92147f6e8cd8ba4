package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/keyring"
	"github.com/julianstephens/alarmist/internal/storage/postgres"
)

// DBSetCmd stores the PostgreSQL connection string in the OS keyring.
type DBSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in the keyring."`
}

func (cmd *DBSetCmd) Run(ctx *cli.Context) error {
	if !strings.HasPrefix(cmd.ConnectionString, "postgres://") &&
		!strings.HasPrefix(cmd.ConnectionString, "postgresql://") &&
		!strings.Contains(cmd.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if err := postgres.ValidateConnString(cmd.ConnectionString); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
		return fmt.Errorf("invalid connection string: %w", err)
	}

	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return err
	}
	fmt.Println("Connection string stored in the OS keyring.")
	fmt.Println("Set storage.driver to postgres and leave storage.dsn empty to use it.")
	return nil
}

type DBClearCmd struct{}

func (cmd *DBClearCmd) Run(ctx *cli.Context) error {
	err := keyring.DeleteConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		fmt.Println("No connection string stored.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("Connection string removed from the OS keyring.")
	return nil
}
