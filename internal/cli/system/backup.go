package system

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/alarmist/internal/backup"
	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/constants"
)

func backupManager(ctx *cli.Context) (*backup.Manager, error) {
	if ctx.Config.Storage.Driver != constants.DriverSQLite {
		return nil, fmt.Errorf("backups are only supported for the sqlite driver")
	}
	return backup.NewManager(ctx.Config.Storage.DSN), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	m, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path, err := m.Create()
	if err != nil {
		return err
	}
	fmt.Printf("Created backup: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	m, err := backupManager(ctx)
	if err != nil {
		return err
	}
	list, err := m.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Printf("No backups in %s\n", m.Dir())
		return nil
	}
	for _, b := range list {
		fmt.Printf("%s  %s  %d bytes\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), b.Size)
	}
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" help:"Backup file name or path."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	m, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path := c.File
	if filepath.Base(path) == path {
		path = filepath.Join(m.Dir(), path)
	}
	if err := ctx.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	previous, err := m.Restore(path)
	if err != nil {
		return err
	}
	if previous != "" {
		fmt.Printf("Previous database saved as: %s\n", filepath.Base(previous))
	}
	fmt.Printf("Restored database from: %s\n", path)
	return nil
}
