package main

import (
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/cli/alarmcmd"
	"github.com/julianstephens/alarmist/internal/cli/soundcmd"
	"github.com/julianstephens/alarmist/internal/cli/system"
	"github.com/julianstephens/alarmist/internal/config"
	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path (defaults to config.yml in the data directory)." type:"path"`
	DataDir string `help:"Directory for the database, cache, sounds and logs." type:"path" default:"${data_dir}"`
	Debug   bool   `help:"Enable debug logging."`

	Init  system.InitCmd  `cmd:"" help:"Initialize alarmist storage."`
	Tui   system.TuiCmd   `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Run   system.RunCmd   `cmd:"" help:"Ring alarms headlessly in this terminal."`
	Serve system.ServeCmd `cmd:"" help:"Run the REST backend for remote storage."`
	Alarm struct {
		Add    alarmcmd.AddCmd    `cmd:"" help:"Add a new alarm."`
		Edit   alarmcmd.EditCmd   `cmd:"" help:"Edit an existing alarm."`
		Delete alarmcmd.DeleteCmd `cmd:"" help:"Delete an alarm."`
		Toggle alarmcmd.ToggleCmd `cmd:"" help:"Enable or disable an alarm."`
		List   alarmcmd.ListCmd   `cmd:"" help:"List alarms and when they ring next." default:"1"`
	} `cmd:"" help:"Manage alarms."`
	Sound struct {
		Import soundcmd.ImportCmd `cmd:"" help:"Import a custom alarm sound."`
		Test   soundcmd.TestCmd   `cmd:"" help:"Play the alarm sound for a few seconds."`
	} `cmd:"" help:"Manage alarm sounds."`
	Session struct {
		Set   system.SessionSetCmd   `cmd:"" help:"Store the signed-in user."`
		Clear system.SessionClearCmd `cmd:"" help:"Forget the signed-in user."`
		Show  system.SessionShowCmd  `cmd:"" help:"Show the signed-in user." default:"1"`
	} `cmd:"" help:"Manage the user session."`
	Notifications struct {
		Grant  system.NotificationsGrantCmd  `cmd:"" help:"Allow OS notifications for ringing alarms."`
		Deny   system.NotificationsDenyCmd   `cmd:"" help:"Disallow OS notifications."`
		Status system.NotificationsStatusCmd `cmd:"" help:"Show the notification permission." default:"1"`
	} `cmd:"" help:"Manage OS notifications."`
	DB struct {
		Set   system.DBSetCmd   `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Clear system.DBClearCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" name:"db" help:"Manage database credentials."`
	Backup struct {
		Create  system.BackupCreateCmd  `cmd:"" help:"Back up the SQLite database." default:"1"`
		List    system.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore system.BackupRestoreCmd `cmd:"" help:"Restore the database from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Timezone system.TimezoneCmd `cmd:"" help:"Show or set the alarm timezone."`
	Settings system.ConfigCmd   `cmd:"" name:"config" help:"Show the effective configuration."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Terminal alarm clock with a layered sound fallback chain"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":  constants.Version,
			"data_dir": constants.DefaultDataDir,
		},
	)

	// The TUI owns the terminal, so debug output only goes to the log file.
	quiet := ctx.Command() == "tui"
	if err := logger.Init(logger.Config{Debug: CLI.Debug, DataDir: CLI.DataDir, Quiet: quiet}); err != nil {
		errors.Fatal(err)
	}

	configPath := CLI.Config
	if configPath == "" {
		configPath = filepath.Join(CLI.DataDir, constants.DefaultConfigFile)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx, err := cli.NewContext(cfg, CLI.DataDir, CLI.Debug)
	if err != nil {
		errors.Fatal(err)
	}
	defer appCtx.Close()

	if err := ctx.Run(appCtx); err != nil {
		appCtx.Close()
		errors.Fatal(err)
	}
}
