package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/alarmist/internal/config"
	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/keyring"
	"github.com/julianstephens/alarmist/internal/storage"
	"github.com/julianstephens/alarmist/internal/storage/postgres"
	"github.com/julianstephens/alarmist/internal/storage/remote"
	"github.com/julianstephens/alarmist/internal/storage/sqlite"
)

var getConnectionString = keyring.GetConnectionString

// OpenPrimary builds the provider named by the storage driver.
func OpenPrimary(cfg *config.Config) (storage.Provider, error) {
	switch cfg.Storage.Driver {
	case constants.DriverSQLite:
		return sqlite.NewStore(cfg.Storage.DSN), nil
	case constants.DriverPostgres:
		dsn, err := PostgresDSN(cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return postgres.New(dsn), nil
	case constants.DriverRemote:
		return remote.New(cfg.Storage.RemoteURL, cfg.Storage.Timeout), nil
	case constants.DriverFile:
		return storage.NewJSONStore(cfg.Storage.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// PostgresDSN returns the connection string to use. A DSN from the config
// file must not carry a password; without one the keyring entry is used.
func PostgresDSN(configured string) (string, error) {
	if configured != "" {
		if err := postgres.ValidateConnString(configured); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return "", fmt.Errorf("%w: store it with 'alarmist db set' instead", err)
			}
			return "", err
		}
		return configured, nil
	}

	dsn, err := getConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("no PostgreSQL connection string: set storage.dsn or run 'alarmist db set'")
	}
	if err != nil {
		return "", err
	}
	return dsn, nil
}
