package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/julianstephens/alarmist/internal/constants"
)

type (
	Config struct {
		Storage  `yaml:"storage"`
		Playback `yaml:"playback"`
		API      `yaml:"api"`

		Timezone string `yaml:"timezone" env:"ALARMIST_TIMEZONE" env-default:"Local"`
	}

	Storage struct {
		// Driver selects the primary store: sqlite, postgres, remote, or file.
		Driver    string        `yaml:"driver"     env:"ALARMIST_STORAGE_DRIVER" env-default:"sqlite"`
		DSN       string        `yaml:"dsn"        env:"ALARMIST_STORAGE_DSN"`
		CachePath string        `yaml:"cache_path" env:"ALARMIST_CACHE_PATH"`
		RemoteURL string        `yaml:"remote_url" env:"ALARMIST_REMOTE_URL"     env-default:"http://127.0.0.1:3001"`
		Timeout   time.Duration `yaml:"timeout"    env:"ALARMIST_REMOTE_TIMEOUT" env-default:"5s"`
	}

	Playback struct {
		// Player is the system audio player used by the oscillator layer; empty
		// means the first of paplay, aplay, afplay found on PATH.
		Player         string   `yaml:"player"          env:"ALARMIST_PLAYER"`
		DisabledLayers []string `yaml:"disabled_layers" env:"ALARMIST_DISABLED_LAYERS" env-separator:","`
	}

	API struct {
		Addr           string   `yaml:"addr"            env:"ALARMIST_API_ADDR"  env-default:"127.0.0.1:3001"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"ALARMIST_API_CORS" env-separator:"," env-default:"*"`
		// FallbackPath is the flat-file store the server uses when the database
		// is unreachable.
		FallbackPath string `yaml:"fallback_path" env:"ALARMIST_API_FALLBACK"`
	}
)

var validDrivers = []string{
	constants.DriverSQLite,
	constants.DriverPostgres,
	constants.DriverRemote,
	constants.DriverFile,
}

// Load reads path when it exists and overlays ALARMIST_* environment
// variables. A missing file is not an error; defaults and env apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else if path != "" && !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", statErr)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks fields cleanenv cannot express with tags.
func (c *Config) Validate() error {
	valid := false
	for _, d := range validDrivers {
		if c.Storage.Driver == d {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid storage driver %q (must be one of %s)", c.Storage.Driver, strings.Join(validDrivers, ", "))
	}
	if c.Storage.Driver == constants.DriverRemote && c.Storage.RemoteURL == "" {
		return fmt.Errorf("storage.remote_url is required for the remote driver")
	}
	if c.Storage.Timeout <= 0 {
		c.Storage.Timeout = constants.DefaultRemoteTimeout
	}
	return nil
}

// ApplyDataDir fills in file locations that default to the data directory.
func (c *Config) ApplyDataDir(dataDir string) {
	if c.Storage.DSN == "" {
		switch c.Storage.Driver {
		case constants.DriverSQLite:
			c.Storage.DSN = filepath.Join(dataDir, constants.DefaultDBFile)
		case constants.DriverFile:
			c.Storage.DSN = filepath.Join(dataDir, constants.DefaultFileStore)
		}
	}
	if c.Storage.CachePath == "" {
		c.Storage.CachePath = filepath.Join(dataDir, constants.DefaultCacheFile)
	}
	if c.API.FallbackPath == "" {
		c.API.FallbackPath = filepath.Join(dataDir, "users.json")
	}
}

// LayerEnabled reports whether the named playback layer is not disabled.
func (c *Config) LayerEnabled(name string) bool {
	for _, l := range c.Playback.DisabledLayers {
		if strings.EqualFold(strings.TrimSpace(l), name) {
			return false
		}
	}
	return true
}

// Description renders the env var help text for the config.
func Description() string {
	header := "alarmist configuration"
	help, err := cleanenv.GetDescription(&Config{}, &header)
	if err != nil {
		return header
	}
	return help
}
