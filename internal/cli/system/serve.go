package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/alarmist/internal/api"
	"github.com/julianstephens/alarmist/internal/cli"
	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/storage"
)

// ServeCmd runs the REST backend that the remote storage driver talks to.
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to api.addr from the config)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config
	if cfg.Storage.Driver == constants.DriverRemote {
		return fmt.Errorf("serve needs a database or file storage driver, not %q", cfg.Storage.Driver)
	}

	var primary storage.Provider
	if cfg.Storage.Driver != constants.DriverFile {
		p, err := cli.OpenPrimary(cfg)
		if err != nil {
			logger.Warn("Database not configured, using file storage", "error", err)
		} else {
			primary = p
		}
	}
	fallback := storage.NewJSONStore(cfg.API.FallbackPath)
	if cfg.Storage.Driver == constants.DriverFile {
		fallback = storage.NewJSONStore(cfg.Storage.DSN)
	}

	store, err := api.SelectStore(primary, fallback)
	if err != nil {
		return err
	}
	defer store.Close()

	addr := c.Addr
	if addr == "" {
		addr = cfg.API.Addr
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(store, cfg.API.AllowedOrigins)
	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return srv.Run(gctx, addr)
	})
	fmt.Printf("alarmist API listening on http://%s (storage: %s)\n", addr, store.Kind())
	return g.Wait()
}
