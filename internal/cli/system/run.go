package system

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/alarmist/internal/cli"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/notifier"
	"github.com/julianstephens/alarmist/internal/playback"
	"github.com/julianstephens/alarmist/internal/utils"
)

// RunCmd rings alarms without the TUI. While an alarm rings, type "s" to
// snooze, "!" for the emergency stop, or anything else to stop.
type RunCmd struct{}

func (c *RunCmd) Run(ctx *cli.Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flasher := playback.NewConsoleFlasher(os.Stdout)
	rt, err := ctx.Runtime(sigCtx, flasher, os.Stdout, consoleAlerter{})
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("Audio teardown on exit failed", "error", err)
		}
		flasher.Clear()
	}()

	banner := color.New(color.FgCyan, color.Bold)
	banner.Printf("alarmist is watching %d alarm(s). Press Ctrl+C to exit.\n", len(rt.Alarms.Alarms()))

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return rt.Scheduler.Run(gctx)
	})
	g.Go(func() error {
		return readCommands(gctx, rt)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type consoleAlerter struct{}

func (consoleAlerter) PresentAlert(label, clock string) {
	alert := color.New(color.FgRed, color.Bold)
	alert.Printf("\n%s\n", notifier.AlertText(label, clock))
	fmt.Println("Press enter to stop, s+enter to snooze, !+enter for emergency stop.")
}

func readCommands(ctx context.Context, rt *cli.Runtime) error {
	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				<-ctx.Done()
				return ctx.Err()
			}
			if err := handleCommand(ctx, rt, strings.TrimSpace(line)); err != nil {
				return err
			}
		}
	}
}

func handleCommand(ctx context.Context, rt *cli.Runtime, line string) error {
	cur, _, ok := rt.Controller.Current()
	if !ok {
		return nil
	}

	switch line {
	case "s":
		derived, err := rt.Controller.Snooze(ctx)
		if err != nil && !errors.Is(err, apperrors.ErrPersistence) {
			return escalate(rt, err)
		}
		fmt.Printf("\nSnoozed until %s\n", utils.FormatClock(derived.Time))
	case "!":
		_ = rt.Controller.Stop(ctx)
		if err := rt.Controller.EmergencyStop(); err != nil {
			return restart(err)
		}
		fmt.Println("\nAll audio stopped")
	default:
		if err := rt.Controller.Stop(ctx); err != nil && !errors.Is(err, apperrors.ErrPersistence) {
			return escalate(rt, err)
		}
		fmt.Printf("\nStopped %s (%s)\n", cur.Label, utils.FormatClock(cur.Time))
	}
	return nil
}

func escalate(rt *cli.Runtime, err error) error {
	logger.Warn("Stop failed, escalating to emergency teardown", "error", err)
	if eerr := rt.Controller.EmergencyStop(); eerr != nil {
		return restart(eerr)
	}
	return nil
}

func restart(err error) error {
	logger.Error("Audio teardown failed, restarting", "error", err)
	if rerr := cli.Restart(); rerr != nil {
		return fmt.Errorf("%w (restart failed: %v)", err, rerr)
	}
	return nil
}
