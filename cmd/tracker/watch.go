package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"meme-coin-tracker/internal/events"
	"meme-coin-tracker/internal/terminal"
)

// refreshInterval redraws relative times between scans.
const refreshInterval = 30 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the scanner and render the coin list in the terminal",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Bool("no-clear", false, "Append frames instead of redrawing the screen")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	logStartup(logger, cfg, "watch")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := newTracker(cfg, logger, nil)
	if err != nil {
		return err
	}

	noClear, _ := cmd.Flags().GetBool("no-clear")
	view := terminal.NewView(cmd.OutOrStdout(), terminal.Options{
		Interval: cfg.ScanInterval,
		Clear:    !noClear,
	})

	// Bus handlers must not block, so updates only wake the render loop.
	updates := make(chan struct{}, 1)
	unsubscribe, err := t.bus.SubscribeCoinsUpdated(func(events.CoinsUpdated) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	render := func() error {
		snap, err := t.store.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("read coins: %w", err)
		}
		return view.Render(snap)
	}

	if err := render(); err != nil {
		return err
	}
	if err := t.scheduler.Initialize(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer t.scheduler.Shutdown()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updates:
		case <-ticker.C:
		}
		if err := render(); err != nil {
			return err
		}
	}
}
