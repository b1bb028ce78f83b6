package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"meme-coin-tracker/internal/httpapi"
	"meme-coin-tracker/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scanner and serve the coin list over HTTP and websocket",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "HTTP listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	logStartup(logger, cfg, "serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	t, err := newTracker(cfg, logger, reg)
	if err != nil {
		return err
	}

	srv, err := httpapi.NewServer(httpapi.Options{
		Store:     t.store,
		Scheduler: t.scheduler,
		Events:    t.bus,
		Metrics:   t.metrics,
		Gatherer:  reg,
		Logger:    logging.Component(logger, "http"),
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("create http server: %w", err)
	}

	if err := t.scheduler.Initialize(ctx); err != nil {
		srv.Close()
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer t.scheduler.Shutdown()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		err = <-errCh
	case err = <-errCh:
	}

	if shutdownErr := t.scheduler.Shutdown(); shutdownErr != nil {
		logger.WithError(shutdownErr).Warn("Scheduler shutdown failed")
	}
	if err != nil {
		return err
	}
	logger.Info("Tracker stopped")
	return nil
}
