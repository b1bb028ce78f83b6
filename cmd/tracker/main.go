// Package main provides the tracker CLI.
//
// Usage:
//
//	tracker serve  [--addr :8080] [--interval 5m] [--seed N]
//	tracker watch  [--interval 5m] [--seed N]
//	tracker sample [-n 10] [--seed N]
package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"meme-coin-tracker/internal/config"
	"meme-coin-tracker/internal/events"
	"meme-coin-tracker/internal/generator"
	"meme-coin-tracker/internal/logging"
	"meme-coin-tracker/internal/observability"
	"meme-coin-tracker/internal/scheduler"
	"meme-coin-tracker/internal/storage/memory"
)

var rootCmd = &cobra.Command{
	Use:          "tracker",
	Short:        "Track synthetic meme coin launches and their rug-pull risk",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().Duration("interval", 0, "Scan interval (default from config, 5m)")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Random seed for reproducible coins (0 uses system entropy)")

	rootCmd.AddCommand(serveCmd, watchCmd, sampleCmd)
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat, _ = cmd.Flags().GetString("log-format")
	}
	if cmd.Flags().Changed("interval") {
		cfg.ScanInterval, _ = cmd.Flags().GetDuration("interval")
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("addr") {
		cfg.HTTPAddr, _ = cmd.Flags().GetString("addr")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSource returns a seeded source when seed is set, system entropy otherwise.
func newSource(seed uint64) generator.Source {
	if seed != 0 {
		return generator.NewSource(seed)
	}
	return generator.NewCryptoSource()
}

// tracker is the generator, store, and scheduler wired together.
type tracker struct {
	store     *memory.CoinStore
	bus       *events.Bus
	metrics   *observability.Metrics
	scheduler *scheduler.Scheduler
}

func newTracker(cfg *config.Config, logger logrus.FieldLogger, reg prometheus.Registerer) (*tracker, error) {
	t := &tracker{
		store: memory.NewCoinStore(cfg.StoreCapacity),
		bus:   events.NewBus(),
	}
	if reg != nil {
		t.metrics = observability.NewMetrics(cfg.MetricsNamespace, reg)
	}

	gen := generator.New(generator.Options{
		Source: newSource(cfg.Seed),
		Names:  cfg.Names,
	})

	sched, err := scheduler.New(scheduler.Options{
		Generator: gen,
		Store:     t.store,
		Publisher: t.bus,
		Metrics:   t.metrics,
		Interval:  cfg.ScanInterval,
		Logger:    logging.Component(logger, "scheduler"),
	})
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	t.scheduler = sched
	return t, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*logrus.Logger, error) {
	logger, err := logging.New(w, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return logger, nil
}

func logStartup(logger logrus.FieldLogger, cfg *config.Config, cmd string) {
	logger.WithFields(logrus.Fields{
		"command":  cmd,
		"interval": cfg.ScanInterval,
		"capacity": cfg.StoreCapacity,
		"seeded":   cfg.Seed != 0,
	}).Info("Starting tracker")
}
