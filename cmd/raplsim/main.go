package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/raplsim/internal/config"
	"codeberg.org/mutker/raplsim/internal/logger"
	"codeberg.org/mutker/raplsim/internal/metrics"
	"codeberg.org/mutker/raplsim/internal/pid"
	"codeberg.org/mutker/raplsim/internal/rapl"
	"codeberg.org/mutker/raplsim/internal/sim"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Error().Err(err).Msg("failed to write PID file")
		os.Exit(1)
	}

	metricsCfg := metrics.DefaultConfig()
	metricsCfg.DBPath = cfg.MetricsDB
	metricsCfg.Enabled = cfg.Metrics

	collector, err := metrics.NewService(metricsCfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize metrics")
		cleanup(nil)
		os.Exit(1)
	}

	simulator, err := sim.New(sim.Config{
		Domains:        cfg.Domains,
		NominalPower:   cfg.Power,
		Interval:       time.Duration(cfg.Interval) * time.Second,
		MaxEnergyRange: cfg.MaxEnergy,
		BaseDir:        cfg.BaseDir,
		Reset:          cfg.Reset,
	}, rapl.NewGaussianNoise(time.Now().UnixNano()), collector)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize simulator")
		cleanup(collector)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	err = simulator.Run(ctx)
	cleanup(collector)
	if err != nil {
		logger.Error().Err(err).Msg("error in simulation loop")
		os.Exit(1)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup(collector metrics.Collector) {
	if collector != nil {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close metrics collector")
		}
	}
	if err := pid.Remove(); err != nil {
		logger.Error().Err(err).Msg("failed to remove PID file")
	}
	logger.Info().Msg("Exiting...")
}
