package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bondingCurve/internal/aggregate"
	"bondingCurve/internal/config"
	"bondingCurve/internal/storage/postgres"
)

func runAggregate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadAggregate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}
	windowSeconds, err := parseWindow(cfg.Window)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var windowStore aggregate.WindowStore
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		windowStore = store
	}

	aggregator, err := aggregate.NewAggregator(aggregate.Config{
		WindowSeconds:   windowSeconds,
		BatchSize:       cfg.BatchSize,
		ReserveDecimals: cfg.ReserveDecimals,
		TokenDecimals:   cfg.TokenDecimals,
	}, windowStore, logger)
	if err != nil {
		return err
	}

	logger.Info("aggregate start",
		zap.String("in", cfg.Input),
		zap.Int64("window_seconds", windowSeconds),
		zap.Bool("postgres", windowStore != nil),
	)

	if err := aggregator.Run(ctx, cfg.Input); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, m := range aggregator.Drain() {
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}
