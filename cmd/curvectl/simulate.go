package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bondingCurve/internal/aggregate"
	"bondingCurve/internal/chain"
	"bondingCurve/internal/config"
	"bondingCurve/internal/metrics"
	"bondingCurve/internal/model"
	"bondingCurve/internal/simulate"
	"bondingCurve/internal/storage"
	"bondingCurve/internal/storage/postgres"
)

type simulateSummary struct {
	Applied       int                       `json:"applied"`
	Rejected      int                       `json:"rejected"`
	Rejections    map[string]int            `json:"rejections"`
	Status        string                    `json:"status"`
	Events        int                       `json:"events"`
	Reserve       string                    `json:"reserve"`
	Supply        string                    `json:"supply"`
	SpotPrice     string                    `json:"spot_price"`
	Surplus       string                    `json:"surplus"`
	Paused        bool                      `json:"paused"`
	WindowMetrics []model.PoolWindowMetrics `json:"window_metrics,omitempty"`
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Script == "" {
		return fmt.Errorf("script path is required")
	}
	reserve, supply, err := seedAmounts(cfg.Pool)
	if err != nil {
		return err
	}
	windowSeconds, err := parseWindow(cfg.Window)
	if err != nil {
		return err
	}
	start, err := config.ParseTimestamp(cfg.Start)
	if err != nil {
		return fmt.Errorf("parse start: %w", err)
	}
	steps, err := simulate.LoadScript(cfg.Script)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reserveSymbol := ""
	if cfg.RPCURL != "" && cfg.ReserveToken != "" {
		meta, err := reserveMeta(ctx, cfg.RPCURL, cfg.ReserveToken, logger)
		if err != nil {
			return err
		}
		cfg.ReserveDecimals = meta.Decimals
		reserveSymbol = meta.Symbol
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(metrics.Config{
		Registry:        registry,
		ReserveDecimals: cfg.ReserveDecimals,
		TokenDecimals:   cfg.TokenDecimals,
	})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, registry, logger)
		defer shutdown()
	}

	memory := storage.NewMemoryLog(cfg.MemoryCapacity)
	targets := []storage.Target{{Name: "memory", Sink: memory}}

	if cfg.Out != "" {
		jsonl, err := storage.NewJsonlStorage(cfg.Out)
		if err != nil {
			return err
		}
		targets = append(targets, storage.Target{Name: "jsonl", Sink: jsonl})
	}

	var store *postgres.Store
	var windowStore aggregate.WindowStore
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if last, ok, err := store.LastSeq(ctx, cfg.PoolID); err != nil {
			return fmt.Errorf("load last seq: %w", err)
		} else if ok {
			return fmt.Errorf("pool %s already has events up to seq %d, choose another pool id", cfg.PoolID, last)
		}
		targets = append(targets, storage.Target{Name: "postgres", Sink: store})
		windowStore = store
	}

	aggregator, err := aggregate.NewAggregator(aggregate.Config{
		WindowSeconds:   windowSeconds,
		ReserveDecimals: cfg.ReserveDecimals,
		TokenDecimals:   cfg.TokenDecimals,
	}, windowStore, logger)
	if err != nil {
		return err
	}
	targets = append(targets, storage.Target{Name: "aggregate", Sink: aggregator})

	publisher := storage.NewPublisher(storage.PublisherConfig{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  100 * time.Millisecond,
		OnFailure:  recorder.SinkFailed,
	}, logger, targets...)

	runner, err := simulate.NewRunner(ctx, simulate.Config{
		PoolID:         cfg.PoolID,
		ReserveSymbol:  reserveSymbol,
		Params:         poolParams(cfg.Pool),
		IBRDuration:    cfg.Pool.IBRDuration,
		InitialReserve: reserve,
		InitialSupply:  supply,
		Start:          start,
		FeeDepositors:  cfg.FeeDepositors,
	}, simulate.Deps{
		Sink:     publisher,
		Observer: recorder,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	logger.Info("simulate start",
		zap.String("pool", cfg.PoolID),
		zap.String("script", cfg.Script),
		zap.Int("steps", len(steps)),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", store != nil),
		zap.Int64("window_seconds", windowSeconds),
	)

	res, err := runner.Run(ctx, steps)
	if err != nil {
		return err
	}

	if err := aggregator.Flush(ctx); err != nil {
		return err
	}
	if store != nil {
		if err := store.UpsertPoolStates(ctx, []model.PoolState{res.Final}); err != nil {
			return fmt.Errorf("store pool state: %w", err)
		}
	}
	if dropped := memory.Dropped(); dropped > 0 {
		logger.Warn("memory log evicted records", zap.Uint64("dropped", dropped))
	}

	summary := simulateSummary{
		Applied:       res.Applied,
		Rejected:      res.Rejected,
		Rejections:    res.Rejections,
		Status:        res.Status,
		Events:        len(memory.Since(cfg.PoolID, 0)),
		Reserve:       res.Final.Reserve,
		Supply:        res.Final.Supply,
		SpotPrice:     res.Final.SpotPrice,
		Surplus:       res.Reconciliation.Surplus.String(),
		Paused:        res.Final.Paused,
		WindowMetrics: aggregator.Drain(),
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func reserveMeta(ctx context.Context, rpcURL, token string, logger *zap.Logger) (model.TokenMeta, error) {
	if !common.IsHexAddress(token) {
		return model.TokenMeta{}, fmt.Errorf("reserve-token: invalid address %q", token)
	}
	client, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	chainID, err := client.GetChainID(ctx)
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("get chain id: %w", err)
	}
	meta, err := chain.FetchTokenMeta(ctx, client, common.HexToAddress(token), logger)
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("reserve token metadata: %w", err)
	}
	logger.Info("reserve token",
		zap.String("chain_id", chainID.String()),
		zap.String("symbol", meta.Symbol),
		zap.Uint8("decimals", meta.Decimals),
	)
	return meta, nil
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
	logger.Info("metrics listening", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
