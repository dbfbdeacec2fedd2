package main

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bondingCurve/internal/config"
	"bondingCurve/internal/curve"
	"bondingCurve/internal/simulate"
)

func main() {
	root := &cobra.Command{
		Use:          "curvectl",
		Short:        "Bonding curve pool tooling",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a buy or sell against a pool",
		RunE:  runQuote,
	}

	poolFlags(quoteCmd.Flags())
	quoteCmd.Flags().String("direction", "buy", "trade direction (buy, sell)")
	quoteCmd.Flags().String("amount", "", "reserve paid for buys or tokens sold for sells")
	quoteCmd.Flags().String("rpc", "", "RPC URL for live pool state")
	quoteCmd.Flags().String("reserve-token", "", "reserve ERC-20 address")
	quoteCmd.Flags().String("pool-token", "", "pool token ERC-20 address")
	quoteCmd.Flags().String("pool-address", "", "pool custody address holding the reserve")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a JSONL trade script against an in-memory pool",
		RunE:  runSimulate,
	}

	poolFlags(simulateCmd.Flags())
	simulateCmd.Flags().String("pool-id", "sim", "pool identifier")
	simulateCmd.Flags().String("script", "", "input script JSONL")
	simulateCmd.Flags().String("out", "./data/events.jsonl", "output events JSONL, empty to disable")
	simulateCmd.Flags().String("pg-dsn", "", "Postgres DSN for events, pool state and window metrics")
	simulateCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	simulateCmd.Flags().String("window", "1h", "aggregation window (e.g. 5m, 1h)")
	simulateCmd.Flags().String("start", "", "virtual clock start (unix seconds or RFC3339)")
	simulateCmd.Flags().StringSlice("fee-depositor", nil, "accounts allowed to deposit fees (comma-separated)")
	simulateCmd.Flags().String("rpc", "", "RPC URL used to read reserve token metadata")
	simulateCmd.Flags().String("reserve-token", "", "reserve ERC-20 address for metadata")
	simulateCmd.Flags().Uint8("reserve-decimals", 0, "reserve decimals when no token metadata is read")
	simulateCmd.Flags().Uint8("token-decimals", 0, "pool token decimals")
	simulateCmd.Flags().Int("memory-capacity", 4096, "in-memory event log capacity")
	simulateCmd.Flags().Int("max-retries", 3, "maximum publish retry attempts per sink")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(simulateCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate an events JSONL file into window metrics",
		RunE:  runAggregate,
	}

	aggregateCmd.Flags().String("in", "", "input events JSONL")
	aggregateCmd.Flags().String("window", "1h", "aggregation window (e.g. 1m, 5m, 1h)")
	aggregateCmd.Flags().String("pg-dsn", "", "Postgres DSN, metrics are printed when empty")
	aggregateCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	aggregateCmd.Flags().Uint8("reserve-decimals", 0, "reserve decimals")
	aggregateCmd.Flags().Uint8("token-decimals", 0, "pool token decimals")
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aggregateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func poolFlags(flags *pflag.FlagSet) {
	flags.Uint32("crr-ppm", 100_000, "connector reserve ratio in parts per million")
	flags.Uint32("trade-fee-bps", 25, "trade fee in basis points")
	flags.Uint32("protocol-fee-bps", 0, "protocol share of the trade fee in basis points")
	flags.Uint32("max-trade-bps", 2_000, "max trade size as basis points of the reserve")
	flags.Duration("ibr-duration", 7*24*time.Hour, "initial bonding round duration")
	flags.String("initial-reserve", "", "seed reserve in base units")
	flags.String("initial-supply", "", "seed token supply in base units")
}

func poolParams(cfg config.PoolConfig) curve.Params {
	return curve.Params{
		CRRPpm:         cfg.CRRPpm,
		TradeFeeBps:    cfg.TradeFeeBps,
		ProtocolFeeBps: cfg.ProtocolFeeBps,
		MaxTradeBps:    cfg.MaxTradeBps,
	}
}

func seedAmounts(cfg config.PoolConfig) (*big.Int, *big.Int, error) {
	if cfg.InitialReserve == "" || cfg.InitialSupply == "" {
		return nil, nil, fmt.Errorf("initial reserve and supply are required")
	}
	reserve, err := simulate.ParseAmount(cfg.InitialReserve)
	if err != nil {
		return nil, nil, fmt.Errorf("initial reserve: %w", err)
	}
	supply, err := simulate.ParseAmount(cfg.InitialSupply)
	if err != nil {
		return nil, nil, fmt.Errorf("initial supply: %w", err)
	}
	return reserve, supply, nil
}

func parseWindow(window string) (int64, error) {
	windowDuration, err := time.ParseDuration(window)
	if err != nil {
		return 0, fmt.Errorf("invalid window: %w", err)
	}
	if windowDuration <= 0 {
		return 0, fmt.Errorf("window must be positive")
	}
	windowSeconds := int64(windowDuration.Seconds())
	if windowSeconds == 0 {
		return 0, fmt.Errorf("window must be at least 1s")
	}
	return windowSeconds, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
