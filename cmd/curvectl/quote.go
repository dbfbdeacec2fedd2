package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bondingCurve/internal/chain"
	"bondingCurve/internal/config"
	"bondingCurve/internal/curve"
	"bondingCurve/internal/model"
	"bondingCurve/internal/simulate"
)

type quoteOutput struct {
	Direction       string           `json:"direction"`
	AmountIn        string           `json:"amount_in"`
	AmountOut       string           `json:"amount_out"`
	Fee             string           `json:"fee"`
	ProtocolFee     string           `json:"protocol_fee"`
	SpotPriceBefore string           `json:"spot_price_before"`
	SpotPriceAfter  string           `json:"spot_price_after"`
	ReserveAfter    string           `json:"reserve_after"`
	SupplyAfter     string           `json:"supply_after"`
	MaxTradeSize    string           `json:"max_trade_size"`
	WithinLimit     bool             `json:"within_limit"`
	ReserveToken    *model.TokenMeta `json:"reserve_token,omitempty"`
	PoolToken       *model.TokenMeta `json:"pool_token,omitempty"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	amount, err := simulate.ParseAmount(cfg.Amount)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := quoteOutput{}
	var reserve, supply *big.Int
	if cfg.Live() {
		reserve, supply, out.ReserveToken, out.PoolToken, err = liveState(ctx, cfg, logger)
	} else {
		reserve, supply, err = seedAmounts(cfg.Pool)
	}
	if err != nil {
		return err
	}

	snap, err := curve.NewSnapshot(reserve, supply, poolParams(cfg.Pool))
	if err != nil {
		return err
	}

	var q curve.Quote
	var moved *big.Int
	switch cfg.Direction {
	case model.DirectionBuy:
		q, err = snap.QuoteBuy(amount)
		moved = q.AmountIn
	case model.DirectionSell:
		q, err = snap.QuoteSell(amount)
		moved = q.AmountOut
	default:
		return fmt.Errorf("unknown direction %q", cfg.Direction)
	}
	if err != nil {
		return err
	}

	limit := curve.MaxTradeSize(reserve, cfg.Pool.MaxTradeBps)
	out.Direction = q.Direction
	out.AmountIn = q.AmountIn.String()
	out.AmountOut = q.AmountOut.String()
	out.Fee = q.Fee.String()
	out.ProtocolFee = q.ProtocolFee.String()
	out.SpotPriceBefore = q.SpotPriceBefore.String()
	out.SpotPriceAfter = q.SpotPriceAfter.String()
	out.ReserveAfter = q.ReserveAfter.String()
	out.SupplyAfter = q.SupplyAfter.String()
	out.MaxTradeSize = limit.String()
	out.WithinLimit = moved.Cmp(limit) <= 0

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func liveState(ctx context.Context, cfg config.QuoteConfig, logger *zap.Logger) (*big.Int, *big.Int, *model.TokenMeta, *model.TokenMeta, error) {
	for name, value := range map[string]string{
		"reserve-token": cfg.ReserveToken,
		"pool-token":    cfg.PoolToken,
		"pool-address":  cfg.PoolAddress,
	} {
		if !common.IsHexAddress(value) {
			return nil, nil, nil, nil, fmt.Errorf("%s: invalid address %q", name, value)
		}
	}
	reserveToken := common.HexToAddress(cfg.ReserveToken)
	poolToken := common.HexToAddress(cfg.PoolToken)
	poolAddress := common.HexToAddress(cfg.PoolAddress)

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	// Read reserve and supply at the same block.
	latest, err := client.LatestBlockNumber(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("get latest block: %w", err)
	}
	block := new(big.Int).SetUint64(latest)

	reserve, err := chain.BalanceOf(ctx, client, reserveToken, poolAddress, block)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("read reserve: %w", err)
	}
	supply, err := chain.TotalSupply(ctx, client, poolToken, block)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("read supply: %w", err)
	}

	reserveMeta, err := chain.FetchTokenMeta(ctx, client, reserveToken, logger)
	if err != nil {
		logger.Warn("reserve token metadata", zap.String("token", reserveToken.Hex()), zap.Error(err))
	}
	poolMeta, err := chain.FetchTokenMeta(ctx, client, poolToken, logger)
	if err != nil {
		logger.Warn("pool token metadata", zap.String("token", poolToken.Hex()), zap.Error(err))
	}

	logger.Info("live pool state",
		zap.String("pool", poolAddress.Hex()),
		zap.Uint64("block", latest),
		zap.String("reserve", reserve.String()),
		zap.String("supply", supply.String()),
	)
	return reserve, supply, &reserveMeta, &poolMeta, nil
}
