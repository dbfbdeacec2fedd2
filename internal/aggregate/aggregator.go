package aggregate

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"bondingCurve/internal/model"
	"bondingCurve/internal/storage"
)

// WindowStore persists finished window metrics.
type WindowStore interface {
	UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error
}

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds   int64
	BatchSize       int
	ReserveDecimals uint8
	TokenDecimals   uint8
}

// Aggregator folds pool records into fixed windows. It can be attached to a
// publisher as a sink so windows close as trades arrive.
type Aggregator struct {
	cfg    Config
	store  WindowStore
	logger *zap.Logger

	mu           sync.Mutex
	accumulators map[string]*Accumulator
	applied      map[string]uint64
	pending      []model.PoolWindowMetrics
	skipped      int
}

// NewAggregator returns an aggregator. store may be nil; finished windows are
// then kept until Drain.
func NewAggregator(cfg Config, store WindowStore, logger *zap.Logger) (*Aggregator, error) {
	if cfg.WindowSeconds <= 0 {
		return nil, fmt.Errorf("window seconds must be > 0")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
		applied:      make(map[string]uint64),
	}, nil
}

// Publish implements the event sink contract. Records at or below the last
// applied seq of their pool are ignored, so a batch retried after a failed
// flush is counted once; the flush itself is retried with it.
func (a *Aggregator) Publish(ctx context.Context, records []model.EventRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, record := range records {
		a.add(record)
	}
	if a.store != nil && len(a.pending) >= a.cfg.BatchSize {
		return a.flushPending(ctx)
	}
	return nil
}

// Run aggregates every record of a JSONL event file and flushes all windows.
func (a *Aggregator) Run(ctx context.Context, inputPath string) error {
	records, err := storage.ReadJsonl(inputPath)
	if err != nil {
		return err
	}
	if err := a.Publish(ctx, records); err != nil {
		return err
	}
	if err := a.Flush(ctx); err != nil {
		return err
	}
	a.logger.Info("aggregate complete",
		zap.Int("total", len(records)),
		zap.Int("skipped", a.Skipped()),
	)
	return nil
}

// Flush closes every open window and writes pending metrics to the store.
func (a *Aggregator) Flush(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, key := range sortedKeys(a.accumulators) {
		a.closeWindow(a.accumulators[key])
	}
	a.accumulators = make(map[string]*Accumulator)
	if a.store == nil {
		return nil
	}
	return a.flushPending(ctx)
}

// Drain returns and clears metrics not yet handed to a store.
func (a *Aggregator) Drain() []model.PoolWindowMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.pending
	a.pending = nil
	return out
}

// Skipped reports records that fell before their pool's open window or
// failed to aggregate.
func (a *Aggregator) Skipped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.skipped
}

func (a *Aggregator) add(record model.EventRecord) {
	if last, ok := a.applied[record.Pool]; ok && record.Seq <= last {
		a.logger.Debug("record already applied",
			zap.String("pool", record.Pool),
			zap.Uint64("seq", record.Seq),
		)
		return
	}
	a.applied[record.Pool] = record.Seq

	start := windowStart(record.Timestamp, a.cfg.WindowSeconds)
	acc := a.accumulators[record.Pool]
	switch {
	case acc == nil:
		acc = NewAccumulator(record, start, start+a.cfg.WindowSeconds)
		a.accumulators[record.Pool] = acc
	case start < acc.WindowStart:
		a.skipped++
		a.logger.Warn("record before open window",
			zap.String("pool", record.Pool),
			zap.Uint64("seq", record.Seq),
			zap.Int64("window_start", acc.WindowStart),
		)
		return
	case start > acc.WindowStart:
		a.closeWindow(acc)
		next := NewAccumulator(record, start, start+a.cfg.WindowSeconds)
		next.CloseReserve, next.CloseSupply = acc.CloseReserve, acc.CloseSupply
		acc = next
		a.accumulators[record.Pool] = acc
	}

	if err := acc.AddEvent(record); err != nil {
		a.skipped++
		a.logger.Warn("aggregate event", zap.Error(err), zap.String("pool", record.Pool), zap.String("event", record.Name))
	}
}

func (a *Aggregator) closeWindow(acc *Accumulator) {
	if acc == nil || acc.TradeCount == 0 {
		return
	}
	a.pending = append(a.pending, a.metrics(acc))
}

func (a *Aggregator) metrics(acc *Accumulator) model.PoolWindowMetrics {
	retained := new(big.Int).Sub(acc.Fees, acc.ProtocolFees)
	feeRate := computeRateFromInt(retained, acc.CloseReserve)
	return model.PoolWindowMetrics{
		Pool:           acc.Pool,
		WindowSizeSecs: a.cfg.WindowSeconds,
		WindowStart:    time.Unix(acc.WindowStart, 0).UTC(),
		WindowEnd:      time.Unix(acc.WindowEnd, 0).UTC(),
		TradeCount:     acc.TradeCount,
		BuyCount:       acc.BuyCount,
		SellCount:      acc.SellCount,
		ReserveVolume:  formatTokenAmount(acc.ReserveVolume, a.cfg.ReserveDecimals),
		TokenVolume:    formatTokenAmount(acc.TokenVolume, a.cfg.TokenDecimals),
		Fees:           formatTokenAmount(acc.Fees, a.cfg.ReserveDecimals),
		ProtocolFees:   formatTokenAmount(acc.ProtocolFees, a.cfg.ReserveDecimals),
		OpenSpotPrice:  formatTokenAmount(acc.OpenSpot, priceDecimals),
		CloseSpotPrice: formatTokenAmount(acc.CloseSpot, priceDecimals),
		CloseReserve:   formatTokenAmount(acc.CloseReserve, a.cfg.ReserveDecimals),
		CloseSupply:    formatTokenAmount(acc.CloseSupply, a.cfg.TokenDecimals),
		FeeRate:        feeRate,
		APR:            computeAPR(feeRate, a.cfg.WindowSeconds),
	}
}

func (a *Aggregator) flushPending(ctx context.Context) error {
	if len(a.pending) == 0 {
		return nil
	}
	if err := a.store.UpsertWindowMetrics(ctx, a.pending); err != nil {
		return fmt.Errorf("upsert window metrics: %w", err)
	}
	a.logger.Debug("window metrics flushed", zap.Int("count", len(a.pending)))
	a.pending = nil
	return nil
}

// Aggregate folds records into window metrics without a store.
func Aggregate(records []model.EventRecord, cfg Config) ([]model.PoolWindowMetrics, error) {
	agg, err := NewAggregator(cfg, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := agg.Publish(context.Background(), records); err != nil {
		return nil, err
	}
	if err := agg.Flush(context.Background()); err != nil {
		return nil, err
	}
	return agg.Drain(), nil
}

func windowStart(ts int64, windowSec int64) int64 {
	return ts - (ts % windowSec)
}

func sortedKeys(acc map[string]*Accumulator) []string {
	keys := make([]string, 0, len(acc))
	for key := range acc {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
