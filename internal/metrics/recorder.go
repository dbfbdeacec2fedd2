// Package metrics exports pool activity as Prometheus metrics.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures a Recorder.
type Config struct {
	// Namespace prefixes every metric name. Defaults to "curve".
	Namespace string
	// Registry receives the collectors. If nil, uses prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
	// ReserveDecimals and TokenDecimals scale base-unit amounts to whole units.
	ReserveDecimals uint8
	TokenDecimals   uint8
}

// Recorder implements the pool observer and the publisher failure hook.
type Recorder struct {
	reserveScale *big.Float
	tokenScale   *big.Float

	trades        *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	reserveVolume *prometheus.CounterVec
	tokenVolume   *prometheus.CounterVec
	reserve       *prometheus.GaugeVec
	supply        *prometheus.GaugeVec
	spotPrice     *prometheus.GaugeVec
	paused        *prometheus.GaugeVec
	sinkFailures  *prometheus.CounterVec
	publishFails  *prometheus.CounterVec
}

// NewRecorder creates and registers the pool collectors. Collectors already
// registered by an earlier Recorder are reused.
func NewRecorder(cfg Config) (*Recorder, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = "curve"
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		reserveScale: decimalScale(cfg.ReserveDecimals),
		tokenScale:   decimalScale(cfg.TokenDecimals),
	}

	r.trades = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "trades_total",
		Help:      "Executed trades by pool and direction",
	}, []string{"pool", "direction"})
	r.rejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "trade_rejections_total",
		Help:      "Rejected pool operations by error kind",
	}, []string{"pool", "op", "reason"})
	r.reserveVolume = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "reserve_volume_total",
		Help:      "Reserve asset moved by trades, in whole units",
	}, []string{"pool", "direction"})
	r.tokenVolume = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "token_volume_total",
		Help:      "Tokens minted or burned by trades, in whole units",
	}, []string{"pool", "direction"})
	r.reserve = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Name:      "reserve_balance",
		Help:      "Tracked reserve balance, in whole units",
	}, []string{"pool"})
	r.supply = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Name:      "token_supply",
		Help:      "Continuous token supply, in whole units",
	}, []string{"pool"})
	r.spotPrice = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Name:      "spot_price",
		Help:      "Marginal price in reserve units per token",
	}, []string{"pool"})
	r.paused = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Name:      "paused",
		Help:      "1 while trading is paused",
	}, []string{"pool"})
	r.sinkFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "sink_failures_total",
		Help:      "Event batches a sink failed to persist",
	}, []string{"sink"})

	r.publishFails = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "publish_failures_total",
		Help:      "Committed event batches a pool could not publish",
	}, []string{"pool"})

	collectors := []**prometheus.CounterVec{&r.trades, &r.rejections, &r.reserveVolume, &r.tokenVolume, &r.sinkFailures, &r.publishFails}
	for _, c := range collectors {
		existing, err := register(registry, *c)
		if err != nil {
			return nil, err
		}
		*c = existing.(*prometheus.CounterVec)
	}
	gauges := []**prometheus.GaugeVec{&r.reserve, &r.supply, &r.spotPrice, &r.paused}
	for _, g := range gauges {
		existing, err := register(registry, *g)
		if err != nil {
			return nil, err
		}
		*g = existing.(*prometheus.GaugeVec)
	}
	return r, nil
}

func register(registry prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := registry.Register(c); err != nil {
		var alreadyErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyErr) {
			return alreadyErr.ExistingCollector, nil
		}
		return nil, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// TradeExecuted counts a trade and its volume.
func (r *Recorder) TradeExecuted(pool, direction string, reserveAmount, tokenAmount *big.Int) {
	r.trades.WithLabelValues(pool, direction).Inc()
	r.reserveVolume.WithLabelValues(pool, direction).Add(scaled(reserveAmount, r.reserveScale))
	r.tokenVolume.WithLabelValues(pool, direction).Add(scaled(tokenAmount, r.tokenScale))
}

// OperationRejected counts a rejected operation.
func (r *Recorder) OperationRejected(pool, op, kind string) {
	r.rejections.WithLabelValues(pool, op, kind).Inc()
}

// PoolUpdated refreshes the state gauges after a commit.
func (r *Recorder) PoolUpdated(pool string, reserve, supply, spotPrice *big.Int, paused bool) {
	r.reserve.WithLabelValues(pool).Set(scaled(reserve, r.reserveScale))
	r.supply.WithLabelValues(pool).Set(scaled(supply, r.tokenScale))
	r.spotPrice.WithLabelValues(pool).Set(scaled(spotPrice, decimalScale(18)))
	value := 0.0
	if paused {
		value = 1
	}
	r.paused.WithLabelValues(pool).Set(value)
}

// SinkFailed counts a sink that exhausted its retries.
func (r *Recorder) SinkFailed(sink string) {
	r.sinkFailures.WithLabelValues(sink).Inc()
}

// PublishFailed counts a batch a pool could not hand to its sink.
func (r *Recorder) PublishFailed(pool string) {
	r.publishFails.WithLabelValues(pool).Inc()
}

func decimalScale(decimals uint8) *big.Float {
	return new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

func scaled(v *big.Int, scale *big.Float) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), scale).Float64()
	if math.IsInf(f, 0) {
		return 0
	}
	return f
}
