package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"bondingCurve/internal/curve"
	"bondingCurve/internal/ledger"
	"bondingCurve/internal/model"
)

// Config describes the simulated pool.
type Config struct {
	PoolID         string
	Governor       string
	Treasury       string
	ReserveSymbol  string
	TokenSymbol    string
	Params         curve.Params
	IBRDuration    time.Duration
	InitialReserve *big.Int
	InitialSupply  *big.Int
	Start          time.Time
	FeeDepositors  []string
}

// Deps carries the pool's outward collaborators.
type Deps struct {
	Sink     curve.EventSink
	Observer curve.Observer
	Logger   *zap.Logger
}

// Result summarizes a run.
type Result struct {
	Applied        int
	Rejected       int
	Rejections     map[string]int
	Status         string
	Final          model.PoolState
	Reconciliation curve.Reconciliation
}

// Runner executes script steps against one pool.
type Runner struct {
	cfg      Config
	logger   *zap.Logger
	clock    *Clock
	asset    *ledger.Asset
	token    *ledger.Token
	registry *curve.Registry
	pool     *curve.Pool
	governor common.Address
}

// NewRunner funds the governor with the initial reserve and creates the pool.
func NewRunner(ctx context.Context, cfg Config, deps Deps) (*Runner, error) {
	if cfg.PoolID == "" {
		cfg.PoolID = "sim"
	}
	if cfg.Governor == "" {
		cfg.Governor = "governor"
	}
	if cfg.Treasury == "" {
		cfg.Treasury = "treasury"
	}
	if cfg.ReserveSymbol == "" {
		cfg.ReserveSymbol = "RSV"
	}
	if cfg.TokenSymbol == "" {
		cfg.TokenSymbol = "CRV"
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now().UTC().Truncate(time.Second)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	governor, err := ResolveAccount(cfg.Governor)
	if err != nil {
		return nil, fmt.Errorf("governor: %w", err)
	}
	treasury, err := ResolveAccount(cfg.Treasury)
	if err != nil {
		return nil, fmt.Errorf("treasury: %w", err)
	}
	if cfg.InitialReserve == nil || cfg.InitialSupply == nil {
		return nil, fmt.Errorf("initial reserve and supply required")
	}

	r := &Runner{
		cfg:      cfg,
		logger:   deps.Logger,
		clock:    NewClock(cfg.Start),
		asset:    ledger.NewAsset(cfg.ReserveSymbol),
		token:    ledger.NewToken(cfg.TokenSymbol),
		governor: governor,
	}
	if err := r.asset.Fund(governor, cfg.InitialReserve); err != nil {
		return nil, fmt.Errorf("fund governor: %w", err)
	}

	poolAddr, _ := ResolveAccount("pool:" + cfg.PoolID)
	r.registry = curve.NewRegistry(curve.Deps{
		Sink:     deps.Sink,
		Observer: deps.Observer,
		Clock:    r.clock.Now,
		Logger:   deps.Logger,
	})
	pool, err := r.registry.Create(ctx, curve.Config{
		ID:             cfg.PoolID,
		Address:        poolAddr,
		ReserveAsset:   aliasAddress("asset:" + cfg.ReserveSymbol),
		Token:          aliasAddress("token:" + cfg.TokenSymbol),
		Governor:       governor,
		Treasury:       treasury,
		Params:         cfg.Params,
		IBRDuration:    cfg.IBRDuration,
		InitialReserve: cfg.InitialReserve,
		InitialSupply:  cfg.InitialSupply,
	}, r.asset.Account(poolAddr), r.token)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	r.pool = pool

	gov := curve.WithCaller(ctx, governor)
	for _, name := range cfg.FeeDepositors {
		account, err := ResolveAccount(name)
		if err != nil {
			return nil, fmt.Errorf("fee depositor: %w", err)
		}
		if err := pool.SetFeeDepositor(gov, account, true); err != nil {
			return nil, fmt.Errorf("authorize fee depositor %s: %w", name, err)
		}
	}
	return r, nil
}

// Pool returns the simulated pool.
func (r *Runner) Pool() *curve.Pool { return r.pool }

// Asset returns the reserve asset ledger.
func (r *Runner) Asset() *ledger.Asset { return r.asset }

// Token returns the pool token ledger.
func (r *Runner) Token() *ledger.Token { return r.token }

// Clock returns the virtual clock.
func (r *Runner) Clock() *Clock { return r.clock }

// Run executes steps in order. Rejected steps are logged and counted; any
// other failure stops the run.
func (r *Runner) Run(ctx context.Context, steps []Step) (Result, error) {
	res := Result{Rejections: make(map[string]int)}
	for _, step := range steps {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		err := r.apply(ctx, step)
		var curveErr *curve.Error
		switch {
		case err == nil:
			res.Applied++
		case errors.As(err, &curveErr):
			kind := curve.KindName(err)
			res.Rejected++
			res.Rejections[kind]++
			r.logger.Info("step rejected",
				zap.Int("line", step.line),
				zap.String("op", step.Op),
				zap.String("kind", kind),
				zap.Error(err),
			)
		default:
			return res, fmt.Errorf("line %d (%s): %w", step.line, step.Op, err)
		}
	}

	rec, err := r.pool.Reconcile(ctx)
	if err != nil {
		return res, fmt.Errorf("reconcile: %w", err)
	}
	res.Reconciliation = rec
	res.Final = r.pool.State()
	res.Status = r.pool.Snapshot().Status(r.clock.Now())

	r.logger.Info("simulation complete",
		zap.Int("applied", res.Applied),
		zap.Int("rejected", res.Rejected),
		zap.String("status", res.Status),
		zap.String("reserve", res.Final.Reserve),
		zap.String("supply", res.Final.Supply),
		zap.String("spot_price", res.Final.SpotPrice),
	)
	return res, nil
}

func (r *Runner) apply(ctx context.Context, step Step) error {
	if err := step.validate(); err != nil {
		return err
	}
	caller := r.governor
	if step.Account != "" {
		caller, _ = ResolveAccount(step.Account)
	}
	recipient := caller
	if step.To != "" {
		recipient, _ = ResolveAccount(step.To)
	}
	ctx = curve.WithCaller(ctx, caller)

	var deadline time.Time
	if step.Deadline != "" {
		d, _ := time.ParseDuration(step.Deadline)
		deadline = r.clock.Now().Add(d)
	}
	var minOut *big.Int
	if step.MinOut != "" {
		minOut, _ = ParseAmount(step.MinOut)
	}

	switch step.Op {
	case OpFund:
		amount, _ := step.amount()
		return r.asset.Fund(caller, amount)
	case OpBuy:
		amount, _ := step.amount()
		receipt, err := r.pool.Buy(ctx, amount, minOut, recipient, deadline)
		if err != nil {
			return err
		}
		r.logger.Debug("buy", zap.String("trader", caller.Hex()), zap.String("tokens_out", receipt.AmountOut.String()))
		return nil
	case OpSell:
		amount, _ := step.amount()
		receipt, err := r.pool.Sell(ctx, amount, minOut, recipient, deadline)
		if err != nil {
			return err
		}
		r.logger.Debug("sell", zap.String("trader", caller.Hex()), zap.String("reserve_out", receipt.AmountOut.String()))
		return nil
	case OpAdvance:
		d, _ := time.ParseDuration(step.Duration)
		r.clock.Advance(d)
		return nil
	case OpPause:
		return r.pool.Pause(ctx)
	case OpUnpause:
		return r.pool.Unpause(ctx)
	case OpDepositFees:
		amount, _ := step.amount()
		_, err := r.pool.DepositFees(ctx, amount)
		return err
	case OpWithdrawTreasury:
		amount, _ := step.amount()
		_, err := r.pool.WithdrawTreasury(ctx, amount)
		return err
	case OpSetCRR:
		return r.pool.SetCRR(ctx, step.CRRPpm)
	case OpSetFees:
		return r.pool.SetFees(ctx, step.TradeFeeBps, step.ProtocolFeeBps)
	case OpSetMaxTradeBps:
		return r.pool.SetMaxTradeBps(ctx, step.MaxTradeBps)
	case OpSetFeeDepositor:
		return r.pool.SetFeeDepositor(ctx, recipient, *step.Authorized)
	case OpTransferGovernor:
		if err := r.pool.TransferGovernor(ctx, recipient); err != nil {
			return err
		}
		r.governor = recipient
		return nil
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func aliasAddress(name string) common.Address {
	addr, _ := ResolveAccount(name)
	return addr
}
