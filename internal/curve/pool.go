package curve

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"bondingCurve/internal/model"
)

// Config describes a pool to create.
type Config struct {
	ID             string
	Address        common.Address
	ReserveAsset   common.Address
	Token          common.Address
	Governor       common.Address
	Treasury       common.Address
	Params         Params
	IBRDuration    time.Duration
	InitialReserve *big.Int
	InitialSupply  *big.Int
}

// Deps are the collaborators of a pool. Asset and Minter are required.
type Deps struct {
	Asset    FungibleAsset
	Minter   TokenMinter
	Sink     EventSink
	Observer Observer
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Pool is one bonding-curve market. State-changing calls are serialized per
// pool; reads return copies of the last committed snapshot.
type Pool struct {
	id           string
	address      common.Address
	reserveAsset common.Address
	token        common.Address

	asset    FungibleAsset
	minter   TokenMinter
	sink     EventSink
	observer Observer
	clock    func() time.Time
	logger   *zap.Logger

	sem   *semaphore.Weighted
	state atomic.Pointer[Snapshot]
}

type entryKey struct {
	pool string
}

// NewPool validates cfg, pulls the initial reserve from the governor, mints
// the initial supply to the governor and returns the live pool.
func NewPool(ctx context.Context, cfg Config, deps Deps) (*Pool, error) {
	const op = "create"
	if cfg.ID == "" {
		return nil, validationErr(op, "id", "is required")
	}
	if err := requireAddress(op, "address", cfg.Address); err != nil {
		return nil, err
	}
	if err := requireAddress(op, "governor", cfg.Governor); err != nil {
		return nil, err
	}
	if err := requireAddress(op, "treasury", cfg.Treasury); err != nil {
		return nil, err
	}
	if err := cfg.Params.validate(op); err != nil {
		return nil, err
	}
	if err := checkIBRDuration(op, cfg.IBRDuration); err != nil {
		return nil, err
	}
	if err := requirePositive(op, "initial_reserve", cfg.InitialReserve); err != nil {
		return nil, err
	}
	if err := requirePositive(op, "initial_supply", cfg.InitialSupply); err != nil {
		return nil, err
	}
	if deps.Asset == nil || deps.Minter == nil {
		return nil, fmt.Errorf("%s: reserve asset and token minter are required", op)
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	p := &Pool{
		id:           cfg.ID,
		address:      cfg.Address,
		reserveAsset: cfg.ReserveAsset,
		token:        cfg.Token,
		asset:        deps.Asset,
		minter:       deps.Minter,
		sink:         deps.Sink,
		observer:     deps.Observer,
		clock:        deps.Clock,
		logger:       deps.Logger.With(zap.String("pool", cfg.ID)),
		sem:          semaphore.NewWeighted(1),
	}

	now := p.clock()
	p.state.Store(&Snapshot{
		Pool:                cfg.ID,
		Reserve:             new(big.Int),
		Supply:              new(big.Int),
		ProtocolFeesAccrued: new(big.Int),
		Params:              cfg.Params,
		CreatedAt:           now,
		IBREnd:              now.Add(cfg.IBRDuration),
		Governor:            cfg.Governor,
		Treasury:            cfg.Treasury,
		FeeDepositors:       map[common.Address]bool{},
	})

	_, err := p.execute(ctx, op, time.Time{}, func(ctx context.Context, tx *txn) error {
		existing, err := p.minter.TotalSupply(ctx)
		if err != nil {
			return stateErr(op, err, "read token supply")
		}
		next := tx.next
		next.Reserve.Set(cfg.InitialReserve)
		next.Supply.Add(existing, cfg.InitialSupply)

		reserve := new(big.Int).Set(cfg.InitialReserve)
		supply := new(big.Int).Set(cfg.InitialSupply)
		tx.interact("seed_reserve",
			func(ctx context.Context) error { return p.asset.TransferFrom(ctx, cfg.Governor, p.address, reserve) },
			func(ctx context.Context) error { return p.asset.Transfer(ctx, cfg.Governor, reserve) },
		)
		tx.interact("seed_supply",
			func(ctx context.Context) error { return p.minter.Mint(ctx, cfg.Governor, supply) },
			func(ctx context.Context) error { return p.minter.Burn(ctx, cfg.Governor, supply) },
		)
		tx.emit(model.EventPoolCreated, &model.PoolCreated{
			Governor:       cfg.Governor.Hex(),
			ReserveAsset:   cfg.ReserveAsset.Hex(),
			Token:          cfg.Token.Hex(),
			Treasury:       cfg.Treasury.Hex(),
			CRRPpm:         cfg.Params.CRRPpm,
			TradeFeeBps:    cfg.Params.TradeFeeBps,
			ProtocolFeeBps: cfg.Params.ProtocolFeeBps,
			MaxTradeBps:    cfg.Params.MaxTradeBps,
			IBREnd:         next.IBREnd.Unix(),
			ReserveAfter:   next.Reserve.String(),
			SupplyAfter:    next.Supply.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ID returns the pool identifier.
func (p *Pool) ID() string { return p.id }

// Address returns the account holding the pool's reserve.
func (p *Pool) Address() common.Address { return p.address }

// ReserveAsset returns the reserve asset address.
func (p *Pool) ReserveAsset() common.Address { return p.reserveAsset }

// Token returns the continuous token address.
func (p *Pool) Token() common.Address { return p.token }

// Snapshot returns a copy of the last committed state.
func (p *Pool) Snapshot() *Snapshot {
	return p.state.Load().clone()
}

// QuoteBuy prices a buy against the committed state.
func (p *Pool) QuoteBuy(reserveIn *big.Int) (Quote, error) {
	return p.state.Load().QuoteBuy(reserveIn)
}

// QuoteSell prices a sell against the committed state.
func (p *Pool) QuoteSell(tokensIn *big.Int) (Quote, error) {
	return p.state.Load().QuoteSell(tokensIn)
}

// SpotPrice returns the marginal price of the committed state.
func (p *Pool) SpotPrice() *big.Int {
	return p.state.Load().SpotPrice()
}

// Phase returns the lifecycle phase at the pool clock's current time.
func (p *Pool) Phase() Phase {
	return p.state.Load().Phase(p.clock())
}

// State converts the committed snapshot for persistence.
func (p *Pool) State() model.PoolState {
	s := p.state.Load()
	return model.PoolState{
		Pool:                p.id,
		Address:             p.address.Hex(),
		ReserveAsset:        p.reserveAsset.Hex(),
		Token:               p.token.Hex(),
		Reserve:             s.Reserve.String(),
		Supply:              s.Supply.String(),
		ProtocolFeesAccrued: s.ProtocolFeesAccrued.String(),
		SpotPrice:           s.SpotPrice().String(),
		CRRPpm:              s.Params.CRRPpm,
		TradeFeeBps:         s.Params.TradeFeeBps,
		ProtocolFeeBps:      s.Params.ProtocolFeeBps,
		MaxTradeBps:         s.Params.MaxTradeBps,
		Paused:              s.Paused,
		IBREnd:              s.IBREnd,
		LastSeq:             s.Seq,
	}
}

// txn stages one operation: effects go to next, external calls to steps.
// Nothing is visible until execute publishes next.
type txn struct {
	op     string
	now    time.Time
	next   *Snapshot
	steps  []interaction
	events []pendingEvent
}

type interaction struct {
	name string
	do   func(ctx context.Context) error
	undo func(ctx context.Context) error
}

type pendingEvent struct {
	name string
	data interface{}
}

func (tx *txn) interact(name string, do, undo func(ctx context.Context) error) {
	tx.steps = append(tx.steps, interaction{name: name, do: do, undo: undo})
}

func (tx *txn) emit(name string, data interface{}) {
	tx.events = append(tx.events, pendingEvent{name: name, data: data})
}

// execute runs fn under the pool lock. fn validates and stages effects on a
// copy of the committed state; execute then performs the staged interactions
// in order, verifies solvency, and publishes. Any failure unwinds the
// interactions already performed and leaves committed state untouched.
func (p *Pool) execute(ctx context.Context, op string, deadline time.Time, fn func(ctx context.Context, tx *txn) error) ([]model.EventRecord, error) {
	if ctx.Value(entryKey{pool: p.id}) != nil {
		return nil, p.reject(op, stateErr(op, ErrReentrant, ""))
	}
	if err := checkDeadline(op, deadline, p.clock()); err != nil {
		return nil, p.reject(op, err)
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%s: acquire pool %s: %w", op, p.id, err)
	}
	defer p.sem.Release(1)
	ctx = context.WithValue(ctx, entryKey{pool: p.id}, op)

	// The lock wait may have outlived the deadline.
	tx := &txn{op: op, now: p.clock(), next: p.state.Load().clone()}
	if err := checkDeadline(op, deadline, tx.now); err != nil {
		return nil, p.reject(op, err)
	}
	if err := fn(ctx, tx); err != nil {
		return nil, p.reject(op, err)
	}

	for i, step := range tx.steps {
		if err := step.do(ctx); err != nil {
			p.unwind(ctx, tx, i)
			return nil, p.reject(op, stateErr(op, err, step.name+" failed"))
		}
	}
	if err := p.checkSolvency(ctx, tx); err != nil {
		p.unwind(ctx, tx, len(tx.steps))
		return nil, p.reject(op, err)
	}

	records := p.stamp(tx)
	p.state.Store(tx.next)
	p.observer.PoolUpdated(p.id, tx.next.Reserve, tx.next.Supply, tx.next.SpotPrice(), tx.next.Paused)
	p.publish(ctx, records)
	return records, nil
}

// unwind reverts the first n interactions in reverse order.
func (p *Pool) unwind(ctx context.Context, tx *txn, n int) {
	ctx = context.WithoutCancel(ctx)
	for i := n - 1; i >= 0; i-- {
		step := tx.steps[i]
		if step.undo == nil {
			continue
		}
		if err := step.undo(ctx); err != nil {
			p.logger.Error("compensation failed",
				zap.String("op", tx.op),
				zap.String("step", step.name),
				zap.Error(err),
			)
		}
	}
}

// checkSolvency compares the staged state with the ledgers after all
// interactions ran: the reserve must be covered by the pool's balance and
// the mirrored supply must match the token.
func (p *Pool) checkSolvency(ctx context.Context, tx *txn) error {
	held, err := p.asset.BalanceOf(ctx, p.address)
	if err != nil {
		return stateErr(tx.op, err, "read reserve balance")
	}
	if tx.next.Reserve.Cmp(held) > 0 {
		return &Error{
			Kind:   ErrState,
			Op:     tx.op,
			Field:  "reserve",
			Actual: new(big.Int).Set(tx.next.Reserve),
			Limit:  held,
			Reason: "above held balance",
			Err:    ErrInsolvent,
		}
	}
	supply, err := p.minter.TotalSupply(ctx)
	if err != nil {
		return stateErr(tx.op, err, "read token supply")
	}
	if supply.Cmp(tx.next.Supply) != 0 {
		return &Error{
			Kind:   ErrState,
			Op:     tx.op,
			Field:  "supply",
			Actual: supply,
			Limit:  new(big.Int).Set(tx.next.Supply),
			Reason: "does not match",
			Err:    ErrSupplyDrift,
		}
	}
	return nil
}

// syncSupply refreshes the staged supply from the token ledger.
func (p *Pool) syncSupply(ctx context.Context, tx *txn) error {
	supply, err := p.minter.TotalSupply(ctx)
	if err != nil {
		return stateErr(tx.op, err, "read token supply")
	}
	if supply.Sign() <= 0 {
		return stateErr(tx.op, nil, "token supply is zero")
	}
	if supply.Cmp(tx.next.Supply) != 0 {
		p.logger.Warn("token supply resynced",
			zap.String("op", tx.op),
			zap.String("mirrored", tx.next.Supply.String()),
			zap.String("ledger", supply.String()),
		)
		tx.next.Supply = supply
	}
	return nil
}

func (p *Pool) stamp(tx *txn) []model.EventRecord {
	records := make([]model.EventRecord, 0, len(tx.events))
	for _, ev := range tx.events {
		tx.next.Seq++
		records = append(records, model.EventRecord{
			Seq:       tx.next.Seq,
			ID:        uuid.NewString(),
			Pool:      p.id,
			Address:   p.address.Hex(),
			Name:      ev.name,
			Timestamp: tx.now.Unix(),
			Data:      ev.data,
		})
	}
	return records
}

func (p *Pool) publish(ctx context.Context, records []model.EventRecord) {
	if p.sink == nil || len(records) == 0 {
		return
	}
	if err := p.sink.Publish(context.WithoutCancel(ctx), records); err != nil {
		p.observer.PublishFailed(p.id)
		p.logger.Warn("publish events failed",
			zap.Uint64("from_seq", records[0].Seq),
			zap.Int("count", len(records)),
			zap.Error(err),
		)
	}
}

func checkDeadline(op string, deadline, now time.Time) error {
	if !deadline.IsZero() && now.After(deadline) {
		return expiredErr(op, deadline, now)
	}
	return nil
}

func (p *Pool) reject(op string, err error) error {
	kind := KindName(err)
	p.observer.OperationRejected(p.id, op, kind)
	p.logger.Debug("operation rejected",
		zap.String("op", op),
		zap.String("kind", kind),
		zap.Error(err),
	)
	return err
}
