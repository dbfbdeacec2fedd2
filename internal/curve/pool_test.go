package curve

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"bondingCurve/internal/model"
)

func TestQuoteBuyMatchesCurve(t *testing.T) {
	snap, err := NewSnapshot(big.NewInt(10_000), big.NewInt(100_000), defaultOpts().params)
	require.NoError(t, err)

	q, err := snap.QuoteBuy(big.NewInt(1_000))
	require.NoError(t, err)
	require.Equal(t, int64(2), q.Fee.Int64())
	require.Equal(t, int64(955), q.AmountOut.Int64())

	exact := 100_000 * (math.Pow(1+998.0/10_000, 0.1) - 1)
	relErr := (exact - float64(q.AmountOut.Int64())) / exact
	require.GreaterOrEqual(t, relErr, 0.0, "quote must not exceed the curve")
	require.Less(t, relErr, 0.001)

	require.Equal(t, "1000000000000000000", q.SpotPriceBefore.String())
	require.Equal(t, 1, q.SpotPriceAfter.Cmp(q.SpotPriceBefore))
	require.Equal(t, int64(11_000), q.ReserveAfter.Int64())
	require.Equal(t, int64(100_955), q.SupplyAfter.Int64())
}

func TestQuoteBuyScaledPrecision(t *testing.T) {
	snap, err := NewSnapshot(e18(10_000), e18(100_000), defaultOpts().params)
	require.NoError(t, err)

	q, err := snap.QuoteBuy(e18(1_000))
	require.NoError(t, err)

	exact := 100_000 * (math.Pow(1+997.5/10_000, 0.1) - 1)
	got, _ := new(big.Rat).SetFrac(q.AmountOut, e18(1)).Float64()
	require.InEpsilon(t, exact, got, 1e-9)
}

func TestQuoteSellMatchesCurve(t *testing.T) {
	snap, err := NewSnapshot(e18(10_000), e18(100_000), defaultOpts().params)
	require.NoError(t, err)

	q, err := snap.QuoteSell(e18(1_000))
	require.NoError(t, err)

	raw := 10_000 * (1 - math.Pow(1-1_000.0/100_000, 10))
	exact := raw * (1 - 0.0025)
	got, _ := new(big.Rat).SetFrac(q.AmountOut, e18(1)).Float64()
	require.InEpsilon(t, exact, got, 1e-9)
	require.Equal(t, -1, q.SpotPriceAfter.Cmp(q.SpotPriceBefore))
	require.Equal(t, e18(99_000).String(), q.SupplyAfter.String())

	_, err = snap.QuoteSell(e18(100_001))
	require.ErrorIs(t, err, ErrBounds)
}

func TestQuoteIsPure(t *testing.T) {
	f := newFixture(t, defaultOpts())
	before := f.pool.Snapshot()

	q1, err := f.pool.QuoteBuy(big.NewInt(1_500))
	require.NoError(t, err)
	q2, err := f.pool.QuoteBuy(big.NewInt(1_500))
	require.NoError(t, err)
	require.Equal(t, q1, q2)
	require.Equal(t, before, f.pool.Snapshot())
}

func TestCreateSeedsPool(t *testing.T) {
	f := newFixture(t, defaultOpts())
	snap := f.pool.Snapshot()

	require.Equal(t, int64(10_000), snap.Reserve.Int64())
	require.Equal(t, int64(100_000), snap.Supply.Int64())
	require.Equal(t, start.Add(7*24*time.Hour), snap.IBREnd)
	require.Equal(t, PhaseIBRActive, f.pool.Phase())
	require.Equal(t, int64(10_000), balanceOf(t, f, poolAddr).Int64())
	require.Equal(t, int64(100_000), tokensOf(t, f, governor).Int64())

	created := f.sink.named(model.EventPoolCreated)
	require.Len(t, created, 1)
	require.Equal(t, uint64(1), created[0].Seq)
	payload, ok := created[0].Data.(*model.PoolCreated)
	require.True(t, ok)
	require.Equal(t, uint32(100_000), payload.CRRPpm)
	require.Equal(t, "10000", payload.ReserveAfter)
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*fixtureOpts)
		kind   error
	}{
		{"crr below minimum", func(o *fixtureOpts) { o.params.CRRPpm = 49_999 }, ErrBounds},
		{"crr above maximum", func(o *fixtureOpts) { o.params.CRRPpm = 500_001 }, ErrBounds},
		{"fee above maximum", func(o *fixtureOpts) { o.params.TradeFeeBps = 1_001 }, ErrBounds},
		{"protocol share above maximum", func(o *fixtureOpts) { o.params.ProtocolFeeBps = 5_001 }, ErrBounds},
		{"zero max trade", func(o *fixtureOpts) { o.params.MaxTradeBps = 0 }, ErrBounds},
		{"short ibr", func(o *fixtureOpts) { o.ibr = time.Hour }, ErrBounds},
		{"long ibr", func(o *fixtureOpts) { o.ibr = 31 * 24 * time.Hour }, ErrBounds},
		{"zero reserve", func(o *fixtureOpts) { o.reserve = big.NewInt(0) }, ErrValidation},
		{"zero supply", func(o *fixtureOpts) { o.supply = big.NewInt(0) }, ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := defaultOpts()
			tc.mutate(&opts)
			_, err := NewPool(context.Background(), Config{
				ID:             "p",
				Address:        poolAddr,
				Governor:       governor,
				Treasury:       treasury,
				Params:         opts.params,
				IBRDuration:    opts.ibr,
				InitialReserve: opts.reserve,
				InitialSupply:  opts.supply,
			}, Deps{Asset: noopAsset{}, Minter: noopMinter{}})
			require.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestCreateUnwindsWhenSeedFails(t *testing.T) {
	f := newFixture(t, defaultOpts())

	// Governor already spent the seed funds on the first pool.
	_, err := NewPool(context.Background(), Config{
		ID:             "pool-2",
		Address:        common.HexToAddress("0x0000000000000000000000000000000000000c02"),
		Governor:       governor,
		Treasury:       treasury,
		Params:         defaultOpts().params,
		IBRDuration:    MinIBRDuration,
		InitialReserve: big.NewInt(1),
		InitialSupply:  big.NewInt(1),
	}, Deps{Asset: f.asset.Account(common.HexToAddress("0x0000000000000000000000000000000000000c02")), Minter: f.token})
	require.ErrorIs(t, err, ErrState)

	supply, err := f.token.TotalSupply(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(100_000), supply.Int64())
}

func TestSellClosedDuringIBR(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 1_000)

	bought, err := f.pool.Buy(as(alice), big.NewInt(1_000), big.NewInt(1), alice, time.Time{})
	require.NoError(t, err)
	require.Equal(t, int64(955), bought.AmountOut.Int64())

	_, err = f.pool.Sell(as(alice), bought.AmountOut, big.NewInt(0), alice, time.Time{})
	require.ErrorIs(t, err, ErrState)
	require.ErrorIs(t, err, ErrIBRActive)

	f.clock.Set(f.pool.Snapshot().IBREnd.Add(-time.Second))
	_, err = f.pool.Sell(as(alice), bought.AmountOut, big.NewInt(0), alice, time.Time{})
	require.ErrorIs(t, err, ErrIBRActive)

	f.openTrading()
	require.Equal(t, PhaseOpen, f.pool.Phase())
	sold, err := f.pool.Sell(as(alice), bought.AmountOut, big.NewInt(1), alice, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 1, sold.AmountOut.Sign())
	require.LessOrEqual(t, sold.AmountOut.Int64(), int64(1_000))
	require.Equal(t, sold.AmountOut, balanceOf(t, f, alice))
	require.Equal(t, 0, tokensOf(t, f, alice).Sign())
}

func TestPauseBlocksTradesButNotDeposits(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 1_000)
	f.fund(t, governor, 500)

	require.NoError(t, f.pool.Pause(as(governor)))
	require.ErrorIs(t, f.pool.Pause(as(governor)), ErrState)

	_, err := f.pool.Buy(as(alice), big.NewInt(100), nil, alice, time.Time{})
	require.ErrorIs(t, err, ErrState)
	require.ErrorIs(t, err, ErrPaused)

	before := f.pool.Snapshot().Reserve
	_, err = f.pool.DepositFees(as(governor), big.NewInt(500))
	require.NoError(t, err)
	after := f.pool.Snapshot().Reserve
	require.Equal(t, int64(500), new(big.Int).Sub(after, before).Int64())
	require.Equal(t, int64(100_000), f.pool.Snapshot().Supply.Int64())

	require.NoError(t, f.pool.Unpause(as(governor)))
	require.ErrorIs(t, f.pool.Unpause(as(governor)), ErrState)
	_, err = f.pool.Buy(as(alice), big.NewInt(100), nil, alice, time.Time{})
	require.NoError(t, err)

	require.Len(t, f.sink.named(model.EventPaused), 1)
	require.Len(t, f.sink.named(model.EventUnpaused), 1)
}

func TestTradeSizeBoundary(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 5_000)
	require.NoError(t, f.pool.SetMaxTradeBps(as(governor), 2_000))

	_, err := f.pool.Buy(as(alice), big.NewInt(2_001), nil, alice, time.Time{})
	require.ErrorIs(t, err, ErrBounds)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "reserve_in", cerr.Field)
	require.Equal(t, int64(2_000), cerr.Limit.Int64())
	require.Equal(t, int64(1), cerr.Shortfall().Int64())
	require.Equal(t, "buy: bounds error: reserve_in 2001 above max trade size 2000", err.Error())

	r, err := f.pool.Buy(as(alice), big.NewInt(2_000), nil, alice, time.Time{})
	require.NoError(t, err)
	require.Equal(t, int64(1_835), r.AmountOut.Int64())
}

func TestSellTradeSizeUsesNetOutput(t *testing.T) {
	opts := defaultOpts()
	opts.params.MaxTradeBps = 100
	f := newFixture(t, opts)
	f.openTrading()

	// 100 bps of a 10_000 reserve allows at most 100 out.
	q, err := f.pool.QuoteSell(big.NewInt(2_000))
	require.NoError(t, err)
	require.Greater(t, q.AmountOut.Int64(), int64(100))

	_, err = f.pool.Sell(as(governor), big.NewInt(2_000), nil, governor, time.Time{})
	require.ErrorIs(t, err, ErrBounds)

	r, err := f.pool.Sell(as(governor), big.NewInt(100), nil, governor, time.Time{})
	require.NoError(t, err)
	require.LessOrEqual(t, r.AmountOut.Int64(), int64(100))
}

func TestSlippageLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 1_000)
	before := f.pool.Snapshot()

	_, err := f.pool.Buy(as(alice), big.NewInt(1_000), big.NewInt(956), alice, time.Time{})
	require.ErrorIs(t, err, ErrSlippage)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, int64(955), cerr.Actual.Int64())
	require.Equal(t, int64(956), cerr.Limit.Int64())

	require.Equal(t, before, f.pool.Snapshot())
	require.Equal(t, int64(1_000), balanceOf(t, f, alice).Int64())
	require.Len(t, f.sink.all(), 1)
}

func TestReceiptDoesNotAliasPoolState(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 1_000)

	bought, err := f.pool.Buy(as(alice), big.NewInt(1_000), nil, alice, time.Time{})
	require.NoError(t, err)
	before := f.pool.Snapshot()
	require.Equal(t, "11000", before.Reserve.String())

	bought.ReserveAfter.SetInt64(1)
	bought.SupplyAfter.SetInt64(1)
	require.Equal(t, before, f.pool.Snapshot())

	f.openTrading()
	sold, err := f.pool.Sell(as(alice), big.NewInt(100), nil, alice, time.Time{})
	require.NoError(t, err)
	before = f.pool.Snapshot()

	sold.ReserveAfter.Add(sold.ReserveAfter, big.NewInt(1_000_000))
	sold.SupplyAfter.SetInt64(0)
	require.Equal(t, before, f.pool.Snapshot())
	spot, err := f.pool.QuoteBuy(big.NewInt(10))
	require.NoError(t, err)
	require.Equal(t, before.SpotPrice(), spot.SpotPriceBefore)
}

func TestDeadline(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 1_000)

	_, err := f.pool.Buy(as(alice), big.NewInt(100), nil, alice, start.Add(-time.Second))
	require.ErrorIs(t, err, ErrExpired)

	_, err = f.pool.Buy(as(alice), big.NewInt(100), nil, alice, start)
	require.NoError(t, err)
}

func TestDustBuyRejected(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 10)

	_, err := f.pool.Buy(as(alice), big.NewInt(1), nil, alice, time.Time{})
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, int64(10), balanceOf(t, f, alice).Int64())
}

func TestTradeInputValidation(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.openTrading()

	_, err := f.pool.Buy(context.Background(), big.NewInt(100), nil, alice, time.Time{})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.pool.Buy(as(alice), big.NewInt(0), nil, alice, time.Time{})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.pool.Buy(as(alice), big.NewInt(100), big.NewInt(-1), alice, time.Time{})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.pool.Buy(as(alice), big.NewInt(100), nil, common.Address{}, time.Time{})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.pool.Sell(as(governor), big.NewInt(100_001), nil, governor, time.Time{})
	require.ErrorIs(t, err, ErrBounds)
}

func TestSellWithoutBalanceUnwinds(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.openTrading()
	before := f.pool.Snapshot()

	_, err := f.pool.Sell(as(bob), big.NewInt(100), nil, bob, time.Time{})
	require.ErrorIs(t, err, ErrState)
	require.Equal(t, before, f.pool.Snapshot())
	require.Equal(t, int64(10_000), balanceOf(t, f, poolAddr).Int64())
}

func TestGovernance(t *testing.T) {
	f := newFixture(t, defaultOpts())

	require.ErrorIs(t, f.pool.Pause(as(alice)), ErrAuth)
	require.ErrorIs(t, f.pool.SetCRR(as(alice), 200_000), ErrAuth)
	require.ErrorIs(t, f.pool.Pause(context.Background()), ErrValidation)

	require.ErrorIs(t, f.pool.SetCRR(as(governor), 600_000), ErrBounds)
	require.Equal(t, uint32(100_000), f.pool.Snapshot().Params.CRRPpm)
	require.NoError(t, f.pool.SetCRR(as(governor), 200_000))
	require.Equal(t, uint32(200_000), f.pool.Snapshot().Params.CRRPpm)

	require.ErrorIs(t, f.pool.SetFees(as(governor), 1_001, 0), ErrBounds)
	require.NoError(t, f.pool.SetFees(as(governor), 30, 1_000))
	changes := f.sink.named(model.EventParameterChanged)
	require.Len(t, changes, 3)
	last := changes[2].Data.(*model.ParameterChange)
	require.Equal(t, "protocol_fee_bps", last.Field)
	require.Equal(t, uint32(1_000), last.New)

	require.ErrorIs(t, f.pool.SetMaxTradeBps(as(governor), 5_001), ErrBounds)

	require.ErrorIs(t, f.pool.TransferGovernor(as(governor), governor), ErrState)
	require.NoError(t, f.pool.TransferGovernor(as(governor), bob))
	require.ErrorIs(t, f.pool.Pause(as(governor)), ErrAuth)
	require.NoError(t, f.pool.Pause(as(bob)))
}

func TestFeeDepositorRole(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 1_000)

	_, err := f.pool.DepositFees(as(alice), big.NewInt(100))
	require.ErrorIs(t, err, ErrAuth)

	require.NoError(t, f.pool.SetFeeDepositor(as(governor), alice, true))
	rec, err := f.pool.DepositFees(as(alice), big.NewInt(100))
	require.NoError(t, err)
	require.Equal(t, model.EventFeesDeposited, rec.Name)
	require.Equal(t, int64(10_100), f.pool.Snapshot().Reserve.Int64())

	require.NoError(t, f.pool.SetFeeDepositor(as(governor), alice, false))
	_, err = f.pool.DepositFees(as(alice), big.NewInt(100))
	require.ErrorIs(t, err, ErrAuth)
}

func TestTreasuryWithdrawsOnlySurplus(t *testing.T) {
	opts := defaultOpts()
	opts.params.TradeFeeBps = 100
	opts.params.ProtocolFeeBps = 5_000
	f := newFixture(t, opts)
	f.fund(t, alice, 1_000)

	r, err := f.pool.Buy(as(alice), big.NewInt(1_000), nil, alice, time.Time{})
	require.NoError(t, err)
	require.Equal(t, int64(10), r.Fee.Int64())
	require.Equal(t, int64(5), r.ProtocolFee.Int64())

	rec, err := f.pool.Reconcile(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(11_000), rec.Held.Int64())
	require.Equal(t, int64(10_995), rec.Reserve.Int64())
	require.Equal(t, int64(5), rec.Surplus.Int64())
	require.Equal(t, int64(5), rec.ProtocolFeesAccrued.Int64())

	_, err = f.pool.WithdrawTreasury(as(alice), big.NewInt(5))
	require.ErrorIs(t, err, ErrAuth)
	_, err = f.pool.WithdrawTreasury(as(governor), big.NewInt(6))
	require.ErrorIs(t, err, ErrBounds)

	require.NoError(t, f.pool.Pause(as(governor)))
	_, err = f.pool.WithdrawTreasury(as(governor), big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, int64(5), balanceOf(t, f, treasury).Int64())
	require.Equal(t, int64(10_995), f.pool.Snapshot().Reserve.Int64())

	rec, err = f.pool.Reconcile(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, rec.Surplus.Sign())
	require.Equal(t, int64(5), rec.ProtocolFeesAccrued.Int64(), "withdrawals leave the accrued total alone")
}

func TestFailedMintRollsBackTransfer(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 1_000)
	before := f.pool.Snapshot()

	boom := errors.New("mint disabled")
	f.token.BeforeMint = func(context.Context, common.Address, common.Address, *big.Int) error { return boom }

	_, err := f.pool.Buy(as(alice), big.NewInt(1_000), nil, alice, time.Time{})
	require.ErrorIs(t, err, ErrState)
	require.ErrorIs(t, err, boom)

	require.Equal(t, before, f.pool.Snapshot())
	require.Equal(t, int64(1_000), balanceOf(t, f, alice).Int64())
	require.Equal(t, int64(10_000), balanceOf(t, f, poolAddr).Int64())
	require.Len(t, f.sink.all(), 1)
}

func TestReentrantCallRejected(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 2_000)

	var once sync.Once
	var inner error
	f.asset.BeforeTransfer = func(ctx context.Context, _, _ common.Address, _ *big.Int) error {
		once.Do(func() {
			_, inner = f.pool.Buy(ctx, big.NewInt(100), nil, alice, time.Time{})
		})
		return nil
	}

	_, err := f.pool.Buy(as(alice), big.NewInt(1_000), nil, alice, time.Time{})
	require.NoError(t, err)
	require.ErrorIs(t, inner, ErrState)
	require.ErrorIs(t, inner, ErrReentrant)
	require.Equal(t, int64(955), tokensOf(t, f, alice).Int64())
}

func TestFeeOnTransferAssetRejected(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 1_000)
	f.asset.TransferFeeBps = 100
	before := f.pool.Snapshot()

	_, err := f.pool.Buy(as(alice), big.NewInt(1_000), nil, alice, time.Time{})
	require.ErrorIs(t, err, ErrState)
	require.ErrorIs(t, err, ErrInsolvent)
	require.Equal(t, before, f.pool.Snapshot())
	require.Equal(t, 0, tokensOf(t, f, alice).Sign())
}

func TestSupplyResyncsFromLedger(t *testing.T) {
	f := newFixture(t, defaultOpts())
	f.fund(t, alice, 1_000)
	require.NoError(t, f.token.Mint(context.Background(), bob, big.NewInt(100_000)))

	r, err := f.pool.Buy(as(alice), big.NewInt(1_000), nil, alice, time.Time{})
	require.NoError(t, err)
	require.Equal(t, int64(1_911), r.AmountOut.Int64())
	require.Equal(t, int64(201_911), f.pool.Snapshot().Supply.Int64())
}

func TestConcurrentBuysSerialize(t *testing.T) {
	f := newFixture(t, defaultOpts())

	const traders = 20
	var wg sync.WaitGroup
	errs := make(chan error, traders)
	for i := 0; i < traders; i++ {
		trader := common.BigToAddress(big.NewInt(int64(0x1000 + i)))
		f.fund(t, trader, 100)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pool.Buy(as(trader), big.NewInt(100), nil, trader, time.Time{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	snap := f.pool.Snapshot()
	require.Equal(t, int64(12_000), snap.Reserve.Int64())
	supply, err := f.token.TotalSupply(context.Background())
	require.NoError(t, err)
	require.Equal(t, supply, snap.Supply)
	require.Equal(t, uint64(traders+1), snap.Seq)

	for i, rec := range f.sink.all() {
		require.Equal(t, uint64(i+1), rec.Seq, fmt.Sprintf("record %d", i))
	}
}

func TestRegistry(t *testing.T) {
	f := newFixture(t, defaultOpts())
	reg := NewRegistry(Deps{Clock: f.clock.Now})

	other := common.HexToAddress("0x0000000000000000000000000000000000000c09")
	f.fund(t, governor, 5_000)
	cfg := Config{
		ID:             "zeta",
		Address:        other,
		Governor:       governor,
		Treasury:       treasury,
		Params:         defaultOpts().params,
		IBRDuration:    MinIBRDuration,
		InitialReserve: big.NewInt(1_000),
		InitialSupply:  big.NewInt(1_000),
	}
	_, err := reg.Create(context.Background(), cfg, f.asset.Account(other), f.token)
	require.NoError(t, err)
	_, err = reg.Create(context.Background(), cfg, f.asset.Account(other), f.token)
	require.ErrorIs(t, err, ErrValidation)

	cfg.ID = "alpha"
	_, err = reg.Create(context.Background(), cfg, f.asset.Account(other), f.token)
	require.NoError(t, err)

	require.Equal(t, []string{"alpha", "zeta"}, reg.List())
	pool, ok := reg.Get("zeta")
	require.True(t, ok)
	require.Equal(t, "zeta", pool.ID())
	_, ok = reg.Get("missing")
	require.False(t, ok)
}

func TestErrorFormatting(t *testing.T) {
	err := stateErr("sell", ErrPaused, "")
	require.Equal(t, "sell: state error: pool is paused", err.Error())
	require.Equal(t, "state", KindName(err))
	require.Equal(t, "domain", KindName(mathErr("quote_sell", fmt.Errorf("ln: %w", ErrDomain))))
	require.Equal(t, "internal", KindName(errors.New("other")))
}

type noopAsset struct{}

func (noopAsset) TransferFrom(context.Context, common.Address, common.Address, *big.Int) error {
	return nil
}
func (noopAsset) Transfer(context.Context, common.Address, *big.Int) error { return nil }
func (noopAsset) BalanceOf(context.Context, common.Address) (*big.Int, error) {
	return new(big.Int), nil
}

type noopMinter struct{}

func (noopMinter) Mint(context.Context, common.Address, *big.Int) error { return nil }
func (noopMinter) Burn(context.Context, common.Address, *big.Int) error { return nil }
func (noopMinter) TotalSupply(context.Context) (*big.Int, error)        { return new(big.Int), nil }
