package curve

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"bondingCurve/internal/model"
)

func drawFixture(t *rapid.T) *fixture {
	opts := fixtureOpts{
		reserve: e18(rapid.Int64Range(1_000, 1_000_000).Draw(t, "reserve")),
		supply:  e18(rapid.Int64Range(1_000, 10_000_000).Draw(t, "supply")),
		params: Params{
			CRRPpm:         rapid.Uint32Range(MinCRRPpm, MaxCRRPpm).Draw(t, "crr"),
			TradeFeeBps:    rapid.Uint32Range(1, MaxTradeFeeBps).Draw(t, "fee"),
			ProtocolFeeBps: rapid.Uint32Range(0, MaxProtocolFeeBps).Draw(t, "protocol"),
			MaxTradeBps:    MaxMaxTradeBps,
		},
		ibr: MinIBRDuration,
	}
	f := newFixture(t, opts)
	f.openTrading()
	return f
}

// fraction returns reserve * bps / 10000.
func fraction(reserve *big.Int, bps int64) *big.Int {
	v := new(big.Int).Mul(reserve, big.NewInt(bps))
	return v.Quo(v, big.NewInt(BPS))
}

// roundTripDust is the rounding allowance, in wei, of a buy followed by a sell.
const roundTripDust = 1_000

func TestRoundTripNeverProfits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawFixture(t)
		snap := f.pool.Snapshot()
		amount := fraction(snap.Reserve, rapid.Int64Range(1, 2_000).Draw(t, "bps"))
		require.NoError(t, f.asset.Fund(alice, amount))

		bought, err := f.pool.Buy(as(alice), amount, nil, alice, time.Time{})
		require.NoError(t, err)
		require.Equal(t, 1, bought.SpotPriceAfter.Cmp(bought.SpotPriceBefore), "buy must raise the price")

		sold, err := f.pool.Sell(as(alice), bought.AmountOut, nil, alice, time.Time{})
		require.NoError(t, err)
		require.Equal(t, -1, sold.SpotPriceAfter.Cmp(sold.SpotPriceBefore), "sell must lower the price")
		require.Equal(t, -1, sold.AmountOut.Cmp(amount), "round trip returned %s for %s", sold.AmountOut, amount)

		// Loss is bounded by both legs' fees plus rounding dust.
		loss := new(big.Int).Sub(amount, sold.AmountOut)
		bound := fraction(amount, 2*int64(snap.Params.TradeFeeBps))
		bound.Add(bound, big.NewInt(roundTripDust))
		require.LessOrEqual(t, loss.Cmp(bound), 0, "round trip lost %s of %s, bound %s", loss, amount, bound)
	})
}

func TestQuoteIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawFixture(t)
		amount := fraction(f.pool.Snapshot().Reserve, rapid.Int64Range(1, 5_000).Draw(t, "bps"))
		q1, err1 := f.pool.QuoteBuy(amount)
		q2, err2 := f.pool.QuoteBuy(amount)
		require.Equal(t, err1, err2)
		require.Equal(t, q1, q2)
	})
}

func TestReserveConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawFixture(t)
		ctx := context.Background()
		initial := f.pool.Snapshot().Reserve
		require.NoError(t, f.asset.Fund(alice, new(big.Int).Mul(initial, big.NewInt(100_000))))

		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			snap := f.pool.Snapshot()
			limit := MaxTradeSize(snap.Reserve, snap.Params.MaxTradeBps)
			bps := rapid.Int64Range(1, 6_000).Draw(t, "bps")
			if rapid.Bool().Draw(t, "buy") {
				amount := fraction(snap.Reserve, bps)
				r, err := f.pool.Buy(as(alice), amount, nil, alice, time.Time{})
				if amount.Cmp(limit) > 0 {
					require.ErrorIs(t, err, ErrBounds)
					continue
				}
				if err != nil {
					require.ErrorIs(t, err, ErrValidation)
					continue
				}
				require.LessOrEqual(t, r.AmountIn.Cmp(limit), 0)
				continue
			}
			held, err := f.token.BalanceOf(ctx, alice)
			require.NoError(t, err)
			amount := fraction(held, bps)
			if amount.Sign() == 0 {
				continue
			}
			r, err := f.pool.Sell(as(alice), amount, nil, alice, time.Time{})
			if err != nil {
				require.ErrorIs(t, err, ErrBounds)
				continue
			}
			require.LessOrEqual(t, r.AmountOut.Cmp(limit), 0)
		}

		expected := new(big.Int).Set(initial)
		for _, rec := range f.sink.named(model.EventTradeExecuted) {
			delta, ok := new(big.Int).SetString(rec.Data.(*model.TradeRecord).ReserveDelta, 10)
			require.True(t, ok)
			expected.Add(expected, delta)
		}
		final := f.pool.Snapshot()
		require.Equal(t, 0, expected.Cmp(final.Reserve), "reserve %s, replayed %s", final.Reserve, expected)

		held, err := f.asset.BalanceOf(ctx, poolAddr)
		require.NoError(t, err)
		require.LessOrEqual(t, final.Reserve.Cmp(held), 0)
		supply, err := f.token.TotalSupply(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, supply.Cmp(final.Supply))
	})
}
