package curve

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"bondingCurve/internal/ledger"
	"bondingCurve/internal/model"
)

var (
	governor = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	poolAddr = common.HexToAddress("0x0000000000000000000000000000000000000c01")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	start    = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingSink struct {
	mu      sync.Mutex
	records []model.EventRecord
}

func (s *recordingSink) Publish(_ context.Context, records []model.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *recordingSink) named(name string) []model.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.EventRecord
	for _, r := range s.records {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

func (s *recordingSink) all() []model.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.EventRecord(nil), s.records...)
}

type fixture struct {
	pool  *Pool
	asset *ledger.Asset
	token *ledger.Token
	clock *fakeClock
	sink  *recordingSink
}

type fixtureOpts struct {
	reserve *big.Int
	supply  *big.Int
	params  Params
	ibr     time.Duration
}

func defaultOpts() fixtureOpts {
	return fixtureOpts{
		reserve: big.NewInt(10_000),
		supply:  big.NewInt(100_000),
		params: Params{
			CRRPpm:         100_000,
			TradeFeeBps:    25,
			ProtocolFeeBps: 0,
			MaxTradeBps:    DefaultMaxTradeBps,
		},
		ibr: 7 * 24 * time.Hour,
	}
}

func newFixture(t require.TestingT, opts fixtureOpts) *fixture {
	f := &fixture{
		asset: ledger.NewAsset("RSV"),
		token: ledger.NewToken("CRV"),
		clock: &fakeClock{now: start},
		sink:  &recordingSink{},
	}
	require.NoError(t, f.asset.Fund(governor, opts.reserve))

	pool, err := NewPool(context.Background(), Config{
		ID:             "pool-1",
		Address:        poolAddr,
		ReserveAsset:   common.HexToAddress("0x0000000000000000000000000000000000000e01"),
		Token:          common.HexToAddress("0x0000000000000000000000000000000000000e02"),
		Governor:       governor,
		Treasury:       treasury,
		Params:         opts.params,
		IBRDuration:    opts.ibr,
		InitialReserve: opts.reserve,
		InitialSupply:  opts.supply,
	}, Deps{
		Asset:  f.asset.Account(poolAddr),
		Minter: f.token,
		Sink:   f.sink,
		Clock:  f.clock.Now,
	})
	require.NoError(t, err)
	f.pool = pool
	return f
}

func (f *fixture) fund(t require.TestingT, who common.Address, amount int64) {
	require.NoError(t, f.asset.Fund(who, big.NewInt(amount)))
}

func (f *fixture) openTrading() {
	f.clock.Set(f.pool.Snapshot().IBREnd)
}

func as(who common.Address) context.Context {
	return WithCaller(context.Background(), who)
}

func balanceOf(t require.TestingT, f *fixture, who common.Address) *big.Int {
	b, err := f.asset.BalanceOf(context.Background(), who)
	require.NoError(t, err)
	return b
}

func tokensOf(t require.TestingT, f *fixture, who common.Address) *big.Int {
	b, err := f.token.BalanceOf(context.Background(), who)
	require.NoError(t, err)
	return b
}

func e18(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}
