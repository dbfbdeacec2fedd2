package curve

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"bondingCurve/internal/model"
)

// FungibleAsset is the reserve asset ledger as seen from one pool account.
// Transfer moves funds out of the pool; TransferFrom pulls funds that the
// owner has made available to the pool.
type FungibleAsset interface {
	TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
}

// TokenMinter is the continuous token. The pool must be its only minter.
type TokenMinter interface {
	Mint(ctx context.Context, to common.Address, amount *big.Int) error
	Burn(ctx context.Context, from common.Address, amount *big.Int) error
	TotalSupply(ctx context.Context) (*big.Int, error)
}

// EventSink receives committed event records in sequence order.
type EventSink interface {
	Publish(ctx context.Context, records []model.EventRecord) error
}

// Observer is notified about pool activity, typically for metrics.
type Observer interface {
	TradeExecuted(pool, direction string, reserveAmount, tokenAmount *big.Int)
	OperationRejected(pool, op, kind string)
	PoolUpdated(pool string, reserve, supply, spotPrice *big.Int, paused bool)
	PublishFailed(pool string)
}

type nopObserver struct{}

func (nopObserver) TradeExecuted(string, string, *big.Int, *big.Int)       {}
func (nopObserver) OperationRejected(string, string, string)               {}
func (nopObserver) PoolUpdated(string, *big.Int, *big.Int, *big.Int, bool) {}
func (nopObserver) PublishFailed(string)                                   {}
