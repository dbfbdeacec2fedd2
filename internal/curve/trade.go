package curve

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"bondingCurve/internal/model"
)

// Receipt is the result of an executed trade.
type Receipt struct {
	Quote
	Trader    common.Address
	Recipient common.Address
	Event     model.EventRecord
}

// Record returns the trade payload carried by the receipt's event.
func (r *Receipt) Record() *model.TradeRecord {
	rec, _ := r.Event.Data.(*model.TradeRecord)
	return rec
}

// Buy pays reserveIn from the caller and mints at least minTokensOut to
// recipient. A zero deadline disables the expiry check.
func (p *Pool) Buy(ctx context.Context, reserveIn, minTokensOut *big.Int, recipient common.Address, deadline time.Time) (*Receipt, error) {
	const op = "buy"
	var receipt *Receipt
	records, err := p.execute(ctx, op, deadline, func(ctx context.Context, tx *txn) error {
		trader, err := requireCaller(ctx, op)
		if err != nil {
			return err
		}
		if err := requireAddress(op, "recipient", recipient); err != nil {
			return err
		}
		if err := requirePositive(op, "reserve_in", reserveIn); err != nil {
			return err
		}
		minOut, err := minimum(op, "min_tokens_out", minTokensOut)
		if err != nil {
			return err
		}

		next := tx.next
		if err := next.checkBuyAllowed(op); err != nil {
			return err
		}
		if err := checkTradeSize(op, "reserve_in", reserveIn, next.Reserve, next.Params.MaxTradeBps); err != nil {
			return err
		}
		if err := p.syncSupply(ctx, tx); err != nil {
			return err
		}

		q, err := next.QuoteBuy(reserveIn)
		if err != nil {
			return retag(err, op)
		}
		if q.AmountOut.Sign() == 0 {
			return validationErr(op, "reserve_in", "too small to mint any tokens")
		}
		if q.AmountOut.Cmp(minOut) < 0 {
			return slippageErr(op, "tokens_out", q.AmountOut, minOut)
		}

		next.Reserve = new(big.Int).Set(q.ReserveAfter)
		next.Supply = new(big.Int).Set(q.SupplyAfter)
		next.ProtocolFeesAccrued = new(big.Int).Add(next.ProtocolFeesAccrued, q.ProtocolFee)
		next.Trades++

		amountIn := q.AmountIn
		tokensOut := q.AmountOut
		tx.interact("transfer_in",
			func(ctx context.Context) error { return p.asset.TransferFrom(ctx, trader, p.address, amountIn) },
			func(ctx context.Context) error { return p.asset.Transfer(ctx, trader, amountIn) },
		)
		tx.interact("mint",
			func(ctx context.Context) error { return p.minter.Mint(ctx, recipient, tokensOut) },
			func(ctx context.Context) error { return p.minter.Burn(ctx, recipient, tokensOut) },
		)

		reserveDelta := new(big.Int).Sub(q.AmountIn, q.ProtocolFee)
		tx.emit(model.EventTradeExecuted, tradeRecord(trader, recipient, q, reserveDelta, q.AmountOut))
		receipt = &Receipt{Quote: q, Trader: trader, Recipient: recipient}
		return nil
	})
	if err != nil {
		return nil, err
	}
	receipt.Event = records[0]
	p.observer.TradeExecuted(p.id, model.DirectionBuy, receipt.AmountIn, receipt.AmountOut)
	return receipt, nil
}

// Sell burns tokensIn from the caller and pays at least minReserveOut to
// recipient. Selling is closed until the initial bonding round ends.
func (p *Pool) Sell(ctx context.Context, tokensIn, minReserveOut *big.Int, recipient common.Address, deadline time.Time) (*Receipt, error) {
	const op = "sell"
	var receipt *Receipt
	records, err := p.execute(ctx, op, deadline, func(ctx context.Context, tx *txn) error {
		trader, err := requireCaller(ctx, op)
		if err != nil {
			return err
		}
		if err := requireAddress(op, "recipient", recipient); err != nil {
			return err
		}
		if err := requirePositive(op, "tokens_in", tokensIn); err != nil {
			return err
		}
		minOut, err := minimum(op, "min_reserve_out", minReserveOut)
		if err != nil {
			return err
		}

		next := tx.next
		if err := next.checkSellAllowed(op, tx.now); err != nil {
			return err
		}
		if err := p.syncSupply(ctx, tx); err != nil {
			return err
		}

		q, err := next.QuoteSell(tokensIn)
		if err != nil {
			return retag(err, op)
		}
		if err := checkTradeSize(op, "reserve_out", q.AmountOut, next.Reserve, next.Params.MaxTradeBps); err != nil {
			return err
		}
		if q.AmountOut.Cmp(minOut) < 0 {
			return slippageErr(op, "reserve_out", q.AmountOut, minOut)
		}
		if q.ReserveAfter.Sign() <= 0 {
			return stateErr(op, nil, "sale would exhaust the reserve")
		}

		next.Reserve = new(big.Int).Set(q.ReserveAfter)
		next.Supply = new(big.Int).Set(q.SupplyAfter)
		next.ProtocolFeesAccrued = new(big.Int).Add(next.ProtocolFeesAccrued, q.ProtocolFee)
		next.Trades++

		burned := q.AmountIn
		paid := q.AmountOut
		tx.interact("burn",
			func(ctx context.Context) error { return p.minter.Burn(ctx, trader, burned) },
			func(ctx context.Context) error { return p.minter.Mint(ctx, trader, burned) },
		)
		tx.interact("transfer_out",
			func(ctx context.Context) error { return p.asset.Transfer(ctx, recipient, paid) },
			func(ctx context.Context) error { return p.asset.TransferFrom(ctx, recipient, p.address, paid) },
		)

		reserveDelta := new(big.Int).Add(q.AmountOut, q.ProtocolFee)
		reserveDelta.Neg(reserveDelta)
		tx.emit(model.EventTradeExecuted, tradeRecord(trader, recipient, q, reserveDelta, new(big.Int).Neg(q.AmountIn)))
		receipt = &Receipt{Quote: q, Trader: trader, Recipient: recipient}
		return nil
	})
	if err != nil {
		return nil, err
	}
	receipt.Event = records[0]
	p.observer.TradeExecuted(p.id, model.DirectionSell, receipt.AmountOut, receipt.AmountIn)
	return receipt, nil
}

func tradeRecord(trader, recipient common.Address, q Quote, reserveDelta, supplyDelta *big.Int) *model.TradeRecord {
	return &model.TradeRecord{
		Trader:          trader.Hex(),
		Recipient:       recipient.Hex(),
		Direction:       q.Direction,
		AmountIn:        q.AmountIn.String(),
		AmountOut:       q.AmountOut.String(),
		Fee:             q.Fee.String(),
		ProtocolFee:     q.ProtocolFee.String(),
		ReserveDelta:    reserveDelta.String(),
		SupplyDelta:     supplyDelta.String(),
		ReserveAfter:    q.ReserveAfter.String(),
		SupplyAfter:     q.SupplyAfter.String(),
		SpotPriceBefore: q.SpotPriceBefore.String(),
		SpotPriceAfter:  q.SpotPriceAfter.String(),
	}
}

func minimum(op, field string, v *big.Int) (*big.Int, error) {
	if v == nil {
		return new(big.Int), nil
	}
	if v.Sign() < 0 {
		return nil, validationErr(op, field, "must not be negative")
	}
	return v, nil
}

// retag reports a quote failure under the trading operation's name.
func retag(err error, op string) error {
	var e *Error
	if errors.As(err, &e) {
		out := *e
		out.Op = op
		return &out
	}
	return err
}
