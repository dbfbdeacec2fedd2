package curve

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"bondingCurve/internal/model"
)

// Pause stops buys and sells. Fee deposits and treasury withdrawals still work.
func (p *Pool) Pause(ctx context.Context) error {
	return p.setPaused(ctx, "pause", true, model.EventPaused)
}

// Unpause resumes trading.
func (p *Pool) Unpause(ctx context.Context) error {
	return p.setPaused(ctx, "unpause", false, model.EventUnpaused)
}

func (p *Pool) setPaused(ctx context.Context, op string, paused bool, event string) error {
	_, err := p.execute(ctx, op, time.Time{}, func(ctx context.Context, tx *txn) error {
		governor, err := tx.next.authorize(ctx, op, RoleGovernor)
		if err != nil {
			return err
		}
		if err := tx.next.setPaused(op, paused); err != nil {
			return err
		}
		tx.emit(event, &model.PauseChange{Governor: governor.Hex(), Paused: paused})
		return nil
	})
	if err == nil {
		p.logger.Info("pool pause changed", zap.Bool("paused", paused))
	}
	return err
}

// SetCRR changes the connector reserve ratio.
func (p *Pool) SetCRR(ctx context.Context, crrPpm uint32) error {
	return p.updateParams(ctx, "set_crr", func(params *Params) []paramChange {
		old := params.CRRPpm
		params.CRRPpm = crrPpm
		return []paramChange{{"crr_ppm", old, crrPpm}}
	})
}

// SetFees changes the trade fee and its protocol share.
func (p *Pool) SetFees(ctx context.Context, tradeFeeBps, protocolFeeBps uint32) error {
	return p.updateParams(ctx, "set_fees", func(params *Params) []paramChange {
		oldTrade, oldProtocol := params.TradeFeeBps, params.ProtocolFeeBps
		params.TradeFeeBps = tradeFeeBps
		params.ProtocolFeeBps = protocolFeeBps
		return []paramChange{
			{"trade_fee_bps", oldTrade, tradeFeeBps},
			{"protocol_fee_bps", oldProtocol, protocolFeeBps},
		}
	})
}

// SetMaxTradeBps changes the per-trade size cap.
func (p *Pool) SetMaxTradeBps(ctx context.Context, maxTradeBps uint32) error {
	return p.updateParams(ctx, "set_max_trade_bps", func(params *Params) []paramChange {
		old := params.MaxTradeBps
		params.MaxTradeBps = maxTradeBps
		return []paramChange{{"max_trade_bps", old, maxTradeBps}}
	})
}

type paramChange struct {
	field    string
	old, new uint32
}

func (p *Pool) updateParams(ctx context.Context, op string, apply func(*Params) []paramChange) error {
	_, err := p.execute(ctx, op, time.Time{}, func(ctx context.Context, tx *txn) error {
		governor, err := tx.next.authorize(ctx, op, RoleGovernor)
		if err != nil {
			return err
		}
		params := tx.next.Params
		changes := apply(&params)
		if err := params.validate(op); err != nil {
			return err
		}
		tx.next.Params = params
		for _, c := range changes {
			if c.old == c.new {
				continue
			}
			tx.emit(model.EventParameterChanged, &model.ParameterChange{
				Governor: governor.Hex(),
				Field:    c.field,
				Old:      c.old,
				New:      c.new,
			})
		}
		return nil
	})
	return err
}

// TransferGovernor hands the governor role to next.
func (p *Pool) TransferGovernor(ctx context.Context, next common.Address) error {
	const op = "transfer_governor"
	_, err := p.execute(ctx, op, time.Time{}, func(ctx context.Context, tx *txn) error {
		governor, err := tx.next.authorize(ctx, op, RoleGovernor)
		if err != nil {
			return err
		}
		if err := requireAddress(op, "governor", next); err != nil {
			return err
		}
		if next == governor {
			return stateErr(op, nil, "account is already governor")
		}
		tx.next.Governor = next
		tx.emit(model.EventGovernorTransferred, &model.GovernorTransfer{Previous: governor.Hex(), Next: next.Hex()})
		return nil
	})
	return err
}

// SetFeeDepositor grants or revokes the fee depositor role for account.
func (p *Pool) SetFeeDepositor(ctx context.Context, account common.Address, authorized bool) error {
	const op = "set_fee_depositor"
	_, err := p.execute(ctx, op, time.Time{}, func(ctx context.Context, tx *txn) error {
		governor, err := tx.next.authorize(ctx, op, RoleGovernor)
		if err != nil {
			return err
		}
		if err := requireAddress(op, "account", account); err != nil {
			return err
		}
		if tx.next.FeeDepositors[account] == authorized {
			return nil
		}
		if authorized {
			tx.next.FeeDepositors[account] = true
		} else {
			delete(tx.next.FeeDepositors, account)
		}
		tx.emit(model.EventFeeDepositorSet, &model.FeeDepositorChange{
			Governor:   governor.Hex(),
			Account:    account.Hex(),
			Authorized: authorized,
		})
		return nil
	})
	return err
}
