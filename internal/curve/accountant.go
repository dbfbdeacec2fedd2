package curve

import (
	"context"
	"math/big"
	"time"

	"bondingCurve/internal/model"
)

// Reconciliation compares the pool's held balance with its tracked reserve.
type Reconciliation struct {
	Held                *big.Int
	Reserve             *big.Int
	Surplus             *big.Int
	// ProtocolFeesAccrued is the lifetime total of protocol fees. Treasury
	// withdrawals draw on Surplus and do not reduce it.
	ProtocolFeesAccrued *big.Int
}

// DepositFees moves amount from the caller into the reserve without minting,
// raising the price for every holder. Allowed while paused.
func (p *Pool) DepositFees(ctx context.Context, amount *big.Int) (model.EventRecord, error) {
	const op = "deposit_fees"
	records, err := p.execute(ctx, op, time.Time{}, func(ctx context.Context, tx *txn) error {
		depositor, err := tx.next.authorize(ctx, op, RoleFeeDepositor)
		if err != nil {
			return err
		}
		if err := requirePositive(op, "amount", amount); err != nil {
			return err
		}
		deposit := new(big.Int).Set(amount)
		reserveAfter := new(big.Int).Add(tx.next.Reserve, deposit)
		if err := checkWords(op, reserveAfter); err != nil {
			return err
		}
		tx.next.Reserve = reserveAfter

		tx.interact("transfer_in",
			func(ctx context.Context) error { return p.asset.TransferFrom(ctx, depositor, p.address, deposit) },
			func(ctx context.Context) error { return p.asset.Transfer(ctx, depositor, deposit) },
		)
		tx.emit(model.EventFeesDeposited, &model.FeeDeposit{
			Depositor:    depositor.Hex(),
			Amount:       deposit.String(),
			ReserveAfter: reserveAfter.String(),
			SupplyAfter:  tx.next.Supply.String(),
		})
		return nil
	})
	if err != nil {
		return model.EventRecord{}, err
	}
	return records[0], nil
}

// WithdrawTreasury pays amount of the surplus (held balance above the
// reserve) to the treasury. The reserve itself is never touched.
func (p *Pool) WithdrawTreasury(ctx context.Context, amount *big.Int) (model.EventRecord, error) {
	const op = "withdraw_treasury"
	records, err := p.execute(ctx, op, time.Time{}, func(ctx context.Context, tx *txn) error {
		governor, err := tx.next.authorize(ctx, op, RoleGovernor)
		if err != nil {
			return err
		}
		if err := requirePositive(op, "amount", amount); err != nil {
			return err
		}
		held, err := p.asset.BalanceOf(ctx, p.address)
		if err != nil {
			return stateErr(op, err, "read reserve balance")
		}
		surplus := surplusOf(held, tx.next.Reserve)
		if amount.Cmp(surplus) > 0 {
			return boundsErr(op, "amount", new(big.Int).Set(amount), surplus, "above treasury surplus")
		}

		treasury := tx.next.Treasury
		paid := new(big.Int).Set(amount)
		tx.interact("transfer_out",
			func(ctx context.Context) error { return p.asset.Transfer(ctx, treasury, paid) },
			func(ctx context.Context) error { return p.asset.TransferFrom(ctx, treasury, p.address, paid) },
		)
		tx.emit(model.EventTreasuryWithdrawn, &model.TreasuryWithdrawal{
			Governor:     governor.Hex(),
			Treasury:     treasury.Hex(),
			Amount:       paid.String(),
			SurplusAfter: new(big.Int).Sub(surplus, paid).String(),
		})
		return nil
	})
	if err != nil {
		return model.EventRecord{}, err
	}
	return records[0], nil
}

// Reconcile reads the held balance and reports it against the committed
// reserve. It takes no lock.
func (p *Pool) Reconcile(ctx context.Context) (Reconciliation, error) {
	s := p.state.Load()
	held, err := p.asset.BalanceOf(ctx, p.address)
	if err != nil {
		return Reconciliation{}, stateErr("reconcile", err, "read reserve balance")
	}
	return Reconciliation{
		Held:                held,
		Reserve:             new(big.Int).Set(s.Reserve),
		Surplus:             surplusOf(held, s.Reserve),
		ProtocolFeesAccrued: new(big.Int).Set(s.ProtocolFeesAccrued),
	}, nil
}

func surplusOf(held, reserve *big.Int) *big.Int {
	surplus := new(big.Int).Sub(held, reserve)
	if surplus.Sign() < 0 {
		return new(big.Int)
	}
	return surplus
}
