// Package ledger provides in-memory reserve asset and token ledgers with
// 256-bit balances. They back simulations and tests of bonding-curve pools.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOverflow            = errors.New("balance overflow")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// Hook runs before a balance change is applied, outside the ledger lock.
// Returning an error aborts the change.
type Hook func(ctx context.Context, from, to common.Address, amount *big.Int) error

type balances struct {
	mu       sync.Mutex
	accounts map[common.Address]*uint256.Int
}

func newBalances() balances {
	return balances{accounts: make(map[common.Address]*uint256.Int)}
}

func (b *balances) balance(addr common.Address) *uint256.Int {
	if v, ok := b.accounts[addr]; ok {
		return v
	}
	return new(uint256.Int)
}

func (b *balances) credit(addr common.Address, amount *uint256.Int) error {
	next, overflow := new(uint256.Int).AddOverflow(b.balance(addr), amount)
	if overflow {
		return fmt.Errorf("credit %s: %w", addr.Hex(), ErrOverflow)
	}
	b.accounts[addr] = next
	return nil
}

func (b *balances) debit(addr common.Address, amount *uint256.Int) error {
	current := b.balance(addr)
	if current.Lt(amount) {
		return fmt.Errorf("debit %s: have %s, need %s: %w", addr.Hex(), current.Dec(), amount.Dec(), ErrInsufficientBalance)
	}
	b.accounts[addr] = new(uint256.Int).Sub(current, amount)
	return nil
}

func toUint(amount *big.Int) (*uint256.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	v, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}

func runHook(ctx context.Context, hook Hook, from, to common.Address, amount *big.Int) error {
	if hook == nil {
		return nil
	}
	return hook(ctx, from, to, new(big.Int).Set(amount))
}
