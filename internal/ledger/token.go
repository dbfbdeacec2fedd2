package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Token is a mintable token whose supply is controlled by a single pool.
type Token struct {
	symbol string
	bal    balances
	supply *uint256.Int

	// BeforeMint and BeforeBurn, when set, run before the supply changes.
	// For burns the to address is zero; for mints the from address is zero.
	BeforeMint Hook
	BeforeBurn Hook
}

// NewToken returns a token with zero supply.
func NewToken(symbol string) *Token {
	return &Token{symbol: symbol, bal: newBalances(), supply: new(uint256.Int)}
}

// Symbol returns the token symbol.
func (t *Token) Symbol() string { return t.symbol }

// Mint credits amount to to and grows the supply.
func (t *Token) Mint(ctx context.Context, to common.Address, amount *big.Int) error {
	v, err := toUint(amount)
	if err != nil {
		return fmt.Errorf("mint %s: %w", t.symbol, err)
	}
	if err := runHook(ctx, t.BeforeMint, common.Address{}, to, amount); err != nil {
		return fmt.Errorf("mint %s: %w", t.symbol, err)
	}

	t.bal.mu.Lock()
	defer t.bal.mu.Unlock()
	supply, overflow := new(uint256.Int).AddOverflow(t.supply, v)
	if overflow {
		return fmt.Errorf("mint %s: %w", t.symbol, ErrOverflow)
	}
	if err := t.bal.credit(to, v); err != nil {
		return fmt.Errorf("mint %s: %w", t.symbol, err)
	}
	t.supply = supply
	return nil
}

// Burn debits amount from from and shrinks the supply.
func (t *Token) Burn(ctx context.Context, from common.Address, amount *big.Int) error {
	v, err := toUint(amount)
	if err != nil {
		return fmt.Errorf("burn %s: %w", t.symbol, err)
	}
	if err := runHook(ctx, t.BeforeBurn, from, common.Address{}, amount); err != nil {
		return fmt.Errorf("burn %s: %w", t.symbol, err)
	}

	t.bal.mu.Lock()
	defer t.bal.mu.Unlock()
	if err := t.bal.debit(from, v); err != nil {
		return fmt.Errorf("burn %s: %w", t.symbol, err)
	}
	t.supply = new(uint256.Int).Sub(t.supply, v)
	return nil
}

// Transfer moves tokens between holders without touching the supply.
func (t *Token) Transfer(_ context.Context, from, to common.Address, amount *big.Int) error {
	v, err := toUint(amount)
	if err != nil {
		return fmt.Errorf("transfer %s: %w", t.symbol, err)
	}
	t.bal.mu.Lock()
	defer t.bal.mu.Unlock()
	if err := t.bal.debit(from, v); err != nil {
		return fmt.Errorf("transfer %s: %w", t.symbol, err)
	}
	return t.bal.credit(to, v)
}

// TotalSupply returns the outstanding supply.
func (t *Token) TotalSupply(context.Context) (*big.Int, error) {
	t.bal.mu.Lock()
	defer t.bal.mu.Unlock()
	return t.supply.ToBig(), nil
}

// BalanceOf returns the token balance of account.
func (t *Token) BalanceOf(_ context.Context, account common.Address) (*big.Int, error) {
	t.bal.mu.Lock()
	defer t.bal.mu.Unlock()
	return t.bal.balance(account).ToBig(), nil
}
