package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Asset is a fungible reserve asset. Any account may be credited with Fund;
// pools move funds through an Account handle.
type Asset struct {
	symbol string
	bal    balances

	// BeforeTransfer, when set, runs before every transfer.
	BeforeTransfer Hook
	// TransferFeeBps burns a share of every transfer on receipt, modelling
	// fee-on-transfer tokens.
	TransferFeeBps uint32
}

// NewAsset returns an empty asset ledger.
func NewAsset(symbol string) *Asset {
	return &Asset{symbol: symbol, bal: newBalances()}
}

// Symbol returns the asset symbol.
func (a *Asset) Symbol() string { return a.symbol }

// Fund credits amount to account out of thin air.
func (a *Asset) Fund(account common.Address, amount *big.Int) error {
	v, err := toUint(amount)
	if err != nil {
		return fmt.Errorf("fund %s: %w", a.symbol, err)
	}
	a.bal.mu.Lock()
	defer a.bal.mu.Unlock()
	return a.bal.credit(account, v)
}

// BalanceOf returns the balance of account.
func (a *Asset) BalanceOf(_ context.Context, account common.Address) (*big.Int, error) {
	a.bal.mu.Lock()
	defer a.bal.mu.Unlock()
	return a.bal.balance(account).ToBig(), nil
}

// Move transfers amount from one account to another.
func (a *Asset) Move(ctx context.Context, from, to common.Address, amount *big.Int) error {
	v, err := toUint(amount)
	if err != nil {
		return fmt.Errorf("transfer %s: %w", a.symbol, err)
	}
	if err := runHook(ctx, a.BeforeTransfer, from, to, amount); err != nil {
		return fmt.Errorf("transfer %s: %w", a.symbol, err)
	}

	a.bal.mu.Lock()
	defer a.bal.mu.Unlock()
	if err := a.bal.debit(from, v); err != nil {
		return fmt.Errorf("transfer %s: %w", a.symbol, err)
	}
	received := v
	if a.TransferFeeBps > 0 {
		fee := new(uint256.Int).Mul(v, uint256.NewInt(uint64(a.TransferFeeBps)))
		fee.Div(fee, uint256.NewInt(10_000))
		received = new(uint256.Int).Sub(v, fee)
	}
	if err := a.bal.credit(to, received); err != nil {
		_ = a.bal.credit(from, v)
		return fmt.Errorf("transfer %s: %w", a.symbol, err)
	}
	return nil
}

// Account returns a handle that transfers out of owner.
func (a *Asset) Account(owner common.Address) *Account {
	return &Account{asset: a, owner: owner}
}

// Account is an Asset bound to the account it sends from.
type Account struct {
	asset *Asset
	owner common.Address
}

// Transfer sends amount from the bound account to to.
func (h *Account) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	return h.asset.Move(ctx, h.owner, to, amount)
}

// TransferFrom moves amount from from to to. The in-memory ledger has no
// allowances; funds are assumed approved.
func (h *Account) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error {
	return h.asset.Move(ctx, from, to, amount)
}

// BalanceOf returns the balance of account.
func (h *Account) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return h.asset.BalanceOf(ctx, account)
}
