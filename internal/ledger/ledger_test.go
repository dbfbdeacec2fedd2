package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func TestAssetMove(t *testing.T) {
	ctx := context.Background()
	asset := NewAsset("RSV")
	if err := asset.Fund(alice, big.NewInt(100)); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := asset.Account(alice).Transfer(ctx, bob, big.NewInt(40)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	a, _ := asset.BalanceOf(ctx, alice)
	b, _ := asset.BalanceOf(ctx, bob)
	if a.Int64() != 60 || b.Int64() != 40 {
		t.Fatalf("balances = %s/%s, want 60/40", a, b)
	}

	err := asset.Account(bob).TransferFrom(ctx, alice, bob, big.NewInt(61))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	a, _ = asset.BalanceOf(ctx, alice)
	if a.Int64() != 60 {
		t.Fatalf("failed transfer changed balance to %s", a)
	}
}

func TestAssetTransferFee(t *testing.T) {
	ctx := context.Background()
	asset := NewAsset("FOT")
	asset.TransferFeeBps = 100
	_ = asset.Fund(alice, big.NewInt(10_000))
	if err := asset.Move(ctx, alice, bob, big.NewInt(10_000)); err != nil {
		t.Fatalf("move: %v", err)
	}
	b, _ := asset.BalanceOf(ctx, bob)
	if b.Int64() != 9_900 {
		t.Fatalf("received %s, want 9900", b)
	}
}

func TestAssetRejectsNegativeAndOverflow(t *testing.T) {
	asset := NewAsset("RSV")
	if err := asset.Fund(alice, big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	if err := asset.Fund(alice, huge); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	ceiling := new(big.Int).Sub(huge, big.NewInt(1))
	if err := asset.Fund(alice, ceiling); err != nil {
		t.Fatalf("fund max: %v", err)
	}
	if err := asset.Fund(alice, big.NewInt(1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow on credit, got %v", err)
	}
}

func TestHookAbortsTransfer(t *testing.T) {
	ctx := context.Background()
	asset := NewAsset("RSV")
	_ = asset.Fund(alice, big.NewInt(10))
	boom := errors.New("boom")
	asset.BeforeTransfer = func(context.Context, common.Address, common.Address, *big.Int) error {
		return boom
	}
	if err := asset.Move(ctx, alice, bob, big.NewInt(5)); !errors.Is(err, boom) {
		t.Fatalf("expected hook error, got %v", err)
	}
	a, _ := asset.BalanceOf(ctx, alice)
	if a.Int64() != 10 {
		t.Fatalf("balance changed to %s", a)
	}
}

func TestTokenMintBurn(t *testing.T) {
	ctx := context.Background()
	token := NewToken("CRV")
	if err := token.Mint(ctx, alice, big.NewInt(500)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := token.Burn(ctx, alice, big.NewInt(200)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	supply, _ := token.TotalSupply(ctx)
	if supply.Int64() != 300 {
		t.Fatalf("supply = %s, want 300", supply)
	}
	if err := token.Burn(ctx, bob, big.NewInt(1)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := token.Transfer(ctx, alice, bob, big.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	b, _ := token.BalanceOf(ctx, bob)
	supply, _ = token.TotalSupply(ctx)
	if b.Int64() != 100 || supply.Int64() != 300 {
		t.Fatalf("bob=%s supply=%s", b, supply)
	}
}
