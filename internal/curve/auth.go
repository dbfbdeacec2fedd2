package curve

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Role is a privilege checked before privileged operations.
type Role int

const (
	RoleGovernor Role = iota + 1
	RoleFeeDepositor
)

func (r Role) String() string {
	switch r {
	case RoleGovernor:
		return "governor"
	case RoleFeeDepositor:
		return "fee depositor"
	default:
		return "unknown role"
	}
}

type callerKey struct{}

// WithCaller returns a context that identifies addr as the account invoking
// pool operations.
func WithCaller(ctx context.Context, addr common.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, addr)
}

// CallerFrom returns the caller stored by WithCaller.
func CallerFrom(ctx context.Context) (common.Address, bool) {
	addr, ok := ctx.Value(callerKey{}).(common.Address)
	return addr, ok
}

func requireCaller(ctx context.Context, op string) (common.Address, error) {
	addr, ok := CallerFrom(ctx)
	if !ok || addr == (common.Address{}) {
		return common.Address{}, validationErr(op, "caller", "is not set on the context")
	}
	return addr, nil
}

func (s *Snapshot) hasRole(addr common.Address, role Role) bool {
	switch role {
	case RoleGovernor:
		return addr == s.Governor
	case RoleFeeDepositor:
		return addr == s.Governor || s.FeeDepositors[addr]
	default:
		return false
	}
}

func (s *Snapshot) authorize(ctx context.Context, op string, role Role) (common.Address, error) {
	caller, err := requireCaller(ctx, op)
	if err != nil {
		return common.Address{}, err
	}
	if !s.hasRole(caller, role) {
		return common.Address{}, authErr(op, caller, role)
	}
	return caller, nil
}
