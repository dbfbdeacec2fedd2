package curve

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"bondingCurve/internal/fixedpoint"
)

// Error kinds. Every rejection returned by this package is an *Error whose
// Kind is one of these, so callers can branch with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrBounds     = errors.New("bounds error")
	ErrState      = errors.New("state error")
	ErrSlippage   = errors.New("slippage error")
	ErrExpired    = errors.New("expired error")
	ErrAuth       = errors.New("auth error")
	ErrDomain     = fixedpoint.ErrDomain
)

// Causes attached to state errors.
var (
	ErrReentrant   = errors.New("reentrant call")
	ErrInsolvent   = errors.New("reserve exceeds held balance")
	ErrSupplyDrift = errors.New("token supply drifted from ledger")
	ErrPaused      = errors.New("pool is paused")
	ErrIBRActive   = errors.New("initial bonding round active")
)

// Error describes a rejected operation. Limit and Actual are set for bounds,
// slippage and expiry failures so callers can compute the shortfall.
type Error struct {
	Kind   error
	Op     string
	Field  string
	Limit  *big.Int
	Actual *big.Int
	Reason string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
		if e.Actual != nil {
			fmt.Fprintf(&b, " %s", e.Actual)
		}
	}
	if e.Reason != "" {
		b.WriteString(" ")
		if e.Field == "" {
			b.WriteString("(")
			b.WriteString(e.Reason)
			b.WriteString(")")
		} else {
			b.WriteString(e.Reason)
		}
	}
	if e.Limit != nil {
		fmt.Fprintf(&b, " %s", e.Limit)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Shortfall returns |Limit - Actual|, or nil when either side is unset.
func (e *Error) Shortfall() *big.Int {
	if e.Limit == nil || e.Actual == nil {
		return nil
	}
	diff := new(big.Int).Sub(e.Limit, e.Actual)
	return diff.Abs(diff)
}

// KindName returns a short label for err's kind, suitable for metric labels.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrBounds):
		return "bounds"
	case errors.Is(err, ErrState):
		return "state"
	case errors.Is(err, ErrSlippage):
		return "slippage"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrDomain):
		return "domain"
	default:
		return "internal"
	}
}

func validationErr(op, field, reason string) *Error {
	return &Error{Kind: ErrValidation, Op: op, Field: field, Reason: reason}
}

func boundsErr(op, field string, actual, limit *big.Int, reason string) *Error {
	return &Error{Kind: ErrBounds, Op: op, Field: field, Actual: actual, Limit: limit, Reason: reason}
}

func stateErr(op string, cause error, reason string) *Error {
	return &Error{Kind: ErrState, Op: op, Reason: reason, Err: cause}
}

func slippageErr(op, field string, actual, minimum *big.Int) *Error {
	return &Error{Kind: ErrSlippage, Op: op, Field: field, Actual: actual, Limit: minimum, Reason: "below minimum"}
}

func expiredErr(op string, deadline, now time.Time) *Error {
	return &Error{
		Kind:   ErrExpired,
		Op:     op,
		Field:  "now",
		Actual: big.NewInt(now.Unix()),
		Limit:  big.NewInt(deadline.Unix()),
		Reason: "after deadline",
	}
}

func authErr(op string, caller common.Address, role Role) *Error {
	return &Error{Kind: ErrAuth, Op: op, Reason: fmt.Sprintf("%s is not %s", caller.Hex(), role)}
}

// mathErr classifies a fixed-point failure: domain errors keep their kind,
// overflow surfaces as a bounds error.
func mathErr(op string, err error) *Error {
	if errors.Is(err, fixedpoint.ErrDomain) {
		return &Error{Kind: ErrDomain, Op: op, Err: err}
	}
	return &Error{Kind: ErrBounds, Op: op, Reason: "arithmetic out of range", Err: err}
}

func requirePositive(op, field string, v *big.Int) error {
	if v == nil {
		return validationErr(op, field, "is required")
	}
	if v.Sign() <= 0 {
		return &Error{Kind: ErrValidation, Op: op, Field: field, Actual: new(big.Int).Set(v), Reason: "must be positive"}
	}
	return nil
}

func requireAddress(op, field string, addr common.Address) error {
	if addr == (common.Address{}) {
		return validationErr(op, field, "must not be the zero address")
	}
	return nil
}
