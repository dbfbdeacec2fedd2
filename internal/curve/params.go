package curve

import (
	"fmt"
	"math/big"
	"time"
)

// Denominators for ratio parameters.
const (
	PPM = 1_000_000
	BPS = 10_000
)

// Parameter bounds.
const (
	MinCRRPpm          uint32 = 50_000
	MaxCRRPpm          uint32 = 500_000
	MaxTradeFeeBps     uint32 = 1_000
	MaxProtocolFeeBps  uint32 = 5_000
	MinMaxTradeBps     uint32 = 1
	MaxMaxTradeBps     uint32 = 5_000
	DefaultMaxTradeBps uint32 = 2_000

	MinIBRDuration = 24 * time.Hour
	MaxIBRDuration = 30 * 24 * time.Hour
)

// Params are the governor-tunable settings of a pool.
type Params struct {
	// CRRPpm is the connector reserve ratio in parts per million.
	CRRPpm uint32
	// TradeFeeBps is charged on every buy input and sell output.
	TradeFeeBps uint32
	// ProtocolFeeBps is the share of the trade fee that leaves the reserve
	// for the treasury. The rest of the fee stays in the reserve.
	ProtocolFeeBps uint32
	// MaxTradeBps caps a single trade relative to the current reserve.
	MaxTradeBps uint32
}

// DefaultParams returns a 10% CRR pool with a 25 bps fee.
func DefaultParams() Params {
	return Params{
		CRRPpm:         100_000,
		TradeFeeBps:    25,
		ProtocolFeeBps: 0,
		MaxTradeBps:    DefaultMaxTradeBps,
	}
}

// Validate checks every parameter against its bounds.
func (p Params) Validate() error {
	return p.validate("params")
}

func (p Params) validate(op string) error {
	if err := checkRange(op, "crr_ppm", p.CRRPpm, MinCRRPpm, MaxCRRPpm); err != nil {
		return err
	}
	if err := checkRange(op, "trade_fee_bps", p.TradeFeeBps, 0, MaxTradeFeeBps); err != nil {
		return err
	}
	if err := checkRange(op, "protocol_fee_bps", p.ProtocolFeeBps, 0, MaxProtocolFeeBps); err != nil {
		return err
	}
	return checkRange(op, "max_trade_bps", p.MaxTradeBps, MinMaxTradeBps, MaxMaxTradeBps)
}

func checkRange(op, field string, v, lo, hi uint32) error {
	actual := new(big.Int).SetUint64(uint64(v))
	if v < lo {
		return boundsErr(op, field, actual, new(big.Int).SetUint64(uint64(lo)), "below minimum")
	}
	if v > hi {
		return boundsErr(op, field, actual, new(big.Int).SetUint64(uint64(hi)), "above maximum")
	}
	return nil
}

func checkIBRDuration(op string, d time.Duration) error {
	if d < MinIBRDuration || d > MaxIBRDuration {
		return &Error{
			Kind:   ErrBounds,
			Op:     op,
			Field:  "ibr_duration",
			Reason: fmt.Sprintf("%s outside [%s, %s]", d, MinIBRDuration, MaxIBRDuration),
		}
	}
	return nil
}

// splitFee returns the trade fee on amount and the protocol share of it.
// Both round down.
func splitFee(amount *big.Int, p Params) (fee, protocol *big.Int) {
	fee = new(big.Int).Mul(amount, big.NewInt(int64(p.TradeFeeBps)))
	fee.Quo(fee, big.NewInt(BPS))
	protocol = new(big.Int).Mul(fee, big.NewInt(int64(p.ProtocolFeeBps)))
	protocol.Quo(protocol, big.NewInt(BPS))
	return fee, protocol
}
