// Package fixedpoint implements 18-decimal fixed-point arithmetic with bounded
// natural logarithm, exponential and power approximations.
//
// Every value is a *big.Int scaled by 1e18. Results are constrained to a signed
// 256-bit word so the package reproduces the overflow surface of the on-chain
// implementation it prices against.
//
// Precision: for base in [1e-6, 1e6] and |exponent| <= 20, Pow is within
// 1e-9 relative of the exact value whenever the result is at least 1e-6.
// Outside that domain every function still terminates in a bounded number of
// steps, returning ErrDomain or ErrOverflow rather than looping.
package fixedpoint

import (
	"errors"
	"fmt"
	"math/big"
)

// Decimals is the number of fractional digits carried by fixed-point values.
const Decimals = 18

const (
	// MaxLnReductions bounds the range-reduction loop of Ln. Each step rescales
	// by at most 2^8, so Ln accepts inputs in roughly [1e-18, 1e22].
	MaxLnReductions = 10
	// MaxExpReductions bounds the halving loop of Exp.
	MaxExpReductions = 10
	// MaxBinomialTerms bounds the binomial expansion used by Pow near 1.
	MaxBinomialTerms = 64

	maxSeriesTerms  = 64
	lnReductionBits = 8
	maxWordBits     = 255
)

var (
	// ErrDomain is returned when an input lies outside a function's domain or
	// would need more range reduction than the iteration caps allow.
	ErrDomain = errors.New("input outside function domain")
	// ErrOverflow is returned when a result does not fit a signed 256-bit word.
	ErrOverflow = errors.New("value exceeds 256-bit range")
)

var (
	scale     = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)
	scaleBits = scale.BitLen()
	twoScale  = new(big.Int).Lsh(scale, 1)
	halfScale = new(big.Int).Rsh(scale, 1)
	ppmDenom  = big.NewInt(1_000_000)

	// ln(2) scaled by 1e18, rounded down.
	ln2 = mustInt("693147180559945309")

	// exp(135) * 1e18 is the largest power that still fits 255 bits.
	expMax = new(big.Int).Mul(big.NewInt(135), scale)
	// exp(-42) is below one unit of scale.
	expMin = new(big.Int).Mul(big.NewInt(-42), scale)
)

// One returns a fresh copy of 1.0 (1e18).
func One() *big.Int {
	return new(big.Int).Set(scale)
}

// FromInt converts an integer to fixed point.
func FromInt(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), scale)
}

// FromFraction returns num/den in fixed point, rounded down.
func FromFraction(num, den *big.Int) *big.Int {
	return MulDiv(num, scale, den)
}

// FromFractionUp returns num/den in fixed point, rounded up.
func FromFractionUp(num, den *big.Int) *big.Int {
	return MulDivUp(num, scale, den)
}

// FromPPM converts parts-per-million to fixed point.
func FromPPM(ppm uint32) *big.Int {
	return FromFraction(new(big.Int).SetUint64(uint64(ppm)), ppmDenom)
}

// InversePPM returns 1e6/ppm in fixed point, rounded down.
func InversePPM(ppm uint32) *big.Int {
	return FromFraction(ppmDenom, new(big.Int).SetUint64(uint64(ppm)))
}

// Mul multiplies two fixed-point values, rounding toward zero.
func Mul(a, b *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, scale)
}

// MulDiv computes a*b/d rounding toward zero. d must be non-zero.
func MulDiv(a, b, d *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, d)
}

// MulDivUp computes a*b/d for non-negative operands, rounding up.
func MulDivUp(a, b, d *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	rem := new(big.Int)
	out.QuoRem(out, d, rem)
	if rem.Sign() != 0 {
		out.Add(out, big.NewInt(1))
	}
	return out
}

// CheckWord reports ErrOverflow when v does not fit a signed 256-bit word.
func CheckWord(v *big.Int) error {
	if v.BitLen() > maxWordBits {
		return fmt.Errorf("%w: %d bits", ErrOverflow, v.BitLen())
	}
	return nil
}

// String renders a fixed-point value as a decimal string.
func String(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return new(big.Rat).SetFrac(v, scale).FloatString(Decimals)
}

func mustInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("fixedpoint: invalid constant " + s)
	}
	return v
}
