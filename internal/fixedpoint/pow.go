package fixedpoint

import (
	"fmt"
	"math/big"
)

// Pow returns base^exponent for a non-negative base and a signed exponent.
//
// Near the curve's operating point (|exponent| < 2 and base within 0.5 of 1)
// a truncated binomial series is used; every other input goes through
// exp(exponent * ln(base)). For |base-1| <= 0.5 and |exponent| < 2 the
// binomial coefficients are bounded by k+1, so the tail after
// MaxBinomialTerms terms is below 1e-17 relative.
func Pow(base, exponent *big.Int) (*big.Int, error) {
	if base == nil || exponent == nil {
		return nil, fmt.Errorf("%w: pow of nil", ErrDomain)
	}
	if base.Sign() < 0 {
		return nil, fmt.Errorf("%w: pow of negative base %s", ErrDomain, String(base))
	}
	if exponent.Sign() == 0 {
		return One(), nil
	}
	if base.Sign() == 0 {
		if exponent.Sign() > 0 {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("%w: zero base with negative exponent", ErrDomain)
	}
	if base.Cmp(scale) == 0 {
		return One(), nil
	}

	x := new(big.Int).Sub(base, scale)
	if new(big.Int).Abs(exponent).Cmp(twoScale) < 0 && new(big.Int).Abs(x).Cmp(halfScale) <= 0 {
		return binomial(x, exponent), nil
	}

	l, err := Ln(base)
	if err != nil {
		return nil, err
	}
	return Exp(Mul(l, exponent))
}

// binomial evaluates (1+x)^a as sum C(a,k) x^k.
func binomial(x, a *big.Int) *big.Int {
	sum := One()
	term := One()
	coef := new(big.Int)
	den := new(big.Int)
	for k := int64(0); k < MaxBinomialTerms; k++ {
		coef.Sub(a, new(big.Int).Mul(big.NewInt(k), scale))
		den.Mul(scale, scale)
		den.Mul(den, big.NewInt(k+1))

		term.Mul(term, coef)
		term.Mul(term, x)
		term.Quo(term, den)
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, term)
	}
	if sum.Sign() < 0 {
		return new(big.Int)
	}
	return sum
}
