package fixedpoint

import (
	"fmt"
	"math/big"
)

// Exp returns e^x.
//
// Inputs below -42 round to zero; inputs above 135 overflow the word. |x| is
// halved until it is at most 1 (never more than MaxExpReductions times), the
// Taylor series is summed, and the result is squared back up.
func Exp(x *big.Int) (*big.Int, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: exp of nil", ErrDomain)
	}
	if x.Cmp(expMax) > 0 {
		return nil, fmt.Errorf("%w: exp(%s)", ErrOverflow, String(x))
	}
	if x.Cmp(expMin) < 0 {
		return new(big.Int), nil
	}

	r := new(big.Int).Abs(x)
	halvings := 0
	for r.Cmp(scale) > 0 {
		if halvings == MaxExpReductions {
			return nil, fmt.Errorf("%w: exp range reduction exceeded %d steps", ErrDomain, MaxExpReductions)
		}
		r.Rsh(r, 1)
		halvings++
	}

	sum := One()
	term := One()
	for n := int64(1); n <= maxSeriesTerms; n++ {
		term.Mul(term, r)
		term.Quo(term, new(big.Int).Mul(scale, big.NewInt(n)))
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, term)
	}

	for i := 0; i < halvings; i++ {
		sum.Mul(sum, sum).Quo(sum, scale)
		if err := CheckWord(sum); err != nil {
			return nil, err
		}
	}

	if x.Sign() < 0 {
		inv := new(big.Int).Mul(scale, scale)
		return inv.Quo(inv, sum), nil
	}
	return sum, nil
}
