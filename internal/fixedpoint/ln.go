package fixedpoint

import (
	"fmt"
	"math/big"
)

// Ln returns the natural logarithm of x.
//
// x is rescaled by powers of two into [1, 2) with at most MaxLnReductions
// steps, then ln is evaluated as 2*atanh((x-1)/(x+1)), whose argument stays
// below 1/3 so the series gains about one decimal digit per term.
func Ln(x *big.Int) (*big.Int, error) {
	if x == nil || x.Sign() <= 0 {
		return nil, fmt.Errorf("%w: ln of non-positive value %s", ErrDomain, valueString(x))
	}
	if err := CheckWord(x); err != nil {
		return nil, err
	}

	v := new(big.Int).Set(x)
	shift, err := reduceLn(v)
	if err != nil {
		return nil, err
	}

	num := new(big.Int).Sub(v, scale)
	den := new(big.Int).Add(v, scale)
	z := MulDiv(num, scale, den)
	z2 := Mul(z, z)

	sum := new(big.Int).Set(z)
	term := new(big.Int).Set(z)
	for n := int64(3); n < 2*maxSeriesTerms; n += 2 {
		term.Mul(term, z2).Quo(term, scale)
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, new(big.Int).Quo(term, big.NewInt(n)))
	}

	result := sum.Lsh(sum, 1)
	result.Add(result, new(big.Int).Mul(big.NewInt(int64(shift)), ln2))
	return result, nil
}

// reduceLn rescales v in place into [1, 2) and returns the net number of
// right shifts applied, so that ln(x) = ln(v) + shift*ln(2).
func reduceLn(v *big.Int) (int, error) {
	shift := 0
	for i := 0; ; i++ {
		var step int
		switch {
		case v.Cmp(twoScale) >= 0:
			step = clamp(v.BitLen()-scaleBits, 1, lnReductionBits)
		case v.Cmp(scale) < 0:
			step = clamp(v.BitLen()-scaleBits, -lnReductionBits, -1)
		default:
			return shift, nil
		}
		if i == MaxLnReductions {
			return 0, fmt.Errorf("%w: ln range reduction exceeded %d steps", ErrDomain, MaxLnReductions)
		}
		if step > 0 {
			v.Rsh(v, uint(step))
		} else {
			v.Lsh(v, uint(-step))
		}
		shift += step
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func valueString(v *big.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
