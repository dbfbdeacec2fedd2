package aggregate

import (
	"math/big"
	"time"
)

const (
	ratioScale = 18
	// spot prices are 18-decimal fixed point
	priceDecimals = 18
)

func formatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

func computeRateFromInt(fee *big.Int, base *big.Int) *string {
	if fee == nil || fee.Sign() == 0 || base == nil || base.Sign() == 0 {
		return nil
	}
	rat := new(big.Rat).SetFrac(fee, base)
	rate := rat.FloatString(ratioScale)
	return &rate
}

func computeAPR(feeRate *string, windowSeconds int64) *string {
	if feeRate == nil || windowSeconds <= 0 {
		return nil
	}
	rat, ok := new(big.Rat).SetString(*feeRate)
	if !ok {
		return nil
	}
	yearSeconds := big.NewRat(int64(365*24*time.Hour/time.Second), 1)
	window := big.NewRat(windowSeconds, 1)
	apr := new(big.Rat).Mul(rat, yearSeconds)
	apr.Quo(apr, window)
	val := apr.FloatString(ratioScale)
	return &val
}
