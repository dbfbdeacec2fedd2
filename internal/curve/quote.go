package curve

import (
	"math/big"

	"bondingCurve/internal/fixedpoint"
	"bondingCurve/internal/model"
)

// Quote is the full outcome of a trade against a snapshot. For buys AmountIn
// is gross reserve and AmountOut is tokens; for sells it is the reverse and
// AmountOut is net of the fee.
type Quote struct {
	Direction       string
	AmountIn        *big.Int
	AmountOut       *big.Int
	Fee             *big.Int
	ProtocolFee     *big.Int
	SpotPriceBefore *big.Int
	SpotPriceAfter  *big.Int
	ReserveAfter    *big.Int
	SupplyAfter     *big.Int
}

// QuoteBuy prices a purchase paying reserveIn:
//
//	tokensOut = supply * ((1 + netIn/reserve)^crr - 1)
//
// Each step rounds toward the pool, so the result never exceeds the exact
// curve value.
func (s *Snapshot) QuoteBuy(reserveIn *big.Int) (Quote, error) {
	const op = "quote_buy"
	if err := requirePositive(op, "reserve_in", reserveIn); err != nil {
		return Quote{}, err
	}
	if err := s.requireLiquidity(op); err != nil {
		return Quote{}, err
	}

	fee, protocol := splitFee(reserveIn, s.Params)
	netIn := new(big.Int).Sub(reserveIn, fee)

	base := fixedpoint.FromFraction(new(big.Int).Add(s.Reserve, netIn), s.Reserve)
	growth, err := fixedpoint.Pow(base, fixedpoint.FromPPM(s.Params.CRRPpm))
	if err != nil {
		return Quote{}, mathErr(op, err)
	}

	tokensOut := new(big.Int)
	if excess := new(big.Int).Sub(growth, fixedpoint.One()); excess.Sign() > 0 {
		tokensOut = fixedpoint.MulDiv(s.Supply, excess, fixedpoint.One())
	}

	reserveAfter := new(big.Int).Add(s.Reserve, reserveIn)
	reserveAfter.Sub(reserveAfter, protocol)
	supplyAfter := new(big.Int).Add(s.Supply, tokensOut)
	if err := checkWords(op, reserveAfter, supplyAfter); err != nil {
		return Quote{}, err
	}

	return Quote{
		Direction:       model.DirectionBuy,
		AmountIn:        new(big.Int).Set(reserveIn),
		AmountOut:       tokensOut,
		Fee:             fee,
		ProtocolFee:     protocol,
		SpotPriceBefore: s.SpotPrice(),
		SpotPriceAfter:  spotPrice(reserveAfter, supplyAfter, s.Params.CRRPpm),
		ReserveAfter:    reserveAfter,
		SupplyAfter:     supplyAfter,
	}, nil
}

// QuoteSell prices a sale of tokensIn:
//
//	rawOut = reserve * (1 - (1 - tokensIn/supply)^(1/crr))
//
// The fee is taken from rawOut. The remaining supply fraction rounds up and
// the exponent rounds down so the payout never exceeds the exact curve value.
func (s *Snapshot) QuoteSell(tokensIn *big.Int) (Quote, error) {
	const op = "quote_sell"
	if err := requirePositive(op, "tokens_in", tokensIn); err != nil {
		return Quote{}, err
	}
	if err := s.requireLiquidity(op); err != nil {
		return Quote{}, err
	}
	if tokensIn.Cmp(s.Supply) > 0 {
		return Quote{}, boundsErr(op, "tokens_in", new(big.Int).Set(tokensIn), new(big.Int).Set(s.Supply), "above token supply")
	}

	remaining := new(big.Int).Sub(s.Supply, tokensIn)
	base := fixedpoint.FromFractionUp(remaining, s.Supply)
	decay, err := fixedpoint.Pow(base, fixedpoint.InversePPM(s.Params.CRRPpm))
	if err != nil {
		return Quote{}, mathErr(op, err)
	}

	rawOut := new(big.Int)
	if shrink := new(big.Int).Sub(fixedpoint.One(), decay); shrink.Sign() > 0 {
		rawOut = fixedpoint.MulDiv(s.Reserve, shrink, fixedpoint.One())
	}
	if rawOut.Cmp(s.Reserve) > 0 {
		rawOut.Set(s.Reserve)
	}

	fee, protocol := splitFee(rawOut, s.Params)
	reserveOut := new(big.Int).Sub(rawOut, fee)
	reserveAfter := new(big.Int).Sub(s.Reserve, reserveOut)
	reserveAfter.Sub(reserveAfter, protocol)

	return Quote{
		Direction:       model.DirectionSell,
		AmountIn:        new(big.Int).Set(tokensIn),
		AmountOut:       reserveOut,
		Fee:             fee,
		ProtocolFee:     protocol,
		SpotPriceBefore: s.SpotPrice(),
		SpotPriceAfter:  spotPrice(reserveAfter, remaining, s.Params.CRRPpm),
		ReserveAfter:    reserveAfter,
		SupplyAfter:     remaining,
	}, nil
}

func (s *Snapshot) requireLiquidity(op string) error {
	if s.Reserve.Sign() <= 0 || s.Supply.Sign() <= 0 {
		return stateErr(op, nil, "pool has no reserve or supply")
	}
	return nil
}

func spotPrice(reserve, supply *big.Int, crrPpm uint32) *big.Int {
	if supply.Sign() <= 0 || crrPpm == 0 {
		return new(big.Int)
	}
	num := new(big.Int).Mul(reserve, big.NewInt(PPM))
	num.Mul(num, fixedpoint.One())
	den := new(big.Int).Mul(supply, new(big.Int).SetUint64(uint64(crrPpm)))
	return num.Quo(num, den)
}

func checkWords(op string, values ...*big.Int) error {
	for _, v := range values {
		if err := fixedpoint.CheckWord(v); err != nil {
			return mathErr(op, err)
		}
	}
	return nil
}
