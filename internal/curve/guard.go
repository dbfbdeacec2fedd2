package curve

import "math/big"

// MaxTradeSize returns the largest reserve amount a single trade may move
// against reserve, floor(reserve * maxTradeBps / 10000).
func MaxTradeSize(reserve *big.Int, maxTradeBps uint32) *big.Int {
	limit := new(big.Int).Mul(reserve, new(big.Int).SetUint64(uint64(maxTradeBps)))
	return limit.Quo(limit, big.NewInt(BPS))
}

// checkTradeSize rejects amount when it is strictly above the trade limit.
// A trade exactly at the limit passes.
func checkTradeSize(op, field string, amount, reserve *big.Int, maxTradeBps uint32) error {
	limit := MaxTradeSize(reserve, maxTradeBps)
	if amount.Cmp(limit) > 0 {
		return boundsErr(op, field, new(big.Int).Set(amount), limit, "above max trade size")
	}
	return nil
}
