package aggregate

import (
	"fmt"
	"math/big"

	"bondingCurve/internal/model"
)

// Accumulator holds aggregate values for a pool window.
type Accumulator struct {
	Pool          string
	WindowStart   int64
	WindowEnd     int64
	TradeCount    uint64
	BuyCount      uint64
	SellCount     uint64
	ReserveVolume *big.Int
	TokenVolume   *big.Int
	Fees          *big.Int
	ProtocolFees  *big.Int
	OpenSpot      *big.Int
	CloseSpot     *big.Int
	CloseReserve  *big.Int
	CloseSupply   *big.Int
	LastSeq       uint64
}

func NewAccumulator(record model.EventRecord, windowStart, windowEnd int64) *Accumulator {
	return &Accumulator{
		Pool:          record.Pool,
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
		ReserveVolume: big.NewInt(0),
		TokenVolume:   big.NewInt(0),
		Fees:          big.NewInt(0),
		ProtocolFees:  big.NewInt(0),
	}
}

// AddEvent folds a record into the window. Records that carry no reserve
// movement are ignored.
func (a *Accumulator) AddEvent(record model.EventRecord) error {
	switch data := record.Data.(type) {
	case *model.TradeRecord:
		if err := a.applyTrade(data); err != nil {
			return err
		}
	case *model.FeeDeposit:
		if err := a.applyClose(data.ReserveAfter, data.SupplyAfter); err != nil {
			return err
		}
	case *model.PoolCreated:
		if err := a.applyClose(data.ReserveAfter, data.SupplyAfter); err != nil {
			return err
		}
	default:
		return nil
	}
	if record.Seq > a.LastSeq {
		a.LastSeq = record.Seq
	}
	return nil
}

func (a *Accumulator) applyTrade(trade *model.TradeRecord) error {
	amountIn, err := parseBigInt(trade.AmountIn)
	if err != nil {
		return err
	}
	amountOut, err := parseBigInt(trade.AmountOut)
	if err != nil {
		return err
	}
	fee, err := parseBigInt(trade.Fee)
	if err != nil {
		return err
	}
	protocolFee, err := parseBigInt(trade.ProtocolFee)
	if err != nil {
		return err
	}
	spotBefore, err := parseBigInt(trade.SpotPriceBefore)
	if err != nil {
		return err
	}
	spotAfter, err := parseBigInt(trade.SpotPriceAfter)
	if err != nil {
		return err
	}

	switch trade.Direction {
	case model.DirectionBuy:
		a.ReserveVolume.Add(a.ReserveVolume, amountIn)
		a.TokenVolume.Add(a.TokenVolume, amountOut)
		a.BuyCount++
	case model.DirectionSell:
		a.ReserveVolume.Add(a.ReserveVolume, amountOut)
		a.TokenVolume.Add(a.TokenVolume, amountIn)
		a.SellCount++
	default:
		return fmt.Errorf("unknown trade direction %q", trade.Direction)
	}
	if err := a.applyClose(trade.ReserveAfter, trade.SupplyAfter); err != nil {
		return err
	}

	a.Fees.Add(a.Fees, fee)
	a.ProtocolFees.Add(a.ProtocolFees, protocolFee)
	if a.OpenSpot == nil {
		a.OpenSpot = spotBefore
	}
	a.CloseSpot = spotAfter
	a.TradeCount++
	return nil
}

func (a *Accumulator) applyClose(reserve, supply string) error {
	closeReserve, err := parseBigInt(reserve)
	if err != nil {
		return err
	}
	closeSupply, err := parseBigInt(supply)
	if err != nil {
		return err
	}
	a.CloseReserve = closeReserve
	a.CloseSupply = closeSupply
	return nil
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}
