// Package evmlog converts pool event records to and from EVM log form:
// topic0 is the event signature hash, indexed arguments follow as topics and
// the remaining arguments are ABI-encoded into data.
package evmlog

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"bondingCurve/internal/model"
)

// Encoder packs event records into log records.
type Encoder struct {
	poolABI abi.ABI
	now     func() time.Time
}

// NewEncoder builds an encoder over the pool ABI.
func NewEncoder() (*Encoder, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return nil, err
	}
	return &Encoder{poolABI: poolABI, now: time.Now}, nil
}

// Encode converts rec into its log form.
func (e *Encoder) Encode(rec model.EventRecord) (model.LogRecord, error) {
	indexed, values, err := e.arguments(rec)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("encode %s seq %d: %w", rec.Name, rec.Seq, err)
	}
	event, ok := e.poolABI.Events[rec.Name]
	if !ok {
		return model.LogRecord{}, fmt.Errorf("encode: unknown event %s", rec.Name)
	}
	data, err := event.Inputs.NonIndexed().Pack(values...)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("pack %s: %w", rec.Name, err)
	}

	topics := make([]string, 0, len(indexed)+1)
	topics = append(topics, event.ID.Hex())
	for _, addr := range indexed {
		topics = append(topics, common.BytesToHash(addr.Bytes()).Hex())
	}

	return model.LogRecord{
		Pool:       rec.Pool,
		Seq:        rec.Seq,
		EventID:    rec.ID,
		Address:    rec.Address,
		Topics:     topics,
		Data:       hexutil.Encode(data),
		Timestamp:  rec.Timestamp,
		IngestedAt: e.now().UTC().Format(time.RFC3339Nano),
	}, nil
}

func (e *Encoder) arguments(rec model.EventRecord) ([]common.Address, []interface{}, error) {
	switch data := rec.Data.(type) {
	case *model.PoolCreated:
		values, err := parseAmounts(data.ReserveAfter, data.SupplyAfter)
		if err != nil {
			return nil, nil, err
		}
		head := []interface{}{
			common.HexToAddress(data.Treasury),
			data.CRRPpm,
			data.TradeFeeBps,
			data.ProtocolFeeBps,
			data.MaxTradeBps,
			uint64(data.IBREnd),
		}
		return addresses(data.Governor, data.ReserveAsset, data.Token), append(head, values...), nil
	case *model.TradeRecord:
		direction, err := directionCode(data.Direction)
		if err != nil {
			return nil, nil, err
		}
		values, err := parseAmounts(data.AmountIn, data.AmountOut, data.Fee, data.ProtocolFee,
			data.ReserveAfter, data.SupplyAfter, data.SpotPriceBefore, data.SpotPriceAfter)
		if err != nil {
			return nil, nil, err
		}
		return addresses(data.Trader, data.Recipient), append([]interface{}{direction}, values...), nil
	case *model.ParameterChange:
		return addresses(data.Governor), []interface{}{data.Field, data.Old, data.New}, nil
	case *model.PauseChange:
		return addresses(data.Governor), nil, nil
	case *model.FeeDeposit:
		values, err := parseAmounts(data.Amount, data.ReserveAfter, data.SupplyAfter)
		if err != nil {
			return nil, nil, err
		}
		return addresses(data.Depositor), values, nil
	case *model.TreasuryWithdrawal:
		values, err := parseAmounts(data.Amount, data.SurplusAfter)
		if err != nil {
			return nil, nil, err
		}
		return addresses(data.Treasury), append([]interface{}{common.HexToAddress(data.Governor)}, values...), nil
	case *model.GovernorTransfer:
		return addresses(data.Previous, data.Next), nil, nil
	case *model.FeeDepositorChange:
		return addresses(data.Account), []interface{}{common.HexToAddress(data.Governor), data.Authorized}, nil
	default:
		return nil, nil, fmt.Errorf("unexpected payload %T", rec.Data)
	}
}

func addresses(hexes ...string) []common.Address {
	out := make([]common.Address, len(hexes))
	for i, h := range hexes {
		out[i] = common.HexToAddress(h)
	}
	return out
}

// parseAmounts parses unsigned base-unit decimal strings for uint256 packing.
func parseAmounts(values ...string) ([]interface{}, error) {
	out := make([]interface{}, len(values))
	for i, v := range values {
		n, ok := new(big.Int).SetString(v, 10)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("invalid amount %q", v)
		}
		out[i] = n
	}
	return out, nil
}

func directionCode(direction string) (uint8, error) {
	switch direction {
	case model.DirectionBuy:
		return 0, nil
	case model.DirectionSell:
		return 1, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", direction)
	}
}
