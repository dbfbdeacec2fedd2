package evmlog

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"bondingCurve/internal/model"
)

// Decoder turns log records back into event records with typed payloads.
type Decoder struct {
	poolABI     abi.ABI
	topicToName map[string]string
}

// NewDecoder builds a decoder over the pool ABI.
func NewDecoder() (*Decoder, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return nil, err
	}
	topicToName := make(map[string]string, len(poolABI.Events))
	for name, event := range poolABI.Events {
		topicToName[strings.ToLower(event.ID.Hex())] = name
	}
	return &Decoder{poolABI: poolABI, topicToName: topicToName}, nil
}

// CanDecode checks if the topic0 is supported.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// Decode converts a LogRecord into an EventRecord.
func (d *Decoder) Decode(log model.LogRecord) (model.EventRecord, error) {
	if len(log.Topics) == 0 {
		return model.EventRecord{}, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[strings.ToLower(log.Topics[0])]
	if !ok {
		return model.EventRecord{}, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}
	event := d.poolABI.Events[name]

	fields, err := unpackFields(event, log)
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("decode %s: %w", name, err)
	}
	payload, err := buildPayload(name, fields)
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("decode %s: %w", name, err)
	}

	return model.EventRecord{
		Seq:       log.Seq,
		ID:        log.EventID,
		Pool:      log.Pool,
		Address:   log.Address,
		Name:      name,
		Timestamp: log.Timestamp,
		Data:      payload,
	}, nil
}

type fields map[string]interface{}

func unpackFields(event abi.Event, log model.LogRecord) (fields, error) {
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return nil, err
	}
	out := make(fields)
	if err := abi.ParseTopicsIntoMap(out, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	data, err := hexutil.Decode(log.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	if err := event.Inputs.NonIndexed().UnpackIntoMap(out, data); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return out, nil
}

func buildPayload(name string, f fields) (interface{}, error) {
	switch name {
	case model.EventPoolCreated:
		return &model.PoolCreated{
			Governor:       f.address("governor"),
			ReserveAsset:   f.address("reserveAsset"),
			Token:          f.address("token"),
			Treasury:       f.address("treasury"),
			CRRPpm:         f.u32("crrPpm"),
			TradeFeeBps:    f.u32("tradeFeeBps"),
			ProtocolFeeBps: f.u32("protocolFeeBps"),
			MaxTradeBps:    f.u32("maxTradeBps"),
			IBREnd:         int64(f.u64("ibrEnd")),
			ReserveAfter:   f.amount("reserveAfter").String(),
			SupplyAfter:    f.amount("supplyAfter").String(),
		}, nil
	case model.EventTradeExecuted:
		return tradeFromFields(f)
	case model.EventParameterChanged:
		field, _ := f["field"].(string)
		return &model.ParameterChange{
			Governor: f.address("governor"),
			Field:    field,
			Old:      f.u32("oldValue"),
			New:      f.u32("newValue"),
		}, nil
	case model.EventPaused, model.EventUnpaused:
		return &model.PauseChange{Governor: f.address("governor"), Paused: name == model.EventPaused}, nil
	case model.EventFeesDeposited:
		return &model.FeeDeposit{
			Depositor:    f.address("depositor"),
			Amount:       f.amount("amount").String(),
			ReserveAfter: f.amount("reserveAfter").String(),
			SupplyAfter:  f.amount("supplyAfter").String(),
		}, nil
	case model.EventTreasuryWithdrawn:
		return &model.TreasuryWithdrawal{
			Governor:     f.address("governor"),
			Treasury:     f.address("treasury"),
			Amount:       f.amount("amount").String(),
			SurplusAfter: f.amount("surplusAfter").String(),
		}, nil
	case model.EventGovernorTransferred:
		return &model.GovernorTransfer{Previous: f.address("previousGovernor"), Next: f.address("newGovernor")}, nil
	case model.EventFeeDepositorSet:
		authorized, _ := f["authorized"].(bool)
		return &model.FeeDepositorChange{
			Governor:   f.address("governor"),
			Account:    f.address("account"),
			Authorized: authorized,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported event name: %s", name)
	}
}

// tradeFromFields rebuilds the signed reserve and supply deltas from the
// logged amounts.
func tradeFromFields(f fields) (*model.TradeRecord, error) {
	code, _ := f["direction"].(uint8)
	amountIn, amountOut := f.amount("amountIn"), f.amount("amountOut")
	protocolFee := f.amount("protocolFee")

	rec := &model.TradeRecord{
		Trader:          f.address("trader"),
		Recipient:       f.address("recipient"),
		AmountIn:        amountIn.String(),
		AmountOut:       amountOut.String(),
		Fee:             f.amount("fee").String(),
		ProtocolFee:     protocolFee.String(),
		ReserveAfter:    f.amount("reserveAfter").String(),
		SupplyAfter:     f.amount("supplyAfter").String(),
		SpotPriceBefore: f.amount("spotPriceBefore").String(),
		SpotPriceAfter:  f.amount("spotPriceAfter").String(),
	}
	switch code {
	case 0:
		rec.Direction = model.DirectionBuy
		rec.ReserveDelta = new(big.Int).Sub(amountIn, protocolFee).String()
		rec.SupplyDelta = amountOut.String()
	case 1:
		rec.Direction = model.DirectionSell
		out := new(big.Int).Add(amountOut, protocolFee)
		rec.ReserveDelta = out.Neg(out).String()
		rec.SupplyDelta = new(big.Int).Neg(amountIn).String()
	default:
		return nil, fmt.Errorf("unknown direction code %d", code)
	}
	return rec, nil
}

func (f fields) address(key string) string {
	addr, _ := f[key].(common.Address)
	return addr.Hex()
}

func (f fields) amount(key string) *big.Int {
	if v, ok := f[key].(*big.Int); ok && v != nil {
		return v
	}
	return new(big.Int)
}

func (f fields) u32(key string) uint32 {
	v, _ := f[key].(uint32)
	return v
}

func (f fields) u64(key string) uint64 {
	v, _ := f[key].(uint64)
	return v
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	return parseTopicHashes(topics[1:])
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
