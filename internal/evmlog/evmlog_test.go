package evmlog

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"bondingCurve/internal/model"
)

var (
	trader    = common.HexToAddress("0x2222222222222222222222222222222222222222")
	recipient = common.HexToAddress("0x3333333333333333333333333333333333333333")
	governor  = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

func newCodec(t *testing.T) (*Encoder, *Decoder) {
	t.Helper()
	enc, err := NewEncoder()
	if err != nil {
		t.Fatalf("encoder: %v", err)
	}
	dec, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	return enc, dec
}

func TestTradeExecutedLog(t *testing.T) {
	enc, dec := newCodec(t)

	rec := model.EventRecord{
		Seq:       4,
		ID:        "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		Pool:      "pool-1",
		Address:   "0x1111111111111111111111111111111111111111",
		Name:      model.EventTradeExecuted,
		Timestamp: 1700000000,
		Data: &model.TradeRecord{
			Trader:          trader.Hex(),
			Recipient:       recipient.Hex(),
			Direction:       model.DirectionSell,
			AmountIn:        "955",
			AmountOut:       "990",
			Fee:             "10",
			ProtocolFee:     "5",
			ReserveDelta:    "-995",
			SupplyDelta:     "-955",
			ReserveAfter:    "10005",
			SupplyAfter:     "100000",
			SpotPriceBefore: "1089000000000000000",
			SpotPriceAfter:  "1000500000000000000",
		},
	}

	log, err := enc.Encode(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(log.Topics) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(log.Topics))
	}
	if !strings.HasSuffix(strings.ToLower(log.Topics[1]), strings.ToLower(trader.Hex()[2:])) {
		t.Fatalf("trader topic mismatch: %s", log.Topics[1])
	}
	if !dec.CanDecode(log.Topics[0]) || dec.CanDecode("0xdeadbeef") {
		t.Fatalf("CanDecode mismatch")
	}

	decoded, err := dec.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Seq != 4 || decoded.Pool != "pool-1" || decoded.ID != rec.ID || decoded.Name != model.EventTradeExecuted {
		t.Fatalf("envelope mismatch: %+v", decoded)
	}
	trade, ok := decoded.Data.(*model.TradeRecord)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", decoded.Data)
	}
	if *trade != *rec.Data.(*model.TradeRecord) {
		t.Fatalf("trade mismatch:\n got %+v\nwant %+v", trade, rec.Data)
	}
}

func TestPausedLogHasNoData(t *testing.T) {
	enc, dec := newCodec(t)

	log, err := enc.Encode(model.EventRecord{
		Seq:  2,
		Pool: "pool-1",
		Name: model.EventPaused,
		Data: &model.PauseChange{Governor: governor.Hex(), Paused: true},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if log.Data != "0x" {
		t.Fatalf("expected empty data, got %s", log.Data)
	}

	decoded, err := dec.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	change := decoded.Data.(*model.PauseChange)
	if !change.Paused || change.Governor != governor.Hex() {
		t.Fatalf("pause mismatch: %+v", change)
	}
}

func TestParameterChangedLog(t *testing.T) {
	enc, dec := newCodec(t)

	want := &model.ParameterChange{Governor: governor.Hex(), Field: "crr_ppm", Old: 100000, New: 200000}
	log, err := enc.Encode(model.EventRecord{Name: model.EventParameterChanged, Data: want})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := dec.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := decoded.Data.(*model.ParameterChange); *got != *want {
		t.Fatalf("parameter change mismatch: %+v", got)
	}
}

func TestEncodeRejectsBadPayload(t *testing.T) {
	enc, _ := newCodec(t)

	_, err := enc.Encode(model.EventRecord{
		Name: model.EventFeesDeposited,
		Data: &model.FeeDeposit{Depositor: governor.Hex(), Amount: "-1", ReserveAfter: "1", SupplyAfter: "1"},
	})
	if err == nil {
		t.Fatalf("expected negative amount to fail")
	}

	_, err = enc.Encode(model.EventRecord{Name: model.EventPaused, Data: "oops"})
	if err == nil {
		t.Fatalf("expected unexpected payload to fail")
	}
}

func TestDecodeRejectsMalformedLogs(t *testing.T) {
	enc, dec := newCodec(t)

	log, err := enc.Encode(model.EventRecord{
		Name: model.EventGovernorTransferred,
		Data: &model.GovernorTransfer{Previous: governor.Hex(), Next: trader.Hex()},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	short := log
	short.Topics = log.Topics[:2]
	if _, err := dec.Decode(short); err == nil {
		t.Fatalf("expected topic count error")
	}
	if _, err := dec.Decode(model.LogRecord{}); err == nil {
		t.Fatalf("expected missing topics error")
	}
	unknown := log
	unknown.Topics = append([]string{"0x" + strings.Repeat("ab", 32)}, log.Topics[1:]...)
	if _, err := dec.Decode(unknown); err == nil {
		t.Fatalf("expected unsupported topic error")
	}
}
