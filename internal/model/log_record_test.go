package model

import (
	"encoding/json"
	"testing"
)

func TestLogRecordJSONFieldNames(t *testing.T) {
	record := LogRecord{
		Pool:       "pool-1",
		Seq:        7,
		EventID:    "b6f0c7f2-0f3a-4d8b-9a51-2f4c1d9e7a10",
		Address:    "0x1111111111111111111111111111111111111111",
		Topics:     []string{"0xaaa", "0xbbb"},
		Data:       "0xdeadbeef",
		Timestamp:  1700000000,
		IngestedAt: "2024-01-01T00:00:00Z",
	}

	b, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"pool", "seq", "event_id", "address", "topics", "data", "timestamp", "ingested_at"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing json key %q in %s", key, b)
		}
	}
}

func TestTradeRecordAmountsAreStrings(t *testing.T) {
	payload := TradeRecord{
		Trader:          "0x2222222222222222222222222222222222222222",
		Recipient:       "0x3333333333333333333333333333333333333333",
		Direction:       DirectionBuy,
		AmountIn:        "1000000000000000000000",
		AmountOut:       "955000000000000000000",
		Fee:             "2500000000000000000",
		ProtocolFee:     "0",
		ReserveDelta:    "1000000000000000000000",
		SupplyDelta:     "955000000000000000000",
		ReserveAfter:    "11000000000000000000000",
		SupplyAfter:     "100955000000000000000000",
		SpotPriceBefore: "1000000000000000000",
		SpotPriceAfter:  "1089000000000000000",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"amount_in", "amount_out", "fee", "reserve_delta", "spot_price_after"} {
		if _, ok := decoded[key].(string); !ok {
			t.Fatalf("%s should be string", key)
		}
	}
}
