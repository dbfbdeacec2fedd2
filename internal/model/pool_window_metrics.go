package model

import "time"

// PoolWindowMetrics stores aggregated trade metrics for a pool window.
// Amount fields are formatted with the reserve or token decimals.
type PoolWindowMetrics struct {
	Pool           string    `json:"pool"`
	WindowSizeSecs int64     `json:"window_size_seconds"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	TradeCount     uint64    `json:"trade_count"`
	BuyCount       uint64    `json:"buy_count"`
	SellCount      uint64    `json:"sell_count"`
	ReserveVolume  string    `json:"reserve_volume"`
	TokenVolume    string    `json:"token_volume"`
	Fees           string    `json:"fees"`
	ProtocolFees   string    `json:"protocol_fees"`
	OpenSpotPrice  string    `json:"open_spot_price"`
	CloseSpotPrice string    `json:"close_spot_price"`
	CloseReserve   string    `json:"close_reserve"`
	CloseSupply    string    `json:"close_supply"`
	FeeRate        *string   `json:"fee_rate,omitempty"`
	APR            *string   `json:"apr,omitempty"`
}
