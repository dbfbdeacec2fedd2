package model

// Event names emitted by a bonding-curve pool.
const (
	EventPoolCreated         = "PoolCreated"
	EventTradeExecuted       = "TradeExecuted"
	EventParameterChanged    = "ParameterChanged"
	EventPaused              = "Paused"
	EventUnpaused            = "Unpaused"
	EventFeesDeposited       = "FeesDeposited"
	EventTreasuryWithdrawn   = "TreasuryWithdrawn"
	EventGovernorTransferred = "GovernorTransferred"
	EventFeeDepositorSet     = "FeeDepositorSet"
)

// Trade directions.
const (
	DirectionBuy  = "buy"
	DirectionSell = "sell"
)

// EventRecord is the append-only envelope for everything a pool emits.
// Seq is strictly increasing per pool.
type EventRecord struct {
	Seq       uint64      `json:"seq"`
	ID        string      `json:"id"`
	Pool      string      `json:"pool"`
	Address   string      `json:"address"`
	Name      string      `json:"name"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// TradeRecord is the immutable record of one executed buy or sell.
// Amounts are base-unit decimal strings; deltas are signed.
type TradeRecord struct {
	Trader          string `json:"trader"`
	Recipient       string `json:"recipient"`
	Direction       string `json:"direction"`
	AmountIn        string `json:"amount_in"`
	AmountOut       string `json:"amount_out"`
	Fee             string `json:"fee"`
	ProtocolFee     string `json:"protocol_fee"`
	ReserveDelta    string `json:"reserve_delta"`
	SupplyDelta     string `json:"supply_delta"`
	ReserveAfter    string `json:"reserve_after"`
	SupplyAfter     string `json:"supply_after"`
	SpotPriceBefore string `json:"spot_price_before"`
	SpotPriceAfter  string `json:"spot_price_after"`
}

// ParameterChange records a governor update of one pool parameter.
type ParameterChange struct {
	Governor string `json:"governor"`
	Field    string `json:"field"`
	Old      uint32 `json:"old"`
	New      uint32 `json:"new"`
}

// PauseChange records a pause or unpause.
type PauseChange struct {
	Governor string `json:"governor"`
	Paused   bool   `json:"paused"`
}

// FeeDeposit records value injected into the reserve without minting.
type FeeDeposit struct {
	Depositor    string `json:"depositor"`
	Amount       string `json:"amount"`
	ReserveAfter string `json:"reserve_after"`
	SupplyAfter  string `json:"supply_after"`
}

// TreasuryWithdrawal records surplus paid out to the treasury.
type TreasuryWithdrawal struct {
	Governor     string `json:"governor"`
	Treasury     string `json:"treasury"`
	Amount       string `json:"amount"`
	SurplusAfter string `json:"surplus_after"`
}

// GovernorTransfer records a hand-over of the governor role.
type GovernorTransfer struct {
	Previous string `json:"previous"`
	Next     string `json:"next"`
}

// FeeDepositorChange records a grant or revocation of the fee depositor role.
type FeeDepositorChange struct {
	Governor   string `json:"governor"`
	Account    string `json:"account"`
	Authorized bool   `json:"authorized"`
}

// PoolCreated records the seeded initial state of a pool.
type PoolCreated struct {
	Governor       string `json:"governor"`
	ReserveAsset   string `json:"reserve_asset"`
	Token          string `json:"token"`
	Treasury       string `json:"treasury"`
	CRRPpm         uint32 `json:"crr_ppm"`
	TradeFeeBps    uint32 `json:"trade_fee_bps"`
	ProtocolFeeBps uint32 `json:"protocol_fee_bps"`
	MaxTradeBps    uint32 `json:"max_trade_bps"`
	IBREnd         int64  `json:"ibr_end"`
	ReserveAfter   string `json:"reserve_after"`
	SupplyAfter    string `json:"supply_after"`
}
