package model

import "time"

// PoolState is the persisted view of a pool's latest committed snapshot.
type PoolState struct {
	Pool                string
	Address             string
	ReserveAsset        string
	Token               string
	Reserve             string
	Supply              string
	ProtocolFeesAccrued string
	SpotPrice           string
	CRRPpm              uint32
	TradeFeeBps         uint32
	ProtocolFeeBps      uint32
	MaxTradeBps         uint32
	Paused              bool
	IBREnd              time.Time
	LastSeq             uint64
}

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}
