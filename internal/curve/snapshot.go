package curve

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Snapshot is an immutable view of committed pool state. Pools hand out
// copies, so callers may quote against a snapshot without holding any lock.
type Snapshot struct {
	Pool                string
	Reserve             *big.Int
	Supply              *big.Int
	ProtocolFeesAccrued *big.Int
	Params              Params
	Paused              bool
	CreatedAt           time.Time
	IBREnd              time.Time
	Governor            common.Address
	Treasury            common.Address
	FeeDepositors       map[common.Address]bool
	Seq                 uint64
	Trades              uint64
}

// NewSnapshot builds a detached snapshot for quoting, outside any pool.
func NewSnapshot(reserve, supply *big.Int, params Params) (*Snapshot, error) {
	const op = "snapshot"
	if err := requirePositive(op, "reserve", reserve); err != nil {
		return nil, err
	}
	if err := requirePositive(op, "supply", supply); err != nil {
		return nil, err
	}
	if err := params.validate(op); err != nil {
		return nil, err
	}
	return &Snapshot{
		Reserve:             new(big.Int).Set(reserve),
		Supply:              new(big.Int).Set(supply),
		ProtocolFeesAccrued: new(big.Int),
		Params:              params,
		FeeDepositors:       map[common.Address]bool{},
	}, nil
}

func (s *Snapshot) clone() *Snapshot {
	out := *s
	out.Reserve = new(big.Int).Set(s.Reserve)
	out.Supply = new(big.Int).Set(s.Supply)
	out.ProtocolFeesAccrued = new(big.Int).Set(s.ProtocolFeesAccrued)
	out.FeeDepositors = make(map[common.Address]bool, len(s.FeeDepositors))
	for addr, ok := range s.FeeDepositors {
		out.FeeDepositors[addr] = ok
	}
	return &out
}

// SpotPrice returns reserve / (crr * supply) scaled by 1e18, rounded down.
// It is zero for an empty supply.
func (s *Snapshot) SpotPrice() *big.Int {
	return spotPrice(s.Reserve, s.Supply, s.Params.CRRPpm)
}
