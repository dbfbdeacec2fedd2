package evmlog

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const poolABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "governor", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "reserveAsset", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "token", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "treasury", "type": "address"},
      {"indexed": false, "internalType": "uint32", "name": "crrPpm", "type": "uint32"},
      {"indexed": false, "internalType": "uint32", "name": "tradeFeeBps", "type": "uint32"},
      {"indexed": false, "internalType": "uint32", "name": "protocolFeeBps", "type": "uint32"},
      {"indexed": false, "internalType": "uint32", "name": "maxTradeBps", "type": "uint32"},
      {"indexed": false, "internalType": "uint64", "name": "ibrEnd", "type": "uint64"},
      {"indexed": false, "internalType": "uint256", "name": "reserveAfter", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "supplyAfter", "type": "uint256"}
    ],
    "name": "PoolCreated",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "trader", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "recipient", "type": "address"},
      {"indexed": false, "internalType": "uint8", "name": "direction", "type": "uint8"},
      {"indexed": false, "internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amountOut", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "fee", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "protocolFee", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "reserveAfter", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "supplyAfter", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "spotPriceBefore", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "spotPriceAfter", "type": "uint256"}
    ],
    "name": "TradeExecuted",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "governor", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "field", "type": "string"},
      {"indexed": false, "internalType": "uint32", "name": "oldValue", "type": "uint32"},
      {"indexed": false, "internalType": "uint32", "name": "newValue", "type": "uint32"}
    ],
    "name": "ParameterChanged",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "governor", "type": "address"}
    ],
    "name": "Paused",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "governor", "type": "address"}
    ],
    "name": "Unpaused",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "depositor", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "reserveAfter", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "supplyAfter", "type": "uint256"}
    ],
    "name": "FeesDeposited",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "treasury", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "governor", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "surplusAfter", "type": "uint256"}
    ],
    "name": "TreasuryWithdrawn",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "previousGovernor", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "newGovernor", "type": "address"}
    ],
    "name": "GovernorTransferred",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "account", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "governor", "type": "address"},
      {"indexed": false, "internalType": "bool", "name": "authorized", "type": "bool"}
    ],
    "name": "FeeDepositorSet",
    "type": "event"
  }
]`

var (
	poolABI     abi.ABI
	poolABIOnce sync.Once
	poolABIErr  error
)

// PoolABI returns the parsed bonding-curve pool event ABI.
func PoolABI() (abi.ABI, error) {
	poolABIOnce.Do(func() {
		poolABI, poolABIErr = abi.JSON(strings.NewReader(poolABIJSON))
	})
	return poolABI, poolABIErr
}
