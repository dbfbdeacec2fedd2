package config

import (
	"github.com/spf13/pflag"
)

// SimulateConfig holds configuration for the simulate command.
type SimulateConfig struct {
	Pool            PoolConfig
	PoolID          string
	Script          string
	Out             string
	PGDSN           string
	MetricsAddr     string
	Window          string
	Start           string
	FeeDepositors   []string
	RPCURL          string
	ReserveToken    string
	ReserveDecimals uint8
	TokenDecimals   uint8
	MemoryCapacity  int
	MaxRetries      int
	LogLevel        string
}

// LoadSimulate merges config file, environment variables, and flags into SimulateConfig.
func LoadSimulate(cfgFile string, flags *pflag.FlagSet) (SimulateConfig, error) {
	v, err := newViper(cfgFile, flags, poolDefaults(map[string]interface{}{
		"pool-id":         "sim",
		"out":             "./data/events.jsonl",
		"window":          "1h",
		"memory-capacity": 4096,
		"max-retries":     3,
	}))
	if err != nil {
		return SimulateConfig{}, err
	}

	cfg := SimulateConfig{
		Pool:            loadPool(v),
		PoolID:          v.GetString("pool-id"),
		Script:          v.GetString("script"),
		Out:             v.GetString("out"),
		PGDSN:           v.GetString("pg-dsn"),
		MetricsAddr:     v.GetString("metrics-addr"),
		Window:          v.GetString("window"),
		Start:           v.GetString("start"),
		FeeDepositors:   getStringSlice(v, "fee-depositor"),
		RPCURL:          v.GetString("rpc"),
		ReserveToken:    v.GetString("reserve-token"),
		ReserveDecimals: uint8(v.GetUint("reserve-decimals")),
		TokenDecimals:   uint8(v.GetUint("token-decimals")),
		MemoryCapacity:  v.GetInt("memory-capacity"),
		MaxRetries:      v.GetInt("max-retries"),
		LogLevel:        v.GetString("log-level"),
	}
	return cfg, nil
}
