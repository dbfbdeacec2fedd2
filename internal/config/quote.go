package config

import (
	"github.com/spf13/pflag"
)

// QuoteConfig holds configuration for the quote command.
type QuoteConfig struct {
	Pool         PoolConfig
	Direction    string
	Amount       string
	RPCURL       string
	ReserveToken string
	PoolToken    string
	PoolAddress  string
	LogLevel     string
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, poolDefaults(map[string]interface{}{
		"direction": "buy",
	}))
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		Pool:         loadPool(v),
		Direction:    v.GetString("direction"),
		Amount:       v.GetString("amount"),
		RPCURL:       v.GetString("rpc"),
		ReserveToken: v.GetString("reserve-token"),
		PoolToken:    v.GetString("pool-token"),
		PoolAddress:  v.GetString("pool-address"),
		LogLevel:     v.GetString("log-level"),
	}
	return cfg, nil
}

// Live reports whether reserve and supply should be read from a chain.
func (c QuoteConfig) Live() bool {
	return c.RPCURL != "" && c.PoolAddress != ""
}
