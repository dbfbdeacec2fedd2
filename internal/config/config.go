package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// PoolConfig holds the parameters of a pool created by a command.
type PoolConfig struct {
	CRRPpm         uint32
	TradeFeeBps    uint32
	ProtocolFeeBps uint32
	MaxTradeBps    uint32
	IBRDuration    time.Duration
	InitialReserve string
	InitialSupply  string
}

// newViper merges config file, environment variables, and flags.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CURVE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("curve")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func poolDefaults(into map[string]interface{}) map[string]interface{} {
	into["crr-ppm"] = uint32(100_000)
	into["trade-fee-bps"] = uint32(25)
	into["protocol-fee-bps"] = uint32(0)
	into["max-trade-bps"] = uint32(2_000)
	into["ibr-duration"] = 7 * 24 * time.Hour
	return into
}

func loadPool(v *viper.Viper) PoolConfig {
	return PoolConfig{
		CRRPpm:         v.GetUint32("crr-ppm"),
		TradeFeeBps:    v.GetUint32("trade-fee-bps"),
		ProtocolFeeBps: v.GetUint32("protocol-fee-bps"),
		MaxTradeBps:    v.GetUint32("max-trade-bps"),
		IBRDuration:    v.GetDuration("ibr-duration"),
		InitialReserve: v.GetString("initial-reserve"),
		InitialSupply:  v.GetString("initial-supply"),
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
