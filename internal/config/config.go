package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/efreitasn/borsanova/internal/pricing"
)

// Config holds all runtime configuration for a market session.
type Config struct {
	LogLevel     string
	LogFormat    string
	PricePolicy  string
	PriceStep    int64
	TradeHistory int
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	logFormat := getStr("LOG_FORMAT", "json")
	if logFormat != "json" && logFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q, must be one of: json, text", logFormat)
	}

	priceStep, err := getInt64("PRICE_STEP", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_STEP: %w", err)
	}

	pricePolicy := getStr("PRICE_POLICY", pricing.KindIncrement)
	if _, err := pricing.Parse(pricePolicy, priceStep); err != nil {
		return nil, fmt.Errorf("invalid PRICE_POLICY/PRICE_STEP: %w", err)
	}

	tradeHistory, err := getInt("TRADE_HISTORY", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid TRADE_HISTORY: %w", err)
	}
	if tradeHistory < 0 {
		return nil, fmt.Errorf("invalid TRADE_HISTORY: %d, must be >= 0", tradeHistory)
	}

	return &Config{
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		PricePolicy:  pricePolicy,
		PriceStep:    priceStep,
		TradeHistory: tradeHistory,
	}, nil
}

// Policy builds the default price policy for new exchanges.
func (c *Config) Policy() (pricing.Policy, error) {
	return pricing.Parse(c.PricePolicy, c.PriceStep)
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
