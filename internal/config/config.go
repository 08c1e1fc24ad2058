// Package config loads cmd/backtest's run configuration from the
// environment. Adapted from exchange-matching/internal/config's
// Load()/Validate() shape, narrowed to a single-process batch job's
// concerns (no HTTP/stream server settings).
package config

import (
	"fmt"
	"strings"

	"github.com/exchange/hftbacktest/internal/envconfig"
)

// Config is a single backtest run's full configuration.
type Config struct {
	AppEnv      string
	MetricsPort int

	FixturePath string
	TickSize    float64
	LotSize     float64

	AssetType    string // "linear" or "inverse"
	ContractSize float64

	StartPosition float64
	StartBalance  float64
	MakerFee      float64
	TakerFee      float64

	QueueModel string // "risk_averse" or "log_prob"

	EntryLatencyNs    int64
	ResponseLatencyNs int64

	// LatencyModel selects between "constant" (EntryLatencyNs /
	// ResponseLatencyNs applied to every order) and "feed" (scaled
	// off each row's observed local_ts - exch_ts).
	LatencyModel          string
	FeedLatencyMultiplier float64

	// ResultStoreDSN, if set, causes cmd/backtest to persist run
	// results to Postgres via internal/resultstore.
	ResultStoreDSN string

	// FixtureCacheAddr, if set, causes cmd/backtest to check a
	// Redis-backed cache of normalized fixtures (internal/fixturecache)
	// before reading FixturePath from disk.
	FixtureCacheAddr     string
	FixtureCachePassword string
	FixtureCacheDB       int

	// Schedule, if set, is a 5-field cron expression causing
	// cmd/backtest to repeat the run on that schedule instead of
	// exiting after one pass.
	Schedule string
}

// Load reads the run configuration from the environment.
func Load() *Config {
	return &Config{
		AppEnv:      strings.ToLower(envconfig.GetEnv("APP_ENV", "dev")),
		MetricsPort: envconfig.GetEnvInt("BACKTEST_METRICS_PORT", 9090),

		FixturePath: envconfig.GetEnv("BACKTEST_FIXTURE_PATH", ""),
		TickSize:    envconfig.GetEnvFloat64("BACKTEST_TICK_SIZE", 0.01),
		LotSize:     envconfig.GetEnvFloat64("BACKTEST_LOT_SIZE", 0.001),

		AssetType:    strings.ToLower(envconfig.GetEnv("BACKTEST_ASSET_TYPE", "linear")),
		ContractSize: envconfig.GetEnvFloat64("BACKTEST_CONTRACT_SIZE", 1),

		StartPosition: envconfig.GetEnvFloat64("BACKTEST_START_POSITION", 0),
		StartBalance:  envconfig.GetEnvFloat64("BACKTEST_START_BALANCE", 0),
		MakerFee:      envconfig.GetEnvFloat64("BACKTEST_MAKER_FEE", 0),
		TakerFee:      envconfig.GetEnvFloat64("BACKTEST_TAKER_FEE", 0),

		QueueModel: strings.ToLower(envconfig.GetEnv("BACKTEST_QUEUE_MODEL", "risk_averse")),

		EntryLatencyNs:    envconfig.GetEnvInt64("BACKTEST_ENTRY_LATENCY_NS", 1_000_000),
		ResponseLatencyNs: envconfig.GetEnvInt64("BACKTEST_RESPONSE_LATENCY_NS", 1_000_000),

		LatencyModel:          strings.ToLower(envconfig.GetEnv("BACKTEST_LATENCY_MODEL", "constant")),
		FeedLatencyMultiplier: envconfig.GetEnvFloat64("BACKTEST_FEED_LATENCY_MULTIPLIER", 1.0),

		ResultStoreDSN: envconfig.GetEnv("BACKTEST_RESULT_STORE_DSN", ""),

		FixtureCacheAddr:     envconfig.GetEnv("BACKTEST_FIXTURE_CACHE_ADDR", ""),
		FixtureCachePassword: envconfig.GetEnv("BACKTEST_FIXTURE_CACHE_PASSWORD", ""),
		FixtureCacheDB:       envconfig.GetEnvInt("BACKTEST_FIXTURE_CACHE_DB", 0),

		Schedule: envconfig.GetEnv("BACKTEST_SCHEDULE", ""),
	}
}

// Validate checks the loaded configuration for the invariants the
// backtest core itself relies on.
func (c *Config) Validate() error {
	if c.FixturePath == "" {
		return fmt.Errorf("BACKTEST_FIXTURE_PATH is required")
	}
	if c.TickSize <= 0 {
		return fmt.Errorf("BACKTEST_TICK_SIZE must be positive")
	}
	if c.LotSize <= 0 {
		return fmt.Errorf("BACKTEST_LOT_SIZE must be positive")
	}
	switch c.AssetType {
	case "linear", "inverse":
	default:
		return fmt.Errorf("BACKTEST_ASSET_TYPE must be 'linear' or 'inverse', got %q", c.AssetType)
	}
	switch c.QueueModel {
	case "risk_averse", "log_prob":
	default:
		return fmt.Errorf("BACKTEST_QUEUE_MODEL must be 'risk_averse' or 'log_prob', got %q", c.QueueModel)
	}
	if c.EntryLatencyNs < 0 || c.ResponseLatencyNs < 0 {
		return fmt.Errorf("latency values must not be negative")
	}
	switch c.LatencyModel {
	case "constant", "feed":
	default:
		return fmt.Errorf("BACKTEST_LATENCY_MODEL must be 'constant' or 'feed', got %q", c.LatencyModel)
	}
	return nil
}
