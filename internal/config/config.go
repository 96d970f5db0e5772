// Package config loads the service's environment-driven configuration,
// using koanf's env provider the way the teacher's internal/util.InitConfig
// layers env overrides on top of defaults — here there is no TOML file,
// since spec.md names only environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds every environment-variable-driven setting spec.md names,
// plus the ambient ports/timeouts a runnable service needs.
type Config struct {
	SolanaRPCURL string
	LogLevel     string

	HTTPAddress    string
	MetricsAddress string
	HealthAddress  string

	MonitorInterval       time.Duration
	MonitoringDepth       uint64
	WorkersCount          int
	PreferredIntervalSize uint64
	MinIntervalSize       uint64
	CacheCapacity         int

	RPCTimeout     time.Duration
	WorkerThrottle time.Duration
	WorkerBackoff  time.Duration
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":               "info",
		"port":                    "3000",
		"http.address":            "",
		"metrics.address":         ":9102",
		"health.address":          ":8080",
		"monitor.interval.ms":     "1000",
		"monitoring.depth":        "1000",
		"workers.count":           "5",
		"interval.size":           "100",
		"min.interval.size":       "5",
		"cache.capacity":          "100000",
		"rpc.timeout.ms":          "5000",
		"worker.throttle.ms":      "0",
		"worker.backoff.ms":       "2000",
	}
}

// Load reads SOLANA_RPC_URL, PORT, LOG_LEVEL, and the synchronizer tuning
// variables named in spec.md §6 from the environment, falling back to
// defaults, and returns a validated Config.
//
// Environment variable names map to koanf keys the same way the teacher's
// env.Provider does: uppercase-with-underscores becomes
// lowercase-with-dots (MONITOR_INTERVAL_MS -> monitor.interval.ms).
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load environment: %w", err)
	}

	rpcURL := k.String("solana.rpc.url")
	if rpcURL == "" {
		return nil, fmt.Errorf("config: SOLANA_RPC_URL is required")
	}

	// INTERVAL_SIZE is accepted as an alias for PREFERRED_INTERVAL_SIZE.
	preferredSize := k.Int64("preferred.interval.size")
	if preferredSize == 0 {
		preferredSize = k.Int64("interval.size")
	}

	httpAddr := k.String("http.address")
	if httpAddr == "" {
		httpAddr = ":" + k.String("port")
	}

	return &Config{
		SolanaRPCURL:          rpcURL,
		LogLevel:              k.String("log.level"),
		HTTPAddress:           httpAddr,
		MetricsAddress:        k.String("metrics.address"),
		HealthAddress:         k.String("health.address"),
		MonitorInterval:       time.Duration(k.Int64("monitor.interval.ms")) * time.Millisecond,
		MonitoringDepth:       uint64(k.Int64("monitoring.depth")),
		WorkersCount:          k.Int("workers.count"),
		PreferredIntervalSize: uint64(preferredSize),
		MinIntervalSize:       uint64(k.Int64("min.interval.size")),
		CacheCapacity:         k.Int("cache.capacity"),
		RPCTimeout:            time.Duration(k.Int64("rpc.timeout.ms")) * time.Millisecond,
		WorkerThrottle:        time.Duration(k.Int64("worker.throttle.ms")) * time.Millisecond,
		WorkerBackoff:         time.Duration(k.Int64("worker.backoff.ms")) * time.Millisecond,
	}, nil
}
