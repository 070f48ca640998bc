package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: SHADOWMAP_[SECTION]_[KEY] (e.g., SHADOWMAP_OBSERVABILITY_PORT).
func ApplyEnvOverrides(cfg *Config) {
	// Database
	setEnvBool(&cfg.DB.Enabled, "SHADOWMAP_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "SHADOWMAP_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "SHADOWMAP_DB_BUSY_TIMEOUT")

	// Resolve
	setEnvString(&cfg.Resolve.Prefix, "SHADOWMAP_RESOLVE_PREFIX")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "SHADOWMAP_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.RateLimit, "SHADOWMAP_WATCH_RATE_LIMIT")
	setEnvInt(&cfg.Watch.Burst, "SHADOWMAP_WATCH_BURST")

	// Output
	setEnvString(&cfg.Output.SARIF, "SHADOWMAP_OUTPUT_SARIF")
	setEnvString(&cfg.Output.Markdown, "SHADOWMAP_OUTPUT_MARKDOWN")
	setEnvString(&cfg.Output.TSV, "SHADOWMAP_OUTPUT_TSV")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "SHADOWMAP_OBSERVABILITY_ENABLED")
	setEnvInt(&cfg.Observability.Port, "SHADOWMAP_OBSERVABILITY_PORT")
	setEnvString(&cfg.Observability.OTLPEndpoint, "SHADOWMAP_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "SHADOWMAP_OBSERVABILITY_ENABLE_TRACING")
	setEnvBool(&cfg.Observability.EnableMetrics, "SHADOWMAP_OBSERVABILITY_ENABLE_METRICS")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}
