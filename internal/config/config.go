package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the immutable snapshot passed to the broker at startup and
// consumed by the CLI, replacing the source's global mutable settings
// object (spec §9 Design Notes, "Global mutable state").
type Config struct {
	Paths          Paths
	IdleTimeout    time.Duration
	LogLevel       string
	Debug          bool
	LogMaxSizeMB   int
	LogRetainDays  int
	DialRetries    int
	DialBackoff    time.Duration
}

const (
	defaultIdleTimeout   = 300 * time.Second
	defaultLogLevel      = "info"
	defaultLogMaxSizeMB  = 10
	defaultLogRetainDays = 1
	defaultDialRetries   = 5
	defaultDialBackoff   = 50 * time.Millisecond
)

// Load builds a Config from defaults overridden by LSPCLI_* environment
// variables, mirroring the teacher's lsp/config_env_overrides.go pattern
// generalized from per-language Java flags to whole-process knobs.
func Load() Config {
	cfg := Config{
		Paths:         ResolvePaths(),
		IdleTimeout:   defaultIdleTimeout,
		LogLevel:      defaultLogLevel,
		LogMaxSizeMB:  defaultLogMaxSizeMB,
		LogRetainDays: defaultLogRetainDays,
		DialRetries:   defaultDialRetries,
		DialBackoff:   defaultDialBackoff,
	}

	if v := os.Getenv("LSPCLI_IDLE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.IdleTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("LSPCLI_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LSPCLI_DEBUG"); v != "" {
		cfg.Debug = v == "1" || v == "true"
	}
	if v := os.Getenv("LSPCLI_LOG_MAX_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LogMaxSizeMB = n
		}
	}
	if v := os.Getenv("LSPCLI_LOG_RETAIN_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LogRetainDays = n
		}
	}
	if v := os.Getenv("XDG_RUNTIME_DIR_OVERRIDE"); v != "" {
		cfg.Paths.Runtime = v
	}

	return cfg
}
