package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pcbshop/boardopts/pkg/defaults"
)

// Environment variables that override DefaultConfig.
const (
	EnvPort          = "PORT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvVendor        = "PCBSHOP_VENDOR"
	EnvOptionsSource = "PCBSHOP_OPTIONS_SOURCE"
)

// DefaultConfig returns sensible defaults, overridden by environment variables.
func DefaultConfig() *Config {
	cfg := &Config{
		Address:         "",
		Port:            8080,
		RateLimit:       100, // 100 req/s
		RateLimitBurst:  200,
		MaxBodyBytes:    1 << 20,
		ReadTimeout:     defaults.ServerReadTimeout,
		WriteTimeout:    defaults.ServerWriteTimeout,
		IdleTimeout:     defaults.ServerIdleTimeout,
		ShutdownTimeout: defaults.ServerShutdownTimeout,
		LogLevel:        slog.LevelInfo.String(),
	}

	if portStr := os.Getenv(EnvPort); portStr != "" {
		var port int
		if _, err := fmt.Sscanf(portStr, "%d", &port); err == nil && port > 0 {
			cfg.Port = port
		}
	}

	if logLevelStr := os.Getenv(EnvLogLevel); logLevelStr != "" {
		cfg.LogLevel = logLevelStr
	}

	cfg.Vendor = os.Getenv(EnvVendor)
	cfg.OptionsSource = os.Getenv(EnvOptionsSource)

	return cfg
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}
