// Package config loads the engine's process-level configuration: defaults,
// overridden by environment variables (an optional .env-style file fills
// in only variables not already set), then by flags, matching
// the layering of the teacher's pkg/config/env.go (LoadEnv/GetRPCEndpoints)
// generalized into a small typed struct instead of loose package-level
// getters.
package config

import (
	"bufio"
	"flag"
	"os"
	"strconv"
	"strings"

	"invariant/internal/numeric"
)

// Config holds the engine's process settings: the protocol fee the engine
// applies to every pool's swap fees, fee tiers seeded at startup, and CLI/service
// settings. Grounded on spec.md 4.12.
type Config struct {
	ProtocolFeePercent uint64 // Percentage numerator, scale 12 (e.g. 10^10 == 1%)
	InitialFeeTiers    []InitialFeeTier
	ListenAddr         string
	LogLevel           string
	EnvPath            string
}

type InitialFeeTier struct {
	FeePercent  uint64
	TickSpacing uint16
}

func Default() Config {
	return Config{
		ProtocolFeePercent: numeric.PercentageFromScale(1, 2).Get().Uint64(), // 1%
		InitialFeeTiers: []InitialFeeTier{
			{FeePercent: 1_000_000_00, TickSpacing: 1},
			{FeePercent: 3_000_000_00, TickSpacing: 10},
		},
		ListenAddr: ":8090",
		LogLevel:   "info",
		EnvPath:    ".env",
	}
}

// LoadEnv loads KEY=VALUE pairs from filename into the process environment
// without overwriting anything already set, the same optional-.env-file
// layering as the teacher's pkg/config/env.go::LoadEnv. The per-line
// grammar lives in parseEnvLine so the scan loop only has to decide what
// to do with an already-parsed key/value pair.
func LoadEnv(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// parseEnvLine splits a single .env line into a KEY, VALUE pair, reporting
// false for blank lines, comments, and anything without an '=' separator.
func parseEnvLine(raw string) (key, value string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// Load builds a Config from Default(), overridden by environment
// variables, after loading the optional .env file at envPath into the
// environment without replacing variables already set. Flags registered
// with BindFlags and parsed afterwards by the caller override individual
// fields of the result.
func Load(envPath string) Config {
	cfg := Default()
	cfg.EnvPath = envPath

	if err := LoadEnv(envPath); err != nil {
		return cfg
	}

	if v := os.Getenv("PROTOCOL_FEE_PERCENT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.ProtocolFeePercent = n
		}
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// BindFlags registers flag overrides for the fields a CLI invocation is
// likely to want to tweak per run, matching cmd/quote/main.go's pattern of
// flag.Int/flag.String calls directly against package-level vars.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ListenAddr, "listen", c.ListenAddr, "listen address (recorded in ListenAddr; no subcommand opens a listener)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.EnvPath, "env", c.EnvPath, "path to .env file (recorded in EnvPath; Load reads only the path passed to it)")
}
