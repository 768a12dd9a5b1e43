package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-md2card/internal/config"
)

const envPrefix = "MD2CARD_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MD2CARD_CONFIG: config file name or path
	Timeout    time.Duration // MD2CARD_TIMEOUT: per-deck conversion timeout
	Workers    int           // MD2CARD_WORKERS: parallel workers

	InputDir  string // MD2CARD_INPUT_DIR: default input directory
	OutputDir string // MD2CARD_OUTPUT_DIR: default output directory

	Theme string // MD2CARD_THEME: card theme
	Style string // MD2CARD_STYLE: CSS style name or path
	Store string // MD2CARD_STORE: image store database path
	Addr  string // MD2CARD_ADDR: serve listen address
}

// knownEnvVars lists valid MD2CARD_* environment variables.
var knownEnvVars = map[string]bool{
	"MD2CARD_CONFIG":     true,
	"MD2CARD_TIMEOUT":    true,
	"MD2CARD_WORKERS":    true,
	"MD2CARD_INPUT_DIR":  true,
	"MD2CARD_OUTPUT_DIR": true,
	"MD2CARD_THEME":      true,
	"MD2CARD_STYLE":      true,
	"MD2CARD_STORE":      true,
	"MD2CARD_ADDR":       true,
	"MD2CARD_CONTAINER":  true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MD2CARD_CONFIG"),
		InputDir:   os.Getenv("MD2CARD_INPUT_DIR"),
		OutputDir:  os.Getenv("MD2CARD_OUTPUT_DIR"),
		Theme:      os.Getenv("MD2CARD_THEME"),
		Style:      os.Getenv("MD2CARD_STYLE"),
		Store:      os.Getenv("MD2CARD_STORE"),
		Addr:       os.Getenv("MD2CARD_ADDR"),
	}

	if timeout := os.Getenv("MD2CARD_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := os.Getenv("MD2CARD_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars warns about unrecognized MD2CARD_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		name, _, _ := strings.Cut(env, "=")
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set environment values on cfg.
// Precedence: CLI flags > env vars > config file > defaults.
// CLI flags are applied afterwards by each command.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Theme != "" {
		cfg.Card.Theme = env.Theme
	}
	if env.Style != "" {
		cfg.CSS.Style = env.Style
	}
	if env.Store != "" {
		cfg.Images.Store = env.Store
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
}

// loadConfig resolves the effective configuration for a command.
// configFlag wins over MD2CARD_CONFIG; with neither, defaults are used.
func loadConfig(configFlag string, env *envConfig) (*config.Config, error) {
	name := configFlag
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	applyEnvConfig(env, cfg)
	return cfg, nil
}

// resolveTimeout picks the conversion timeout: flag, then env, then zero
// (the converter default).
func resolveTimeout(flagValue string, envValue time.Duration) (time.Duration, error) {
	if flagValue == "" {
		return envValue, nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid timeout %q: %v", ErrUsage, flagValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrUsage, flagValue)
	}
	return d, nil
}
