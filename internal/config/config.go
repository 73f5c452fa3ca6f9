// Package config loads the analysis configuration from YAML.
//
// Invalid configuration is fatal: commands must stop before any analysis pass
// runs when Validate fails.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"prun-economy-lab/internal/arbitrage"
	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/scoring"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendDatabase = "database"
)

// Config is the top-level configuration.
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Scoring   scoring.Config  `yaml:"scoring"`
	Arbitrage ArbitrageConfig `yaml:"arbitrage"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// AnalysisConfig controls one analysis pass.
type AnalysisConfig struct {
	ReferenceExchange string   `yaml:"reference_exchange"` // prices byproduct allocation
	Exchanges         []string `yaml:"exchanges"`          // exchanges to score and scan
	Workers           int      `yaml:"workers"`            // fan-out limit
}

// ArbitrageConfig controls opportunity reporting.
type ArbitrageConfig struct {
	Levels            arbitrage.LevelThresholds `yaml:"levels"`
	MinProfit         float64                   `yaml:"min_profit"`
	MinProfitFraction float64                   `yaml:"min_profit_fraction"`
}

// ScanConfig converts to the scanner's configuration.
func (a ArbitrageConfig) ScanConfig() arbitrage.ScanConfig {
	return arbitrage.ScanConfig{
		Levels:            a.Levels,
		MinProfit:         a.MinProfit,
		MinProfitFraction: a.MinProfitFraction,
	}
}

// StorageConfig selects where catalog, snapshot and results live.
type StorageConfig struct {
	Backend       string `yaml:"backend"` // "memory" | "database"
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
	SnapshotID    string `yaml:"snapshot_id"` // empty = latest
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `yaml:"level"`  // zerolog level name
	Format string `yaml:"format"` // "console" | "json"
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Scoring: scoring.DefaultConfig(),
		Arbitrage: ArbitrageConfig{
			Levels:            arbitrage.DefaultLevelThresholds(),
			MinProfit:         100,
			MinProfitFraction: 0.05,
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Parse decodes YAML over the defaults, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Load reads a YAML config file. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Analysis.ReferenceExchange == "" {
		c.Analysis.ReferenceExchange = domain.ExchangeAI1
	}
	if len(c.Analysis.Exchanges) == 0 {
		c.Analysis.Exchanges = append([]string(nil), domain.Exchanges...)
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = runtime.NumCPU()
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks every section. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Analysis.ReferenceExchange == "" {
		return fmt.Errorf("%w: analysis.reference_exchange is required", ErrInvalidConfig)
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("%w: analysis.workers must be >= 1, got %d", ErrInvalidConfig, c.Analysis.Workers)
	}
	seen := make(map[string]bool, len(c.Analysis.Exchanges))
	for _, e := range c.Analysis.Exchanges {
		if e == "" {
			return fmt.Errorf("%w: analysis.exchanges contains an empty code", ErrInvalidConfig)
		}
		if seen[e] {
			return fmt.Errorf("%w: analysis.exchanges repeats %s", ErrInvalidConfig, e)
		}
		seen[e] = true
	}

	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("%w: scoring: %w", ErrInvalidConfig, err)
	}

	a := c.Arbitrage
	if a.MinProfit < 0 || a.MinProfitFraction < 0 {
		return fmt.Errorf("%w: arbitrage thresholds must be non-negative", ErrInvalidConfig)
	}
	l := a.Levels
	if l.Low < 0 || l.Low > l.Medium || l.Medium > l.High || l.High > l.VeryHigh {
		return fmt.Errorf("%w: arbitrage.levels must be non-negative and ascending", ErrInvalidConfig)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendDatabase:
		if c.Storage.PostgresDSN == "" || c.Storage.ClickHouseDSN == "" {
			return fmt.Errorf("%w: storage.postgres_dsn and storage.clickhouse_dsn are required for the database backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage.backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}
