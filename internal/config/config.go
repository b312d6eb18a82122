// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Venues    VenuesConfig    `mapstructure:"venues"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ScannerConfig holds the arbitrage scanner's tunable parameters, mapped
// 1:1 onto spec.md's §6 configuration surface.
type ScannerConfig struct {
	Pairs         []string      `mapstructure:"pairs"`
	MaxDecimals   int           `mapstructure:"max_decimals"`
	ThreshEnterPc float64       `mapstructure:"thresh_enter_pct"`
	ThreshExitPc  float64       `mapstructure:"thresh_exit_pct"`
	MaxProfitPct  float64       `mapstructure:"max_profit_pct"`
	LongSecs      float64       `mapstructure:"long_secs"`
	StaleSecs     float64       `mapstructure:"stale_secs"`
	DiscoveryTTL  time.Duration `mapstructure:"discovery_timeout"`
}

// ThreshEnterFraction returns THRESH_ENTER_PCT as a profit fraction (e.g.
// 0.40% -> 0.004), the unit the hysteresis state machine operates in.
func (c *ScannerConfig) ThreshEnterFraction() decimal.Decimal {
	return decimal.NewFromFloat(c.ThreshEnterPc).Div(decimal.NewFromInt(100))
}

// ThreshExitFraction is the §4.E THRESH_EXIT parameter as a fraction.
func (c *ScannerConfig) ThreshExitFraction() decimal.Decimal {
	return decimal.NewFromFloat(c.ThreshExitPc).Div(decimal.NewFromInt(100))
}

// LongMs is LONG_SECS converted to milliseconds for §4.E's is_long check.
func (c *ScannerConfig) LongMs() int64 {
	return int64(c.LongSecs * 1000)
}

// StaleMs is STALE_SECS converted to milliseconds for §4.F's list_stale.
func (c *ScannerConfig) StaleMs() int64 {
	return int64(c.StaleSecs * 1000)
}

// VenuesConfig lists which venue connectors to load and their per-venue
// websocket/REST overrides. Names must match a registered connector
// constructor (see business/market/infra/venue.Register).
type VenuesConfig struct {
	Enabled []string                 `mapstructure:"enabled"`
	Options map[string]VenueOptions  `mapstructure:"options"`
}

// VenueOptions holds the knobs common across connector implementations;
// individual connectors ignore fields that don't apply to their protocol.
type VenueOptions struct {
	WebSocketURL string `mapstructure:"websocket_url"`
	RestURL      string `mapstructure:"rest_url"`
	SubBatch     int    `mapstructure:"sub_batch"`
	DepthLevels  int    `mapstructure:"depth_levels"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("scanner.pairs", "ARB_PAIRS")
	v.BindEnv("scanner.max_decimals", "ARB_MAX_DECIMALS")
	v.BindEnv("scanner.thresh_enter_pct", "ARB_THRESH_ENTER_PCT")
	v.BindEnv("scanner.thresh_exit_pct", "ARB_THRESH_EXIT_PCT")
	v.BindEnv("scanner.max_profit_pct", "ARB_MAX_PROFIT_PCT")
	v.BindEnv("scanner.long_secs", "ARB_LONG_SECS")
	v.BindEnv("scanner.stale_secs", "ARB_STALE_SECS")

	v.BindEnv("venues.enabled", "ARB_VENUES")

	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arb-scanner")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("scanner.pairs", []string{"BTC/USDT", "ETH/USDT"})
	v.SetDefault("scanner.max_decimals", 12)
	v.SetDefault("scanner.thresh_enter_pct", 0.40)
	v.SetDefault("scanner.thresh_exit_pct", 0.30)
	v.SetDefault("scanner.max_profit_pct", 10.0)
	v.SetDefault("scanner.long_secs", 60)
	v.SetDefault("scanner.stale_secs", 30)
	v.SetDefault("scanner.discovery_timeout", "20s")

	v.SetDefault("venues.enabled", []string{"binance", "bitget", "kraken", "lbank", "coinbase"})

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arb-scanner")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Scanner.Pairs) == 0 {
		return fmt.Errorf("scanner.pairs cannot be empty")
	}
	if c.Scanner.MaxDecimals < 1 {
		return fmt.Errorf("scanner.max_decimals must be >= 1")
	}
	if c.Scanner.ThreshExitPc >= c.Scanner.ThreshEnterPc {
		return fmt.Errorf("scanner.thresh_exit_pct (%v) must be < scanner.thresh_enter_pct (%v)", c.Scanner.ThreshExitPc, c.Scanner.ThreshEnterPc)
	}
	if len(c.Venues.Enabled) == 0 {
		return fmt.Errorf("venues.enabled cannot be empty")
	}
	return nil
}
