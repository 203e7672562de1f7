package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the full application configuration
type Config struct {
	Binance     BinanceConfig     `json:"binance"`
	Trading     TradingConfig     `json:"trading"`
	Risk        RiskConfig        `json:"risk"`
	Router      RouterConfig      `json:"router"`
	Housekeeper HousekeeperConfig `json:"housekeeper"`
	Indicators  IndicatorConfig   `json:"indicators"`
	Vault       VaultConfig       `json:"vault"`
	Redis       RedisConfig       `json:"redis"`
	Metrics     MetricsConfig     `json:"metrics"`
	Logging     LoggingConfig     `json:"logging"`
}

// BinanceConfig holds the exchange connection settings
type BinanceConfig struct {
	APIKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`
	BaseURL   string `json:"base_url"`
	TestNet   bool   `json:"testnet"`
	MockMode  bool   `json:"mock_mode"`
}

// TradingConfig holds the symbols and cycle settings
type TradingConfig struct {
	Symbols         []string      `json:"symbols"` // "BASE/QUOTE" form
	Interval        string        `json:"interval"`
	CandleLimit     int           `json:"candle_limit"`
	CycleInterval   time.Duration `json:"cycle_interval"`
	MinQuoteBalance float64       `json:"min_quote_balance"`
	RiskFraction    float64       `json:"risk_fraction"`
}

// RiskConfig holds the protective order distances
type RiskConfig struct {
	StopLossFraction   float64 `json:"stop_loss_fraction"`
	TakeProfitFraction float64 `json:"take_profit_fraction"`
}

// RouterConfig holds the order slicing settings
type RouterConfig struct {
	Chunks       int           `json:"chunks"`
	StepFraction float64       `json:"step_fraction"`
	PaceDelay    time.Duration `json:"pace_delay"`
}

// HousekeeperConfig holds the stale order cleanup settings
type HousekeeperConfig struct {
	Tolerance        float64 `json:"tolerance"`
	CancelStaleSells bool    `json:"cancel_stale_sells"`
}

// IndicatorConfig holds the indicator periods
type IndicatorConfig struct {
	ATRPeriod      int     `json:"atr_period"`
	BandPeriod     int     `json:"band_period"`
	BandMultiplier float64 `json:"band_multiplier"`
}

// VaultConfig holds the Vault credential source settings
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`
	SecretPath string `json:"secret_path"`
}

// RedisConfig holds the limits cache settings
type RedisConfig struct {
	Enabled  bool          `json:"enabled"`
	Address  string        `json:"address"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	TTL      time.Duration `json:"ttl"`
}

// MetricsConfig holds the Prometheus endpoint settings
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
}

// LoggingConfig holds the log output settings
type LoggingConfig struct {
	Level       string `json:"level"`
	JournalPath string `json:"journal_path"`
	Console     bool   `json:"console"`
}

// Load reads configuration from an optional JSON file, then applies
// environment variable overrides and defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Binance: BinanceConfig{
			BaseURL: "https://api.binance.com",
		},
		Trading: TradingConfig{
			Symbols:         []string{"SHIB/USDT"},
			Interval:        "1m",
			CandleLimit:     100,
			CycleInterval:   60 * time.Second,
			MinQuoteBalance: 1,
			RiskFraction:    0.01,
		},
		Risk: RiskConfig{
			StopLossFraction:   0.01,
			TakeProfitFraction: 0.02,
		},
		Router: RouterConfig{
			Chunks:       5,
			StepFraction: 0.001,
			PaceDelay:    time.Second,
		},
		Housekeeper: HousekeeperConfig{
			Tolerance: 0.02,
		},
		Indicators: IndicatorConfig{
			ATRPeriod:      14,
			BandPeriod:     20,
			BandMultiplier: 2,
		},
		Vault: VaultConfig{
			Address:    "http://localhost:8200",
			MountPath:  "secret",
			SecretPath: "spot-trader/api-keys",
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			TTL:     time.Hour,
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
		Logging: LoggingConfig{
			Level:       "info",
			JournalPath: "trade-journal.log",
			Console:     true,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.Binance.APIKey = getEnvOrDefault("BINANCE_API_KEY", cfg.Binance.APIKey)
	cfg.Binance.SecretKey = getEnvOrDefault("BINANCE_SECRET_KEY", cfg.Binance.SecretKey)
	cfg.Binance.BaseURL = getEnvOrDefault("BINANCE_BASE_URL", cfg.Binance.BaseURL)
	cfg.Binance.TestNet = getEnvBool("BINANCE_TESTNET", cfg.Binance.TestNet)
	cfg.Binance.MockMode = getEnvBool("BINANCE_MOCK_MODE", cfg.Binance.MockMode)

	cfg.Trading.Interval = getEnvOrDefault("TRADING_INTERVAL", cfg.Trading.Interval)
	cfg.Trading.RiskFraction = getEnvFloat("TRADING_RISK_FRACTION", cfg.Trading.RiskFraction)
	cfg.Trading.MinQuoteBalance = getEnvFloat("TRADING_MIN_QUOTE_BALANCE", cfg.Trading.MinQuoteBalance)

	cfg.Vault.Enabled = getEnvBool("VAULT_ENABLED", cfg.Vault.Enabled)
	cfg.Vault.Address = getEnvOrDefault("VAULT_ADDR", cfg.Vault.Address)
	cfg.Vault.Token = getEnvOrDefault("VAULT_TOKEN", cfg.Vault.Token)

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Address = getEnvOrDefault("REDIS_ADDR", cfg.Redis.Address)
	cfg.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.Metrics.Enabled = getEnvBool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Address = getEnvOrDefault("METRICS_ADDR", cfg.Metrics.Address)

	cfg.Logging.Level = getEnvOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.JournalPath = getEnvOrDefault("LOG_JOURNAL_PATH", cfg.Logging.JournalPath)

	if cfg.Binance.TestNet && cfg.Binance.BaseURL == "https://api.binance.com" {
		cfg.Binance.BaseURL = "https://testnet.binance.vision"
	}
}

// Validate checks the configuration for values the engine cannot run with
func (c *Config) Validate() error {
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("trading.symbols must not be empty")
	}
	if c.Trading.RiskFraction <= 0 || c.Trading.RiskFraction > 1 {
		return fmt.Errorf("trading.risk_fraction must be in (0, 1], got %v", c.Trading.RiskFraction)
	}
	if c.Trading.CycleInterval <= 0 {
		return fmt.Errorf("trading.cycle_interval must be positive")
	}
	if c.Trading.CandleLimit <= c.Indicators.BandPeriod {
		return fmt.Errorf("trading.candle_limit (%d) must exceed indicators.band_period (%d)",
			c.Trading.CandleLimit, c.Indicators.BandPeriod)
	}
	if c.Risk.StopLossFraction <= 0 || c.Risk.StopLossFraction >= 1 {
		return fmt.Errorf("risk.stop_loss_fraction must be in (0, 1)")
	}
	if c.Risk.TakeProfitFraction <= 0 {
		return fmt.Errorf("risk.take_profit_fraction must be positive")
	}
	if c.Router.Chunks <= 0 {
		return fmt.Errorf("router.chunks must be positive")
	}
	if c.Router.StepFraction < 0 {
		return fmt.Errorf("router.step_fraction must not be negative")
	}
	if c.Housekeeper.Tolerance <= 0 || c.Housekeeper.Tolerance >= 1 {
		return fmt.Errorf("housekeeper.tolerance must be in (0, 1)")
	}
	if !c.Binance.MockMode && !c.Vault.Enabled && (c.Binance.APIKey == "" || c.Binance.SecretKey == "") {
		return fmt.Errorf("binance credentials are required when mock mode and vault are both disabled")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
