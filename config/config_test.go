package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Trading.CycleInterval != 60*time.Second {
		t.Errorf("expected 60s cycle interval, got %v", cfg.Trading.CycleInterval)
	}
	if cfg.Trading.RiskFraction != 0.01 {
		t.Errorf("expected risk fraction 0.01, got %v", cfg.Trading.RiskFraction)
	}
	if cfg.Router.Chunks != 5 {
		t.Errorf("expected 5 chunks, got %d", cfg.Router.Chunks)
	}
	if cfg.Router.StepFraction != 0.001 {
		t.Errorf("expected step fraction 0.001, got %v", cfg.Router.StepFraction)
	}
	if cfg.Housekeeper.Tolerance != 0.02 {
		t.Errorf("expected tolerance 0.02, got %v", cfg.Housekeeper.Tolerance)
	}
	if cfg.Housekeeper.CancelStaleSells {
		t.Error("stale sell cancellation should be off by default")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"binance": {"mock_mode": true},
		"trading": {"symbols": ["DOGE/USDT", "TRX/USDT"], "risk_fraction": 0.02},
		"router": {"chunks": 3}
	}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Trading.Symbols) != 2 || cfg.Trading.Symbols[0] != "DOGE/USDT" {
		t.Errorf("unexpected symbols: %v", cfg.Trading.Symbols)
	}
	if cfg.Trading.RiskFraction != 0.02 {
		t.Errorf("expected risk fraction 0.02, got %v", cfg.Trading.RiskFraction)
	}
	if cfg.Router.Chunks != 3 {
		t.Errorf("expected 3 chunks, got %d", cfg.Router.Chunks)
	}
	// values absent from the file keep their defaults
	if cfg.Housekeeper.Tolerance != 0.02 {
		t.Errorf("expected default tolerance 0.02, got %v", cfg.Housekeeper.Tolerance)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BINANCE_MOCK_MODE", "true")
	t.Setenv("TRADING_RISK_FRACTION", "0.05")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Binance.MockMode {
		t.Error("expected mock mode enabled from env")
	}
	if cfg.Trading.RiskFraction != 0.05 {
		t.Errorf("expected risk fraction 0.05, got %v", cfg.Trading.RiskFraction)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no symbols", func(c *Config) { c.Trading.Symbols = nil }},
		{"risk fraction zero", func(c *Config) { c.Trading.RiskFraction = 0 }},
		{"risk fraction above one", func(c *Config) { c.Trading.RiskFraction = 1.5 }},
		{"zero cycle interval", func(c *Config) { c.Trading.CycleInterval = 0 }},
		{"candle limit below band period", func(c *Config) { c.Trading.CandleLimit = 10 }},
		{"zero chunks", func(c *Config) { c.Router.Chunks = 0 }},
		{"negative step", func(c *Config) { c.Router.StepFraction = -0.001 }},
		{"tolerance out of range", func(c *Config) { c.Housekeeper.Tolerance = 1 }},
		{"missing credentials", func(c *Config) {
			c.Binance.MockMode = false
			c.Vault.Enabled = false
			c.Binance.APIKey = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Binance.MockMode = true
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}

	cfg := defaultConfig()
	cfg.Binance.MockMode = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestTestnetBaseURL(t *testing.T) {
	t.Setenv("BINANCE_TESTNET", "true")
	t.Setenv("BINANCE_MOCK_MODE", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Binance.BaseURL != "https://testnet.binance.vision" {
		t.Errorf("expected testnet base URL, got %s", cfg.Binance.BaseURL)
	}
}
