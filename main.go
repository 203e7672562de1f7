package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"spot-trader/config"
	"spot-trader/internal/binance"
	"spot-trader/internal/bot"
	"spot-trader/internal/cache"
	"spot-trader/internal/events"
	"spot-trader/internal/logging"
	"spot-trader/internal/metrics"
	"spot-trader/internal/vault"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	stderrLog := zerolog.New(os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		stderrLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log, journalCloser, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		JournalPath: cfg.Logging.JournalPath,
		Console:     cfg.Logging.Console,
	})
	if err != nil {
		stderrLog.Fatal().Err(err).Msg("failed to initialize logging")
	}
	defer journalCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exchange, err := buildExchange(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize exchange client")
	}

	bus := events.NewBus()
	journal := log.With().Str("component", "journal").Logger()
	bus.SubscribeAll(func(e events.Event) {
		data, _ := json.Marshal(e.Data)
		journal.Info().Str("event", string(e.Type)).RawJSON("data", data).Msg("event")
	})

	limits := cache.NewLimits(exchange, cache.Config{
		Enabled:  cfg.Redis.Enabled,
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	}, log)
	defer limits.Close()

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Address, log)
	}

	trader, err := bot.New(exchange, limits, bus, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize bot")
	}

	log.Info().Strs("symbols", cfg.Trading.Symbols).Bool("mock", cfg.Binance.MockMode).Msg("spot trader starting")
	trader.Run(ctx)
	log.Info().Msg("spot trader shut down")
}

// buildExchange resolves credentials (Vault first when enabled) and picks the
// mock or live client
func buildExchange(ctx context.Context, cfg *config.Config, log zerolog.Logger) (binance.Exchange, error) {
	if cfg.Binance.MockMode {
		log.Warn().Msg("running in mock mode, no real orders will be placed")
		return binance.NewMockClient(), nil
	}

	apiKey, secretKey := cfg.Binance.APIKey, cfg.Binance.SecretKey

	if cfg.Vault.Enabled {
		vc, err := vault.NewClient(vault.Config{
			Enabled:    true,
			Address:    cfg.Vault.Address,
			Token:      cfg.Vault.Token,
			MountPath:  cfg.Vault.MountPath,
			SecretPath: cfg.Vault.SecretPath,
		})
		if err != nil {
			return nil, err
		}
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := vc.Health(healthCtx); err != nil {
			return nil, err
		}
		creds, err := vc.Credentials(healthCtx)
		if err != nil {
			return nil, err
		}
		apiKey, secretKey = creds.APIKey, creds.SecretKey
		log.Info().Msg("exchange credentials loaded from vault")
	}

	return binance.NewClient(apiKey, secretKey, cfg.Binance.BaseURL), nil
}

func serveMetrics(addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
