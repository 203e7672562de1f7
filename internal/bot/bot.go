// Package bot runs the trading cycle: observe markets, pick a regime per
// symbol, size and route entries, and wrap them in protective orders.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"spot-trader/config"
	"spot-trader/internal/binance"
	"spot-trader/internal/events"
	"spot-trader/internal/market"
	"spot-trader/internal/metrics"
	"spot-trader/internal/orders"
	"spot-trader/internal/risk"
	"spot-trader/internal/strategy"
)

// Bot wires the market reader, strategy, sizer, router and risk manager into
// a periodic cycle. One symbol failing never blocks the others, and one cycle
// failing never stops the loop.
type Bot struct {
	exchange    binance.Exchange
	provider    *market.Provider
	slicer      *orders.Slicer
	housekeeper *orders.Housekeeper
	riskManager *risk.Manager
	bus         *events.Bus
	log         zerolog.Logger

	symbols         []market.Symbol
	interval        string
	candleLimit     int
	cycleInterval   time.Duration
	minQuoteBalance float64
	riskFraction    float64
	indicators      strategy.IndicatorConfig
}

// New creates a bot from the loaded configuration
func New(exchange binance.Exchange, limits orders.LimitsProvider, bus *events.Bus, cfg *config.Config, logger zerolog.Logger) (*Bot, error) {
	symbols, err := market.ParseSymbols(cfg.Trading.Symbols)
	if err != nil {
		return nil, fmt.Errorf("invalid trading symbols: %w", err)
	}

	log := logger.With().Str("component", "bot").Logger()

	return &Bot{
		exchange: exchange,
		provider: market.NewProvider(exchange, logger),
		slicer: orders.NewSlicer(exchange, limits, bus, orders.SlicerConfig{
			Chunks:       cfg.Router.Chunks,
			StepFraction: cfg.Router.StepFraction,
			PaceDelay:    cfg.Router.PaceDelay,
		}, logger),
		housekeeper: orders.NewHousekeeper(exchange, bus, orders.HousekeeperConfig{
			Tolerance:        cfg.Housekeeper.Tolerance,
			CancelStaleSells: cfg.Housekeeper.CancelStaleSells,
		}, logger),
		riskManager: risk.NewManager(exchange, risk.Config{
			StopLossFraction:   cfg.Risk.StopLossFraction,
			TakeProfitFraction: cfg.Risk.TakeProfitFraction,
		}, logger),
		bus: bus,
		log: log,

		symbols:         symbols,
		interval:        cfg.Trading.Interval,
		candleLimit:     cfg.Trading.CandleLimit,
		cycleInterval:   cfg.Trading.CycleInterval,
		minQuoteBalance: cfg.Trading.MinQuoteBalance,
		riskFraction:    cfg.Trading.RiskFraction,
		indicators: strategy.IndicatorConfig{
			ATRPeriod:      cfg.Indicators.ATRPeriod,
			BandPeriod:     cfg.Indicators.BandPeriod,
			BandMultiplier: cfg.Indicators.BandMultiplier,
		},
	}, nil
}

// Run executes cycles on the configured interval until ctx is cancelled.
// The first cycle runs immediately.
func (b *Bot) Run(ctx context.Context) {
	b.log.Info().Int("symbols", len(b.symbols)).Dur("interval", b.cycleInterval).Msg("bot started")

	ticker := time.NewTicker(b.cycleInterval)
	defer ticker.Stop()

	b.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			b.log.Info().Msg("bot stopped")
			return
		case <-ticker.C:
			b.RunCycle(ctx)
		}
	}
}

// RunCycle executes one full trading cycle: snapshot, housekeeping, then the
// per-symbol pipeline. Exported so a single deterministic cycle can be driven
// directly.
func (b *Bot) RunCycle(ctx context.Context) {
	start := time.Now()
	metrics.Cycles.Inc()

	snapshots, err := b.provider.Snapshots(ctx, b.symbols)
	if err != nil {
		// partial results still flow; symbols without a snapshot are skipped
		b.log.Warn().Err(err).Msg("incomplete market snapshot")
		metrics.Errors.WithLabelValues("snapshot").Inc()
	}

	pairs := make([]string, 0, len(b.symbols))
	for _, sym := range b.symbols {
		pairs = append(pairs, sym.Pair())
	}
	cancelled := b.housekeeper.Reconcile(ctx, pairs)
	metrics.OrdersCancelled.Add(float64(cancelled))

	for _, sym := range b.symbols {
		if ctx.Err() != nil {
			return
		}
		snap, ok := snapshots[sym]
		if !ok {
			continue
		}
		if err := b.processSymbol(ctx, snap); err != nil {
			b.log.Error().Err(err).Str("symbol", sym.String()).Msg("symbol cycle failed")
			metrics.Errors.WithLabelValues("symbol").Inc()
			b.bus.Publish(events.Event{
				Type: events.EventError,
				Data: map[string]interface{}{"symbol": sym.String(), "error": err.Error()},
			})
		}
	}

	elapsed := time.Since(start)
	metrics.CycleDuration.Set(elapsed.Seconds())
	b.bus.Publish(events.Event{
		Type: events.EventCycleCompleted,
		Data: map[string]interface{}{"duration_ms": elapsed.Milliseconds(), "cancelled": cancelled},
	})
	b.log.Debug().Dur("elapsed", elapsed).Msg("cycle completed")
}

// processSymbol runs the decision pipeline for one symbol. Abstaining (not
// enough data, flat regime, too little balance, no tradable size) is a normal
// outcome and returns nil; only venue or pipeline faults return an error.
func (b *Bot) processSymbol(ctx context.Context, snap market.Snapshot) error {
	sym := snap.Symbol

	klines, err := b.provider.Candles(ctx, sym, b.interval, b.candleLimit)
	if err != nil {
		return err
	}

	ind, err := strategy.ComputeIndicators(klines, b.indicators)
	if err != nil {
		b.log.Debug().Err(err).Str("symbol", sym.String()).Msg("skipping symbol, indicators unavailable")
		return nil
	}

	regime := strategy.SelectRegime(snap.LastPrice, ind)
	metrics.Decisions.WithLabelValues(string(regime)).Inc()
	b.bus.Publish(events.Event{
		Type: events.EventSignalGenerated,
		Data: map[string]interface{}{
			"symbol": sym.String(),
			"regime": string(regime),
			"price":  snap.LastPrice,
			"atr":    ind.ATR,
		},
	})
	if regime == strategy.RegimeNoTrade {
		return nil
	}

	balances, err := b.exchange.GetBalances(ctx)
	if err != nil {
		return fmt.Errorf("balances: %w", err)
	}
	freeQuote := balances[sym.Quote]
	if freeQuote < b.minQuoteBalance {
		b.log.Debug().Str("symbol", sym.String()).Float64("free", freeQuote).
			Msg("quote balance below threshold, skipping")
		return nil
	}

	qty, err := risk.PositionSize(freeQuote, b.riskFraction, ind.ATR, snap.LastPrice)
	if err != nil {
		b.log.Debug().Err(err).Str("symbol", sym.String()).Msg("no tradable size")
		return nil
	}

	buyRef, sellRef, err := strategy.EntryPrices(regime, snap.LastPrice, ind)
	if err != nil {
		return err
	}

	entries, err := b.slicer.Route(ctx, sym.Pair(), binance.SideBuy, qty, buyRef, freeQuote)
	if err != nil {
		return fmt.Errorf("buy routing: %w", err)
	}
	metrics.OrdersPlaced.WithLabelValues("buy").Add(float64(len(entries)))

	if len(entries) > 0 {
		protective := b.riskManager.ApplyProtection(ctx, sym.Pair(), entries)
		for _, o := range protective {
			kind := "take_profit"
			if o.Type == binance.OrderTypeStopLimit {
				kind = "stop_loss"
			}
			metrics.ProtectiveOrders.WithLabelValues(kind).Inc()
		}
		b.bus.Publish(events.Event{
			Type: events.EventProtectionPlaced,
			Data: map[string]interface{}{"symbol": sym.String(), "legs": len(protective)},
		})
	}

	// Work pre-existing inventory out at the sell reference as well
	if freeBase := balances[sym.Base]; freeBase > 0 {
		exits, err := b.slicer.Route(ctx, sym.Pair(), binance.SideSell, qty, sellRef, freeBase)
		if err != nil {
			return fmt.Errorf("sell routing: %w", err)
		}
		metrics.OrdersPlaced.WithLabelValues("sell").Add(float64(len(exits)))
	}

	return nil
}
