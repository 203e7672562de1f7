package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"spot-trader/internal/binance"
)

// Snapshot holds the latest observed state for one symbol. Cycle-scoped
// value data, never cached across iterations.
type Snapshot struct {
	Symbol    Symbol
	LastPrice float64
}

// Provider fetches per-symbol market snapshots and candle windows. Pure
// reads, no state beyond the exchange handle.
type Provider struct {
	exchange binance.Exchange
	log      zerolog.Logger
}

// NewProvider creates a snapshot provider
func NewProvider(exchange binance.Exchange, logger zerolog.Logger) *Provider {
	return &Provider{
		exchange: exchange,
		log:      logger.With().Str("component", "market").Logger(),
	}
}

// Snapshots fetches the latest price for each symbol. One symbol failing
// does not block the rest: the partial result is returned together with the
// joined errors so the caller can decide per symbol.
func (p *Provider) Snapshots(ctx context.Context, symbols []Symbol) (map[Symbol]Snapshot, error) {
	snapshots := make(map[Symbol]Snapshot, len(symbols))
	var errs []error

	for _, sym := range symbols {
		price, err := p.exchange.GetPrice(ctx, sym.Pair())
		if err != nil {
			p.log.Warn().Err(err).Str("symbol", sym.String()).Msg("snapshot fetch failed")
			errs = append(errs, fmt.Errorf("%s: %w", sym, err))
			continue
		}
		snapshots[sym] = Snapshot{Symbol: sym, LastPrice: price}
	}

	return snapshots, errors.Join(errs...)
}

// Candles fetches a candle window for one symbol, most recent last
func (p *Provider) Candles(ctx context.Context, sym Symbol, interval string, limit int) ([]binance.Kline, error) {
	klines, err := p.exchange.GetKlines(ctx, sym.Pair(), interval, limit)
	if err != nil {
		return nil, fmt.Errorf("candles %s: %w", sym, err)
	}
	return klines, nil
}
