package risk

import (
	"context"

	"github.com/rs/zerolog"

	"spot-trader/internal/binance"
)

// Manager places protective stop-loss and take-profit orders around filled or
// resting entry orders.
type Manager struct {
	exchange binance.Exchange
	log      zerolog.Logger

	stopLossFraction   float64
	takeProfitFraction float64
}

// Config holds the protective-order distances as fractions of entry price
type Config struct {
	StopLossFraction   float64
	TakeProfitFraction float64
}

// NewManager creates a risk manager bound to an exchange
func NewManager(exchange binance.Exchange, cfg Config, logger zerolog.Logger) *Manager {
	return &Manager{
		exchange:           exchange,
		log:                logger.With().Str("component", "risk").Logger(),
		stopLossFraction:   cfg.StopLossFraction,
		takeProfitFraction: cfg.TakeProfitFraction,
	}
}

// ApplyProtection submits one take-profit and one stop-loss per entry order,
// each sized to the entry quantity. A buy entry gets sell legs above (TP) and
// below (SL) the entry price; a sell entry mirrors. Each leg is independent:
// one failing never blocks the sibling leg or later entries. Returns the
// orders that were actually placed.
func (m *Manager) ApplyProtection(ctx context.Context, symbol string, entries []binance.Order) []binance.Order {
	var placed []binance.Order

	for _, entry := range entries {
		var exitSide string
		var stopPrice, takeProfitPrice float64

		switch entry.Side {
		case binance.SideBuy:
			exitSide = binance.SideSell
			stopPrice = entry.Price * (1 - m.stopLossFraction)
			takeProfitPrice = entry.Price * (1 + m.takeProfitFraction)
		case binance.SideSell:
			exitSide = binance.SideBuy
			stopPrice = entry.Price * (1 + m.stopLossFraction)
			takeProfitPrice = entry.Price * (1 - m.takeProfitFraction)
		default:
			m.log.Error().Str("symbol", symbol).Str("side", entry.Side).
				Int64("order_id", entry.OrderId).Msg("entry order with unknown side, skipping protection")
			continue
		}

		tp, err := m.exchange.PlaceLimitOrder(ctx, symbol, exitSide, entry.OrigQty, takeProfitPrice, "")
		if err != nil {
			m.log.Error().Err(err).Str("symbol", symbol).Int64("entry_id", entry.OrderId).
				Float64("price", takeProfitPrice).Msg("failed to place take-profit")
		} else {
			placed = append(placed, *tp)
			m.log.Info().Str("symbol", symbol).Int64("entry_id", entry.OrderId).
				Float64("price", takeProfitPrice).Float64("qty", entry.OrigQty).Msg("take-profit placed")
		}

		sl, err := m.exchange.PlaceStopLimitOrder(ctx, symbol, exitSide, entry.OrigQty, stopPrice)
		if err != nil {
			m.log.Error().Err(err).Str("symbol", symbol).Int64("entry_id", entry.OrderId).
				Float64("price", stopPrice).Msg("failed to place stop-loss")
		} else {
			placed = append(placed, *sl)
			m.log.Info().Str("symbol", symbol).Int64("entry_id", entry.OrderId).
				Float64("price", stopPrice).Float64("qty", entry.OrigQty).Msg("stop-loss placed")
		}
	}

	return placed
}
