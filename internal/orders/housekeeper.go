package orders

import (
	"context"

	"github.com/rs/zerolog"

	"spot-trader/internal/binance"
	"spot-trader/internal/events"
)

// Housekeeper cancels open orders whose price has drifted too far from the
// market, freeing the capital they hold.
type Housekeeper struct {
	exchange binance.Exchange
	bus      *events.Bus
	log      zerolog.Logger

	tolerance        float64
	cancelStaleSells bool
}

// HousekeeperConfig holds the staleness policy. CancelStaleSells extends the
// reference buy-only behavior symmetrically and is off by default.
type HousekeeperConfig struct {
	Tolerance        float64
	CancelStaleSells bool
}

// NewHousekeeper creates an order housekeeper
func NewHousekeeper(exchange binance.Exchange, bus *events.Bus, cfg HousekeeperConfig, logger zerolog.Logger) *Housekeeper {
	return &Housekeeper{
		exchange:         exchange,
		bus:              bus,
		log:              logger.With().Str("component", "housekeeper").Logger(),
		tolerance:        cfg.Tolerance,
		cancelStaleSells: cfg.CancelStaleSells,
	}
}

// Reconcile scans each symbol's open orders and cancels stale ones: a buy
// resting more than tolerance below the current price (and, when enabled, a
// sell resting more than tolerance above it). Failures on one symbol or one
// cancellation are logged and do not stop the rest of the scan. Returns the
// number of orders cancelled.
func (h *Housekeeper) Reconcile(ctx context.Context, symbols []string) int {
	cancelled := 0

	for _, symbol := range symbols {
		open, err := h.exchange.GetOpenOrders(ctx, symbol)
		if err != nil {
			h.log.Error().Err(err).Str("symbol", symbol).Msg("failed to fetch open orders")
			continue
		}
		if len(open) == 0 {
			continue
		}

		last, err := h.exchange.GetPrice(ctx, symbol)
		if err != nil {
			h.log.Error().Err(err).Str("symbol", symbol).Msg("failed to fetch price")
			continue
		}

		for _, order := range open {
			if !h.isStale(order, last) {
				continue
			}
			if err := h.exchange.CancelOrder(ctx, symbol, order.OrderId); err != nil {
				h.log.Error().Err(err).Str("symbol", symbol).Int64("order_id", order.OrderId).
					Msg("failed to cancel stale order")
				continue
			}
			cancelled++
			h.log.Info().Str("symbol", symbol).Int64("order_id", order.OrderId).
				Str("side", order.Side).Float64("order_price", order.Price).
				Float64("last_price", last).Msg("cancelled stale order")
			if h.bus != nil {
				h.bus.Publish(events.Event{
					Type: events.EventOrderCancelled,
					Data: map[string]interface{}{
						"symbol":      symbol,
						"side":        order.Side,
						"order_id":    order.OrderId,
						"order_price": order.Price,
						"last_price":  last,
					},
				})
			}
		}
	}

	return cancelled
}

// isStale applies the drift rule: buys are stale below last*(1-tolerance);
// sells only when the symmetric extension is enabled.
func (h *Housekeeper) isStale(order binance.Order, last float64) bool {
	switch order.Side {
	case binance.SideBuy:
		return order.Price < last*(1-h.tolerance)
	case binance.SideSell:
		return h.cancelStaleSells && order.Price > last*(1+h.tolerance)
	default:
		return false
	}
}
