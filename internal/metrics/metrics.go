// Package metrics exposes Prometheus instrumentation for the trading engine:
//
//	trader_cycles_total                  – completed trading-loop cycles
//	trader_decisions_total{regime}       – regime decisions per cycle/symbol
//	trader_orders_placed_total{side}     – entry/exit orders accepted by the venue
//	trader_orders_cancelled_total        – stale orders cancelled by housekeeping
//	trader_protective_orders_total{kind} – stop-loss / take-profit legs placed
//	trader_errors_total{stage}           – isolated failures per pipeline stage
//	trader_cycle_duration_seconds        – wall time of the last cycle (gauge)
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Cycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trader_cycles_total",
			Help: "Completed trading loop cycles",
		},
	)

	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_decisions_total",
			Help: "Regime decisions taken",
		},
		[]string{"regime"},
	)

	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_orders_placed_total",
			Help: "Orders accepted by the venue",
		},
		[]string{"side"},
	)

	OrdersCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trader_orders_cancelled_total",
			Help: "Stale orders cancelled by housekeeping",
		},
	)

	ProtectiveOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_protective_orders_total",
			Help: "Protective legs placed",
		},
		[]string{"kind"}, // stop_loss | take_profit
	)

	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_errors_total",
			Help: "Isolated failures per pipeline stage",
		},
		[]string{"stage"}, // snapshot | housekeeping | symbol
	)

	CycleDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trader_cycle_duration_seconds",
			Help: "Wall time of the last completed cycle",
		},
	)
)

func init() {
	prometheus.MustRegister(
		Cycles,
		Decisions,
		OrdersPlaced,
		OrdersCancelled,
		ProtectiveOrders,
		Errors,
		CycleDuration,
	)
}

// Handler returns the /metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
