// Package cache provides a Redis-backed cache for per-symbol market limits
// with graceful degradation: when Redis is disabled or unavailable, lookups
// fall straight through to the exchange.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"spot-trader/internal/binance"
)

// Key prefix for cached lot-size limits
const prefixLimits = "limits:%s"

// Config holds Redis connection settings
type Config struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// limitsSource is the uncached lookup, satisfied by the exchange client
type limitsSource interface {
	GetMarketLimits(ctx context.Context, symbol string) (binance.MarketLimits, error)
}

// Limits caches market limits per symbol for one cycle's worth of lookups
type Limits struct {
	source limitsSource
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewLimits creates the cached lookup. With caching disabled the returned
// value is still usable and simply passes every call through.
func NewLimits(source limitsSource, cfg Config, logger zerolog.Logger) *Limits {
	l := &Limits{
		source: source,
		ttl:    cfg.TTL,
		log:    logger.With().Str("component", "cache").Logger(),
	}

	if cfg.Enabled {
		l.client = redis.NewClient(&redis.Options{
			Addr:         cfg.Address,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
	}

	return l
}

// MarketLimits resolves the lot-size bounds for a symbol, serving from Redis
// when possible. Any cache failure is logged and degrades to a direct
// exchange call; a stale or missing cache never blocks routing.
func (l *Limits) MarketLimits(ctx context.Context, symbol string) (binance.MarketLimits, error) {
	key := fmt.Sprintf(prefixLimits, symbol)

	if l.client != nil {
		data, err := l.client.Get(ctx, key).Bytes()
		if err == nil {
			var limits binance.MarketLimits
			if err := json.Unmarshal(data, &limits); err == nil {
				return limits, nil
			}
			l.log.Warn().Str("symbol", symbol).Msg("corrupt cached limits, refetching")
		} else if err != redis.Nil {
			l.log.Warn().Err(err).Str("symbol", symbol).Msg("limits cache read failed, degrading to exchange")
		}
	}

	limits, err := l.source.GetMarketLimits(ctx, symbol)
	if err != nil {
		return binance.MarketLimits{}, err
	}

	if l.client != nil {
		if data, err := json.Marshal(limits); err == nil {
			if err := l.client.Set(ctx, key, data, l.ttl).Err(); err != nil {
				l.log.Warn().Err(err).Str("symbol", symbol).Msg("limits cache write failed")
			}
		}
	}

	return limits, nil
}

// Close releases the Redis connection if one was opened
func (l *Limits) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}
