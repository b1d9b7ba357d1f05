// Package cascade resolves an entity through an ordered list of data
// sources, falling back to a constant value when every source fails.
package cascade

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/epv-cli/internal/resilience"
)

// ErrExhausted is returned by Try when every tier failed.
var ErrExhausted = eris.New("cascade: all sources exhausted")

// Source fetches one entity for a ticker.
type Source[T any] interface {
	Name() string
	Fetch(ctx context.Context, ticker string) (T, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] struct {
	SourceName string
	Fn         func(ctx context.Context, ticker string) (T, error)
}

// Name implements Source.
func (f SourceFunc[T]) Name() string { return f.SourceName }

// Fetch implements Source.
func (f SourceFunc[T]) Fetch(ctx context.Context, ticker string) (T, error) {
	return f.Fn(ctx, ticker)
}

// Tier pairs a source with its own retry bound.
type Tier[T any] struct {
	Source Source[T]
	Retry  resilience.RetryConfig
}

// Chain tries tiers in priority order, returning the first success.
type Chain[T any] struct {
	name     string
	tiers    []Tier[T]
	fallback func(ticker string) T
}

// New creates a Chain. Tiers are tried in order; fallback produces the
// terminal value when all of them fail and must never fail itself.
func New[T any](name string, fallback func(ticker string) T, tiers ...Tier[T]) *Chain[T] {
	return &Chain[T]{
		name:     name,
		tiers:    tiers,
		fallback: fallback,
	}
}

// Try runs each tier in order and returns the first successful value, or an
// error wrapping ErrExhausted if all fail.
func (c *Chain[T]) Try(ctx context.Context, ticker string) (T, error) {
	var zero T
	var lastErr error
	for _, tier := range c.tiers {
		src := tier.Source
		retry := tier.Retry
		if retry.OnRetry == nil {
			retry.OnRetry = func(attempt int, err error) {
				zap.L().Warn(c.name+": attempt failed, retrying",
					zap.String("ticker", ticker),
					zap.String("source", src.Name()),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
			}
		}

		val, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (T, error) {
			return src.Fetch(ctx, ticker)
		})
		if err == nil {
			zap.L().Debug(c.name+": resolved",
				zap.String("ticker", ticker),
				zap.String("source", src.Name()),
			)
			return val, nil
		}

		zap.L().Warn(c.name+": source failed, trying next",
			zap.String("ticker", ticker),
			zap.String("source", src.Name()),
			zap.Error(err),
		)
		lastErr = err
	}
	if lastErr != nil {
		return zero, eris.Wrapf(ErrExhausted, "%s: last error: %v", c.name, lastErr)
	}
	return zero, eris.Wrapf(ErrExhausted, "%s: no sources configured", c.name)
}

// Resolve is total: it returns the first successful tier's value or the
// fallback value for ticker.
func (c *Chain[T]) Resolve(ctx context.Context, ticker string) T {
	val, err := c.Try(ctx, ticker)
	if err == nil {
		return val
	}
	zap.L().Warn(c.name+": using static fallback",
		zap.String("ticker", ticker),
		zap.String("source", "mock"),
		zap.Error(err),
	)
	return c.fallback(ticker)
}
