// Package market resolves the current price, market capitalization and
// display name for a ticker.
package market

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/epv-cli/internal/cascade"
	"github.com/sells-group/epv-cli/internal/model"
	"github.com/sells-group/epv-cli/internal/resilience"
	"github.com/sells-group/epv-cli/pkg/fmp"
	"github.com/sells-group/epv-cli/pkg/yahoo"
)

var quoteModules = []string{yahoo.ModulePrice, yahoo.ModuleFinancialData}

// Resolver produces a MarketSnapshot. Resolve never fails.
type Resolver struct {
	chain *cascade.Chain[model.MarketSnapshot]
}

// NewResolver builds FMP (single attempt) then Yahoo (retry) tiers. Nil
// clients are skipped.
func NewResolver(fmpClient fmp.Client, yahooClient yahoo.Client, retry resilience.RetryConfig) *Resolver {
	var tiers []cascade.Tier[model.MarketSnapshot]
	if fmpClient != nil {
		tiers = append(tiers, cascade.Tier[model.MarketSnapshot]{
			Source: cascade.SourceFunc[model.MarketSnapshot]{
				SourceName: model.SourceFMP,
				Fn: func(ctx context.Context, ticker string) (model.MarketSnapshot, error) {
					return fetchFMP(ctx, fmpClient, ticker)
				},
			},
			Retry: resilience.SingleAttempt(),
		})
	}
	if yahooClient != nil {
		tiers = append(tiers, cascade.Tier[model.MarketSnapshot]{
			Source: cascade.SourceFunc[model.MarketSnapshot]{
				SourceName: model.SourceYahoo,
				Fn: func(ctx context.Context, ticker string) (model.MarketSnapshot, error) {
					return fetchYahoo(ctx, yahooClient, ticker)
				},
			},
			Retry: retry,
		})
	}
	return &Resolver{chain: cascade.New("market", model.FallbackMarket, tiers...)}
}

// Resolve returns the first complete snapshot, or the static fallback.
func (r *Resolver) Resolve(ctx context.Context, ticker string) model.MarketSnapshot {
	return r.chain.Resolve(ctx, ticker)
}

func fetchFMP(ctx context.Context, c fmp.Client, ticker string) (model.MarketSnapshot, error) {
	q, err := c.Quote(ctx, ticker)
	if err != nil {
		return model.MarketSnapshot{}, eris.Wrap(err, "market: fmp quote")
	}
	if q == nil {
		return model.MarketSnapshot{}, eris.Wrapf(fmp.ErrNoData, "market: fmp quote for %s", ticker)
	}
	return snapshot(ticker, q.Price, q.MarketCap, model.SourceFMP, q.Name)
}

func fetchYahoo(ctx context.Context, c yahoo.Client, ticker string) (model.MarketSnapshot, error) {
	s, err := c.QuoteSummary(ctx, ticker, quoteModules...)
	if err != nil {
		return model.MarketSnapshot{}, eris.Wrap(err, "market: yahoo quote summary")
	}
	if s == nil {
		return model.MarketSnapshot{}, eris.Errorf("market: yahoo returned no summary for %s", ticker)
	}

	var current, regular, mcap *float64
	var longName, shortName string
	if s.FinancialData != nil {
		current = raw(s.FinancialData.CurrentPrice)
	}
	if p := s.Price; p != nil {
		regular = raw(p.RegularMarketPrice)
		mcap = raw(p.MarketCap)
		longName, shortName = p.LongName, p.ShortName
	}
	return snapshot(ticker, model.Coalesce(current, regular), mcap, model.SourceYahoo, longName, shortName)
}

func raw(v *yahoo.Value) *float64 {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}

// snapshot validates price and market cap and picks the first non-empty
// name, defaulting to the ticker.
func snapshot(ticker string, price, mcap *float64, source string, names ...string) (model.MarketSnapshot, error) {
	if price == nil || mcap == nil {
		return model.MarketSnapshot{}, eris.Errorf("market: %s missing price or market cap for %s", source, ticker)
	}
	if *price <= 0 || *mcap <= 0 {
		return model.MarketSnapshot{}, eris.Errorf("market: %s non-positive price or market cap for %s", source, ticker)
	}
	name := ticker
	for _, n := range names {
		if n != "" {
			name = n
			break
		}
	}
	return model.MarketSnapshot{
		Ticker:      ticker,
		Price:       *price,
		MarketCap:   *mcap,
		CompanyName: name,
		Provenance:  model.Live(source),
	}, nil
}
