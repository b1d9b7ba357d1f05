// Package financials resolves a normalized financial record for a ticker
// from FMP, then Yahoo Finance, then a static fallback record.
package financials

import (
	"context"

	"github.com/sells-group/epv-cli/internal/cascade"
	"github.com/sells-group/epv-cli/internal/model"
	"github.com/sells-group/epv-cli/internal/resilience"
	"github.com/sells-group/epv-cli/pkg/fmp"
	"github.com/sells-group/epv-cli/pkg/yahoo"
)

// Growth assumed when the prior-period revenue is missing.
const assumedPrevRevenueRatio = 0.8

// Fallback shares outstanding when no provider reports a count.
const defaultSharesOutstanding = 1_300_000_000

// Resolver produces a FinancialRecord. Resolve never fails.
type Resolver struct {
	chain *cascade.Chain[model.FinancialRecord]
}

// NewResolver builds the cascade. A nil FMP client (no API key configured)
// skips the primary tier. The primary tier is queried once; the secondary
// tier uses the given retry bound.
func NewResolver(fmpClient fmp.Client, yahooClient yahoo.Client, retry resilience.RetryConfig) *Resolver {
	var tiers []cascade.Tier[model.FinancialRecord]
	if fmpClient != nil {
		tiers = append(tiers, cascade.Tier[model.FinancialRecord]{
			Source: NewFMPSource(fmpClient),
			Retry:  resilience.SingleAttempt(),
		})
	}
	if yahooClient != nil {
		tiers = append(tiers, cascade.Tier[model.FinancialRecord]{
			Source: NewYahooSource(yahooClient),
			Retry:  retry,
		})
	}
	return &Resolver{
		chain: cascade.New("financials", model.FallbackFinancials, tiers...),
	}
}

// Resolve returns the first live record, or the static fallback record.
func (r *Resolver) Resolve(ctx context.Context, ticker string) model.FinancialRecord {
	return r.chain.Resolve(ctx, ticker)
}

// effectiveTaxRate returns tax/pretax clamped to [0, MaxTaxRate], or the
// default rate when either input is missing or pretax income is zero.
func effectiveTaxRate(tax, pretax *float64) float64 {
	if pretax == nil || *pretax == 0 || tax == nil {
		return model.DefaultTaxRate
	}
	return model.ClampTaxRate(*tax / *pretax)
}

// prevRevenue synthesizes the prior-period revenue as 80% of current when
// the provider omits it.
func prevRevenue(prev *float64, revenue float64) float64 {
	if prev != nil {
		return *prev
	}
	return revenue * assumedPrevRevenueRatio
}
