// Package pipeline orchestrates one EPV analysis: resolve inputs, estimate
// the maintenance split, value the company.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/epv-cli/internal/model"
	"github.com/sells-group/epv-cli/internal/valuation"
)

// Phase names recorded on every analysis.
const (
	PhaseFinancials = "financials"
	PhaseNarrative  = "narrative"
	PhaseMarket     = "market"
	PhaseEstimate   = "estimate"
)

var (
	// ErrInvalidTicker is returned for symbols that are not 1-5 letters.
	ErrInvalidTicker = eris.New("pipeline: invalid ticker, enter 1-5 letters (e.g. AAPL, SHOP)")
	// ErrInvalidRequest is returned for out-of-range rates or overrides.
	ErrInvalidRequest = eris.New("pipeline: invalid request")
)

// FinancialsResolver always yields a financial record.
type FinancialsResolver interface {
	Resolve(ctx context.Context, ticker string) model.FinancialRecord
}

// NarrativeResolver always yields management commentary.
type NarrativeResolver interface {
	Resolve(ctx context.Context, ticker string) model.NarrativeText
}

// MarketResolver always yields a market snapshot.
type MarketResolver interface {
	Resolve(ctx context.Context, ticker string) model.MarketSnapshot
}

// MaintenanceEstimator always yields a maintenance split.
type MaintenanceEstimator interface {
	Estimate(ctx context.Context, narrative model.NarrativeText, fin model.FinancialRecord) model.MaintenanceEstimate
}

// Overrides replace the estimated maintenance ratios in the valuation.
// Nil fields keep the estimate.
type Overrides struct {
	MaintenanceSGA *float64
	MaintenanceRND *float64
}

// Request is one analysis request.
type Request struct {
	Ticker       string
	DiscountRate float64
	Overrides    Overrides
}

// Pipeline runs analyses. It holds no per-run state and is safe for
// concurrent use.
type Pipeline struct {
	financials FinancialsResolver
	narrative  NarrativeResolver
	market     MarketResolver
	estimator  MaintenanceEstimator
}

// New creates a Pipeline.
func New(fin FinancialsResolver, narr NarrativeResolver, mkt MarketResolver, est MaintenanceEstimator) *Pipeline {
	return &Pipeline{
		financials: fin,
		narrative:  narr,
		market:     mkt,
		estimator:  est,
	}
}

// ValidateTicker trims and upper-cases a symbol and checks it is 1-5 ASCII
// letters.
func ValidateTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if len(t) < 1 || len(t) > 5 {
		return "", eris.Wrapf(ErrInvalidTicker, "pipeline: %q", raw)
	}
	for i := 0; i < len(t); i++ {
		if t[i] < 'A' || t[i] > 'Z' {
			return "", eris.Wrapf(ErrInvalidTicker, "pipeline: %q", raw)
		}
	}
	return t, nil
}

// Validate checks the rate and overrides lie in [0,1].
func (r Request) Validate() error {
	if r.DiscountRate < 0 || r.DiscountRate > 1 {
		return eris.Wrapf(ErrInvalidRequest, "pipeline: discount rate %v out of range [0,1]", r.DiscountRate)
	}
	if v := r.Overrides.MaintenanceSGA; v != nil && (*v < 0 || *v > 1) {
		return eris.Wrapf(ErrInvalidRequest, "pipeline: maintenance S&M override %v out of range [0,1]", *v)
	}
	if v := r.Overrides.MaintenanceRND; v != nil && (*v < 0 || *v > 1) {
		return eris.Wrapf(ErrInvalidRequest, "pipeline: maintenance R&D override %v out of range [0,1]", *v)
	}
	return nil
}

// Apply returns est with any overridden ratio replaced.
func (o Overrides) Apply(est model.MaintenanceEstimate) model.MaintenanceEstimate {
	if o.MaintenanceSGA != nil {
		est.MaintenanceSGA = *o.MaintenanceSGA
	}
	if o.MaintenanceRND != nil {
		est.MaintenanceRND = *o.MaintenanceRND
	}
	return est
}

// Run executes one analysis. Market data resolves alongside financials and
// narrative; the estimator waits for the latter two. Every collaborator is
// total, so the only errors are invalid input and cancellation.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.Analysis, error) {
	ticker, err := ValidateTicker(req.Ticker)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run")
	}

	log := zap.L().With(zap.String("ticker", ticker))
	a := &model.Analysis{
		RunID:       uuid.NewString(),
		Ticker:      ticker,
		GeneratedAt: time.Now().UTC(),
	}

	// Fixed slots keep phase order stable and avoid a lock.
	phases := make([]model.Phase, 4)
	trackPhase := func(slot int, name string, fn func() model.Provenance) {
		start := time.Now()
		prov := fn()
		duration := time.Since(start).Milliseconds()
		phases[slot] = model.Phase{Name: name, Source: prov.String(), DurationMs: duration}
		log.Info("pipeline: phase complete",
			zap.String("phase", name),
			zap.String("source", prov.Source),
			zap.Bool("mock", prov.Mock),
			zap.Int64("duration_ms", duration),
		)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		trackPhase(2, PhaseMarket, func() model.Provenance {
			a.Market = p.market.Resolve(gCtx, ticker)
			return a.Market.Provenance
		})
		return nil
	})

	g.Go(func() error {
		inputs, iCtx := errgroup.WithContext(gCtx)
		inputs.Go(func() error {
			trackPhase(0, PhaseFinancials, func() model.Provenance {
				a.Financials = p.financials.Resolve(iCtx, ticker)
				return a.Financials.Provenance
			})
			return nil
		})
		inputs.Go(func() error {
			trackPhase(1, PhaseNarrative, func() model.Provenance {
				a.Narrative = p.narrative.Resolve(iCtx, ticker)
				return a.Narrative.Provenance
			})
			return nil
		})
		_ = inputs.Wait()

		trackPhase(3, PhaseEstimate, func() model.Provenance {
			a.Estimate = p.estimator.Estimate(gCtx, a.Narrative, a.Financials)
			if a.Estimate.IsFallback() {
				return model.Mock()
			}
			return model.Live(model.SourceLLM)
		})
		return nil
	})

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run")
	}
	a.Phases = phases

	applied := req.Overrides.Apply(a.Estimate)
	a.Valuation = valuation.Summarize(a.Financials, a.Market, applied, req.DiscountRate)

	log.Info("pipeline: analysis complete",
		zap.String("run_id", a.RunID),
		zap.String("verdict", string(a.Valuation.Verdict)),
		zap.Float64("equity_epv", a.Valuation.EquityEPV),
		zap.Float64("market_cap", a.Market.MarketCap),
		zap.Bool("mock_data", a.UsesMockData()),
	)
	return a, nil
}
