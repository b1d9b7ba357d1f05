package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/epv-cli/internal/config"
	"github.com/sells-group/epv-cli/internal/estimate"
	"github.com/sells-group/epv-cli/internal/fetcher"
	"github.com/sells-group/epv-cli/internal/financials"
	"github.com/sells-group/epv-cli/internal/market"
	"github.com/sells-group/epv-cli/internal/narrative"
	"github.com/sells-group/epv-cli/internal/pipeline"
	"github.com/sells-group/epv-cli/internal/resilience"
	"github.com/sells-group/epv-cli/internal/store"
	anthropicpkg "github.com/sells-group/epv-cli/pkg/anthropic"
	"github.com/sells-group/epv-cli/pkg/edgar"
	"github.com/sells-group/epv-cli/pkg/fmp"
	"github.com/sells-group/epv-cli/pkg/gemini"
	"github.com/sells-group/epv-cli/pkg/yahoo"
)

// pipelineEnv holds the pipeline and the resources it owns.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	cache    *store.SQLiteCache // may be nil
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.cache != nil {
		_ = pe.cache.Close()
	}
}

// initPipeline builds every client, resolver and the Pipeline from cfg.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	env := &pipelineEnv{}
	getter, err := initDocumentGetter(ctx, cfg, env)
	if err != nil {
		return nil, err
	}

	archives := strings.TrimRight(cfg.EDGAR.BaseURL, "/")
	tickers := edgar.NewTickerMap(getter, archives+"/files/company_tickers.json")
	edgarClient := edgar.NewClient(getter, tickers,
		edgar.WithArchivesURL(archives),
		edgar.WithDataURL(cfg.EDGAR.DataURL),
	)

	var fmpClient fmp.Client
	if cfg.FMP.Key != "" {
		fmpClient = fmp.NewClient(cfg.FMP.Key,
			fmp.WithBaseURL(cfg.FMP.BaseURL),
			fmp.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout()}),
		)
	} else {
		zap.L().Info("fmp: no API key configured, using yahoo only")
	}
	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(cfg.Yahoo.BaseURL),
		yahoo.WithTimeout(cfg.HTTP.Timeout()),
	)

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		env.Close()
		return nil, err
	}

	retry := resilience.FromConfig(cfg.Retry.MaxAttempts, cfg.Retry.StepMs)
	env.Pipeline = pipeline.New(
		financials.NewResolver(fmpClient, yahooClient, retry),
		narrative.NewFetcher(edgarClient),
		market.NewResolver(fmpClient, yahooClient, retry),
		estimate.NewEstimator(backend, estimate.DefaultRetry(), cfg.Narrative.MaxChars,
			estimate.WithAttemptTimeout(cfg.LLM.Timeout()),
		),
	)
	return env, nil
}

// initDocumentGetter returns the SEC document transport, wrapped in the
// SQLite cache when one is configured.
func initDocumentGetter(ctx context.Context, c *config.Config, env *pipelineEnv) (edgar.Getter, error) {
	httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    c.EDGAR.UserAgent,
		Timeout:      c.HTTP.Timeout(),
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
	if c.Cache.Path == "" {
		return httpFetcher, nil
	}

	cache, err := store.NewSQLite(c.Cache.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open document cache")
	}
	if err := cache.Migrate(ctx); err != nil {
		_ = cache.Close()
		return nil, eris.Wrap(err, "migrate document cache")
	}
	if n, err := cache.DeleteExpired(ctx); err != nil {
		zap.L().Warn("sqlite: purge expired documents failed", zap.Error(err))
	} else if n > 0 {
		zap.L().Debug("sqlite: purged expired documents", zap.Int("count", n))
	}
	env.cache = cache

	return &fetcher.CachedFetcher{Getter: httpFetcher, Cache: cache, TTL: c.Cache.TTL()}, nil
}

// newBackend selects the language-model backend. A missing key yields a
// backend that answers with canned output.
func newBackend(ctx context.Context, c *config.Config) (estimate.Backend, error) {
	switch c.LLM.Provider {
	case config.ProviderGemini:
		var client gemini.Client
		if c.Gemini.Key != "" {
			gc, err := gemini.NewClient(ctx, c.Gemini.Key,
				gemini.WithHTTPClient(&http.Client{Timeout: c.LLM.Timeout()}),
			)
			if err != nil {
				return nil, eris.Wrap(err, "init gemini client")
			}
			client = gc
		}
		return estimate.NewGeminiBackend(client, c.Gemini.Model, c.Gemini.FallbackModel), nil
	default:
		var client anthropicpkg.Client
		if c.Anthropic.Key != "" {
			client = anthropicpkg.NewClient(c.Anthropic.Key,
				option.WithHTTPClient(&http.Client{Timeout: c.LLM.Timeout()}),
			)
		}
		return estimate.NewAnthropicBackend(client, c.Anthropic.Model, c.Anthropic.FallbackModel, c.Anthropic.MaxTokens), nil
	}
}
