// Package narrative fetches the MD&A section of a company's latest 10-K
// from SEC EDGAR, falling back to a static narrative.
package narrative

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/epv-cli/internal/fetcher"
	"github.com/sells-group/epv-cli/internal/model"
	"github.com/sells-group/epv-cli/pkg/edgar"
)

// Filings is the subset of the EDGAR client the fetcher needs.
type Filings interface {
	LookupCIK(ctx context.Context, ticker string) (edgar.Company, error)
	LatestFiling(ctx context.Context, cik int64, form string) (*edgar.Filing, error)
	FetchDocument(ctx context.Context, f *edgar.Filing) ([]byte, error)
}

// Fetcher resolves NarrativeText. Resolve never fails.
type Fetcher struct {
	filings Filings
}

// NewFetcher creates a Fetcher. A nil Filings always yields the fallback.
func NewFetcher(filings Filings) *Fetcher {
	return &Fetcher{filings: filings}
}

// Resolve returns the MD&A text of the latest 10-K, or the fallback
// narrative on any lookup, network or extraction failure.
func (f *Fetcher) Resolve(ctx context.Context, ticker string) model.NarrativeText {
	text, err := f.Try(ctx, ticker)
	if err != nil {
		zap.L().Warn("narrative: using static fallback",
			zap.String("ticker", ticker),
			zap.String("source", model.SourceMock),
			zap.Error(err),
		)
		return model.FallbackNarrative(ticker)
	}
	return text
}

// Try fetches and extracts the MD&A section, returning an error when any
// step fails or nothing could be extracted.
func (f *Fetcher) Try(ctx context.Context, ticker string) (model.NarrativeText, error) {
	if f.filings == nil {
		return model.NarrativeText{}, eris.New("narrative: no filing repository configured")
	}

	co, err := f.filings.LookupCIK(ctx, ticker)
	if err != nil {
		return model.NarrativeText{}, eris.Wrap(err, "narrative: lookup cik")
	}
	filing, err := f.filings.LatestFiling(ctx, co.CIK, edgar.FormAnnualReport)
	if err != nil {
		return model.NarrativeText{}, eris.Wrap(err, "narrative: latest filing")
	}
	body, err := f.filings.FetchDocument(ctx, filing)
	if err != nil {
		return model.NarrativeText{}, eris.Wrap(err, "narrative: fetch document")
	}

	decoded, err := fetcher.DecodeCharset(body, "")
	if err != nil {
		zap.L().Debug("narrative: charset decode failed, using raw body",
			zap.String("ticker", ticker), zap.Error(err))
		decoded = body
	}

	text := ExtractMDA(string(decoded))
	if text == "" {
		return model.NarrativeText{}, eris.Errorf("narrative: no MD&A section in %s", filing.AccessionNumber)
	}

	zap.L().Debug("narrative: extracted MD&A",
		zap.String("ticker", ticker),
		zap.String("accession", filing.AccessionNumber),
		zap.Int("chars", len(text)),
	)
	return model.NarrativeText{
		Ticker:     ticker,
		Text:       text,
		Provenance: model.Live(model.SourceEDGAR),
	}, nil
}
