package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/epv-cli/internal/model"
	"github.com/sells-group/epv-cli/internal/valuation"
)

func fallbackAnalysis() *model.Analysis {
	fin := model.FallbackFinancials("SHOP")
	mkt := model.FallbackMarket("SHOP")
	est := model.FallbackEstimate()
	return &model.Analysis{
		RunID:       "run-1",
		Ticker:      "SHOP",
		GeneratedAt: time.Date(2026, 3, 2, 15, 4, 0, 0, time.UTC),
		Financials:  fin,
		Market:      mkt,
		Narrative:   model.FallbackNarrative("SHOP"),
		Estimate:    est,
		Valuation:   valuation.Summarize(fin, mkt, est, 0.10),
		Phases: []model.Phase{
			{Name: "financials", Source: "mock (mock)", DurationMs: 12},
			{Name: "market", Source: "mock (mock)", DurationMs: 7},
		},
	}
}

func liveAnalysis() *model.Analysis {
	fin := model.FinancialRecord{
		Ticker: "DDOG", Revenue: 1000, PrevRevenue: 800, EBIT: 300, SGA: 200, RND: 100,
		TaxRate: 0.2, SharesOutstanding: 10, Cash: 50, Debt: 10,
		Provenance: model.Live(model.SourceFMP),
	}
	mkt := model.MarketSnapshot{
		Ticker: "DDOG", Price: 100, MarketCap: 1000, CompanyName: "Datadog, Inc.",
		Provenance: model.Live(model.SourceFMP),
	}
	est := model.MaintenanceEstimate{MaintenanceSGA: 0.5, MaintenanceRND: 0.5, Reasoning: "High NRR.\nHeavy platform spend."}
	return &model.Analysis{
		RunID:      "run-2",
		Ticker:     "DDOG",
		Financials: fin,
		Market:     mkt,
		Narrative:  model.NarrativeText{Ticker: "DDOG", Text: "mdna", Provenance: model.Live(model.SourceEDGAR)},
		Estimate:   est,
		Valuation:  valuation.Summarize(fin, mkt, est, 0.10),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatMarkdown},
		{"md", FormatMarkdown},
		{"Markdown", FormatMarkdown},
		{"HTML", FormatHTML},
		{"json", FormatJSON},
		{"yml", FormatYAML},
		{" yaml ", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("pdf")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownFormat))
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Contains(t, FormatHTML.ContentType(), "text/html")
	assert.Contains(t, FormatMarkdown.ContentType(), "text/markdown")
	assert.Equal(t, "application/yaml", FormatYAML.ContentType())
}

func TestMarkdown_Fallback(t *testing.T) {
	out := Markdown(fallbackAnalysis())

	assert.True(t, strings.HasPrefix(out, "# SaaS EPV Analysis Report: SHOP (Mock) (SHOP)\n"))
	for _, section := range []string{
		"## Data Provenance", "## Normalized Earnings", "## Valuation",
		"### Per Share", "## Moat & Durability", "## Rule of 40", "## AI Rationale",
	} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "**Mock Data:**")
	assert.Contains(t, out, "Using Mock MD&A")
	assert.Contains(t, out, "| financials | mock (mock) | 12 ms |")
	assert.Contains(t, out, "| Reported EBIT | -$1.2B |")
	assert.Contains(t, out, "| Normalized EBIT | $2.2B (+$3.4B) |")
	assert.Contains(t, out, "| Firm EPV | $17.7B |")
	assert.Contains(t, out, "**Overvalued:**")
	assert.Contains(t, out, "| Downside |")
	assert.Contains(t, out, "> ⚠️ AI Unavailable")
	assert.Contains(t, out, "Summary: AI Estimate: 20% Maint S&M, 20% Maint R&D")
}

func TestMarkdown_Live(t *testing.T) {
	out := Markdown(liveAnalysis())

	assert.Contains(t, out, "# SaaS EPV Analysis Report: Datadog, Inc. (DDOG)")
	assert.Contains(t, out, "> **Live Data**")
	assert.Contains(t, out, "| financials | fmp | |")
	assert.NotContains(t, out, "Using Mock MD&A")
	// Equity EPV 3640 vs market cap 1000.
	assert.Contains(t, out, "**Undervalued:**")
	assert.Contains(t, out, "| Upside | +")
	assert.Contains(t, out, "**Wide Moat:**")
	assert.Contains(t, out, "> High NRR.\n> Heavy platform spend.\n")
	assert.Contains(t, out, "passes the Rule of 40")
}

func TestMarkdown_NameDefaultsToTicker(t *testing.T) {
	a := liveAnalysis()
	a.Market.CompanyName = ""
	assert.Contains(t, Markdown(a), "# SaaS EPV Analysis Report: DDOG (DDOG)")
}

func TestHTML(t *testing.T) {
	out, err := HTML(fallbackAnalysis())
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "<!DOCTYPE html>"))
	assert.Contains(t, s, "<title>SaaS EPV Analysis: SHOP</title>")
	assert.Contains(t, s, "<h1")
	assert.Contains(t, s, "<table>")
	assert.Contains(t, s, "<strong>Overvalued:</strong>")
}

func TestJSON(t *testing.T) {
	out, err := JSON(liveAnalysis())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "DDOG", decoded["ticker"])
	val := decoded["valuation"].(map[string]any)
	assert.Equal(t, "Undervalued", val["verdict"])
	fin := decoded["financials"].(map[string]any)
	assert.Contains(t, fin, "book_value_equity")
}

func TestYAML(t *testing.T) {
	out, err := YAML(fallbackAnalysis())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "SHOP", decoded["ticker"])
	est := decoded["estimate"].(map[string]any)
	assert.Equal(t, true, est["fallback"])
}

func TestRender(t *testing.T) {
	a := liveAnalysis()
	for _, f := range []Format{FormatMarkdown, FormatHTML, FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, f, a), f)
		assert.NotEmpty(t, buf.String(), f)
	}

	err := Render(&bytes.Buffer{}, Format("pdf"), a)
	assert.True(t, eris.Is(err, ErrUnknownFormat))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_WriteError(t *testing.T) {
	err := Render(failingWriter{}, FormatJSON, liveAnalysis())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report: write")
}
