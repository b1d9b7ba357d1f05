package model

import "time"

// Verdict compares equity EPV against market capitalization.
type Verdict string

const (
	VerdictUndervalued Verdict = "Undervalued"
	VerdictOvervalued  Verdict = "Overvalued"
)

// Valuation is the output of the valuation engine for one analysis.
type Valuation struct {
	DiscountRate       float64             `json:"discount_rate" yaml:"discount_rate"`
	Earnings           NormalizedEarnings  `json:"earnings" yaml:"earnings"`
	FirmEPV            float64             `json:"firm_epv" yaml:"firm_epv"`
	EquityEPV          float64             `json:"equity_epv" yaml:"equity_epv"`
	NetCash            float64             `json:"net_cash" yaml:"net_cash"`
	EPVPerShare        float64             `json:"epv_per_share" yaml:"epv_per_share"`
	UpsidePct          float64             `json:"upside_pct" yaml:"upside_pct"`
	ReproductionValue  float64             `json:"reproduction_value" yaml:"reproduction_value"`
	FranchiseValue     float64             `json:"franchise_value" yaml:"franchise_value"`
	HasMoat            bool                `json:"has_moat" yaml:"has_moat"`
	FranchiseSharePct  float64             `json:"franchise_share_pct" yaml:"franchise_share_pct"`
	RevenueGrowthPct   float64             `json:"revenue_growth_pct" yaml:"revenue_growth_pct"`
	GAAPMarginPct      float64             `json:"gaap_margin_pct" yaml:"gaap_margin_pct"`
	AdjustedMarginPct  float64             `json:"adjusted_margin_pct" yaml:"adjusted_margin_pct"`
	RuleOf40GAAP       float64             `json:"rule_of_40_gaap" yaml:"rule_of_40_gaap"`
	RuleOf40Adjusted   float64             `json:"rule_of_40_adjusted" yaml:"rule_of_40_adjusted"`
	Verdict            Verdict             `json:"verdict" yaml:"verdict"`
	MarketGapPct       float64             `json:"market_gap_pct" yaml:"market_gap_pct"` // discount when undervalued, premium when overvalued
	AppliedMaintenance MaintenanceEstimate `json:"applied_maintenance" yaml:"applied_maintenance"`
}

// Phase records how long one resolution step took and which source
// answered.
type Phase struct {
	Name       string `json:"name" yaml:"name"`
	Source     string `json:"source" yaml:"source"`
	DurationMs int64  `json:"duration_ms" yaml:"duration_ms"`
}

// Analysis is everything produced by one pipeline run. It is owned by the
// caller and never persisted.
type Analysis struct {
	RunID       string              `json:"run_id" yaml:"run_id"`
	Ticker      string              `json:"ticker" yaml:"ticker"`
	GeneratedAt time.Time           `json:"generated_at" yaml:"generated_at"`
	Financials  FinancialRecord     `json:"financials" yaml:"financials"`
	Market      MarketSnapshot      `json:"market" yaml:"market"`
	Narrative   NarrativeText       `json:"narrative" yaml:"narrative"`
	Estimate    MaintenanceEstimate `json:"estimate" yaml:"estimate"`
	Valuation   Valuation           `json:"valuation" yaml:"valuation"`
	Phases      []Phase             `json:"phases" yaml:"phases"`
}

// UsesMockData reports whether any input fell back to static data.
func (a *Analysis) UsesMockData() bool {
	return a.Financials.Provenance.Mock || a.Market.Provenance.Mock
}
