package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/epv-cli/internal/model"
)

// Markdown renders the human-readable report.
func Markdown(a *model.Analysis) string {
	v := a.Valuation
	fin := a.Financials
	mkt := a.Market

	var b strings.Builder
	name := mkt.CompanyName
	if name == "" {
		name = a.Ticker
	}
	fmt.Fprintf(&b, "# SaaS EPV Analysis Report: %s (%s)\n\n", name, a.Ticker)
	fmt.Fprintf(&b, "Generated %s · run `%s` · cost of capital %.1f%%\n\n",
		a.GeneratedAt.Format("2006-01-02 15:04 MST"), a.RunID, v.DiscountRate*100)

	b.WriteString("## Data Provenance\n\n")
	if a.UsesMockData() {
		b.WriteString("> **Mock Data:** at least one input fell back to demo values.\n\n")
	} else {
		b.WriteString("> **Live Data**\n\n")
	}
	b.WriteString("| Input | Source | Duration |\n|---|---|---:|\n")
	for _, ph := range a.Phases {
		fmt.Fprintf(&b, "| %s | %s | %d ms |\n", ph.Name, ph.Source, ph.DurationMs)
	}
	if len(a.Phases) == 0 {
		fmt.Fprintf(&b, "| financials | %s | |\n", fin.Provenance)
		fmt.Fprintf(&b, "| narrative | %s | |\n", a.Narrative.Provenance)
		fmt.Fprintf(&b, "| market | %s | |\n", mkt.Provenance)
	}
	if a.Narrative.Provenance.Mock {
		b.WriteString("\nUsing Mock MD&A (SEC Fetch Failed)\n")
	}
	b.WriteString("\n")

	e := v.Earnings
	b.WriteString("## Normalized Earnings\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Revenue | %s |\n", billions(fin.Revenue))
	fmt.Fprintf(&b, "| Reported EBIT | %s |\n", billions(e.ReportedEBIT))
	fmt.Fprintf(&b, "| Growth S&M add-back | %s |\n", billions(e.GrowthSGA))
	fmt.Fprintf(&b, "| Growth R&D add-back | %s |\n", billions(e.GrowthRND))
	fmt.Fprintf(&b, "| Normalized EBIT | %s (%s) |\n", billions(e.NormalizedEBIT), signedBillions(e.NormalizedEBIT-e.ReportedEBIT))
	fmt.Fprintf(&b, "| NOPAT (tax %.1f%%) | %s |\n\n", fin.TaxRate*100, billions(e.NOPAT))

	b.WriteString("## Valuation\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Firm EPV | %s |\n", billions(v.FirmEPV))
	fmt.Fprintf(&b, "| Net Cash | %s |\n", billions(v.NetCash))
	fmt.Fprintf(&b, "| Equity EPV | %s |\n", billions(v.EquityEPV))
	fmt.Fprintf(&b, "| Current Market Cap | %s |\n\n", billions(mkt.MarketCap))
	b.WriteString("Firm EPV assumes zero growth. It is the steady-state earnings power capitalized at the cost of capital.\n\n")

	b.WriteString("### Per Share\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Target Price (EPV) | $%.2f |\n", v.EPVPerShare)
	fmt.Fprintf(&b, "| Current Price | $%.2f |\n", mkt.Price)
	if v.UpsidePct > 0 {
		fmt.Fprintf(&b, "| Upside | +%.1f%% |\n\n", v.UpsidePct)
	} else {
		fmt.Fprintf(&b, "| Downside | %.1f%% |\n\n", v.UpsidePct)
	}

	switch v.Verdict {
	case model.VerdictUndervalued:
		fmt.Fprintf(&b, "**Undervalued:** Trading at a **%.1f%% discount** to Equity EPV.\n\n", v.MarketGapPct)
	default:
		fmt.Fprintf(&b, "**Overvalued:** Trading at a **%.1f%% premium** to Equity EPV.\n\n", v.MarketGapPct)
	}

	b.WriteString("## Moat & Durability\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Reproduction Value (Assets) | %s |\n", billions(v.ReproductionValue))
	fmt.Fprintf(&b, "| Franchise Value (Moat) | %s |\n\n", billions(v.FranchiseValue))
	if v.HasMoat {
		fmt.Fprintf(&b, "**Wide Moat:** The business generates returns significantly above the cost to replicate its assets. (Franchise Value is %.0f%% of Firm EPV)\n\n", v.FranchiseSharePct)
	} else {
		b.WriteString("**No Moat:** The business is destroying value relative to its asset base, or the industry is highly competitive.\n\n")
	}
	b.WriteString("Reproduction value excludes cash and capitalizes current R&D over 3 years as a proxy for platform replacement.\n\n")

	b.WriteString("## Rule of 40\n\n")
	b.WriteString("| Basis | Growth | Margin | Score |\n|---|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| GAAP | %.1f%% | %.1f%% | %.1f%% |\n", v.RevenueGrowthPct, v.GAAPMarginPct, v.RuleOf40GAAP)
	fmt.Fprintf(&b, "| Adjusted | %.1f%% | %.1f%% | %.1f%% |\n\n", v.RevenueGrowthPct, v.AdjustedMarginPct, v.RuleOf40Adjusted)
	if v.RuleOf40Adjusted >= 40 {
		fmt.Fprintf(&b, "Adjusted score passes the Rule of 40 (%+.1f%% vs GAAP).\n\n", v.RuleOf40Adjusted-v.RuleOf40GAAP)
	} else {
		fmt.Fprintf(&b, "Adjusted score misses the Rule of 40 (%+.1f%% vs GAAP).\n\n", v.RuleOf40Adjusted-v.RuleOf40GAAP)
	}

	est := a.Estimate
	applied := v.AppliedMaintenance
	b.WriteString("## AI Rationale\n\n")
	for _, line := range strings.Split(strings.TrimSpace(est.Reasoning), "\n") {
		b.WriteString("> " + line + "\n")
	}
	b.WriteString("\n| Ratio | Estimate | Applied |\n|---|---:|---:|\n")
	fmt.Fprintf(&b, "| Maintenance S&M | %.1f%% | %.1f%% |\n", est.MaintenanceSGA*100, applied.MaintenanceSGA*100)
	fmt.Fprintf(&b, "| Maintenance R&D | %.1f%% | %.1f%% |\n\n", est.MaintenanceRND*100, applied.MaintenanceRND*100)
	fmt.Fprintf(&b, "Summary: AI Estimate: %.0f%% Maint S&M, %.0f%% Maint R&D\n",
		est.MaintenanceSGA*100, est.MaintenanceRND*100)

	return b.String()
}

func billions(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.1fB", -v/1e9)
	}
	return fmt.Sprintf("$%.1fB", v/1e9)
}

func signedBillions(v float64) string {
	if v < 0 {
		return billions(v)
	}
	return "+" + billions(v)
}
