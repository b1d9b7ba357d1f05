package estimate

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/epv-cli/internal/model"
)

// DefaultMaxNarrativeChars bounds the MD&A text sent to the model, in characters.
const DefaultMaxNarrativeChars = 5000

// SystemPrompt instructs the model to split S&M and R&D spend into
// maintenance and growth using the Greenwald EPV framework.
const SystemPrompt = `
You are a Value Investor trained in the Bruce Greenwald Earnings Power Value (EPV) framework.
Your goal is to normalize a SaaS company's Income Statement to find its "Steady State" earnings.

SaaS companies often disguise true earnings by categorizing "Growth Investment" as "Operating Expenses" (SG&A/R&D).
You must analyze the provided MD&A text and financial footnotes to estimate the SPLIT between Maintenance and Growth.

Core Heuristics:
1. Sales & Marketing (S&M):
   - "Maintenance" S&M is the cost to RETAIN existing revenue.
   - "Growth" S&M is the cost to acquire NEW customers or expand into new markets.
   - CRITICAL RULE: If Net Revenue Retention (NRR) > 100% (or "Expansion" is strong), this implies the existing customer base grows itself. Therefore, nearly ALL S&M is Growth (Maintenance S&M % should be LOW, e.g., 10-30%).
   - If Churn is high, Maintenance S&M must be higher to replace lost revenue.

2. Research & Development (R&D):
   - "Maintenance" R&D is the cost to keep the current platform running and bug-free.
   - "Growth" R&D is for NEW features, new products, or major platform overhauls.
   - For mature SaaS, Maintenance R&D is typically 20-40% of total R&D.

Return your analysis in the following JSON format:
{
    "maintenance_sga_percent": float, // 0.0 to 1.0
    "maintenance_rnd_percent": float, // 0.0 to 1.0
    "reasoning": "string explaining specific citations from MD&A, specifically referencing NRR/Expansion if present."
}
`

// BuildUserContent serializes the financial record and appends the
// narrative, truncated to maxChars.
func BuildUserContent(narrative model.NarrativeText, fin model.FinancialRecord, maxChars int) (string, error) {
	data, err := json.Marshal(fin)
	if err != nil {
		return "", eris.Wrap(err, "estimate: marshal financials")
	}
	return "Financials: " + string(data) + "\n\nMD&A Text:\n" + narrative.Truncate(maxChars) + "...", nil
}
