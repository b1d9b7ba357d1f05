package valuation

import "github.com/sells-group/epv-cli/internal/model"

// Summarize runs the full model for one analysis. est is the maintenance
// split actually applied, which may be a user override of the model's
// answer.
func Summarize(fin model.FinancialRecord, mkt model.MarketSnapshot, est model.MaintenanceEstimate, discountRate float64) model.Valuation {
	earnings := NormalizeEarnings(fin, est)
	firm := EPV(earnings.NOPAT, discountRate)
	equity := EquityValue(firm, fin.Cash, fin.Debt)
	repro := ReproductionValue(fin)
	franchise := FranchiseValue(firm, repro)

	v := model.Valuation{
		DiscountRate:       discountRate,
		Earnings:           earnings,
		FirmEPV:            firm,
		EquityEPV:          equity,
		NetCash:            fin.Cash - fin.Debt,
		ReproductionValue:  repro,
		FranchiseValue:     franchise,
		HasMoat:            HasMoat(franchise),
		RevenueGrowthPct:   RevenueGrowthPct(fin.Revenue, fin.PrevRevenue),
		GAAPMarginPct:      MarginPct(fin.EBIT, fin.Revenue),
		AdjustedMarginPct:  MarginPct(earnings.NOPAT, fin.Revenue),
		AppliedMaintenance: est,
	}
	v.RuleOf40GAAP = RuleOf40(v.RevenueGrowthPct, v.GAAPMarginPct)
	v.RuleOf40Adjusted = RuleOf40(v.RevenueGrowthPct, v.AdjustedMarginPct)

	if fin.SharesOutstanding != 0 {
		v.EPVPerShare = equity / fin.SharesOutstanding
	}
	if mkt.Price != 0 {
		v.UpsidePct = (v.EPVPerShare - mkt.Price) / mkt.Price * 100
	}
	if firm != 0 {
		v.FranchiseSharePct = franchise / firm * 100
	}

	if equity > mkt.MarketCap {
		v.Verdict = model.VerdictUndervalued
	} else {
		v.Verdict = model.VerdictOvervalued
	}
	if equity != 0 {
		v.MarketGapPct = (equity - mkt.MarketCap) / equity * 100
		if v.Verdict == model.VerdictOvervalued {
			v.MarketGapPct = -v.MarketGapPct
		}
	}
	return v
}
