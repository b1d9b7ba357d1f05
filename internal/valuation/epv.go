// Package valuation implements the Greenwald earnings power value model:
// normalized earnings, capitalized earnings power, reproduction value,
// franchise value and the Rule of 40 composite.
package valuation

import "github.com/sells-group/epv-cli/internal/model"

// RNDCapitalizationYears approximates the cost of rebuilding the product
// platform as this many years of current R&D.
const RNDCapitalizationYears = 3

// GrowthAddBack is the growth share of an expense line.
func GrowthAddBack(expense, maintenanceRatio float64) float64 {
	return expense * (1 - maintenanceRatio)
}

// NormalizeEarnings adds the growth share of S&M and R&D back to reported
// EBIT and taxes the result. Normalized EBIT is not floored and may stay
// negative.
func NormalizeEarnings(fin model.FinancialRecord, est model.MaintenanceEstimate) model.NormalizedEarnings {
	growthSGA := GrowthAddBack(fin.SGA, est.MaintenanceSGA)
	growthRND := GrowthAddBack(fin.RND, est.MaintenanceRND)
	normalized := fin.EBIT + growthSGA + growthRND
	return model.NormalizedEarnings{
		ReportedEBIT:   fin.EBIT,
		GrowthSGA:      growthSGA,
		GrowthRND:      growthRND,
		NormalizedEBIT: normalized,
		NOPAT:          normalized * (1 - fin.TaxRate),
	}
}

// EPV capitalizes earnings at the discount rate with zero growth. A zero
// rate yields 0 rather than an unbounded value.
func EPV(earnings, discountRate float64) float64 {
	if discountRate == 0 {
		return 0
	}
	return earnings / discountRate
}

// EquityValue is firm EPV plus cash minus debt.
func EquityValue(firmEPV, cash, debt float64) float64 {
	return firmEPV + cash - debt
}

// ReproductionValue estimates the replacement cost of operating assets,
// excluding cash: net operating working capital plus PP&E plus three years
// of R&D. Book equity less cash raises the value when larger, and the
// result is never negative.
func ReproductionValue(fin model.FinancialRecord) float64 {
	workingCapital := fin.AccountsReceivable + fin.OtherAssets - fin.TotalCurrentLiabilities
	v := workingCapital + fin.PPE + fin.RND*RNDCapitalizationYears
	if fin.BookEquity != 0 {
		v = max(v, fin.BookEquity-fin.Cash)
	}
	return max(v, 0)
}

// FranchiseValue is firm EPV less reproduction value. A positive value
// signals a durable competitive advantage.
func FranchiseValue(firmEPV, reproductionValue float64) float64 {
	return firmEPV - reproductionValue
}

// HasMoat classifies a franchise value.
func HasMoat(franchiseValue float64) bool {
	return franchiseValue > 0
}

// RuleOf40 is revenue growth percent plus profit margin percent.
func RuleOf40(revenueGrowthPct, marginPct float64) float64 {
	return revenueGrowthPct + marginPct
}

// RevenueGrowthPct is year-over-year growth in percent. A prior revenue of
// 0 is replaced by 1 before dividing.
func RevenueGrowthPct(revenue, prevRevenue float64) float64 {
	if prevRevenue == 0 {
		prevRevenue = 1
	}
	return (revenue - prevRevenue) / prevRevenue * 100
}

// MarginPct is profit over revenue in percent, or 0 without revenue.
func MarginPct(profit, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	return profit / revenue * 100
}
