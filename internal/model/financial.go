package model

// Tax rate bounds applied to every resolved financial record.
const (
	DefaultTaxRate = 0.21
	MaxTaxRate     = 0.35
)

// FinancialRecord is a normalized snapshot of income-statement and
// balance-sheet fields for one company. Dollar fields are non-negative
// except EBIT.
type FinancialRecord struct {
	Ticker                  string     `json:"ticker" yaml:"ticker"`
	Revenue                 float64    `json:"revenue" yaml:"revenue"`
	PrevRevenue             float64    `json:"prev_revenue" yaml:"prev_revenue"`
	COGS                    float64    `json:"cogs" yaml:"cogs"`
	EBIT                    float64    `json:"ebit" yaml:"ebit"`
	SGA                     float64    `json:"sga" yaml:"sga"`
	RND                     float64    `json:"rnd" yaml:"rnd"`
	TaxRate                 float64    `json:"tax_rate" yaml:"tax_rate"`
	SharesOutstanding       float64    `json:"shares_outstanding" yaml:"shares_outstanding"`
	Cash                    float64    `json:"cash" yaml:"cash"`
	Debt                    float64    `json:"debt" yaml:"debt"`
	AccountsReceivable      float64    `json:"accounts_receivable" yaml:"accounts_receivable"`
	PPE                     float64    `json:"pp_and_e" yaml:"pp_and_e"`
	OtherAssets             float64    `json:"other_assets" yaml:"other_assets"`
	TotalCurrentLiabilities float64    `json:"total_current_liabilities" yaml:"total_current_liabilities"`
	BookEquity              float64    `json:"book_value_equity" yaml:"book_value_equity"`
	Provenance              Provenance `json:"provenance" yaml:"provenance"`
}

// ClampTaxRate bounds an effective tax rate to [0, MaxTaxRate].
func ClampTaxRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > MaxTaxRate {
		return MaxTaxRate
	}
	return rate
}

// FallbackFinancials returns the documented static record used when every
// live source has failed. It models a growth-stage SaaS company with
// 25% revenue growth and negative reported EBIT.
func FallbackFinancials(ticker string) FinancialRecord {
	return FinancialRecord{
		Ticker:                  ticker,
		Revenue:                 7_000_000_000,
		PrevRevenue:             5_600_000_000,
		COGS:                    2_000_000_000,
		EBIT:                    -1_200_000_000,
		SGA:                     2_500_000_000,
		RND:                     1_800_000_000,
		TaxRate:                 DefaultTaxRate,
		SharesOutstanding:       1_300_000_000,
		Cash:                    5_000_000_000,
		Debt:                    2_000_000_000,
		AccountsReceivable:      600_000_000,
		PPE:                     300_000_000,
		OtherAssets:             200_000_000,
		TotalCurrentLiabilities: 1_500_000_000,
		BookEquity:              6_000_000_000,
		Provenance:              Mock(),
	}
}
