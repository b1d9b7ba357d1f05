package model

// MarketSnapshot holds current market data for one ticker. Created fresh
// per analysis and never mutated.
type MarketSnapshot struct {
	Ticker      string     `json:"ticker" yaml:"ticker"`
	Price       float64    `json:"price" yaml:"price"`
	MarketCap   float64    `json:"market_cap" yaml:"market_cap"`
	CompanyName string     `json:"company_name" yaml:"company_name"`
	Provenance  Provenance `json:"provenance" yaml:"provenance"`
}

// FallbackMarket returns the static snapshot used when every market data
// source has failed.
func FallbackMarket(ticker string) MarketSnapshot {
	return MarketSnapshot{
		Ticker:      ticker,
		Price:       75.50,
		MarketCap:   98_000_000_000,
		CompanyName: ticker + " (Mock)",
		Provenance:  Mock(),
	}
}
