package financials

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/epv-cli/internal/model"
	"github.com/sells-group/epv-cli/pkg/yahoo"
)

var financialModules = []string{
	yahoo.ModuleIncomeStatementHistory,
	yahoo.ModuleBalanceSheetHistory,
	yahoo.ModuleDefaultKeyStatistics,
}

// YahooSource maps Yahoo Finance statement history to a FinancialRecord.
// Missing balance-sheet figures are filled from the static fallback record.
type YahooSource struct {
	client yahoo.Client
}

// NewYahooSource creates the secondary financials source.
func NewYahooSource(c yahoo.Client) *YahooSource {
	return &YahooSource{client: c}
}

// Name implements cascade.Source.
func (s *YahooSource) Name() string { return model.SourceYahoo }

// Fetch reads the annual statement history in one quoteSummary call.
func (s *YahooSource) Fetch(ctx context.Context, ticker string) (model.FinancialRecord, error) {
	sum, err := s.client.QuoteSummary(ctx, ticker, financialModules...)
	if err != nil {
		return model.FinancialRecord{}, eris.Wrap(err, "financials: yahoo quote summary")
	}
	if sum == nil {
		return model.FinancialRecord{}, eris.Errorf("financials: yahoo returned no summary for %s", ticker)
	}
	return mapYahoo(ticker, sum)
}

func raw(v *yahoo.Value) *float64 {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}

func mapYahoo(ticker string, sum *yahoo.Summary) (model.FinancialRecord, error) {
	incomes := sum.IncomeStatements()
	if len(incomes) == 0 {
		return model.FinancialRecord{}, eris.Errorf("financials: yahoo returned no income statements for %s", ticker)
	}
	inc := incomes[0]

	revenue := model.Coalesce(raw(inc.TotalRevenue))
	ebit := model.Coalesce(raw(inc.OperatingIncome), raw(inc.EBIT))
	if revenue == nil || ebit == nil {
		return model.FinancialRecord{}, eris.Errorf("financials: yahoo missing core income statement fields for %s", ticker)
	}

	var prevRev *float64
	if len(incomes) > 1 {
		prevRev = model.Coalesce(raw(incomes[1].TotalRevenue))
	}

	var bal yahoo.BalanceSheet
	if sheets := sum.BalanceSheets(); len(sheets) > 0 {
		bal = sheets[0]
	}

	var shares *float64
	if ks := sum.DefaultKeyStatistics; ks != nil {
		shares = raw(ks.SharesOutstanding)
	}

	fb := model.FallbackFinancials(ticker)
	return model.FinancialRecord{
		Ticker:                  ticker,
		Revenue:                 *revenue,
		PrevRevenue:             prevRevenue(prevRev, *revenue),
		COGS:                    model.ValueOr(model.Coalesce(raw(inc.CostOfRevenue)), 0),
		EBIT:                    *ebit,
		SGA:                     model.ValueOr(model.Coalesce(raw(inc.SellingGeneralAdministrative)), 0),
		RND:                     model.ValueOr(model.Coalesce(raw(inc.ResearchDevelopment)), 0),
		TaxRate:                 effectiveTaxRate(raw(inc.IncomeTaxExpense), raw(inc.IncomeBeforeTax)),
		SharesOutstanding:       model.ValueOr(model.Coalesce(shares), fb.SharesOutstanding),
		Cash:                    model.ValueOr(model.Coalesce(raw(bal.Cash)), fb.Cash),
		Debt:                    model.ValueOr(raw(bal.ShortLongTermDebt), 0) + model.ValueOr(raw(bal.LongTermDebt), 0),
		AccountsReceivable:      model.ValueOr(model.Coalesce(raw(bal.NetReceivables)), fb.AccountsReceivable),
		PPE:                     model.ValueOr(model.Coalesce(raw(bal.PropertyPlantEquipment)), fb.PPE),
		OtherAssets:             model.ValueOr(model.Coalesce(raw(bal.OtherCurrentAssets)), fb.OtherAssets),
		TotalCurrentLiabilities: model.ValueOr(model.Coalesce(raw(bal.TotalCurrentLiabilities)), fb.TotalCurrentLiabilities),
		BookEquity:              model.ValueOr(model.Coalesce(raw(bal.TotalStockholderEquity)), fb.BookEquity),
		Provenance:              model.Live(model.SourceYahoo),
	}, nil
}
