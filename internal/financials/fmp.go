package financials

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/epv-cli/internal/model"
	"github.com/sells-group/epv-cli/pkg/fmp"
)

// FMPSource maps Financial Modeling Prep statements to a FinancialRecord.
type FMPSource struct {
	client fmp.Client
}

// NewFMPSource creates the primary financials source.
func NewFMPSource(c fmp.Client) *FMPSource {
	return &FMPSource{client: c}
}

// Name implements cascade.Source.
func (s *FMPSource) Name() string { return model.SourceFMP }

// Fetch reads the two most recent income statements and the latest balance
// sheet.
func (s *FMPSource) Fetch(ctx context.Context, ticker string) (model.FinancialRecord, error) {
	incomes, err := s.client.IncomeStatements(ctx, ticker, 2)
	if err != nil {
		return model.FinancialRecord{}, eris.Wrap(err, "financials: fmp income statements")
	}
	sheets, err := s.client.BalanceSheets(ctx, ticker, 1)
	if err != nil {
		return model.FinancialRecord{}, eris.Wrap(err, "financials: fmp balance sheet")
	}
	if len(incomes) == 0 || len(sheets) == 0 {
		return model.FinancialRecord{}, eris.Wrapf(fmp.ErrNoData, "financials: fmp statements for %s", ticker)
	}

	var prev *fmp.IncomeStatement
	if len(incomes) > 1 {
		prev = &incomes[1]
	}
	return mapFMP(ticker, &incomes[0], prev, &sheets[0])
}

func mapFMP(ticker string, inc, prev *fmp.IncomeStatement, bal *fmp.BalanceSheet) (model.FinancialRecord, error) {
	revenue := inc.Revenue
	ebit := model.Coalesce(inc.OperatingIncome, inc.EBIT)
	if revenue == nil || ebit == nil {
		return model.FinancialRecord{}, eris.Errorf("financials: fmp missing core income statement fields for %s", ticker)
	}

	var prevRev *float64
	if prev != nil {
		prevRev = prev.Revenue
	}

	debt := bal.TotalDebt
	if debt == nil {
		total := model.ValueOr(bal.ShortTermDebt, 0) + model.ValueOr(bal.LongTermDebt, 0)
		debt = &total
	}

	return model.FinancialRecord{
		Ticker:      ticker,
		Revenue:     *revenue,
		PrevRevenue: prevRevenue(prevRev, *revenue),
		COGS:        model.ValueOr(inc.CostOfRevenue, 0),
		EBIT:        *ebit,
		SGA: model.ValueOr(model.Coalesce(
			inc.SellingGeneralAndAdministrativeExpenses,
			inc.SellingAndMarketingExpenses,
		), 0),
		RND:     model.ValueOr(inc.ResearchAndDevelopmentExpenses, 0),
		TaxRate: effectiveTaxRate(inc.IncomeTaxExpense, inc.IncomeBeforeTax),
		SharesOutstanding: model.ValueOr(model.Coalesce(
			inc.WeightedAverageShsOutDil,
			inc.WeightedAverageShsOut,
		), defaultSharesOutstanding),
		Cash:                    model.ValueOr(model.Coalesce(bal.CashAndCashEquivalents, bal.CashAndShortTermInvestments), 0),
		Debt:                    *debt,
		AccountsReceivable:      model.ValueOr(model.Coalesce(bal.NetReceivables, bal.AccountsReceivables), 0),
		PPE:                     model.ValueOr(model.Coalesce(bal.PropertyPlantEquipmentNet), 0),
		OtherAssets:             model.ValueOr(model.Coalesce(bal.OtherCurrentAssets, bal.OtherAssets), 0),
		TotalCurrentLiabilities: model.ValueOr(model.Coalesce(bal.TotalCurrentLiabilities), 0),
		BookEquity:              model.ValueOr(model.Coalesce(bal.TotalStockholdersEquity), 0),
		Provenance:              model.Live(model.SourceFMP),
	}, nil
}
