package financials

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/epv-cli/pkg/fmp"
	"github.com/sells-group/epv-cli/pkg/yahoo"
)

type mockFMP struct {
	mock.Mock
}

func (m *mockFMP) IncomeStatements(ctx context.Context, ticker string, limit int) ([]fmp.IncomeStatement, error) {
	args := m.Called(ctx, ticker, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fmp.IncomeStatement), args.Error(1)
}

func (m *mockFMP) BalanceSheets(ctx context.Context, ticker string, limit int) ([]fmp.BalanceSheet, error) {
	args := m.Called(ctx, ticker, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fmp.BalanceSheet), args.Error(1)
}

func (m *mockFMP) Quote(ctx context.Context, ticker string) (*fmp.Quote, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fmp.Quote), args.Error(1)
}

type mockYahoo struct {
	mock.Mock
}

func (m *mockYahoo) QuoteSummary(ctx context.Context, ticker string, modules ...string) (*yahoo.Summary, error) {
	args := m.Called(ctx, ticker, modules)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*yahoo.Summary), args.Error(1)
}

func f(v float64) *float64 { return &v }

func yv(v float64) *yahoo.Value { return &yahoo.Value{Raw: &v} }
