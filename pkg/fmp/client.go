// Package fmp is a minimal client for the Financial Modeling Prep API.
package fmp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://financialmodelingprep.com"

// ErrNoData is returned when the API answers with an empty result set.
var ErrNoData = eris.New("fmp: no data")

// Client reads statements and quotes for a ticker.
type Client interface {
	IncomeStatements(ctx context.Context, ticker string, limit int) ([]IncomeStatement, error)
	BalanceSheets(ctx context.Context, ticker string, limit int) ([]BalanceSheet, error)
	Quote(ctx context.Context, ticker string) (*Quote, error)
}

// IncomeStatement is one annual income statement, most recent first.
// Numeric fields are nil when the API omits them or returns null.
type IncomeStatement struct {
	Date                                    string   `json:"date"`
	Revenue                                 *float64 `json:"revenue"`
	CostOfRevenue                           *float64 `json:"costOfRevenue"`
	ResearchAndDevelopmentExpenses          *float64 `json:"researchAndDevelopmentExpenses"`
	SellingGeneralAndAdministrativeExpenses *float64 `json:"sellingGeneralAndAdministrativeExpenses"`
	SellingAndMarketingExpenses             *float64 `json:"sellingAndMarketingExpenses"`
	OperatingIncome                         *float64 `json:"operatingIncome"`
	EBIT                                    *float64 `json:"ebit"`
	IncomeBeforeTax                         *float64 `json:"incomeBeforeTax"`
	IncomeTaxExpense                        *float64 `json:"incomeTaxExpense"`
	WeightedAverageShsOutDil                *float64 `json:"weightedAverageShsOutDil"`
	WeightedAverageShsOut                   *float64 `json:"weightedAverageShsOut"`
}

// BalanceSheet is one annual balance sheet, most recent first.
type BalanceSheet struct {
	Date                        string   `json:"date"`
	CashAndCashEquivalents      *float64 `json:"cashAndCashEquivalents"`
	CashAndShortTermInvestments *float64 `json:"cashAndShortTermInvestments"`
	NetReceivables              *float64 `json:"netReceivables"`
	AccountsReceivables         *float64 `json:"accountsReceivables"`
	PropertyPlantEquipmentNet   *float64 `json:"propertyPlantEquipmentNet"`
	OtherCurrentAssets          *float64 `json:"otherCurrentAssets"`
	OtherAssets                 *float64 `json:"otherAssets"`
	TotalCurrentLiabilities     *float64 `json:"totalCurrentLiabilities"`
	TotalStockholdersEquity     *float64 `json:"totalStockholdersEquity"`
	TotalDebt                   *float64 `json:"totalDebt"`
	ShortTermDebt               *float64 `json:"shortTermDebt"`
	LongTermDebt                *float64 `json:"longTermDebt"`
}

// Quote is a real-time quote.
type Quote struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Price     *float64 `json:"price"`
	MarketCap *float64 `json:"marketCap"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an FMP API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) IncomeStatements(ctx context.Context, ticker string, limit int) ([]IncomeStatement, error) {
	var out []IncomeStatement
	if err := c.get(ctx, "/api/v3/income-statement/"+url.PathEscape(ticker), limit, &out); err != nil {
		return nil, eris.Wrap(err, "fmp: income statement")
	}
	if len(out) == 0 {
		return nil, eris.Wrapf(ErrNoData, "fmp: income statement for %s", ticker)
	}
	return out, nil
}

func (c *httpClient) BalanceSheets(ctx context.Context, ticker string, limit int) ([]BalanceSheet, error) {
	var out []BalanceSheet
	if err := c.get(ctx, "/api/v3/balance-sheet-statement/"+url.PathEscape(ticker), limit, &out); err != nil {
		return nil, eris.Wrap(err, "fmp: balance sheet")
	}
	if len(out) == 0 {
		return nil, eris.Wrapf(ErrNoData, "fmp: balance sheet for %s", ticker)
	}
	return out, nil
}

func (c *httpClient) Quote(ctx context.Context, ticker string) (*Quote, error) {
	var out []Quote
	if err := c.get(ctx, "/api/v3/quote/"+url.PathEscape(ticker), 0, &out); err != nil {
		return nil, eris.Wrap(err, "fmp: quote")
	}
	if len(out) == 0 {
		return nil, eris.Wrapf(ErrNoData, "fmp: quote for %s", ticker)
	}
	return &out[0], nil
}

func (c *httpClient) get(ctx context.Context, path string, limit int, out any) error {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	// Errors such as an invalid key arrive as a 200 with an object body.
	var apiErr struct {
		Message string `json:"Error Message"`
	}
	if len(body) > 0 && body[0] == '{' && json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return eris.Errorf("api error: %s", apiErr.Message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
