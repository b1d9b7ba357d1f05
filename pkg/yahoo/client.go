// Package yahoo reads the Yahoo Finance quoteSummary endpoint.
package yahoo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://query2.finance.yahoo.com"
	defaultSeedURL = "https://fc.yahoo.com"
	crumbTTL       = time.Hour
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// quoteSummary module names.
const (
	ModulePrice                  = "price"
	ModuleFinancialData          = "financialData"
	ModuleDefaultKeyStatistics   = "defaultKeyStatistics"
	ModuleIncomeStatementHistory = "incomeStatementHistory"
	ModuleBalanceSheetHistory    = "balanceSheetHistory"
)

// ErrUnauthorized is returned when the crumb was rejected.
var ErrUnauthorized = eris.New("yahoo: unauthorized")

// Client reads quoteSummary modules for a ticker.
type Client interface {
	QuoteSummary(ctx context.Context, ticker string, modules ...string) (*Summary, error)
}

// Value is Yahoo's {raw, fmt} number pair. Raw is nil when absent.
type Value struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// Float returns the raw value and whether it was present.
func (v *Value) Float() (float64, bool) {
	if v == nil || v.Raw == nil {
		return 0, false
	}
	return *v.Raw, true
}

// Price is the price module.
type Price struct {
	LongName           string `json:"longName"`
	ShortName          string `json:"shortName"`
	RegularMarketPrice *Value `json:"regularMarketPrice"`
	MarketCap          *Value `json:"marketCap"`
}

// FinancialData is the financialData module.
type FinancialData struct {
	CurrentPrice *Value `json:"currentPrice"`
}

// KeyStatistics is the defaultKeyStatistics module.
type KeyStatistics struct {
	SharesOutstanding *Value `json:"sharesOutstanding"`
}

// IncomeStatement is one annual statement from incomeStatementHistory.
type IncomeStatement struct {
	EndDate                      *Value `json:"endDate"`
	TotalRevenue                 *Value `json:"totalRevenue"`
	CostOfRevenue                *Value `json:"costOfRevenue"`
	ResearchDevelopment          *Value `json:"researchDevelopment"`
	SellingGeneralAdministrative *Value `json:"sellingGeneralAdministrative"`
	OperatingIncome              *Value `json:"operatingIncome"`
	EBIT                         *Value `json:"ebit"`
	IncomeBeforeTax              *Value `json:"incomeBeforeTax"`
	IncomeTaxExpense             *Value `json:"incomeTaxExpense"`
}

// BalanceSheet is one annual statement from balanceSheetHistory.
type BalanceSheet struct {
	EndDate                 *Value `json:"endDate"`
	Cash                    *Value `json:"cash"`
	NetReceivables          *Value `json:"netReceivables"`
	PropertyPlantEquipment  *Value `json:"propertyPlantEquipment"`
	OtherCurrentAssets      *Value `json:"otherCurrentAssets"`
	TotalCurrentLiabilities *Value `json:"totalCurrentLiabilities"`
	TotalStockholderEquity  *Value `json:"totalStockholderEquity"`
	ShortLongTermDebt       *Value `json:"shortLongTermDebt"`
	LongTermDebt            *Value `json:"longTermDebt"`
}

// Summary holds the modules returned for one ticker. Modules that were not
// requested or not returned are nil.
type Summary struct {
	Price                  *Price         `json:"price"`
	FinancialData          *FinancialData `json:"financialData"`
	DefaultKeyStatistics   *KeyStatistics `json:"defaultKeyStatistics"`
	IncomeStatementHistory *struct {
		Statements []IncomeStatement `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	BalanceSheetHistory *struct {
		Statements []BalanceSheet `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
}

// IncomeStatements returns the annual income statements, most recent first.
func (s *Summary) IncomeStatements() []IncomeStatement {
	if s.IncomeStatementHistory == nil {
		return nil
	}
	return s.IncomeStatementHistory.Statements
}

// BalanceSheets returns the annual balance sheets, most recent first.
func (s *Summary) BalanceSheets() []BalanceSheet {
	if s.BalanceSheetHistory == nil {
		return nil
	}
	return s.BalanceSheetHistory.Statements
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithSeedURL overrides the page visited to obtain session cookies.
func WithSeedURL(u string) Option {
	return func(c *httpClient) {
		c.seedURL = u
	}
}

// WithTimeout sets the per-request timeout of the client's http.Client,
// keeping its cookie jar.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient overrides the default http.Client. It should carry a
// cookie jar for the crumb handshake to work.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	seedURL string
	http    *http.Client

	crumbMu  sync.Mutex
	crumb    string
	crumbExp time.Time
}

// NewClient creates a Yahoo Finance client with its own cookie jar.
func NewClient(opts ...Option) Client {
	jar, _ := cookiejar.New(nil)
	c := &httpClient{
		baseURL: defaultBaseURL,
		seedURL: defaultSeedURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// QuoteSummary fetches the named modules. A rejected crumb is refreshed and
// the request retried once.
func (c *httpClient) QuoteSummary(ctx context.Context, ticker string, modules ...string) (*Summary, error) {
	s, err := c.fetchSummary(ctx, ticker, modules)
	if eris.Is(err, ErrUnauthorized) {
		zap.L().Debug("yahoo: crumb rejected, refreshing", zap.String("ticker", ticker))
		c.resetCrumb()
		s, err = c.fetchSummary(ctx, ticker, modules)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *httpClient) fetchSummary(ctx context.Context, ticker string, modules []string) (*Summary, error) {
	crumb, err := c.getCrumb(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "yahoo: obtain crumb")
	}

	q := url.Values{}
	q.Set("modules", strings.Join(modules, ","))
	q.Set("crumb", crumb)
	u := c.baseURL + "/v10/finance/quoteSummary/" + url.PathEscape(ticker) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "yahoo: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "yahoo: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "yahoo: read response")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, eris.Wrapf(ErrUnauthorized, "yahoo: quote summary %s", ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("yahoo: unexpected status %d for %s", resp.StatusCode, ticker)
	}

	return parseSummary(ticker, body)
}

func parseSummary(ticker string, body []byte) (*Summary, error) {
	var raw struct {
		QuoteSummary struct {
			Result []Summary `json:"result"`
			Error  *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"quoteSummary"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(err, "yahoo: unmarshal response")
	}
	if e := raw.QuoteSummary.Error; e != nil {
		return nil, eris.Errorf("yahoo: %s: %s", e.Code, e.Description)
	}
	if len(raw.QuoteSummary.Result) == 0 {
		return nil, eris.Errorf("yahoo: no results for %s", ticker)
	}
	return &raw.QuoteSummary.Result[0], nil
}

// getCrumb returns a cached crumb or performs the cookie and crumb
// handshake.
func (c *httpClient) getCrumb(ctx context.Context) (string, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()

	if c.crumb != "" && time.Now().Before(c.crumbExp) {
		return c.crumb, nil
	}

	seedReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.seedURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "create seed request")
	}
	seedReq.Header.Set("User-Agent", userAgent)
	seedResp, err := c.http.Do(seedReq)
	if err != nil {
		return "", eris.Wrap(err, "seed request")
	}
	// Only the cookies matter; the seed page usually answers 404.
	_ = seedResp.Body.Close()

	crumbReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return "", eris.Wrap(err, "create crumb request")
	}
	crumbReq.Header.Set("User-Agent", userAgent)
	crumbResp, err := c.http.Do(crumbReq)
	if err != nil {
		return "", eris.Wrap(err, "crumb request")
	}
	defer crumbResp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(crumbResp.Body)
	if err != nil {
		return "", eris.Wrap(err, "read crumb")
	}
	if crumbResp.StatusCode != http.StatusOK {
		return "", eris.Errorf("crumb endpoint returned %d", crumbResp.StatusCode)
	}

	crumb := strings.TrimSpace(string(body))
	if crumb == "" {
		return "", eris.New("empty crumb returned")
	}
	c.crumb = crumb
	c.crumbExp = time.Now().Add(crumbTTL)
	return crumb, nil
}

func (c *httpClient) resetCrumb() {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()
	c.crumb = ""
	c.crumbExp = time.Time{}
}
