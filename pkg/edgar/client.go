// Package edgar reads company filings from SEC EDGAR.
package edgar

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Default SEC endpoints.
const (
	DefaultTickersURL  = "https://www.sec.gov/files/company_tickers.json"
	DefaultDataURL     = "https://data.sec.gov"
	DefaultArchivesURL = "https://www.sec.gov"

	// DefaultUserAgent identifies the caller as SEC fair-access policy requires.
	DefaultUserAgent = "SaaS EPV Analyzer (research contact: engineering@example.com)"

	// FormAnnualReport is the annual report form type.
	FormAnnualReport = "10-K"
)

// ErrNoFiling is returned when the filer has no recent filing of the form.
var ErrNoFiling = eris.New("edgar: no matching filing")

// Getter fetches a URL body. internal/fetcher's HTTP and cached fetchers
// satisfy it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Filing identifies one filing's primary document.
type Filing struct {
	CIK             int64  `json:"cik"`
	Form            string `json:"form"`
	AccessionNumber string `json:"accession_number"`
	FilingDate      string `json:"filing_date"`
	PrimaryDocument string `json:"primary_document"`
}

type submissionsJSON struct {
	Name    string `json:"name"`
	Filings struct {
		Recent filingList `json:"recent"`
	} `json:"filings"`
}

type filingList struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDoc      []string `json:"primaryDocument"`
}

// Option configures the client.
type Option func(*Client)

// WithDataURL overrides the data.sec.gov base URL.
func WithDataURL(u string) Option {
	return func(c *Client) {
		c.dataURL = strings.TrimRight(u, "/")
	}
}

// WithArchivesURL overrides the www.sec.gov base URL used for documents.
func WithArchivesURL(u string) Option {
	return func(c *Client) {
		c.archivesURL = strings.TrimRight(u, "/")
	}
}

// Client reads submissions and documents through a Getter. The Getter owns
// the User-Agent header and rate limiting.
type Client struct {
	getter      Getter
	tickers     *TickerMap
	dataURL     string
	archivesURL string
}

// NewClient creates a client. The ticker map is shared and may be reused
// across clients.
func NewClient(getter Getter, tickers *TickerMap, opts ...Option) *Client {
	c := &Client{
		getter:      getter,
		tickers:     tickers,
		dataURL:     DefaultDataURL,
		archivesURL: DefaultArchivesURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// LookupCIK resolves a ticker to its filer.
func (c *Client) LookupCIK(ctx context.Context, ticker string) (Company, error) {
	return c.tickers.Lookup(ctx, ticker)
}

// LatestFiling returns the most recent filing of the given form
// (case-insensitive) from the filer's recent submissions.
func (c *Client) LatestFiling(ctx context.Context, cik int64, form string) (*Filing, error) {
	u := c.dataURL + "/submissions/CIK" + PadCIK(cik) + ".json"
	data, err := c.getter.Get(ctx, u)
	if err != nil {
		return nil, eris.Wrap(err, "edgar: fetch submissions")
	}

	var sub submissionsJSON
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, eris.Wrap(err, "edgar: decode submissions")
	}

	recent := sub.Filings.Recent
	for i, f := range recent.Form {
		if !strings.EqualFold(f, form) {
			continue
		}
		if i >= len(recent.AccessionNumber) || i >= len(recent.PrimaryDoc) {
			return nil, eris.Errorf("edgar: truncated filing list for CIK %d", cik)
		}
		filing := &Filing{
			CIK:             cik,
			Form:            f,
			AccessionNumber: recent.AccessionNumber[i],
			PrimaryDocument: recent.PrimaryDoc[i],
		}
		if i < len(recent.FilingDate) {
			filing.FilingDate = recent.FilingDate[i]
		}
		return filing, nil
	}
	return nil, eris.Wrapf(ErrNoFiling, "edgar: %s for CIK %d", form, cik)
}

// DocumentURL builds the archive URL of a filing's primary document.
func (c *Client) DocumentURL(f *Filing) string {
	return c.archivesURL + "/Archives/edgar/data/" +
		strconv.FormatInt(f.CIK, 10) + "/" +
		strings.ReplaceAll(f.AccessionNumber, "-", "") + "/" +
		f.PrimaryDocument
}

// FetchDocument returns the raw primary document of a filing.
func (c *Client) FetchDocument(ctx context.Context, f *Filing) ([]byte, error) {
	data, err := c.getter.Get(ctx, c.DocumentURL(f))
	if err != nil {
		return nil, eris.Wrap(err, "edgar: fetch document")
	}
	return data, nil
}
