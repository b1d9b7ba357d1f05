package fmp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, path string, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIncomeStatements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/income-statement/DDOG", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[
			{"date":"2024-12-31","revenue":2684000000,"sellingGeneralAndAdministrativeExpenses":1100000000,
			 "researchAndDevelopmentExpenses":1200000000,"operatingIncome":50000000,"incomeTaxExpense":null},
			{"date":"2023-12-31","revenue":2128000000}
		]`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	stmts, err := c.IncomeStatements(context.Background(), "DDOG", 2)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	require.NotNil(t, stmts[0].Revenue)
	assert.InDelta(t, 2684000000.0, *stmts[0].Revenue, 1)
	assert.Nil(t, stmts[0].IncomeTaxExpense)
	assert.Nil(t, stmts[0].EBIT)
	require.NotNil(t, stmts[1].Revenue)
	assert.InDelta(t, 2128000000.0, *stmts[1].Revenue, 1)
}

func TestIncomeStatements_Empty(t *testing.T) {
	srv := newTestServer(t, "/api/v3/income-statement/NOPE", http.StatusOK, `[]`)

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.IncomeStatements(context.Background(), "NOPE", 2)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoData))
}

func TestBalanceSheets(t *testing.T) {
	srv := newTestServer(t, "/api/v3/balance-sheet-statement/DDOG", http.StatusOK,
		`[{"cashAndCashEquivalents":500,"netReceivables":200,"totalDebt":null,"shortTermDebt":10,"longTermDebt":90}]`)

	c := NewClient("test-key", WithBaseURL(srv.URL))
	sheets, err := c.BalanceSheets(context.Background(), "DDOG", 1)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Nil(t, sheets[0].TotalDebt)
	require.NotNil(t, sheets[0].LongTermDebt)
	assert.InDelta(t, 90.0, *sheets[0].LongTermDebt, 1e-9)
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  string
		wantName string
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			body:     `[{"symbol":"DDOG","name":"Datadog, Inc.","price":120.5,"marketCap":41000000000}]`,
			wantName: "Datadog, Inc.",
		},
		{
			name:    "empty",
			status:  http.StatusOK,
			body:    `[]`,
			wantErr: "no data",
		},
		{
			name:    "invalid key",
			status:  http.StatusOK,
			body:    `{"Error Message":"Invalid API KEY."}`,
			wantErr: "Invalid API KEY",
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantErr: "unexpected status 500",
		},
		{
			name:    "malformed",
			status:  http.StatusOK,
			body:    `[{`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, "/api/v3/quote/DDOG", tt.status, tt.body)
			c := NewClient("test-key", WithBaseURL(srv.URL))

			q, err := c.Quote(context.Background(), "DDOG")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, q.Name)
			require.NotNil(t, q.Price)
			assert.InDelta(t, 120.5, *q.Price, 1e-9)
		})
	}
}

func TestWithHTTPClient(t *testing.T) {
	hc := &http.Client{}
	c := NewClient("k", WithHTTPClient(hc)).(*httpClient)
	assert.Same(t, hc, c.http)
	assert.Equal(t, defaultBaseURL, c.baseURL)
}
