package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
	})
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("hello world")) //nolint:errcheck
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Download(context.Background(), srv.URL+"/data")
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestGet_CustomHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{}`)) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Headers: map[string]string{"Accept": "application/json"}})
	data, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func statusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func TestGet_NonOKIsSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.Get(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
	assert.Contains(t, err.Error(), "404")
}

func TestGet_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late")) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Timeout: 20 * time.Millisecond})
	_, err := f.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, 0, statusOf(err))
}

func TestNewHTTPFetcher_Defaults(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{})
	assert.Equal(t, 10*time.Second, f.opts.Timeout)
	assert.Equal(t, "epv-cli/1.0", f.opts.UserAgent)
}

func TestLimiterFor(t *testing.T) {
	custom := rate.NewLimiter(1, 1)
	f := NewHTTPFetcher(HTTPOptions{
		RateLimiters: map[string]*rate.Limiter{"example.com": custom},
	})

	assert.Same(t, custom, f.limiterFor("https://example.com/path"))

	other := f.limiterFor("https://other.example.org/a")
	assert.Same(t, other, f.limiterFor("https://other.example.org/b"))
	assert.Equal(t, rate.Limit(20), other.Limit())
}

func TestLimiterFor_SharedAcrossHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	lim := rate.NewLimiter(rate.Inf, 1)
	f := NewHTTPFetcher(HTTPOptions{RateLimiters: map[string]*rate.Limiter{u.Host: lim}})
	_, err = f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Same(t, lim, f.limiterFor(srv.URL))
}

func TestDefaultRateLimiters(t *testing.T) {
	lims := DefaultRateLimiters()
	for _, host := range []string{"www.sec.gov", "data.sec.gov"} {
		require.Contains(t, lims, host)
		assert.Equal(t, rate.Limit(10), lims[host].Limit())
	}
}
