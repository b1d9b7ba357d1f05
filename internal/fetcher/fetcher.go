// Package fetcher provides rate-limited HTTP access to upstream documents.
package fetcher

import (
	"context"
	"io"
)

// Getter fetches a URL and returns the full response body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	Getter

	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
