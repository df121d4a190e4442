package ports

import (
	"context"
	"io"
)

// Download is an open archive transfer.
type Download struct {
	// Body streams the archive. The caller must close it.
	Body io.ReadCloser
	// Total is the advertised length when TotalKnown is set.
	Total      uint64
	TotalKnown bool
}

// Fetcher opens remote archives for streaming.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	// Fetch issues a GET for url and returns the response body once headers arrive.
	Fetch(ctx context.Context, url string) (*Download, error)
}
