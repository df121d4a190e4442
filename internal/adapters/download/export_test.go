package download

import (
	"net/http"
	"time"
)

// NewFetcherWithClient exports newFetcherWithClient for tests.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return newFetcherWithClient(client, idleTimeout)
}

// NewFetcherWithIdleTimeout creates a Fetcher on the default client that gives up on a silent body after idle.
func NewFetcherWithIdleTimeout(idle time.Duration) *Fetcher {
	return newFetcherWithClient(&http.Client{}, idle)
}
