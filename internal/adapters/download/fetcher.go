// Package download implements ports.Fetcher over HTTP.
package download

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// headerTimeout bounds the wait for response headers.
	headerTimeout = 30 * time.Second
	// idleTimeout bounds the gap between two body reads that deliver data.
	// The body has no overall deadline.
	idleTimeout = 60 * time.Second
	userAgent   = "hangar"
)

// Fetcher implements ports.Fetcher with net/http.
type Fetcher struct {
	httpClient *http.Client
	idle       time.Duration
}

// NewFetcher creates a Fetcher with header and idle timeouts and no overall deadline.
func NewFetcher() *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // stdlib default
	transport.ResponseHeaderTimeout = headerTimeout

	return newFetcherWithClient(&http.Client{Transport: transport}, idleTimeout)
}

// newFetcherWithClient creates a Fetcher with a custom http client and idle timeout.
func newFetcherWithClient(client *http.Client, idle time.Duration) *Fetcher {
	return &Fetcher{httpClient: client, idle: idle}
}

// Fetch issues a GET for url and hands the open body to the caller.
// A body that delivers nothing for the idle timeout fails with ErrDownloadStalled.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*ports.Download, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		cancel()
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrDownloadFailed, err), "request"), "url", url)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrDownloadFailed, err), "request"), "url", url)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close()
		cancel()
		statusErr := zerr.With(zerr.Wrap(domain.ErrUnexpectedStatus, resp.Status), "status_code", resp.StatusCode)
		return nil, zerr.With(statusErr, "url", url)
	}

	dl := &ports.Download{Body: newIdleBody(resp.Body, f.idle, cancel, url)}
	if resp.ContentLength >= 0 {
		dl.Total = uint64(resp.ContentLength)
		dl.TotalKnown = true
	}
	return dl, nil
}

var _ ports.Fetcher = (*Fetcher)(nil)

// idleBody cancels its request when no read delivered data for the idle timeout.
type idleBody struct {
	body   io.ReadCloser
	cancel context.CancelFunc
	url    string

	idle  time.Duration
	timer *time.Timer

	mu      sync.Mutex
	stalled bool
}

func newIdleBody(body io.ReadCloser, idle time.Duration, cancel context.CancelFunc, url string) *idleBody {
	b := &idleBody{body: body, cancel: cancel, url: url, idle: idle}
	if idle > 0 {
		b.timer = time.AfterFunc(idle, b.expire)
	}
	return b
}

func (b *idleBody) expire() {
	b.mu.Lock()
	b.stalled = true
	b.mu.Unlock()
	b.cancel()
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if n > 0 && b.timer != nil {
		b.timer.Reset(b.idle)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		b.mu.Lock()
		stalled := b.stalled
		b.mu.Unlock()
		if stalled {
			err = zerr.With(zerr.Wrap(errors.Join(domain.ErrDownloadStalled, err), "read"), "url", b.url)
		}
	}
	return n, err
}

func (b *idleBody) Close() error {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.cancel()
	return b.body.Close()
}
