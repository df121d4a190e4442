package serverlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	httpClientTimeout = 10 * time.Second
	// maxListBytes bounds the server list payload.
	maxListBytes = 4 << 20
)

// Entry is one server in the remote list.
type Entry struct {
	Address  string `json:"address"`
	Fork     string `json:"fork"`
	Build    string `json:"build"`
	Download string `json:"download"`
}

// Poller periodically fetches the server list into a Directory.
type Poller struct {
	url        string
	interval   time.Duration
	dir        ports.ServerDirectory
	logger     ports.Logger
	httpClient *http.Client
}

// NewPoller creates a Poller for url.
func NewPoller(url string, interval time.Duration, dir ports.ServerDirectory, logger ports.Logger) *Poller {
	return newPollerWithClient(url, interval, dir, logger, &http.Client{Timeout: httpClientTimeout})
}

func newPollerWithClient(
	url string,
	interval time.Duration,
	dir ports.ServerDirectory,
	logger ports.Logger,
	client *http.Client,
) *Poller {
	return &Poller{url: url, interval: interval, dir: dir, logger: logger, httpClient: client}
}

// Run polls immediately and then every interval until ctx ends.
// After each successful poll onObserve is called. Failures are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context, onObserve func(context.Context)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Warn(fmt.Sprintf("server list: %v", err))
		} else if onObserve != nil {
			onObserve(ctx)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll fetches the list once and records every valid entry. It returns the number recorded.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	entries, err := p.fetch(ctx)
	if err != nil {
		return 0, err
	}

	recorded := 0
	for _, e := range entries {
		address := strings.TrimSpace(e.Address)
		v := domain.NewVersion(e.Fork, e.Build, e.Download)
		if address == "" {
			continue
		}
		if err := v.Validate(); err != nil {
			p.logger.Warn(fmt.Sprintf("server list: ignoring %s: %v", address, err))
			continue
		}
		p.dir.Observe(address, v)
		recorded++
	}
	return recorded, nil
}

func (p *Poller) fetch(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrServerListFetchFailed, err), "poll"), "url", p.url)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrServerListFetchFailed, err), "poll"), "url", p.url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		statusErr := zerr.With(zerr.Wrap(domain.ErrServerListFetchFailed, resp.Status), "status_code", resp.StatusCode)
		return nil, zerr.With(statusErr, "url", p.url)
	}

	var entries []Entry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxListBytes)).Decode(&entries); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrServerListDecodeFailed, err), "poll"), "url", p.url)
	}
	return entries, nil
}
