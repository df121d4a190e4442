package serverlist

import (
	"net/http"
	"time"

	"go.trai.ch/hangar/internal/core/ports"
)

// NewPollerWithClient exports newPollerWithClient for tests.
func NewPollerWithClient(
	url string,
	interval time.Duration,
	dir ports.ServerDirectory,
	logger ports.Logger,
	client *http.Client,
) *Poller {
	return newPollerWithClient(url, interval, dir, logger, client)
}
