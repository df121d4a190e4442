// Package serverlist tracks known game servers and the versions they require.
package serverlist

import (
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
)

// Directory is a ports.ServerDirectory whose entries expire ttl after they were last observed.
// Expired entries are purged on read; no janitor goroutine runs.
type Directory struct {
	cache *gocache.Cache
}

// NewDirectory creates a Directory with the given entry lifetime.
func NewDirectory(ttl time.Duration) *Directory {
	return &Directory{cache: gocache.New(ttl, 0)}
}

// Observe records that server advertises version, resetting its expiry.
func (d *Directory) Observe(server string, version domain.Version) {
	d.cache.SetDefault(server, version)
}

// Pin records a server that never expires, such as a configured seed.
func (d *Directory) Pin(server string, version domain.Version) {
	d.cache.Set(server, version, gocache.NoExpiration)
}

// Len returns the number of live servers.
func (d *Directory) Len() int {
	d.cache.DeleteExpired()
	return d.cache.ItemCount()
}

// Versions returns one entry per advertised version in display order.
// When servers disagree on the source of a version, the most relevant one wins.
func (d *Directory) Versions() []domain.Version {
	d.cache.DeleteExpired()

	best := make(map[domain.VersionKey]domain.Version)
	for _, item := range d.cache.Items() {
		v, ok := item.Object.(domain.Version)
		if !ok {
			continue
		}
		cur, seen := best[v.Key()]
		if !seen || v.Compare(cur) < 0 {
			best[v.Key()] = v
		}
	}

	out := make([]domain.Version, 0, len(best))
	for _, v := range best {
		out = append(out, v)
	}
	slices.SortFunc(out, domain.Version.Compare)
	return out
}

// Addresses returns the live servers advertising key, sorted.
func (d *Directory) Addresses(key domain.VersionKey) []string {
	d.cache.DeleteExpired()

	var out []string
	for server, item := range d.cache.Items() {
		if v, ok := item.Object.(domain.Version); ok && v.Key() == key {
			out = append(out, server)
		}
	}
	slices.Sort(out)
	return out
}

var _ ports.ServerDirectory = (*Directory)(nil)
