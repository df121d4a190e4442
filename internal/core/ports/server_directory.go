package ports

import "go.trai.ch/hangar/internal/core/domain"

// ServerDirectory holds the servers currently known to the launcher.
//
//go:generate mockgen -source=server_directory.go -destination=mocks/mock_server_directory.go -package=mocks
type ServerDirectory interface {
	// Observe records that server advertises version.
	Observe(server string, version domain.Version)
	// Versions returns one entry per distinct version advertised by a known server.
	Versions() []domain.Version
	// Addresses returns the known servers advertising the version, sorted.
	Addresses(key domain.VersionKey) []string
}
