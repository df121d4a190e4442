package ports

import "context"

// Extractor unpacks a downloaded archive into a build directory.
//
//go:generate mockgen -source=extractor.go -destination=mocks/mock_extractor.go -package=mocks
type Extractor interface {
	// Extract writes every entry of archive below dest.
	Extract(ctx context.Context, archive, dest string) error
}
