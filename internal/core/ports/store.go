package ports

import (
	"context"

	"go.trai.ch/tomobench/internal/core/domain"
)

// OperatorStore is the persistent, append-only operator cache shared across invocations.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type OperatorStore interface {
	// Exists reports whether a complete, well-formed entry is published for key.
	Exists(ctx context.Context, key domain.CacheKey) (bool, error)

	// Fetch copies the entry's artifacts into dstDir under their working names.
	// It fails with domain.ErrCacheMiss when the entry is absent or incomplete.
	Fetch(ctx context.Context, key domain.CacheKey, dstDir string) (domain.ArtifactSet, error)

	// Commit publishes src under key. Readers never observe a partial entry.
	// Committing a key that is already published leaves the existing entry untouched.
	Commit(ctx context.Context, key domain.CacheKey, geometry domain.Geometry, src domain.ArtifactSet) error

	// List returns every published entry.
	List(ctx context.Context) ([]domain.CacheEntry, error)
}
