package ports

import (
	"context"

	"go.trai.ch/tomobench/internal/core/domain"
)

// Leaser grants per-key mutual exclusion across processes sharing an operator store.
//
//go:generate mockgen -source=lease.go -destination=mocks/mock_lease.go -package=mocks
type Leaser interface {
	// Acquire blocks until the lease for key is held or ctx is done.
	Acquire(ctx context.Context, key domain.CacheKey) (Lease, error)

	// Close releases connections held by the leaser. Outstanding leases stay valid
	// until released or expired.
	Close() error
}

// Lease is a held per-key lock.
type Lease interface {
	// Release gives the lease up. It is safe to call more than once.
	Release() error
}
