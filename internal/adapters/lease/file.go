// Package lease provides per-key mutual exclusion for precompute, backed by
// advisory file locks or by Redis.
package lease

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rogpeppe/go-internal/lockedfile"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
)

// FileLeaser locks {root}/.locks/{key}.lock. It serializes processes on one
// host and on shared volumes whose filesystem honours flock.
type FileLeaser struct {
	root string
}

var _ ports.Leaser = (*FileLeaser)(nil)

// NewFileLeaser creates a FileLeaser under the given cache root.
func NewFileLeaser(root string) *FileLeaser {
	return &FileLeaser{root: root}
}

type lockResult struct {
	unlock func()
	err    error
}

// Acquire blocks until the lock for key is held or ctx is done.
func (l *FileLeaser) Acquire(ctx context.Context, key domain.CacheKey) (ports.Lease, error) {
	path := domain.LockPath(l.root, key)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrLeaseFailed, err), "failed to create lock directory"),
			"path", filepath.Dir(path))
	}
	if err := ctx.Err(); err != nil {
		return nil, waitAborted(key, err)
	}

	done := make(chan lockResult, 1)
	go func() {
		unlock, err := lockedfile.MutexAt(path).Lock()
		done <- lockResult{unlock: unlock, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrLeaseFailed, r.err), "failed to lock"), "path", path)
		}
		return &fileLease{unlock: r.unlock}, nil
	case <-ctx.Done():
		// The flock call cannot be interrupted; hand the lock back once it arrives.
		go func() {
			if r := <-done; r.err == nil {
				r.unlock()
			}
		}()
		return nil, waitAborted(key, ctx.Err())
	}
}

// Close is a no-op; file leases hold no shared connection.
func (l *FileLeaser) Close() error {
	return nil
}

type fileLease struct {
	once   sync.Once
	unlock func()
}

func (f *fileLease) Release() error {
	f.once.Do(f.unlock)
	return nil
}

// waitAborted reports the caller's context error. Deciding whether an expired
// wait counts as a lease timeout is left to the caller that set the deadline.
func waitAborted(key domain.CacheKey, cause error) error {
	return zerr.With(zerr.Wrap(cause, "gave up waiting for lease"), "key", key.String())
}
