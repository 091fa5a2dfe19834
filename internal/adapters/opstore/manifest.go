// Package opstore implements the persistent operator cache on a shared
// filesystem and on S3.
package opstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// checksum formats an xxhash64 digest the way manifests record it.
func checksum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}

// hashFile returns the size and xxhash64 of a file.
func hashFile(path string) (int64, string, error) {
	f, err := os.Open(path) //nolint:gosec // path is inside a staging or scratch dir we own
	if err != nil {
		return 0, "", zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to open artifact"), "path", path)
	}
	defer f.Close() //nolint:errcheck // read-only

	h := xxhash.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to hash artifact"), "path", path)
	}
	return n, checksum(h.Sum64()), nil
}

// buildManifest hashes every artifact of src concurrently.
func buildManifest(
	ctx context.Context,
	key domain.CacheKey,
	geometry domain.Geometry,
	src domain.ArtifactSet,
	now time.Time,
) (*domain.CacheEntry, error) {
	records := make([]domain.ArtifactRecord, len(domain.ArtifactKinds))

	g, _ := errgroup.WithContext(ctx)
	for i, kind := range domain.ArtifactKinds {
		g.Go(func() error {
			size, sum, err := hashFile(src.Path(kind))
			if err != nil {
				return err
			}
			records[i] = domain.ArtifactRecord{Kind: kind, File: kind.FileName(), Size: size, Checksum: sum}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.CacheEntry{
		Version:   domain.ManifestVersion,
		Key:       key,
		Geometry:  geometry,
		CreatedAt: now.UTC(),
		Artifacts: records,
	}, nil
}

func encodeManifest(entry *domain.CacheEntry) ([]byte, error) {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to marshal manifest")
	}
	return append(data, '\n'), nil
}

// decodeManifest parses and validates a manifest for key.
func decodeManifest(key domain.CacheKey, data []byte) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrManifestInvalid, err), "failed to decode manifest"),
			"key", key.String())
	}
	if err := entry.Validate(key); err != nil {
		return nil, err
	}
	return &entry, nil
}

// verifiedCopy streams r into dst through a temp file in the same directory,
// checking size and checksum against rec before renaming into place.
// A mismatch leaves nothing behind.
func verifiedCopy(r io.Reader, dst string, rec domain.ArtifactRecord) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".fetch-*")
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to create temp file")
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	h := xxhash.New()
	n, copyErr := io.Copy(io.MultiWriter(tmp, h), r)
	closeErr := tmp.Close()
	if copyErr != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, copyErr), "failed to copy artifact"), "kind", string(rec.Kind))
	}
	if closeErr != nil {
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, closeErr), "failed to close artifact")
	}

	if sum := checksum(h.Sum64()); n != rec.Size || sum != rec.Checksum {
		err := zerr.Wrap(errors.Join(domain.ErrCacheCorrupt, domain.ErrCacheMiss), "artifact does not match manifest")
		err = zerr.With(err, "kind", string(rec.Kind))
		err = zerr.With(err, "want", rec.Checksum)
		return zerr.With(err, "got", sum)
	}

	if err := os.Chmod(tmpPath, domain.FilePerm); err != nil {
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to set artifact permissions")
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to place artifact")
	}
	return nil
}
