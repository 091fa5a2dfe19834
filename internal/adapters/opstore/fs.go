package opstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// FileStore keeps one directory per key under a root that may live on a shared volume.
// Entries are assembled in a staging directory and published with a single rename,
// so a key directory either does not exist or holds a complete entry.
type FileStore struct {
	root string
	now  func() time.Time
}

var _ ports.OperatorStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at root. The directory is created lazily.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root, now: time.Now}
}

// Root returns the cache root.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) entryDir(key domain.CacheKey) string {
	return filepath.Join(s.root, key.String())
}

// Exists reports whether a well-formed entry whose artifacts match their recorded
// checksums is published for key. A damaged entry reports false; Commit replaces it.
func (s *FileStore) Exists(ctx context.Context, key domain.CacheKey) (bool, error) {
	entry, err := s.readManifest(key)
	switch {
	case errors.Is(err, domain.ErrCacheMiss), errors.Is(err, domain.ErrManifestInvalid):
		return false, nil
	case err != nil:
		return false, err
	}

	set := domain.ArtifactSet{Dir: entry.Location}
	intact := make([]bool, len(entry.Artifacts))
	g, _ := errgroup.WithContext(ctx)
	for i, rec := range entry.Artifacts {
		g.Go(func() error {
			path := set.Path(rec.Kind)
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() || info.Size() != rec.Size {
				return nil
			}
			size, sum, err := hashFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return err
			}
			intact[i] = size == rec.Size && sum == rec.Checksum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, zerr.With(err, "key", key.String())
	}
	return !slices.Contains(intact, false), nil
}

// Fetch copies the entry into dstDir, verifying every artifact against the manifest.
func (s *FileStore) Fetch(ctx context.Context, key domain.CacheKey, dstDir string) (domain.ArtifactSet, error) {
	entry, err := s.readManifest(key)
	if err != nil {
		if errors.Is(err, domain.ErrManifestInvalid) {
			err = errors.Join(domain.ErrCacheMiss, err)
		}
		return domain.ArtifactSet{}, err
	}

	if err := os.MkdirAll(dstDir, domain.DirPerm); err != nil {
		return domain.ArtifactSet{}, zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err),
			"failed to create fetch directory"), "dir", dstDir)
	}

	src := domain.ArtifactSet{Dir: entry.Location}
	dst := domain.ArtifactSet{Dir: dstDir}

	g, _ := errgroup.WithContext(ctx)
	for _, rec := range entry.Artifacts {
		g.Go(func() error {
			f, err := os.Open(src.Path(rec.Kind))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return zerr.With(zerr.Wrap(domain.ErrCacheMiss, "published artifact is missing"), "kind", string(rec.Kind))
				}
				return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to open artifact")
			}
			defer f.Close() //nolint:errcheck // read-only

			return verifiedCopy(f, dst.Path(rec.Kind), rec)
		})
	}
	if err := g.Wait(); err != nil {
		discard(dst)
		return domain.ArtifactSet{}, zerr.With(err, "key", key.String())
	}

	return dst, nil
}

// Commit publishes src under key. It is a no-op when the key is already published,
// including when a concurrent committer wins the final rename.
func (s *FileStore) Commit(ctx context.Context, key domain.CacheKey, geometry domain.Geometry, src domain.ArtifactSet) error {
	if err := src.Complete(); err != nil {
		return err
	}

	if ok, err := s.Exists(ctx, key); err != nil || ok {
		return err
	}

	staging := domain.StagingPath(s.root)
	if err := os.MkdirAll(staging, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to create staging directory"), "dir", staging)
	}

	tmpDir, err := os.MkdirTemp(staging, key.String()+"-*")
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to create staging entry")
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	stage := domain.ArtifactSet{Dir: tmpDir}
	g, _ := errgroup.WithContext(ctx)
	for _, kind := range domain.ArtifactKinds {
		g.Go(func() error {
			return copyFile(src.Path(kind), stage.Path(kind))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	entry, err := buildManifest(ctx, key, geometry, stage, s.now())
	if err != nil {
		return err
	}
	data, err := encodeManifest(entry)
	if err != nil {
		return err
	}
	if err := writeFileSync(filepath.Join(tmpDir, domain.ManifestFileName), data); err != nil {
		return err
	}
	if err := os.Chmod(tmpDir, domain.DirPerm); err != nil {
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to set entry permissions")
	}

	target := s.entryDir(key)
	err = os.Rename(tmpDir, target)
	if err == nil {
		return nil
	}

	// Another committer published first; their entry is equivalent.
	if ok, existsErr := s.Exists(ctx, key); existsErr == nil && ok {
		return nil
	}
	if _, statErr := os.Lstat(target); statErr == nil {
		if err = s.evict(key); err == nil {
			err = os.Rename(tmpDir, target)
		}
		if err == nil {
			return nil
		}
		if ok, existsErr := s.Exists(ctx, key); existsErr == nil && ok {
			return nil
		}
	}
	return zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to publish entry"), "key", key.String())
}

// evict moves a damaged key directory into staging and removes it there.
// The move is a single rename, so readers see either the damaged entry or none.
func (s *FileStore) evict(key domain.CacheKey) error {
	aside, err := os.MkdirTemp(domain.StagingPath(s.root), key.String()+"-damaged-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(aside) }()

	if err := os.Rename(s.entryDir(key), filepath.Join(aside, key.String())); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List returns every well-formed entry sorted by key. Damaged entries are skipped.
func (s *FileStore) List(_ context.Context) ([]domain.CacheEntry, error) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to list cache root"), "root", s.root)
	}

	var entries []domain.CacheEntry
	for _, d := range dirents {
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		if _, err := domain.ParseKey(d.Name()); err != nil {
			continue
		}
		entry, err := s.readManifest(domain.CacheKey(d.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}

	slices.SortFunc(entries, func(a, b domain.CacheEntry) int {
		return strings.Compare(a.Key.String(), b.Key.String())
	})
	return entries, nil
}

func (s *FileStore) readManifest(key domain.CacheKey) (*domain.CacheEntry, error) {
	dir := s.entryDir(key)
	data, err := os.ReadFile(filepath.Join(dir, domain.ManifestFileName)) //nolint:gosec // key is canonical
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrCacheMiss, "no published entry"), "key", key.String())
		}
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to read manifest"), "key", key.String())
	}

	entry, err := decodeManifest(key, data)
	if err != nil {
		return nil, err
	}
	entry.Location = dir
	return entry, nil
}

// discard removes whatever part of a set was materialized so a failed fetch
// never leaves a usable-looking directory.
func discard(set domain.ArtifactSet) {
	for _, kind := range domain.ArtifactKinds {
		_ = os.Remove(set.Path(kind))
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // engine output in our scratch dir
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrIncompleteArtifacts, err), "failed to open artifact"), "path", src)
	}
	defer in.Close() //nolint:errcheck // read-only

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, domain.FilePerm) //nolint:gosec // staging path
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to create staged artifact"), "path", dst)
	}

	if _, err := out.ReadFrom(in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to stage artifact"), "path", dst)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to sync staged artifact")
	}
	if err := out.Close(); err != nil {
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to close staged artifact")
	}
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.FilePerm) //nolint:gosec // staging path
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to create manifest")
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to write manifest")
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to sync manifest")
	}
	return f.Close()
}
