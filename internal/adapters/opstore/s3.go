package opstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(
		ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps entries as objects under {prefix}{key}/. Artifacts are uploaded
// first, addressed by checksum, and the manifest last; an entry without a
// manifest does not exist. A losing committer never overwrites the bytes the
// winning manifest points at.
type S3Store struct {
	client S3API
	bucket string
	prefix string
	now    func() time.Time
}

var _ ports.OperatorStore = (*S3Store)(nil)

// NewS3Store creates an S3Store. The prefix is normalized to end in a slash.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

func (s *S3Store) objectKey(key domain.CacheKey, file string) string {
	return s.prefix + key.String() + "/" + file
}

func (s *S3Store) artifactKey(key domain.CacheKey, rec domain.ArtifactRecord) string {
	return s.prefix + key.String() + "/" + rec.Checksum + "/" + rec.File
}

func (s *S3Store) location(key domain.CacheKey) string {
	return "s3://" + s.bucket + "/" + s.prefix + key.String() + "/"
}

// Exists reports whether a valid manifest is published for key.
func (s *S3Store) Exists(ctx context.Context, key domain.CacheKey) (bool, error) {
	_, err := s.readManifest(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrCacheMiss), errors.Is(err, domain.ErrManifestInvalid):
		return false, nil
	default:
		return false, err
	}
}

// Fetch downloads the entry into dstDir, verifying every artifact against the manifest.
func (s *S3Store) Fetch(ctx context.Context, key domain.CacheKey, dstDir string) (domain.ArtifactSet, error) {
	entry, err := s.readManifest(ctx, key)
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
	dst := domain.ArtifactSet{Dir: dstDir}

	g, gctx := errgroup.WithContext(ctx)
	for _, rec := range entry.Artifacts {
		g.Go(func() error {
			body, err := s.get(gctx, s.artifactKey(key, rec))
			if err != nil {
				return err
			}
			defer body.Close() //nolint:errcheck // read-only

			return verifiedCopy(body, dst.Path(rec.Kind), rec)
		})
	}
	if err := g.Wait(); err != nil {
		discard(dst)
		return domain.ArtifactSet{}, zerr.With(err, "key", key.String())
	}

	return dst, nil
}

// Commit uploads src under key. The manifest is written with If-None-Match so
// that the first committer wins and later ones are no-ops.
func (s *S3Store) Commit(ctx context.Context, key domain.CacheKey, geometry domain.Geometry, src domain.ArtifactSet) error {
	if err := src.Complete(); err != nil {
		return err
	}
	if ok, err := s.Exists(ctx, key); err != nil || ok {
		return err
	}

	entry, err := buildManifest(ctx, key, geometry, src, s.now())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, rec := range entry.Artifacts {
		g.Go(func() error {
			return s.putFile(gctx, s.artifactKey(key, rec), src.Path(rec.Kind), rec.Size)
		})
	}
	if err := g.Wait(); err != nil {
		return zerr.With(err, "key", key.String())
	}

	data, err := encodeManifest(entry)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key, domain.ManifestFileName)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil
		}
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to publish manifest"), "key", key.String())
	}
	return nil
}

// List returns every entry with a valid manifest, sorted by key.
func (s *S3Store) List(ctx context.Context) ([]domain.CacheEntry, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(s.prefix),
		Delimiter: aws.String("/"),
	})

	var entries []domain.CacheEntry
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to list bucket"), "bucket", s.bucket)
		}

		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), s.prefix), "/")
			if _, err := domain.ParseKey(name); err != nil {
				continue
			}
			entry, err := s.readManifest(ctx, domain.CacheKey(name))
			if err != nil {
				continue
			}
			entries = append(entries, *entry)
		}
	}

	slices.SortFunc(entries, func(a, b domain.CacheEntry) int {
		return strings.Compare(a.Key.String(), b.Key.String())
	})
	return entries, nil
}

func (s *S3Store) readManifest(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error) {
	body, err := s.get(ctx, s.objectKey(key, domain.ManifestFileName))
	if err != nil {
		return nil, zerr.With(err, "key", key.String())
	}
	defer body.Close() //nolint:errcheck // read-only

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to read manifest"), "key", key.String())
	}

	entry, err := decodeManifest(key, data)
	if err != nil {
		return nil, err
	}
	entry.Location = s.location(key)
	return entry, nil
}

func (s *S3Store) get(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, zerr.With(zerr.Wrap(domain.ErrCacheMiss, "object not found"), "object", objectKey)
		}
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to get object"), "object", objectKey)
	}
	return out.Body, nil
}

func (s *S3Store) putFile(ctx context.Context, objectKey, path string, size int64) error {
	f, err := os.Open(path) //nolint:gosec // engine output in our scratch dir
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrIncompleteArtifacts, err), "failed to open artifact"), "path", path)
	}
	defer f.Close() //nolint:errcheck // read-only

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          f,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to upload artifact"), "object", objectKey)
	}
	return nil
}

// apiError matches the error codes carried by S3 responses.
type apiError interface {
	ErrorCode() string
}

func errorCode(err error) string {
	var ae apiError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}

func isNotFound(err error) bool {
	switch errorCode(err) {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

func isConditionFailed(err error) bool {
	switch errorCode(err) {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
