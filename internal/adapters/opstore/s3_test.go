package opstore_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tomobench/internal/adapters/opstore"
	"go.trai.ch/tomobench/internal/core/domain"
)

type codeError string

func (e codeError) Error() string     { return string(e) }
func (e codeError) ErrorCode() string { return string(e) }

// fakeS3 is an in-memory bucket honouring If-None-Match on PutObject.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut func(key string) error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(bytes.Clone(data))),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if f.failPut != nil {
		if err := f.failPut(key); err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if aws.ToString(in.IfNoneMatch) == "*" {
		if _, exists := f.objects[key]; exists {
			return nil, codeError("PreconditionFailed")
		}
	}
	f.objects[key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(
	_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := aws.ToString(in.Prefix)
	seen := make(map[string]bool)
	var out s3.ListObjectsV2Output
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := strings.TrimPrefix(k, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			cp := prefix + rest[:i+1]
			if !seen[cp] {
				seen[cp] = true
				out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(cp)})
			}
			continue
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	out.IsTruncated = aws.Bool(false)
	return &out, nil
}

func (f *fakeS3) put(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
}

// find returns the single object key ending in suffix.
func (f *fakeS3) find(t *testing.T, suffix string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	var found []string
	for k := range f.objects {
		if strings.HasSuffix(k, suffix) {
			found = append(found, k)
		}
	}
	require.Len(t, found, 1, "objects ending in %q", suffix)
	return found[0]
}

func (f *fakeS3) get(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return bytes.Clone(f.objects[key])
}

func (f *fakeS3) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func TestS3Store_CommitFetchRoundTrip(t *testing.T) {
	client := newFakeS3()
	store := opstore.NewS3Store(client, "ops", "/bench")
	key := domain.DeriveKey(testGeometry)
	src := makeArtifacts(t, "s3")

	ok, err := store.Exists(t.Context(), key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Commit(t.Context(), key, testGeometry, src))
	assert.True(t, client.has("bench/64-32-1/manifest.json"))
	assert.True(t, strings.HasPrefix(client.find(t, "/adjoint.op"), "bench/64-32-1/"))

	ok, err = store.Exists(t.Context(), key)
	require.NoError(t, err)
	assert.True(t, ok)

	set, err := store.Fetch(t.Context(), key, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, readSet(t, src), readSet(t, set))
}

func TestS3Store_ManifestIsWrittenLast(t *testing.T) {
	client := newFakeS3()
	client.failPut = func(key string) error {
		if strings.HasSuffix(key, domain.ManifestFileName) {
			return errors.New("connection reset")
		}
		return nil
	}
	store := opstore.NewS3Store(client, "ops", "")
	key := domain.DeriveKey(testGeometry)

	err := store.Commit(t.Context(), key, testGeometry, makeArtifacts(t, "a"))
	require.ErrorIs(t, err, domain.ErrStoreIO)
	client.find(t, "/adjoint.op")

	ok, err := store.Exists(t.Context(), key)
	require.NoError(t, err)
	assert.False(t, ok, "without a manifest the entry does not exist")

	_, err = store.Fetch(t.Context(), key, t.TempDir())
	require.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestS3Store_FirstCommitterWins(t *testing.T) {
	key := domain.DeriveKey(testGeometry)

	rivalClient := newFakeS3()
	rival := opstore.NewS3Store(rivalClient, "ops", "")
	require.NoError(t, rival.Commit(t.Context(), key, testGeometry, makeArtifacts(t, "rival")))

	client := newFakeS3()
	store := opstore.NewS3Store(client, "ops", "")
	manifestKey := "64-32-1/" + domain.ManifestFileName

	// The rival publishes between our Exists check and our manifest upload.
	client.failPut = func(objectKey string) error {
		if objectKey == manifestKey {
			for k := range rivalClient.objects {
				client.put(k, rivalClient.get(k))
			}
		}
		return nil
	}
	require.NoError(t, store.Commit(t.Context(), key, testGeometry, makeArtifacts(t, "ours")))
	assert.Equal(t, rivalClient.get(manifestKey), client.get(manifestKey))

	set, err := store.Fetch(t.Context(), key, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "rival:adjoint:payload", readSet(t, set)[domain.ArtifactAdjoint])
}

func TestS3Store_CorruptObject(t *testing.T) {
	client := newFakeS3()
	store := opstore.NewS3Store(client, "ops", "p")
	key := domain.DeriveKey(testGeometry)
	require.NoError(t, store.Commit(t.Context(), key, testGeometry, makeArtifacts(t, "a")))

	client.put(client.find(t, "/lookup.grid"), []byte("a:lookup:PAYLOAD"))

	dst := t.TempDir()
	_, err := store.Fetch(t.Context(), key, dst)
	require.ErrorIs(t, err, domain.ErrCacheCorrupt)
	assertNoArtifacts(t, dst)
}

func TestS3Store_List(t *testing.T) {
	client := newFakeS3()
	store := opstore.NewS3Store(client, "ops", "bench/")

	for _, g := range []domain.Geometry{
		{Width: 64, NumProjections: 32, NumSlices: 1},
		{Width: 32, NumProjections: 16, NumSlices: 1},
	} {
		require.NoError(t, store.Commit(t.Context(), domain.DeriveKey(g), g, makeArtifacts(t, "x")))
	}
	client.put("bench/64-32-9/00ff/adjoint.op", []byte("orphan without manifest"))
	client.put("bench/README", []byte("not an entry"))

	entries, err := store.List(t.Context())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.CacheKey("32-16-1"), entries[0].Key)
	assert.Equal(t, "s3://ops/bench/64-32-1/", entries[1].Location)
}
