package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// ManifestVersion is the manifest format written by this build.
const ManifestVersion = 1

// ArtifactRecord describes one stored artifact.
type ArtifactRecord struct {
	Kind     ArtifactKind `json:"kind"`
	File     string       `json:"file"`
	Size     int64        `json:"size"`
	Checksum string       `json:"xxhash64"`
}

// CacheEntry is a published operator set. Its manifest is the entry's commit record.
type CacheEntry struct {
	Version   int              `json:"version"`
	Key       CacheKey         `json:"key"`
	Geometry  Geometry         `json:"geometry"`
	CreatedAt time.Time        `json:"created_at"`
	Artifacts []ArtifactRecord `json:"artifacts"`

	// Location is where the entry lives (a directory or an object prefix). Not persisted.
	Location string `json:"-"`
}

// Record returns the record for the given kind, if present.
func (e *CacheEntry) Record(kind ArtifactKind) (ArtifactRecord, bool) {
	for _, r := range e.Artifacts {
		if r.Kind == kind {
			return r, true
		}
	}
	return ArtifactRecord{}, false
}

// Size returns the total size of all artifacts.
func (e *CacheEntry) Size() int64 {
	var total int64
	for _, r := range e.Artifacts {
		total += r.Size
	}
	return total
}

// Validate checks that the manifest belongs to key and lists every artifact exactly once
// under its canonical file name.
func (e *CacheEntry) Validate(key CacheKey) error {
	if e.Version != ManifestVersion {
		return zerr.With(zerr.Wrap(ErrManifestInvalid, "unsupported manifest version"), "version", e.Version)
	}
	if e.Key != key {
		return zerr.With(zerr.With(zerr.Wrap(ErrManifestInvalid, "manifest key mismatch"),
			"key", key.String()), "manifest_key", e.Key.String())
	}
	if DeriveKey(e.Geometry) != key {
		return zerr.With(zerr.Wrap(ErrManifestInvalid, "manifest geometry does not match key"), "key", key.String())
	}
	if len(e.Artifacts) != len(ArtifactKinds) {
		return zerr.With(zerr.Wrap(ErrManifestInvalid, "manifest lists wrong number of artifacts"),
			"count", len(e.Artifacts))
	}
	for _, kind := range ArtifactKinds {
		r, ok := e.Record(kind)
		if !ok {
			return zerr.With(zerr.Wrap(ErrManifestInvalid, "manifest is missing an artifact"), "kind", string(kind))
		}
		if r.File != kind.FileName() || r.Size < 0 || r.Checksum == "" {
			return zerr.With(zerr.Wrap(ErrManifestInvalid, "malformed artifact record"), "kind", string(kind))
		}
	}
	return nil
}
