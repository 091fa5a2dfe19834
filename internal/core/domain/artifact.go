package domain

import (
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// ArtifactKind names one member of the operator artifact set.
type ArtifactKind string

const (
	// ArtifactAdjoint is the adjoint (back-projection) operator.
	ArtifactAdjoint ArtifactKind = "adjoint"
	// ArtifactForward is the forward (projection) operator.
	ArtifactForward ArtifactKind = "forward"
	// ArtifactLookup is the grid lookup table.
	ArtifactLookup ArtifactKind = "lookup"
)

// ArtifactKinds lists every member of a complete artifact set in a fixed order.
var ArtifactKinds = []ArtifactKind{ArtifactAdjoint, ArtifactForward, ArtifactLookup}

// FileName returns the fixed file name the engines read and write for this kind.
func (k ArtifactKind) FileName() string {
	switch k {
	case ArtifactAdjoint:
		return "adjoint.op"
	case ArtifactForward:
		return "forward.op"
	case ArtifactLookup:
		return "lookup.grid"
	default:
		return string(k)
	}
}

// ArtifactSet is the three operator blobs materialized together in one directory.
type ArtifactSet struct {
	Dir string
}

// Path returns the location of one artifact within the set.
func (s ArtifactSet) Path(kind ArtifactKind) string {
	return filepath.Join(s.Dir, kind.FileName())
}

// Complete checks that every artifact is present as a regular file.
// A partial set is never usable.
func (s ArtifactSet) Complete() error {
	for _, kind := range ArtifactKinds {
		path := s.Path(kind)
		info, err := os.Stat(path)
		if err != nil {
			return zerr.With(zerr.Wrap(ErrIncompleteArtifacts, "artifact missing"), "path", path)
		}
		if !info.Mode().IsRegular() {
			return zerr.With(zerr.Wrap(ErrIncompleteArtifacts, "artifact is not a regular file"), "path", path)
		}
	}
	return nil
}
