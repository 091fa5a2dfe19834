package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Backend identifies one of the benchmarked reconstruction engines.
type Backend string

const (
	// BackendAstra is the ASTRA toolbox filtered back-projection engine.
	BackendAstra Backend = "astra"
	// BackendLprec is the log-polar engine that needs precomputed operators.
	BackendLprec Backend = "lprec"
	// BackendTomopy is the tomopy engine (gridrec or fbp).
	BackendTomopy Backend = "tomopy"
)

// Backends lists every supported engine.
var Backends = []Backend{BackendAstra, BackendLprec, BackendTomopy}

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	b := Backend(s)
	if !slices.Contains(Backends, b) {
		return "", zerr.With(zerr.Wrap(ErrUnknownBackend, "unsupported backend"), "backend", s)
	}
	return b, nil
}

func (b Backend) String() string {
	return string(b)
}

// UsesOperatorCache reports whether the engine reads precomputed operators at initialization.
func (b Backend) UsesOperatorCache() bool {
	return b == BackendLprec
}

// DefaultCenter returns the rotation-centre offset the original drivers used for the engine.
func (b Backend) DefaultCenter(width int) float64 {
	if b == BackendLprec {
		return float64(width)/2 - 4
	}
	return float64(width) / 2
}

// Algorithm selects the tomopy reconstruction method.
type Algorithm string

const (
	// AlgorithmGridrec is tomopy's gridding reconstruction.
	AlgorithmGridrec Algorithm = "gridrec"
	// AlgorithmFBP is tomopy's filtered back-projection.
	AlgorithmFBP Algorithm = "fbp"
)

// ParseAlgorithm validates a tomopy algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case AlgorithmGridrec, AlgorithmFBP:
		return a, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidAlgorithm, "expected gridrec or fbp"), "algorithm", s)
	}
}
