package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidGeometry is returned when a problem dimension is not positive.
	ErrInvalidGeometry = zerr.New("invalid geometry")

	// ErrInvalidKey is returned when a string is not a canonical cache key.
	ErrInvalidKey = zerr.New("invalid cache key")

	// ErrUnknownBackend is returned when a backend name is not supported.
	ErrUnknownBackend = zerr.New("unknown backend")

	// ErrInvalidAlgorithm is returned when a tomopy algorithm name is not supported.
	ErrInvalidAlgorithm = zerr.New("invalid algorithm")

	// ErrShapeMismatch is returned when an array does not have the shape the geometry requires.
	ErrShapeMismatch = zerr.New("array shape mismatch")

	// ErrIncompleteArtifacts is returned when fewer than all three operator artifacts are present.
	ErrIncompleteArtifacts = zerr.New("incomplete operator artifact set")

	// ErrCacheMiss is returned when a requested entry is absent or incomplete in the operator cache.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrCacheCorrupt is returned when a published entry fails checksum verification.
	ErrCacheCorrupt = zerr.New("cache entry corrupt")

	// ErrNotPrepared is returned when execution is attempted for a geometry that was never prepared.
	ErrNotPrepared = zerr.New("operators not prepared for geometry, run with --prepare first")

	// ErrPrecomputeFailed is returned when the engine's precompute step fails or produces an incomplete set.
	ErrPrecomputeFailed = zerr.New("operator precompute failed")

	// ErrStoreIO is returned when reading from or writing to the operator store fails.
	ErrStoreIO = zerr.New("operator store I/O failed")

	// ErrManifestInvalid is returned when an entry manifest cannot be decoded or does not match its key.
	ErrManifestInvalid = zerr.New("invalid cache manifest")

	// ErrLeaseTimeout is returned when waiting for a concurrent precompute exceeds the lease timeout.
	ErrLeaseTimeout = zerr.New("timed out waiting for precompute lease")

	// ErrLeaseFailed is returned when the lease backend cannot be reached.
	ErrLeaseFailed = zerr.New("precompute lease failed")

	// ErrEngineInitFailed is returned when the engine cannot initialize its runtime state.
	ErrEngineInitFailed = zerr.New("engine initialization failed")

	// ErrReconstructionFailed is returned when the adjoint operation fails.
	ErrReconstructionFailed = zerr.New("reconstruction failed")

	// ErrEngineCommandFailed is returned when an external engine command exits unsuccessfully.
	ErrEngineCommandFailed = zerr.New("engine command failed")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when the config file holds an unsupported value.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrWorkDirFailed is returned when the private work directory cannot be prepared.
	ErrWorkDirFailed = zerr.New("failed to prepare work directory")
)
