package domain

import "time"

// Timing holds the wall-clock phases of one execution.
type Timing struct {
	Fetch      time.Duration `json:"fetch_ns"`
	Initialize time.Duration `json:"initialize_ns"`
	Adjoint    time.Duration `json:"adjoint_ns"`
}

// Benchmark is the figure compared across engines. It excludes the cache fetch,
// which engines without an operator cache never pay.
func (t Timing) Benchmark() time.Duration {
	return t.Initialize + t.Adjoint
}

// Report is the outcome of one benchmark invocation.
type Report struct {
	Backend   Backend       `json:"backend"`
	Algorithm Algorithm     `json:"algorithm,omitempty"`
	Geometry  Geometry      `json:"geometry"`
	Key       CacheKey      `json:"key,omitempty"`
	Mode      string        `json:"mode"`
	CacheHit  bool          `json:"cache_hit,omitempty"`
	Center    float64       `json:"center,omitempty"`
	Timing    Timing        `json:"timing"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Output    Shape         `json:"output_shape,omitzero"`
}

const (
	// ModePrepare builds and commits operators.
	ModePrepare = "prepare"
	// ModeExecute runs the reconstruction.
	ModeExecute = "execute"
)
