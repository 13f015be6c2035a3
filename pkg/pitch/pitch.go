// Package pitch defines the contract for per-block pitch confidence
// computation and the [Tracker] that memoises it.
//
// An [Engine] wraps a pitch-tracking algorithm (e.g. YIN) and creates
// stateful [Analyzer] sessions. Each session is fed consecutive audio blocks
// and reports, per block, a confidence scalar in [0, 1] describing how clearly
// the block carries a stable pitch. The algorithm itself lives outside this
// module; embedders register engines with the configuration registry.
//
// Analyzers are synchronous and not safe for concurrent use.
package pitch

// Config holds the parameters for an analyzer session.
type Config struct {
	// Method names the pitch-tracking algorithm (e.g. "yin").
	Method string

	// Tolerance is the algorithm-specific detection tolerance. Typical: 0.8.
	Tolerance float64

	// SampleRate of the blocks passed to Analyze, in Hz.
	SampleRate int

	// BufferSize is the analysis window in samples.
	BufferSize int

	// HopSize is the step between analysis windows in samples.
	HopSize int
}

// DefaultConfig returns analyzer settings derived from a stream's sample rate
// and block size: the buffer spans one block and the hop is half a block.
func DefaultConfig(sampleRate, blockSize int) Config {
	return Config{
		Method:     "yin",
		Tolerance:  0.8,
		SampleRate: sampleRate,
		BufferSize: blockSize,
		HopSize:    int(float64(blockSize) * 0.5),
	}
}

// Analyzer is an active pitch-tracking session for a single audio stream.
type Analyzer interface {
	// Analyze consumes one block of mono samples and returns the confidence
	// of the pitch estimate for that block.
	Analyze(samples []float32) (float64, error)

	// Close releases the session. Calling Close more than once is safe.
	Close() error
}

// Engine is the factory for analyzer sessions. Implementations must be safe
// for concurrent use.
type Engine interface {
	// NewAnalyzer creates a session with the given configuration. Returns an
	// error if the configuration is unsupported.
	NewAnalyzer(cfg Config) (Analyzer, error)
}
