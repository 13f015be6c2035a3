package pitch

import (
	"fmt"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
)

// Tracker owns an [Analyzer] session for the duration of an open/close
// lifecycle and memoises the confidence of the most recent block.
//
// Repeated queries for the same block index return the cached value without
// re-running the analyzer. The cache holds one entry and is replaced whenever
// a block with a different index is analysed.
type Tracker struct {
	engine Engine
	cfg    Config

	lc       audio.Lifecycle
	analyzer Analyzer

	cached      bool
	cachedIndex int
	cachedValue float64
}

// NewTracker returns a closed tracker that opens sessions on engine with cfg.
func NewTracker(engine Engine, cfg Config) *Tracker {
	return &Tracker{engine: engine, cfg: cfg}
}

// Open creates the analyzer session.
func (t *Tracker) Open() error {
	return t.lc.Open(func() error {
		a, err := t.engine.NewAnalyzer(t.cfg)
		if err != nil {
			return fmt.Errorf("pitch: new analyzer: %w", err)
		}
		t.analyzer = a
		t.cached = false
		return nil
	})
}

// Close releases the analyzer session and drops the cache.
func (t *Tracker) Close() error {
	return t.lc.Close(func() error {
		a := t.analyzer
		t.analyzer = nil
		t.cached = false
		return a.Close()
	})
}

// Confidence returns the pitch confidence for b, analysing it at most once.
func (t *Tracker) Confidence(b audio.Block) (float64, error) {
	if err := t.lc.Require("pitch: confidence"); err != nil {
		return 0, err
	}
	if t.cached && t.cachedIndex == b.Index {
		return t.cachedValue, nil
	}
	c, err := t.analyzer.Analyze(b.Samples)
	if err != nil {
		return 0, fmt.Errorf("pitch: analyze block %d: %w", b.Index, err)
	}
	t.cached, t.cachedIndex, t.cachedValue = true, b.Index, c
	return c, nil
}

// Adapt fills a zero SampleRate or BufferSize in the analyzer configuration
// from f. Streams that learn their format on Open, such as WAV files, call it
// between opening the stream and opening the tracker. It has no effect while
// the tracker is open.
func (t *Tracker) Adapt(f audio.Format) {
	if t.lc.State() == audio.StateOpen {
		return
	}
	if t.cfg.SampleRate == 0 {
		t.cfg.SampleRate = f.SampleRate
	}
	if t.cfg.BufferSize == 0 {
		t.cfg.BufferSize = f.BlockSize
	}
}

// Config returns the analyzer configuration.
func (t *Tracker) Config() Config {
	return t.cfg
}

// String describes the tracker for log output.
func (t *Tracker) String() string {
	return fmt.Sprintf("pitch.Tracker(method=%s, tolerance=%g, hop=%d, buffer=%d, rate=%d, state=%s)",
		t.cfg.Method, t.cfg.Tolerance, t.cfg.HopSize, t.cfg.BufferSize, t.cfg.SampleRate, t.lc.State())
}
