// Package mock provides test doubles for the pitch package interfaces.
//
// Use Engine to verify that analyzers are created with the expected Config.
// Use Analyzer to script confidence values and inspect the blocks submitted.
//
// Example:
//
//	a := &mock.Analyzer{Confidences: []float64{0.6, 0.6, 0.1}}
//	eng := &mock.Engine{Analyzer: a}
//	tr := pitch.NewTracker(eng, pitch.DefaultConfig(44100, 1024))
package mock

import (
	"sync"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/pitch"
)

// Engine is a mock implementation of pitch.Engine.
type Engine struct {
	mu sync.Mutex

	// Analyzer is returned by NewAnalyzer. If nil, a new default Analyzer is
	// returned.
	Analyzer pitch.Analyzer

	// NewAnalyzerErr, if non-nil, is returned as the error from NewAnalyzer.
	NewAnalyzerErr error

	// NewAnalyzerCalls records the Config of every call in order.
	NewAnalyzerCalls []pitch.Config
}

// NewAnalyzer records the call and returns Analyzer, NewAnalyzerErr.
func (e *Engine) NewAnalyzer(cfg pitch.Config) (pitch.Analyzer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.NewAnalyzerCalls = append(e.NewAnalyzerCalls, cfg)
	if e.NewAnalyzerErr != nil {
		return nil, e.NewAnalyzerErr
	}
	if e.Analyzer != nil {
		return e.Analyzer, nil
	}
	return &Analyzer{}, nil
}

// Ensure Engine implements pitch.Engine at compile time.
var _ pitch.Engine = (*Engine)(nil)

// Analyzer is a mock implementation of pitch.Analyzer.
type Analyzer struct {
	mu sync.Mutex

	// Confidences are returned by successive Analyze calls. Once exhausted,
	// the last value is repeated; an empty slice yields 0.
	Confidences []float64

	// AnalyzeFunc, if set, takes precedence over Confidences.
	AnalyzeFunc func(samples []float32) (float64, error)

	// AnalyzeErr, if non-nil, is returned by every Analyze call.
	AnalyzeErr error

	// CloseErr, if non-nil, is returned by Close.
	CloseErr error

	// AnalyzeCallCount is the number of times Analyze was called.
	AnalyzeCallCount int

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int
}

// Analyze records the call and returns the next scripted confidence.
func (a *Analyzer) Analyze(samples []float32) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.AnalyzeCallCount
	a.AnalyzeCallCount++
	if a.AnalyzeErr != nil {
		return 0, a.AnalyzeErr
	}
	if a.AnalyzeFunc != nil {
		return a.AnalyzeFunc(samples)
	}
	if len(a.Confidences) == 0 {
		return 0, nil
	}
	if n >= len(a.Confidences) {
		n = len(a.Confidences) - 1
	}
	return a.Confidences[n], nil
}

// Close records the call and returns CloseErr.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.CloseCallCount++
	return a.CloseErr
}

// Ensure Analyzer implements pitch.Analyzer at compile time.
var _ pitch.Analyzer = (*Analyzer)(nil)
