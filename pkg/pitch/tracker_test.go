package pitch_test

import (
	"errors"
	"testing"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/pitch"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/pitch/mock"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := pitch.DefaultConfig(44100, 1024)
	if cfg.Method != "yin" {
		t.Errorf("Method = %q, want yin", cfg.Method)
	}
	if cfg.Tolerance != 0.8 {
		t.Errorf("Tolerance = %v, want 0.8", cfg.Tolerance)
	}
	if cfg.HopSize != 512 || cfg.BufferSize != 1024 || cfg.SampleRate != 44100 {
		t.Errorf("unexpected sizes: %+v", cfg)
	}
}

func TestTracker_MemoisesByBlockIndex(t *testing.T) {
	t.Parallel()
	a := &mock.Analyzer{Confidences: []float64{0.6, 0.2}}
	tr := pitch.NewTracker(&mock.Engine{Analyzer: a}, pitch.DefaultConfig(44100, 1024))
	if err := tr.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	first := audio.Block{Index: 1}
	for range 3 {
		c, err := tr.Confidence(first)
		if err != nil {
			t.Fatalf("Confidence: %v", err)
		}
		if c != 0.6 {
			t.Errorf("confidence = %v, want 0.6", c)
		}
	}
	if a.AnalyzeCallCount != 1 {
		t.Errorf("analyzer called %d times for one block, want 1", a.AnalyzeCallCount)
	}

	c, err := tr.Confidence(audio.Block{Index: 2})
	if err != nil {
		t.Fatalf("Confidence: %v", err)
	}
	if c != 0.2 {
		t.Errorf("confidence = %v, want 0.2", c)
	}

	// The cache holds only the latest block; going back recomputes.
	if _, err := tr.Confidence(first); err != nil {
		t.Fatalf("Confidence: %v", err)
	}
	if a.AnalyzeCallCount != 3 {
		t.Errorf("analyzer called %d times, want 3", a.AnalyzeCallCount)
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	t.Parallel()
	a := &mock.Analyzer{}
	eng := &mock.Engine{Analyzer: a}
	cfg := pitch.DefaultConfig(8000, 256)
	tr := pitch.NewTracker(eng, cfg)

	if _, err := tr.Confidence(audio.Block{Index: 1}); !errors.Is(err, audio.ErrNotOpen) {
		t.Errorf("Confidence before Open: got %v, want ErrNotOpen", err)
	}
	if err := tr.Close(); !errors.Is(err, audio.ErrNotOpen) {
		t.Errorf("Close before Open: got %v, want ErrNotOpen", err)
	}
	if err := tr.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tr.Open(); !errors.Is(err, audio.ErrAlreadyOpen) {
		t.Errorf("second Open: got %v, want ErrAlreadyOpen", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if a.CloseCallCount != 1 {
		t.Errorf("analyzer closed %d times, want 1", a.CloseCallCount)
	}
	if len(eng.NewAnalyzerCalls) != 1 || eng.NewAnalyzerCalls[0] != cfg {
		t.Errorf("NewAnalyzer calls = %+v, want one call with %+v", eng.NewAnalyzerCalls, cfg)
	}
}

func TestTracker_Errors(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")

	tr := pitch.NewTracker(&mock.Engine{NewAnalyzerErr: boom}, pitch.Config{})
	if err := tr.Open(); !errors.Is(err, boom) {
		t.Errorf("Open: got %v, want boom", err)
	}

	tr = pitch.NewTracker(&mock.Engine{Analyzer: &mock.Analyzer{AnalyzeErr: boom}}, pitch.Config{})
	if err := tr.Open(); err != nil {
		t.Fatal(err)
	}
	defer tr.Close()
	if _, err := tr.Confidence(audio.Block{Index: 1}); !errors.Is(err, boom) {
		t.Errorf("Confidence: got %v, want boom", err)
	}
}

func TestTracker_AdaptFillsUnknownFormat(t *testing.T) {
	t.Parallel()
	engine := &mock.Engine{Analyzer: &mock.Analyzer{}}
	cfg := pitch.DefaultConfig(0, 1024)
	tr := pitch.NewTracker(engine, cfg)

	tr.Adapt(audio.Format{SampleRate: 22050, Channels: 2, BlockSize: 4096})
	if err := tr.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	got := engine.NewAnalyzerCalls[0]
	if got.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050 from the stream", got.SampleRate)
	}
	if got.BufferSize != 1024 {
		t.Errorf("BufferSize = %d, configured value must win", got.BufferSize)
	}

	tr.Adapt(audio.Format{SampleRate: 8000})
	if tr.Config().SampleRate != 22050 {
		t.Error("Adapt must not change an open tracker")
	}
}
