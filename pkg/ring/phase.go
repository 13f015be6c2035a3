package ring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/confidence"
)

// Deadline is an optional wall-clock budget for a phase. The zero value means
// no deadline.
type Deadline struct {
	d   time.Duration
	set bool
}

// NoDeadline is the unbounded [Deadline].
var NoDeadline = Deadline{}

// After returns a deadline d after the phase starts. Zero and negative
// durations are allowed; they expire on the first sample that does not match.
func After(d time.Duration) Deadline {
	return Deadline{d: d, set: true}
}

// Duration returns the budget and whether one is set.
func (d Deadline) Duration() (time.Duration, bool) {
	return d.d, d.set
}

// String returns "none" or the duration.
func (d Deadline) String() string {
	if !d.set {
		return "none"
	}
	return d.d.String()
}

// PhaseSpec configures one phase attempt.
type PhaseSpec struct {
	Band             Band
	Polarity         Polarity
	WindowSeconds    float64
	SamplesPerSecond int
	// Seed pre-fills the window so its mean is defined from the first sample.
	Seed     float64
	Deadline Deadline
}

// WindowSize returns round(WindowSeconds * SamplesPerSecond), or
// [ErrEmptyWindow] if that is less than 1.
func (s PhaseSpec) WindowSize() (int, error) {
	n := int(math.Round(s.WindowSeconds * float64(s.SamplesPerSecond)))
	if n < 1 {
		return 0, fmt.Errorf("%w: %gs at %d/s", ErrEmptyWindow, s.WindowSeconds, s.SamplesPerSecond)
	}
	return n, nil
}

// Validate checks the band and window size.
func (s PhaseSpec) Validate() error {
	if s.SamplesPerSecond <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRate, s.SamplesPerSecond)
	}
	if err := s.Band.Validate(); err != nil {
		return err
	}
	_, err := s.WindowSize()
	return err
}

// PhaseResult describes how a phase attempt concluded.
type PhaseResult struct {
	Outcome Outcome

	// Samples is the number of values consumed from the source.
	Samples int

	// Mean is the running mean after the last consumed sample, or the seed
	// when nothing was consumed.
	Mean float64

	// Elapsed is the wall-clock time the phase took.
	Elapsed time.Duration
}

// PhaseDetector runs single phase attempts against a confidence source.
// The zero value uses [time.Now].
type PhaseDetector struct {
	// Now returns the current time. Nil means [time.Now].
	Now func() time.Time
}

// Detect pulls values from src until the running mean satisfies spec, the
// deadline passes or src is exhausted.
//
// On each sample the band condition is checked before the deadline, so a
// sample that matches exactly when the deadline expires is reported as
// [Matched]. Exhaustion is reported as [StreamEnded] without consulting the
// deadline. Errors are returned only for invalid specs, source failures and
// context cancellation.
func (p PhaseDetector) Detect(ctx context.Context, src confidence.Source, spec PhaseSpec) (PhaseResult, error) {
	if err := spec.Validate(); err != nil {
		return PhaseResult{}, err
	}
	size, _ := spec.WindowSize()
	w, err := NewWindow(size, spec.Seed)
	if err != nil {
		return PhaseResult{}, err
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}
	start := now()
	budget, bounded := spec.Deadline.Duration()
	deadline := start.Add(budget)

	res := PhaseResult{Mean: w.Mean()}
	finish := func(o Outcome) (PhaseResult, error) {
		res.Outcome = o
		res.Elapsed = now().Sub(start)
		return res, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		v, err := src.Next()
		if errors.Is(err, io.EOF) {
			return finish(StreamEnded)
		}
		if err != nil {
			return res, fmt.Errorf("ring: next confidence: %w", err)
		}
		res.Samples++
		res.Mean = w.Push(v)

		if spec.Polarity.Matches(spec.Band, res.Mean) {
			return finish(Matched)
		}
		if bounded && !now().Before(deadline) {
			return finish(TimedOut)
		}
	}
}
