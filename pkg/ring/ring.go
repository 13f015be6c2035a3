// Package ring detects a doorbell's ring-gap-ring pattern in a stream of
// per-block pitch confidence values.
//
// Detection is built from three layers:
//
//   - [Window] smooths the confidence signal with a fixed-size running mean.
//   - [PhaseDetector] watches the running mean until it enters (or leaves) a
//     confidence [Band], optionally bounded by a wall-clock deadline.
//   - [Detector] chains three phases (first ring, gap, second ring) and retries
//     from the current stream position until a full cycle matches or the
//     stream ends.
//
// Everything runs synchronously on the caller's goroutine. The confidence
// source is consumed strictly forward; a failed attempt is never rewound.
package ring

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyWindow is returned when a window would hold no samples, e.g.
	// when a phase duration times the sample rate rounds to zero.
	ErrEmptyWindow = errors.New("ring: window size must be at least 1")

	// ErrInvalidBand is returned when a band's minimum exceeds its maximum.
	ErrInvalidBand = errors.New("ring: band minimum exceeds maximum")

	// ErrInvalidRate is returned for a non-positive confidence rate.
	ErrInvalidRate = errors.New("ring: confidences per second must be positive")
)

// Band is the inclusive confidence range considered "ringing".
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether Min <= v <= Max.
func (b Band) Contains(v float64) bool {
	return b.Min <= v && v <= b.Max
}

// Mid returns the centre of the band.
func (b Band) Mid() float64 {
	return (b.Min + b.Max) / 2
}

// Validate returns [ErrInvalidBand] if Min > Max.
func (b Band) Validate() error {
	if b.Min > b.Max {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidBand, b.Min, b.Max)
	}
	return nil
}

// Polarity selects whether a phase matches when the mean is inside or
// outside the band.
type Polarity int

const (
	// Inside matches when the running mean lies within the band.
	Inside Polarity = iota

	// Outside matches when the running mean lies outside the band.
	Outside
)

// String returns the human-readable name of the polarity.
func (p Polarity) String() string {
	switch p {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	default:
		return "unknown"
	}
}

// Matches reports whether mean satisfies band membership under p.
func (p Polarity) Matches(b Band, mean float64) bool {
	if p == Outside {
		return !b.Contains(mean)
	}
	return b.Contains(mean)
}

// Outcome is the result of one phase attempt. TimedOut and StreamEnded are
// ordinary results, not errors.
type Outcome int

const (
	// Matched means the running mean satisfied the phase's band condition.
	Matched Outcome = iota

	// TimedOut means the phase deadline passed before a match.
	TimedOut

	// StreamEnded means the confidence source was exhausted before a match.
	StreamEnded
)

// String returns the human-readable name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case TimedOut:
		return "timed_out"
	case StreamEnded:
		return "stream_ended"
	default:
		return "unknown"
	}
}

// Phase identifies a step of the ring cycle.
type Phase int

const (
	// FirstRing waits, without a deadline, for the bell to start ringing.
	FirstRing Phase = iota

	// Gap waits for the pause between rings.
	Gap

	// SecondRing waits for the ring following the gap.
	SecondRing
)

// String returns the human-readable name of the phase.
func (p Phase) String() string {
	switch p {
	case FirstRing:
		return "first_ring"
	case Gap:
		return "gap"
	case SecondRing:
		return "second_ring"
	default:
		return "unknown"
	}
}
