// Package confidence defines the pull-based stream of per-block pitch
// confidence values consumed by the ring detector, and its concrete sources.
//
// A [Source] yields values in block-arrival order. Exhaustion is reported by
// io.EOF from Next and by Exhausted; both are idempotent. Sources that hold
// external resources also implement [Input] so a detector can acquire and
// release them around a detection run.
package confidence

import (
	"fmt"
	"io"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
)

// Source is a lazy, finite-or-infinite sequence of confidence values.
type Source interface {
	// Next returns the next value, or io.EOF once the source is exhausted.
	// Any other error is a hard failure of the underlying collaborator.
	Next() (float64, error)

	// Exhausted reports whether Next can return no further values. It must
	// report true after Next has returned io.EOF.
	Exhausted() bool
}

// Input is a [Source] whose resources are acquired with Open and released
// with Close.
type Input interface {
	Source
	audio.Resource
}

// Slice is an in-memory [Input] over fixed values. Open and Close only track
// the lifecycle; they do not rewind.
type Slice struct {
	lc     audio.Lifecycle
	values []float64
	pos    int
}

// NewSlice returns a closed source over values.
func NewSlice(values ...float64) *Slice {
	return &Slice{values: values}
}

// Open implements [audio.Resource].
func (s *Slice) Open() error { return s.lc.Open(nil) }

// Close implements [audio.Resource].
func (s *Slice) Close() error { return s.lc.Close(nil) }

// Next implements [Source].
func (s *Slice) Next() (float64, error) {
	if s.pos >= len(s.values) {
		return 0, io.EOF
	}
	v := s.values[s.pos]
	s.pos++
	return v, nil
}

// Exhausted implements [Source].
func (s *Slice) Exhausted() bool {
	return s.pos >= len(s.values)
}

// Consumed returns how many values Next has returned.
func (s *Slice) Consumed() int {
	return s.pos
}

// String describes the source for log output.
func (s *Slice) String() string {
	return fmt.Sprintf("confidence.Slice(len=%d, consumed=%d)", len(s.values), s.pos)
}
