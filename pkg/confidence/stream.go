package confidence

import (
	"errors"
	"fmt"
	"io"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/pitch"
)

// StreamSource produces one confidence per block read from an audio stream,
// computed by a pitch tracker. Opening it opens the stream and then the
// tracker; closing releases them in reverse order.
type StreamSource struct {
	stream  audio.Stream
	tracker *pitch.Tracker
}

// NewStreamSource pairs stream with tracker.
func NewStreamSource(stream audio.Stream, tracker *pitch.Tracker) *StreamSource {
	return &StreamSource{stream: stream, tracker: tracker}
}

// Open opens the stream, then the tracker. The tracker adopts any format
// details it was not configured with from the opened stream. If the tracker
// fails to open the stream is closed again.
func (s *StreamSource) Open() error {
	if err := s.stream.Open(); err != nil {
		return err
	}
	s.tracker.Adapt(s.stream.Format())
	if err := s.tracker.Open(); err != nil {
		return errors.Join(err, s.stream.Close())
	}
	return nil
}

// Close closes the tracker, then the stream, and reports both failures.
func (s *StreamSource) Close() error {
	return errors.Join(s.tracker.Close(), s.stream.Close())
}

// Next reads one block and returns its confidence.
func (s *StreamSource) Next() (float64, error) {
	if s.stream.Depleted() {
		return 0, io.EOF
	}
	b, err := s.stream.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("confidence: read block: %w", err)
	}
	return s.tracker.Confidence(b)
}

// Exhausted reports whether the stream is depleted.
func (s *StreamSource) Exhausted() bool {
	return s.stream.Depleted()
}

// Stream returns the underlying audio stream.
func (s *StreamSource) Stream() audio.Stream {
	return s.stream
}

// String describes the source for log output.
func (s *StreamSource) String() string {
	return fmt.Sprintf("confidence.StreamSource(stream=%v, tracker=%v, blocks_read=%d)",
		s.stream, s.tracker, s.stream.BlocksRead())
}
