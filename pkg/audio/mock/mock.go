// Package mock provides a scripted in-memory implementation of [audio.Stream]
// for use in unit tests.
//
// The mock serves Blocks in order, enforces the open/closed lifecycle like a
// real stream, and records call counts so tests can assert on them.
//
// Typical usage:
//
//	s := &mock.Stream{Blocks: [][]float32{{0.1}, {0.2}}}
//	err := audio.Use(s, func() error {
//	    for !s.Depleted() {
//	        if _, err := s.Read(); err != nil {
//	            return err
//	        }
//	    }
//	    return nil
//	})
package mock

import (
	"io"
	"sync"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
)

// Stream is a mock implementation of [audio.Stream].
// Set the exported fields before use; inspect the CallCount* fields after.
type Stream struct {
	mu sync.Mutex
	lc audio.Lifecycle

	// Blocks are the sample slices returned by successive Read calls.
	Blocks [][]float32

	// StreamFormat is returned by Format. Defaults to [audio.DefaultFormat].
	StreamFormat *audio.Format

	// Live, when true, makes the stream never report depletion; reads past
	// the end of Blocks return ReadErr or io.EOF.
	Live bool

	// OpenErr, if non-nil, is returned by Open and the stream stays closed.
	OpenErr error

	// CloseErr, if non-nil, is returned by Close.
	CloseErr error

	// ReadErr, if non-nil, is returned by Read once Blocks are exhausted.
	ReadErr error

	pos int

	// CallCountOpen records how many times Open was called.
	CallCountOpen int

	// CallCountClose records how many times Close was called.
	CallCountClose int

	// CallCountRead records how many times Read was called.
	CallCountRead int
}

// Open implements [audio.Stream].
func (s *Stream) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CallCountOpen++
	return s.lc.Open(func() error { return s.OpenErr })
}

// Close implements [audio.Stream].
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CallCountClose++
	return s.lc.Close(func() error { return s.CloseErr })
}

// Read implements [audio.Stream].
func (s *Stream) Read() (audio.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CallCountRead++
	if err := s.lc.Require("mock: read"); err != nil {
		return audio.Block{}, err
	}
	if s.pos >= len(s.Blocks) {
		if s.ReadErr != nil {
			return audio.Block{}, s.ReadErr
		}
		return audio.Block{}, io.EOF
	}
	samples := s.Blocks[s.pos]
	s.pos++
	return audio.Block{
		Samples:   samples,
		Index:     s.pos,
		Timestamp: s.format().Offset(s.pos),
	}, nil
}

// Depleted implements [audio.Stream].
func (s *Stream) Depleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.Live && s.pos >= len(s.Blocks)
}

// BlocksRead implements [audio.Stream].
func (s *Stream) BlocksRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Format implements [audio.Stream].
func (s *Stream) Format() audio.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format()
}

// State returns the current lifecycle state.
func (s *Stream) State() audio.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lc.State()
}

func (s *Stream) format() audio.Format {
	if s.StreamFormat != nil {
		return *s.StreamFormat
	}
	return audio.DefaultFormat
}

// Ensure Stream implements audio.Stream at compile time.
var _ audio.Stream = (*Stream)(nil)
