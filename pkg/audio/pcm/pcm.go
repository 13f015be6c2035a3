// Package pcm provides a live [audio.Stream] reading raw little-endian int16
// PCM from an [io.Reader], typically a capture tool piped into stdin:
//
//	arecord -q -f S16_LE -r 44100 -c 1 | doorbell listen --pcm -
//
// The stream is conceptually infinite. It only becomes depleted when the
// reader reports io.EOF, i.e. the capture process has exited.
package pcm

import (
	"errors"
	"fmt"
	"io"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
)

// Config describes the incoming PCM and the blocks to produce.
type Config struct {
	// Source is the format of the raw bytes on the reader.
	Source audio.Format

	// TargetRate, if non-zero and different from Source.SampleRate, resamples
	// each block to this rate.
	TargetRate int
}

// Stream is a pipe-backed live [audio.Stream]. It is not safe for concurrent
// use.
type Stream struct {
	cfg    Config
	open   func() (io.ReadCloser, error)
	lc     audio.Lifecycle
	rc     io.ReadCloser
	raw    []byte
	blocks int
	eof    bool
}

// New returns a closed stream that calls open to obtain its reader on Open.
func New(cfg Config, open func() (io.ReadCloser, error)) (*Stream, error) {
	if cfg.Source.SampleRate <= 0 {
		return nil, fmt.Errorf("pcm: sample rate must be positive, got %d", cfg.Source.SampleRate)
	}
	if cfg.Source.Channels <= 0 {
		return nil, fmt.Errorf("pcm: channels must be positive, got %d", cfg.Source.Channels)
	}
	if cfg.Source.BlockSize <= 0 {
		return nil, fmt.Errorf("pcm: block size must be positive, got %d", cfg.Source.BlockSize)
	}
	if cfg.TargetRate < 0 {
		return nil, fmt.Errorf("pcm: target rate must not be negative, got %d", cfg.TargetRate)
	}
	s := &Stream{cfg: cfg, open: open}
	if s.Format().BlockSize < 1 {
		return nil, fmt.Errorf("pcm: block size %d at %d Hz leaves no samples at %d Hz",
			cfg.Source.BlockSize, cfg.Source.SampleRate, cfg.TargetRate)
	}
	return s, nil
}

// FromReader is a convenience for New with a reader that is already open.
// Closing the stream does not close r.
func FromReader(cfg Config, r io.Reader) (*Stream, error) {
	return New(cfg, func() (io.ReadCloser, error) { return io.NopCloser(r), nil })
}

// Open obtains the reader.
func (s *Stream) Open() error {
	return s.lc.Open(func() error {
		rc, err := s.open()
		if err != nil {
			return fmt.Errorf("pcm: open: %w", err)
		}
		s.rc = rc
		s.raw = make([]byte, s.cfg.Source.BlockSize*s.cfg.Source.Channels*2)
		s.blocks = 0
		s.eof = false
		return nil
	})
}

// Close closes the reader.
func (s *Stream) Close() error {
	return s.lc.Close(func() error {
		rc := s.rc
		s.rc, s.raw = nil, nil
		return rc.Close()
	})
}

// Read blocks until a full block is available, the reader ends, or it fails.
// A partial final block is delivered before the stream reports depletion.
func (s *Stream) Read() (audio.Block, error) {
	if err := s.lc.Require("pcm: read"); err != nil {
		return audio.Block{}, err
	}
	if s.eof {
		return audio.Block{}, io.EOF
	}
	n, err := io.ReadFull(s.rc, s.raw)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
		if n == 0 {
			return audio.Block{}, io.EOF
		}
	case err != nil:
		return audio.Block{}, fmt.Errorf("pcm: read: %w", err)
	}

	mono := audio.DownmixPCM16(s.raw[:n], s.cfg.Source.Channels)
	if s.resampling() {
		mono = audio.ResampleMono16(mono, s.cfg.Source.SampleRate, s.cfg.TargetRate)
	}
	s.blocks++
	return audio.Block{
		Samples:   audio.PCM16ToFloat32(mono),
		Index:     s.blocks,
		Timestamp: s.cfg.Source.Offset(s.blocks),
	}, nil
}

// Depleted reports whether the reader has ended.
func (s *Stream) Depleted() bool {
	return s.eof
}

// BlocksRead returns the number of blocks read since the last Open.
func (s *Stream) BlocksRead() int {
	return s.blocks
}

// Format returns the format of the produced blocks. With resampling, both
// the rate and the block size are those of the resampled output.
func (s *Stream) Format() audio.Format {
	f := s.cfg.Source
	if s.resampling() {
		f.SampleRate = s.cfg.TargetRate
		f.BlockSize = int(int64(f.BlockSize) * int64(s.cfg.TargetRate) / int64(s.cfg.Source.SampleRate))
	}
	return f
}

func (s *Stream) resampling() bool {
	return s.cfg.TargetRate > 0 && s.cfg.TargetRate != s.cfg.Source.SampleRate
}

// String describes the stream for log output.
func (s *Stream) String() string {
	return fmt.Sprintf("pcm.Stream(rate=%d, channels=%d, block_size=%d, state=%s, blocks_read=%d)",
		s.cfg.Source.SampleRate, s.cfg.Source.Channels, s.cfg.Source.BlockSize, s.lc.State(), s.blocks)
}

var _ audio.Stream = (*Stream)(nil)
