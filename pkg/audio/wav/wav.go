// Package wav provides a finite, file-backed [audio.Stream] that decodes WAV
// recordings with github.com/go-audio/wav.
//
// The stream reads fixed-size blocks and down-mixes them to mono. It becomes
// depleted once a read returns fewer frames than the block size; that short
// final block is still delivered to the caller.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
)

// ErrInvalidFile is returned by Open when the file is not a PCM WAV file the
// stream can decode.
var ErrInvalidFile = errors.New("wav: invalid or unsupported file")

// Option configures a [Stream].
type Option func(*Stream)

// WithBlockSize sets the number of frames per block. The default is
// [audio.DefaultFormat].BlockSize.
func WithBlockSize(n int) Option {
	return func(s *Stream) {
		if n > 0 {
			s.blockSize = n
		}
	}
}

// Stream is a file-backed [audio.Stream]. It is not safe for concurrent use.
type Stream struct {
	path      string
	blockSize int

	lc       audio.Lifecycle
	file     *os.File
	dec      *gowav.Decoder
	buf      *goaudio.IntBuffer
	format   audio.Format
	bitDepth int

	blocks   int
	lastRead int
}

// New returns a closed stream over the WAV file at path.
func New(path string, opts ...Option) *Stream {
	s := &Stream{
		path:      path,
		blockSize: audio.DefaultFormat.BlockSize,
		lastRead:  -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the file and reads its header.
func (s *Stream) Open() error {
	return s.lc.Open(func() error {
		f, err := os.Open(s.path)
		if err != nil {
			return fmt.Errorf("wav: open %q: %w", s.path, err)
		}
		dec := gowav.NewDecoder(f)
		if !dec.IsValidFile() {
			f.Close()
			return fmt.Errorf("wav: %q: %w", s.path, ErrInvalidFile)
		}
		bitDepth := int(dec.BitDepth)
		switch bitDepth {
		case 16, 24, 32:
		default:
			f.Close()
			return fmt.Errorf("wav: %q: %d-bit samples: %w", s.path, bitDepth, ErrInvalidFile)
		}
		channels := int(dec.NumChans)
		s.file = f
		s.dec = dec
		s.bitDepth = bitDepth
		s.format = audio.Format{
			SampleRate: int(dec.SampleRate),
			Channels:   channels,
			BlockSize:  s.blockSize,
		}
		s.buf = &goaudio.IntBuffer{
			Format:         dec.Format(),
			Data:           make([]int, s.blockSize*channels),
			SourceBitDepth: bitDepth,
		}
		s.blocks = 0
		s.lastRead = -1
		return nil
	})
}

// Close closes the underlying file.
func (s *Stream) Close() error {
	return s.lc.Close(func() error {
		f := s.file
		s.file, s.dec, s.buf = nil, nil, nil
		if err := f.Close(); err != nil {
			return fmt.Errorf("wav: close %q: %w", s.path, err)
		}
		return nil
	})
}

// Read decodes the next block.
func (s *Stream) Read() (audio.Block, error) {
	if err := s.lc.Require("wav: read"); err != nil {
		return audio.Block{}, err
	}
	if s.Depleted() {
		return audio.Block{}, io.EOF
	}
	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return audio.Block{}, fmt.Errorf("wav: decode %q: %w", s.path, err)
	}
	s.lastRead = n / s.format.Channels
	s.blocks++
	return audio.Block{
		Samples:   audio.IntsToFloat32(s.buf.Data[:n], s.format.Channels, s.bitDepth),
		Index:     s.blocks,
		Timestamp: s.format.Offset(s.blocks),
	}, nil
}

// Depleted reports whether the last read came up short of a full block.
func (s *Stream) Depleted() bool {
	return s.lastRead >= 0 && s.lastRead < s.blockSize
}

// BlocksRead returns the number of blocks read since the last Open.
func (s *Stream) BlocksRead() int {
	return s.blocks
}

// Format returns the stream format. SampleRate and Channels are only known
// after Open.
func (s *Stream) Format() audio.Format {
	if s.lc.State() != audio.StateOpen && s.format.BlockSize == 0 {
		return audio.Format{BlockSize: s.blockSize}
	}
	return s.format
}

// String describes the stream for log output.
func (s *Stream) String() string {
	return fmt.Sprintf("wav.Stream(path=%q, block_size=%d, state=%s, blocks_read=%d)",
		s.path, s.blockSize, s.lc.State(), s.blocks)
}

var _ audio.Stream = (*Stream)(nil)
