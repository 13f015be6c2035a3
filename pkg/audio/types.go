package audio

import "time"

// Block is a single analysis block of mono audio.
type Block struct {
	// Samples holds mono samples normalised to [-1, 1].
	Samples []float32

	// Index is the 1-based position of this block in its stream.
	Index int

	// Timestamp is the offset of the block's first sample from stream start.
	Timestamp time.Duration
}

// Format describes the blocks a [Stream] produces.
type Format struct {
	// SampleRate in Hz (e.g. 44100).
	SampleRate int

	// Channels of the underlying source before down-mixing.
	Channels int

	// BlockSize is the number of frames per block.
	BlockSize int
}

// DefaultFormat matches the capture defaults used for doorbell detection:
// 44.1 kHz mono in 1024-frame blocks.
var DefaultFormat = Format{SampleRate: 44100, Channels: 1, BlockSize: 1024}

// BlockDuration returns the wall-clock span of one full block.
func (f Format) BlockDuration() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(f.BlockSize) * time.Second / time.Duration(f.SampleRate)
}

// Offset returns the timestamp of the block with the given 1-based index.
func (f Format) Offset(index int) time.Duration {
	if index <= 1 {
		return 0
	}
	return time.Duration(index-1) * f.BlockDuration()
}
