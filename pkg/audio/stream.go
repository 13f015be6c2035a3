// Package audio defines the capture-side abstractions used by the doorbell
// detector: a block-oriented [Stream] with an explicit open/closed
// [Lifecycle], and helpers for converting raw PCM into analysis-ready blocks.
//
// Concrete streams live in subpackages:
//
//   - audio/wav: a finite, file-backed stream decoding WAV recordings.
//   - audio/pcm: a live stream reading raw s16le PCM from a pipe.
//
// Streams are not safe for concurrent use. A single consumer opens a stream,
// reads blocks until it is depleted, and closes it.
package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyOpen is returned when opening a resource that is already open.
	ErrAlreadyOpen = errors.New("audio: resource already open")

	// ErrNotOpen is returned when reading from or closing a resource that is
	// not open.
	ErrNotOpen = errors.New("audio: resource not open")
)

// Resource is anything with a scoped open/close lifecycle.
type Resource interface {
	// Open acquires the underlying resource. Opening an already-open resource
	// returns [ErrAlreadyOpen].
	Open() error

	// Close releases the underlying resource. Closing a resource that is not
	// open returns [ErrNotOpen].
	Close() error
}

// Stream is a source of fixed-size audio blocks.
//
// After Open, Read returns consecutive blocks until Depleted reports true;
// further reads return io.EOF. A file-backed stream becomes depleted when the
// media ends. A live stream is conceptually infinite.
type Stream interface {
	Resource

	// Read returns the next block. The returned block's Index equals
	// BlocksRead after the call.
	Read() (Block, error)

	// Depleted reports whether the stream has no further blocks to offer.
	Depleted() bool

	// BlocksRead returns the number of blocks returned by Read since
	// construction.
	BlocksRead() int

	// Format describes the blocks produced by Read.
	Format() Format
}

// Use opens r, runs fn and closes r on every exit path. A close failure is
// joined with the error returned by fn.
func Use(r Resource, fn func() error) (err error) {
	if err := r.Open(); err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn()
}

// State is the lifecycle state of a [Resource].
type State int

const (
	// StateClosed is the initial state and the state after Close.
	StateClosed State = iota

	// StateOpen is entered by a successful Open.
	StateOpen
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Lifecycle enforces the two-state open/closed protocol for a resource.
// Embed it in a concrete resource and route Open/Close through it.
// The zero value is closed.
type Lifecycle struct {
	state State
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	return l.state
}

// Open runs acquire and transitions to [StateOpen] if it succeeds.
// If the resource is already open, acquire is not called.
func (l *Lifecycle) Open(acquire func() error) error {
	if l.state == StateOpen {
		return ErrAlreadyOpen
	}
	if acquire != nil {
		if err := acquire(); err != nil {
			return err
		}
	}
	l.state = StateOpen
	return nil
}

// Close transitions to [StateClosed] and runs release. The state changes even
// if release fails, so a failed release is never retried by a later Close.
func (l *Lifecycle) Close(release func() error) error {
	if l.state != StateOpen {
		return ErrNotOpen
	}
	l.state = StateClosed
	if release != nil {
		return release()
	}
	return nil
}

// Require returns [ErrNotOpen] unless the resource is open.
func (l *Lifecycle) Require(op string) error {
	if l.state != StateOpen {
		return fmt.Errorf("%s: %w", op, ErrNotOpen)
	}
	return nil
}
