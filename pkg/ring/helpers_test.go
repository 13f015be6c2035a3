package ring_test

import (
	"io"
	"time"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
)

// simClock is a simulated wall clock that advances only when told to.
type simClock struct {
	t time.Time
}

func newSimClock() *simClock {
	return &simClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *simClock) Now() time.Time { return c.t }

// feed is a confidence input that advances a simulated clock by step on every
// value it hands out, modelling a real-time producer.
type feed struct {
	lc     audio.Lifecycle
	values []float64
	pos    int
	clock  *simClock
	step   time.Duration

	openErr, closeErr error
	nextErr           error

	opens, closes int
	eofPulls      int
}

func newFeed(clock *simClock, step time.Duration, values ...float64) *feed {
	return &feed{values: values, clock: clock, step: step}
}

func (f *feed) Open() error {
	f.opens++
	return f.lc.Open(func() error { return f.openErr })
}

func (f *feed) Close() error {
	f.closes++
	return f.lc.Close(func() error { return f.closeErr })
}

func (f *feed) Next() (float64, error) {
	if f.nextErr != nil {
		return 0, f.nextErr
	}
	if f.pos >= len(f.values) {
		f.eofPulls++
		return 0, io.EOF
	}
	v := f.values[f.pos]
	f.pos++
	if f.clock != nil {
		f.clock.t = f.clock.t.Add(f.step)
	}
	return v, nil
}

func (f *feed) Exhausted() bool { return f.pos >= len(f.values) }

// repeat returns n copies of v.
func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// concat joins value runs.
func concat(runs ...[]float64) []float64 {
	var out []float64
	for _, r := range runs {
		out = append(out, r...)
	}
	return out
}
