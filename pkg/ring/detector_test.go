package ring_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/ring"
)

// step is the simulated duration of one confidence value at the default rate.
const step = time.Second / 86

type phaseCall struct {
	phase ring.Phase
	res   ring.PhaseResult
}

type recorder struct {
	phases []phaseCall
	cycles []bool
}

func (r *recorder) PhaseDone(_ context.Context, p ring.Phase, res ring.PhaseResult) {
	r.phases = append(r.phases, phaseCall{p, res})
}

func (r *recorder) CycleDone(_ context.Context, matched bool) {
	r.cycles = append(r.cycles, matched)
}

func newDetector(t *testing.T, in *feed, clock *simClock, opts ...ring.Option) *ring.Detector {
	t.Helper()
	opts = append([]ring.Option{ring.WithClock(clock.Now)}, opts...)
	d, err := ring.New(in, ring.DefaultParams(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestIsRinging_CleanCycle(t *testing.T) {
	t.Parallel()
	clock := newSimClock()
	in := newFeed(clock, step, concat(repeat(0.6, 155), repeat(0.1, 155), repeat(0.6, 155))...)
	rec := &recorder{}
	d := newDetector(t, in, clock, ring.WithObserver(rec))

	ringing, err := d.IsRinging(context.Background())
	if err != nil {
		t.Fatalf("IsRinging: %v", err)
	}
	if !ringing {
		t.Fatal("expected a ring")
	}
	if in.pos != 419 {
		t.Errorf("consumed %d values, want 419", in.pos)
	}

	wantSamples := []int{117, 85, 217}
	if len(rec.phases) != 3 {
		t.Fatalf("observed %d phases, want 3", len(rec.phases))
	}
	for i, pc := range rec.phases {
		if pc.phase != ring.Phase(i) {
			t.Errorf("phase %d reported as %v", i, pc.phase)
		}
		if pc.res.Outcome != ring.Matched {
			t.Errorf("%v: outcome %v, want matched", pc.phase, pc.res.Outcome)
		}
		if pc.res.Samples != wantSamples[i] {
			t.Errorf("%v: %d samples, want %d", pc.phase, pc.res.Samples, wantSamples[i])
		}
	}
	if len(rec.cycles) != 1 || !rec.cycles[0] {
		t.Errorf("cycles = %v, want [true]", rec.cycles)
	}
}

func TestIsRinging_FailedAttemptDoesNotRewind(t *testing.T) {
	t.Parallel()
	clock := newSimClock()
	// A long tone rings the first phase, then never leaves the band long
	// enough for a gap. The gap times out after ceil(3.6s / step) = 310
	// values, which ends exactly where the long tone ends.
	in := newFeed(clock, step, concat(
		repeat(0.6, 427),
		repeat(0.6, 155), repeat(0.1, 155), repeat(0.6, 155),
	)...)
	rec := &recorder{}
	d := newDetector(t, in, clock, ring.WithObserver(rec))

	ringing, err := d.IsRinging(context.Background())
	if err != nil {
		t.Fatalf("IsRinging: %v", err)
	}
	if !ringing {
		t.Fatal("expected a ring on the second attempt")
	}
	if in.pos != 427+419 {
		t.Errorf("consumed %d values, want %d", in.pos, 427+419)
	}

	if len(rec.cycles) != 2 || rec.cycles[0] || !rec.cycles[1] {
		t.Errorf("cycles = %v, want [false true]", rec.cycles)
	}
	if len(rec.phases) < 2 {
		t.Fatalf("observed %d phases", len(rec.phases))
	}
	gap := rec.phases[1]
	if gap.phase != ring.Gap || gap.res.Outcome != ring.TimedOut || gap.res.Samples != 310 {
		t.Errorf("first gap: %v %v after %d, want gap timed_out after 310", gap.phase, gap.res.Outcome, gap.res.Samples)
	}
}

func TestIsRinging_ExhaustedWithoutRing(t *testing.T) {
	t.Parallel()
	clock := newSimClock()
	in := newFeed(clock, step, repeat(0.1, 500)...)
	rec := &recorder{}
	d := newDetector(t, in, clock, ring.WithObserver(rec))

	ringing, err := d.IsRinging(context.Background())
	if err != nil {
		t.Fatalf("IsRinging: %v", err)
	}
	if ringing {
		t.Fatal("silence must not ring")
	}
	if in.pos != 500 {
		t.Errorf("consumed %d values, want 500", in.pos)
	}
	if len(rec.phases) != 1 || rec.phases[0].res.Outcome != ring.StreamEnded {
		t.Errorf("phases = %+v, want a single stream_ended first ring", rec.phases)
	}
	if in.opens != 1 || in.closes != 1 || in.lc.State() != audio.StateClosed {
		t.Errorf("opens=%d closes=%d state=%v, want one of each and closed", in.opens, in.closes, in.lc.State())
	}
}

func TestIsRinging_EndsDuringGap(t *testing.T) {
	t.Parallel()
	clock := newSimClock()
	in := newFeed(clock, step, repeat(0.6, 200)...)
	d := newDetector(t, in, clock)

	ringing, err := d.IsRinging(context.Background())
	if err != nil || ringing {
		t.Fatalf("got %v, %v; want false, nil", ringing, err)
	}
	if !in.Exhausted() {
		t.Error("input should be exhausted")
	}
}

func TestIsRinging_EmptyInput(t *testing.T) {
	t.Parallel()
	clock := newSimClock()
	in := newFeed(clock, step)
	rec := &recorder{}
	d := newDetector(t, in, clock, ring.WithObserver(rec))

	ringing, err := d.IsRinging(context.Background())
	if err != nil || ringing {
		t.Fatalf("got %v, %v; want false, nil", ringing, err)
	}
	if len(rec.phases) != 0 {
		t.Errorf("no phase should run on an empty input, got %d", len(rec.phases))
	}
	if in.opens != 1 || in.closes != 1 {
		t.Errorf("opens=%d closes=%d, want 1 and 1", in.opens, in.closes)
	}
}

func TestIsRinging_LifecycleErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")

	t.Run("open fails", func(t *testing.T) {
		clock := newSimClock()
		in := newFeed(clock, step, 0.6)
		in.openErr = boom
		d := newDetector(t, in, clock)
		ringing, err := d.IsRinging(context.Background())
		if !errors.Is(err, boom) || ringing {
			t.Fatalf("got %v, %v; want false, boom", ringing, err)
		}
		if in.closes != 0 || in.pos != 0 {
			t.Errorf("closes=%d consumed=%d, want neither", in.closes, in.pos)
		}
	})

	t.Run("close fails after ring", func(t *testing.T) {
		clock := newSimClock()
		in := newFeed(clock, step, concat(repeat(0.6, 155), repeat(0.1, 155), repeat(0.6, 155))...)
		in.closeErr = boom
		d := newDetector(t, in, clock)
		ringing, err := d.IsRinging(context.Background())
		if !errors.Is(err, boom) {
			t.Fatalf("got %v, want boom", err)
		}
		if ringing {
			t.Error("a failed close is reported as an error, not a ring")
		}
		if in.lc.State() != audio.StateClosed {
			t.Errorf("state = %v, want closed", in.lc.State())
		}
	})

	t.Run("next fails", func(t *testing.T) {
		clock := newSimClock()
		in := newFeed(clock, step, 0.6)
		in.nextErr = boom
		d := newDetector(t, in, clock)
		_, err := d.IsRinging(context.Background())
		if !errors.Is(err, boom) {
			t.Fatalf("got %v, want boom", err)
		}
		if in.closes != 1 {
			t.Errorf("closes = %d, want 1", in.closes)
		}
	})

	t.Run("already open", func(t *testing.T) {
		clock := newSimClock()
		in := newFeed(clock, step, 0.6)
		if err := in.Open(); err != nil {
			t.Fatal(err)
		}
		d := newDetector(t, in, clock)
		_, err := d.IsRinging(context.Background())
		if !errors.Is(err, audio.ErrAlreadyOpen) {
			t.Fatalf("got %v, want ErrAlreadyOpen", err)
		}
		if in.lc.State() != audio.StateOpen {
			t.Error("a rejected Open must leave the caller's input open")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		clock := newSimClock()
		in := newFeed(clock, step, repeat(0.1, 10)...)
		d := newDetector(t, in, clock)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := d.IsRinging(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want context.Canceled", err)
		}
		if in.closes != 1 {
			t.Errorf("closes = %d, want 1", in.closes)
		}
	})
}

func TestNew_RejectsInvalidParams(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*ring.Params)
		want   error
	}{
		{"zero rate", func(p *ring.Params) { p.ConfidencesPerSecond = 0 }, ring.ErrInvalidRate},
		{"inverted band", func(p *ring.Params) { p.MinRingingConfidence = 0.9 }, ring.ErrInvalidBand},
		{"empty ringing window", func(p *ring.Params) { p.RingingSeconds = 0.001 }, ring.ErrEmptyWindow},
		{"empty gap window", func(p *ring.Params) { p.GapSeconds = 0 }, ring.ErrEmptyWindow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := ring.DefaultParams()
			tc.mutate(&p)
			d, err := ring.New(newFeed(nil, 0), p)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if d != nil {
				t.Error("detector returned alongside error")
			}
		})
	}
}

func TestParams_ValidateJoinsErrors(t *testing.T) {
	t.Parallel()
	p := ring.DefaultParams()
	p.RingingSeconds = 0
	p.MinRingingConfidence = 0.9
	err := p.Validate()
	if !errors.Is(err, ring.ErrEmptyWindow) || !errors.Is(err, ring.ErrInvalidBand) {
		t.Errorf("got %v, want both window and band errors", err)
	}
}

func TestParams_Phases(t *testing.T) {
	t.Parallel()
	phases := ring.DefaultParams().Phases()

	if d, ok := phases[ring.FirstRing].Deadline.Duration(); ok {
		t.Errorf("first ring deadline = %v, want none", d)
	}
	if d, _ := phases[ring.Gap].Deadline.Duration(); d != 3600*time.Millisecond {
		t.Errorf("gap deadline = %v, want 3.6s", d)
	}
	if d, _ := phases[ring.SecondRing].Deadline.Duration(); d != 3600*time.Millisecond {
		t.Errorf("second ring deadline = %v, want 3.6s", d)
	}
	if phases[ring.Gap].Polarity != ring.Outside || phases[ring.FirstRing].Polarity != ring.Inside {
		t.Error("unexpected polarities")
	}
	if got := phases[ring.Gap].Seed; got < 0.599 || got > 0.601 {
		t.Errorf("gap seed = %v, want band mid 0.6", got)
	}
	if phases[ring.FirstRing].Seed != 0 || phases[ring.SecondRing].Seed != 0 {
		t.Error("ring phases must be seeded with zero")
	}
}

func TestIsRinging_Spans(t *testing.T) {
	t.Parallel()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	clock := newSimClock()
	in := newFeed(clock, step, concat(repeat(0.6, 155), repeat(0.1, 155), repeat(0.6, 155))...)
	d := newDetector(t, in, clock, ring.WithTracer(tp.Tracer("test")))
	if _, err := d.IsRinging(context.Background()); err != nil {
		t.Fatalf("IsRinging: %v", err)
	}

	spans := exp.GetSpans()
	var phases, roots int
	for _, s := range spans {
		switch s.Name {
		case "ring.phase":
			phases++
		case "ring.IsRinging":
			roots++
		}
	}
	if roots != 1 || phases != 3 {
		t.Errorf("got %d root and %d phase spans, want 1 and 3", roots, phases)
	}
}

func TestStringers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		got, want string
	}{
		{ring.FirstRing.String(), "first_ring"},
		{ring.Gap.String(), "gap"},
		{ring.SecondRing.String(), "second_ring"},
		{ring.Matched.String(), "matched"},
		{ring.TimedOut.String(), "timed_out"},
		{ring.StreamEnded.String(), "stream_ended"},
		{ring.Inside.String(), "inside"},
		{ring.Outside.String(), "outside"},
		{ring.NoDeadline.String(), "none"},
		{ring.After(2 * time.Second).String(), "2s"},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}

	d, err := ring.New(newFeed(nil, 0), ring.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if s := d.String(); !strings.Contains(s, "rate=86/s") {
		t.Errorf("String() = %q, want the rate", s)
	}
}
