package ring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/confidence"
)

const tracerName = "github.com/sam-brownlow/remote-doorbell-intercom/pkg/ring"

// Option configures a [Detector].
type Option func(*Detector)

// WithClock replaces [time.Now] for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.phase.Now = now
		}
	}
}

// WithObserver registers an observer for phase and cycle results.
func WithObserver(o Observer) Option {
	return func(d *Detector) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithTracer sets the tracer used for detection spans. The default is the
// global OTel tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(d *Detector) {
		if t != nil {
			d.tracer = t
		}
	}
}

// Detector recognises one full ring-gap-ring cycle in a confidence input.
// It is not safe for concurrent use; each detection owns its input exclusively.
type Detector struct {
	input    confidence.Input
	params   Params
	phases   [3]PhaseSpec
	phase    PhaseDetector
	observer Observer
	tracer   trace.Tracer
}

// New validates params and returns a detector reading from input.
func New(input confidence.Input, params Params, opts ...Option) (*Detector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	d := &Detector{
		input:    input,
		params:   params,
		phases:   params.Phases(),
		observer: nopObserver{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Params returns the detector's parameters.
func (d *Detector) Params() Params {
	return d.params
}

// IsRinging opens the input, consumes it until a full cycle is detected or it
// is exhausted, and closes it again on every exit path.
//
// A failed attempt does not rewind the input: the next attempt starts at the
// first value after the one that ended the failed phase. Each value is
// therefore consumed at most once per call.
//
// The result is false with a nil error when the input ends without a ring.
// Errors come from the input's lifecycle, source failures or ctx.
func (d *Detector) IsRinging(ctx context.Context) (bool, error) {
	ctx, span := d.tracer.Start(ctx, "ring.IsRinging")
	defer span.End()

	ringing := false
	err := audio.Use(d.input, func() error {
		slog.Debug("opened confidence input", "input", d.input)
		for !d.input.Exhausted() {
			matched, ended, err := d.attempt(ctx)
			if err != nil {
				return err
			}
			if matched {
				slog.Info("the ring has been detected", "input", d.input)
				ringing = true
				return nil
			}
			if ended {
				return nil
			}
		}
		return nil
	})
	span.SetAttributes(attribute.Bool("ringing", ringing))
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("ring: detect: %w", err)
	}
	return ringing, nil
}

// attempt runs one ring-gap-ring cycle from the current input position.
func (d *Detector) attempt(ctx context.Context) (matched, ended bool, err error) {
	defer func() {
		if err == nil {
			d.observer.CycleDone(ctx, matched)
		}
	}()
	for i, spec := range d.phases {
		res, err := d.runPhase(ctx, Phase(i), spec)
		if err != nil {
			return false, false, err
		}
		if res.Outcome != Matched {
			return false, res.Outcome == StreamEnded, nil
		}
	}
	return true, false, nil
}

func (d *Detector) runPhase(ctx context.Context, phase Phase, spec PhaseSpec) (PhaseResult, error) {
	ctx, span := d.tracer.Start(ctx, "ring.phase", trace.WithAttributes(
		attribute.String("phase", phase.String()),
		attribute.String("polarity", spec.Polarity.String()),
		attribute.String("deadline", spec.Deadline.String()),
	))
	defer span.End()

	res, err := d.phase.Detect(ctx, d.input, spec)
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	span.SetAttributes(
		attribute.String("outcome", res.Outcome.String()),
		attribute.Int("samples", res.Samples),
	)
	slog.Debug("phase finished",
		"phase", phase,
		"outcome", res.Outcome,
		"samples", res.Samples,
		"mean", res.Mean,
		"elapsed", res.Elapsed,
	)
	d.observer.PhaseDone(ctx, phase, res)
	return res, nil
}

// String describes the detector for log output.
func (d *Detector) String() string {
	return fmt.Sprintf("ring.Detector(input=%v, params=%v)", d.input, d.params)
}
