// Package observe provides application-wide observability primitives for the
// doorbell detector: OpenTelemetry metrics, tracing, trace-aware logging and a
// Prometheus textfile export.
//
// [Metrics] implements [ring.Observer], so it can be passed straight to
// [ring.WithObserver]. Each command builds its own with [NewMetrics].
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/ring"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/sam-brownlow/remote-doorbell-intercom"

var _ ring.Observer = (*Metrics)(nil)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// PhaseDuration tracks wall-clock time per phase attempt. Attributes:
	//   attribute.String("phase", ...), attribute.String("outcome", ...)
	PhaseDuration metric.Float64Histogram

	// PhaseOutcomes counts phase attempts by phase and outcome.
	PhaseOutcomes metric.Int64Counter

	// ConfidencesConsumed counts confidence values pulled from inputs.
	ConfidencesConsumed metric.Int64Counter

	// CycleAttempts counts ring-gap-ring attempts. Attribute:
	//   attribute.Bool("matched", ...)
	CycleAttempts metric.Int64Counter

	// RingsDetected counts completed ring cycles.
	RingsDetected metric.Int64Counter

	// Notifications counts notify hook runs. Attribute:
	//   attribute.String("status", "ok" | "error")
	Notifications metric.Int64Counter

	// ActiveDetections tracks detections currently holding an input open.
	ActiveDetections metric.Int64UpDownCounter
}

// phaseBuckets are histogram boundaries in seconds. Phases last from a
// fraction of a second (ring onset) to many minutes (waiting for a first ring).
var phaseBuckets = []float64{
	0.1, 0.5, 1, 1.8, 2.5, 3.6, 5, 10, 30, 60, 300, 1800,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.PhaseDuration, err = m.Float64Histogram("doorbell.phase.duration",
		metric.WithDescription("Wall-clock duration of ring cycle phase attempts."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(phaseBuckets...),
	); err != nil {
		return nil, err
	}

	if met.PhaseOutcomes, err = m.Int64Counter("doorbell.phase.outcomes",
		metric.WithDescription("Phase attempts by phase and outcome."),
	); err != nil {
		return nil, err
	}
	if met.ConfidencesConsumed, err = m.Int64Counter("doorbell.confidences.consumed",
		metric.WithDescription("Confidence values consumed by detectors."),
	); err != nil {
		return nil, err
	}
	if met.CycleAttempts, err = m.Int64Counter("doorbell.cycle.attempts",
		metric.WithDescription("Ring-gap-ring cycle attempts by result."),
	); err != nil {
		return nil, err
	}
	if met.RingsDetected, err = m.Int64Counter("doorbell.rings.detected",
		metric.WithDescription("Completed ring cycles."),
	); err != nil {
		return nil, err
	}
	if met.Notifications, err = m.Int64Counter("doorbell.notify.runs",
		metric.WithDescription("Notify hook runs by status."),
	); err != nil {
		return nil, err
	}

	if met.ActiveDetections, err = m.Int64UpDownCounter("doorbell.active_detections",
		metric.WithDescription("Detections currently holding an input open."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// PhaseDone implements [ring.Observer].
func (m *Metrics) PhaseDone(ctx context.Context, phase ring.Phase, res ring.PhaseResult) {
	attrs := metric.WithAttributes(
		attribute.String("phase", phase.String()),
		attribute.String("outcome", res.Outcome.String()),
	)
	m.PhaseOutcomes.Add(ctx, 1, attrs)
	m.PhaseDuration.Record(ctx, res.Elapsed.Seconds(), attrs)
	m.ConfidencesConsumed.Add(ctx, int64(res.Samples))
}

// CycleDone implements [ring.Observer].
func (m *Metrics) CycleDone(ctx context.Context, matched bool) {
	m.CycleAttempts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("matched", matched)))
	if matched {
		m.RingsDetected.Add(ctx, 1)
	}
}

// RecordNotification records a notify hook run.
func (m *Metrics) RecordNotification(ctx context.Context, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Notifications.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// TrackDetection increments [Metrics.ActiveDetections] and returns a func
// that decrements it.
func (m *Metrics) TrackDetection(ctx context.Context) (done func()) {
	m.ActiveDetections.Add(ctx, 1)
	return func() { m.ActiveDetections.Add(ctx, -1) }
}
