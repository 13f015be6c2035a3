package ring

import "context"

// Observer receives detection progress. Implementations must not block; they
// run on the detecting goroutine between samples.
type Observer interface {
	// PhaseDone is called after every phase attempt.
	PhaseDone(ctx context.Context, phase Phase, res PhaseResult)

	// CycleDone is called after every cycle attempt, successful or not.
	CycleDone(ctx context.Context, matched bool)
}

type nopObserver struct{}

func (nopObserver) PhaseDone(context.Context, Phase, PhaseResult) {}
func (nopObserver) CycleDone(context.Context, bool)               {}
