package ring

import (
	"errors"
	"fmt"
	"time"
)

// Params are the tunables of a [Detector]. They are fixed for the detector's
// lifetime.
type Params struct {
	// MinRingingConfidence is the lower bound of the ringing band.
	MinRingingConfidence float64

	// MaxRingingConfidence is the upper bound of the ringing band.
	MaxRingingConfidence float64

	// ConfidencesPerSecond is how many confidence values cover one second
	// of audio.
	ConfidencesPerSecond int

	// RingingSeconds is how long the mean must stay in band to count as a ring.
	RingingSeconds float64

	// GapSeconds is how long the mean must stay out of band to count as a gap.
	GapSeconds float64

	// MaxWaitGapMultiple bounds the gap phase to GapSeconds times this value.
	MaxWaitGapMultiple float64

	// MaxWaitSubsequentRingMultiple bounds the second ring phase to
	// RingingSeconds times this value.
	MaxWaitSubsequentRingMultiple float64
}

// DefaultParams returns parameters tuned for an Aiphone GT-1A intercom.
func DefaultParams() Params {
	return Params{
		MinRingingConfidence:          0.45,
		MaxRingingConfidence:          0.75,
		ConfidencesPerSecond:          86,
		RingingSeconds:                1.8,
		GapSeconds:                    1.8,
		MaxWaitGapMultiple:            2,
		MaxWaitSubsequentRingMultiple: 2,
	}
}

// Band returns the ringing band.
func (p Params) Band() Band {
	return Band{Min: p.MinRingingConfidence, Max: p.MaxRingingConfidence}
}

// Phases derives the three phase specs of a cycle attempt.
func (p Params) Phases() [3]PhaseSpec {
	band := p.Band()
	return [3]PhaseSpec{
		FirstRing: {
			Band:             band,
			Polarity:         Inside,
			WindowSeconds:    p.RingingSeconds,
			SamplesPerSecond: p.ConfidencesPerSecond,
			Seed:             0,
			Deadline:         NoDeadline,
		},
		Gap: {
			Band:             band,
			Polarity:         Outside,
			WindowSeconds:    p.GapSeconds,
			SamplesPerSecond: p.ConfidencesPerSecond,
			Seed:             band.Mid(),
			Deadline:         After(seconds(p.GapSeconds * p.MaxWaitGapMultiple)),
		},
		SecondRing: {
			Band:             band,
			Polarity:         Inside,
			WindowSeconds:    p.RingingSeconds,
			SamplesPerSecond: p.ConfidencesPerSecond,
			Seed:             0,
			Deadline:         After(seconds(p.RingingSeconds * p.MaxWaitSubsequentRingMultiple)),
		},
	}
}

// Validate reports every configuration problem.
func (p Params) Validate() error {
	var errs []error
	if p.ConfidencesPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidRate, p.ConfidencesPerSecond))
	} else {
		for i, spec := range p.Phases() {
			if _, err := spec.WindowSize(); err != nil {
				errs = append(errs, fmt.Errorf("%s phase: %w", Phase(i), err))
			}
		}
	}
	if err := p.Band().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// String describes the parameters for log output.
func (p Params) String() string {
	return fmt.Sprintf("ring.Params(band=[%g, %g], rate=%d/s, ringing=%gs, gap=%gs, gap_wait=x%g, ring_wait=x%g)",
		p.MinRingingConfidence, p.MaxRingingConfidence, p.ConfidencesPerSecond,
		p.RingingSeconds, p.GapSeconds, p.MaxWaitGapMultiple, p.MaxWaitSubsequentRingMultiple)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
