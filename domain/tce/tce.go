package tce

import (
	"math"

	"transitvet/domain/core"
)

// Tce is a threshold crossing event: the ephemeris of a candidate transit
// signal reported by a survey pipeline. Times are in days and must share the
// offset of whatever lightcurve the event is vetted against.
type Tce struct {
	Target       core.TargetKey `json:"target,omitempty"`
	PeriodDays   float64        `json:"period_days"`
	EpochDays    float64        `json:"epoch_days"`
	DurationDays float64        `json:"duration_days"`
	Depth        float64        `json:"depth,omitempty"` // fractional, 0.01 = 1%
}

// New creates a validated Tce
func New(target core.TargetKey, periodDays, epochDays, durationDays, depth float64) (*Tce, error) {
	t := &Tce{
		Target:       target,
		PeriodDays:   periodDays,
		EpochDays:    epochDays,
		DurationDays: durationDays,
		Depth:        depth,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the ephemeris invariants
func (t *Tce) Validate() error {
	if !isFinite(t.PeriodDays) || t.PeriodDays <= 0 {
		return core.NewEphemerisError("period_days", t.PeriodDays)
	}
	if !isFinite(t.EpochDays) {
		return core.NewEphemerisError("epoch_days", t.EpochDays)
	}
	if !isFinite(t.DurationDays) || t.DurationDays <= 0 {
		return core.NewEphemerisError("duration_days", t.DurationDays)
	}
	if t.DurationDays >= t.PeriodDays {
		return core.NewEphemerisError("duration_days", t.DurationDays)
	}
	if !isFinite(t.Depth) || t.Depth < 0 {
		return core.NewEphemerisError("depth", t.Depth)
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
