package testkit

import (
	"math"
	"math/rand"

	"transitvet/domain/lightcurve"
	"transitvet/domain/tce"
)

// Generator produces deterministic synthetic lightcurves for tests and the
// demo mode. All randomness flows from the seed, so a failing case can be
// replayed exactly.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with a fixed seed for reproducibility
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// FlatSeries returns n evenly sampled cadences of unit flux
func (g *Generator) FlatSeries(n int, startDay, cadenceDays float64) *lightcurve.Series {
	times := make([]float64, n)
	flux := make([]float64, n)
	for i := range times {
		times[i] = startDay + float64(i)*cadenceDays
		flux[i] = 1.0
	}
	return &lightcurve.Series{Time: times, Flux: flux}
}

// AddNoise adds Gaussian noise with the given sigma to every flux sample
func (g *Generator) AddNoise(s *lightcurve.Series, sigma float64) {
	for i := range s.Flux {
		s.Flux[i] += g.rng.NormFloat64() * sigma
	}
}

// AddSinusoid adds amp*sin(2*pi*(t-epoch)/period) to the flux
func (g *Generator) AddSinusoid(s *lightcurve.Series, periodDays, epochDays, amp float64) {
	for i, t := range s.Time {
		s.Flux[i] += amp * math.Sin(2*math.Pi*(t-epochDays)/periodDays)
	}
}

// InjectTransits drops the flux by the ephemeris depth within half a duration
// of every transit center covered by the series
func (g *Generator) InjectTransits(s *lightcurve.Series, eph tce.Tce) {
	if s.Len() == 0 {
		return
	}
	minT, maxT := s.Time[0], s.Time[0]
	for _, t := range s.Time {
		if t < minT {
			minT = t
		}
		if t > maxT {
			maxT = t
		}
	}
	k0 := math.Floor((minT - eph.EpochDays) / eph.PeriodDays)
	k1 := math.Ceil((maxT - eph.EpochDays) / eph.PeriodDays)
	for k := k0; k <= k1; k++ {
		center := eph.EpochDays + k*eph.PeriodDays
		for i, t := range s.Time {
			if math.Abs(t-center) < 0.5*eph.DurationDays {
				s.Flux[i] -= eph.Depth
			}
		}
	}
}

// SaltNaNs replaces every stride-th flux sample with NaN
func (g *Generator) SaltNaNs(s *lightcurve.Series, stride int) {
	if stride < 1 {
		return
	}
	for i := stride - 1; i < len(s.Flux); i += stride {
		s.Flux[i] = math.NaN()
	}
}
