package lightcurve

import (
	"math"

	"transitvet/domain/core"
)

// Series is a sampled brightness time series. Time and Flux are index-aligned;
// Unc is optional per-point uncertainty (nil means unknown, treated as uniform
// at fit time). Times are in days on whatever offset the survey uses; callers
// are responsible for keeping epochs on the same offset.
type Series struct {
	Time []float64 `json:"time"`
	Flux []float64 `json:"flux"`
	Unc  []float64 `json:"unc,omitempty"`
}

// NewSeries creates a series with shape validation
func NewSeries(times, flux, unc []float64) (*Series, error) {
	if len(times) == 0 {
		return nil, core.ErrEmptySeries
	}
	if len(flux) != len(times) {
		return nil, core.NewLengthMismatchError("flux", len(times), len(flux))
	}
	if unc != nil && len(unc) != len(times) {
		return nil, core.NewLengthMismatchError("unc", len(times), len(unc))
	}
	return &Series{Time: times, Flux: flux, Unc: unc}, nil
}

// Len returns the number of cadences
func (s *Series) Len() int {
	return len(s.Time)
}

// HasUnc reports whether per-point uncertainties are present
func (s *Series) HasUnc() bool {
	return s.Unc != nil
}

// Hash fingerprints the series for report provenance
func (s *Series) Hash() core.SeriesHash {
	return core.ComputeSeriesHash(s.Time, s.Flux)
}

// FiniteSubset returns a copy keeping only cadences where time, flux, and
// uncertainty (when present) are all finite. The original slices are untouched.
func (s *Series) FiniteSubset() *Series {
	out := &Series{
		Time: make([]float64, 0, len(s.Time)),
		Flux: make([]float64, 0, len(s.Flux)),
	}
	if s.Unc != nil {
		out.Unc = make([]float64, 0, len(s.Unc))
	}
	for i := range s.Time {
		if !isFinite(s.Time[i]) || !isFinite(s.Flux[i]) {
			continue
		}
		if s.Unc != nil && !isFinite(s.Unc[i]) {
			continue
		}
		out.Time = append(out.Time, s.Time[i])
		out.Flux = append(out.Flux, s.Flux[i])
		if s.Unc != nil {
			out.Unc = append(out.Unc, s.Unc[i])
		}
	}
	return out
}

// Fold maps each time onto phase in [0, period) days relative to epoch
func (s *Series) Fold(periodDays, epochDays float64) []float64 {
	return FoldTimes(s.Time, periodDays, epochDays)
}

// FoldTimes maps times onto phase in [0, period) days relative to epoch.
// math.Mod keeps the sign of the dividend, so one period is added up front
// to land times a little before the epoch on the positive side.
func FoldTimes(times []float64, periodDays, epochDays float64) []float64 {
	phase := make([]float64, len(times))
	for i, t := range times {
		phase[i] = math.Mod(t-epochDays+periodDays, periodDays)
	}
	return phase
}

// Select returns a copy keeping only cadences where keep[i] is true.
// The mask must align with the series.
func (s *Series) Select(keep []bool) (*Series, error) {
	if len(keep) != s.Len() {
		return nil, core.NewLengthMismatchError("mask", s.Len(), len(keep))
	}
	out := &Series{}
	if s.Unc != nil {
		out.Unc = []float64{}
	}
	for i, k := range keep {
		if !k {
			continue
		}
		out.Time = append(out.Time, s.Time[i])
		out.Flux = append(out.Flux, s.Flux[i])
		if s.Unc != nil {
			out.Unc = append(out.Unc, s.Unc[i])
		}
	}
	return out, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
