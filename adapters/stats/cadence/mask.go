package cadence

import (
	"fmt"
	"math"

	"transitvet/domain/core"
	"transitvet/domain/tce"
	"transitvet/internal/logging"
)

var logger = logging.Default.WithComponent("cadence")

// MaskOptions tunes MarkTransits. The zero value is valid: a single transit
// duration wide window and no pre-flagged cadences.
type MaskOptions struct {
	NumDurations float64 // window width in transit durations, <= 0 means 1
	Flags        []bool  // cadences to ignore, aligned with times
}

// MarkTransits flags every cadence within half a (scaled) transit duration of
// any transit center the ephemeris implies across the observed span. Flagged
// input cadences are never matched; they are pushed to the far end of the
// number line instead of being dropped so the returned mask stays aligned with
// times. Finding no in-transit cadence is reported as a warning, not an error:
// an ephemeris can legitimately place every transit in a data gap.
func MarkTransits(times []float64, eph tce.Tce, opts MaskOptions) ([]bool, error) {
	if err := eph.Validate(); err != nil {
		return nil, err
	}
	flags := opts.Flags
	if flags == nil {
		flags = make([]bool, len(times))
	} else if len(flags) != len(times) {
		return nil, core.NewLengthMismatchError("flags", len(times), len(flags))
	}
	numDurations := opts.NumDurations
	if numDurations <= 0 {
		numDurations = 1
	}

	// Cycle indices of the first and last transit overlapping the valid span
	minT, maxT, any := boundsOf(times, flags)
	if !any {
		return nil, fmt.Errorf("%w: no unflagged cadences", core.ErrTransitBounds)
	}
	i0 := math.Floor((minT - eph.EpochDays) / eph.PeriodDays)
	i1 := math.Ceil((maxT - eph.EpochDays) / eph.PeriodDays)
	if !isFinite(i0) || !isFinite(i1) {
		return nil, fmt.Errorf("%w: cycle bounds [%g, %g]", core.ErrTransitBounds, i0, i1)
	}

	// Flagged cadences get a sentinel offset no window can reach
	const bigNum = math.MaxFloat64
	maxDiff := 0.5 * eph.DurationDays * numDurations

	mask := make([]bool, len(times))
	for k := int64(i0); k <= int64(i1); k++ {
		tt := eph.EpochDays + eph.PeriodDays*float64(k)
		for i, t := range times {
			diff := t - tt
			if flags[i] {
				diff = bigNum
			}
			if !isFinite(diff) {
				return nil, fmt.Errorf("%w in diff of time with transit time %g", core.ErrNonFinite, tt)
			}
			if math.Abs(diff) < maxDiff {
				mask[i] = true
			}
		}
	}

	if countTrue(mask) == 0 {
		logger.Warn("no cadences found matching transit locations (period=%g epoch=%g)",
			eph.PeriodDays, eph.EpochDays)
	}
	return mask, nil
}

// boundsOf returns the min and max of the unflagged times. NaN poisons the
// bounds the way it poisons a running comparison chain, which the caller then
// rejects as a non-finite cycle bound.
func boundsOf(times []float64, flags []bool) (minT, maxT float64, any bool) {
	for i, t := range times {
		if flags[i] {
			continue
		}
		if !any {
			minT, maxT = t, t
			any = true
			continue
		}
		if math.IsNaN(t) {
			minT, maxT = math.NaN(), math.NaN()
			continue
		}
		if t < minT {
			minT = t
		}
		if t > maxT {
			maxT = t
		}
	}
	return minT, maxT, any
}

func countTrue(mask []bool) int {
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
