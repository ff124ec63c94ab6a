package robust

import (
	"math"

	"transitvet/domain/core"

	"github.com/montanaflynn/stats"
)

// DefaultMaxClipIterations bounds the sigma clipping loop. Each pass can only
// add flags, so the loop converges long before this on any real series.
const DefaultMaxClipIterations = 10000

// ClipOptions tunes SigmaClip. The zero value is valid: full iteration budget
// and an empty starting mask.
type ClipOptions struct {
	MaxIter     int    // <= 0 means DefaultMaxClipIterations
	InitialMask []bool // optional pre-flagged samples, aligned with y
}

// SigmaClip iteratively flags outliers in y. Each pass computes the mean and
// population standard deviation of the unflagged finite samples, flags every
// sample with |y - mean| > nSigma*std, and unions the result with the previous
// mask. It stops when the flagged count stops changing or the iteration budget
// runs out; either way the current mask is returned. NaN samples never compare
// true, so they are only ever flagged through the initial mask.
func SigmaClip(y []float64, nSigma float64, opts ClipOptions) ([]bool, error) {
	maxIter := opts.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxClipIterations
	}

	mask := make([]bool, len(y))
	if opts.InitialMask != nil {
		if len(opts.InitialMask) != len(y) {
			return nil, core.NewLengthMismatchError("initial mask", len(y), len(opts.InitialMask))
		}
		copy(mask, opts.InitialMask)
	}

	oldClipped := countTrue(mask)
	for iter := 0; iter < maxIter; iter++ {
		mean, std, ok := unmaskedMoments(y, mask)
		if !ok {
			// Nothing finite left to measure against
			return mask, nil
		}

		next := make([]bool, len(y))
		copy(next, mask)
		limit := nSigma * std
		for i, v := range y {
			if math.Abs(v-mean) > limit {
				next[i] = true
			}
		}

		newClipped := countTrue(next)
		if newClipped == oldClipped {
			return next, nil
		}
		oldClipped = newClipped
		mask = next
	}
	return mask, nil
}

// unmaskedMoments computes mean and population std over unflagged samples,
// skipping NaN. ok is false when no measurable samples remain.
func unmaskedMoments(y []float64, mask []bool) (mean, std float64, ok bool) {
	kept := make([]float64, 0, len(y))
	for i, v := range y {
		if mask[i] || math.IsNaN(v) {
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return 0, 0, false
	}

	mean, _ = stats.Mean(kept)
	std, _ = stats.StandardDeviation(kept)
	return mean, std, true
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
