package robust

import (
	"fmt"
	"math"

	"transitvet/domain/core"

	"github.com/montanaflynn/stats"
)

const (
	// madToStd rescales a median absolute deviation to a Gaussian sigma
	madToStd = 1.4826

	// scatterClipSigma is the rejection threshold applied to the first
	// differences before the MAD is taken
	scatterClipSigma = 5.0
)

// EstimateScatter estimates per-point noise from the spread of consecutive
// differences, which cancels slow astrophysical trends. Non-finite fluxes are
// dropped, the differences are sigma clipped to keep transit edges and cosmic
// ray hits out of the estimate, and the MAD of the survivors is rescaled to a
// Gaussian sigma. Differencing doubles the variance, so the result is divided
// by sqrt(2).
func EstimateScatter(flux []float64) (float64, error) {
	finite := make([]float64, 0, len(flux))
	for _, f := range flux {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		finite = append(finite, f)
	}
	if len(finite) < 2 {
		return 0, fmt.Errorf("%w: scatter needs at least 2 finite fluxes, got %d",
			core.ErrInsufficientData, len(finite))
	}

	diff := make([]float64, len(finite)-1)
	for i := range diff {
		diff[i] = finite[i+1] - finite[i]
	}

	mask, err := SigmaClip(diff, scatterClipSigma, ClipOptions{})
	if err != nil {
		return 0, err
	}
	kept := make([]float64, 0, len(diff))
	for i, d := range diff {
		if !mask[i] {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return 0, fmt.Errorf("%w: all flux differences clipped", core.ErrInsufficientData)
	}

	mean, _ := stats.Mean(kept)
	dev := make([]float64, len(kept))
	for i, d := range kept {
		dev[i] = math.Abs(d - mean)
	}
	mad, _ := stats.Median(dev)

	return madToStd * mad / math.Sqrt2, nil
}
