package robust

import (
	"fmt"

	"transitvet/domain/core"

	"github.com/montanaflynn/stats"
)

// MedianDetrend subtracts a sliding-window median from each sample. The window
// spans 2*halfWindow samples; near the edges it keeps its full width and slides
// inward instead of shrinking, so edge samples are detrended against the same
// amount of data as interior ones. A series shorter than one full window is
// detrended against its overall median.
func MedianDetrend(flux []float64, halfWindow int) ([]float64, error) {
	if halfWindow < 1 {
		return nil, fmt.Errorf("%w: half window must be >= 1, got %d", core.ErrBadWindow, halfWindow)
	}

	size := len(flux)
	filtered := make([]float64, size)
	for i := range flux {
		lwr := i - halfWindow
		if lwr < 0 {
			lwr = 0
		}
		upr := lwr + 2*halfWindow
		if upr > size {
			upr = size
		}
		lwr = upr - 2*halfWindow
		if lwr < 0 {
			lwr = 0
		}

		med, _ := stats.Median(flux[lwr:upr])
		filtered[i] = flux[i] - med
	}
	return filtered, nil
}
