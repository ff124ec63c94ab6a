package vetters

import (
	"context"
	"time"

	"transitvet/domain/lightcurve"
	"transitvet/domain/tce"
	"transitvet/domain/vet"
	"transitvet/internal/logging"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent bounds how many candidates are vetted at once. The
// trial fits inside each run already fan out, so this stays modest.
const DefaultMaxConcurrent = 4

// BatchResult is the outcome of vetting one candidate from a batch
type BatchResult struct {
	Index     int
	Candidate tce.Tce
	Report    *vet.Report
	Duration  time.Duration
	Err       error
}

// Engine vets many candidates against one lightcurve with bounded
// concurrency. Per-candidate failures are recorded in their result slot; the
// batch itself only fails on context cancellation.
type Engine struct {
	vetter Vetter
	sem    *semaphore.Weighted
	logger *logging.Logger
}

// NewEngine creates a batch engine around one vetter
func NewEngine(vetter Vetter, maxConcurrent int64) *Engine {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Engine{
		vetter: vetter,
		sem:    semaphore.NewWeighted(maxConcurrent),
		logger: logging.Default.WithComponent("engine"),
	}
}

// VetAll runs the vetter over every candidate and returns results in input
// order
func (e *Engine) VetAll(ctx context.Context, series *lightcurve.Series, candidates []tce.Tce) ([]BatchResult, error) {
	e.logger.Info("vetting %d candidates with %s", len(candidates), e.vetter.Name())

	results := make([]BatchResult, len(candidates))
	resultChan := make(chan BatchResult, len(candidates))

	for i, cand := range candidates {
		go func(idx int, candidate tce.Tce) {
			res := BatchResult{Index: idx, Candidate: candidate}
			started := time.Now()

			if err := e.sem.Acquire(ctx, 1); err != nil {
				res.Err = err
				res.Duration = time.Since(started)
				resultChan <- res
				return
			}
			res.Report, res.Err = e.vetter.Run(ctx, series, candidate)
			e.sem.Release(1)

			res.Duration = time.Since(started)
			resultChan <- res
		}(i, cand)
	}

	for range candidates {
		select {
		case res := <-resultChan:
			results[res.Index] = res
			if res.Err != nil {
				e.logger.Warn("candidate %d (period=%.4f) failed: %v",
					res.Index, res.Candidate.PeriodDays, res.Err)
			} else {
				e.logger.Debug("candidate %d vetted in %v", res.Index, res.Duration)
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}
