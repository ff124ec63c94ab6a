package testkit

import (
	"context"
	"sync"

	"transitvet/domain/core"
	"transitvet/domain/vet"
	"transitvet/ports"
)

// InMemoryReportRepository implements ports.ReportRepository with map-backed
// storage. It is safe for concurrent use and serves tests and the CLI demo
// mode, where spinning up Postgres would be overkill.
type InMemoryReportRepository struct {
	mu      sync.RWMutex
	reports map[core.ReportID]*vet.Report
	order   []core.ReportID
}

// NewInMemoryReportRepository creates an empty repository
func NewInMemoryReportRepository() *InMemoryReportRepository {
	return &InMemoryReportRepository{
		reports: make(map[core.ReportID]*vet.Report),
	}
}

// SaveReport stores a report, replacing any prior report with the same ID
func (r *InMemoryReportRepository) SaveReport(_ context.Context, report *vet.Report) error {
	if report == nil {
		return core.NewValidationError("report", "must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reports[report.ID]; !exists {
		r.order = append(r.order, report.ID)
	}
	r.reports[report.ID] = report
	return nil
}

// GetReport fetches a report by ID
func (r *InMemoryReportRepository) GetReport(_ context.Context, id core.ReportID) (*vet.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, core.NewNotFoundError("report", string(id))
	}
	return report, nil
}

// ListReports returns stored reports newest-first, honoring the filters
func (r *InMemoryReportRepository) ListReports(_ context.Context, filters ports.ReportFilters) ([]*vet.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*vet.Report, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		report := r.reports[r.order[i]]
		if filters.Target != nil && report.Target != *filters.Target {
			continue
		}
		if filters.Vetter != nil && report.Vetter != *filters.Vetter {
			continue
		}
		matched = append(matched, report)
	}

	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return []*vet.Report{}, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, nil
}
