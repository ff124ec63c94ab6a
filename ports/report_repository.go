package ports

import (
	"context"

	"transitvet/domain/core"
	"transitvet/domain/vet"
)

// ReportRepository defines the interface for vet report persistence
type ReportRepository interface {
	// SaveReport stores a finished vetter report
	SaveReport(ctx context.Context, report *vet.Report) error

	// GetReport retrieves a report by its ID
	GetReport(ctx context.Context, id core.ReportID) (*vet.Report, error)

	// ListReports returns stored reports, newest first
	ListReports(ctx context.Context, filters ReportFilters) ([]*vet.Report, error)
}

// ReportFilters narrows ListReports queries
type ReportFilters struct {
	Target *core.TargetKey
	Vetter *string
	Limit  int
	Offset int
}
