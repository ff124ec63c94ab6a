package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"transitvet/domain/core"
	"transitvet/domain/vet"
	apperrors "transitvet/internal/errors"
	"transitvet/ports"
)

// ReportRepositoryImpl implements ReportRepository for PostgreSQL. Filterable
// fields live in columns; the payload column holds the full report JSON and is
// the source of truth on read.
type ReportRepositoryImpl struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) *ReportRepositoryImpl {
	return &ReportRepositoryImpl{db: db}
}

var _ ports.ReportRepository = (*ReportRepositoryImpl)(nil)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS vet_reports (
		id TEXT PRIMARY KEY,
		target_key TEXT NOT NULL DEFAULT '',
		vetter TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vet_reports_target ON vet_reports (target_key)`,
	`CREATE INDEX IF NOT EXISTS idx_vet_reports_created_at ON vet_reports (created_at DESC)`,
}

// EnsureSchema creates the vet_reports table and its indexes if absent
func (r *ReportRepositoryImpl) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return apperrors.Wrap(err, "vet_reports schema bootstrap failed")
		}
	}
	return nil
}

// SaveReport stores a finished vetter report, replacing any previous report
// with the same ID
func (r *ReportRepositoryImpl) SaveReport(ctx context.Context, report *vet.Report) error {
	if report == nil {
		return core.NewValidationError("report", "must not be nil")
	}
	if report.ID == "" {
		return core.NewValidationError("report", "missing ID")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode report payload")
	}

	createdAt := report.CreatedAt.Time()
	if report.CreatedAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO vet_reports (id, target_key, vetter, created_at, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			target_key = EXCLUDED.target_key,
			vetter = EXCLUDED.vetter,
			created_at = EXCLUDED.created_at,
			payload = EXCLUDED.payload
	`, report.ID.String(), report.Target.String(), report.Vetter, createdAt, payload)

	if err != nil {
		return apperrors.WithCode(apperrors.CodeDatabaseError, err)
	}
	return nil
}

// GetReport retrieves a report by its ID
func (r *ReportRepositoryImpl) GetReport(ctx context.Context, id core.ReportID) (*vet.Report, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT payload FROM vet_reports WHERE id = $1
	`, id.String()).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("report", id.String())
	}
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, err)
	}

	var report vet.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode report payload")
	}
	return &report, nil
}

// ListReports returns stored reports, newest first
func (r *ReportRepositoryImpl) ListReports(ctx context.Context, filters ports.ReportFilters) ([]*vet.Report, error) {
	query := `SELECT payload FROM vet_reports`
	var conds []string
	var args []interface{}

	if filters.Target != nil {
		args = append(args, filters.Target.String())
		conds = append(conds, fmt.Sprintf("target_key = $%d", len(args)))
	}
	if filters.Vetter != nil {
		args = append(args, *filters.Vetter)
		conds = append(conds, fmt.Sprintf("vetter = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// id is a UUIDv7 string, so it breaks created_at ties in insert order
	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, err)
	}
	defer rows.Close()

	reports := make([]*vet.Report, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, apperrors.WithCode(apperrors.CodeDatabaseError, err)
		}
		var report vet.Report
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode report payload")
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}
