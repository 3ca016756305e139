package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/ports"

	"github.com/jmoiron/sqlx"
)

// reportRepository implements ports.ReportRepository on a JSONB column
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

// reportRow mirrors the analysis_reports table
type reportRow struct {
	ID           core.ID   `db:"id"`
	Name         string    `db:"name"`
	RowCount     int       `db:"row_count"`
	ColumnCount  int       `db:"column_count"`
	Completeness float64   `db:"completeness"`
	Bundle       []byte    `db:"bundle"`
	Narrative    string    `db:"narrative"`
	CreatedAt    time.Time `db:"created_at"`
}

func toRow(report *ports.StoredReport) (*reportRow, error) {
	if report.Bundle == nil {
		return nil, fmt.Errorf("report %s has no bundle", report.ID)
	}
	payload, err := json.Marshal(report.Bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bundle: %w", err)
	}
	return &reportRow{
		ID:           report.ID,
		Name:         report.Name,
		RowCount:     report.Bundle.Summary.Rows,
		ColumnCount:  report.Bundle.Summary.Columns,
		Completeness: report.Bundle.Quality.Completeness,
		Bundle:       payload,
		Narrative:    report.Narrative,
		CreatedAt:    report.CreatedAt,
	}, nil
}

func (r reportRow) toReport() (*ports.StoredReport, error) {
	var bundle stats.Bundle
	if err := json.Unmarshal(r.Bundle, &bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundle: %w", err)
	}
	return &ports.StoredReport{
		ID:        r.ID,
		Name:      r.Name,
		Bundle:    &bundle,
		Narrative: r.Narrative,
		CreatedAt: r.CreatedAt,
	}, nil
}

// Save inserts a report, assigning an ID and timestamp when missing. Saving an
// existing ID replaces its contents.
func (r *reportRepository) Save(ctx context.Context, report *ports.StoredReport) error {
	if report.ID.IsEmpty() {
		report.ID = core.NewID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	row, err := toRow(report)
	if err != nil {
		return err
	}

	query := `INSERT INTO analysis_reports (
		id, name, row_count, column_count, completeness, bundle, narrative, created_at
	) VALUES (
		:id, :name, :row_count, :column_count, :completeness, :bundle, :narrative, :created_at
	)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		row_count = EXCLUDED.row_count,
		column_count = EXCLUDED.column_count,
		completeness = EXCLUDED.completeness,
		bundle = EXCLUDED.bundle,
		narrative = EXCLUDED.narrative`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Get retrieves a report by its ID
func (r *reportRepository) Get(ctx context.Context, id core.ID) (*ports.StoredReport, error) {
	query := `SELECT id, name, row_count, column_count, completeness, bundle, narrative, created_at
	FROM analysis_reports WHERE id = $1`

	var row reportRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrReportNotFound, id)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return row.toReport()
}

// List returns report summaries, newest first
func (r *reportRepository) List(ctx context.Context, limit, offset int) ([]ports.ReportSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT id, name, row_count, column_count, completeness, created_at
	FROM analysis_reports
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2`

	summaries := []ports.ReportSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return summaries, nil
}

// Delete removes a report
func (r *reportRepository) Delete(ctx context.Context, id core.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM analysis_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", core.ErrReportNotFound, id)
	}
	return nil
}
