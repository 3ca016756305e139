package ports

import (
	"context"
	"time"

	"github.com/StephenStolk/analyseX-sub001/domain/core"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
)

// StoredReport is a persisted bundle with its narrative
type StoredReport struct {
	ID        core.ID       `json:"id"`
	Name      string        `json:"name"`
	Bundle    *stats.Bundle `json:"bundle"`
	Narrative string        `json:"narrative"`
	CreatedAt time.Time     `json:"created_at"`
}

// ReportSummary is a listing row without the bundle payload
type ReportSummary struct {
	ID           core.ID   `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	RowCount     int       `db:"row_count" json:"row_count"`
	ColumnCount  int       `db:"column_count" json:"column_count"`
	Completeness float64   `db:"completeness" json:"completeness"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ReportRepository stores analysis reports
type ReportRepository interface {
	Save(ctx context.Context, report *StoredReport) error
	Get(ctx context.Context, id core.ID) (*StoredReport, error)
	List(ctx context.Context, limit, offset int) ([]ReportSummary, error)
	Delete(ctx context.Context, id core.ID) error
}
