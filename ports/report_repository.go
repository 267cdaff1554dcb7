package ports

import (
	"context"

	"voxreport/domain/core"
	"voxreport/domain/report"
	"voxreport/domain/table"
)

// ReportRepository persists batch aggregation runs and their result tables
// so downstream report workflows can query past aggregations.
type ReportRepository interface {
	// SaveRun stores the run record together with its result table.
	SaveRun(ctx context.Context, run *report.Run, tbl *table.Table) error

	// GetRun retrieves a run record; core.ErrRunNotFound when absent.
	GetRun(ctx context.Context, id core.RunID) (*report.Run, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*report.Run, error)

	// GetRunTable reconstructs the persisted result table of a run.
	GetRunTable(ctx context.Context, id core.RunID) (*table.Table, error)
}
