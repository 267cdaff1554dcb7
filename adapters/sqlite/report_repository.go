package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"voxreport/domain/core"
	"voxreport/domain/report"
	"voxreport/domain/table"
	"voxreport/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	template TEXT NOT NULL,
	mask_path TEXT NOT NULL DEFAULT '',
	units INTEGER NOT NULL,
	row_count INTEGER NOT NULL,
	columns TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS run_rows (
	run_id TEXT NOT NULL REFERENCES runs(id),
	row_index INTEGER NOT NULL,
	cells TEXT NOT NULL,
	PRIMARY KEY (run_id, row_index)
);
`

// reportRepository implements the ReportRepository interface on SQLite
type reportRepository struct {
	db *sqlx.DB
}

// Open connects to (or creates) the run-ledger database at path and applies
// the schema. Use ":memory:" for an ephemeral ledger.
func Open(path string) (ports.ReportRepository, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply run-ledger schema: %w", err)
	}
	return &reportRepository{db: db}, nil
}

// SaveRun stores the run record together with its result table rows.
func (r *reportRepository) SaveRun(ctx context.Context, run *report.Run, tbl *table.Table) error {
	columnsJSON, err := json.Marshal(tbl.Columns())
	if err != nil {
		return fmt.Errorf("failed to marshal columns: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, template, mask_path, units, row_count, columns, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Template, run.MaskPath, run.Units, run.Rows,
		string(columnsJSON), run.StartedAt.Time(), run.FinishedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i := 0; i < tbl.NumRows(); i++ {
		cellsJSON, err := json.Marshal(tbl.Row(i))
		if err != nil {
			return fmt.Errorf("failed to marshal row %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_rows (run_id, row_index, cells) VALUES (?, ?, ?)`,
			run.ID, i, string(cellsJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run record by ID.
func (r *reportRepository) GetRun(ctx context.Context, id core.RunID) (*report.Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, template, mask_path, units, row_count, started_at, finished_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (r *reportRepository) ListRuns(ctx context.Context, limit int) ([]*report.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, template, mask_path, units, row_count, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*report.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunTable reconstructs the persisted result table of a run.
func (r *reportRepository) GetRunTable(ctx context.Context, id core.RunID) (*table.Table, error) {
	var columnsJSON string
	err := r.db.QueryRowContext(ctx, `SELECT columns FROM runs WHERE id = ?`, id).Scan(&columnsJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run columns: %w", err)
	}
	var columns []string
	if err := json.Unmarshal([]byte(columnsJSON), &columns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal columns: %w", err)
	}

	tbl := table.New(columns...)
	rows, err := r.db.QueryContext(ctx,
		`SELECT cells FROM run_rows WHERE run_id = ? ORDER BY row_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run row: %w", err)
		}
		if err := tbl.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	return tbl, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*report.Run, error) {
	var run report.Run
	var started, finished sql.NullTime
	err := s.Scan(&run.ID, &run.Kind, &run.Template, &run.MaskPath, &run.Units, &run.Rows, &started, &finished)
	if err != nil {
		return nil, err
	}
	if started.Valid {
		run.StartedAt = core.NewTimestamp(started.Time)
	}
	if finished.Valid {
		run.FinishedAt = core.NewTimestamp(finished.Time)
	}
	return &run, nil
}
