package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"calinfer/domain/core"
	"calinfer/domain/model"
	"calinfer/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// runLedger implements RunLedgerPort on Postgres
type runLedger struct {
	db *sqlx.DB
}

// NewRunLedger creates a run ledger backed by the given connection
func NewRunLedger(db *sqlx.DB) ports.RunLedgerPort {
	return &runLedger{db: db}
}

// Connect opens a Postgres connection from a DSN and verifies it
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the calibration_runs table when it does not exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS calibration_runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		target TEXT NOT NULL,
		estimate DOUBLE PRECISION NOT NULL,
		std_error DOUBLE PRECISION NOT NULL,
		p_value DOUBLE PRECISION NOT NULL,
		delta_hat DOUBLE PRECISION NOT NULL,
		t_statistic DOUBLE PRECISION NOT NULL,
		dof INTEGER NOT NULL,
		level DOUBLE PRECISION NOT NULL,
		lower_bound DOUBLE PRECISION NOT NULL,
		upper_bound DOUBLE PRECISION NOT NULL,
		provenance JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate calibration_runs: %w", err)
	}
	return nil
}

// provenancePayload carries the mode-specific detail as one JSON column
type provenancePayload struct {
	Candidates      []model.CandidateEstimate `json:"candidates,omitempty"`
	AuxiliaryRatios []model.AuxiliaryRatio    `json:"auxiliary_ratios,omitempty"`
}

// SaveReport inserts a calibration report
func (r *runLedger) SaveReport(ctx context.Context, report *model.CalibrationReport) error {
	provenance, err := json.Marshal(provenancePayload{
		Candidates:      report.Candidates,
		AuxiliaryRatios: report.AuxiliaryRatios,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal provenance: %w", err)
	}

	query := `INSERT INTO calibration_runs (
		id, mode, target, estimate, std_error, p_value, delta_hat,
		t_statistic, dof, level, lower_bound, upper_bound, provenance, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.db.ExecContext(ctx, query,
		report.RunID.String(), string(report.Mode), report.Target,
		report.Result.Estimate, report.Result.StdError, report.Result.PValue, report.Result.DeltaHat,
		report.TStatistic, report.DOF, report.Level, report.Lower, report.Upper,
		provenance, report.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save calibration run: %w", err)
	}
	return nil
}

// GetReport retrieves one calibration report by run ID
func (r *runLedger) GetReport(ctx context.Context, runID core.RunID) (*model.CalibrationReport, error) {
	query := `SELECT id, mode, target, estimate, std_error, p_value, delta_hat,
		t_statistic, dof, level, lower_bound, upper_bound, provenance, created_at
	FROM calibration_runs WHERE id = $1`

	report, err := scanReport(r.db.QueryRowxContext(ctx, query, runID.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get calibration run: %w", err)
	}
	return report, nil
}

// ListReports retrieves calibration reports newest first
func (r *runLedger) ListReports(ctx context.Context, limit, offset int) ([]*model.CalibrationReport, error) {
	query := `SELECT id, mode, target, estimate, std_error, p_value, delta_hat,
		t_statistic, dof, level, lower_bound, upper_bound, provenance, created_at
	FROM calibration_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryxContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list calibration runs: %w", err)
	}
	defer rows.Close()

	var reports []*model.CalibrationReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calibration run: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// rowScanner covers both Row and Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*model.CalibrationReport, error) {
	var report model.CalibrationReport
	var id, mode string
	var provenance []byte
	var createdAt time.Time

	err := row.Scan(
		&id, &mode, &report.Target,
		&report.Result.Estimate, &report.Result.StdError, &report.Result.PValue, &report.Result.DeltaHat,
		&report.TStatistic, &report.DOF, &report.Level, &report.Lower, &report.Upper,
		&provenance, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	report.RunID = core.RunID(id)
	report.Mode = model.Mode(mode)
	report.CreatedAt = core.Timestamp(createdAt)

	if len(provenance) > 0 {
		var payload provenancePayload
		if err := json.Unmarshal(provenance, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal provenance: %w", err)
		}
		report.Candidates = payload.Candidates
		report.AuxiliaryRatios = payload.AuxiliaryRatios
	}
	return &report, nil
}
