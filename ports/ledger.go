package ports

import (
	"context"

	"calinfer/domain/core"
	"calinfer/domain/model"
)

// RunLedgerPort persists calibration reports for later inspection and replay
type RunLedgerPort interface {
	SaveReport(ctx context.Context, report *model.CalibrationReport) error
	GetReport(ctx context.Context, runID core.RunID) (*model.CalibrationReport, error)
	ListReports(ctx context.Context, limit, offset int) ([]*model.CalibrationReport, error)
}
