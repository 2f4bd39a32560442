package testkit

import (
	"context"
	"fmt"
	"sync"

	"calinfer/domain/core"
	"calinfer/domain/model"
	"calinfer/ports"
)

// InMemoryRunLedger is the test double for RunLedgerPort
type InMemoryRunLedger struct {
	mu      sync.RWMutex
	reports map[core.RunID]*model.CalibrationReport
	order   []core.RunID
}

// NewInMemoryRunLedger creates an empty ledger
func NewInMemoryRunLedger() *InMemoryRunLedger {
	return &InMemoryRunLedger{reports: make(map[core.RunID]*model.CalibrationReport)}
}

var _ ports.RunLedgerPort = (*InMemoryRunLedger)(nil)

func (l *InMemoryRunLedger) SaveReport(ctx context.Context, report *model.CalibrationReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.reports[report.RunID]; !exists {
		l.order = append(l.order, report.RunID)
	}
	l.reports[report.RunID] = report
	return nil
}

func (l *InMemoryRunLedger) GetReport(ctx context.Context, runID core.RunID) (*model.CalibrationReport, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	report, ok := l.reports[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
	}
	return report, nil
}

func (l *InMemoryRunLedger) ListReports(ctx context.Context, limit, offset int) ([]*model.CalibrationReport, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// newest first
	var out []*model.CalibrationReport
	for i := len(l.order) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.reports[l.order[i]])
	}
	return out, nil
}
