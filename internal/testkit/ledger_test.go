package testkit

import (
	"context"
	"errors"
	"testing"

	"calinfer/domain/core"
	"calinfer/domain/model"
)

func sampleReport(target string) *model.CalibrationReport {
	return &model.CalibrationReport{
		RunID:     core.RunID(core.NewID()),
		Mode:      model.ModeModelDisagreement,
		Target:    target,
		Level:     0.95,
		CreatedAt: core.Now(),
	}
}

func TestInMemoryRunLedger_SaveAndGet(t *testing.T) {
	ledger := NewInMemoryRunLedger()
	ctx := context.Background()

	report := sampleReport("x")
	if err := ledger.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	got, err := ledger.GetReport(ctx, report.RunID)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.Target != "x" {
		t.Errorf("target: got %q", got.Target)
	}
}

func TestInMemoryRunLedger_GetMissing(t *testing.T) {
	ledger := NewInMemoryRunLedger()
	_, err := ledger.GetReport(context.Background(), "absent")
	if !errors.Is(err, core.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestInMemoryRunLedger_ListNewestFirst(t *testing.T) {
	ledger := NewInMemoryRunLedger()
	ctx := context.Background()

	first := sampleReport("a")
	second := sampleReport("b")
	third := sampleReport("c")
	for _, r := range []*model.CalibrationReport{first, second, third} {
		if err := ledger.SaveReport(ctx, r); err != nil {
			t.Fatalf("SaveReport failed: %v", err)
		}
	}

	out, err := ledger.ListReports(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(out) != 2 || out[0].Target != "c" || out[1].Target != "b" {
		t.Errorf("unexpected page: %+v", out)
	}

	out, err = ledger.ListReports(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(out) != 1 || out[0].Target != "a" {
		t.Errorf("unexpected offset page: %+v", out)
	}
}

func TestInMemoryRunLedger_SaveOverwrites(t *testing.T) {
	ledger := NewInMemoryRunLedger()
	ctx := context.Background()

	report := sampleReport("x")
	if err := ledger.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	updated := *report
	updated.Target = "z"
	if err := ledger.SaveReport(ctx, &updated); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	out, err := ledger.ListReports(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(out) != 1 || out[0].Target != "z" {
		t.Errorf("overwrite should not duplicate: %+v", out)
	}
}
