package report

import (
	"strings"
	"testing"

	"calinfer/domain/core"
	"calinfer/domain/model"
)

func sampleReport() *model.CalibrationReport {
	return &model.CalibrationReport{
		RunID:  "0198f2a0-test-run",
		Mode:   model.ModeModelDisagreement,
		Target: "x",
		Result: model.CalibratedResult{
			Estimate: 1.5,
			StdError: 0.25,
			PValue:   0.002,
			DeltaHat: 0.8,
		},
		TStatistic: 6.0,
		DOF:        4,
		Level:      0.95,
		Lower:      0.81,
		Upper:      2.19,
		Candidates: []model.CandidateEstimate{
			{Point: 1.4, SamplingSE: 0.2, Spec: model.NewModelSpec("y", "x", "z1")},
			{Point: 1.6, SamplingSE: 0.3, Spec: model.NewModelSpec("y", "x", "z1", "z2")},
		},
		AuxiliaryRatios: []model.AuxiliaryRatio{
			{Name: "a1", Ratio: 0.04},
		},
		CreatedAt: core.Now(),
	}
}

func TestText_FieldOrder(t *testing.T) {
	out := Text(sampleReport())

	// estimate, std error, p-value, delta-hat, in that order
	idx := func(s string) int { return strings.Index(out, s) }
	if !(idx("estimate:") < idx("std error:") &&
		idx("std error:") < idx("p-value:") &&
		idx("p-value:") < idx("delta-hat:")) {
		t.Errorf("fields out of order:\n%s", out)
	}
	if idx("estimate:") < 0 {
		t.Fatalf("missing estimate line:\n%s", out)
	}
	if !strings.Contains(out, "95% CI") {
		t.Errorf("missing interval line:\n%s", out)
	}
	if !strings.Contains(out, "y ~ x + z1 + z2") {
		t.Errorf("missing candidate fit:\n%s", out)
	}
	if !strings.Contains(out, "a1") {
		t.Errorf("missing auxiliary ratio:\n%s", out)
	}
}

func TestText_OmitsEmptySections(t *testing.T) {
	r := sampleReport()
	r.Candidates = nil
	r.AuxiliaryRatios = nil
	out := Text(r)
	if strings.Contains(out, "candidate fits") || strings.Contains(out, "auxiliary") {
		t.Errorf("empty sections should be omitted:\n%s", out)
	}
}

func TestMarkdown_Tables(t *testing.T) {
	out := Markdown(sampleReport())
	if !strings.Contains(out, "| estimate | std error | p-value | delta-hat |") {
		t.Errorf("missing result table header:\n%s", out)
	}
	if !strings.Contains(out, "## Candidate fits") {
		t.Errorf("missing candidate section:\n%s", out)
	}
	if !strings.Contains(out, "## Auxiliary moment ratios") {
		t.Errorf("missing auxiliary section:\n%s", out)
	}
	if !strings.Contains(out, "4 degrees of freedom") {
		t.Errorf("missing dof note:\n%s", out)
	}
}

func TestHTML_RendersTables(t *testing.T) {
	out := string(HTML(sampleReport()))
	if !strings.Contains(out, "<table>") {
		t.Errorf("expected an HTML table:\n%s", out)
	}
	if !strings.Contains(out, "<h1") {
		t.Errorf("expected a heading:\n%s", out)
	}
}
