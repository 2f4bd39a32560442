package calibrate

import (
	"errors"
	"math"
	"testing"

	"calinfer/domain/core"
)

func TestAggregate_InsufficientDOF(t *testing.T) {
	if _, err := Aggregate(1.0, 0.01, Strength{DOF: 0}, 0.95); !errors.Is(err, core.ErrInsufficientDOF) {
		t.Errorf("expected ErrInsufficientDOF, got %v", err)
	}
}

func TestAggregate_ZeroVariance(t *testing.T) {
	if _, err := Aggregate(1.0, 0, Strength{DOF: 3, ExcessVariance: 0}, 0.95); !errors.Is(err, core.ErrInvalidData) {
		t.Errorf("expected ErrInvalidData for zero combined variance, got %v", err)
	}
}

func TestAggregate_CombinesVariances(t *testing.T) {
	c, err := Aggregate(2.0, 0.03, Strength{DOF: 4, ExcessVariance: 0.01, DeltaHat: 0.7}, 0.95)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	wantSE := math.Sqrt(0.04)
	if math.Abs(c.Result.StdError-wantSE) > 1e-12 {
		t.Errorf("std error: got %.6f, want %.6f", c.Result.StdError, wantSE)
	}
	if c.Result.Estimate != 2.0 {
		t.Errorf("estimate: got %g, want 2", c.Result.Estimate)
	}
	if c.Result.DeltaHat != 0.7 {
		t.Errorf("delta-hat passthrough: got %g", c.Result.DeltaHat)
	}
	if math.Abs(c.TStatistic-2.0/wantSE) > 1e-12 {
		t.Errorf("t statistic: got %.6f", c.TStatistic)
	}
	if c.Result.PValue < 0 || c.Result.PValue > 1 {
		t.Errorf("p-value out of range: %g", c.Result.PValue)
	}
	// interval is symmetric around the estimate
	if math.Abs((c.Lower+c.Upper)/2-2.0) > 1e-9 {
		t.Errorf("interval not centered: [%g, %g]", c.Lower, c.Upper)
	}
	if c.Lower >= c.Upper {
		t.Errorf("degenerate interval: [%g, %g]", c.Lower, c.Upper)
	}
}

func TestAggregate_PValueBehavior(t *testing.T) {
	strength := Strength{DOF: 5, ExcessVariance: 0.01}

	// zero estimate gives p-value 1
	c0, err := Aggregate(0, 0.01, strength, 0.95)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if math.Abs(c0.Result.PValue-1.0) > 1e-12 {
		t.Errorf("p-value at zero estimate: got %g, want 1", c0.Result.PValue)
	}

	// p-value decreases as the estimate moves away from zero
	prev := c0.Result.PValue
	for _, point := range []float64{0.1, 0.5, 2.0} {
		c, err := Aggregate(point, 0.01, strength, 0.95)
		if err != nil {
			t.Fatalf("Aggregate failed: %v", err)
		}
		if c.Result.PValue >= prev {
			t.Errorf("p-value not decreasing at point=%g: %g >= %g", point, c.Result.PValue, prev)
		}
		prev = c.Result.PValue
	}
}

// The t reference has heavier tails than the normal at low dof, so the same
// statistic yields a wider interval with fewer candidate models.
func TestAggregate_LowDOFWidensInterval(t *testing.T) {
	few, err := Aggregate(1.0, 0.04, Strength{DOF: 2, ExcessVariance: 0}, 0.95)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	many, err := Aggregate(1.0, 0.04, Strength{DOF: 200, ExcessVariance: 0}, 0.95)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if (few.Upper - few.Lower) <= (many.Upper - many.Lower) {
		t.Errorf("dof=2 interval should be wider: %.4f vs %.4f",
			few.Upper-few.Lower, many.Upper-many.Lower)
	}
}

// An out-of-range level is an argument error, never silently replaced
func TestAggregate_InvalidLevel(t *testing.T) {
	for _, level := range []float64{0, -0.5, 1, 1.5} {
		if _, err := Aggregate(1.0, 0.01, Strength{DOF: 3}, level); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("level=%g: expected ErrInvalidArgument, got %v", level, err)
		}
	}
}
