package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorConstructorsWrapSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"invalid argument", NewInvalidArgumentError("n", "must be positive"), ErrInvalidArgument},
		{"invalid data", NewInvalidDataError("column length mismatch"), ErrInvalidData},
		{"target not in model", NewTargetNotInModelError("x", "y"), ErrTargetNotInModel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.sentinel) {
				t.Errorf("errors.Is failed for %v", tc.err)
			}
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	wrapped := fmt.Errorf("fitting y ~ x: %w", ErrSingularFit)

	if !IsArgumentError(NewInvalidDataError("bad")) {
		t.Error("IsArgumentError should cover ErrInvalidData")
	}
	if !IsFitError(wrapped) {
		t.Error("IsFitError should see through wrapping")
	}
	if !IsCalibrationError(ErrInsufficientModels) {
		t.Error("IsCalibrationError should cover ErrInsufficientModels")
	}
	if IsFitError(ErrInvalidData) {
		t.Error("IsFitError should not cover data errors")
	}
	if IsCalibrationError(nil) {
		t.Error("nil is not a calibration error")
	}
}
