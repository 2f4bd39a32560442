package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Argument and data-shape errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidData     = errors.New("invalid data")

	// Fitting errors
	ErrTargetNotInModel = errors.New("target predictor not in model")
	ErrSingularFit      = errors.New("singular fit: design matrix is rank deficient")

	// Calibration errors
	ErrInsufficientModels = errors.New("insufficient candidate models: need at least 2")
	ErrInsufficientDOF    = errors.New("insufficient degrees of freedom")

	// Ledger errors
	ErrRunNotFound = errors.New("calibration run not found")
)

// Error constructors with context
func NewInvalidArgumentError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidArgument, field, reason)
}

func NewInvalidDataError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidData, reason)
}

func NewTargetNotInModelError(target string, response string) error {
	return fmt.Errorf("%w: %q is not a predictor in the model for %q", ErrTargetNotInModel, target, response)
}

// Error checking helpers
func IsArgumentError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidData)
}

func IsFitError(err error) bool {
	return errors.Is(err, ErrTargetNotInModel) ||
		errors.Is(err, ErrSingularFit)
}

func IsCalibrationError(err error) bool {
	return errors.Is(err, ErrInsufficientModels) ||
		errors.Is(err, ErrInsufficientDOF)
}
