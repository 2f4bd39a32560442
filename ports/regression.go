package ports

import (
	"calinfer/domain/dataset"
	"calinfer/domain/model"
)

// FitResult is the regression solver's answer for one target coefficient
type FitResult struct {
	Point         float64 // coefficient estimate for the target predictor
	StandardError float64 // classical model-based standard error
	ResidualDOF   int     // n - p, for diagnostics
}

// RegressionPort is the external least-squares collaborator. Implementations
// regress spec.Response on spec.Predictors (plus an intercept) over the frame
// and report the coefficient for target.
//
// Implementations must return core.ErrSingularFit when the design matrix is
// rank deficient and core.ErrInvalidData on column or shape problems. The
// target is guaranteed by callers to appear in spec.Predictors.
type RegressionPort interface {
	Fit(frame *dataset.Frame, spec model.ModelSpec, target string) (FitResult, error)
}
