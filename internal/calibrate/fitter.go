package calibrate

import (
	"fmt"

	"calinfer/domain/core"
	"calinfer/domain/dataset"
	"calinfer/domain/model"
	"calinfer/ports"
)

// FitCandidate delegates one model specification to the regression solver
// and extracts the target coefficient's point estimate and sampling standard
// error. The frame is never mutated.
func FitCandidate(solver ports.RegressionPort, frame *dataset.Frame, spec model.ModelSpec, target string) (model.CandidateEstimate, error) {
	if solver == nil {
		return model.CandidateEstimate{}, core.NewInvalidArgumentError("solver", "cannot be nil")
	}
	if !spec.HasPredictor(target) {
		return model.CandidateEstimate{}, core.NewTargetNotInModelError(target, spec.Response)
	}

	res, err := solver.Fit(frame, spec, target)
	if err != nil {
		return model.CandidateEstimate{}, fmt.Errorf("fit %s: %w", spec, err)
	}

	return model.CandidateEstimate{
		Point:      res.Point,
		SamplingSE: res.StandardError,
		Spec:       spec,
	}, nil
}
