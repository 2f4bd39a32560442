// Package calibrate combines candidate regression fits (or background moment
// knowledge) into a single point estimate, standard error, and significance
// test for a target coefficient that stays valid when the data-generating
// distribution has been perturbed by an unknown amount. The perturbation
// strength is inferred rather than assumed, and folded into a combined
// variance with a t reference sized by the amount of information behind it.
package calibrate

import (
	"fmt"

	"calinfer/domain/core"
	"calinfer/domain/dataset"
	"calinfer/domain/model"
	"calinfer/ports"

	"github.com/montanaflynn/stats"
)

// Options tunes the calibration entry points
type Options struct {
	// Level is the two-sided confidence level; DefaultLevel when zero.
	// Any other value outside (0, 1) is rejected, not substituted.
	Level float64
	// PrecisionWeighted switches the disagreement-mode point estimate from
	// the unweighted mean of candidates to an inverse-variance weighted mean
	PrecisionWeighted bool
}

func (o Options) level() float64 {
	if o.Level == 0 {
		return DefaultLevel
	}
	return o.Level
}

// Models runs model-disagreement calibration: fit every candidate spec,
// infer perturbation strength from how much the fits disagree, and combine.
// Every spec must contain the target predictor; at least two specs are
// required.
func Models(solver ports.RegressionPort, frame *dataset.Frame, specs []model.ModelSpec, target string) (*model.CalibrationReport, error) {
	return ModelsWithOptions(solver, frame, specs, target, Options{})
}

// ModelsWithOptions is Models with explicit options
func ModelsWithOptions(solver ports.RegressionPort, frame *dataset.Frame, specs []model.ModelSpec, target string, opts Options) (*model.CalibrationReport, error) {
	if frame == nil {
		return nil, core.NewInvalidArgumentError("frame", "cannot be nil")
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if len(specs) < 2 {
		return nil, fmt.Errorf("%w, got %d", core.ErrInsufficientModels, len(specs))
	}

	estimates := make([]model.CandidateEstimate, 0, len(specs))
	for _, spec := range specs {
		est, err := FitCandidate(solver, frame, spec, target)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, est)
	}

	strength, err := EstimateFromDisagreement(estimates)
	if err != nil {
		return nil, err
	}

	point, samplingVar := combineCandidates(estimates, opts.PrecisionWeighted)
	agg, err := Aggregate(point, samplingVar, strength, opts.level())
	if err != nil {
		return nil, err
	}

	report := newReport(model.ModeModelDisagreement, target, agg, strength)
	report.Candidates = estimates
	return report, nil
}

// Moments runs background-moment calibration on the mean of a target sample,
// substituting known population means of auxiliary covariates for model
// disagreement.
func Moments(sample []float64, auxiliaries []model.Auxiliary) (*model.CalibrationReport, error) {
	return MomentsWithOptions(sample, auxiliaries, Options{})
}

// MomentsWithOptions is Moments with explicit options
func MomentsWithOptions(sample []float64, auxiliaries []model.Auxiliary, opts Options) (*model.CalibrationReport, error) {
	strength, err := EstimateFromMoments(sample, auxiliaries)
	if err != nil {
		return nil, err
	}

	point, err := stats.Mean(sample)
	if err != nil {
		return nil, core.NewInvalidDataError(err.Error())
	}
	sampleVar, err := stats.SampleVariance(sample)
	if err != nil {
		return nil, core.NewInvalidDataError(err.Error())
	}
	samplingVar := sampleVar / float64(len(sample))

	agg, err := Aggregate(point, samplingVar, strength, opts.level())
	if err != nil {
		return nil, err
	}

	report := newReport(model.ModeBackgroundMoments, "sample_mean", agg, strength)
	report.AuxiliaryRatios = strength.Ratios
	return report, nil
}

// combineCandidates returns the combined point estimate and its sampling
// variance. The sampling variance is the (weight-matched) average candidate
// sampling variance, not average/k: the candidates are fit to one shared
// sample, so averaging them does not shrink sampling noise the way averaging
// independent studies would.
func combineCandidates(estimates []model.CandidateEstimate, precisionWeighted bool) (point, samplingVar float64) {
	k := float64(len(estimates))
	if precisionWeighted {
		for _, est := range estimates {
			if est.SamplingSE <= 0 {
				// zero-SE candidate would get infinite weight; fall back
				precisionWeighted = false
				break
			}
		}
	}
	if precisionWeighted {
		sumW, sumWP := 0.0, 0.0
		for _, est := range estimates {
			w := 1.0 / (est.SamplingSE * est.SamplingSE)
			sumW += w
			sumWP += w * est.Point
		}
		// weighted average of se_i^2 under these weights collapses to k/sumW
		return sumWP / sumW, k / sumW
	}

	sumP, sumV := 0.0, 0.0
	for _, est := range estimates {
		sumP += est.Point
		sumV += est.SamplingSE * est.SamplingSE
	}
	return sumP / k, sumV / k
}

func newReport(mode model.Mode, target string, agg Calibration, strength Strength) *model.CalibrationReport {
	return &model.CalibrationReport{
		RunID:      core.RunID(core.NewID()),
		Mode:       mode,
		Target:     target,
		Result:     agg.Result,
		TStatistic: agg.TStatistic,
		DOF:        strength.DOF,
		Level:      agg.Level,
		Lower:      agg.Lower,
		Upper:      agg.Upper,
		CreatedAt:  core.Now(),
	}
}
