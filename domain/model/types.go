package model

import (
	"fmt"
	"strings"

	"calinfer/domain/core"
)

// ModelSpec is a structured model specification: a response column regressed
// on an ordered set of predictor columns. There is no formula language;
// callers that want one should translate into this value up front.
type ModelSpec struct {
	Response   string   `json:"response"`
	Predictors []string `json:"predictors"`
}

// NewModelSpec builds a spec, trimming whitespace from all names
func NewModelSpec(response string, predictors ...string) ModelSpec {
	cleaned := make([]string, len(predictors))
	for i, p := range predictors {
		cleaned[i] = strings.TrimSpace(p)
	}
	return ModelSpec{Response: strings.TrimSpace(response), Predictors: cleaned}
}

// HasPredictor reports whether name appears among the predictors
func (s ModelSpec) HasPredictor(name string) bool {
	for _, p := range s.Predictors {
		if p == name {
			return true
		}
	}
	return false
}

// String renders the spec in "y ~ x1 + x2" notation for logs and reports
func (s ModelSpec) String() string {
	return fmt.Sprintf("%s ~ %s", s.Response, strings.Join(s.Predictors, " + "))
}

// Validate checks structural well-formedness
func (s ModelSpec) Validate() error {
	if s.Response == "" {
		return core.NewInvalidDataError("model spec has empty response")
	}
	if len(s.Predictors) == 0 {
		return core.NewInvalidDataError("model spec has no predictors")
	}
	seen := make(map[string]bool, len(s.Predictors))
	for _, p := range s.Predictors {
		if p == "" {
			return core.NewInvalidDataError("model spec has empty predictor name")
		}
		if seen[p] {
			return core.NewInvalidDataError(fmt.Sprintf("duplicate predictor %q", p))
		}
		seen[p] = true
	}
	return nil
}

// CandidateEstimate is one regression fit's answer for the target coefficient
type CandidateEstimate struct {
	Point      float64   `json:"point"`
	SamplingSE float64   `json:"sampling_se"`
	Spec       ModelSpec `json:"spec"`
}

// Auxiliary is a covariate with a known population mean, used by
// background-moment calibration
type Auxiliary struct {
	Name           string
	Values         []float64
	PopulationMean float64
}

// AuxiliaryRatio records one auxiliary covariate's squared-deviation ratio
type AuxiliaryRatio struct {
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
}

// Mode identifies which calibration path produced a result
type Mode string

const (
	ModeModelDisagreement Mode = "model_disagreement"
	ModeBackgroundMoments Mode = "background_moments"
)

// CalibratedResult is the final inference output. Field order matches the
// reporting contract: estimate, standard error, p-value, delta-hat.
type CalibratedResult struct {
	Estimate float64 `json:"estimate"`
	StdError float64 `json:"std_error"`
	PValue   float64 `json:"p_value"`
	DeltaHat float64 `json:"delta_hat"`
}

// CalibrationReport wraps a CalibratedResult with its provenance
type CalibrationReport struct {
	RunID      core.RunID       `json:"run_id"`
	Mode       Mode             `json:"mode"`
	Target     string           `json:"target"`
	Result     CalibratedResult `json:"result"`
	TStatistic float64          `json:"t_statistic"`
	DOF        int              `json:"dof"`

	// Confidence interval at Level (two-sided t-interval)
	Level float64 `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`

	// Mode-specific provenance
	Candidates      []CandidateEstimate `json:"candidates,omitempty"`
	AuxiliaryRatios []AuxiliaryRatio    `json:"auxiliary_ratios,omitempty"`

	CreatedAt core.Timestamp `json:"created_at"`
}
