package calibrate

import (
	"fmt"
	"math"

	"calinfer/domain/core"
	"calinfer/domain/model"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultLevel is the confidence level used when the caller does not choose one
const DefaultLevel = 0.95

// Calibration is the aggregator's output: the reportable result plus the
// test statistic and confidence bounds behind it
type Calibration struct {
	Result     model.CalibratedResult
	TStatistic float64
	Level      float64
	Lower      float64
	Upper      float64
}

// Aggregate folds a point estimate, its sampling variance, and the inferred
// perturbation strength into one calibrated result. The reference
// distribution is Student's t with strength.DOF degrees of freedom, since
// the excess variance is itself estimated from only DOF effective pieces
// of information.
func Aggregate(point, samplingVariance float64, strength Strength, level float64) (Calibration, error) {
	if strength.DOF < 1 {
		return Calibration{}, core.ErrInsufficientDOF
	}
	if samplingVariance < 0 || math.IsNaN(samplingVariance) {
		return Calibration{}, core.NewInvalidDataError("sampling variance must be non-negative")
	}
	if level <= 0 || level >= 1 {
		return Calibration{}, core.NewInvalidArgumentError("level",
			fmt.Sprintf("must be in (0, 1), got %g", level))
	}

	combined := samplingVariance + strength.ExcessVariance
	if combined <= 0 {
		return Calibration{}, core.NewInvalidDataError("combined variance is zero")
	}
	se := math.Sqrt(combined)

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(strength.DOF)}
	tStat := point / se
	pValue := 2 * (1 - tDist.CDF(math.Abs(tStat)))
	quantile := tDist.Quantile(1 - (1-level)/2)

	return Calibration{
		Result: model.CalibratedResult{
			Estimate: point,
			StdError: se,
			PValue:   pValue,
			DeltaHat: strength.DeltaHat,
		},
		TStatistic: tStat,
		Level:      level,
		Lower:      point - quantile*se,
		Upper:      point + quantile*se,
	}, nil
}
