package scoring

import "github.com/pkg/errors"

// Policy holds the tunable thresholds of classification and validity
// analysis. The zero value is not usable; start from DefaultPolicy.
type Policy struct {
	SecondaryGap float64

	StraightLineVariance      float64
	StraightLineMinStatements int
	// MidlineTolerance exempts uniform answering around the scale midpoint
	// from STRAIGHT_LINING.
	MidlineTolerance float64

	FastResponseMs int64
	SlowResponseMs int64

	HealthyVarianceLow  float64
	HealthyVarianceHigh float64
	MaxVariance         float64

	// InconsistentTimingCV is the stddev/mean of response times above which
	// INCONSISTENT_TIMING is raised, once TimingMinResponses are timed.
	InconsistentTimingCV float64
	TimingMinResponses   int
}

func DefaultPolicy() Policy {
	return Policy{
		SecondaryGap:              15,
		StraightLineVariance:      0.25,
		StraightLineMinStatements: 5,
		MidlineTolerance:          0.5,
		FastResponseMs:            1500,
		SlowResponseMs:            60000,
		HealthyVarianceLow:        0.75,
		HealthyVarianceHigh:       2.0,
		MaxVariance:               4.0,
		InconsistentTimingCV:      1.0,
		TimingMinResponses:        5,
	}
}

// Validate rejects thresholds that would bend the adequacy curve or
// disable classification.
func (p Policy) Validate() error {
	switch {
	case p.SecondaryGap < 0:
		return errors.Errorf("secondary gap must not be negative, got %v", p.SecondaryGap)
	case p.StraightLineVariance < 0 || p.StraightLineMinStatements < 2:
		return errors.Errorf("straight-lining needs variance >= 0 and at least 2 statements, got %v and %d",
			p.StraightLineVariance, p.StraightLineMinStatements)
	case p.MidlineTolerance < 0:
		return errors.Errorf("midline tolerance must not be negative, got %v", p.MidlineTolerance)
	case p.FastResponseMs < 0:
		return errors.Errorf("fast response threshold must not be negative, got %d", p.FastResponseMs)
	case p.SlowResponseMs > 0 && p.SlowResponseMs <= p.FastResponseMs:
		return errors.Errorf("slow response threshold %d must exceed fast threshold %d", p.SlowResponseMs, p.FastResponseMs)
	case !(0 < p.HealthyVarianceLow && p.HealthyVarianceLow <= p.HealthyVarianceHigh && p.HealthyVarianceHigh < p.MaxVariance):
		return errors.Errorf("variance thresholds must satisfy 0 < low <= high < max, got %v, %v, %v",
			p.HealthyVarianceLow, p.HealthyVarianceHigh, p.MaxVariance)
	case p.InconsistentTimingCV < 0 || p.TimingMinResponses < 2:
		return errors.Errorf("timing consistency needs cv >= 0 and at least 2 responses, got %v and %d",
			p.InconsistentTimingCV, p.TimingMinResponses)
	}
	return nil
}
