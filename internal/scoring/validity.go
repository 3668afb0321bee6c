package scoring

import (
	"math"
	"sort"

	"github.com/lshigami/heartscan/internal/questionbank"
)

// Validity warning codes, in the order they are reported.
const (
	WarningIncomplete         = "INCOMPLETE"
	WarningStraightLining     = "STRAIGHT_LINING"
	WarningLowEffortSpeed     = "LOW_EFFORT_SPEED"
	WarningSlowResponses      = "SLOW_RESPONSES"
	WarningInconsistentTiming = "INCONSISTENT_TIMING"
)

// Validity summarises response quality. TimingVariation is stddev/mean of
// response times. BlindspotIndex runs 0..100 and grows as timing and answers
// get less consistent.
type Validity struct {
	AnsweredCount        int
	TotalQuestions       int
	MissingQuestionIDs   []string
	CompletionRate       float64
	StatementCount       int
	ResponseVariance     float64
	MedianResponseTimeMs int64
	VarianceAdequacy     float64
	TimingVariation      float64
	Warnings             []string
	ConfidenceScore      int
	BlindspotIndex       int
}

// Analyze evaluates how trustworthy a response set is.
//
// Variance is the population variance of raw statement values; scenario
// selections are categorical and excluded. Uniform answering is only
// STRAIGHT_LINING when it sits away from the scale midpoint. Speed warnings
// use the median statement response time, falling back to all responses for
// scenario-only banks; responses without timing are ignored. Timing
// consistency is judged over every timed response.
func Analyze(bank *questionbank.Bank, responses []Response, p Policy) Validity {
	answered := latestValid(bank, responses)
	v := Validity{
		AnsweredCount:  len(answered),
		TotalQuestions: bank.Len(),
	}
	if v.TotalQuestions > 0 {
		v.CompletionRate = 100 * float64(v.AnsweredCount) / float64(v.TotalQuestions)
	}

	var (
		values         []float64
		statementTimes []int64
		allTimes       []int64
	)
	for _, q := range bank.Questions() {
		r, ok := answered[q.ID]
		if !ok {
			v.MissingQuestionIDs = append(v.MissingQuestionIDs, q.ID)
			continue
		}
		if r.ResponseTimeMs > 0 {
			allTimes = append(allTimes, r.ResponseTimeMs)
		}
		if q.Kind == questionbank.KindStatement {
			values = append(values, float64(r.Value))
			if r.ResponseTimeMs > 0 {
				statementTimes = append(statementTimes, r.ResponseTimeMs)
			}
		}
	}
	v.StatementCount = len(values)

	mean, variance := meanVariance(values)
	v.ResponseVariance = variance
	if len(values) < 2 {
		v.VarianceAdequacy = 100
	} else {
		v.VarianceAdequacy = varianceAdequacy(variance, p)
	}

	v.TimingVariation = variation(allTimes)

	times := statementTimes
	if len(times) == 0 {
		times = allTimes
	}
	v.MedianResponseTimeMs = median(times)

	if v.CompletionRate < 100 {
		v.Warnings = append(v.Warnings, WarningIncomplete)
	}
	if v.StatementCount >= p.StraightLineMinStatements &&
		variance < p.StraightLineVariance &&
		math.Abs(mean-midpoint) > p.MidlineTolerance {
		v.Warnings = append(v.Warnings, WarningStraightLining)
	}
	if len(times) > 0 && v.MedianResponseTimeMs < p.FastResponseMs {
		v.Warnings = append(v.Warnings, WarningLowEffortSpeed)
	}
	if len(times) > 0 && p.SlowResponseMs > 0 && v.MedianResponseTimeMs > p.SlowResponseMs {
		v.Warnings = append(v.Warnings, WarningSlowResponses)
	}
	if len(allTimes) >= p.TimingMinResponses && p.InconsistentTimingCV > 0 && v.TimingVariation > p.InconsistentTimingCV {
		v.Warnings = append(v.Warnings, WarningInconsistentTiming)
	}
	if v.Warnings == nil {
		v.Warnings = []string{}
	}

	v.ConfidenceScore = int(math.Round(0.6*v.CompletionRate + 0.4*v.VarianceAdequacy))
	v.BlindspotIndex = blindspotIndex(v.TimingVariation, variance, len(values))
	return v
}

// blindspotIndex averages timing inconsistency (100 * coefficient of
// variation) and answer inconsistency (20 points per unit of statement
// standard deviation), each capped to [0,100].
func blindspotIndex(timingVariation, answerVariance float64, statements int) int {
	timing := clamp(100*timingVariation, 0, 100)
	answers := 0.0
	if statements >= 2 {
		answers = clamp(20*math.Sqrt(answerVariance), 0, 100)
	}
	return int(math.Round((timing + answers) / 2))
}

// variation is stddev/mean of the timed responses; 0 with fewer than two.
func variation(times []int64) float64 {
	if len(times) < 2 {
		return 0
	}
	values := make([]float64, len(times))
	for i, t := range times {
		values[i] = float64(t)
	}
	mean, variance := meanVariance(values)
	if mean <= 0 {
		return 0
	}
	return math.Sqrt(variance) / mean
}

const midpoint = float64(questionbank.MinLikert+questionbank.MaxLikert) / 2

// varianceAdequacy is a trapezoid: 0 at zero variance, rising to 100 at the
// low edge of the healthy band, flat across it, and falling back to 0 at
// MaxVariance.
func varianceAdequacy(variance float64, p Policy) float64 {
	switch {
	case variance <= 0:
		return 0
	case variance < p.HealthyVarianceLow:
		return 100 * variance / p.HealthyVarianceLow
	case variance <= p.HealthyVarianceHigh:
		return 100
	case variance < p.MaxVariance:
		return 100 * (p.MaxVariance - variance) / (p.MaxVariance - p.HealthyVarianceHigh)
	default:
		return 0
	}
}

func meanVariance(values []float64) (mean, variance float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, x := range values {
		mean += x
	}
	mean /= float64(len(values))
	for _, x := range values {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, variance
}

func median(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
