package scoring

import (
	"sort"

	"github.com/lshigami/heartscan/internal/questionbank"
)

// Response is one answer as seen by the engine. Value is used for
// statements, OptionID for scenarios.
type Response struct {
	QuestionID     string
	Value          int
	OptionID       string
	ResponseTimeMs int64
}

// CategoryScore is the raw and normalized score of one category. Max is the
// theoretical maximum of Raw; a category with Max == 0 is not scorable.
type CategoryScore struct {
	Category   string
	Raw        float64
	Max        float64
	Normalized float64
	Scorable   bool
}

// Scores maps category id to its score.
type Scores map[string]CategoryScore

// Normalized returns category -> normalized score at full precision.
func (s Scores) Normalized() map[string]float64 {
	out := make(map[string]float64, len(s))
	for id, cs := range s {
		out[id] = cs.Normalized
	}
	return out
}

// Sorted returns the scores ordered by category id.
func (s Scores) Sorted() []CategoryScore {
	out := make([]CategoryScore, 0, len(s))
	for _, cs := range s {
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Score computes per-category scores for the given responses.
//
// A statement contributes (adjusted-1)*weight, where adjusted is 6-value for
// reverse-scored questions, and raises its category maximum by 4*weight. A
// selected scenario option adds its weight to each associated category; each
// scenario raises a category maximum by the heaviest option touching that
// category. Maxima cover the whole bank, answered or not.
func Score(bank *questionbank.Bank, responses []Response) Scores {
	scores := make(Scores)
	for _, id := range bank.CategoryIDs() {
		scores[id] = CategoryScore{Category: id}
	}

	answered := latestValid(bank, responses)

	for _, q := range bank.Questions() {
		switch q.Kind {
		case questionbank.KindStatement:
			cs := scores[q.Category]
			cs.Max += float64(questionbank.MaxLikert-questionbank.MinLikert) * q.Weight
			if r, ok := answered[q.ID]; ok {
				cs.Raw += float64(adjustedValue(q, r.Value)-questionbank.MinLikert) * q.Weight
			}
			scores[q.Category] = cs

		case questionbank.KindScenario:
			heaviest := make(map[string]float64)
			for _, opt := range q.Options {
				for _, cat := range opt.Categories {
					if opt.Weight > heaviest[cat] {
						heaviest[cat] = opt.Weight
					}
				}
			}
			for cat, w := range heaviest {
				cs := scores[cat]
				cs.Max += w
				scores[cat] = cs
			}
			if r, ok := answered[q.ID]; ok {
				for _, opt := range q.Options {
					if opt.ID != r.OptionID {
						continue
					}
					for _, cat := range opt.Categories {
						cs := scores[cat]
						cs.Raw += opt.Weight
						scores[cat] = cs
					}
				}
			}
		}
	}

	for id, cs := range scores {
		if cs.Max > 0 {
			cs.Scorable = true
			cs.Normalized = clamp(100*cs.Raw/cs.Max, 0, 100)
		}
		scores[id] = cs
	}
	return scores
}

// AdjustedValue applies reverse scoring to a Likert answer.
func AdjustedValue(reverse bool, value int) int {
	if reverse {
		return questionbank.MaxLikert + questionbank.MinLikert - value
	}
	return value
}

func adjustedValue(q questionbank.Question, value int) int {
	return AdjustedValue(q.ReverseScored, value)
}

// latestValid keeps, per question, the last response that is well-formed for
// the bank. Responses the collector would have rejected are dropped.
func latestValid(bank *questionbank.Bank, responses []Response) map[string]Response {
	out := make(map[string]Response, len(responses))
	for _, r := range responses {
		q, ok := bank.Question(r.QuestionID)
		if !ok {
			continue
		}
		switch q.Kind {
		case questionbank.KindStatement:
			if r.Value < questionbank.MinLikert || r.Value > questionbank.MaxLikert {
				continue
			}
		case questionbank.KindScenario:
			if _, ok := bank.Option(q.ID, r.OptionID); !ok {
				continue
			}
		}
		out[r.QuestionID] = r
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
